package tree_sitter

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// A range of positions in a multi-line text document, both in terms of bytes
// and of rows and columns.
type Range struct {
	StartByte  uint  `yaml:"start_byte" mapstructure:"start_byte"`
	EndByte    uint  `yaml:"end_byte" mapstructure:"end_byte"`
	StartPoint Point `yaml:"start_point" mapstructure:"start_point"`
	EndPoint   Point `yaml:"end_point" mapstructure:"end_point"`
}

// An error that occurred in [Parser.SetIncludedRanges] or [ValidateRanges].
// Index points at the first range that breaks the ordering rules.
type IncludedRangesError struct {
	Index uint32
}

func (i *IncludedRangesError) Error() string {
	return fmt.Sprintf("Incorrect range by index: %d", i.Index)
}

func (i *IncludedRangesError) Unwrap() error {
	return ErrRejectedRanges
}

// Check that a set of included ranges can be handed to the engine.
//
// The ranges must be ordered from earliest to latest in the document and
// must not overlap:
//
//	ranges[i].StartByte <= ranges[i].EndByte
//	ranges[i].EndByte <= ranges[i + 1].StartByte
//
// An empty slice is valid and means the whole document.
func ValidateRanges(ranges []Range) error {
	var prevEndByte uint
	for i, r := range ranges {
		if r.EndByte < r.StartByte || (i > 0 && r.StartByte < prevEndByte) {
			return &IncludedRangesError{uint32(i)}
		}
		prevEndByte = r.EndByte
	}
	return nil
}

// Return an independent copy of ranges. A nil input yields an empty slice.
func CloneRanges(ranges []Range) []Range {
	out := make([]Range, len(ranges))
	copy(out, ranges)
	return out
}

func (r Range) toSitter() sitter.Range {
	return sitter.Range{
		StartByte:  r.StartByte,
		EndByte:    r.EndByte,
		StartPoint: r.StartPoint.toSitter(),
		EndPoint:   r.EndPoint.toSitter(),
	}
}

func rangeFromSitter(sr sitter.Range) Range {
	return Range{
		StartByte:  sr.StartByte,
		EndByte:    sr.EndByte,
		StartPoint: pointFromSitter(sr.StartPoint),
		EndPoint:   pointFromSitter(sr.EndPoint),
	}
}

func toSitterRanges(ranges []Range) []sitter.Range {
	out := make([]sitter.Range, len(ranges))
	for i, r := range ranges {
		out[i] = r.toSitter()
	}
	return out
}

func fromSitterRanges(ranges []sitter.Range) []Range {
	out := make([]Range, len(ranges))
	for i, r := range ranges {
		out[i] = rangeFromSitter(r)
	}
	return out
}
