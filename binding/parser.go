package binding

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	ts "github.com/itsaky/go-tree-sitter-android"
)

// Create a parser and return its handle.
func NewParser(opts ...ts.Option) (Handle, error) {
	parser, err := ts.NewParser(opts...)
	if err != nil {
		return nil, err
	}
	return save(parser), nil
}

// Destroy a parser. A round running on another goroutine is cancelled and
// the engine is released when that round ends.
func DeleteParser(h Handle) error {
	return remove(h, (*ts.Parser).Close)
}

func SetLanguage(h Handle, language *sitter.Language) error {
	parser, err := lookup[*ts.Parser](h)
	if err != nil {
		return err
	}
	return parser.SetLanguage(language)
}

func Language(h Handle) (*sitter.Language, error) {
	parser, err := lookup[*ts.Parser](h)
	if err != nil {
		return nil, err
	}
	return parser.Language()
}

func Reset(h Handle) error {
	parser, err := lookup[*ts.Parser](h)
	if err != nil {
		return err
	}
	return parser.Reset()
}

func SetTimeout(h Handle, timeoutMicros uint64) error {
	parser, err := lookup[*ts.Parser](h)
	if err != nil {
		return err
	}
	return parser.SetTimeoutMicros(timeoutMicros)
}

func Timeout(h Handle) (uint64, error) {
	parser, err := lookup[*ts.Parser](h)
	if err != nil {
		return 0, err
	}
	return parser.TimeoutMicros()
}

// Returns whether the engine accepted the ranges.
func SetIncludedRanges(h Handle, ranges []ts.Range) (bool, error) {
	parser, err := lookup[*ts.Parser](h)
	if err != nil {
		return false, err
	}
	return parser.SetIncludedRanges(ranges)
}

func IncludedRanges(h Handle) ([]ts.Range, error) {
	parser, err := lookup[*ts.Parser](h)
	if err != nil {
		return nil, err
	}
	return parser.IncludedRanges()
}

// Parse the buffer behind buffer, reusing the tree behind oldTree when it
// is not nil. Returns a nil handle when the parse was cancelled or timed
// out.
func Parse(h, oldTree, buffer Handle) (Handle, error) {
	parser, err := lookup[*ts.Parser](h)
	if err != nil {
		return nil, err
	}
	source, err := lookup[*ts.TextBuffer](buffer)
	if err != nil {
		return nil, err
	}

	var old *ts.Tree
	if oldTree != nil {
		if old, err = lookup[*ts.Tree](oldTree); err != nil {
			return nil, err
		}
	}

	tree, err := parser.Parse(old, source)
	if err != nil || tree == nil {
		return nil, err
	}
	return save(tree), nil
}

// Ask the parse running on the parser behind h to stop. Returns false when
// no parse is in progress.
func RequestCancellation(h Handle) (bool, error) {
	parser, err := lookup[*ts.Parser](h)
	if err != nil {
		return false, err
	}
	return parser.RequestCancellation(), nil
}
