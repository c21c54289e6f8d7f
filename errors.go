package tree_sitter

import (
	"errors"
	"fmt"
)

var (
	// A required handle or argument was nil.
	ErrNullArgument = errors.New("null argument")

	// An operation was attempted in a state that does not allow it.
	ErrInvalidState = errors.New("invalid state")

	// The object has already been destroyed.
	ErrDestroyed = fmt.Errorf("%w: already destroyed", ErrInvalidState)

	// A parse round is already active on the parser.
	ErrAlreadyParsing = fmt.Errorf("%w: parser is already parsing another syntax tree, cancel or finish the current parse first", ErrInvalidState)

	// No parse round is active on the parser.
	ErrNotParsing = fmt.Errorf("%w: no parse is in progress", ErrInvalidState)

	// A text buffer was mutated while a parse round was reading it.
	ErrBufferBorrowed = fmt.Errorf("%w: buffer is borrowed by an active parse", ErrInvalidState)

	// A char index was outside of the buffer.
	ErrOutOfRange = errors.New("index out of range")

	// A char or byte range was malformed or outside of the buffer.
	ErrInvalidRange = errors.New("invalid range")

	// The engine declined a set of included ranges.
	ErrRejectedRanges = errors.New("rejected included ranges")
)

// An error describing which index or range failed validation in a
// [TextBuffer] operation. It unwraps to [ErrOutOfRange] or [ErrInvalidRange].
type IndexError struct {
	Op     string
	Start  int
	End    int
	Length int

	kind error
}

func newIndexError(op string, index, length int) *IndexError {
	return &IndexError{Op: op, Start: index, End: index, Length: length, kind: ErrOutOfRange}
}

func newRangeError(op string, start, end, length int) *IndexError {
	return &IndexError{Op: op, Start: start, End: end, Length: length, kind: ErrInvalidRange}
}

func (e *IndexError) Error() string {
	if e.kind == ErrInvalidRange {
		return fmt.Sprintf("%s: %v [%d, %d) with length %d", e.Op, e.kind, e.Start, e.End, e.Length)
	}
	return fmt.Sprintf("%s: %v %d with length %d", e.Op, e.kind, e.Start, e.Length)
}

func (e *IndexError) Unwrap() error {
	return e.kind
}
