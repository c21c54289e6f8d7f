package tree_sitter

import sitter "github.com/tree-sitter/go-tree-sitter"

// A summary of a change to a text document, in bytes and in row/column
// positions. [TextBuffer.InsertEdit] and [TextBuffer.DeleteCharsEdit] return
// one for every mutation so the previous tree can follow via [Tree.Edit].
type InputEdit struct {
	StartByte      uint
	OldEndByte     uint
	NewEndByte     uint
	StartPosition  Point
	OldEndPosition Point
	NewEndPosition Point
}

func (i *InputEdit) toSitter() *sitter.InputEdit {
	return &sitter.InputEdit{
		StartByte:      i.StartByte,
		OldEndByte:     i.OldEndByte,
		NewEndByte:     i.NewEndByte,
		StartPosition:  i.StartPosition.toSitter(),
		OldEndPosition: i.OldEndPosition.toSitter(),
		NewEndPosition: i.NewEndPosition.toSitter(),
	}
}
