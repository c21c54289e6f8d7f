package tree_sitter

import sitter "github.com/tree-sitter/go-tree-sitter"

// A syntax tree produced by a [Parser]. The tree owns its engine
// resources and must be closed.
type Tree struct {
	inner *sitter.Tree
}

// Wrap a tree returned by the engine. Custom [Engine] implementations use
// this to hand their results back to a [Parser].
func NewTree(inner *sitter.Tree) *Tree {
	return &Tree{inner: inner}
}

// Get the engine tree, for access to the node, cursor and query API.
func (t *Tree) Inner() *sitter.Tree {
	return t.inner
}

// Get the root node of the syntax tree.
func (t *Tree) RootNode() *sitter.Node {
	if t.inner == nil {
		return nil
	}
	return t.inner.RootNode()
}

// Edit the syntax tree to keep it in sync with source code that has been
// edited. [TextBuffer.InsertEdit] and [TextBuffer.DeleteCharsEdit] produce
// the edit in the right shape.
func (t *Tree) Edit(edit *InputEdit) {
	if t.inner != nil {
		t.inner.Edit(edit.toSitter())
	}
}

// Get the included ranges that were used to parse the syntax tree.
func (t *Tree) IncludedRanges() []Range {
	if t.inner == nil {
		return nil
	}
	return fromSitterRanges(t.inner.IncludedRanges())
}

func (t *Tree) Clone() *Tree {
	if t.inner == nil {
		return &Tree{}
	}
	return NewTree(t.inner.Clone())
}

func (t *Tree) Close() {
	if t != nil && t.inner != nil {
		t.inner.Close()
		t.inner = nil
	}
}
