package binding

import (
	ts "github.com/itsaky/go-tree-sitter-android"
)

func DeleteTree(h Handle) error {
	return remove(h, func(tree *ts.Tree) error {
		tree.Close()
		return nil
	})
}

// Apply an edit to the tree behind h before it is passed back to [Parse].
func TreeEdit(h Handle, edit *ts.InputEdit) error {
	if edit == nil {
		return ts.ErrNullArgument
	}
	tree, err := lookup[*ts.Tree](h)
	if err != nil {
		return err
	}
	tree.Edit(edit)
	return nil
}

// Get the S-expression of the tree's root node.
func TreeSexp(h Handle) (string, error) {
	tree, err := lookup[*ts.Tree](h)
	if err != nil {
		return "", err
	}
	return tree.RootNode().ToSexp(), nil
}
