package tree_sitter

import sitter "github.com/tree-sitter/go-tree-sitter"

// A position in a multi-line text document, in terms of rows and columns.
//
// Rows and columns are zero-based. Columns count bytes, so a column in a
// UTF-16 document is always even.
type Point struct {
	Row    uint `yaml:"row" mapstructure:"row"`
	Column uint `yaml:"column" mapstructure:"column"`
}

func NewPoint(row, column uint) Point {
	return Point{Row: row, Column: column}
}

func (p Point) toSitter() sitter.Point {
	return sitter.Point{Row: p.Row, Column: p.Column}
}

func pointFromSitter(sp sitter.Point) Point {
	return Point{Row: sp.Row, Column: sp.Column}
}
