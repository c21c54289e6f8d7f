// Package tree_sitter runs go-tree-sitter parses over mutable UTF-16 text
// with a cancellable, single-round-at-a-time parse session.
//
// A [TextBuffer] stores UTF-16 code units and offers both char-indexed and
// byte-indexed mutation, which keeps host editors (char offsets) and the
// engine's incremental edit protocol (byte offsets) in agreement. A
// [Parser] owns one [Engine] and guards it so that only one round runs at a
// time, while any goroutine may cancel the running round.
package tree_sitter
