package tree_sitter

import (
	"encoding/binary"
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// The text encoding of the source handed to [Engine.ParseEncoded].
type Encoding int

const (
	EncodingUTF8 Encoding = iota
	EncodingUTF16
)

// The incremental parsing engine driven by a [Parser].
//
// An engine is not safe for concurrent use; the [Parser] that owns it
// serializes every call except the engine's own reads of the cancellation
// flag.
type Engine interface {
	SetLanguage(language *sitter.Language) error
	Language() *sitter.Language
	Reset()
	SetTimeoutMicros(timeoutMicros uint64)
	TimeoutMicros() uint64

	// Install the flag the engine polls while parsing, or nil to remove it.
	// A non-zero value makes the engine halt and return no tree.
	SetCancellationFlag(flag *uintptr)

	// Replace the included ranges. Returns false, keeping the previous set,
	// if the engine rejects them.
	SetIncludedRanges(ranges []Range) bool
	IncludedRanges() []Range

	// Parse source, reusing oldTree when it is non-nil. Returns nil when the
	// parse was cancelled or timed out.
	ParseEncoded(oldTree *Tree, source []byte, encoding Encoding) *Tree

	Close()
}

// Number of code units handed to the engine per read callback.
const utf16ChunkUnits = 4096

// An [Engine] backed by a go-tree-sitter parser.
type SitterEngine struct {
	parser *sitter.Parser
}

// Create an engine around a fresh go-tree-sitter parser.
func NewEngine() *SitterEngine {
	return &SitterEngine{parser: sitter.NewParser()}
}

func (e *SitterEngine) SetLanguage(language *sitter.Language) error {
	if err := e.parser.SetLanguage(language); err != nil {
		return fmt.Errorf("set language: %w", err)
	}
	return nil
}

func (e *SitterEngine) Language() *sitter.Language {
	return e.parser.Language()
}

func (e *SitterEngine) Reset() {
	e.parser.Reset()
}

func (e *SitterEngine) SetTimeoutMicros(timeoutMicros uint64) {
	e.parser.SetTimeoutMicros(timeoutMicros)
}

func (e *SitterEngine) TimeoutMicros() uint64 {
	return e.parser.TimeoutMicros()
}

func (e *SitterEngine) SetCancellationFlag(flag *uintptr) {
	e.parser.SetCancellationFlag(flag)
}

func (e *SitterEngine) SetIncludedRanges(ranges []Range) bool {
	return e.parser.SetIncludedRanges(toSitterRanges(ranges)) == nil
}

func (e *SitterEngine) IncludedRanges() []Range {
	return fromSitterRanges(e.parser.IncludedRanges())
}

// Route the engine's parse and lex messages to logger.
func (e *SitterEngine) SetLogger(logger sitter.Logger) {
	e.parser.SetLogger(logger)
}

func (e *SitterEngine) ParseEncoded(oldTree *Tree, source []byte, encoding Encoding) *Tree {
	var old *sitter.Tree
	if oldTree != nil {
		old = oldTree.inner
	}

	var tree *sitter.Tree
	switch encoding {
	case EncodingUTF16:
		tree = e.parser.ParseUTF16LEWith(utf16Reader(source), old)
	default:
		tree = e.parser.Parse(source, old)
	}

	if tree == nil {
		return nil
	}
	return NewTree(tree)
}

func (e *SitterEngine) Close() {
	e.parser.Close()
}

// Serve little-endian UTF-16 bytes to the engine in chunks of code units.
func utf16Reader(source []byte) func(int, sitter.Point) []uint16 {
	length := len(source) / 2
	return func(offset int, _ sitter.Point) []uint16 {
		if offset >= length {
			return []uint16{}
		}
		end := min(offset+utf16ChunkUnits, length)
		chunk := make([]uint16, end-offset)
		for i := range chunk {
			chunk[i] = binary.LittleEndian.Uint16(source[2*(offset+i):])
		}
		return chunk
	}
}
