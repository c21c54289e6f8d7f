package binding_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ts "github.com/itsaky/go-tree-sitter-android"
	"github.com/itsaky/go-tree-sitter-android/binding"
	"github.com/itsaky/go-tree-sitter-android/internal/languages"
)

func newJSONParser(t *testing.T) binding.Handle {
	t.Helper()
	parser, err := binding.NewParser()
	require.NoError(t, err)

	language, err := languages.Lookup("json")
	require.NoError(t, err)
	require.NoError(t, binding.SetLanguage(parser, language))
	return parser
}

func TestParseThroughHandles(t *testing.T) {
	parser := newJSONParser(t)
	defer binding.DeleteParser(parser)

	buffer, err := binding.NewBufferString("[1]")
	require.NoError(t, err)
	defer binding.DeleteBuffer(buffer)

	tree, err := binding.Parse(parser, nil, buffer)
	require.NoError(t, err)
	require.NotNil(t, tree)

	sexp, err := binding.TreeSexp(tree)
	require.NoError(t, err)
	assert.Equal(t, "(document (array (number)))", sexp)

	// Append ", null" before the closing bracket and reparse incrementally.
	edit := ts.InputEdit{
		StartByte:      4,
		OldEndByte:     4,
		NewEndByte:     16,
		StartPosition:  ts.NewPoint(0, 4),
		OldEndPosition: ts.NewPoint(0, 4),
		NewEndPosition: ts.NewPoint(0, 16),
	}
	require.NoError(t, binding.BufferInsert(buffer, ", null", 2))
	require.NoError(t, binding.TreeEdit(tree, &edit))

	newTree, err := binding.Parse(parser, tree, buffer)
	require.NoError(t, err)
	defer binding.DeleteTree(newTree)
	require.NoError(t, binding.DeleteTree(tree))

	sexp, err = binding.TreeSexp(newTree)
	require.NoError(t, err)
	assert.Equal(t, "(document (array (number) (null)))", sexp)
}

func TestBufferHandles(t *testing.T) {
	buffer := binding.NewBuffer()
	defer binding.DeleteBuffer(buffer)

	require.NoError(t, binding.BufferAppend(buffer, "abc"))
	require.NoError(t, binding.BufferInsertUnit(buffer, 'X', 1))
	require.NoError(t, binding.BufferAppendRange(buffer, "0123", 1, 2))

	text, err := binding.BufferString(buffer)
	require.NoError(t, err)
	assert.Equal(t, "aXbc12", text)

	length, err := binding.BufferLen(buffer)
	require.NoError(t, err)
	assert.Equal(t, 6, length)
	byteLength, err := binding.BufferByteLen(buffer)
	require.NoError(t, err)
	assert.Equal(t, 12, byteLength)

	c, err := binding.BufferCharAt(buffer, 1)
	require.NoError(t, err)
	assert.Equal(t, uint16('X'), c)

	require.NoError(t, binding.BufferDeleteChars(buffer, 4, 6))
	require.NoError(t, binding.BufferDeleteBytes(buffer, 2, 4))
	assert.ErrorIs(t, binding.BufferDeleteBytes(buffer, 1, 4), ts.ErrInvalidRange)

	data, err := binding.BufferBytes(buffer)
	require.NoError(t, err)
	assert.Equal(t, []byte{'a', 0, 'b', 0, 'c', 0}, data)

	other, err := binding.NewBufferString("abc")
	require.NoError(t, err)
	defer binding.DeleteBuffer(other)
	equal, err := binding.BufferEqual(buffer, other)
	require.NoError(t, err)
	assert.True(t, equal)
}

func TestParserHandleConfiguration(t *testing.T) {
	parser := newJSONParser(t)
	defer binding.DeleteParser(parser)

	require.NoError(t, binding.SetTimeout(parser, 1500))
	timeout, err := binding.Timeout(parser)
	require.NoError(t, err)
	assert.Equal(t, uint64(1500), timeout)

	language, err := binding.Language(parser)
	require.NoError(t, err)
	assert.NotNil(t, language)

	ranges := []ts.Range{{StartByte: 0, EndByte: 8, StartPoint: ts.NewPoint(0, 0), EndPoint: ts.NewPoint(0, 8)}}
	accepted, err := binding.SetIncludedRanges(parser, ranges)
	require.NoError(t, err)
	assert.True(t, accepted)

	accepted, err = binding.SetIncludedRanges(parser, []ts.Range{ranges[0], ranges[0]})
	require.NoError(t, err)
	assert.False(t, accepted)

	got, err := binding.IncludedRanges(parser)
	require.NoError(t, err)
	assert.Equal(t, ranges, got)

	require.NoError(t, binding.Reset(parser))

	cancelled, err := binding.RequestCancellation(parser)
	require.NoError(t, err)
	assert.False(t, cancelled)
}

func TestNullHandles(t *testing.T) {
	_, err := binding.Parse(nil, nil, nil)
	assert.ErrorIs(t, err, ts.ErrNullArgument)

	_, err = binding.RequestCancellation(nil)
	assert.ErrorIs(t, err, ts.ErrNullArgument)

	_, err = binding.BufferLen(nil)
	assert.ErrorIs(t, err, ts.ErrNullArgument)

	assert.ErrorIs(t, binding.DeleteTree(nil), ts.ErrNullArgument)
	assert.ErrorIs(t, binding.DeleteParser(nil), ts.ErrNullArgument)

	parser := newJSONParser(t)
	defer binding.DeleteParser(parser)
	_, err = binding.Parse(parser, nil, nil)
	assert.ErrorIs(t, err, ts.ErrNullArgument)

	buffer := binding.NewBuffer()
	defer binding.DeleteBuffer(buffer)
	assert.ErrorIs(t, binding.TreeEdit(buffer, nil), ts.ErrNullArgument)
}

func TestHandleOfWrongKind(t *testing.T) {
	buffer := binding.NewBuffer()
	defer binding.DeleteBuffer(buffer)

	_, err := binding.RequestCancellation(buffer)
	assert.ErrorIs(t, err, binding.ErrInvalidHandle)

	parser := newJSONParser(t)
	defer binding.DeleteParser(parser)

	_, err = binding.BufferString(parser)
	assert.ErrorIs(t, err, binding.ErrInvalidHandle)
	_, err = binding.Parse(parser, buffer, buffer)
	assert.ErrorIs(t, err, binding.ErrInvalidHandle)
}

func TestDeletedHandles(t *testing.T) {
	parser := newJSONParser(t)
	require.NoError(t, binding.DeleteParser(parser))

	_, err := binding.RequestCancellation(parser)
	assert.ErrorIs(t, err, ts.ErrDestroyed)
	assert.ErrorIs(t, binding.DeleteParser(parser), ts.ErrDestroyed)

	buffer := binding.NewBuffer()
	require.NoError(t, binding.DeleteBuffer(buffer))
	assert.ErrorIs(t, binding.BufferAppend(buffer, "x"), ts.ErrDestroyed)
}

func TestStaleHandlesAfterNewObjects(t *testing.T) {
	for range 100 {
		stale := binding.NewBuffer()
		require.NoError(t, binding.DeleteBuffer(stale))

		fresh, err := binding.NewBufferString("fresh")
		require.NoError(t, err)
		assert.NotEqual(t, stale, fresh)

		_, err = binding.BufferLen(stale)
		assert.ErrorIs(t, err, ts.ErrDestroyed)
		_, err = binding.BufferByteLen(stale)
		assert.ErrorIs(t, err, ts.ErrDestroyed)
		_, err = binding.BufferString(stale)
		assert.ErrorIs(t, err, ts.ErrDestroyed)
		_, err = binding.BufferEqual(stale, fresh)
		assert.ErrorIs(t, err, ts.ErrDestroyed)
		assert.ErrorIs(t, binding.DeleteBuffer(stale), ts.ErrDestroyed)

		// The fresh buffer is untouched by calls on the stale handle.
		text, err := binding.BufferString(fresh)
		require.NoError(t, err)
		assert.Equal(t, "fresh", text)
		require.NoError(t, binding.DeleteBuffer(fresh))
	}

	stale := newJSONParser(t)
	require.NoError(t, binding.DeleteParser(stale))
	fresh := newJSONParser(t)
	defer binding.DeleteParser(fresh)

	assert.ErrorIs(t, binding.DeleteParser(stale), ts.ErrDestroyed)
	_, err := binding.Timeout(stale)
	assert.ErrorIs(t, err, ts.ErrDestroyed)
	_, err = binding.Timeout(fresh)
	require.NoError(t, err)
}

func TestDeletedTreeHandle(t *testing.T) {
	parser := newJSONParser(t)
	defer binding.DeleteParser(parser)

	buffer, err := binding.NewBufferString("[1]")
	require.NoError(t, err)
	defer binding.DeleteBuffer(buffer)

	tree, err := binding.Parse(parser, nil, buffer)
	require.NoError(t, err)
	require.NoError(t, binding.DeleteTree(tree))

	other, err := binding.Parse(parser, nil, buffer)
	require.NoError(t, err)
	defer binding.DeleteTree(other)

	_, err = binding.TreeSexp(tree)
	assert.ErrorIs(t, err, ts.ErrDestroyed)
	assert.ErrorIs(t, binding.DeleteTree(tree), ts.ErrDestroyed)
	_, err = binding.Parse(parser, tree, buffer)
	assert.ErrorIs(t, err, ts.ErrDestroyed)

	sexp, err := binding.TreeSexp(other)
	require.NoError(t, err)
	assert.Equal(t, "(document (array (number)))", sexp)
}

func TestDeleteWrongKindKeepsObject(t *testing.T) {
	buffer, err := binding.NewBufferString("abc")
	require.NoError(t, err)
	defer binding.DeleteBuffer(buffer)

	assert.ErrorIs(t, binding.DeleteParser(buffer), binding.ErrInvalidHandle)
	assert.ErrorIs(t, binding.DeleteTree(buffer), binding.ErrInvalidHandle)

	length, err := binding.BufferLen(buffer)
	require.NoError(t, err)
	assert.Equal(t, 3, length)
}
