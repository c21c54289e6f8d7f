package tree_sitter

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/text/encoding/unicode"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// A mutable UTF-16 string that can be handed to a [Parser] without any
// re-encoding.
//
// Content is kept as little-endian UTF-16 code units. Char indices count
// code units, as Java and JavaScript strings do; byte indices count bytes
// and must always be even. A buffer is not meant to be mutated from several
// goroutines at once, but reads may run concurrently with a parse that
// borrows it.
type TextBuffer struct {
	mu      sync.RWMutex
	data    []byte
	borrows int
	closed  bool
}

// Create an empty buffer.
func NewTextBuffer() *TextBuffer {
	return &TextBuffer{}
}

// Create a buffer holding the UTF-16 encoding of text.
func NewTextBufferString(text string) (*TextBuffer, error) {
	data, err := encodeUTF16(text)
	if err != nil {
		return nil, err
	}
	return &TextBuffer{data: data}, nil
}

func encodeUTF16(text string) ([]byte, error) {
	data, err := utf16le.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("encode utf-16: %w", err)
	}
	return data, nil
}

func (b *TextBuffer) lockRead() error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrDestroyed
	}
	return nil
}

func (b *TextBuffer) lockWrite() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrDestroyed
	}
	if b.borrows > 0 {
		b.mu.Unlock()
		return ErrBufferBorrowed
	}
	return nil
}

// Get the code unit at the given char index.
func (b *TextBuffer) CharAt(index int) (uint16, error) {
	if err := b.lockRead(); err != nil {
		return 0, err
	}
	defer b.mu.RUnlock()

	length := len(b.data) / 2
	if index < 0 || index >= length {
		return 0, newIndexError("char at", index, length)
	}
	return binary.LittleEndian.Uint16(b.data[2*index:]), nil
}

// Insert a single code unit at the given char index.
func (b *TextBuffer) InsertUnit(unit uint16, index int) error {
	if err := b.lockWrite(); err != nil {
		return err
	}
	defer b.mu.Unlock()

	return b.insertLocked("insert", binary.LittleEndian.AppendUint16(nil, unit), index)
}

// Insert text at the given char index, shifting the rest of the buffer to
// the right.
func (b *TextBuffer) Insert(text string, index int) error {
	units, err := encodeUTF16(text)
	if err != nil {
		return err
	}
	if err := b.lockWrite(); err != nil {
		return err
	}
	defer b.mu.Unlock()

	return b.insertLocked("insert", units, index)
}

// Append a single code unit.
func (b *TextBuffer) AppendUnit(unit uint16) error {
	if err := b.lockWrite(); err != nil {
		return err
	}
	defer b.mu.Unlock()

	b.data = binary.LittleEndian.AppendUint16(b.data, unit)
	return nil
}

// Append text to the end of the buffer.
func (b *TextBuffer) Append(text string) error {
	units, err := encodeUTF16(text)
	if err != nil {
		return err
	}
	if err := b.lockWrite(); err != nil {
		return err
	}
	defer b.mu.Unlock()

	b.data = append(b.data, units...)
	return nil
}

// Append length code units of text, starting at the code unit from.
//
// Both from and length are measured in UTF-16 code units of text, not in
// bytes of its UTF-8 form.
func (b *TextBuffer) AppendRange(text string, from, length int) error {
	units, err := encodeUTF16(text)
	if err != nil {
		return err
	}
	srcLength := len(units) / 2
	if from < 0 || length < 0 || from > srcLength || length > srcLength-from {
		return &IndexError{Op: "append", Start: from, End: from + length, Length: srcLength, kind: ErrOutOfRange}
	}
	if err := b.lockWrite(); err != nil {
		return err
	}
	defer b.mu.Unlock()

	b.data = append(b.data, units[2*from:2*(from+length)]...)
	return nil
}

// Delete the code units in the char range [start, end).
func (b *TextBuffer) DeleteChars(start, end int) error {
	if err := b.lockWrite(); err != nil {
		return err
	}
	defer b.mu.Unlock()

	return b.deleteCharsLocked(start, end)
}

// Delete the bytes in the byte range [start, end). Both offsets must be
// even so that no code unit is split.
func (b *TextBuffer) DeleteBytes(start, end int) error {
	if err := b.lockWrite(); err != nil {
		return err
	}
	defer b.mu.Unlock()

	if start%2 != 0 || end%2 != 0 || start < 0 || start > end || end > len(b.data) {
		return newRangeError("delete bytes", start, end, len(b.data))
	}
	b.data = slices.Delete(b.data, start, end)
	return nil
}

// Get the length of the buffer in code units. A destroyed buffer has
// length zero.
func (b *TextBuffer) Len() int {
	return b.ByteLen() / 2
}

// Get the length of the buffer in bytes.
func (b *TextBuffer) ByteLen() int {
	if err := b.lockRead(); err != nil {
		return 0
	}
	defer b.mu.RUnlock()

	return len(b.data)
}

// Get a copy of the UTF-16LE bytes. The returned slice is owned by the
// caller and does not change when the buffer does.
func (b *TextBuffer) Bytes() ([]byte, error) {
	if err := b.lockRead(); err != nil {
		return nil, err
	}
	defer b.mu.RUnlock()

	return bytes.Clone(b.data), nil
}

// Get a copy of the code units.
func (b *TextBuffer) Units() ([]uint16, error) {
	if err := b.lockRead(); err != nil {
		return nil, err
	}
	defer b.mu.RUnlock()

	units := make([]uint16, len(b.data)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(b.data[2*i:])
	}
	return units, nil
}

// Decode the buffer into a Go string. Unpaired surrogates are replaced with
// U+FFFD. A destroyed buffer decodes to the empty string.
func (b *TextBuffer) String() string {
	text, _ := b.Text()
	return text
}

// Decode the buffer like [TextBuffer.String], failing with [ErrDestroyed]
// once the buffer is closed.
func (b *TextBuffer) Text() (string, error) {
	if err := b.lockRead(); err != nil {
		return "", err
	}
	defer b.mu.RUnlock()

	text, err := utf16le.NewDecoder().Bytes(b.data)
	if err != nil {
		return "", fmt.Errorf("decode utf-16: %w", err)
	}
	return string(text), nil
}

// Report whether the buffer has been closed.
func (b *TextBuffer) Closed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.closed
}

// Report whether both buffers hold the same code units.
func (b *TextBuffer) Equal(other *TextBuffer) bool {
	if b == other {
		return true
	}
	if b == nil || other == nil {
		return false
	}
	mine, err := b.Bytes()
	if err != nil {
		return false
	}
	if err := other.lockRead(); err != nil {
		return false
	}
	defer other.mu.RUnlock()

	return bytes.Equal(mine, other.data)
}

// Get the row and column of a byte offset. Rows are separated by '\n' and
// columns count bytes from the start of the row.
func (b *TextBuffer) PointAt(byteOffset int) (Point, error) {
	if err := b.lockRead(); err != nil {
		return Point{}, err
	}
	defer b.mu.RUnlock()

	if byteOffset%2 != 0 || byteOffset < 0 || byteOffset > len(b.data) {
		return Point{}, newRangeError("point at", byteOffset, byteOffset, len(b.data))
	}
	return b.pointAtLocked(byteOffset), nil
}

// Insert text at the given char index and describe the change for
// [Tree.Edit].
func (b *TextBuffer) InsertEdit(text string, index int) (InputEdit, error) {
	units, err := encodeUTF16(text)
	if err != nil {
		return InputEdit{}, err
	}
	if err := b.lockWrite(); err != nil {
		return InputEdit{}, err
	}
	defer b.mu.Unlock()

	if !validCharIndex(index, len(b.data)/2) {
		return InputEdit{}, newIndexError("insert", index, len(b.data)/2)
	}
	startByte := 2 * index
	start := b.pointAtLocked(startByte)
	if err := b.insertLocked("insert", units, index); err != nil {
		return InputEdit{}, err
	}
	return InputEdit{
		StartByte:      uint(startByte),
		OldEndByte:     uint(startByte),
		NewEndByte:     uint(startByte + len(units)),
		StartPosition:  start,
		OldEndPosition: start,
		NewEndPosition: b.pointAtLocked(startByte + len(units)),
	}, nil
}

// Delete the char range [start, end) and describe the change for
// [Tree.Edit].
func (b *TextBuffer) DeleteCharsEdit(start, end int) (InputEdit, error) {
	if err := b.lockWrite(); err != nil {
		return InputEdit{}, err
	}
	defer b.mu.Unlock()

	if !validCharRange(start, end, len(b.data)/2) {
		return InputEdit{}, newRangeError("delete chars", start, end, len(b.data)/2)
	}
	startPoint := b.pointAtLocked(2 * start)
	oldEndPoint := b.pointAtLocked(2 * end)
	if err := b.deleteCharsLocked(start, end); err != nil {
		return InputEdit{}, err
	}
	return InputEdit{
		StartByte:      uint(2 * start),
		OldEndByte:     uint(2 * end),
		NewEndByte:     uint(2 * start),
		StartPosition:  startPoint,
		OldEndPosition: oldEndPoint,
		NewEndPosition: startPoint,
	}, nil
}

// Destroy the buffer. Every later operation fails with [ErrDestroyed].
func (b *TextBuffer) Close() error {
	if err := b.lockWrite(); err != nil {
		return err
	}
	defer b.mu.Unlock()

	b.closed = true
	b.data = nil
	return nil
}

func (b *TextBuffer) insertLocked(op string, units []byte, index int) error {
	if !validCharIndex(index, len(b.data)/2) {
		return newIndexError(op, index, len(b.data)/2)
	}
	b.data = slices.Insert(b.data, 2*index, units...)
	return nil
}

func (b *TextBuffer) deleteCharsLocked(start, end int) error {
	if !validCharRange(start, end, len(b.data)/2) {
		return newRangeError("delete chars", start, end, len(b.data)/2)
	}
	b.data = slices.Delete(b.data, 2*start, 2*end)
	return nil
}

// Char indices are checked against the length in code units before they
// are doubled into byte offsets, so large indices cannot overflow.
func validCharIndex(index, length int) bool {
	return index >= 0 && index <= length
}

func validCharRange(start, end, length int) bool {
	return start >= 0 && start <= end && end <= length
}

func (b *TextBuffer) pointAtLocked(byteOffset int) Point {
	var point Point
	rowStart := 0
	for i := 0; i < byteOffset; i += 2 {
		if binary.LittleEndian.Uint16(b.data[i:]) == '\n' {
			point.Row++
			rowStart = i + 2
		}
	}
	point.Column = uint(byteOffset - rowStart)
	return point
}

// Lend the raw bytes to a parse. Mutations fail with [ErrBufferBorrowed]
// until release is called.
func (b *TextBuffer) borrow() (data []byte, release func(), err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, nil, ErrDestroyed
	}
	b.borrows++
	return b.data, b.giveBack, nil
}

func (b *TextBuffer) giveBack() {
	b.mu.Lock()
	b.borrows--
	b.mu.Unlock()
}
