package binding

import (
	ts "github.com/itsaky/go-tree-sitter-android"
)

func NewBuffer() Handle {
	return save(ts.NewTextBuffer())
}

func NewBufferString(text string) (Handle, error) {
	buffer, err := ts.NewTextBufferString(text)
	if err != nil {
		return nil, err
	}
	return save(buffer), nil
}

// Destroy a buffer. A buffer borrowed by a running parse cannot be deleted.
func DeleteBuffer(h Handle) error {
	return remove(h, (*ts.TextBuffer).Close)
}

// Look up a buffer that has not been closed.
func openBuffer(h Handle) (*ts.TextBuffer, error) {
	buffer, err := lookup[*ts.TextBuffer](h)
	if err != nil {
		return nil, err
	}
	if buffer.Closed() {
		return nil, ts.ErrDestroyed
	}
	return buffer, nil
}

func BufferCharAt(h Handle, index int) (uint16, error) {
	buffer, err := lookup[*ts.TextBuffer](h)
	if err != nil {
		return 0, err
	}
	return buffer.CharAt(index)
}

func BufferInsertUnit(h Handle, unit uint16, index int) error {
	buffer, err := lookup[*ts.TextBuffer](h)
	if err != nil {
		return err
	}
	return buffer.InsertUnit(unit, index)
}

func BufferInsert(h Handle, text string, index int) error {
	buffer, err := lookup[*ts.TextBuffer](h)
	if err != nil {
		return err
	}
	return buffer.Insert(text, index)
}

func BufferAppend(h Handle, text string) error {
	buffer, err := lookup[*ts.TextBuffer](h)
	if err != nil {
		return err
	}
	return buffer.Append(text)
}

func BufferAppendRange(h Handle, text string, from, length int) error {
	buffer, err := lookup[*ts.TextBuffer](h)
	if err != nil {
		return err
	}
	return buffer.AppendRange(text, from, length)
}

func BufferDeleteChars(h Handle, start, end int) error {
	buffer, err := lookup[*ts.TextBuffer](h)
	if err != nil {
		return err
	}
	return buffer.DeleteChars(start, end)
}

func BufferDeleteBytes(h Handle, start, end int) error {
	buffer, err := lookup[*ts.TextBuffer](h)
	if err != nil {
		return err
	}
	return buffer.DeleteBytes(start, end)
}

func BufferLen(h Handle) (int, error) {
	buffer, err := openBuffer(h)
	if err != nil {
		return 0, err
	}
	return buffer.Len(), nil
}

func BufferByteLen(h Handle) (int, error) {
	buffer, err := openBuffer(h)
	if err != nil {
		return 0, err
	}
	return buffer.ByteLen(), nil
}

func BufferString(h Handle) (string, error) {
	buffer, err := lookup[*ts.TextBuffer](h)
	if err != nil {
		return "", err
	}
	return buffer.Text()
}

// Copy out the UTF-16LE bytes. The caller owns the returned slice.
func BufferBytes(h Handle) ([]byte, error) {
	buffer, err := lookup[*ts.TextBuffer](h)
	if err != nil {
		return nil, err
	}
	return buffer.Bytes()
}

func BufferEqual(a, b Handle) (bool, error) {
	left, err := openBuffer(a)
	if err != nil {
		return false, err
	}
	right, err := openBuffer(b)
	if err != nil {
		return false, err
	}
	return left.Equal(right), nil
}
