// Package binding exposes parsers, text buffers and trees to foreign callers
// as opaque handles.
//
// Every function validates its handles before use: a nil handle fails with
// [tree_sitter.ErrNullArgument], a handle that was deleted fails with
// [tree_sitter.ErrDestroyed] and a handle of the wrong kind fails with
// [ErrInvalidHandle]. Nothing behind a handle is touched after it has been
// deleted.
//
// A deleted handle stays registered as an empty slot. Its address is never
// handed out again, so a stale handle cannot reach an object created later.
package binding

import (
	"errors"
	"sync"
	"unsafe"

	"github.com/mattn/go-pointer"

	ts "github.com/itsaky/go-tree-sitter-android"
)

// An opaque reference to an object owned by this package. The nil handle
// refers to nothing.
type Handle unsafe.Pointer

var ErrInvalidHandle = errors.New("handle refers to a different kind of object")

// The registered value behind a handle. obj is nil once the handle has been
// deleted.
type slot struct {
	mu  sync.Mutex
	obj any
}

func save(v any) Handle {
	return Handle(pointer.Save(&slot{obj: v}))
}

func slotOf(h Handle) (*slot, error) {
	if h == nil {
		return nil, ts.ErrNullArgument
	}
	s, ok := pointer.Restore(unsafe.Pointer(h)).(*slot)
	if !ok {
		return nil, ErrInvalidHandle
	}
	return s, nil
}

func lookup[T any](h Handle) (T, error) {
	var zero T
	s, err := slotOf(h)
	if err != nil {
		return zero, err
	}

	s.mu.Lock()
	v := s.obj
	s.mu.Unlock()

	if v == nil {
		return zero, ts.ErrDestroyed
	}
	obj, ok := v.(T)
	if !ok {
		return zero, ErrInvalidHandle
	}
	return obj, nil
}

// Release the object behind h with destroy and empty the slot. The slot is
// kept only when destroy fails.
func remove[T any](h Handle, destroy func(T) error) error {
	s, err := slotOf(h)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.obj == nil {
		return ts.ErrDestroyed
	}
	obj, ok := s.obj.(T)
	if !ok {
		return ErrInvalidHandle
	}
	if err := destroy(obj); err != nil {
		return err
	}
	s.obj = nil
	return nil
}
