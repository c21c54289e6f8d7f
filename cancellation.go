package tree_sitter

import (
	"runtime"
	"sync/atomic"
)

// A one-shot cancellation signal for a single parse round.
//
// The engine keeps a pointer to the flag and reads it at its own
// checkpoints, so the flag stays pinned from installation until release.
// A non-zero flag tells the engine to halt and return no tree.
type CancellationToken struct {
	flag    uintptr
	pinner  runtime.Pinner
	claimed atomic.Bool

	// Set once the engine call has returned. aborted records whether it
	// returned no tree because of the flag.
	finished atomic.Bool
	aborted  atomic.Bool
}

func newCancellationToken() *CancellationToken {
	token := &CancellationToken{}
	token.pinner.Pin(&token.flag)
	return token
}

// Get the address the engine polls.
func (t *CancellationToken) Flag() *uintptr {
	return &t.flag
}

// Ask the engine to stop. Calling it again is harmless.
func (t *CancellationToken) Cancel() {
	atomic.StoreUintptr(&t.flag, 1)
}

// Report whether cancellation has been requested.
func (t *CancellationToken) Cancelled() bool {
	return atomic.LoadUintptr(&t.flag) != 0
}

// Reserve the round's single engine call.
func (t *CancellationToken) claim() bool {
	return t.claimed.CompareAndSwap(false, true)
}

// Mark the engine call as returned. Later requests have nothing to stop.
func (t *CancellationToken) finish(aborted bool) {
	t.aborted.Store(aborted)
	t.finished.Store(true)
}

func (t *CancellationToken) release() {
	t.pinner.Unpin()
}
