// Package control carries the out-of-band control channel between signal
// delivery and the monitor loop.
//
// Two messages exist: STOP, which is terminal, and REFRESH, which latches a
// pending update until the loop consumes it. Neither is acknowledged.
package control

import "sync/atomic"

// Flags is the done/update-now pair observed by the monitor loop. Writers
// only flip atomics and poke the wake channel, so they are safe to call
// from any goroutine at any time.
type Flags struct {
	done   atomic.Bool
	update atomic.Bool
	wake   chan struct{}
}

// NewFlags returns flags in the RUNNING state with no pending update.
func NewFlags() *Flags {
	return &Flags{wake: make(chan struct{}, 1)}
}

// Stop moves to STOPPING. There is no way back.
func (f *Flags) Stop() {
	f.done.Store(true)
	f.poke()
}

// Done reports whether Stop has been called.
func (f *Flags) Done() bool {
	return f.done.Load()
}

// RequestUpdate latches a pending update regardless of state.
func (f *Flags) RequestUpdate() {
	f.update.Store(true)
	f.poke()
}

// TakeUpdate consumes the pending update, reporting whether one was set.
func (f *Flags) TakeUpdate() bool {
	return f.update.Swap(false)
}

// Pending reports whether an update is latched without consuming it.
func (f *Flags) Pending() bool {
	return f.update.Load()
}

// Wake is readable after Stop or RequestUpdate. It holds at most one token,
// so a burst of events wakes the loop once.
func (f *Flags) Wake() <-chan struct{} {
	return f.wake
}

func (f *Flags) poke() {
	select {
	case f.wake <- struct{}{}:
	default:
	}
}
