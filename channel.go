// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package httpcore

import "io"

// Channel is the non-blocking byte stream Reader and Writer are driven
// over. It is borrowed, not owned: neither Reader nor Writer closes it on
// completion or cancellation — the caller owns connection lifecycle.
//
// Read and Write must never block. When no bytes can be transferred without
// waiting for the peer, they return (0, ErrWouldBlock) (or a partial count
// with ErrWouldBlock, per the io.Reader/io.Writer short-operation
// contract). Any other non-nil error (including io.EOF on Read) is treated
// as a hangup or fatal transport error.
type Channel interface {
	io.Reader
	io.Writer
}

// EventKind is a bitmask of the readiness conditions a Scheduler can watch
// for on a Channel.
type EventKind uint8

const (
	// EventReadable means the Channel has bytes available to Read without
	// blocking, or has reached EOF.
	EventReadable EventKind = 1 << iota
	// EventWritable means the Channel can accept a Write without blocking.
	EventWritable
	// EventError means the Channel has hung up or entered an error state.
	EventError
)

func (k EventKind) has(bit EventKind) bool { return k&bit != 0 }

// WatcherID is an opaque handle returned by Scheduler.Register, used to
// modify or deregister interest later. It has no meaning outside the
// Scheduler that issued it.
type WatcherID uint64

// Scheduler delivers readiness callbacks for registered Channels, serially,
// on one goroutine per Scheduler instance. Reader and Writer assume this:
// they perform no internal locking and must only be driven from the
// goroutine the owning Scheduler calls back on.
//
// Callers supply a Scheduler implementation that invokes a registered
// callback when the channel becomes readable, writable, or reaches an
// error/hangup state, and supports deregistration by opaque watcher id.
// Package httpcore/poller provides a concrete epoll-backed implementation
// plus a portable ManualScheduler for tests and platforms without epoll.
type Scheduler interface {
	// Register starts watching ch for the given interest and returns a
	// WatcherID identifying the registration. cb is invoked with the subset
	// of interest that became ready; it may be called multiple times with
	// different subsets across the registration's lifetime.
	Register(ch Channel, interest EventKind, cb func(EventKind)) (WatcherID, error)

	// Modify changes the interest set for an existing registration.
	Modify(id WatcherID, interest EventKind) error

	// Deregister stops watching the Channel associated with id. It is safe
	// to call more than once; the second and later calls are no-ops.
	Deregister(id WatcherID) error
}
