// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package httpcore

import (
	"errors"

	"code.hybscloud.com/iox"
)

// These are provided as package-level aliases so callers can reference the
// semantic control-flow errors without importing iox directly, exactly as
// code.hybscloud.com/framer does for its own Channel contract.
var (
	// ErrWouldBlock means "no further progress without waiting". It is an
	// expected, non-failure control-flow signal from a Channel. Any returned
	// byte count still represents real progress; the caller must wait for
	// the next Scheduler readiness event before retrying.
	ErrWouldBlock = iox.ErrWouldBlock

	// ErrMore means a Channel completion is usable and more completions
	// will follow on the same ongoing operation.
	ErrMore = iox.ErrMore
)

var (
	// ErrInvalidArgument reports a nil Channel, nil Scheduler, or otherwise
	// malformed construction argument.
	ErrInvalidArgument = errors.New("httpcore: invalid argument")

	// ErrClosed is returned by a Scheduler's Modify (as in package poller)
	// for a WatcherID that is not, or is no longer, registered.
	ErrClosed = errors.New("httpcore: handle closed")

	// ErrMalformedChunkSize reports a chunk-size line that contains no hex
	// digits, rather than stalling forever waiting for bytes that can never
	// complete the frame.
	ErrMalformedChunkSize = errors.New("httpcore: malformed chunk size")

	// ErrHeaderTooLarge reports that the header section exceeded the
	// configured limit before a terminator was found.
	ErrHeaderTooLarge = errors.New("httpcore: header section too large")
)
