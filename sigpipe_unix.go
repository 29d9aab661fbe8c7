//go:build unix

// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package httpcore

import (
	"os/signal"
	"syscall"
)

// maskSIGPIPE masks SIGPIPE for the duration of one writable-readiness
// handling pass and returns a function that resets SIGPIPE to Go's default
// handling with signal.Reset. A disposition set earlier with signal.Notify
// or signal.Ignore is not restored: the reset clears it.
// Writing to a channel whose peer has closed its read side raises SIGPIPE
// on most unix platforms, which by default terminates the process; masking
// it lets the write instead fail with EPIPE, which is handled the same way
// as any other write error.
//
// There is no third-party signal-masking library in the example corpus to
// ground this on (valyala/fasthttp relies on net.Conn's own SIGPIPE
// immunity and never masks it explicitly); os/signal.Ignore/Reset is the
// standard-library idiom and is used here for that reason, scoped as
// tightly as the standard library allows (process-wide disposition change,
// immediately reset to the default after the write pass).
func maskSIGPIPE() (restore func()) {
	signal.Ignore(syscall.SIGPIPE)
	return func() { signal.Reset(syscall.SIGPIPE) }
}
