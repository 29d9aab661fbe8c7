// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package poller provides httpcore.Scheduler implementations: an
// epoll-backed Scheduler for Linux (grounded on the syscall-wrapping style
// of valyala/fasthttp's tcplisten package) and a portable ManualScheduler
// usable in tests and on platforms without epoll, grounded on the
// teacher's own synchronous io.Pipe-based test-and-example style
// (examples/pipe_test.go, framer_test.go's scripted fakes).
package poller
