// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package httpcore drives a single full-duplex HTTP/1.x message exchange
// over a non-blocking byte channel.
//
// Semantics and design:
//   - Event-driven: Reader and Writer never block. They are constructed
//     against a Channel and a Scheduler and are driven entirely by
//     readiness callbacks delivered by the Scheduler. There is no internal
//     locking; a single Reader or Writer must be driven from one goroutine
//     at a time, matching the cooperative single-threaded scheduling model
//     the rest of this package assumes (see Scheduler).
//   - Non-blocking first: iox.ErrWouldBlock is the Channel's "no further
//     progress without waiting" signal, re-exported as httpcore.ErrWouldBlock,
//     exactly the contract code.hybscloud.com/iox defines and
//     code.hybscloud.com/framer builds on.
//   - Framing: Reader decodes a body that is chunked, fixed-length, or
//     connection-close framed, after learning which from a caller-supplied
//     headers-done callback. Writer transmits a header blob followed by a
//     body that is pre-supplied, polled from a producer callback, or
//     chunk-framed.
//
// Wire format (chunked body, as written by Writer and accepted by Reader):
//
//	<hex-size>\r\n
//	<payload bytes of exactly that size>
//	\r\n<hex-size>\r\n
//	<payload>
//	...
//	\r\n0\r\n
//
// The first chunk is not preceded by \r\n. The terminator is literally
// \r\n0\r\n. Writer never emits chunk extensions. Reader accepts chunk
// extensions on the size line and discards them; it does not parse
// trailers after the terminating zero chunk.
package httpcore
