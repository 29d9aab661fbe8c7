// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package httpcore

// transferKind tags the three HTTP/1.x body-framing strategies. It is kept
// unexported: callers construct a TransferEncoding with Chunked, ContentLength,
// or Unknown and inspect it with the Is* predicates and Len, never by
// comparing the tag directly. A tagged sum type rules out the "an integer
// with a side-channel content_length" representation where a stray
// Content-Length value could be read even when the framing is actually
// chunked.
type transferKind uint8

const (
	kindUnknown transferKind = iota
	kindChunked
	kindContentLength
)

// TransferEncoding names how a message body is delimited within the byte
// stream: HTTP/1.1 chunked encoding, a fixed Content-Length, or
// connection-close / EOF framing when neither is known.
type TransferEncoding struct {
	kind   transferKind
	length int64
}

// Chunked reports HTTP/1.1 chunked transfer encoding.
func Chunked() TransferEncoding { return TransferEncoding{kind: kindChunked} }

// ContentLength reports a body of exactly n bytes.
func ContentLength(n int64) TransferEncoding {
	return TransferEncoding{kind: kindContentLength, length: n}
}

// Unknown reports a body that extends until the peer closes the
// channel (EOF-framed). It is the zero value of TransferEncoding.
func Unknown() TransferEncoding { return TransferEncoding{kind: kindUnknown} }

// IsChunked reports whether e is HTTP/1.1 chunked encoding.
func (e TransferEncoding) IsChunked() bool { return e.kind == kindChunked }

// IsContentLength reports whether e is a fixed-length body.
func (e TransferEncoding) IsContentLength() bool { return e.kind == kindContentLength }

// IsUnknown reports whether e is EOF-framed (connection-close).
func (e TransferEncoding) IsUnknown() bool { return e.kind == kindUnknown }

// Len returns the declared body length for a Content-Length encoding. It is
// meaningless (zero) for Chunked or Unknown.
func (e TransferEncoding) Len() int64 { return e.length }

func (e TransferEncoding) String() string {
	switch e.kind {
	case kindChunked:
		return "chunked"
	case kindContentLength:
		return "content-length"
	default:
		return "unknown"
	}
}

// Decision is returned by user callbacks to tell the reader or writer
// whether to keep going or stop the transfer early.
type Decision uint8

const (
	// Continue tells the reader or writer to keep processing normally.
	Continue Decision = iota
	// End tells the reader or writer to terminate the transfer immediately,
	// without invoking any further callbacks for this handle (in particular,
	// not Done).
	End
)

// Ownership documents whether a DataBuffer's backing array may be retained
// by the callback past the call that delivered it.
//
// Go's garbage collector means "ownership" here is not about manual free —
// it is about whether the reader may reuse or mutate the same backing
// array on a subsequent readiness event. SystemOwned buffers alias the
// reader's internal receive buffer and are only valid for the duration of
// the callback; UserOwned buffers (the terminal Done buffer) are handed
// over outright — the reader drops its own reference to the backing array
// — and are safe to retain.
type Ownership uint8

const (
	// SystemOwned means the callback must not retain the buffer past the
	// call: the reader may overwrite or discard the backing array on the
	// next readiness event.
	SystemOwned Ownership = iota
	// UserOwned means the buffer is the callback's to keep; the reader will
	// never touch its backing array again.
	UserOwned
)

// DataBuffer is a borrowed or owned byte range handed to a callback. See
// Ownership for the retention contract.
type DataBuffer struct {
	B         []byte
	Ownership Ownership
}
