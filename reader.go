// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package httpcore

import (
	"errors"
	"io"
)

// HeadersDoneFunc is invoked once, the first time CRLFCRLF is found in the
// incoming stream, with the raw header bytes (including the terminating
// CRLFCRLF). It must set *encoding to the body's transfer framing. Returning
// End terminates the transfer immediately with no further callbacks.
type HeadersDoneFunc func(header []byte, encoding *TransferEncoding) Decision

// BodyChunkFunc is invoked with successive body payloads. Returning End
// terminates the transfer immediately without invoking Done.
type BodyChunkFunc func(buf DataBuffer) Decision

// ReadDoneFunc is the terminal success callback. buf carries the full
// message body when the Reader was constructed with overwriteChunks=false;
// it is empty (modulo the NUL sentinel byte) when overwriteChunks=true,
// since the body was already delivered incrementally via BodyChunk.
type ReadDoneFunc func(buf DataBuffer)

// ReadErrorFunc is the terminal failure callback. bodyStarted distinguishes
// a hangup before any body byte arrived from one mid-body.
type ReadErrorFunc func(bodyStarted bool)

// ReaderCallbacks groups the four callbacks a Reader invokes. At most one of
// Done or Error fires, and it fires last; neither fires when a callback
// returns End or the Reader is cancelled.
type ReaderCallbacks struct {
	HeadersDone HeadersDoneFunc
	BodyChunk   BodyChunkFunc
	Done        ReadDoneFunc
	Error       ReadErrorFunc
}

// readerState is an explicit state machine in place of a bare "processing"
// boolean, so that a Cancel call made from inside a callback can be
// deferred until the callback returns instead of reentering Reader state
// mid-mutation.
type readerState uint8

const (
	readerActive readerState = iota
	readerInCallback
	readerPendingCancel
	readerClosed
)

// chunkCursor tracks the chunked-decoder's two cursors into recvBuf: idx is
// the write-cursor of collapsed payload ready for delivery, len is the
// remaining byte count of the current chunk whose header has been consumed
// but whose payload has not yet fully arrived. While that payload is still
// arriving, idx+len may exceed len(recvBuf).
type chunkCursor struct {
	idx int
	len int
}

// Reader consumes bytes from a Channel, finds the header terminator,
// learns the body's transfer encoding, decodes the body, and emits
// incremental body and completion events.
type Reader struct {
	channel   Channel
	scheduler Scheduler
	watcher   WatcherID

	overwriteChunks bool
	cb              ReaderCallbacks
	userData        any

	recvBuf        []byte
	headerLen      int
	headerLimit    int
	encoding       TransferEncoding
	contentLeft    int64
	chunk          chunkCursor
	bodyBytesSeen  int64 // total body payload bytes observed, regardless of overwriteChunks truncation
	callbackIssued bool

	state readerState

	stackBuf []byte
	logger   Logger
}

// ReadStart begins reading a message. It registers readable and error
// interest on channel with scheduler and returns a live Reader. Cancel it
// exactly once, from outside one of its own callbacks (or return End from
// one, which has the same effect), to release the registration.
func ReadStart(channel Channel, scheduler Scheduler, overwriteChunks bool, cb ReaderCallbacks, userData any, opts ...ReaderOption) (*Reader, error) {
	if channel == nil || scheduler == nil {
		return nil, ErrInvalidArgument
	}
	o := defaultReaderOptions
	for _, fn := range opts {
		fn(&o)
	}
	r := &Reader{
		channel:         channel,
		scheduler:       scheduler,
		overwriteChunks: overwriteChunks,
		cb:              cb,
		userData:        userData,
		stackBuf:        make([]byte, o.stackReadSize),
		headerLimit:     o.headerLimit,
		logger:          o.logger,
	}
	id, err := scheduler.Register(channel, EventReadable|EventError, r.onEvent)
	if err != nil {
		return nil, err
	}
	r.watcher = id
	return r, nil
}

// SetCallbacks atomically replaces the four callbacks. It is legal at any
// time except from inside one of this Reader's own callbacks when the
// Reader is about to be cancelled (i.e. when the callback is returning End).
func (r *Reader) SetCallbacks(cb ReaderCallbacks) {
	r.cb = cb
}

// Cancel tears the Reader down: deregisters its watcher and releases it. If
// called from inside one of the Reader's own callbacks (state ==
// readerInCallback), it is deferred — recorded as pending and applied the
// moment the callback returns — rather than freeing the Reader out from
// under its own stack frame.
func (r *Reader) Cancel() {
	switch r.state {
	case readerClosed:
		return
	case readerInCallback:
		r.state = readerPendingCancel
		return
	}
	r.state = readerClosed
	_ = r.scheduler.Deregister(r.watcher)
	r.recvBuf = nil
}

// inCallback runs fn with the reentrancy guard held, then applies any
// cancellation that fn triggered on itself once fn returns.
func (r *Reader) inCallback(fn func()) {
	prev := r.state
	r.state = readerInCallback
	fn()
	if r.state == readerPendingCancel {
		r.state = prev
		r.Cancel()
		return
	}
	if r.state == readerInCallback {
		r.state = prev
	}
}

func (r *Reader) logDebug(msg string, fields map[string]interface{}) {
	if r.logger == nil {
		return
	}
	r.logger.WithFields(fields).Debug(msg)
}

func (r *Reader) onEvent(kind EventKind) {
	if r.state == readerClosed {
		return
	}
	if kind.has(EventError) {
		r.handleHangup(io.ErrClosedPipe)
		return
	}
	if kind.has(EventReadable) {
		r.handleReadable()
	}
}

// handleReadable drains the channel into recvBuf until it would block or
// hangs up, then drives header discovery and body decode.
func (r *Reader) handleReadable() {
	for {
		n, err := r.channel.Read(r.stackBuf)
		if n > 0 {
			r.recvBuf = append(r.recvBuf, r.stackBuf[:n]...)
		}
		if err != nil {
			if errors.Is(err, ErrWouldBlock) {
				break
			}
			// Bytes read in this same pass are decoded before the hangup is
			// handled, so an EOF right after the last body byte still sees it.
			r.process()
			if r.state != readerClosed {
				r.handleHangup(err)
			}
			return
		}
		if n == 0 {
			break
		}
	}
	r.process()
}

// process runs header discovery then body decode dispatch, looping while
// there is buffered data that lets it make progress without more I/O.
func (r *Reader) process() {
	if r.state == readerClosed {
		return
	}
	if r.headerLen == 0 {
		if !r.discoverHeader() {
			return
		}
	}
	r.decodeBody()
}

// discoverHeader searches recvBuf for the CRLFCRLF header terminator and,
// once found, invokes HeadersDone to learn the transfer encoding. Returns
// true if headers were found (and the Reader should proceed to body
// decode), false if more data is needed or the transfer ended.
func (r *Reader) discoverHeader() bool {
	k := SubstringIndex(r.recvBuf, crlfcrlf)
	if k < 0 {
		if r.headerLimitExceeded() {
			r.fail(ErrHeaderTooLarge, false)
		}
		return false
	}
	headerLen := k + len(crlfcrlf)
	header := r.recvBuf[:headerLen]

	var encoding TransferEncoding
	var decision Decision
	r.inCallback(func() {
		if r.cb.HeadersDone != nil {
			decision = r.cb.HeadersDone(header, &encoding)
		}
	})
	if r.state == readerClosed {
		return false
	}
	if decision == End {
		r.Cancel()
		return false
	}

	r.recvBuf = RemoveBlock(r.recvBuf, 0, headerLen)
	r.headerLen = headerLen
	r.encoding = encoding
	if encoding.IsContentLength() {
		r.contentLeft = encoding.Len()
	}
	return true
}

func (r *Reader) headerLimitExceeded() bool {
	// A zero limit (the default) means unlimited; callers opt into a cap
	// with WithReaderHeaderLimit.
	return r.headerLimit > 0 && len(r.recvBuf) > r.headerLimit
}

// decodeBody dispatches to the decoder matching the learned transfer
// encoding.
func (r *Reader) decodeBody() {
	switch {
	case r.encoding.IsContentLength():
		r.decodeContentLength()
	case r.encoding.IsChunked():
		r.decodeChunked()
	default:
		r.decodeUnknown()
	}
}

func (r *Reader) decodeContentLength() {
	if r.contentLeft == 0 {
		r.complete()
		return
	}
	if len(r.recvBuf) == 0 {
		return
	}
	if r.overwriteChunks {
		n := int64(len(r.recvBuf))
		if n > r.contentLeft {
			n = r.contentLeft
		}
		if n > 0 {
			if !r.deliverChunk(r.recvBuf[:n]) {
				return
			}
			r.contentLeft -= n
			r.bodyBytesSeen += n
			r.recvBuf = RemoveBlock(r.recvBuf, 0, int(n))
		}
		if r.contentLeft == 0 {
			r.complete()
		}
		return
	}
	// Non-overwrite: accumulate the whole body in recvBuf and deliver it
	// once, complete, as the Done buffer (see SPEC_FULL.md §4.1).
	r.bodyBytesSeen = int64(len(r.recvBuf))
	if int64(len(r.recvBuf)) >= r.contentLeft {
		r.complete()
	}
}

func (r *Reader) decodeUnknown() {
	if len(r.recvBuf) == 0 {
		return
	}
	if r.overwriteChunks {
		if !r.deliverChunk(r.recvBuf) {
			return
		}
		r.bodyBytesSeen += int64(len(r.recvBuf))
		r.recvBuf = r.recvBuf[:0]
		return
	}
	r.bodyBytesSeen = int64(len(r.recvBuf))
	// Unknown never self-declares completion; only EOF does (handleHangup).
}

func (r *Reader) decodeChunked() {
	startIdx := r.chunk.idx
	zeroReached, err := decodeChunkFraming(&r.recvBuf, &r.chunk)
	if err != nil {
		r.fail(err, true)
		return
	}
	progress := r.chunk.idx - startIdx
	if progress > 0 {
		if r.overwriteChunks {
			if !r.deliverChunk(r.recvBuf[:r.chunk.idx]) {
				return
			}
			r.bodyBytesSeen += int64(r.chunk.idx)
			r.recvBuf = RemoveBlock(r.recvBuf, 0, r.chunk.idx)
			r.chunk.idx = 0
		} else {
			r.bodyBytesSeen += int64(progress)
		}
	}
	if zeroReached {
		r.complete()
	}
}

// deliverChunk invokes BodyChunk with buf (SystemOwned: valid only for the
// call) and returns false if the callback ended the transfer.
func (r *Reader) deliverChunk(buf []byte) bool {
	if r.cb.BodyChunk == nil {
		r.callbackIssued = true
		return true
	}
	var decision Decision
	r.inCallback(func() {
		decision = r.cb.BodyChunk(DataBuffer{B: buf, Ownership: SystemOwned})
	})
	r.callbackIssued = true
	if r.state == readerClosed {
		return false
	}
	if decision == End {
		r.Cancel()
		return false
	}
	return true
}

// complete appends a NUL sentinel past the reported body length (so the
// buffer handed to callers is always safely one-past-readable without a
// reallocation on the common append-one-more-byte path), invokes Done with
// the consolidated buffer, then cancels.
func (r *Reader) complete() {
	body := r.recvBuf
	reported := len(body)
	body = append(body, 0)
	r.logDebug("read complete", map[string]interface{}{"bytes": reported, "encoding": r.encoding.String()})
	r.inCallback(func() {
		if r.cb.Done != nil {
			r.cb.Done(DataBuffer{B: body[:reported], Ownership: UserOwned})
		}
	})
	r.Cancel()
}

// handleHangup runs when the channel reports an error or closes. A hangup
// while decoding an Unknown-length body (one with no declared length) that
// has already produced at least one byte is the normal way such a body
// ends, so it completes successfully rather than failing.
func (r *Reader) handleHangup(cause error) {
	if r.encoding.IsUnknown() && (r.bodyBytesSeen > 0 || r.callbackIssued) {
		r.complete()
		return
	}
	bodyStarted := r.bodyBytesSeen > 0 || r.callbackIssued || (r.headerLen > 0 && len(r.recvBuf) > 0)
	r.fail(cause, bodyStarted)
}

func (r *Reader) fail(cause error, bodyStarted bool) {
	r.logDebug("read error", map[string]interface{}{"bodyStarted": bodyStarted, "cause": cause})
	r.inCallback(func() {
		if r.cb.Error != nil {
			r.cb.Error(bodyStarted)
		}
	})
	r.Cancel()
}
