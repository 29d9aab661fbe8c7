// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package httpcore

import (
	"errors"
	"strconv"
)

// WriterHeadersDoneFunc is invoked once, after at least the header prefix
// has been fully flushed to the Channel.
type WriterHeadersDoneFunc func()

// ProduceBodyFunc is polled for the next body chunk. Returning Continue
// with buf == nil means "nothing ready yet, call me again after the next
// writable event"; returning Continue with a non-nil buf supplies the next
// chunk; returning End closes the body (emitting the chunked terminator in
// Chunked mode) and retires the callback.
type ProduceBodyFunc func() (buf []byte, decision Decision)

// WriteDoneFunc is the terminal success callback.
type WriteDoneFunc func()

// WriteErrorFunc is the terminal failure callback. headersDone reports
// whether the header prefix had already been flushed when the error hit.
type WriteErrorFunc func(headersDone bool)

// WriterCallbacks groups the four callbacks a Writer invokes.
type WriterCallbacks struct {
	HeadersDone WriterHeadersDoneFunc
	ProduceBody ProduceBodyFunc
	Done        WriteDoneFunc
	Error       WriteErrorFunc
}

type writerState uint8

const (
	writerActive writerState = iota
	writerInCallback
	writerPendingCancel
	writerClosed
)

// Writer transmits a header blob followed by a body that is pre-supplied,
// polled incrementally from ProduceBody, or HTTP chunk-framed.
type Writer struct {
	channel   Channel
	scheduler Scheduler
	watcher   WatcherID

	cb       WriterCallbacks
	userData any

	writeBuf    []byte
	encoding    TransferEncoding
	headerLen   int
	written     int64 // cumulative bytes written to the channel this transfer
	headersDone bool
	chunkCount  int
	bodyRetired bool

	state  writerState
	logger Logger
}

// WriteStart begins writing a message: header, then an optional
// pre-supplied body, then whatever ProduceBody yields. Framing (chunked,
// content-length, or raw) is applied to every body fragment per encoding.
func WriteStart(channel Channel, scheduler Scheduler, header []byte, initialBody []byte, encoding TransferEncoding, cb WriterCallbacks, userData any, opts ...WriterOption) (*Writer, error) {
	if channel == nil || scheduler == nil {
		return nil, ErrInvalidArgument
	}
	o := defaultWriterOptions
	for _, fn := range opts {
		fn(&o)
	}
	w := &Writer{
		channel:   channel,
		scheduler: scheduler,
		cb:        cb,
		userData:  userData,
		encoding:  encoding,
		logger:    o.logger,
	}
	w.writeBuf = append(w.writeBuf, header...)
	w.headerLen = len(header)

	if len(initialBody) > 0 {
		w.appendFramed(initialBody)
	}
	if w.cb.ProduceBody != nil {
		w.pollProducerOnce()
	}

	id, err := scheduler.Register(channel, EventWritable|EventError, w.onEvent)
	if err != nil {
		return nil, err
	}
	w.watcher = id
	return w, nil
}

// Cancel tears the Writer down, symmetric to Reader.Cancel: a no-op while a
// callback is on the stack (deferred instead), otherwise deregisters the
// watcher and releases the Writer.
func (w *Writer) Cancel() {
	switch w.state {
	case writerClosed:
		return
	case writerInCallback:
		w.state = writerPendingCancel
		return
	}
	w.state = writerClosed
	_ = w.scheduler.Deregister(w.watcher)
	w.writeBuf = nil
}

func (w *Writer) inCallback(fn func()) {
	prev := w.state
	w.state = writerInCallback
	fn()
	if w.state == writerPendingCancel {
		w.state = prev
		w.Cancel()
		return
	}
	if w.state == writerInCallback {
		w.state = prev
	}
}

func (w *Writer) onEvent(kind EventKind) {
	if w.state == writerClosed {
		return
	}
	if kind.has(EventError) {
		w.fail(errChannelHangup)
		return
	}
	if kind.has(EventWritable) {
		w.handleWritable()
	}
}

var errChannelHangup = errors.New("httpcore: channel hangup")

// appendFramed frames buf per w.encoding and appends it to writeBuf.
func (w *Writer) appendFramed(buf []byte) {
	if !w.encoding.IsChunked() {
		w.writeBuf = append(w.writeBuf, buf...)
		return
	}
	if w.chunkCount == 0 {
		w.writeBuf = append(w.writeBuf, []byte(strconv.FormatInt(int64(len(buf)), 16))...)
		w.writeBuf = append(w.writeBuf, crlf...)
	} else {
		w.writeBuf = append(w.writeBuf, crlf...)
		w.writeBuf = append(w.writeBuf, []byte(strconv.FormatInt(int64(len(buf)), 16))...)
		w.writeBuf = append(w.writeBuf, crlf...)
	}
	w.writeBuf = append(w.writeBuf, buf...)
	w.chunkCount++
}

// closeBody appends the chunked terminator (a no-op outside Chunked mode)
// and marks the producer retired.
func (w *Writer) closeBody() {
	if w.encoding.IsChunked() {
		w.writeBuf = append(w.writeBuf, []byte("\r\n0\r\n")...)
	}
	w.bodyRetired = true
}

// pollProducerOnce calls ProduceBody exactly once and applies its result.
func (w *Writer) pollProducerOnce() {
	if w.cb.ProduceBody == nil || w.bodyRetired {
		return
	}
	var buf []byte
	var decision Decision
	w.inCallback(func() {
		buf, decision = w.cb.ProduceBody()
	})
	if w.state == writerClosed {
		return
	}
	if decision == End {
		w.closeBody()
		return
	}
	if len(buf) > 0 {
		w.appendFramed(buf)
	}
}

// handleWritable drains writeBuf to the channel, polling ProduceBody for
// more data as needed, until the channel would block or the body is fully
// sent.
func (w *Writer) handleWritable() {
	restore := maskSIGPIPE()
	defer restore()

	for {
		for len(w.writeBuf) > 0 {
			n, err := w.channel.Write(w.writeBuf)
			if n > 0 {
				w.written += int64(n)
				w.writeBuf = RemoveBlock(w.writeBuf, 0, n)
				if !w.headersDone && w.written >= int64(w.headerLen) {
					w.headersDone = true
					w.inCallback(func() {
						if w.cb.HeadersDone != nil {
							w.cb.HeadersDone()
						}
					})
					if w.state == writerClosed {
						return
					}
				}
			}
			if err != nil {
				if errors.Is(err, ErrWouldBlock) {
					return
				}
				w.fail(err)
				return
			}
			if n == 0 {
				return
			}
		}

		if w.cb.ProduceBody != nil && !w.bodyRetired {
			w.pollProducerOnce()
			if w.state == writerClosed {
				return
			}
			if len(w.writeBuf) > 0 {
				continue
			}
			if !w.bodyRetired {
				return // Continue with no buffer: wait for next writable event.
			}
			continue // body just closed; loop once more to drain the terminator.
		}

		break
	}

	if len(w.writeBuf) == 0 && (w.cb.ProduceBody == nil || w.bodyRetired) {
		w.logDebug("write complete", map[string]interface{}{"bytes": w.written})
		w.inCallback(func() {
			if w.cb.Done != nil {
				w.cb.Done()
			}
		})
		w.Cancel()
	}
}

func (w *Writer) fail(cause error) {
	w.logDebug("write error", map[string]interface{}{"headersDone": w.headersDone, "cause": cause})
	w.inCallback(func() {
		if w.cb.Error != nil {
			w.cb.Error(w.headersDone)
		}
	})
	w.Cancel()
}

func (w *Writer) logDebug(msg string, fields map[string]interface{}) {
	if w.logger == nil {
		return
	}
	w.logger.WithFields(fields).Debug(msg)
}
