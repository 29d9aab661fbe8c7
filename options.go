// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package httpcore

// This file follows the functional-options shape of
// code.hybscloud.com/framer's options.go: a private Options struct with
// package-level defaults, and ReaderOption/WriterOption closures that mutate
// it. Reader and Writer each get their own option type because the reader's
// tunables (stack read size, header limit) have no writer analogue; the only
// tunable both share is the construction-time Logger hook.

// readerOptions configures implementation-chosen Reader tunables.
type readerOptions struct {
	// stackReadSize is the fixed-size buffer each readable event reads
	// into before appending to recvBuf.
	stackReadSize int
	// headerLimit caps the header section size before CRLFCRLF is found.
	// Zero means unlimited.
	headerLimit int
	logger      Logger
}

var defaultReaderOptions = readerOptions{
	stackReadSize: 8 * 1024,
	headerLimit:   0,
}

// ReaderOption configures a Reader at construction time.
type ReaderOption func(*readerOptions)

// WithReaderStackReadSize overrides the per-readability-event read chunk
// size. Larger values reduce syscalls per event at the cost of more copying
// into recvBuf when the channel has little data ready.
func WithReaderStackReadSize(n int) ReaderOption {
	return func(o *readerOptions) {
		if n > 0 {
			o.stackReadSize = n
		}
	}
}

// WithReaderHeaderLimit caps the header section size. Exceeding it without
// finding CRLFCRLF ends the transfer through the error callback with
// bodyStarted=false; the ErrHeaderTooLarge value itself is passed only to
// the Reader's logger.
func WithReaderHeaderLimit(n int) ReaderOption {
	return func(o *readerOptions) { o.headerLimit = n }
}

// WithReaderLogger attaches an optional structured logger.
func WithReaderLogger(l Logger) ReaderOption {
	return func(o *readerOptions) { o.logger = l }
}

// writerOptions configures tunables for Writer construction.
type writerOptions struct {
	logger Logger
}

var defaultWriterOptions = writerOptions{}

// WriterOption configures a Writer at construction time.
type WriterOption func(*writerOptions)

// WithWriterLogger attaches an optional structured logger.
func WithWriterLogger(l Logger) WriterOption {
	return func(o *writerOptions) { o.logger = l }
}
