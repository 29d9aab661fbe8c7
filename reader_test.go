// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package httpcore_test

import (
	"bytes"
	"io"
	"testing"

	"code.hybscloud.com/httpcore"
	"code.hybscloud.com/httpcore/poller"
)

// scriptedChannel simulates an underlying transport whose bytes arrive in
// named chunks, each readable exactly once, with iox.ErrWouldBlock returned
// between chunks to simulate a non-blocking socket with nothing buffered
// yet. Writes are simply accumulated.
type scriptedChannel struct {
	reads    [][]byte
	step     int
	paused   bool
	closed   bool
	writeBuf bytes.Buffer
}

func (c *scriptedChannel) Read(p []byte) (int, error) {
	if c.paused {
		c.paused = false
		return 0, httpcore.ErrWouldBlock
	}
	if c.step >= len(c.reads) {
		if c.closed {
			return 0, io.EOF
		}
		return 0, httpcore.ErrWouldBlock
	}
	chunk := c.reads[c.step]
	n := copy(p, chunk)
	if n < len(chunk) {
		c.reads[c.step] = chunk[n:]
	} else {
		c.step++
		c.paused = c.step < len(c.reads)
	}
	return n, nil
}

func (c *scriptedChannel) Write(p []byte) (int, error) {
	return c.writeBuf.Write(p)
}

func newScriptedChannel(chunks ...[]byte) *scriptedChannel {
	return &scriptedChannel{reads: chunks}
}

func TestReader_ContentLength_SinglePass(t *testing.T) {
	ch := newScriptedChannel([]byte("PUT / HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello"))
	sched := poller.NewManualScheduler()

	var gotHeader []byte
	var gotBody []byte
	done := false

	_, err := httpcore.ReadStart(ch, sched, true, httpcore.ReaderCallbacks{
		HeadersDone: func(header []byte, encoding *httpcore.TransferEncoding) httpcore.Decision {
			gotHeader = append([]byte(nil), header...)
			*encoding = httpcore.ContentLength(5)
			return httpcore.Continue
		},
		BodyChunk: func(buf httpcore.DataBuffer) httpcore.Decision {
			gotBody = append(gotBody, buf.B...)
			return httpcore.Continue
		},
		Done:  func(httpcore.DataBuffer) { done = true },
		Error: func(bool) { t.Fatal("unexpected read error") },
	}, nil)
	if err != nil {
		t.Fatalf("ReadStart: %v", err)
	}

	sched.FireAll(httpcore.EventReadable)

	if !done {
		t.Fatal("expected Done to fire")
	}
	if !bytes.Equal(gotHeader, []byte("PUT / HTTP/1.1\r\nContent-Length: 5\r\n\r\n")) {
		t.Fatalf("header = %q", gotHeader)
	}
	if !bytes.Equal(gotBody, []byte("hello")) {
		t.Fatalf("body = %q, want %q", gotBody, "hello")
	}
	if sched.Len() != 0 {
		t.Fatalf("watcher not deregistered after Done: %d watchers remain", sched.Len())
	}
}

func TestReader_ContentLength_ZeroByteBody(t *testing.T) {
	ch := newScriptedChannel([]byte("GET / HTTP/1.1\r\nContent-Length: 0\r\n\r\n"))
	sched := poller.NewManualScheduler()

	done := false
	_, err := httpcore.ReadStart(ch, sched, true, httpcore.ReaderCallbacks{
		HeadersDone: func(header []byte, encoding *httpcore.TransferEncoding) httpcore.Decision {
			*encoding = httpcore.ContentLength(0)
			return httpcore.Continue
		},
		Done:  func(httpcore.DataBuffer) { done = true },
		Error: func(bool) { t.Fatal("unexpected read error") },
	}, nil)
	if err != nil {
		t.Fatalf("ReadStart: %v", err)
	}

	sched.FireAll(httpcore.EventReadable)

	if !done {
		t.Fatal("a zero-byte Content-Length body must still complete, not stall forever")
	}
}

func TestReader_HeaderSplitAcrossReads(t *testing.T) {
	ch := newScriptedChannel(
		[]byte("GET / HTTP/1.1\r\nContent-Le"),
		[]byte("ngth: 3\r\n\r\nabc"),
	)
	sched := poller.NewManualScheduler()

	var gotBody []byte
	done := false
	_, err := httpcore.ReadStart(ch, sched, true, httpcore.ReaderCallbacks{
		HeadersDone: func(header []byte, encoding *httpcore.TransferEncoding) httpcore.Decision {
			*encoding = httpcore.ContentLength(3)
			return httpcore.Continue
		},
		BodyChunk: func(buf httpcore.DataBuffer) httpcore.Decision {
			gotBody = append(gotBody, buf.B...)
			return httpcore.Continue
		},
		Done:  func(httpcore.DataBuffer) { done = true },
		Error: func(bool) { t.Fatal("unexpected read error") },
	}, nil)
	if err != nil {
		t.Fatalf("ReadStart: %v", err)
	}

	sched.FireAll(httpcore.EventReadable) // first chunk: no CRLFCRLF yet
	if done {
		t.Fatal("must not complete before the header terminator has arrived")
	}
	sched.FireAll(httpcore.EventReadable) // second chunk completes the header and body

	if !done {
		t.Fatal("expected Done to fire once the header and body are complete")
	}
	if !bytes.Equal(gotBody, []byte("abc")) {
		t.Fatalf("body = %q, want %q", gotBody, "abc")
	}
}

func TestReader_Chunked_OverwriteMode(t *testing.T) {
	ch := newScriptedChannel([]byte("PUT / HTTP/1.1\r\n\r\n4\r\nWiki\r\n5\r\npedia\r\n0\r\n"))
	sched := poller.NewManualScheduler()

	var gotChunks [][]byte
	done := false
	_, err := httpcore.ReadStart(ch, sched, true, httpcore.ReaderCallbacks{
		HeadersDone: func(header []byte, encoding *httpcore.TransferEncoding) httpcore.Decision {
			*encoding = httpcore.Chunked()
			return httpcore.Continue
		},
		BodyChunk: func(buf httpcore.DataBuffer) httpcore.Decision {
			gotChunks = append(gotChunks, append([]byte(nil), buf.B...))
			return httpcore.Continue
		},
		Done:  func(httpcore.DataBuffer) { done = true },
		Error: func(bool) { t.Fatal("unexpected read error") },
	}, nil)
	if err != nil {
		t.Fatalf("ReadStart: %v", err)
	}

	sched.FireAll(httpcore.EventReadable)

	if !done {
		t.Fatal("expected Done to fire")
	}
	var joined []byte
	for _, c := range gotChunks {
		joined = append(joined, c...)
	}
	if !bytes.Equal(joined, []byte("Wikipedia")) {
		t.Fatalf("chunks joined = %q, want %q", joined, "Wikipedia")
	}
}

func TestReader_Chunked_NonOverwriteModeDeliversOnlyOnDone(t *testing.T) {
	ch := newScriptedChannel([]byte("PUT / HTTP/1.1\r\n\r\n4\r\nWiki\r\n5\r\npedia\r\n0\r\n"))
	sched := poller.NewManualScheduler()

	bodyChunkCalls := 0
	var gotBody []byte
	_, err := httpcore.ReadStart(ch, sched, false, httpcore.ReaderCallbacks{
		HeadersDone: func(header []byte, encoding *httpcore.TransferEncoding) httpcore.Decision {
			*encoding = httpcore.Chunked()
			return httpcore.Continue
		},
		BodyChunk: func(buf httpcore.DataBuffer) httpcore.Decision {
			bodyChunkCalls++
			return httpcore.Continue
		},
		Done: func(buf httpcore.DataBuffer) { gotBody = append([]byte(nil), buf.B...) },
		Error: func(bool) { t.Fatal("unexpected read error") },
	}, nil)
	if err != nil {
		t.Fatalf("ReadStart: %v", err)
	}

	sched.FireAll(httpcore.EventReadable)

	if bodyChunkCalls != 0 {
		t.Fatalf("BodyChunk must not fire in non-overwrite mode, got %d calls", bodyChunkCalls)
	}
	if !bytes.Equal(gotBody, []byte("Wikipedia")) {
		t.Fatalf("Done body = %q, want %q", gotBody, "Wikipedia")
	}
}

func TestReader_Unknown_CompletesOnHangup(t *testing.T) {
	ch := newScriptedChannel([]byte("GET / HTTP/1.1\r\n\r\nthe rest of the stream"))
	ch.closed = true
	sched := poller.NewManualScheduler()

	var gotBody []byte
	done := false
	_, err := httpcore.ReadStart(ch, sched, true, httpcore.ReaderCallbacks{
		HeadersDone: func(header []byte, encoding *httpcore.TransferEncoding) httpcore.Decision {
			return httpcore.Continue // encoding left as the zero value: Unknown
		},
		BodyChunk: func(buf httpcore.DataBuffer) httpcore.Decision {
			gotBody = append(gotBody, buf.B...)
			return httpcore.Continue
		},
		Done:  func(httpcore.DataBuffer) { done = true },
		Error: func(bool) { t.Fatal("EOF after body bytes is success, not Error, for Unknown encoding") },
	}, nil)
	if err != nil {
		t.Fatalf("ReadStart: %v", err)
	}

	sched.FireAll(httpcore.EventReadable)

	if !done {
		t.Fatal("expected Done to fire on EOF for an Unknown-length body")
	}
	if !bytes.Equal(gotBody, []byte("the rest of the stream")) {
		t.Fatalf("body = %q", gotBody)
	}
}

func TestReader_HangupBeforeHeaders_ReportsError(t *testing.T) {
	ch := newScriptedChannel([]byte("GET / HTTP/1."))
	ch.closed = true
	sched := poller.NewManualScheduler()

	var errBodyStarted bool
	errored := false
	_, err := httpcore.ReadStart(ch, sched, true, httpcore.ReaderCallbacks{
		HeadersDone: func(header []byte, encoding *httpcore.TransferEncoding) httpcore.Decision {
			t.Fatal("HeadersDone must not fire: headers never completed")
			return httpcore.Continue
		},
		Done: func(httpcore.DataBuffer) { t.Fatal("Done must not fire on a pre-header hangup") },
		Error: func(bodyStarted bool) {
			errored = true
			errBodyStarted = bodyStarted
		},
	}, nil)
	if err != nil {
		t.Fatalf("ReadStart: %v", err)
	}

	sched.FireAll(httpcore.EventReadable)

	if !errored {
		t.Fatal("expected Error to fire")
	}
	if errBodyStarted {
		t.Fatal("bodyStarted should be false: the hangup happened before any body byte arrived")
	}
}

func TestReader_CancelFromWithinCallback(t *testing.T) {
	ch := newScriptedChannel([]byte("GET / HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello"))
	sched := poller.NewManualScheduler()

	var r *httpcore.Reader
	var err error
	r, err = httpcore.ReadStart(ch, sched, true, httpcore.ReaderCallbacks{
		HeadersDone: func(header []byte, encoding *httpcore.TransferEncoding) httpcore.Decision {
			*encoding = httpcore.ContentLength(5)
			// Cancelling from inside a callback must be deferred, not crash
			// or corrupt state; returning End from HeadersDone or BodyChunk has
			// the same net effect, but HeadersDone exercises Cancel directly
			// to prove the deferred-cancel path works too.
			r.Cancel()
			return httpcore.Continue
		},
		Done:  func(httpcore.DataBuffer) { t.Fatal("Done must not fire: cancelled from HeadersDone") },
		Error: func(bool) { t.Fatal("Error must not fire: cancellation is not a failure") },
	}, nil)
	if err != nil {
		t.Fatalf("ReadStart: %v", err)
	}

	sched.FireAll(httpcore.EventReadable)

	if sched.Len() != 0 {
		t.Fatalf("watcher not deregistered after deferred Cancel: %d watchers remain", sched.Len())
	}
}
