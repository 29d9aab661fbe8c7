// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package httpcore

import (
	"net"
	"time"
)

// NetConnChannel adapts a net.Conn into a Channel by using a zero-length
// read/write deadline as a poll: each Read or Write attempt is given
// effectively no time to block, so a conn with no data ready (or no send
// buffer space) reports ErrWouldBlock instead of blocking the calling
// goroutine. The underlying conn still does real work when the deadline
// lands after bytes are already available, exactly like a conn put into
// O_NONBLOCK mode at the syscall level.
//
// Use NetConnChannel to drive Reader and Writer over any net.Conn
// (including net.Pipe, which has no underlying file descriptor and so
// cannot go through the poller package's epoll Scheduler) when paired with
// a poller.ManualScheduler or any Scheduler whose readiness events are
// triggered by a side-channel rather than socket readiness.
type NetConnChannel struct {
	conn net.Conn
}

// NewNetConnChannel wraps conn. conn must be non-nil.
func NewNetConnChannel(conn net.Conn) *NetConnChannel {
	return &NetConnChannel{conn: conn}
}

// Conn returns the wrapped net.Conn.
func (c *NetConnChannel) Conn() net.Conn { return c.conn }

func (c *NetConnChannel) Read(p []byte) (int, error) {
	if err := c.conn.SetReadDeadline(time.Now()); err != nil {
		return 0, err
	}
	n, err := c.conn.Read(p)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return n, ErrWouldBlock
		}
		return n, err
	}
	return n, nil
}

func (c *NetConnChannel) Write(p []byte) (int, error) {
	if err := c.conn.SetWriteDeadline(time.Now()); err != nil {
		return 0, err
	}
	n, err := c.conn.Write(p)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return n, ErrWouldBlock
		}
		return n, err
	}
	return n, nil
}

// Close releases the underlying conn.
func (c *NetConnChannel) Close() error {
	return c.conn.Close()
}
