//go:build linux

// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package poller

import (
	"context"
	"fmt"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"

	"code.hybscloud.com/httpcore"
)

// EpollScheduler is an httpcore.Scheduler backed by Linux epoll. Channels
// registered with it must expose their file descriptor via syscall.Conn
// (as *net.TCPConn, *net.UnixConn, and os.File-backed pipes all do),
// matching the fd-level socket option access pattern
// valyala/fasthttp/tcplisten uses golang.org/x/sys/unix for.
type EpollScheduler struct {
	epfd int

	mu   sync.Mutex
	regs map[int]*epollReg
	byID map[httpcore.WatcherID]int
	next httpcore.WatcherID
}

type epollReg struct {
	id       httpcore.WatcherID
	fd       int
	interest httpcore.EventKind
	cb       func(httpcore.EventKind)
}

// New creates an EpollScheduler. Callers must run it with Run on a
// dedicated goroutine to get readiness callbacks; all callbacks are
// delivered serially from that goroutine, matching the single-threaded
// cooperative model Reader and Writer assume.
func New() (*EpollScheduler, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("poller: epoll_create1: %w", err)
	}
	return &EpollScheduler{
		epfd: epfd,
		regs: make(map[int]*epollReg),
		byID: make(map[httpcore.WatcherID]int),
	}, nil
}

// Close releases the epoll file descriptor. Any still-registered Channels
// are no longer watched.
func (s *EpollScheduler) Close() error {
	return unix.Close(s.epfd)
}

func fdOf(ch httpcore.Channel) (int, error) {
	sc, ok := ch.(syscall.Conn)
	if !ok {
		return 0, fmt.Errorf("poller: channel %T does not implement syscall.Conn", ch)
	}
	rc, err := sc.SyscallConn()
	if err != nil {
		return 0, err
	}
	var fd int
	var ctrlErr error
	if err := rc.Control(func(f uintptr) { fd = int(f) }); err != nil {
		ctrlErr = err
	}
	if ctrlErr != nil {
		return 0, ctrlErr
	}
	return fd, nil
}

func toEpollEvents(interest httpcore.EventKind) uint32 {
	var ev uint32
	if interest&httpcore.EventReadable != 0 {
		ev |= unix.EPOLLIN
	}
	if interest&httpcore.EventWritable != 0 {
		ev |= unix.EPOLLOUT
	}
	// EPOLLERR and EPOLLHUP are always reported by the kernel regardless of
	// the requested event mask; EventError is surfaced whenever either bit
	// comes back, not by requesting it explicitly.
	return ev
}

func fromEpollEvents(ev uint32) httpcore.EventKind {
	var k httpcore.EventKind
	if ev&unix.EPOLLIN != 0 {
		k |= httpcore.EventReadable
	}
	if ev&unix.EPOLLOUT != 0 {
		k |= httpcore.EventWritable
	}
	if ev&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
		k |= httpcore.EventError
	}
	return k
}

func (s *EpollScheduler) Register(ch httpcore.Channel, interest httpcore.EventKind, cb func(httpcore.EventKind)) (httpcore.WatcherID, error) {
	if ch == nil || cb == nil {
		return 0, httpcore.ErrInvalidArgument
	}
	fd, err := fdOf(ch)
	if err != nil {
		return 0, err
	}
	ev := unix.EpollEvent{Events: toEpollEvents(interest), Fd: int32(fd)}
	if err := unix.EpollCtl(s.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return 0, fmt.Errorf("poller: epoll_ctl add: %w", err)
	}

	s.mu.Lock()
	s.next++
	id := s.next
	s.regs[fd] = &epollReg{id: id, fd: fd, interest: interest, cb: cb}
	s.byID[id] = fd
	s.mu.Unlock()
	return id, nil
}

func (s *EpollScheduler) Modify(id httpcore.WatcherID, interest httpcore.EventKind) error {
	s.mu.Lock()
	fd, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return httpcore.ErrClosed
	}
	reg := s.regs[fd]
	reg.interest = interest
	s.mu.Unlock()

	ev := unix.EpollEvent{Events: toEpollEvents(interest), Fd: int32(fd)}
	if err := unix.EpollCtl(s.epfd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return fmt.Errorf("poller: epoll_ctl mod: %w", err)
	}
	return nil
}

func (s *EpollScheduler) Deregister(id httpcore.WatcherID) error {
	s.mu.Lock()
	fd, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	delete(s.byID, id)
	delete(s.regs, fd)
	s.mu.Unlock()

	_ = unix.EpollCtl(s.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	return nil
}

// Run blocks, dispatching readiness callbacks until ctx is cancelled or an
// epoll_wait error other than EINTR occurs.
func (s *EpollScheduler) Run(ctx context.Context) error {
	events := make([]unix.EpollEvent, 128)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := unix.EpollWait(s.epfd, events, 100)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("poller: epoll_wait: %w", err)
		}
		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			s.mu.Lock()
			reg, ok := s.regs[fd]
			s.mu.Unlock()
			if !ok {
				continue
			}
			kind := fromEpollEvents(events[i].Events)
			if kind != 0 {
				reg.cb(kind)
			}
		}
	}
}
