// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package poller

import (
	"sort"
	"sync"

	"code.hybscloud.com/httpcore"
)

// ManualScheduler is an httpcore.Scheduler whose readiness events are
// driven explicitly by the caller via Fire/FireAll, rather than by an
// underlying OS poller. It is useful in tests (deterministic, no real I/O
// wait) and on platforms without epoll/kqueue support.
type ManualScheduler struct {
	mu     sync.Mutex
	nextID httpcore.WatcherID
	regs   map[httpcore.WatcherID]*manualReg
}

type manualReg struct {
	ch       httpcore.Channel
	interest httpcore.EventKind
	cb       func(httpcore.EventKind)
}

// NewManualScheduler returns a ready-to-use ManualScheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{regs: make(map[httpcore.WatcherID]*manualReg)}
}

func (s *ManualScheduler) Register(ch httpcore.Channel, interest httpcore.EventKind, cb func(httpcore.EventKind)) (httpcore.WatcherID, error) {
	if ch == nil || cb == nil {
		return 0, httpcore.ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.regs[id] = &manualReg{ch: ch, interest: interest, cb: cb}
	return id, nil
}

func (s *ManualScheduler) Modify(id httpcore.WatcherID, interest httpcore.EventKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.regs[id]
	if !ok {
		return httpcore.ErrClosed
	}
	r.interest = interest
	return nil
}

func (s *ManualScheduler) Deregister(id httpcore.WatcherID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.regs, id)
	return nil
}

// Fire invokes the callback registered under id with kind, masked down to
// that registration's current interest. It is a no-op if id is unknown
// (already deregistered) or kind doesn't intersect the registered interest.
func (s *ManualScheduler) Fire(id httpcore.WatcherID, kind httpcore.EventKind) {
	s.mu.Lock()
	r, ok := s.regs[id]
	s.mu.Unlock()
	if !ok {
		return
	}
	effective := r.interest & kind
	if effective == 0 {
		return
	}
	r.cb(effective)
}

// FireAll drives every live registration whose interest intersects kind,
// in registration order. Used by tests to simulate "the channel became
// readable" across every Reader/Writer sharing one ManualScheduler.
func (s *ManualScheduler) FireAll(kind httpcore.EventKind) {
	s.mu.Lock()
	ids := make([]httpcore.WatcherID, 0, len(s.regs))
	for id := range s.regs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	snapshot := make([]*manualReg, len(ids))
	for i, id := range ids {
		snapshot[i] = s.regs[id]
	}
	s.mu.Unlock()
	for _, r := range snapshot {
		if effective := r.interest & kind; effective != 0 {
			r.cb(effective)
		}
	}
}

// Len reports the number of live registrations, mostly useful for tests
// asserting that Cancel deregistered cleanly.
func (s *ManualScheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.regs)
}
