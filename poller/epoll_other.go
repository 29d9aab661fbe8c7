//go:build !linux

// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package poller

import (
	"context"
	"errors"

	"code.hybscloud.com/httpcore"
)

// ErrUnsupportedPlatform is returned by New on platforms with no epoll
// backend. Use ManualScheduler, or a Scheduler backed by the platform's own
// readiness API, instead.
var ErrUnsupportedPlatform = errors.New("poller: epoll scheduler not supported on this platform")

// EpollScheduler is unavailable outside Linux; all methods return
// ErrUnsupportedPlatform.
type EpollScheduler struct{}

// New always fails on non-Linux platforms.
func New() (*EpollScheduler, error) {
	return nil, ErrUnsupportedPlatform
}

func (s *EpollScheduler) Close() error { return ErrUnsupportedPlatform }

func (s *EpollScheduler) Register(httpcore.Channel, httpcore.EventKind, func(httpcore.EventKind)) (httpcore.WatcherID, error) {
	return 0, ErrUnsupportedPlatform
}

func (s *EpollScheduler) Modify(httpcore.WatcherID, httpcore.EventKind) error {
	return ErrUnsupportedPlatform
}

func (s *EpollScheduler) Deregister(httpcore.WatcherID) error {
	return ErrUnsupportedPlatform
}

func (s *EpollScheduler) Run(ctx context.Context) error {
	return ErrUnsupportedPlatform
}
