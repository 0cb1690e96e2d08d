// File: primitives/latch.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Count-down latch over an Atom counter.

package primitives

import (
	"context"
	"runtime"

	"github.com/momentics/atomcell/api"
	"github.com/momentics/atomcell/atom"
)

// CountDownLatch lets goroutines wait until a fixed number of CountDown calls happened.
type CountDownLatch struct {
	count *atom.Atom[int]
}

// NewCountDownLatch creates a latch; count must be positive.
func NewCountDownLatch(count int, opts ...atom.Option) (*CountDownLatch, error) {
	if count <= 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "count must be a positive integer").
			WithContext("count", count)
	}
	a, err := atom.New(count, opts...)
	if err != nil {
		return nil, err
	}
	return &CountDownLatch{count: a}, nil
}

// Count returns the remaining count.
func (l *CountDownLatch) Count() int {
	n, _ := l.count.Get()
	return n
}

// CountDown decrements the count and returns the new value. At zero it
// returns api.ErrAlreadyCountedDown and leaves the count unchanged.
func (l *CountDownLatch) CountDown() (int, error) {
	var exhausted bool
	n, err := l.count.Swap(func(cur int) int {
		// Reassigned on every attempt; only the committed attempt's verdict survives.
		exhausted = cur == 0
		if exhausted {
			return cur
		}
		return cur - 1
	})
	if err != nil {
		return n, err
	}
	if exhausted {
		return 0, api.ErrAlreadyCountedDown
	}
	return n, nil
}

// Wait yields until the count reaches zero.
func (l *CountDownLatch) Wait() {
	for l.Count() > 0 {
		runtime.Gosched()
	}
}

// WaitContext is Wait bounded by ctx.
func (l *CountDownLatch) WaitContext(ctx context.Context) error {
	for l.Count() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		runtime.Gosched()
	}
	return nil
}

// Shareable reports whether the latch may cross domain boundaries.
func (l *CountDownLatch) Shareable() bool { return l.count.Shareable() }
