// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package poll implements the bounded busy-wait used by every frequency
// change sequence.
package poll

import (
	"errors"
	"time"

	"github.com/jmhodges/clock"
)

var ErrTimeout = errors.New("poll budget exhausted")

// Until calls cond up to budget times and returns the number of calls made.
// If delay is non-zero, clk sleeps that long between calls. A zero delay makes
// this a hot loop, which is what is needed while the FC lock is held.
func Until(cond func() bool, budget int, delay time.Duration, clk clock.Clock) (int, error) {
	for i := 1; i <= budget; i++ {
		if cond() {
			return i, nil
		}
		if delay > 0 && i < budget {
			clk.Sleep(delay)
		}
	}
	return budget, ErrTimeout
}

// Within calls cond until it returns true or timeout has passed on clk, and
// returns the number of calls made. clk sleeps delay between calls. The
// deadline is checked after every call, so a real clock bounds the wait even
// when each sleep overruns. delay must be non-zero with a clock that only
// advances on Sleep.
func Within(cond func() bool, timeout, delay time.Duration, clk clock.Clock) (int, error) {
	deadline := clk.Now().Add(timeout)
	for i := 1; ; i++ {
		if cond() {
			return i, nil
		}
		if !clk.Now().Before(deadline) {
			return i, ErrTimeout
		}
		if delay > 0 {
			clk.Sleep(delay)
		}
	}
}
