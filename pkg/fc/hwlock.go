// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fc

import (
	"sync"

	"github.com/jmhodges/clock"
	"go.uber.org/zap"

	"github.com/u-root/u-dvfs/pkg/hardware/pxa"
	"github.com/u-root/u-dvfs/pkg/poll"
)

// lockBudget is the number of contending reads before giving up on the lock.
const lockBudget = 100000

// hwLock is the refcounted AP side of the AP/CP frequency change lock.
type hwLock struct {
	m       sync.Mutex
	pmu     *pxa.Pmu
	log     *zap.SugaredLogger
	clk     clock.Clock
	metrics *metrics
	count   int
}

// Acquire takes a reference. The first reference polls the lock status until
// the AP owns the lock. Release must be called even when Acquire fails.
func (l *hwLock) Acquire() error {
	l.m.Lock()
	defer l.m.Unlock()
	l.count++
	if l.count > 1 {
		return nil
	}
	n, err := poll.Until(func() bool {
		return l.pmu.ContendFCLock().APOwnsLock()
	}, lockBudget, 0, l.clk)
	l.metrics.pollIterations.WithLabelValues("fc_lock").Observe(float64(n))
	if err != nil {
		l.metrics.lockTimeouts.Inc()
		return ErrLockTimeout
	}
	return nil
}

// Release drops a reference and clears the read status on the last one.
func (l *hwLock) Release() {
	l.m.Lock()
	defer l.m.Unlock()
	if l.count <= 0 {
		l.log.Errorf("FC lock released with refcount %d", l.count)
		l.metrics.unmatchedReleases.Inc()
		l.count = 0
		return
	}
	l.count--
	if l.count == 0 {
		l.pmu.ClearReadStatus()
	}
}

func (l *hwLock) refs() int {
	l.m.Lock()
	defer l.m.Unlock()
	return l.count
}
