// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fc

import (
	"testing"

	"github.com/jmhodges/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/u-root/u-dvfs/pkg/hardware/pxa"
	"github.com/u-root/u-dvfs/pkg/hardware/pxa/sim"
)

func newLock() (*hwLock, *sim.SoC, *observer.ObservedLogs) {
	s := sim.New()
	zc, logs := observer.New(zap.DebugLevel)
	return &hwLock{
		pmu:     pxa.OpenWithMemory(s),
		log:     zap.New(zc).Sugar(),
		clk:     clock.NewFake(),
		metrics: newMetrics(prometheus.NewRegistry()),
	}, s, logs
}

func TestHWLockNested(t *testing.T) {
	l, s, _ := newLock()
	for i := 0; i < 3; i++ {
		if err := l.Acquire(); err != nil {
			t.Fatalf("Acquire %d: %v", i, err)
		}
	}
	if s.Reads() != 1 {
		t.Errorf("Only the first acquire should contend, %d reads", s.Reads())
	}
	if !pxa.DMCC(s.Peek(pxa.APMU_DM_CC_AP)).APOwnsLock() {
		t.Fatalf("AP does not own the lock")
	}

	l.Release()
	l.Release()
	if w := s.WritesTo(pxa.APMU_CCR); len(w) != 0 {
		t.Errorf("Read status cleared with references left: %x", w)
	}
	l.Release()
	w := s.WritesTo(pxa.APMU_CCR)
	if len(w) != 2 || pxa.CCR(w[0])&pxa.CCRRdStClear == 0 || pxa.CCR(w[1])&pxa.CCRRdStClear != 0 {
		t.Errorf("Expected the clear bit written 1 then 0, got %x", w)
	}
	if pxa.DMCC(s.Peek(pxa.APMU_DM_CC_AP)).APOwnsLock() {
		t.Errorf("AP still owns the lock after the last release")
	}
}

func TestHWLockTimeout(t *testing.T) {
	l, s, _ := newLock()
	s.SetCPHoldsLock(true)
	if err := l.Acquire(); err != ErrLockTimeout {
		t.Fatalf("Expected ErrLockTimeout, got %v", err)
	}
	if s.Reads() != lockBudget {
		t.Errorf("Expected %d contending reads, got %d", lockBudget, s.Reads())
	}
	if l.refs() != 1 {
		t.Errorf("A failed acquire still holds a reference until released, refs %d", l.refs())
	}
	l.Release()
	if l.refs() != 0 {
		t.Errorf("refs %d after release", l.refs())
	}
}

func TestHWLockUnmatchedRelease(t *testing.T) {
	l, s, logs := newLock()
	l.Release()
	if len(s.Writes()) != 0 {
		t.Errorf("Unmatched release wrote registers: %v", s.Writes())
	}
	if logs.FilterMessageSnippet("released with refcount").Len() != 1 {
		t.Errorf("Unmatched release not logged")
	}
	if got := testutil.ToFloat64(l.metrics.unmatchedReleases); got != 1 {
		t.Errorf("Unmatched release not counted: %v", got)
	}
	// The count does not go negative, so the next pair still works
	if err := l.Acquire(); err != nil {
		t.Fatal(err)
	}
	l.Release()
	if len(s.WritesTo(pxa.APMU_CCR)) != 2 {
		t.Errorf("Balanced pair after an unmatched release did not clear the read status")
	}
}
