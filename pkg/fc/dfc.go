// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/u-root/u-dvfs/pkg/hardware/pxa"
	"github.com/u-root/u-dvfs/pkg/poll"
)

// DFC status reads are spaced by dfcPollDelay and bounded in time.
const (
	// dfcIdleTimeout bounds the wait for a DFC someone else started.
	dfcIdleTimeout = 200 * time.Millisecond
	dfcDoneTimeout = 20 * time.Millisecond
	dfcPollDelay   = time.Microsecond
)

// dfcSeq hands DDR changes to the hardware DFC state machine. Only the level
// index is written at change time; the level table is programmed once.
type dfcSeq struct {
	c *DomainClock
	k ddrOps
}

func (s *dfcSeq) observed() OP {
	return s.c.levelOP(s.c.m.pmu.DFCStatus().CurrentLevel())
}

// program writes the static level table.
func (s *dfcSeq) program() {
	for _, op := range s.c.table {
		o := op.(*DDROP)
		s.c.m.pmu.SetDFCLevel(o.Level, pxa.MakeDFCLevel(o.Sel, o.DclkDiv, o.MCTable, o.Volt))
	}
}

func (s *dfcSeq) waitIdle() error {
	m := s.c.m
	n, err := poll.Within(func() bool {
		return !m.pmu.DFCStatus().InProgress()
	}, dfcIdleTimeout, dfcPollDelay, m.clk)
	m.metrics.pollIterations.WithLabelValues("dfc_idle").Observe(float64(n))
	if err != nil {
		var b strings.Builder
		m.pmu.DumpDFC(&b)
		m.log.Errorf("%s: DFC in progress never finished\n%s", s.c.dom, b.String())
		m.metrics.completionTimeouts.WithLabelValues(s.c.dom.String()).Inc()
		return fmt.Errorf("%s: waiting for a running DFC: %w", s.c.dom, ErrCompletionTimeout)
	}
	return nil
}

// request asks the hardware for level and returns the status it settled on.
// Landing above the requested level counts as done: a CP initiated change
// can race with ours.
func (s *dfcSeq) request(level int) (pxa.DFCStatus, error) {
	m := s.c.m
	p := m.pmu
	if err := s.waitIdle(); err != nil {
		return 0, err
	}
	m.housekeeping(pxa.ISRAPFCDone | pxa.ISRDFCDone)
	p.RequestDFC(level)

	var st pxa.DFCStatus
	n, err := poll.Within(func() bool {
		st = p.DFCStatus()
		return st.CurrentLevel() >= level && !st.InProgress()
	}, dfcDoneTimeout, dfcPollDelay, m.clk)
	m.metrics.pollIterations.WithLabelValues("dfc_done").Observe(float64(n))
	if err != nil {
		m.completionTimeout(s.c.dom, true)
	}
	p.ClearISR(pxa.ISRDFCDone)
	return st, nil
}

func (s *dfcSeq) transition(ctx context.Context, prev, next OP) (OP, error) {
	c, m := s.c, s.c.m
	o, n := prev.(*DDROP), next.(*DDROP)

	nextParent := m.parent(n.Parent)
	if err := nextParent.PrepareEnable(); err != nil {
		return prev, fmt.Errorf("%s: enabling %s: %w", c.dom, n.Parent, err)
	}
	st, err := s.request(n.Level)
	if err != nil {
		nextParent.DisableUnprepare()
		return prev, err
	}

	act := c.levelOP(st.CurrentLevel())
	if act == nil {
		m.log.Errorf("%s: DFC landed on level %d which has no operating point", c.dom, st.CurrentLevel())
		act = prev
	}
	if ap := act.point().Parent; ap != n.Parent {
		if err := m.parent(ap).PrepareEnable(); err != nil {
			m.log.Errorf("%s: enabling %s: %v", c.dom, ap, err)
		}
		nextParent.DisableUnprepare()
	}
	m.parent(o.Parent).DisableUnprepare()

	if st.InProgress() || st.CurrentLevel() < n.Level {
		m.log.Errorf("%s: %d -> %d MHz: DFC status %#v", c.dom, o.Rate, n.Rate, st)
		return act, fmt.Errorf("%s: %d -> %d MHz: level %d: %w", c.dom, o.Rate, n.Rate, st.CurrentLevel(), ErrVerificationMismatch)
	}
	if act != next {
		m.log.Infof("%s: asked for level %d, DFC landed on level %d", c.dom, n.Level, st.CurrentLevel())
	}
	return act, nil
}
