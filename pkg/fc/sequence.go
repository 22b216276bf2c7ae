// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fc

import (
	"context"
	"fmt"
	"strings"

	"github.com/u-root/u-dvfs/pkg/hardware/pxa"
	"github.com/u-root/u-dvfs/pkg/poll"
)

// fcDoneBudget is the number of ISR reads spent waiting for AP FC done. It
// runs with the FC lock held so there is no delay between reads.
const fcDoneBudget = 10000

// sequencer moves a domain between two operating points of its table.
type sequencer interface {
	// transition returns the operating point active afterwards, which is
	// next on success and whatever verification found otherwise.
	transition(ctx context.Context, prev, next OP) (OP, error)
	// observed returns the table entry the hardware reports, or nil.
	observed() OP
}

// kindOps binds the software sequence to the registers of one domain kind.
type kindOps interface {
	readback() (sel uint32, ccsr pxa.CCR)
	matches(op OP, sel uint32, ccsr pxa.CCR) (src, div bool)
	requestSource(sel uint32)
	sourceRequest() uint32
	divisors(c pxa.CCR, op OP) pxa.CCR
	fcReq() pxa.CCR
	timingDiffers(a, b OP) bool
	writeTiming(op OP)
	// rollbackDisablesParent is false for AXI, which leaves the new parent
	// enabled when the source did not switch.
	rollbackDisablesParent() bool
	dumpDFC() bool
}

// swSeq is the software sequenced frequency change shared by the cores, AXI
// and DDR without HWDFC.
type swSeq struct {
	c *DomainClock
	k kindOps
}

func (s *swSeq) observed() OP {
	sel, ccsr := s.k.readback()
	return s.c.lookup(s.k, sel, ccsr)
}

func (s *swSeq) transition(ctx context.Context, prev, next OP) (OP, error) {
	c, m, k := s.c, s.c.m, s.k
	p := m.pmu
	op, np := prev.point(), next.point()

	if obs := s.observed(); obs == nil {
		m.log.Errorf("%s: hardware state matches no operating point, cached %d MHz", c.dom, op.Rate)
	} else if obs != prev {
		m.log.Errorf("%s: hardware runs %d MHz, cached %d MHz", c.dom, obs.point().Rate, op.Rate)
		c.adopt(obs)
		prev, op = obs, obs.point()
	}

	m.housekeeping(pxa.ISRAPFCDone)

	raising := np.Rate > op.Rate
	timing := k.timingDiffers(prev, next)
	if raising && timing {
		k.writeTiming(next)
	}

	nextParent, prevParent := m.parent(np.Parent), m.parent(op.Parent)
	if err := nextParent.PrepareEnable(); err != nil {
		if raising && timing {
			k.writeTiming(prev)
		}
		return prev, fmt.Errorf("%s: enabling %s: %w", c.dom, np.Parent, err)
	}

	irq := m.irq.Save()
	if err := m.lock.Acquire(); err != nil {
		m.lock.Release()
		m.irq.Restore(irq)
		nextParent.DisableUnprepare()
		if raising && timing {
			k.writeTiming(prev)
		}
		return prev, fmt.Errorf("%s: %d -> %d MHz: %w", c.dom, op.Rate, np.Rate, err)
	}

	k.requestSource(np.Sel)
	cr := k.divisors(p.CCR(), next) | pxa.CCRAllowSpdChg
	p.SetCCR(cr)
	p.SetCCR(cr | k.fcReq())

	n, err := poll.Until(func() bool {
		return p.ISR()&pxa.ISRAPFCDone != 0
	}, fcDoneBudget, 0, m.clk)
	m.metrics.pollIterations.WithLabelValues("fc_done").Observe(float64(n))
	if err != nil {
		m.completionTimeout(c.dom, k.dumpDFC())
	}

	p.ClearFCReq(k.fcReq())
	m.lock.Release()
	m.irq.Restore(irq)

	if !raising && timing {
		k.writeTiming(next)
	}

	sel, ccsr := k.readback()
	src, div := k.matches(next, sel, ccsr)
	switch {
	case !src:
		req := k.sourceRequest()
		// Resync the request with what the hardware actually runs.
		k.requestSource(sel)
		if k.rollbackDisablesParent() {
			nextParent.DisableUnprepare()
		}
		act := c.lookup(k, sel, ccsr)
		if act == nil {
			act = prev
		}
		m.log.Errorf("%s: %d -> %d MHz: source %d (requested %d), want %d (%#v)", c.dom, op.Rate, np.Rate, sel, req, np.Sel, ccsr)
		return act, fmt.Errorf("%s: %d -> %d MHz: source %d: %w", c.dom, op.Rate, np.Rate, sel, ErrVerificationMismatch)
	case !div:
		prevParent.DisableUnprepare()
		act := c.lookup(k, sel, ccsr)
		if act == nil {
			act = next
		}
		m.log.Errorf("%s: %d -> %d MHz: dividers %#v", c.dom, op.Rate, np.Rate, ccsr)
		return act, fmt.Errorf("%s: %d -> %d MHz: dividers: %w", c.dom, op.Rate, np.Rate, ErrVerificationMismatch)
	}

	prevParent.DisableUnprepare()
	return next, nil
}

// housekeeping restores the CP vote if it is missing and clears stale done
// bits before a change.
func (m *Manager) housekeeping(done pxa.ISR) {
	if !m.pmu.CPAllowsFC() {
		m.log.Warnf("CP does not allow frequency changes, forcing its vote")
		m.pmu.ForceCPAllowFC()
	}
	m.pmu.ClearISR(done)
}

func (m *Manager) completionTimeout(d Domain, dfc bool) {
	var b strings.Builder
	m.pmu.Dump(&b)
	if dfc {
		m.pmu.DumpDFC(&b)
	}
	m.log.Errorf("%s: frequency change did not complete\n%s", d, b.String())
	m.metrics.completionTimeouts.WithLabelValues(d.String()).Inc()
}
