// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fc

import (
	"context"
	"fmt"
	"sync"

	"github.com/u-root/u-dvfs/pkg/hardware/pxa"
)

// DomainClock is the clock of one sequenced domain. It satisfies clk.Clock so
// it can itself be registered as the slave of another domain.
type DomainClock struct {
	m      *Manager
	dom    Domain
	table  []OP
	bridge OP
	seq    sequencer

	mu  sync.RWMutex
	cur OP
}

func (c *DomainClock) Name() string { return c.dom.String() }

// Rate returns the rate of the operating point believed active.
func (c *DomainClock) Rate() uint32 {
	return c.current().point().Rate
}

// Parent returns the parent clock name of the active operating point.
func (c *DomainClock) Parent() string {
	return c.current().point().Parent
}

// RoundRate returns the rate SetRate(mhz) would end up at.
func (c *DomainClock) RoundRate(mhz uint32) uint32 {
	op, _ := RateToEntry(c.table, mhz)
	return op.point().Rate
}

// Rates returns the rates of the table in ascending order.
func (c *DomainClock) Rates() []uint32 {
	return rates(c.table)
}


// RecalcRate returns the rate believed active. A hardware readback that
// disagrees is logged, never returned as an error.
func (c *DomainClock) RecalcRate() uint32 {
	cur := c.current()
	if obs := c.seq.observed(); obs != cur {
		got := "no operating point"
		if obs != nil {
			got = fmt.Sprintf("%d MHz", obs.point().Rate)
		}
		c.m.log.Warnf("%s: hardware reports %s, cached %d MHz", c.dom, got, cur.point().Rate)
	}
	return cur.point().Rate
}

// PrepareEnable and DisableUnprepare exist so a domain can be a slave clock.
// Domains are always running.
func (c *DomainClock) PrepareEnable() error { return nil }
func (c *DomainClock) DisableUnprepare()    {}

// SetRate moves the domain to the operating point RateToEntry picks for mhz.
// The whole change, bridge hops and slave updates included, happens under one
// hold of the sequence lock.
func (c *DomainClock) SetRate(ctx context.Context, mhz uint32) error {
	ctx, err := c.m.seq.Lock(ctx)
	if err != nil {
		return err
	}
	defer c.m.seq.Unlock(ctx)

	changed, err := c.setRate(ctx, mhz)
	if !changed {
		return nil
	}
	c.m.metrics.transition(c.dom, err)
	if err != nil {
		c.m.log.Errorf("%s: set rate %d MHz: %v", c.dom, mhz, err)
		return err
	}
	c.m.coordinate(ctx, c.dom, c.Rate())
	return nil
}

func (c *DomainClock) setRate(ctx context.Context, mhz uint32) (bool, error) {
	next, _ := RateToEntry(c.table, mhz)
	prev := c.current()
	if next == prev {
		return false, nil
	}
	op, np := prev.point(), next.point()
	if op.Sel != np.Sel || op.SourceRate == np.SourceRate {
		return true, c.hop(ctx, prev, next)
	}

	b := c.bridge
	if b.point().Sel == np.Sel {
		return true, fmt.Errorf("%s: bridge %d MHz uses source %d too: %w", c.dom, b.point().Rate, np.Sel, ErrNoBridge)
	}
	c.m.log.Debugf("%s: %d -> %d MHz through %d MHz", c.dom, op.Rate, np.Rate, b.point().Rate)
	if err := c.hop(ctx, prev, b); err != nil {
		return true, err
	}
	if err := c.m.parent(np.Parent).SetRate(ctx, np.SourceRate); err != nil {
		return true, fmt.Errorf("%s: retuning %s to %d MHz: %w", c.dom, np.Parent, np.SourceRate, err)
	}
	return true, c.hop(ctx, b, next)
}

// hop is a single transition. A parent running at another rate than the
// target needs is retuned before the sequence enables it.
func (c *DomainClock) hop(ctx context.Context, prev, next OP) error {
	np := next.point()
	parent := c.m.parent(np.Parent)
	if np.followParent {
		np.SourceRate = parent.Rate()
	} else if parent.Rate() != np.SourceRate {
		if err := parent.SetRate(ctx, np.SourceRate); err != nil {
			return fmt.Errorf("%s: retuning %s to %d MHz: %w", c.dom, np.Parent, np.SourceRate, err)
		}
	}
	act, err := c.seq.transition(ctx, prev, next)
	c.setCurrent(act)
	return err
}

func (c *DomainClock) current() OP {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cur
}

func (c *DomainClock) setCurrent(op OP) {
	c.mu.Lock()
	c.cur = op
	c.mu.Unlock()
	c.m.metrics.rate.WithLabelValues(c.dom.String()).Set(float64(op.point().Rate))
}

// lookup returns the table entry matching a register readback. When several
// entries share source and dividers, the one whose parent currently runs at
// its source rate wins.
func (c *DomainClock) lookup(k kindOps, sel uint32, ccsr pxa.CCR) OP {
	var first OP
	for _, op := range c.table {
		src, div := k.matches(op, sel, ccsr)
		if !src || !div {
			continue
		}
		if first == nil {
			first = op
		}
		p := op.point()
		if c.m.parent(p.Parent).Rate() == p.SourceRate {
			return op
		}
	}
	return first
}

func (c *DomainClock) levelOP(level int) OP {
	for _, op := range c.table {
		if op.(*DDROP).Level == level {
			return op
		}
	}
	return nil
}

// boot works out the operating point the boot loader left the domain at and
// takes a reference on its parent. Failures are logged and the domain keeps
// its best guess.
func (c *DomainClock) boot(ctx context.Context, k kindOps) {
	sel, ccsr := k.readback()
	cur := c.lookup(k, sel, ccsr)
	if cur == nil {
		cur = c.closest(k, sel, ccsr)
		c.m.log.Warnf("%s: boot state (source %d, %#v) is not an operating point, assuming %d MHz",
			c.dom, sel, ccsr, cur.point().Rate)
	}
	c.takeParent(cur)

	d, ok := c.seq.(*dfcSeq)
	if !ok {
		return
	}
	// The DFC current level reads 0 after reset whatever DDR runs at.
	// Program the table and go through level 0 so the two agree.
	d.program()
	if _, err := d.request(0); err != nil {
		c.m.log.Warnf("%s: moving the DFC to level 0: %v, assuming %d MHz", c.dom, err, cur.point().Rate)
		return
	}
	zero := c.levelOP(0)
	if zero == nil {
		zero = c.table[0]
	}
	if cur == zero {
		return
	}
	c.adopt(zero)
	if _, err := c.setRate(ctx, cur.point().Rate); err != nil {
		c.m.log.Warnf("%s: returning to the boot rate: %v, running %d MHz", c.dom, err, c.Rate())
	}
}

func (c *DomainClock) takeParent(op OP) {
	if err := c.m.parent(op.point().Parent).PrepareEnable(); err != nil {
		c.m.log.Errorf("%s: enabling %s: %v", c.dom, op.point().Parent, err)
	}
	c.setCurrent(op)
}

// adopt makes op current and moves the parent reference held for the old
// current point to the parent of op.
func (c *DomainClock) adopt(op OP) {
	old := c.current()
	c.takeParent(op)
	c.m.parent(old.point().Parent).DisableUnprepare()
}

// closest guesses an operating point for a readback that matches none: the
// entry at or above the rate the registers compute to, or the first entry.
func (c *DomainClock) closest(k kindOps, sel uint32, ccsr pxa.CCR) OP {
	for _, op := range c.table {
		src, _ := k.matches(op, sel, ccsr)
		if !src {
			continue
		}
		rate := c.m.parent(op.point().Parent).Rate() / (divider(op, ccsr, c.dom) + 1)
		e, _ := RateToEntry(c.table, rate)
		return e
	}
	return c.table[0]
}

func divider(op OP, ccsr pxa.CCR, d Domain) uint32 {
	switch op.(type) {
	case *CoreOP:
		return ccsr.PclkDiv(d.Cluster)
	case *DDROP:
		return ccsr.DclkDiv()
	case *AXIOP:
		return ccsr.AxiDiv()
	}
	return 0
}
