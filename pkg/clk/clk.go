// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package clk models the parent clocks the frequency change engine switches
// between, and the simple slave clocks it drives. Rates are in MHz.
package clk

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrBusy     = errors.New("clock is enabled and cannot be retuned")
	ErrFixed    = errors.New("clock rate is fixed")
	ErrNotFound = errors.New("no such clock")
)

// Clock is the subset of a clock framework handle the engine depends on.
type Clock interface {
	Name() string
	Rate() uint32
	SetRate(ctx context.Context, mhz uint32) error
	PrepareEnable() error
	DisableUnprepare()
}

// gate is the enable refcount shared by all clock models.
type gate struct {
	m       sync.Mutex
	enabled int
}

func (g *gate) PrepareEnable() error {
	g.m.Lock()
	defer g.m.Unlock()
	g.enabled++
	return nil
}

func (g *gate) DisableUnprepare() {
	g.m.Lock()
	defer g.m.Unlock()
	if g.enabled > 0 {
		g.enabled--
	}
}

// EnableCount returns how many users currently hold the clock enabled.
func (g *gate) EnableCount() int {
	g.m.Lock()
	defer g.m.Unlock()
	return g.enabled
}

// Fixed is a clock that always runs at the same rate, like the PLL1 outputs.
type Fixed struct {
	gate
	name string
	rate uint32
}

func NewFixed(name string, mhz uint32) *Fixed {
	return &Fixed{name: name, rate: mhz}
}

func (f *Fixed) Name() string { return f.name }
func (f *Fixed) Rate() uint32 { return f.rate }

func (f *Fixed) SetRate(_ context.Context, mhz uint32) error {
	if mhz != f.rate {
		return fmt.Errorf("%s: %w (%d MHz, asked for %d MHz)", f.name, ErrFixed, f.rate, mhz)
	}
	return nil
}

// PLL is a retunable clock. It can only be retuned while nobody has it
// enabled.
type PLL struct {
	gate
	name  string
	rate  uint32
	rates []uint32
}

// NewPLL returns a PLL running at mhz that can be tuned to any of rates. An
// empty rates list accepts any rate.
func NewPLL(name string, mhz uint32, rates ...uint32) *PLL {
	return &PLL{name: name, rate: mhz, rates: rates}
}

func (p *PLL) Name() string { return p.name }

func (p *PLL) Rate() uint32 {
	p.m.Lock()
	defer p.m.Unlock()
	return p.rate
}

func (p *PLL) SetRate(_ context.Context, mhz uint32) error {
	p.m.Lock()
	defer p.m.Unlock()
	if mhz == p.rate {
		return nil
	}
	if p.enabled > 0 {
		return fmt.Errorf("%s: %w (enable count %d)", p.name, ErrBusy, p.enabled)
	}
	if len(p.rates) > 0 && !contains(p.rates, mhz) {
		return fmt.Errorf("%s: %d MHz is not a supported rate", p.name, mhz)
	}
	p.rate = mhz
	return nil
}

func contains(s []uint32, v uint32) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// Divider is a slave clock derived from a parent through an integer divider
// of 1 to MaxDiv. SetRate picks the fastest rate not above the request.
type Divider struct {
	gate
	name   string
	parent Clock
	maxDiv uint32
	div    uint32
}

func NewDivider(name string, parent Clock, maxDiv uint32) *Divider {
	return &Divider{name: name, parent: parent, maxDiv: maxDiv, div: 1}
}

func (d *Divider) Name() string { return d.name }

func (d *Divider) Rate() uint32 {
	d.m.Lock()
	defer d.m.Unlock()
	return d.parent.Rate() / d.div
}

func (d *Divider) SetRate(_ context.Context, mhz uint32) error {
	if mhz == 0 {
		return fmt.Errorf("%s: zero rate", d.name)
	}
	p := d.parent.Rate()
	div := (p + mhz - 1) / mhz
	if div < 1 {
		div = 1
	}
	if div > d.maxDiv {
		return fmt.Errorf("%s: %d MHz is below the slowest rate %d MHz", d.name, mhz, p/d.maxDiv)
	}
	d.m.Lock()
	d.div = div
	d.m.Unlock()
	return nil
}

// Registry holds the named parent clocks of a SoC.
type Registry struct {
	m      sync.RWMutex
	clocks map[string]Clock
}

func NewRegistry() *Registry {
	return &Registry{clocks: make(map[string]Clock)}
}

func (r *Registry) Register(c Clock) error {
	r.m.Lock()
	defer r.m.Unlock()
	if _, ok := r.clocks[c.Name()]; ok {
		return fmt.Errorf("clock %q already registered", c.Name())
	}
	r.clocks[c.Name()] = c
	return nil
}

func (r *Registry) Get(name string) (Clock, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	c, ok := r.clocks[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	return c, nil
}

// Names returns the registered clock names in sorted order.
func (r *Registry) Names() []string {
	r.m.RLock()
	defer r.m.RUnlock()
	n := make([]string, 0, len(r.clocks))
	for k := range r.clocks {
		n = append(n, k)
	}
	sort.Strings(n)
	return n
}
