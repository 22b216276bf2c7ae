// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fc

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/u-root/u-dvfs/pkg/clk"
	"github.com/u-root/u-dvfs/pkg/hardware/pxa"
)

// Point is what all operating points have in common. Rates are in MHz and
// a divider field d divides the source by d+1.
type Point struct {
	Rate uint32
	// Sel is the source select field value for this point.
	Sel    uint32
	Parent string
	// SourceRate is the rate Parent must run at. Zero means whatever the
	// parent runs at, looked up when the table is built and again before
	// each transition.
	SourceRate uint32

	followParent bool
}

// CoreOP is a CPU cluster operating point. L1XTC and L2XTC are the cache
// timing values the cluster needs at this rate.
type CoreOP struct {
	Point
	PclkDiv uint32
	AclkDiv uint32
	L1XTC   uint32
	L2XTC   uint32
}

// DDROP is a DDR operating point. Level is its index in the hardware DFC
// level table, MCTable the memory controller timing table it uses. Volt is
// filled from the variant voltage table when left zero.
type DDROP struct {
	Point
	DclkDiv uint32
	Level   int
	MCTable uint32
	Volt    uint32
}

// AXIOP is an AXI bus operating point.
type AXIOP struct {
	Point
	AclkDiv uint32
	XTC     uint32
}

// OP is implemented by *CoreOP, *DDROP and *AXIOP.
type OP interface {
	point() *Point
}

func (o *CoreOP) point() *Point { return &o.Point }
func (o *DDROP) point() *Point  { return &o.Point }
func (o *AXIOP) point() *Point  { return &o.Point }

// RateToEntry returns the first entry of an ascending table running at mhz or
// faster, and its index. Requests above the table are clamped to the last
// entry. An empty table returns index -1.
func RateToEntry[T OP](table []T, mhz uint32) (T, int) {
	var zero T
	if len(table) == 0 {
		return zero, -1
	}
	for i, op := range table {
		if op.point().Rate >= mhz {
			return op, i
		}
	}
	return table[len(table)-1], len(table) - 1
}

// VoltLevel maps DDR rates up to MaxRate to a DVFS voltage level.
type VoltLevel struct {
	MaxRate uint32
	Level   uint32
}

func voltFor(levels []VoltLevel, mhz uint32) uint32 {
	if len(levels) == 0 {
		return 0
	}
	for _, l := range levels {
		if mhz <= l.MaxRate {
			return l.Level
		}
	}
	return levels[len(levels)-1].Level
}

// tableRules are the build time filters of a table.
type tableRules struct {
	ceiling        uint32
	disabled       []uint32
	checkDivisible bool
	volts          []VoltLevel
}

// buildTable resolves parents and source rates and drops the entries the
// rules exclude. Every problem found is reported, not just the first.
func buildTable(d Domain, ops []OP, r tableRules, parents *clk.Registry, log *zap.SugaredLogger) ([]OP, error) {
	var (
		out  []OP
		errs error
		last uint32
	)
	for _, op := range ops {
		p := op.point()
		if p.Rate <= last {
			errs = multierr.Append(errs, fmt.Errorf("%s: %d MHz is not above the previous entry %d MHz", d, p.Rate, last))
			continue
		}
		last = p.Rate
		parent, err := parents.Get(p.Parent)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %d MHz: %w", d, p.Rate, err))
			continue
		}
		if p.SourceRate == 0 {
			p.followParent = true
			p.SourceRate = parent.Rate()
		}
		if r.ceiling != 0 && p.Rate > r.ceiling {
			log.Infof("%s: %d MHz excluded, above the %d MHz ceiling", d, p.Rate, r.ceiling)
			continue
		}
		if contains(r.disabled, p.Rate) {
			log.Infof("%s: %d MHz excluded by boot parameter", d, p.Rate)
			continue
		}
		switch o := op.(type) {
		case *CoreOP:
			if r.checkDivisible && !divisible(p.SourceRate, o.PclkDiv, p.Rate) {
				log.Infof("%s: %d MHz excluded, not derivable from %s at %d MHz", d, p.Rate, p.Parent, p.SourceRate)
				continue
			}
		case *DDROP:
			if o.Level < 0 || o.Level >= pxa.DFC_LEVELS {
				errs = multierr.Append(errs, fmt.Errorf("%s: %d MHz: DFC level %d out of range", d, p.Rate, o.Level))
				continue
			}
			if o.Volt == 0 {
				o.Volt = voltFor(r.volts, p.Rate)
			}
		}
		out = append(out, op)
	}
	if errs == nil && len(out) == 0 {
		errs = fmt.Errorf("%s: no usable operating points", d)
	}
	return out, errs
}

func divisible(src, div, rate uint32) bool {
	return src%(div+1) == 0 && src/(div+1) == rate
}

func contains(s []uint32, v uint32) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func rates(table []OP) []uint32 {
	r := make([]uint32, len(table))
	for i, op := range table {
		r[i] = op.point().Rate
	}
	return r
}
