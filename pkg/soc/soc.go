// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package soc holds the operating point tables of the supported SoCs.
//
// Source select values follow the PLLSEL encoding of each domain:
//
//	core  0 pll1_624   1 pll1_1248  2 pll2  3 pll3
//	ddr   0 pll1_624   1 pll1_1248  2 pll4
//	axi   0 pll1_416   1 pll1_624
package soc

import (
	"fmt"
	"sort"

	"github.com/u-root/u-dvfs/pkg/clk"
	"github.com/u-root/u-dvfs/pkg/fc"
)

// Cache timing values. Above 1 GHz the L1 and L2 arrays need an extra cycle.
const (
	l1Fast = 0x00b06a00
	l1Slow = 0x00b06a11
	l2Fast = 0x00000110
	l2Slow = 0x00000221

	axiXTCFast = 0x88880000
	axiXTCSlow = 0x99990000
)

var variants = map[string]func() fc.Variant{
	"helan3":  Helan3,
	"helanx":  HelanX,
	"pxa1928": PXA1928,
}

// Lookup returns a fresh copy of the named variant. Every call builds new
// parent clocks, so two managers never share clock state.
func Lookup(name string) (fc.Variant, error) {
	v, ok := variants[name]
	if !ok {
		return fc.Variant{}, fmt.Errorf("unknown SoC variant %q, known: %v", name, Names())
	}
	return v(), nil
}

// Names returns the known variant names, sorted.
func Names() []string {
	var n []string
	for k := range variants {
		n = append(n, k)
	}
	sort.Strings(n)
	return n
}

func core(rate, sel uint32, parent string, src, pdiv, adiv uint32) fc.CoreOP {
	op := fc.CoreOP{
		Point:   fc.Point{Rate: rate, Sel: sel, Parent: parent, SourceRate: src},
		PclkDiv: pdiv,
		AclkDiv: adiv,
		L1XTC:   l1Fast,
		L2XTC:   l2Fast,
	}
	if rate > 1000 {
		op.L1XTC, op.L2XTC = l1Slow, l2Slow
	}
	return op
}

// ddr points of a single DFC level table. A zero src follows the parent.
func ddr(rate, sel uint32, parent string, src, div uint32, level int) fc.DDROP {
	return fc.DDROP{
		Point:   fc.Point{Rate: rate, Sel: sel, Parent: parent, SourceRate: src},
		DclkDiv: div,
		Level:   level,
		MCTable: uint32(level),
	}
}

func axiTable() []fc.AXIOP {
	op := func(rate, sel uint32, parent string, div, xtc uint32) fc.AXIOP {
		return fc.AXIOP{Point: fc.Point{Rate: rate, Sel: sel, Parent: parent}, AclkDiv: div, XTC: xtc}
	}
	return []fc.AXIOP{
		op(104, 0, "pll1_416", 3, axiXTCFast),
		op(156, 1, "pll1_624", 3, axiXTCFast),
		op(208, 0, "pll1_416", 1, axiXTCFast),
		op(312, 1, "pll1_624", 1, axiXTCSlow),
	}
}

// pll1 returns the fixed PLL1 outputs every variant has.
func pll1() []clk.Clock {
	return []clk.Clock{
		clk.NewFixed("pll1_416", 416),
		clk.NewFixed("pll1_624", 624),
		clk.NewFixed("pll1_1248", 1248),
	}
}

var axiFollowsDDR = []fc.Relation{
	{MinMaster: 0, MaxMaster: 312, SlaveRate: 156},
	{MinMaster: 313, MaxMaster: 2000, SlaveRate: 312},
}

func domain(d fc.Domain) *fc.Domain { return &d }
