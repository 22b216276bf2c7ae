// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fc

import (
	"context"
	"testing"

	"github.com/jmhodges/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/u-root/u-dvfs/pkg/clk"
	"github.com/u-root/u-dvfs/pkg/hardware/pxa"
	"github.com/u-root/u-dvfs/pkg/hardware/pxa/sim"
)

const (
	narrow = 0x4444
	wide   = 0x5555
	axiLo  = 0x8888
	axiHi  = 0x9999
)

func core(rate, sel uint32, parent string, src, pdiv, adiv, xtc uint32) CoreOP {
	return CoreOP{
		Point:   Point{Rate: rate, Sel: sel, Parent: parent, SourceRate: src},
		PclkDiv: pdiv, AclkDiv: adiv, L1XTC: xtc, L2XTC: xtc,
	}
}

func ddr(rate, sel uint32, parent string, div uint32, level int) DDROP {
	return DDROP{
		Point:   Point{Rate: rate, Sel: sel, Parent: parent},
		DclkDiv: div, Level: level, MCTable: uint32(level),
	}
}

func axi(rate, sel uint32, parent string, div, xtc uint32) AXIOP {
	return AXIOP{Point: Point{Rate: rate, Sel: sel, Parent: parent}, AclkDiv: div, XTC: xtc}
}

// testVariant has one cluster sharing pll2 between 416, 832 and 1248 MHz,
// HWDFC DDR and a three point AXI table.
func testVariant() Variant {
	return Variant{
		Name: "test",
		Core: [][]CoreOP{{
			core(312, 0, "pll1_624", 624, 1, 3, narrow),
			core(416, 2, "pll2", 832, 1, 3, narrow),
			core(624, 0, "pll1_624", 624, 0, 1, narrow),
			core(832, 2, "pll2", 832, 0, 1, wide),
			core(1248, 2, "pll2", 1248, 0, 2, wide),
		}},
		CoreBridge:     []uint32{624},
		CheckDivisible: true,
		DDR: []DDROP{
			ddr(156, 0, "pll1_624", 3, 0),
			ddr(208, 1, "pll1_416", 1, 1),
			ddr(312, 0, "pll1_624", 1, 2),
			ddr(416, 1, "pll1_416", 0, 3),
			ddr(624, 0, "pll1_624", 0, 4),
		},
		HWDFC:    true,
		DDRVolts: []VoltLevel{{312, 0}, {416, 1}, {624, 2}},
		AXI: []AXIOP{
			axi(104, 0, "pll1_416", 3, axiLo),
			axi(208, 0, "pll1_416", 1, axiLo),
			axi(312, 1, "pll1_624", 1, axiHi),
		},
		Parents: []clk.Clock{
			clk.NewFixed("pll1_416", 416),
			clk.NewFixed("pll1_624", 624),
			clk.NewFixed("pll1_1248", 1248),
			clk.NewPLL("pll2", 832, 832, 1248),
		},
	}
}

// dfcIdleReads is the number of status reads the idle wait makes on a fake
// clock before giving up.
const dfcIdleReads = int(dfcIdleTimeout/dfcPollDelay) + 1

type fixture struct {
	m    *Manager
	soc  *sim.SoC
	pmu  *pxa.Pmu
	logs *observer.ObservedLogs
	reg  *prometheus.Registry
	irq  *ThreadIRQ
}

// bootDefault leaves the cluster at 624 MHz, DDR at 156 MHz and AXI at
// 208 MHz.
func bootDefault(s *sim.SoC) {
	s.BootCore(0, 0, 0, 1)
	s.BootDDR(0, 3)
	s.BootAXI(0, 1)
}

func newFixture(t *testing.T, v Variant, boot func(*sim.SoC)) *fixture {
	t.Helper()
	s := sim.New()
	if boot == nil {
		boot = bootDefault
	}
	boot(s)
	zc, logs := observer.New(zap.DebugLevel)
	f := &fixture{
		soc:  s,
		pmu:  pxa.OpenWithMemory(s),
		logs: logs,
		reg:  prometheus.NewRegistry(),
		irq:  &ThreadIRQ{},
	}
	m, err := New(f.pmu, v, Options{
		Logger:     zap.New(zc).Sugar(),
		Registerer: f.reg,
		Clock:      clock.NewFake(),
		IRQ:        f.irq,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	f.m = m
	s.ResetTrace()
	return f
}

func (f *fixture) clock(t *testing.T, d Domain) *DomainClock {
	t.Helper()
	c, err := f.m.Clock(d)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func (f *fixture) enableCount(t *testing.T, name string) int {
	t.Helper()
	p, err := f.m.Parents().Get(name)
	if err != nil {
		t.Fatal(err)
	}
	return p.(interface{ EnableCount() int }).EnableCount()
}

func (f *fixture) logged(snippet string) int {
	return f.logs.FilterMessageSnippet(snippet).Len()
}

// index returns the position of the first write matching fn, or -1.
func index(w []sim.Write, from int, fn func(sim.Write) bool) int {
	for i := from; i < len(w); i++ {
		if fn(w[i]) {
			return i
		}
	}
	return -1
}
