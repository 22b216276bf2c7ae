// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sim is a register level model of the PXA/Helan PMU clock registers.
//
// It implements the memory provider interface of package pxa, so a pxa.Pmu can
// be opened on top of it. The model reacts to frequency change triggers the
// way the hardware does: the read of APMU_DM_CC_AP contends for the AP/CP
// lock, rising FC request bits copy the requested source and dividers into the
// status registers and raise the AP FC done interrupt, and DFC requests walk
// the programmed level table. Every write is recorded so tests can assert on
// the exact register sequence.
package sim

import (
	"context"
	"sync"
	"time"

	"github.com/u-root/u-dvfs/pkg/hardware/pxa"
)

// Write is one recorded register write.
type Write struct {
	Addr  uintptr
	Value uint32
}

type SoC struct {
	m      sync.Mutex
	regs   map[uintptr]uint32
	writes []Write
	reads  int
	closed bool

	cpHoldsLock   bool
	dropFCDone    bool
	stickySource  bool
	stickyDivider bool

	dfcActive    bool
	dfcPending   int
	dfcTarget    int
	dfcLatency   int
	dfcOvershoot int
	dfcMaxLevel  int
}

func New() *SoC {
	s := &SoC{
		regs:        make(map[uintptr]uint32),
		dfcMaxLevel: pxa.DFC_LEVELS - 1,
	}
	// The CP votes to allow AP frequency changes once it has booted
	s.regs[pxa.APMU_CP_CCR] = uint32(pxa.CCRAllowSpdChg)
	return s
}

func (s *SoC) MustRead32(a uintptr) uint32 {
	s.m.Lock()
	defer s.m.Unlock()
	s.reads++
	switch a {
	case pxa.APMU_DM_CC_AP:
		d := pxa.DMCC(s.regs[a])
		switch {
		case s.cpHoldsLock:
			d = d.WithRdStatus(pxa.RdStatusCP)
		default:
			d = d.WithRdStatus(pxa.RdStatusAP)
		}
		s.regs[a] = uint32(d)
	case pxa.APMU_DFC_STATUS:
		if s.dfcActive {
			if s.dfcPending > 0 {
				s.dfcPending--
			} else {
				s.completeDFC()
			}
		}
	}
	return s.regs[a]
}

func (s *SoC) MustWrite32(a uintptr, v uint32) {
	s.m.Lock()
	defer s.m.Unlock()
	s.writes = append(s.writes, Write{a, v})
	switch a {
	case pxa.APMU_CCR:
		old := pxa.CCR(s.regs[a])
		c := pxa.CCR(v)
		s.regs[a] = v
		if c&pxa.CCRRdStClear != 0 {
			d := pxa.DMCC(s.regs[pxa.APMU_DM_CC_AP])
			s.regs[pxa.APMU_DM_CC_AP] = uint32(d.WithRdStatus(d.RdStatus() &^ pxa.RdStatusAP))
		}
		rising := c &^ old & pxa.CCRFCReqMask
		if rising == 0 || c&pxa.CCRAllowSpdChg == 0 || !s.apOwnsLock() {
			return
		}
		s.frequencyChange(c, rising)
	case pxa.APMU_ISR:
		s.regs[a] &= v
	case pxa.APMU_DFC_AP:
		s.regs[a] = v
		r := pxa.DFCAP(v)
		if r&pxa.DFCAPReq != 0 {
			s.startDFC(r.Level(), s.dfcLatency)
		}
	default:
		s.regs[a] = v
	}
}

func (s *SoC) Close() {
	s.m.Lock()
	defer s.m.Unlock()
	s.closed = true
}

func (s *SoC) apOwnsLock() bool {
	return pxa.DMCC(s.regs[pxa.APMU_DM_CC_AP]).APOwnsLock()
}

func (s *SoC) frequencyChange(c, req pxa.CCR) {
	ccsr := pxa.CCR(s.regs[pxa.APMU_CCSR])
	sel := pxa.PLLSel(s.regs[pxa.APMU_PLLSEL])
	fcap := s.regs[pxa.MPMU_FCAP]
	for cl := 0; cl < pxa.CLUSTERS; cl++ {
		if req&pxa.CoreFCReq(cl) == 0 {
			continue
		}
		if !s.stickyDivider {
			ccsr = ccsr.WithPclkDiv(cl, c.PclkDiv(cl)).WithAclkDiv(cl, c.AclkDiv(cl))
		}
		if !s.stickySource {
			sel = sel.WithCore(cl, coreReq(fcap, cl))
		}
	}
	if req&pxa.CCRDDRFCReq != 0 {
		if !s.stickyDivider {
			ccsr = ccsr.WithDclkDiv(c.DclkDiv())
		}
		if !s.stickySource {
			sel = sel.WithDDR(s.regs[pxa.MPMU_FCDCLK] & 0x7)
		}
	}
	if req&pxa.CCRAXIFCReq != 0 {
		if !s.stickyDivider {
			ccsr = ccsr.WithAxiDiv(c.AxiDiv())
		}
		if !s.stickySource {
			sel = sel.WithAXI(s.regs[pxa.MPMU_FCACLK] & 0x7)
		}
	}
	s.regs[pxa.APMU_CCSR] = uint32(ccsr)
	s.regs[pxa.APMU_PLLSEL] = uint32(sel)
	if !s.dropFCDone {
		s.regs[pxa.APMU_ISR] |= uint32(pxa.ISRAPFCDone)
	}
}

func coreReq(fcap uint32, cluster int) uint32 {
	return fcap >> (4 * uint(cluster)) & 0x7
}

func (s *SoC) startDFC(level, latency int) {
	s.dfcActive = true
	s.dfcTarget = level
	s.dfcPending = latency
	st := pxa.DFCStatus(s.regs[pxa.APMU_DFC_STATUS])
	s.regs[pxa.APMU_DFC_STATUS] = uint32(pxa.MakeDFCStatus(true, st.CurrentLevel(), level))
	if latency == 0 {
		s.completeDFC()
	}
}

func (s *SoC) completeDFC() {
	lvl := s.dfcTarget + s.dfcOvershoot
	if lvl > s.dfcMaxLevel {
		lvl = s.dfcMaxLevel
	}
	if lvl < s.dfcTarget {
		lvl = s.dfcTarget
	}
	s.dfcActive = false
	s.dfcOvershoot = 0
	e := pxa.DFCLevel(s.regs[pxa.DFCLevelAddr(lvl)])
	if !s.stickySource {
		s.regs[pxa.APMU_PLLSEL] = uint32(pxa.PLLSel(s.regs[pxa.APMU_PLLSEL]).WithDDR(e.Source()))
	}
	if !s.stickyDivider {
		s.regs[pxa.APMU_CCSR] = uint32(pxa.CCR(s.regs[pxa.APMU_CCSR]).WithDclkDiv(e.DclkDiv()))
	}
	s.regs[pxa.APMU_DFC_STATUS] = uint32(pxa.MakeDFCStatus(false, lvl, s.dfcTarget))
	s.regs[pxa.APMU_ISR] |= uint32(pxa.ISRDFCDone)
}

// RunCP emulates CP frequency change activity until ctx is done: every
// interval the CP takes the FC lock (if the AP does not own it) and holds it
// for hold.
func (s *SoC) RunCP(ctx context.Context, interval, hold time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		s.m.Lock()
		took := !s.apOwnsLock() && !s.cpHoldsLock
		if took {
			s.cpHoldsLock = true
		}
		s.m.Unlock()
		if !took {
			continue
		}
		select {
		case <-ctx.Done():
		case <-time.After(hold):
		}
		s.SetCPHoldsLock(false)
	}
}
