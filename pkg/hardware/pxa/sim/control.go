// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"github.com/u-root/u-dvfs/pkg/hardware/pxa"
)

// Peek reads a register without side effects and without counting the read.
func (s *SoC) Peek(a uintptr) uint32 {
	s.m.Lock()
	defer s.m.Unlock()
	return s.regs[a]
}

// Poke sets a register without side effects and without recording a write.
func (s *SoC) Poke(a uintptr, v uint32) {
	s.m.Lock()
	defer s.m.Unlock()
	s.regs[a] = v
}

// BootCore sets the state a cluster was left in by the boot loader.
func (s *SoC) BootCore(cluster int, sel, pclkDiv, aclkDiv uint32) {
	s.m.Lock()
	defer s.m.Unlock()
	ccsr := pxa.CCR(s.regs[pxa.APMU_CCSR]).WithPclkDiv(cluster, pclkDiv).WithAclkDiv(cluster, aclkDiv)
	s.regs[pxa.APMU_CCSR] = uint32(ccsr)
	s.regs[pxa.APMU_CCR] = uint32(pxa.CCR(s.regs[pxa.APMU_CCR]).WithPclkDiv(cluster, pclkDiv).WithAclkDiv(cluster, aclkDiv))
	s.regs[pxa.APMU_PLLSEL] = uint32(pxa.PLLSel(s.regs[pxa.APMU_PLLSEL]).WithCore(cluster, sel))
	shift := 4 * uint(cluster)
	s.regs[pxa.MPMU_FCAP] = s.regs[pxa.MPMU_FCAP]&^(0x7<<shift) | sel<<shift
}

// BootDDR sets the DDR state left by the boot loader. The hardware DFC status
// always reports level 0 after reset, whatever the actual frequency is.
func (s *SoC) BootDDR(sel, dclkDiv uint32) {
	s.m.Lock()
	defer s.m.Unlock()
	s.regs[pxa.APMU_CCSR] = uint32(pxa.CCR(s.regs[pxa.APMU_CCSR]).WithDclkDiv(dclkDiv))
	s.regs[pxa.APMU_CCR] = uint32(pxa.CCR(s.regs[pxa.APMU_CCR]).WithDclkDiv(dclkDiv))
	s.regs[pxa.APMU_PLLSEL] = uint32(pxa.PLLSel(s.regs[pxa.APMU_PLLSEL]).WithDDR(sel))
	s.regs[pxa.MPMU_FCDCLK] = sel
	s.regs[pxa.APMU_DFC_STATUS] = uint32(pxa.MakeDFCStatus(false, 0, 0))
}

// BootAXI sets the AXI state left by the boot loader.
func (s *SoC) BootAXI(sel, aclkDiv uint32) {
	s.m.Lock()
	defer s.m.Unlock()
	s.regs[pxa.APMU_CCSR] = uint32(pxa.CCR(s.regs[pxa.APMU_CCSR]).WithAxiDiv(aclkDiv))
	s.regs[pxa.APMU_CCR] = uint32(pxa.CCR(s.regs[pxa.APMU_CCR]).WithAxiDiv(aclkDiv))
	s.regs[pxa.APMU_PLLSEL] = uint32(pxa.PLLSel(s.regs[pxa.APMU_PLLSEL]).WithAXI(sel))
	s.regs[pxa.MPMU_FCACLK] = sel
}

// SetCPAllowFC sets or withdraws the CP's vote to allow AP frequency changes.
func (s *SoC) SetCPAllowFC(allow bool) {
	s.m.Lock()
	defer s.m.Unlock()
	if allow {
		s.regs[pxa.APMU_CP_CCR] |= uint32(pxa.CCRAllowSpdChg)
	} else {
		s.regs[pxa.APMU_CP_CCR] &^= uint32(pxa.CCRAllowSpdChg)
	}
}

// SetCPHoldsLock makes the CP take (or drop) the FC lock. While the CP holds
// it, contending reads by the AP never observe the AP owned pattern.
func (s *SoC) SetCPHoldsLock(hold bool) {
	s.m.Lock()
	defer s.m.Unlock()
	s.cpHoldsLock = hold
}

// SetDropFCDone makes frequency changes complete without raising the AP FC
// done interrupt.
func (s *SoC) SetDropFCDone(drop bool) {
	s.m.Lock()
	defer s.m.Unlock()
	s.dropFCDone = drop
}

// SetStickySource makes frequency changes ignore the requested source.
func (s *SoC) SetStickySource(sticky bool) {
	s.m.Lock()
	defer s.m.Unlock()
	s.stickySource = sticky
}

// SetStickyDivider makes frequency changes ignore the requested dividers.
func (s *SoC) SetStickyDivider(sticky bool) {
	s.m.Lock()
	defer s.m.Unlock()
	s.stickyDivider = sticky
}

// SetDFCLatency sets how many DFC status reads report in progress after a
// DFC request before it completes.
func (s *SoC) SetDFCLatency(reads int) {
	s.m.Lock()
	defer s.m.Unlock()
	s.dfcLatency = reads
}

// SetDFCOvershoot makes the next DFC land n levels above the requested one,
// as happens when a CP initiated change races with the AP request.
func (s *SoC) SetDFCOvershoot(n int) {
	s.m.Lock()
	defer s.m.Unlock()
	s.dfcOvershoot = n
}

// SetDFCMaxLevel sets the highest level a DFC can land on.
func (s *SoC) SetDFCMaxLevel(level int) {
	s.m.Lock()
	defer s.m.Unlock()
	s.dfcMaxLevel = level
}

// StartCPDFC starts a CP initiated DFC that stays in progress for the given
// number of status reads.
func (s *SoC) StartCPDFC(level, reads int) {
	s.m.Lock()
	defer s.m.Unlock()
	s.startDFC(level, reads)
}

// Writes returns a copy of the recorded write trace.
func (s *SoC) Writes() []Write {
	s.m.Lock()
	defer s.m.Unlock()
	w := make([]Write, len(s.writes))
	copy(w, s.writes)
	return w
}

// WritesTo returns the values written to a, in order.
func (s *SoC) WritesTo(a uintptr) []uint32 {
	s.m.Lock()
	defer s.m.Unlock()
	var v []uint32
	for _, w := range s.writes {
		if w.Addr == a {
			v = append(v, w.Value)
		}
	}
	return v
}

// Reads returns the number of register reads done through MustRead32.
func (s *SoC) Reads() int {
	s.m.Lock()
	defer s.m.Unlock()
	return s.reads
}

// Closed reports whether Close was called.
func (s *SoC) Closed() bool {
	s.m.Lock()
	defer s.m.Unlock()
	return s.closed
}

// ResetTrace forgets all recorded writes and reads.
func (s *SoC) ResetTrace() {
	s.m.Lock()
	defer s.m.Unlock()
	s.writes = nil
	s.reads = 0
}
