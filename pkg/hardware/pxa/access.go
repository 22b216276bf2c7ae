// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pxa

func (p *Pmu) CCR() CCR             { return CCR(p.read(APMU_CCR)) }
func (p *Pmu) SetCCR(c CCR)         { p.write(APMU_CCR, uint32(c)) }
func (p *Pmu) CCSR() CCR            { return CCR(p.read(APMU_CCSR)) }
func (p *Pmu) PLLSel() PLLSel       { return PLLSel(p.read(APMU_PLLSEL)) }
func (p *Pmu) ISR() ISR             { return ISR(p.read(APMU_ISR)) }
func (p *Pmu) DFCStatus() DFCStatus { return DFCStatus(p.read(APMU_DFC_STATUS)) }
func (p *Pmu) DFCAP() DFCAP         { return DFCAP(p.read(APMU_DFC_AP)) }

// ContendFCLock reads APMU_DM_CC_AP. The read itself is what makes the AP
// contend for the AP/CP frequency change lock: hardware sets the AP read
// status when the CP does not hold it. Never replace this with a cached value.
func (p *Pmu) ContendFCLock() DMCC {
	return DMCC(p.read(APMU_DM_CC_AP))
}

// ClearReadStatus drops the AP read status, releasing the FC lock. The clear
// bit is self clearing on some steppings and sticky on others, so it is
// written 1 then 0.
func (p *Pmu) ClearReadStatus() {
	c := p.CCR()
	p.SetCCR(c | CCRRdStClear)
	p.SetCCR(c &^ CCRRdStClear)
}

// CPAllowsFC reports whether the CP has voted to allow AP frequency changes.
func (p *Pmu) CPAllowsFC() bool {
	return p.read(APMU_CP_CCR)&uint32(CCRAllowSpdChg) != 0
}

// ForceCPAllowFC sets the CP's allow-FC vote on its behalf.
func (p *Pmu) ForceCPAllowFC() {
	p.write(APMU_CP_CCR, p.read(APMU_CP_CCR)|uint32(CCRAllowSpdChg))
}

// ClearISR clears the given interrupt status bits, leaving the others alone.
func (p *Pmu) ClearISR(bits ISR) {
	p.write(APMU_ISR, uint32(p.ISR()&^bits))
}

// ClearFCReq zeroes frequency change request bits in APMU_CCR.
func (p *Pmu) ClearFCReq(bits CCR) {
	p.SetCCR(p.CCR() &^ bits)
}

func (p *Pmu) CoreSourceRequest(cluster int) uint32 {
	return coreSrc[cluster].get(p.read(MPMU_FCAP))
}

func (p *Pmu) SetCoreSource(cluster int, sel uint32) {
	p.write(MPMU_FCAP, coreSrc[cluster].set(p.read(MPMU_FCAP), sel))
}

func (p *Pmu) DDRSourceRequest() uint32 {
	return reqSrc.get(p.read(MPMU_FCDCLK))
}

func (p *Pmu) SetDDRSource(sel uint32) {
	p.write(MPMU_FCDCLK, reqSrc.set(p.read(MPMU_FCDCLK), sel))
}

func (p *Pmu) AXISourceRequest() uint32 {
	return reqSrc.get(p.read(MPMU_FCACLK))
}

func (p *Pmu) SetAXISource(sel uint32) {
	p.write(MPMU_FCACLK, reqSrc.set(p.read(MPMU_FCACLK), sel))
}

// RequestDFC writes a hardware DFC request for level.
func (p *Pmu) RequestDFC(level int) {
	p.write(APMU_DFC_AP, uint32(NewDFCRequest(level)))
}

func (p *Pmu) DFCLevel(level int) DFCLevel {
	return DFCLevel(p.read(DFCLevelAddr(level)))
}

func (p *Pmu) SetDFCLevel(level int, l DFCLevel) {
	p.write(DFCLevelAddr(level), uint32(l))
}

// XTC reads a cache timing register.
func (p *Pmu) XTC(a uintptr) uint32 {
	return p.read(a)
}

func (p *Pmu) SetXTC(a uintptr, v uint32) {
	p.write(a, v)
}
