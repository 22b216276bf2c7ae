// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pxa

import (
	"fmt"
	"strings"
)

type field struct {
	shift uint
	width uint
}

func (f field) mask() uint32 {
	return (uint32(1)<<f.width - 1) << f.shift
}

func (f field) get(v uint32) uint32 {
	return v & f.mask() >> f.shift
}

func (f field) set(v, x uint32) uint32 {
	return v&^f.mask() | x<<f.shift&f.mask()
}

var (
	pclkDiv = [CLUSTERS]field{{0, 3}, {6, 3}}
	aclkDiv = [CLUSTERS]field{{3, 3}, {9, 3}}
	dclkDiv = field{12, 3}
	axiDiv  = field{15, 3}

	coreSrc = [CLUSTERS]field{{0, 3}, {4, 3}}
	ddrSrc  = field{8, 3}
	axiSrc  = field{12, 3}
	reqSrc  = field{0, 3}

	rdStatus = field{24, 2}

	dfcReqLevel = field{1, 4}
	dfcCurLevel = field{1, 4}
	dfcTgtLevel = field{5, 4}
	dfcLvlSrc   = field{0, 3}
	dfcLvlDiv   = field{3, 3}
	dfcLvlMCTbl = field{6, 4}
	dfcLvlVolt  = field{10, 4}
)

// CCR is the layout of both APMU_CCR (AP clock control) and APMU_CCSR (the
// status readback of the same divider fields).
//
//	[2:0] CLST0 pclk   [5:3] CLST0 aclk   [8:6] CLST1 pclk  [11:9] CLST1 aclk
//	[14:12] DDR dclk   [17:15] AXI aclk
//	23 CLST1 FC req    24 CLST0 FC req    25 DDR FC req     26 AXI FC req
//	27 allow speed change                 31 read status clear
type CCR uint32

const (
	CCRClst1FCReq  CCR = 1 << 23
	CCRClst0FCReq  CCR = 1 << 24
	CCRDDRFCReq    CCR = 1 << 25
	CCRAXIFCReq    CCR = 1 << 26
	CCRAllowSpdChg CCR = 1 << 27
	CCRRdStClear   CCR = 1 << 31
	CCRFCReqMask       = CCRClst0FCReq | CCRClst1FCReq | CCRDDRFCReq | CCRAXIFCReq
)

// CoreFCReq is the frequency change request (trigger) bit of a cluster.
func CoreFCReq(cluster int) CCR {
	if cluster == 1 {
		return CCRClst1FCReq
	}
	return CCRClst0FCReq
}

func (c CCR) PclkDiv(cluster int) uint32 { return pclkDiv[cluster].get(uint32(c)) }
func (c CCR) AclkDiv(cluster int) uint32 { return aclkDiv[cluster].get(uint32(c)) }
func (c CCR) DclkDiv() uint32            { return dclkDiv.get(uint32(c)) }
func (c CCR) AxiDiv() uint32             { return axiDiv.get(uint32(c)) }

func (c CCR) WithPclkDiv(cluster int, d uint32) CCR {
	return CCR(pclkDiv[cluster].set(uint32(c), d))
}

func (c CCR) WithAclkDiv(cluster int, d uint32) CCR {
	return CCR(aclkDiv[cluster].set(uint32(c), d))
}

func (c CCR) WithDclkDiv(d uint32) CCR { return CCR(dclkDiv.set(uint32(c), d)) }
func (c CCR) WithAxiDiv(d uint32) CCR  { return CCR(axiDiv.set(uint32(c), d)) }

func (c CCR) GoString() string {
	out := []string{
		fmt.Sprintf("c0p=%d", c.PclkDiv(0)), fmt.Sprintf("c0a=%d", c.AclkDiv(0)),
		fmt.Sprintf("c1p=%d", c.PclkDiv(1)), fmt.Sprintf("c1a=%d", c.AclkDiv(1)),
		fmt.Sprintf("d=%d", c.DclkDiv()), fmt.Sprintf("x=%d", c.AxiDiv()),
	}
	for _, b := range []struct {
		bit  CCR
		name string
	}{
		{CCRClst0FCReq, "C0Req"}, {CCRClst1FCReq, "C1Req"}, {CCRDDRFCReq, "DReq"},
		{CCRAXIFCReq, "XReq"}, {CCRAllowSpdChg, "Allow"}, {CCRRdStClear, "RdStClr"},
	} {
		if c&b.bit != 0 {
			out = append(out, b.name)
		}
	}
	return strings.Join(out, "|")
}

// PLLSel is APMU_PLLSEL, the source each domain is actually running from.
type PLLSel uint32

func (s PLLSel) Core(cluster int) uint32 { return coreSrc[cluster].get(uint32(s)) }
func (s PLLSel) DDR() uint32             { return ddrSrc.get(uint32(s)) }
func (s PLLSel) AXI() uint32             { return axiSrc.get(uint32(s)) }

func (s PLLSel) WithCore(cluster int, sel uint32) PLLSel {
	return PLLSel(coreSrc[cluster].set(uint32(s), sel))
}

func (s PLLSel) WithDDR(sel uint32) PLLSel { return PLLSel(ddrSrc.set(uint32(s), sel)) }
func (s PLLSel) WithAXI(sel uint32) PLLSel { return PLLSel(axiSrc.set(uint32(s), sel)) }

func (s PLLSel) GoString() string {
	return fmt.Sprintf("c0=%d|c1=%d|d=%d|x=%d", s.Core(0), s.Core(1), s.DDR(), s.AXI())
}

// DMCC is APMU_DM_CC_AP. Bits [25:24] are the read status of the AP/CP
// frequency change lock.
type DMCC uint32

const (
	RdStatusCP uint32 = 1 << 0
	RdStatusAP uint32 = 1 << 1

	// The AP owns the FC lock when it has read status and the CP has not.
	LockOwnedByAP = RdStatusAP
)

func (d DMCC) RdStatus() uint32 { return rdStatus.get(uint32(d)) }

func (d DMCC) WithRdStatus(s uint32) DMCC { return DMCC(rdStatus.set(uint32(d), s)) }

// APOwnsLock reports whether the 2-bit read status shows the AP as owner.
func (d DMCC) APOwnsLock() bool { return d.RdStatus() == LockOwnedByAP }

// ISR is APMU_ISR. Bits are cleared by writing 0 to them.
type ISR uint32

const (
	ISRAPFCDone ISR = 1 << 1
	ISRDFCDone  ISR = 1 << 5
)

// DFCAP is APMU_DFC_AP, the hardware DFC request register.
type DFCAP uint32

const DFCAPReq DFCAP = 1 << 0

func NewDFCRequest(level int) DFCAP {
	return DFCAP(dfcReqLevel.set(0, uint32(level))) | DFCAPReq
}

func (d DFCAP) Level() int { return int(dfcReqLevel.get(uint32(d))) }

// DFCStatus is APMU_DFC_STATUS.
type DFCStatus uint32

const DFCStatusInProgress DFCStatus = 1 << 0

func MakeDFCStatus(inProgress bool, cur, tgt int) DFCStatus {
	v := dfcCurLevel.set(0, uint32(cur))
	v = dfcTgtLevel.set(v, uint32(tgt))
	s := DFCStatus(v)
	if inProgress {
		s |= DFCStatusInProgress
	}
	return s
}

func (s DFCStatus) InProgress() bool  { return s&DFCStatusInProgress != 0 }
func (s DFCStatus) CurrentLevel() int { return int(dfcCurLevel.get(uint32(s))) }
func (s DFCStatus) TargetLevel() int  { return int(dfcTgtLevel.get(uint32(s))) }

func (s DFCStatus) GoString() string {
	p := ""
	if s.InProgress() {
		p = "|InProgress"
	}
	return fmt.Sprintf("cur=%d|tgt=%d%s", s.CurrentLevel(), s.TargetLevel(), p)
}

// DFCLevel is one entry of the hardware DFC level table.
type DFCLevel uint32

func MakeDFCLevel(src, dclkDiv, mcTable, volt uint32) DFCLevel {
	v := dfcLvlSrc.set(0, src)
	v = dfcLvlDiv.set(v, dclkDiv)
	v = dfcLvlMCTbl.set(v, mcTable)
	v = dfcLvlVolt.set(v, volt)
	return DFCLevel(v)
}

func (l DFCLevel) Source() uint32  { return dfcLvlSrc.get(uint32(l)) }
func (l DFCLevel) DclkDiv() uint32 { return dfcLvlDiv.get(uint32(l)) }
func (l DFCLevel) MCTable() uint32 { return dfcLvlMCTbl.get(uint32(l)) }
func (l DFCLevel) Volt() uint32    { return dfcLvlVolt.get(uint32(l)) }

func (l DFCLevel) GoString() string {
	return fmt.Sprintf("src=%d|div=%d|mc=%d|volt=%d", l.Source(), l.DclkDiv(), l.MCTable(), l.Volt())
}
