// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fc

import (
	"github.com/u-root/u-dvfs/pkg/hardware/pxa"
)

type coreOps struct {
	p       *pxa.Pmu
	cluster int
}

func (k coreOps) readback() (uint32, pxa.CCR) {
	return k.p.PLLSel().Core(k.cluster), k.p.CCSR()
}

func (k coreOps) matches(op OP, sel uint32, ccsr pxa.CCR) (bool, bool) {
	o := op.(*CoreOP)
	return o.Sel == sel, o.PclkDiv == ccsr.PclkDiv(k.cluster) && o.AclkDiv == ccsr.AclkDiv(k.cluster)
}

func (k coreOps) requestSource(sel uint32) { k.p.SetCoreSource(k.cluster, sel) }
func (k coreOps) sourceRequest() uint32    { return k.p.CoreSourceRequest(k.cluster) }

func (k coreOps) divisors(c pxa.CCR, op OP) pxa.CCR {
	o := op.(*CoreOP)
	return c.WithPclkDiv(k.cluster, o.PclkDiv).WithAclkDiv(k.cluster, o.AclkDiv)
}

func (k coreOps) fcReq() pxa.CCR { return pxa.CoreFCReq(k.cluster) }

func (k coreOps) timingDiffers(a, b OP) bool {
	x, y := a.(*CoreOP), b.(*CoreOP)
	return x.L1XTC != y.L1XTC || x.L2XTC != y.L2XTC
}

func (k coreOps) writeTiming(op OP) {
	o := op.(*CoreOP)
	k.p.SetXTC(pxa.L1XTCAddr(k.cluster), o.L1XTC)
	k.p.SetXTC(pxa.L2XTCAddr(k.cluster), o.L2XTC)
}

func (k coreOps) rollbackDisablesParent() bool { return true }
func (k coreOps) dumpDFC() bool                { return false }

type ddrOps struct {
	p *pxa.Pmu
}

func (k ddrOps) readback() (uint32, pxa.CCR) { return k.p.PLLSel().DDR(), k.p.CCSR() }

func (k ddrOps) matches(op OP, sel uint32, ccsr pxa.CCR) (bool, bool) {
	o := op.(*DDROP)
	return o.Sel == sel, o.DclkDiv == ccsr.DclkDiv()
}

func (k ddrOps) requestSource(sel uint32) { k.p.SetDDRSource(sel) }
func (k ddrOps) sourceRequest() uint32    { return k.p.DDRSourceRequest() }

func (k ddrOps) divisors(c pxa.CCR, op OP) pxa.CCR {
	return c.WithDclkDiv(op.(*DDROP).DclkDiv)
}

func (k ddrOps) fcReq() pxa.CCR               { return pxa.CCRDDRFCReq }
func (k ddrOps) timingDiffers(a, b OP) bool   { return false }
func (k ddrOps) writeTiming(OP)               {}
func (k ddrOps) rollbackDisablesParent() bool { return true }
func (k ddrOps) dumpDFC() bool                { return true }

type axiOps struct {
	p *pxa.Pmu
}

func (k axiOps) readback() (uint32, pxa.CCR) { return k.p.PLLSel().AXI(), k.p.CCSR() }

func (k axiOps) matches(op OP, sel uint32, ccsr pxa.CCR) (bool, bool) {
	o := op.(*AXIOP)
	return o.Sel == sel, o.AclkDiv == ccsr.AxiDiv()
}

func (k axiOps) requestSource(sel uint32) { k.p.SetAXISource(sel) }
func (k axiOps) sourceRequest() uint32    { return k.p.AXISourceRequest() }

func (k axiOps) divisors(c pxa.CCR, op OP) pxa.CCR {
	return c.WithAxiDiv(op.(*AXIOP).AclkDiv)
}

func (k axiOps) fcReq() pxa.CCR { return pxa.CCRAXIFCReq }

func (k axiOps) timingDiffers(a, b OP) bool {
	return a.(*AXIOP).XTC != b.(*AXIOP).XTC
}

func (k axiOps) writeTiming(op OP) { k.p.SetXTC(pxa.CIU_AXI_XTC, op.(*AXIOP).XTC) }

func (k axiOps) rollbackDisablesParent() bool { return false }
func (k axiOps) dumpDFC() bool                { return false }
