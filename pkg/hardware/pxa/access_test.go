// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pxa

import (
	"bytes"
	"strings"
	"testing"
)

func TestClearReadStatus(t *testing.T) {
	fm := fakeMemory(t)
	p := OpenWithMemory(fm)
	fm.FakeRead32(APMU_CCR, 0x08001249)
	fm.ExpectWrite32(APMU_CCR, 0x88001249)
	fm.ExpectWrite32(APMU_CCR, 0x08001249)
	p.ClearReadStatus()
	fm.Done()
}

func TestContendFCLock(t *testing.T) {
	fm := fakeMemory(t)
	p := OpenWithMemory(fm)
	fm.FakeRead32(APMU_DM_CC_AP, 1<<24)
	if p.ContendFCLock().APOwnsLock() {
		t.Errorf("CP owns the lock, AP should not")
	}
	fm.FakeRead32(APMU_DM_CC_AP, 3<<24)
	if p.ContendFCLock().APOwnsLock() {
		t.Errorf("Both read status bits set, AP should not own the lock")
	}
	fm.FakeRead32(APMU_DM_CC_AP, 1<<25)
	if !p.ContendFCLock().APOwnsLock() {
		t.Errorf("Expected AP to own the lock")
	}
	fm.Done()
}

func TestForceCPAllowFC(t *testing.T) {
	fm := fakeMemory(t)
	p := OpenWithMemory(fm)
	fm.FakeRead32(APMU_CP_CCR, 0)
	if p.CPAllowsFC() {
		t.Errorf("CP vote should be missing")
	}
	fm.FakeRead32(APMU_CP_CCR, 0x5)
	fm.ExpectWrite32(APMU_CP_CCR, 0x5|1<<27)
	p.ForceCPAllowFC()
	fm.Done()
}

func TestClearISR(t *testing.T) {
	fm := fakeMemory(t)
	p := OpenWithMemory(fm)
	fm.FakeRead32(APMU_ISR, 0x23)
	fm.ExpectWrite32(APMU_ISR, 0x21)
	p.ClearISR(ISRAPFCDone)
	fm.Done()
}

func TestSetCoreSource(t *testing.T) {
	fm := fakeMemory(t)
	p := OpenWithMemory(fm)
	fm.FakeRead32(MPMU_FCAP, 0x21)
	fm.ExpectWrite32(MPMU_FCAP, 0x23)
	p.SetCoreSource(0, 3)
	fm.FakeRead32(MPMU_FCAP, 0x23)
	fm.ExpectWrite32(MPMU_FCAP, 0x43)
	p.SetCoreSource(1, 4)
	fm.Done()
}

func TestSourceRequests(t *testing.T) {
	fm := fakeMemory(t)
	p := OpenWithMemory(fm)
	fm.FakeRead32(MPMU_FCAP, 0x42)
	if got := p.CoreSourceRequest(1); got != 4 {
		t.Errorf("Cluster 1 source request %d, want 4", got)
	}
	fm.FakeRead32(MPMU_FCDCLK, 0x13)
	if got := p.DDRSourceRequest(); got != 3 {
		t.Errorf("DDR source request %d, want 3", got)
	}
	fm.FakeRead32(MPMU_FCACLK, 0x9)
	if got := p.AXISourceRequest(); got != 1 {
		t.Errorf("AXI source request %d, want 1", got)
	}
	fm.Done()
}

func TestRequestDFC(t *testing.T) {
	fm := fakeMemory(t)
	p := OpenWithMemory(fm)
	fm.ExpectWrite32(APMU_DFC_AP, 3<<1|1)
	p.RequestDFC(3)
	fm.Done()
}

func TestCCRFields(t *testing.T) {
	c := CCR(0).
		WithPclkDiv(0, 1).WithAclkDiv(0, 3).
		WithPclkDiv(1, 7).WithAclkDiv(1, 2).
		WithDclkDiv(5).WithAxiDiv(4)
	if got := uint32(c); got != 0x255d9 {
		t.Errorf("Expected CCR 000255d9, got %08x", got)
	}
	if c.PclkDiv(0) != 1 || c.AclkDiv(0) != 3 || c.PclkDiv(1) != 7 || c.AclkDiv(1) != 2 {
		t.Errorf("Core dividers did not round trip: %#v", c)
	}
	if c.DclkDiv() != 5 || c.AxiDiv() != 4 {
		t.Errorf("Bus dividers did not round trip: %#v", c)
	}
	// Setting a field must not leak into its neighbours
	c = c.WithPclkDiv(0, 0xf)
	if c.PclkDiv(0) != 7 || c.AclkDiv(0) != 3 {
		t.Errorf("Field overflow leaked: %#v", c)
	}
}

func TestDFCLevelFields(t *testing.T) {
	l := MakeDFCLevel(2, 3, 5, 1)
	if l.Source() != 2 || l.DclkDiv() != 3 || l.MCTable() != 5 || l.Volt() != 1 {
		t.Errorf("DFC level did not round trip: %#v", l)
	}
	s := MakeDFCStatus(true, 4, 3)
	if !s.InProgress() || s.CurrentLevel() != 4 || s.TargetLevel() != 3 {
		t.Errorf("DFC status did not round trip: %#v", s)
	}
}

func TestDumpSkipsLockRegister(t *testing.T) {
	fm := fakeMemory(t)
	p := OpenWithMemory(fm)
	for _, a := range Registers() {
		if a != APMU_DM_CC_AP {
			fm.FakeRead32(a, 0)
		}
	}
	var b bytes.Buffer
	p.Dump(&b)
	fm.Done()
	if !strings.Contains(b.String(), "AP Clock Control Register") {
		t.Errorf("Dump is missing register names:\n%s", b.String())
	}
}
