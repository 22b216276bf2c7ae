// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fc

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// recorder is a slave clock that runs at most at limit.
type recorder struct {
	rate  uint32
	limit uint32
	fail  bool
	asked []uint32
}

func (r *recorder) Name() string         { return "rec" }
func (r *recorder) Rate() uint32         { return r.rate }
func (r *recorder) PrepareEnable() error { return nil }
func (r *recorder) DisableUnprepare()    {}

func (r *recorder) SetRate(_ context.Context, mhz uint32) error {
	r.asked = append(r.asked, mhz)
	if r.fail {
		return errors.New("slave broken")
	}
	r.rate = mhz
	if r.limit != 0 && r.rate > r.limit {
		r.rate = r.limit
	}
	return nil
}

var cciBuckets = []Relation{
	{MinMaster: 0, MaxMaster: 624, SlaveRate: 312},
	{MinMaster: 625, MaxMaster: 1248, SlaveRate: 624},
}

func TestSlaveFollowsMaster(t *testing.T) {
	f := newFixture(t, testVariant(), nil)
	r := &recorder{}
	if err := f.m.RegisterSlaveClock(r, Clst0, 500, cciBuckets); err != nil {
		t.Fatal(err)
	}
	c := f.clock(t, Clst0)
	for _, mhz := range []uint32{312, 1248} {
		if err := c.SetRate(context.Background(), mhz); err != nil {
			t.Fatalf("SetRate(%d): %v", mhz, err)
		}
	}
	// 624 is clamped to the 500 MHz maximum
	if diff := cmp.Diff([]uint32{312, 500}, r.asked); diff != "" {
		t.Errorf("Slave requests mismatch (-want +got):\n%s", diff)
	}

	// A no-op change leaves the slave alone
	if err := c.SetRate(context.Background(), 1248); err != nil {
		t.Fatal(err)
	}
	if len(r.asked) != 2 {
		t.Errorf("Slave updated on a no-op change: %v", r.asked)
	}
}

func TestSlaveMismatchIsLogged(t *testing.T) {
	f := newFixture(t, testVariant(), nil)
	r := &recorder{limit: 400}
	if err := f.m.RegisterSlaveClock(r, Clst0, 0, cciBuckets); err != nil {
		t.Fatal(err)
	}
	if err := f.clock(t, Clst0).SetRate(context.Background(), 832); err != nil {
		t.Fatalf("A slave that falls short must not fail its master: %v", err)
	}
	if f.logged("slave rec asked for 624 MHz, runs 400 MHz") != 1 {
		t.Errorf("Slave shortfall not logged")
	}
}

func TestSlaveFailureIsAbsorbed(t *testing.T) {
	f := newFixture(t, testVariant(), nil)
	r := &recorder{fail: true}
	if err := f.m.RegisterSlaveClock(r, Clst0, 0, cciBuckets); err != nil {
		t.Fatal(err)
	}
	c := f.clock(t, Clst0)
	if err := c.SetRate(context.Background(), 832); err != nil {
		t.Fatalf("SetRate: %v", err)
	}
	if c.Rate() != 832 || f.logged("slave broken") != 1 {
		t.Errorf("Expected 832 MHz and a logged slave error, got %d MHz", c.Rate())
	}
}

func TestDomainSlave(t *testing.T) {
	v := testVariant()
	v.Slaves = []Slave{{
		Domain: &AXI,
		Master: DDR,
		Relations: []Relation{
			{MinMaster: 0, MaxMaster: 208, SlaveRate: 104},
			{MinMaster: 209, MaxMaster: 624, SlaveRate: 312},
		},
	}}
	f := newFixture(t, v, nil)
	axi := f.clock(t, AXI)
	if axi.Rate() != 208 {
		t.Fatalf("Init moved AXI to %d MHz", axi.Rate())
	}
	if err := f.clock(t, DDR).SetRate(context.Background(), 416); err != nil {
		t.Fatalf("SetRate: %v", err)
	}
	if axi.Rate() != 312 {
		t.Errorf("AXI did not follow DDR, runs %d MHz", axi.Rate())
	}
	if f.m.seq.Depth() != 0 {
		t.Errorf("Sequence lock left at depth %d", f.m.seq.Depth())
	}
}

func TestRegisterSlaveClockChecks(t *testing.T) {
	f := newFixture(t, testVariant(), nil)
	for name, reg := range map[string]func() error{
		"no master": func() error { return f.m.RegisterSlaveClock(&recorder{}, Clst1, 0, nil) },
		"self":      func() error { return f.m.RegisterSlaveClock(f.clock(t, AXI), AXI, 0, nil) },
		"bucket": func() error {
			return f.m.RegisterSlaveClock(&recorder{}, AXI, 0, []Relation{{MinMaster: 300, MaxMaster: 200}})
		},
	} {
		if reg() == nil {
			t.Errorf("%s: registration accepted", name)
		}
	}
}
