// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clk

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPLLRetuneOnlyWhenIdle(t *testing.T) {
	ctx := context.Background()
	p := NewPLL("pll2", 832, 832, 1248)
	if err := p.PrepareEnable(); err != nil {
		t.Fatal(err)
	}
	if err := p.SetRate(ctx, 1248); !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy, got %v", err)
	}
	if err := p.SetRate(ctx, 832); err != nil {
		t.Errorf("Setting the current rate should always work: %v", err)
	}
	p.DisableUnprepare()
	if err := p.SetRate(ctx, 1248); err != nil {
		t.Fatalf("SetRate failed: %v", err)
	}
	if p.Rate() != 1248 {
		t.Errorf("Expected 1248, got %d", p.Rate())
	}
	if err := p.SetRate(ctx, 1000); err == nil {
		t.Errorf("Unsupported rate accepted")
	}
}

func TestFixed(t *testing.T) {
	f := NewFixed("pll1_624", 624)
	if err := f.SetRate(context.Background(), 624); err != nil {
		t.Errorf("SetRate to own rate failed: %v", err)
	}
	if err := f.SetRate(context.Background(), 312); !errors.Is(err, ErrFixed) {
		t.Errorf("Expected ErrFixed, got %v", err)
	}
	f.DisableUnprepare()
	if f.EnableCount() != 0 {
		t.Errorf("Enable count went negative")
	}
}

func TestDivider(t *testing.T) {
	tests := []struct {
		ask  uint32
		want uint32
	}{
		{1248, 1248},
		{624, 624},
		{500, 416},
		{100, 96},
	}
	d := NewDivider("cci", NewFixed("pll", 1248), 16)
	for _, tt := range tests {
		if err := d.SetRate(context.Background(), tt.ask); err != nil {
			t.Fatalf("SetRate(%d): %v", tt.ask, err)
		}
		if got := d.Rate(); got != tt.want {
			t.Errorf("SetRate(%d): expected %d, got %d", tt.ask, tt.want, got)
		}
	}
	if err := d.SetRate(context.Background(), 10); err == nil {
		t.Errorf("Expected error for a rate below the divider range")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	for _, c := range []Clock{NewFixed("b", 1), NewFixed("a", 2)} {
		if err := r.Register(c); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.Register(NewFixed("a", 3)); err == nil {
		t.Errorf("Duplicate registration accepted")
	}
	if diff := cmp.Diff([]string{"a", "b"}, r.Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}
	if _, err := r.Get("c"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
