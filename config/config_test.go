// Copyright 2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"github.com/u-root/u-dvfs/pkg/fc"
)

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/etc/fcd.yaml", []byte(`
variant: pxa1928
memory: sim
ceilings:
  clst0: 1248
cp:
  interval: 10ms
log:
  level: debug
`), 0o644)

	c, err := Load(fs, "/etc/fcd.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if c.Variant != "pxa1928" || c.Memory != "sim" || c.Log.Level != "debug" {
		t.Errorf("Fields not loaded: %+v", c)
	}
	if c.CP.Interval != 10*time.Millisecond || c.CP.Hold != DefaultConfig.CP.Hold {
		t.Errorf("CP timing %v/%v", c.CP.Interval, c.CP.Hold)
	}
	if c.Listen != DefaultConfig.Listen {
		t.Errorf("Default listen address lost: %q", c.Listen)
	}
	if len(DefaultConfig.Ceilings) != 0 {
		t.Errorf("Load modified DefaultConfig: %v", DefaultConfig.Ceilings)
	}
}

func TestLoadErrors(t *testing.T) {
	for name, content := range map[string]string{
		"unknown key": "variant: helan3\nturbo: true\n",
		"memory":      "memory: flash\n",
		"no variant":  "variant: \"\"\n",
		"cp":          "memory: sim\ncp:\n  interval: 0s\n",
	} {
		fs := afero.NewMemMapFs()
		afero.WriteFile(fs, "c.yaml", []byte(content), 0o644)
		if _, err := Load(fs, "c.yaml"); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
	if _, err := Load(afero.NewMemMapFs(), "missing.yaml"); err == nil {
		t.Errorf("Missing file: expected an error")
	}
}

func TestParseBootParams(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/proc/cmdline",
		[]byte("console=ttyS0,115200 core_max=1248 ddr_nopp=312,416 clst1_nopp=624 axi_max=208 quiet\n"), 0o444)

	l, err := ParseBootParams(fs, "/proc/cmdline")
	if err != nil {
		t.Fatal(err)
	}
	want := fc.Limits{
		Max: map[fc.Domain]uint32{fc.Clst0: 1248, fc.Clst1: 1248, fc.AXI: 208},
		Disabled: map[fc.Domain][]uint32{
			fc.DDR:   {312, 416},
			fc.Clst1: {624},
		},
	}
	if diff := cmp.Diff(want, l); diff != "" {
		t.Errorf("Limits mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBootParamsErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "cmdline", []byte("ddr_max=fast core_nopp=312,x axi_max=104,208 clst0_max=832"), 0o444)
	l, err := ParseBootParams(fs, "cmdline")
	if n := len(multierr.Errors(err)); n != 3 {
		t.Errorf("Expected 3 errors, got %d: %v", n, err)
	}
	if l.Max[fc.Clst0] != 832 {
		t.Errorf("Valid parameter dropped: %v", l.Max)
	}
}

func TestLimits(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/proc/cmdline", []byte("core_max=1526 ddr_max=416"), 0o444)
	c := DefaultConfig.clone()
	c.Ceilings = map[string]uint32{"clst0": 1248, "ddr": 624}

	l, err := c.Limits(fs)
	if err != nil {
		t.Fatal(err)
	}
	want := map[fc.Domain]uint32{fc.Clst0: 1248, fc.Clst1: 1526, fc.DDR: 416}
	if diff := cmp.Diff(want, l.Max); diff != "" {
		t.Errorf("Ceilings mismatch (-want +got):\n%s", diff)
	}

	c.Ceilings = map[string]uint32{"gpu": 500}
	if _, err := c.Limits(fs); err == nil {
		t.Errorf("Unknown domain accepted")
	}
}
