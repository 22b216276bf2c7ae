// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"github.com/u-root/u-dvfs/pkg/fc"
)

// drivers maps boot parameter prefixes to the domains they restrict.
var drivers = map[string][]fc.Domain{
	"core":  {fc.Clst0, fc.Clst1},
	"clst0": {fc.Clst0},
	"clst1": {fc.Clst1},
	"ddr":   {fc.DDR},
	"axi":   {fc.AXI},
}

// ParseBootParams reads a kernel command line and collects the
// <driver>_max=<MHz> ceilings and <driver>_nopp=<MHz>[,<MHz>...] disabled
// points. Other parameters are ignored. Every malformed value is reported.
func ParseBootParams(fs afero.Fs, path string) (fc.Limits, error) {
	l := fc.Limits{
		Max:      make(map[fc.Domain]uint32),
		Disabled: make(map[fc.Domain][]uint32),
	}
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return l, err
	}
	var errs error
	for _, p := range strings.Fields(string(b)) {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			continue
		}
		drv, opt, ok := strings.Cut(k, "_")
		doms, known := drivers[drv]
		if !ok || !known || (opt != "max" && opt != "nopp") {
			continue
		}
		rates, err := parseRates(v)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", k, err))
			continue
		}
		for _, d := range doms {
			if opt == "nopp" {
				l.Disabled[d] = append(l.Disabled[d], rates...)
				continue
			}
			if len(rates) != 1 {
				errs = multierr.Append(errs, fmt.Errorf("%s: want one rate, got %d", k, len(rates)))
				break
			}
			l.Max[d] = rates[0]
		}
	}
	return l, errs
}

func parseRates(s string) ([]uint32, error) {
	var r []uint32
	for _, f := range strings.Split(s, ",") {
		v, err := strconv.ParseUint(f, 10, 32)
		if err != nil {
			return nil, err
		}
		r = append(r, uint32(v))
	}
	return r, nil
}

// Limits merges the configured ceilings with the boot parameters in
// c.Cmdline. The lower of two ceilings wins. An unreadable command line
// leaves only the configured ceilings.
func (c *Config) Limits(fs afero.Fs) (fc.Limits, error) {
	l, err := ParseBootParams(fs, c.Cmdline)
	for name, mhz := range c.Ceilings {
		d, perr := fc.ParseDomain(name)
		if perr != nil {
			err = multierr.Append(err, fmt.Errorf("ceilings: %w", perr))
			continue
		}
		if cur, ok := l.Max[d]; !ok || mhz < cur {
			l.Max[d] = mhz
		}
	}
	return l, err
}
