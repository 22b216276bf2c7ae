// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Library for accessing the clock control registers of PXA/Helan series SoCs
//
// The application processor (AP) shares the power management unit with the
// communications processor (CP). Both sides program the same source select,
// divider and trigger registers, so everything in here races with the CP
// unless the caller holds the hardware FC lock (see ContendFCLock).
//
// Writes to the trigger bits change the frequency of running logic. A bad
// divider value on the core clock will hang the AP without any message.
// Be warned.
//
// Call pxa.Open() and Pmu.Close() as the first and last thing before and after
// you want to run any library commands, or pxa.OpenWithMemory() to run against
// another memory provider such as the simulator in pxa/sim.
package pxa

type Pmu struct {
	mem memProvider
}

func Open() (*Pmu, error) {
	mem, err := openHostMemory()
	if err != nil {
		return nil, err
	}
	return &Pmu{mem}, nil
}

func OpenWithMemory(mem memProvider) *Pmu {
	return &Pmu{mem}
}

func (p *Pmu) Close() {
	p.mem.Close()
}
