// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pxa

import (
	"fmt"
	"io"
)

// Dump prints every known clock register. Note that this does not read
// APMU_DM_CC_AP since reading it contends for the FC lock.
func (p *Pmu) Dump(w io.Writer) {
	for _, a := range Registers() {
		if a == APMU_DM_CC_AP {
			continue
		}
		v := p.read(a)
		fmt.Fprintf(w, " %08x: %-34s %08x%s\n", a, RegisterName(a), v, decode(a, v))
	}
}

// DumpDFC prints the hardware DFC request, status and level table.
func (p *Pmu) DumpDFC(w io.Writer) {
	fmt.Fprintf(w, " DFC_AP:     %08x level %d\n", uint32(p.DFCAP()), p.DFCAP().Level())
	st := p.DFCStatus()
	fmt.Fprintf(w, " DFC_STATUS: %08x %#v\n", uint32(st), st)
	for i := 0; i < DFC_LEVELS; i++ {
		l := p.DFCLevel(i)
		fmt.Fprintf(w, " DFC_LEVEL%d: %08x %#v\n", i, uint32(l), l)
	}
}

func decode(a uintptr, v uint32) string {
	switch a {
	case APMU_CCR, APMU_CCSR:
		return fmt.Sprintf(" (%#v)", CCR(v))
	case APMU_PLLSEL:
		return fmt.Sprintf(" (%#v)", PLLSel(v))
	case APMU_DFC_STATUS:
		return fmt.Sprintf(" (%#v)", DFCStatus(v))
	}
	if a >= APMU_DFC_LEVEL0 && a < DFCLevelAddr(DFC_LEVELS) {
		return fmt.Sprintf(" (%#v)", DFCLevel(v))
	}
	return ""
}
