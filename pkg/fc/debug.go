// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fc

import (
	"fmt"
	"io"
)

// DumpDFC writes the hardware DFC status and level table along with the
// operating point each level belongs to.
func (m *Manager) DumpDFC(w io.Writer) {
	if !m.hwdfc {
		fmt.Fprintf(w, "%s: DDR is software sequenced\n", m.variant)
	}
	m.pmu.DumpDFC(w)
	c, ok := m.domains[DDR]
	if !ok {
		return
	}
	for _, op := range c.table {
		o := op.(*DDROP)
		fmt.Fprintf(w, " level %d: %4d MHz %-10s div %d mc %d volt %d\n",
			o.Level, o.Rate, o.Parent, o.DclkDiv, o.MCTable, o.Volt)
	}
}

// DumpRegisters writes every clock register the engine knows about.
func (m *Manager) DumpRegisters(w io.Writer) {
	m.pmu.Dump(w)
}

// DumpState writes the operating point each domain is believed to run at.
func (m *Manager) DumpState(w io.Writer) {
	for _, d := range m.order {
		c := m.domains[d]
		fmt.Fprintf(w, "%-6s %4d MHz from %s, table %v\n", d, c.Rate(), c.Parent(), c.Rates())
	}
}
