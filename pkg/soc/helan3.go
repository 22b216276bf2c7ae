// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package soc

import (
	"github.com/u-root/u-dvfs/pkg/clk"
	"github.com/u-root/u-dvfs/pkg/fc"
)

// Helan3 is the PXA1936: two clusters, DDR sequenced by the hardware DFC and
// a CCI clock that follows cluster 0.
func Helan3() fc.Variant {
	parents := append(pll1(),
		clk.NewPLL("pll2", 1664, 1664, 1526),
		clk.NewPLL("pll3", 1526, 1526, 1803),
		clk.NewPLL("pll4", 1056, 1056),
	)
	cci := clk.NewDivider("cci", parents[2], 8)
	return fc.Variant{
		Name: "helan3",
		Core: [][]fc.CoreOP{
			{
				core(312, 0, "pll1_624", 624, 1, 1),
				core(416, 1, "pll1_1248", 1248, 2, 1),
				core(624, 0, "pll1_624", 624, 0, 1),
				core(832, 2, "pll2", 1664, 1, 1),
				core(1248, 1, "pll1_1248", 1248, 0, 2),
				core(1526, 2, "pll2", 1526, 0, 3),
			},
			{
				core(312, 0, "pll1_624", 624, 1, 1),
				core(416, 1, "pll1_1248", 1248, 2, 1),
				core(624, 0, "pll1_624", 624, 0, 1),
				core(1248, 1, "pll1_1248", 1248, 0, 2),
				core(1526, 3, "pll3", 1526, 0, 3),
				core(1803, 3, "pll3", 1803, 0, 3),
			},
		},
		CoreBridge:     []uint32{624, 624},
		CheckDivisible: true,
		DDR: []fc.DDROP{
			ddr(156, 0, "pll1_624", 624, 3, 0),
			ddr(312, 0, "pll1_624", 624, 1, 1),
			ddr(416, 1, "pll1_1248", 1248, 2, 2),
			ddr(528, 2, "pll4", 0, 1, 3),
			ddr(624, 0, "pll1_624", 624, 0, 4),
		},
		HWDFC:    true,
		DDRVolts: []fc.VoltLevel{{MaxRate: 312, Level: 0}, {MaxRate: 416, Level: 1}, {MaxRate: 528, Level: 2}, {MaxRate: 624, Level: 3}},
		AXI:      axiTable(),
		Parents:  append(parents, cci),
		Slaves: []fc.Slave{
			{
				Clock:   cci,
				Master:  fc.Clst0,
				MaxRate: 624,
				Relations: []fc.Relation{
					{MinMaster: 0, MaxMaster: 624, SlaveRate: 312},
					{MinMaster: 625, MaxMaster: 1248, SlaveRate: 416},
					{MinMaster: 1249, MaxMaster: 2000, SlaveRate: 624},
				},
			},
			{Domain: domain(fc.AXI), Master: fc.DDR, Relations: axiFollowsDDR},
		},
	}
}
