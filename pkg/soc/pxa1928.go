// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package soc

import (
	"github.com/u-root/u-dvfs/pkg/clk"
	"github.com/u-root/u-dvfs/pkg/fc"
)

func PXA1928() fc.Variant {
	return fc.Variant{
		Name: "pxa1928",
		Core: [][]fc.CoreOP{{
			core(312, 0, "pll1_624", 624, 1, 1),
			core(416, 1, "pll1_1248", 1248, 2, 1),
			core(624, 0, "pll1_624", 624, 0, 1),
			core(832, 2, "pll2", 1664, 1, 1),
			core(1248, 1, "pll1_1248", 1248, 0, 2),
			core(1664, 2, "pll2", 1664, 0, 3),
		}},
		CoreBridge:     []uint32{624},
		CheckDivisible: true,
		DDR: []fc.DDROP{
			ddr(156, 0, "pll1_624", 624, 3, 0),
			ddr(312, 0, "pll1_624", 624, 1, 1),
			ddr(416, 1, "pll1_1248", 1248, 2, 2),
			ddr(531, 2, "pll4", 0, 2, 3),
			ddr(624, 0, "pll1_624", 624, 0, 4),
			ddr(797, 2, "pll4", 0, 1, 5),
		},
		HWDFC:    true,
		DDRVolts: []fc.VoltLevel{{MaxRate: 416, Level: 0}, {MaxRate: 624, Level: 1}, {MaxRate: 797, Level: 2}},
		AXI:      axiTable(),
		Parents: append(pll1(),
			clk.NewPLL("pll2", 1664, 1664),
			clk.NewPLL("pll4", 1594, 1594),
		),
	}
}
