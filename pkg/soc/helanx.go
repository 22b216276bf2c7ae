// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package soc

import (
	"github.com/u-root/u-dvfs/pkg/clk"
	"github.com/u-root/u-dvfs/pkg/fc"
)

// HelanX is the PXA1U88. It has one cluster and sequences DDR in software.
func HelanX() fc.Variant {
	return fc.Variant{
		Name: "helanx",
		Core: [][]fc.CoreOP{{
			core(312, 0, "pll1_624", 624, 1, 1),
			core(416, 1, "pll1_1248", 1248, 2, 1),
			core(624, 0, "pll1_624", 624, 0, 1),
			core(1057, 2, "pll2", 1057, 0, 2),
			core(1248, 1, "pll1_1248", 1248, 0, 2),
			core(1526, 2, "pll2", 1526, 0, 3),
		}},
		CoreBridge: []uint32{624},
		DDR: []fc.DDROP{
			ddr(156, 0, "pll1_624", 624, 3, 0),
			ddr(312, 0, "pll1_624", 624, 1, 1),
			ddr(416, 1, "pll1_1248", 1248, 2, 2),
			ddr(533, 2, "pll4", 1066, 1, 3),
		},
		AXI: axiTable(),
		Parents: append(pll1(),
			clk.NewPLL("pll2", 1057, 1057, 1526),
			clk.NewPLL("pll4", 1066, 1066),
		),
		Slaves: []fc.Slave{
			{Domain: domain(fc.AXI), Master: fc.DDR, Relations: axiFollowsDDR},
		},
	}
}
