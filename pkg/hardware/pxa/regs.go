// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pxa

import (
	"fmt"
	"sort"
)

const (
	APMU_BASE uintptr = 0xd4282800
	MPMU_BASE uintptr = 0xd4050000
	CIU_BASE  uintptr = 0xd4282c00

	APMU_CP_CCR     = APMU_BASE + 0x000
	APMU_CCR        = APMU_BASE + 0x004
	APMU_CCSR       = APMU_BASE + 0x00c
	APMU_ISR        = APMU_BASE + 0x0a0
	APMU_PLLSEL     = APMU_BASE + 0x0c4
	APMU_DM_CC_AP   = APMU_BASE + 0x0e8
	APMU_DFC_AP     = APMU_BASE + 0x180
	APMU_DFC_STATUS = APMU_BASE + 0x188
	APMU_DFC_LEVEL0 = APMU_BASE + 0x190

	MPMU_FCAP   = MPMU_BASE + 0x054
	MPMU_FCDCLK = MPMU_BASE + 0x05c
	MPMU_FCACLK = MPMU_BASE + 0x060

	CIU_CLST0_L1_XTC = CIU_BASE + 0x0a8
	CIU_CLST0_L2_XTC = CIU_BASE + 0x0ac
	CIU_CLST1_L1_XTC = CIU_BASE + 0x0b0
	CIU_CLST1_L2_XTC = CIU_BASE + 0x0b4
	CIU_AXI_XTC      = CIU_BASE + 0x0c8

	// Number of entries in the hardware DFC level table
	DFC_LEVELS = 8

	// Number of core clusters the PMU has controls for
	CLUSTERS = 2
)

var (
	regNames = map[uintptr]string{
		APMU_CP_CCR:      "CP Clock Control Register",
		APMU_CCR:         "AP Clock Control Register",
		APMU_CCSR:        "AP Clock Control Status Register",
		APMU_ISR:         "Interrupt Status Register",
		APMU_PLLSEL:      "PLL Select Status Register",
		APMU_DM_CC_AP:    "AP Dummy Clock Control Register",
		APMU_DFC_AP:      "DFC AP Request Register",
		APMU_DFC_STATUS:  "DFC Status Register",
		MPMU_FCAP:        "AP Core Clock Source Select",
		MPMU_FCDCLK:      "DDR Clock Source Select",
		MPMU_FCACLK:      "AXI Clock Source Select",
		CIU_CLST0_L1_XTC: "Cluster 0 L1 RTC/WTC",
		CIU_CLST0_L2_XTC: "Cluster 0 L2 RTC/WTC",
		CIU_CLST1_L1_XTC: "Cluster 1 L1 RTC/WTC",
		CIU_CLST1_L2_XTC: "Cluster 1 L2 RTC/WTC",
		CIU_AXI_XTC:      "AXI SRAM RTC/WTC",
	}
)

func init() {
	for i := 0; i < DFC_LEVELS; i++ {
		regNames[DFCLevelAddr(i)] = fmt.Sprintf("DFC Level %d Register", i)
	}
}

// DFCLevelAddr is the address of the hardware DFC table entry for level.
func DFCLevelAddr(level int) uintptr {
	return APMU_DFC_LEVEL0 + uintptr(level)*4
}

// L1XTCAddr and L2XTCAddr return the cache timing registers of a cluster.
func L1XTCAddr(cluster int) uintptr {
	if cluster == 1 {
		return CIU_CLST1_L1_XTC
	}
	return CIU_CLST0_L1_XTC
}

func L2XTCAddr(cluster int) uintptr {
	if cluster == 1 {
		return CIU_CLST1_L2_XTC
	}
	return CIU_CLST0_L2_XTC
}

// RegisterName returns a human readable name for a register address, or ""
// if the address is not a known clock register.
func RegisterName(a uintptr) string {
	return regNames[a]
}

// Registers returns all known register addresses in ascending order.
func Registers() []uintptr {
	r := make([]uintptr, 0, len(regNames))
	for a := range regNames {
		r = append(r, a)
	}
	sort.Slice(r, func(i, j int) bool { return r[i] < r[j] })
	return r
}
