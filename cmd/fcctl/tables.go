// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/u-root/u-dvfs/pkg/soc"
)

// tables prints the operating points a variant declares, before boot
// parameters or divisibility filtering.
func tables(out io.Writer, variant string) error {
	v, err := soc.Lookup(variant)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 8, 1, ' ', 0)
	for cl, t := range v.Core {
		fmt.Fprintf(w, "clst%d\tMHz\tsource\tparent MHz\tpclk div\taclk div\n", cl)
		for _, op := range t {
			fmt.Fprintf(w, "\t%d\t%s\t%d\t%d\t%d\n", op.Rate, op.Parent, op.SourceRate, op.PclkDiv+1, op.AclkDiv+1)
		}
	}
	if len(v.DDR) > 0 {
		mode := "software"
		if v.HWDFC {
			mode = "hwdfc"
		}
		fmt.Fprintf(w, "ddr (%s)\tMHz\tsource\tlevel\tdiv\n", mode)
		for _, op := range v.DDR {
			fmt.Fprintf(w, "\t%d\t%s\t%d\t%d\n", op.Rate, op.Parent, op.Level, op.DclkDiv+1)
		}
	}
	if len(v.AXI) > 0 {
		fmt.Fprintf(w, "axi\tMHz\tsource\tdiv\n")
		for _, op := range v.AXI {
			fmt.Fprintf(w, "\t%d\t%s\t%d\n", op.Rate, op.Parent, op.AclkDiv+1)
		}
	}
	return w.Flush()
}
