// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fc

import (
	"fmt"
	"strings"
)

// Kind is the closed set of clock domain kinds the engine sequences.
type Kind int

const (
	KindCore Kind = iota
	KindDDR
	KindAXI
)

// Domain identifies one sequenced clock. Cluster is only meaningful for
// KindCore.
type Domain struct {
	Kind    Kind
	Cluster int
}

var (
	Clst0 = Domain{Kind: KindCore, Cluster: 0}
	Clst1 = Domain{Kind: KindCore, Cluster: 1}
	DDR   = Domain{Kind: KindDDR}
	AXI   = Domain{Kind: KindAXI}
)

func (d Domain) String() string {
	switch d.Kind {
	case KindCore:
		return fmt.Sprintf("clst%d", d.Cluster)
	case KindDDR:
		return "ddr"
	case KindAXI:
		return "axi"
	}
	return fmt.Sprintf("domain(%d)", int(d.Kind))
}

// ParseDomain is the inverse of Domain.String.
func ParseDomain(s string) (Domain, error) {
	switch strings.ToLower(s) {
	case "clst0":
		return Clst0, nil
	case "clst1":
		return Clst1, nil
	case "ddr":
		return DDR, nil
	case "axi":
		return AXI, nil
	}
	return Domain{}, fmt.Errorf("unknown clock domain %q", s)
}
