// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pxa

// Implementations must not cache reads: several registers have read side
// effects.
type memProvider interface {
	MustRead32(uintptr) uint32
	MustWrite32(uintptr, uint32)
	Close()
}

func (p *Pmu) read(a uintptr) uint32 {
	return p.mem.MustRead32(a)
}

func (p *Pmu) write(a uintptr, v uint32) {
	p.mem.MustWrite32(a, v)
}
