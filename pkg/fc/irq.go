// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fc

import (
	"runtime"
	"sync/atomic"
)

// IRQState is the token returned by IRQ.Save.
type IRQState int32

// IRQ opens and closes the short window the FC lock is held in.
type IRQ interface {
	Save() IRQState
	Restore(IRQState)
}

// ThreadIRQ is the userspace stand-in for masking interrupts: it keeps the
// calling goroutine on its OS thread for the window so the scheduler cannot
// migrate it while the CP is locked out.
type ThreadIRQ struct {
	depth int32
}

func (t *ThreadIRQ) Save() IRQState {
	runtime.LockOSThread()
	return IRQState(atomic.AddInt32(&t.depth, 1) - 1)
}

func (t *ThreadIRQ) Restore(s IRQState) {
	atomic.StoreInt32(&t.depth, int32(s))
	runtime.UnlockOSThread()
}

// Depth returns how many windows are currently open.
func (t *ThreadIRQ) Depth() int {
	return int(atomic.LoadInt32(&t.depth))
}
