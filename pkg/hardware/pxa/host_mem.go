// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pxa

import (
	"fmt"
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

type hostMem struct {
	mf    *os.File
	m     sync.Mutex
	pages map[uintptr][]byte
}

func openHostMemory() (*hostMem, error) {
	f, err := os.OpenFile("/dev/mem", os.O_RDWR|os.O_SYNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("open /dev/mem: %v", err)
	}
	return &hostMem{mf: f, pages: make(map[uintptr][]byte)}, nil
}

// The PMU register blocks are touched on every frequency change, so pages
// stay mapped until Close instead of being mapped per access.
func (m *hostMem) word(address uintptr) *uint32 {
	ps := uintptr(unix.Getpagesize())
	page := address &^ (ps - 1)
	offset := address - page

	m.m.Lock()
	defer m.m.Unlock()
	mem, ok := m.pages[page]
	if !ok {
		var err error
		mem, err = unix.Mmap(int(m.mf.Fd()), int64(page), int(ps), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
		if err != nil {
			panic(fmt.Sprintf("mmap %#08x: %v", page, err))
		}
		m.pages[page] = mem
	}
	return (*uint32)(unsafe.Pointer(&mem[offset]))
}

func (m *hostMem) MustRead32(address uintptr) uint32 {
	return *m.word(address)
}

func (m *hostMem) MustWrite32(address uintptr, data uint32) {
	*m.word(address) = data
}

func (m *hostMem) Close() {
	m.m.Lock()
	defer m.m.Unlock()
	for page, mem := range m.pages {
		unix.Munmap(mem)
		delete(m.pages, page)
	}
	m.mf.Close()
}
