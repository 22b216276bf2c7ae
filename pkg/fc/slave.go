// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fc

import (
	"context"
	"fmt"

	"github.com/u-root/u-dvfs/pkg/clk"
)

// Relation maps master rates in [MinMaster, MaxMaster] to a slave rate.
type Relation struct {
	MinMaster uint32
	MaxMaster uint32
	SlaveRate uint32
}

type slaveClock struct {
	clk clk.Clock
	max uint32
	rel []Relation
}

// RegisterSlaveClock makes slave follow master: after every successful change
// of master, slave is set to the rate of the relation bucket the new master
// rate falls in, clamped to maxRate. A zero maxRate does not clamp.
func (m *Manager) RegisterSlaveClock(slave clk.Clock, master Domain, maxRate uint32, rel []Relation) error {
	if _, ok := m.domains[master]; !ok {
		return fmt.Errorf("slave %s: no master domain %s", slave.Name(), master)
	}
	if c, ok := slave.(*DomainClock); ok && c.dom == master {
		return fmt.Errorf("slave %s: a domain cannot follow itself", slave.Name())
	}
	for _, r := range rel {
		if r.MinMaster > r.MaxMaster {
			return fmt.Errorf("slave %s: empty bucket %d-%d MHz", slave.Name(), r.MinMaster, r.MaxMaster)
		}
	}
	m.slaveMu.Lock()
	defer m.slaveMu.Unlock()
	m.slaves[master] = append(m.slaves[master], &slaveClock{
		clk: slave,
		max: maxRate,
		rel: append([]Relation(nil), rel...),
	})
	return nil
}

// coordinate updates the slaves of master after it changed to mhz. Slave
// failures are logged and never fail the master.
func (m *Manager) coordinate(ctx context.Context, master Domain, mhz uint32) {
	m.slaveMu.RLock()
	slaves := append([]*slaveClock(nil), m.slaves[master]...)
	m.slaveMu.RUnlock()

	for _, s := range slaves {
		want, ok := s.target(mhz)
		if !ok {
			m.log.Debugf("%s: no %s bucket for %d MHz", master, s.clk.Name(), mhz)
			continue
		}
		if err := s.clk.SetRate(ctx, want); err != nil {
			m.log.Errorf("%s: setting slave %s to %d MHz: %v", master, s.clk.Name(), want, err)
			continue
		}
		if got := s.clk.Rate(); got != want {
			m.log.Warnf("%s: slave %s asked for %d MHz, runs %d MHz", master, s.clk.Name(), want, got)
		}
	}
}

func (s *slaveClock) target(mhz uint32) (uint32, bool) {
	for _, r := range s.rel {
		if mhz < r.MinMaster || mhz > r.MaxMaster {
			continue
		}
		if s.max != 0 && r.SlaveRate > s.max {
			return s.max, true
		}
		return r.SlaveRate, true
	}
	return 0, false
}
