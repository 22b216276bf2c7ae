// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fc sequences frequency changes of the CPU clusters, DDR and AXI on
// PXA/Helan SoCs.
//
// The PMU is shared with the CP. Every change that touches registers the CP
// may also be programming is made while holding the AP/CP FC lock, a hardware
// arbiter taken by reading APMU_DM_CC_AP. Changes requested by different
// callers in this process are serialized by a separate re-entrant sequence
// lock, so a change and the changes it implies (bridge hops, slave clocks)
// are never interleaved with another caller's.
package fc

import (
	"context"
	"fmt"
	"sync"

	"github.com/jmhodges/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/u-root/u-dvfs/pkg/clk"
	"github.com/u-root/u-dvfs/pkg/hardware/pxa"
	"github.com/u-root/u-dvfs/pkg/logger"
)

// Variant is the static description of a SoC: its operating point tables,
// parent clocks and the way its DDR is sequenced.
type Variant struct {
	Name string
	// Core holds one table per cluster.
	Core [][]CoreOP
	// CoreBridge is the bridge rate per cluster. Zero or a missing entry
	// means the first entry of the table.
	CoreBridge []uint32
	// CheckDivisible drops core operating points whose rate is not exactly
	// the source rate divided by the pclk divider.
	CheckDivisible bool

	DDR       []DDROP
	DDRBridge uint32
	HWDFC     bool
	DDRVolts  []VoltLevel

	AXI       []AXIOP
	AXIBridge uint32

	Parents []clk.Clock
	Slaves  []Slave
}

// Slave is a clock that follows a master domain. Exactly one of Clock and
// Domain is set; Domain makes another sequenced domain the slave.
type Slave struct {
	Clock     clk.Clock
	Domain    *Domain
	Master    Domain
	MaxRate   uint32
	Relations []Relation
}

// Limits are the boot time restrictions on the tables.
type Limits struct {
	Max      map[Domain]uint32
	Disabled map[Domain][]uint32
}

type Options struct {
	Logger     *zap.SugaredLogger
	Registerer prometheus.Registerer
	Clock      clock.Clock
	IRQ        IRQ
	Limits     Limits
}

// Manager owns the PMU and all per-domain state. There is one per process.
type Manager struct {
	pmu     *pxa.Pmu
	variant string
	log     *zap.SugaredLogger
	clk     clock.Clock
	irq     IRQ
	metrics *metrics
	lock    *hwLock
	seq     *SeqLock
	parents *clk.Registry
	hwdfc   bool

	order   []Domain
	domains map[Domain]*DomainClock
	boots   map[Domain]kindOps
	pending []Slave

	slaveMu sync.RWMutex
	slaves  map[Domain][]*slaveClock
}

// New builds the tables of v. Nothing is written to the PMU until Init.
func New(pmu *pxa.Pmu, v Variant, o Options) (*Manager, error) {
	if o.Logger == nil {
		o.Logger = logger.LogContainer.GetSimpleLogger()
	}
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	if o.IRQ == nil {
		o.IRQ = &ThreadIRQ{}
	}
	m := &Manager{
		pmu:     pmu,
		variant: v.Name,
		log:     o.Logger,
		clk:     o.Clock,
		irq:     o.IRQ,
		metrics: newMetrics(o.Registerer),
		seq:     NewSeqLock(),
		parents: clk.NewRegistry(),
		hwdfc:   v.HWDFC,
		domains: make(map[Domain]*DomainClock),
		boots:   make(map[Domain]kindOps),
		pending: v.Slaves,
		slaves:  make(map[Domain][]*slaveClock),
	}
	m.lock = &hwLock{pmu: pmu, log: m.log, clk: m.clk, metrics: m.metrics}

	var errs error
	for _, p := range v.Parents {
		errs = multierr.Append(errs, m.parents.Register(p))
	}
	if errs != nil {
		return nil, errs
	}

	if len(v.Core) > pxa.CLUSTERS {
		return nil, fmt.Errorf("%s: %d clusters, hardware has %d", v.Name, len(v.Core), pxa.CLUSTERS)
	}
	for cl, t := range v.Core {
		ops := make([]OP, len(t))
		for i := range t {
			op := t[i]
			ops[i] = &op
		}
		var bridge uint32
		if cl < len(v.CoreBridge) {
			bridge = v.CoreBridge[cl]
		}
		d := Domain{Kind: KindCore, Cluster: cl}
		k := coreOps{p: pmu, cluster: cl}
		errs = multierr.Append(errs, m.addDomain(d, ops, bridge, k, tableRules{checkDivisible: v.CheckDivisible}, o.Limits))
	}
	if len(v.DDR) > 0 {
		ops := make([]OP, len(v.DDR))
		for i := range v.DDR {
			op := v.DDR[i]
			ops[i] = &op
		}
		errs = multierr.Append(errs, m.addDomain(DDR, ops, v.DDRBridge, ddrOps{p: pmu}, tableRules{volts: v.DDRVolts}, o.Limits))
	}
	if len(v.AXI) > 0 {
		ops := make([]OP, len(v.AXI))
		for i := range v.AXI {
			op := v.AXI[i]
			ops[i] = &op
		}
		errs = multierr.Append(errs, m.addDomain(AXI, ops, v.AXIBridge, axiOps{p: pmu}, tableRules{}, o.Limits))
	}
	if errs != nil {
		return nil, errs
	}
	return m, nil
}

func (m *Manager) addDomain(d Domain, ops []OP, bridge uint32, k kindOps, r tableRules, l Limits) error {
	r.ceiling = l.Max[d]
	r.disabled = l.Disabled[d]
	table, err := buildTable(d, ops, r, m.parents, m.log)
	if err != nil {
		return err
	}
	c := &DomainClock{m: m, dom: d, table: table, bridge: table[0]}
	if bridge != 0 {
		if op, i := RateToEntry(table, bridge); op.point().Rate == bridge {
			c.bridge = table[i]
		} else {
			m.log.Warnf("%s: bridge %d MHz is not in the table, using %d MHz", d, bridge, table[0].point().Rate)
		}
	}
	if d.Kind == KindDDR && m.hwdfc {
		c.seq = &dfcSeq{c: c, k: k.(ddrOps)}
	} else {
		c.seq = &swSeq{c: c, k: k}
	}
	m.order = append(m.order, d)
	m.domains[d] = c
	m.boots[d] = k
	return nil
}

// Init finds the operating point each domain booted at, brings the HWDFC
// level table up and registers the variant's slave clocks. A domain whose
// boot state matches no operating point is assumed to run at the closest one.
// Boot problems are logged; only slave registration fails Init.
func (m *Manager) Init(ctx context.Context) error {
	ctx, err := m.seq.Lock(ctx)
	if err != nil {
		return err
	}
	defer m.seq.Unlock(ctx)

	var errs error
	for _, d := range m.order {
		c := m.domains[d]
		c.boot(ctx, m.boots[d])
		m.log.Infof("%s: running %d MHz from %s", d, c.Rate(), c.Parent())
	}
	for _, s := range m.pending {
		sc := s.Clock
		if s.Domain != nil {
			dc, ok := m.domains[*s.Domain]
			if !ok {
				continue
			}
			sc = dc
		}
		errs = multierr.Append(errs, m.RegisterSlaveClock(sc, s.Master, s.MaxRate, s.Relations))
	}
	m.pending = nil
	return errs
}

// Variant returns the name of the SoC variant.
func (m *Manager) Variant() string { return m.variant }

// HWDFC reports whether DDR is sequenced by the hardware DFC.
func (m *Manager) HWDFC() bool { return m.hwdfc }

// Clock returns the clock of domain d.
func (m *Manager) Clock(d Domain) (*DomainClock, error) {
	c, ok := m.domains[d]
	if !ok {
		return nil, fmt.Errorf("%s: no such domain on %s", d, m.variant)
	}
	return c, nil
}

// Domains returns the domains of the variant: clusters, then DDR, then AXI.
func (m *Manager) Domains() []Domain {
	return append([]Domain(nil), m.order...)
}

// Parents returns the parent clock registry.
func (m *Manager) Parents() *clk.Registry { return m.parents }

// AcquireFCMutex holds off every frequency change until ReleaseFCMutex is
// called with the returned context. It is meant for code resetting the CP.
func (m *Manager) AcquireFCMutex(ctx context.Context) (context.Context, error) {
	return m.seq.Lock(ctx)
}

func (m *Manager) ReleaseFCMutex(ctx context.Context) {
	m.seq.Unlock(ctx)
}

// parent returns a parent clock. Table construction has checked they exist.
func (m *Manager) parent(name string) clk.Clock {
	p, err := m.parents.Get(name)
	if err != nil {
		panic(err)
	}
	return p
}
