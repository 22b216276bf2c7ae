// Copyright 2018 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dvfs brings the frequency change engine up from a configuration and
// runs its services.
package dvfs

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/u-root/u-dvfs/config"
	"github.com/u-root/u-dvfs/pkg/fc"
	"github.com/u-root/u-dvfs/pkg/hardware/pxa"
	"github.com/u-root/u-dvfs/pkg/hardware/pxa/sim"
	"github.com/u-root/u-dvfs/pkg/logger"
	"github.com/u-root/u-dvfs/pkg/metric"
	"github.com/u-root/u-dvfs/pkg/network/web"
	"github.com/u-root/u-dvfs/pkg/soc"
)

const shutdownTimeout = 5 * time.Second

// System is a running engine.
type System struct {
	Conf     *config.Config
	Manager  *fc.Manager
	Registry *prometheus.Registry
	Log      *zap.SugaredLogger

	pmu *pxa.Pmu
	soc *sim.SoC
}

// Open configures logging, maps the PMU (or builds a simulated one) and
// initializes every domain of the configured variant. Bad boot parameters
// are logged and skipped.
func Open(ctx context.Context, conf *config.Config, fs afero.Fs) (*System, error) {
	if err := logger.LogContainer.Configure(conf.Log.Level, conf.Log.File); err != nil {
		return nil, err
	}
	log := logger.LogContainer.GetSimpleLogger()
	log.Infof("Welcome to u-dvfs version %s (%s)", conf.Version.Version, conf.Version.GitHash)

	v, err := soc.Lookup(conf.Variant)
	if err != nil {
		return nil, err
	}
	limits, err := conf.Limits(fs)
	if err != nil {
		log.Warnf("Ignoring boot parameters: %v", err)
	}

	s := &System{Conf: conf, Log: log, Registry: prometheus.NewRegistry()}
	switch conf.Memory {
	case "sim":
		s.soc = sim.New()
		bootSim(s.soc, v)
		s.pmu = pxa.OpenWithMemory(s.soc)
	default:
		if s.pmu, err = pxa.Open(); err != nil {
			return nil, fmt.Errorf("mapping the PMU: %w", err)
		}
	}

	s.Registry.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	metric.Counter(s.Registry, metric.MetricOpts{
		Namespace: "dvfs",
		Subsystem: "system",
		Name:      "version",
	}, "version", "git_hash").WithLabelValues(conf.Version.Version, conf.Version.GitHash).Inc()

	s.Manager, err = fc.New(s.pmu, v, fc.Options{
		Logger:     log,
		Registerer: s.Registry,
		Limits:     limits,
	})
	if err == nil {
		err = s.Manager.Init(ctx)
	}
	if err != nil {
		s.pmu.Close()
		return nil, err
	}
	return s, nil
}

// bootSim leaves the simulated PMU the way the boot loader leaves a real one:
// clusters at 624 MHz, DDR at 156 MHz and AXI at 208 MHz.
func bootSim(s *sim.SoC, v fc.Variant) {
	for cl := range v.Core {
		s.BootCore(cl, 0, 0, 1)
	}
	s.BootDDR(0, 3)
	s.BootAXI(0, 1)
}

// Run serves the HTTP surface and, on the simulated PMU, the CP activity
// until ctx is done or one of them fails.
func (s *System) Run(ctx context.Context) error {
	var w *web.WebServer
	if s.Conf.Listen != "" {
		w = web.NewWebserver()
		w.RegisterFC(s.Manager, s.Registry)
		if err := w.SetServer(s.Conf.Listen); err != nil {
			return err
		}
		s.Log.Infof("Serving on %s", w.Listener.Addr())
	}

	g, ctx := errgroup.WithContext(ctx)
	if s.soc != nil {
		g.Go(func() error {
			s.soc.RunCP(ctx, s.Conf.CP.Interval, s.Conf.CP.Hold)
			return nil
		})
	}
	if w != nil {
		g.Go(w.Serve)
		g.Go(func() error {
			<-ctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return w.Shutdown(sctx)
		})
	}
	return g.Wait()
}

func (s *System) Close() {
	s.pmu.Close()
}
