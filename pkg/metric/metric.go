// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metric

import (
	"errors"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricOpts contains naming pieces of the exposed metric
type MetricOpts struct {
	Namespace string
	Subsystem string
	Name      string
	Help      string
}

// StartMetrics adds the metrics handler for g to a http.ServeMux
func StartMetrics(mux *http.ServeMux, g prometheus.Gatherer) {
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}

// Counter creates and registers a counter vector, or returns the one
// already registered under the same name
func Counter(reg prometheus.Registerer, opts MetricOpts, labels ...string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: opts.Namespace,
		Subsystem: opts.Subsystem,
		Name:      opts.Name,
		Help:      help(opts),
	}, labels)
	return register(reg, c).(*prometheus.CounterVec)
}

// Gauge creates and registers a gauge vector, or returns the one already
// registered under the same name
func Gauge(reg prometheus.Registerer, opts MetricOpts, labels ...string) *prometheus.GaugeVec {
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: opts.Namespace,
		Subsystem: opts.Subsystem,
		Name:      opts.Name,
		Help:      help(opts),
	}, labels)
	return register(reg, g).(*prometheus.GaugeVec)
}

// Histogram creates and registers a histogram vector, or returns the one
// already registered under the same name
func Histogram(reg prometheus.Registerer, opts MetricOpts, buckets []float64, labels ...string) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: opts.Namespace,
		Subsystem: opts.Subsystem,
		Name:      opts.Name,
		Help:      help(opts),
		Buckets:   buckets,
	}, labels)
	return register(reg, h).(*prometheus.HistogramVec)
}

func register(reg prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}

func help(opts MetricOpts) string {
	if opts.Help != "" {
		return opts.Help
	}
	return FullName(opts)
}

// FullName returns the exposed name of a metric
func FullName(opts MetricOpts) string {
	if opts.Name == "" {
		return ""
	}
	switch {
	case opts.Namespace != "" && opts.Subsystem != "":
		return strings.Join([]string{opts.Namespace, opts.Subsystem, opts.Name}, "_")
	case opts.Namespace != "":
		return strings.Join([]string{opts.Namespace, opts.Name}, "_")
	case opts.Subsystem != "":
		return strings.Join([]string{opts.Subsystem, opts.Name}, "_")
	}
	return opts.Name
}
