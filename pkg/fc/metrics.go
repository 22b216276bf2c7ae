// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fc

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/u-root/u-dvfs/pkg/metric"
)

const (
	namespace = "dvfs"
	subsystem = "fc"
)

type metrics struct {
	transitions        *prometheus.CounterVec
	lockTimeouts       prometheus.Counter
	completionTimeouts *prometheus.CounterVec
	unmatchedReleases  prometheus.Counter
	pollIterations     *prometheus.HistogramVec
	rate               *prometheus.GaugeVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	opts := func(name, help string) metric.MetricOpts {
		return metric.MetricOpts{Namespace: namespace, Subsystem: subsystem, Name: name, Help: help}
	}
	return &metrics{
		transitions: metric.Counter(reg,
			opts("transitions_total", "Set rate requests by domain and result."), "domain", "result"),
		lockTimeouts: metric.Counter(reg,
			opts("lock_timeouts_total", "Failed attempts to take the AP/CP FC lock.")).WithLabelValues(),
		completionTimeouts: metric.Counter(reg,
			opts("completion_timeouts_total", "Frequency changes whose done flag never showed up."), "domain"),
		unmatchedReleases: metric.Counter(reg,
			opts("unmatched_lock_releases_total", "FC lock releases without a matching acquire.")).WithLabelValues(),
		pollIterations: metric.Histogram(reg,
			opts("poll_iterations", "Iterations spent in bounded poll loops."),
			prometheus.ExponentialBuckets(1, 4, 10), "loop"),
		rate: metric.Gauge(reg,
			opts("rate_mhz", "Rate of the operating point believed active."), "domain"),
	}
}

func (m *metrics) transition(d Domain, err error) {
	m.transitions.WithLabelValues(d.String(), result(err)).Inc()
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrLockTimeout):
		return "lock_timeout"
	case errors.Is(err, ErrCompletionTimeout):
		return "completion_timeout"
	case errors.Is(err, ErrVerificationMismatch):
		return "mismatch"
	}
	return "error"
}
