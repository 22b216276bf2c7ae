// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/u-root/u-dvfs/pkg/fc"
	"github.com/u-root/u-dvfs/pkg/metric"
)

// RegisterFC adds the frequency change endpoints to the mux:
//
//	/metrics       prometheus metrics from g
//	/debug/dfc     DFC status and level table
//	/debug/regs    clock register dump
//	/debug/state   operating point of every domain
//	/rate/<domain> GET the rate, PUT or POST ?mhz= to set it
func (w *WebServer) RegisterFC(m *fc.Manager, g prometheus.Gatherer) {
	metric.StartMetrics(w.Mux, g)
	w.Mux.HandleFunc("/debug/dfc", text(m.DumpDFC))
	w.Mux.HandleFunc("/debug/regs", text(m.DumpRegisters))
	w.Mux.HandleFunc("/debug/state", text(m.DumpState))
	w.Mux.Handle("/rate/", &rateHandler{m: m})
}

func text(dump func(io.Writer)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		dump(w)
	}
}

type rateHandler struct {
	m *fc.Manager
}

func (h *rateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d, err := fc.ParseDomain(strings.TrimPrefix(r.URL.Path, "/rate/"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	c, err := h.m.Clock(d)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
	case http.MethodPut, http.MethodPost:
		mhz, err := strconv.ParseUint(r.URL.Query().Get("mhz"), 10, 32)
		if err != nil || mhz == 0 {
			http.Error(w, "mhz must be a positive integer", http.StatusBadRequest)
			return
		}
		if err := c.SetRate(r.Context(), uint32(mhz)); err != nil {
			http.Error(w, fmt.Sprintf("%v (errno %d)", err, fc.Errno(err)), status(err))
			return
		}
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	fmt.Fprintf(w, "%d\n", c.Rate())
}

func status(err error) int {
	switch {
	case errors.Is(err, fc.ErrLockTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	case errors.Is(err, fc.ErrNoBridge):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
