// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// WebServer is the struct that holds all necessary information
// for the address the daemon serves its HTTP surface on
type WebServer struct {
	Mux      *http.ServeMux
	Serv     *http.Server
	Listener net.Listener
}

// NewWebserver returns a pointer to a new WebServer struct and
// initialises it with a new http.ServeMux
func NewWebserver() *WebServer {
	return &WebServer{
		Mux: http.NewServeMux(),
	}
}

// SetServer fills the WebServer struct and starts a net.Listener on
// addr. A port of 0 picks a free one.
func (w *WebServer) SetServer(addr string) error {
	w.Serv = &http.Server{
		Addr:              addr,
		Handler:           w.Mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	var err error
	w.Listener, err = net.Listen("tcp", addr)
	return err
}

// Serve serves until Shutdown is called. A clean shutdown returns nil.
func (w *WebServer) Serve() error {
	if err := w.Serv.Serve(w.Listener); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (w *WebServer) Shutdown(ctx context.Context) error {
	return w.Serv.Shutdown(ctx)
}
