// Copyright 2018 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// fcd owns the PMU clock registers and serves frequency change requests over
// HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"

	"github.com/u-root/u-dvfs/config"
	"github.com/u-root/u-dvfs/pkg/dvfs"
)

var (
	confPath = flag.String("config", "", "YAML configuration file, defaults built in when empty")
	memory   = flag.String("memory", "", "Override the memory backend: devmem or sim")
	listen   = flag.String("listen", "", "Override the HTTP listen address")
)

func main() {
	flag.Parse()

	fs := afero.NewOsFs()
	conf := config.DefaultConfig
	if *confPath != "" {
		var err error
		if conf, err = config.Load(fs, *confPath); err != nil {
			log.Fatalf("Loading configuration: %v", err)
		}
	}
	if *memory != "" {
		conf.Memory = *memory
	}
	if *listen != "" {
		conf.Listen = *listen
	}
	if err := conf.Validate(); err != nil {
		log.Fatalf("Configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, unix.SIGTERM)
	err := run(ctx, conf, fs)
	stop()
	if err != nil {
		log.Fatal(err)
	}
}

// run serves until ctx is done. The PMU is released on every return.
func run(ctx context.Context, conf *config.Config, fs afero.Fs) error {
	s, err := dvfs.Open(ctx, conf, fs)
	if err != nil {
		return fmt.Errorf("starting the engine: %w", err)
	}
	defer s.Close()

	if err := s.Run(ctx); err != nil {
		s.Log.Errorf("Exiting: %v", err)
		return err
	}
	s.Log.Infof("Shut down")
	return nil
}
