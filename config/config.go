// Copyright 2018 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"bytes"
	"fmt"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Set at link time with -X.
var (
	gitVersion = "devel"
	gitHash    = "unknown"
)

type Version struct {
	Version string
	GitHash string
}

type Log struct {
	// Level is a zap level name.
	Level string `yaml:"level"`
	// File, if set, gets a JSON copy of the log.
	File string `yaml:"file"`
}

// CP configures the simulated CP when Memory is "sim".
type CP struct {
	Interval time.Duration `yaml:"interval"`
	Hold     time.Duration `yaml:"hold"`
}

type Config struct {
	// Variant is the SoC, see package soc.
	Variant string `yaml:"variant"`
	// Memory is "devmem" for the real PMU or "sim" for the register model.
	Memory string `yaml:"memory"`
	// Ceilings caps domains, keyed by domain name, in MHz.
	Ceilings map[string]uint32 `yaml:"ceilings"`
	// Listen is the address of the HTTP surface. Empty disables it.
	Listen string `yaml:"listen"`
	// Cmdline is read for <domain>_max= and <domain>_nopp= boot parameters.
	Cmdline string  `yaml:"cmdline"`
	Log     Log     `yaml:"log"`
	CP      CP      `yaml:"cp"`
	Version Version `yaml:"-"`
}

var DefaultConfig = &Config{
	Variant: "helan3",
	Memory:  "devmem",
	Listen:  "localhost:9464",
	Cmdline: "/proc/cmdline",
	Log: Log{
		Level: "info",
	},
	CP: CP{
		Interval: 50 * time.Millisecond,
		Hold:     200 * time.Microsecond,
	},
	Version: Version{
		Version: gitVersion,
		GitHash: gitHash,
	},
}

// Load returns DefaultConfig overlaid with the YAML file at path. Unknown
// keys are an error.
func Load(fs afero.Fs, path string) (*Config, error) {
	c := DefaultConfig.clone()
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c *Config) Validate() error {
	switch c.Memory {
	case "devmem", "sim":
	default:
		return fmt.Errorf("memory must be devmem or sim, not %q", c.Memory)
	}
	if c.Variant == "" {
		return fmt.Errorf("no variant")
	}
	if c.Memory == "sim" && (c.CP.Interval <= 0 || c.CP.Hold < 0) {
		return fmt.Errorf("bad CP timing %v/%v", c.CP.Interval, c.CP.Hold)
	}
	return nil
}

func (c *Config) clone() *Config {
	n := *c
	n.Ceilings = make(map[string]uint32, len(c.Ceilings))
	for k, v := range c.Ceilings {
		n.Ceilings[k] = v
	}
	return &n
}
