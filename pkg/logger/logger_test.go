// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestConfigure(t *testing.T) {
	if err := LogContainer.Configure("debug", ""); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if !LogContainer.GetLogger().Core().Enabled(zapcore.DebugLevel) {
		t.Errorf("Debug level not enabled")
	}
	if err := LogContainer.Configure("warn", ""); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if LogContainer.GetSimpleLogger().Desugar().Core().Enabled(zapcore.InfoLevel) {
		t.Errorf("Info level still enabled after raising the level")
	}
	if err := LogContainer.Configure("loud", ""); err == nil {
		t.Errorf("Bogus level accepted")
	}
}
