// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fc

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSeqLockReentrant(t *testing.T) {
	l := NewSeqLock()
	ctx, err := l.Lock(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	nested, err := l.Lock(ctx)
	if err != nil {
		t.Fatalf("Nested lock: %v", err)
	}
	if l.Depth() != 2 {
		t.Errorf("Depth %d, want 2", l.Depth())
	}
	l.Unlock(nested)
	l.Unlock(ctx)
	if l.Depth() != 0 {
		t.Errorf("Depth %d after unlocking, want 0", l.Depth())
	}
}

func TestSeqLockOtherOwnerWaits(t *testing.T) {
	l := NewSeqLock()
	ctx, err := l.Lock(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	wait, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(wait); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected the second owner to time out, got %v", err)
	}

	done := make(chan context.Context)
	go func() {
		c, err := l.Lock(context.Background())
		if err != nil {
			t.Errorf("Lock after release: %v", err)
		}
		done <- c
	}()
	l.Unlock(ctx)
	select {
	case c := <-done:
		l.Unlock(c)
	case <-time.After(5 * time.Second):
		t.Fatal("Waiter never got the lock")
	}
}

func TestSeqLockForeignUnlockPanics(t *testing.T) {
	for _, tt := range []struct {
		name string
		lock bool
	}{
		{"unlocked", false},
		{"other owner", true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			l := NewSeqLock()
			if tt.lock {
				if _, err := l.Lock(context.Background()); err != nil {
					t.Fatal(err)
				}
			}
			defer func() {
				if recover() == nil {
					t.Errorf("Unlock did not panic")
				}
			}()
			l.Unlock(context.Background())
		})
	}
}

func TestFCMutexHoldsOffChanges(t *testing.T) {
	f := newFixture(t, testVariant(), nil)
	c := f.clock(t, Clst0)
	ctx, err := f.m.AcquireFCMutex(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	wait, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := c.SetRate(wait, 832); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected SetRate to wait for the mutex, got %v", err)
	}
	if len(f.soc.Writes()) != 0 {
		t.Errorf("Registers written while the mutex was held: %v", f.soc.Writes())
	}

	// The holder itself may still change rates
	if err := c.SetRate(ctx, 832); err != nil {
		t.Errorf("SetRate by the holder: %v", err)
	}
	f.m.ReleaseFCMutex(ctx)
	if err := c.SetRate(context.Background(), 624); err != nil {
		t.Errorf("SetRate after release: %v", err)
	}
	if c.Rate() != 624 {
		t.Errorf("Expected 624 MHz, got %d", c.Rate())
	}
}
