// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fc

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

type ownerKey struct{}

type owner uint64

var lastOwner uint64

// SeqLock serializes frequency change sequences. It is re-entrant per owner,
// where the owner is a token carried in the context: Lock attaches a fresh
// token when the context has none, and every nested call made with the
// returned context counts as the same owner.
type SeqLock struct {
	sem   *semaphore.Weighted
	m     sync.Mutex
	owner owner
	depth int
}

func NewSeqLock() *SeqLock {
	return &SeqLock{sem: semaphore.NewWeighted(1)}
}

// Lock acquires the lock for the owner in ctx and returns the context to use
// for nested calls and for Unlock. Waiting is abandoned when ctx is done.
func (l *SeqLock) Lock(ctx context.Context) (context.Context, error) {
	o, ok := ctx.Value(ownerKey{}).(owner)
	if !ok {
		o = owner(atomic.AddUint64(&lastOwner, 1))
		ctx = context.WithValue(ctx, ownerKey{}, o)
	}
	l.m.Lock()
	if l.depth > 0 && l.owner == o {
		l.depth++
		l.m.Unlock()
		return ctx, nil
	}
	l.m.Unlock()

	if err := l.sem.Acquire(ctx, 1); err != nil {
		return ctx, err
	}
	l.m.Lock()
	l.owner = o
	l.depth = 1
	l.m.Unlock()
	return ctx, nil
}

// Unlock releases one level of nesting. Unlocking a lock the owner in ctx
// does not hold is a programming error and panics.
func (l *SeqLock) Unlock(ctx context.Context) {
	o, _ := ctx.Value(ownerKey{}).(owner)
	l.m.Lock()
	defer l.m.Unlock()
	if l.depth == 0 || l.owner != o {
		panic(fmt.Sprintf("fc: sequence lock released by %d, owner %d depth %d", o, l.owner, l.depth))
	}
	l.depth--
	if l.depth == 0 {
		l.owner = 0
		l.sem.Release(1)
	}
}

// Depth returns the current nesting depth.
func (l *SeqLock) Depth() int {
	l.m.Lock()
	defer l.m.Unlock()
	return l.depth
}
