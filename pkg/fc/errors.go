// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fc

import (
	"errors"

	"golang.org/x/sys/unix"
)

var (
	// ErrLockTimeout means the AP never observed itself as owner of the
	// AP/CP frequency change lock. Nothing was programmed.
	ErrLockTimeout = errors.New("timed out acquiring the FC lock")
	// ErrCompletionTimeout means the hardware never reported a change as
	// done. Sequencers absorb it unless verification also fails, except while
	// waiting for a foreign DFC to finish.
	ErrCompletionTimeout = errors.New("frequency change did not complete")
	// ErrVerificationMismatch means the readback after a change disagrees with
	// the requested operating point.
	ErrVerificationMismatch = errors.New("hardware state does not match the requested operating point")
	// ErrNoBridge means a same source retune was needed but the bridge
	// operating point uses that source too.
	ErrNoBridge = errors.New("no usable bridge operating point")
)

// Errno maps an error returned by a domain to the negative errno a clock
// framework style caller expects. nil maps to 0.
func Errno(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrLockTimeout):
		return -int(unix.EAGAIN)
	case errors.Is(err, ErrCompletionTimeout):
		return -int(unix.ETIMEDOUT)
	case errors.Is(err, ErrVerificationMismatch):
		return -int(unix.EIO)
	}
	return -int(unix.EINVAL)
}
