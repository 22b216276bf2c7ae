// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jpillora/backoff"
)

type client struct {
	base    string
	http    *http.Client
	retries int
	backoff *backoff.Backoff
	sleep   func(time.Duration)
}

func (c *client) get(out io.Writer, path string) error {
	resp, err := c.http.Get(c.base + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return copyBody(out, resp)
}

// set asks fcd for a new rate. fcd answers 503 when the CP held the FC lock
// for the whole attempt; those are retried with backoff.
func (c *client) set(out io.Writer, domain, mhz string) error {
	u := fmt.Sprintf("%s/rate/%s?mhz=%s", c.base, url.PathEscape(domain), url.QueryEscape(mhz))
	sleep := c.sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	c.backoff.Reset()
	for {
		req, err := http.NewRequest(http.MethodPut, u, nil)
		if err != nil {
			return err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusServiceUnavailable || int(c.backoff.Attempt()) >= c.retries {
			defer resp.Body.Close()
			return copyBody(out, resp)
		}
		resp.Body.Close()
		sleep(c.backoff.Duration())
	}
}

func copyBody(out io.Writer, resp *http.Response) error {
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("fcd: %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}
	_, err := io.Copy(out, resp.Body)
	return err
}
