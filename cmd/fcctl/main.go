// Copyright 2018 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// fcctl talks to fcd.
//
//	fcctl get <domain>
//	fcctl set <domain> <MHz>
//	fcctl regs | dfc | state
//	fcctl tables <variant>
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/jpillora/backoff"
)

var (
	host    = flag.String("host", "localhost:9464", "Address of fcd")
	retries = flag.Int("retries", 5, "Times to retry a change the CP kept the FC lock through")
)

func main() {
	flag.Parse()
	c := &client{
		base:    "http://" + *host,
		http:    &http.Client{Timeout: 30 * time.Second},
		retries: *retries,
		backoff: &backoff.Backoff{
			Min:    10 * time.Millisecond,
			Max:    time.Second,
			Factor: 2,
			Jitter: true,
		},
	}
	if err := run(c, os.Stdout, flag.Args()); err != nil {
		log.Fatal(err)
	}
}

func run(c *client, out io.Writer, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: fcctl get <domain> | set <domain> <MHz> | regs | dfc | state | tables <variant>")
	}
	switch args[0] {
	case "get":
		if len(args) != 2 {
			return fmt.Errorf("usage: fcctl get <domain>")
		}
		return c.get(out, "/rate/"+args[1])
	case "set":
		if len(args) != 3 {
			return fmt.Errorf("usage: fcctl set <domain> <MHz>")
		}
		return c.set(out, args[1], args[2])
	case "regs", "dfc", "state":
		return c.get(out, "/debug/"+args[0])
	case "tables":
		if len(args) != 2 {
			return fmt.Errorf("usage: fcctl tables <variant>")
		}
		return tables(out, args[1])
	}
	return fmt.Errorf("unknown command %q", args[0])
}
