// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fieldsense/envsense/common"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
)

type rootConfig struct {
	verbose  bool
	logLevel string
	bus      string
	timeout  time.Duration
	json     bool
	halAddr  bool
	config   string
}

func (c *rootConfig) registerFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.verbose, "v", false, "log every bus transaction (same as -loglevel debug)")
	fs.StringVar(&c.logLevel, "loglevel", "info", "log level: panic, fatal, error, warn, info, debug or trace")
	fs.StringVar(&c.bus, "bus", "", "i2c bus name or number, empty for the first bus")
	fs.DurationVar(&c.timeout, "timeout", common.DefaultTimeout, "timeout of each bus write and read")
	fs.BoolVar(&c.json, "json", false, "output in json mode")
	fs.BoolVar(&c.halAddr, "hal-addr", false, "addresses are given in 8 bit form, shifted left by one as MCU HALs expect")
	fs.StringVar(&c.config, "config", "", "config file with one flag per line")
}

// options makes every flag settable from ENVSENSE_* variables and from the
// -config file.
func options() []ff.Option {
	return []ff.Option{
		ff.WithEnvVarPrefix("ENVSENSE"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
	}
}

func newRootCmd() (*ffcli.Command, *rootConfig) {
	var cfg rootConfig

	fs := flag.NewFlagSet("envsense", flag.ExitOnError)
	cfg.registerFlags(fs)

	cmd := &ffcli.Command{
		Name:       "envsense",
		ShortUsage: "envsense [flags] <subcommand>",
		ShortHelp:  "Read SHT4x and LM75 sensors over I²C.",
		LongHelp:   rootLongHelp,
		FlagSet:    fs,
		Options:    options(),
	}
	cmd.Exec = func(context.Context, []string) error {
		fmt.Fprintln(os.Stderr, ffcli.DefaultUsageFunc(cmd))
		return flag.ErrHelp
	}
	return cmd, &cfg
}

var rootLongHelp = `Each subcommand runs its transactions once. A bus failure and a
checksum failure are reported differently; neither is retried.

Flags can also be set from the environment, e.g. ENVSENSE_BUS=1, or from
a file given with -config containing lines such as "timeout 250ms".`
