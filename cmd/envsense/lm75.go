// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fieldsense/envsense/lm75"
	"github.com/peterbourgon/ff/v3/ffcli"
)

type lm75Config struct {
	rootConfig *rootConfig
	out        io.Writer
	err        io.Writer
	addr       string
	mode       string
	setOS      float64
	setHyst    float64
}

func (c *lm75Config) open() (*lm75.Dev, *session, error) {
	addr, err := parseAddr(c.addr, c.rootConfig.halAddr, lm75.DefaultAddress)
	if err != nil {
		return nil, nil, err
	}
	s, err := openSession(c.rootConfig)
	if err != nil {
		return nil, nil, err
	}
	dev, err := lm75.New(s.transport, &lm75.Opts{Addr: addr, Timeout: c.rootConfig.timeout, Log: s.log})
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	return dev, s, nil
}

// parseConfig parses a configuration byte in hex.
func parseConfig(s string) (lm75.Config, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid configuration %q: %w", s, err)
	}
	return lm75.Config(v), nil
}

func (c *lm75Config) execRead(ctx context.Context, _ []string) error {
	dev, s, err := c.open()
	if err != nil {
		return err
	}
	defer s.Close()
	r, err := dev.ReadTemperature()
	if err != nil {
		return err
	}
	raw := r.Raw
	return newPrinter(c.out, c.rootConfig.json).measurement(measurementOut{
		Sensor:      "lm75",
		Temperature: r.Celsius,
		Raw:         &raw,
	})
}

func (c *lm75Config) execConfig(ctx context.Context, _ []string) error {
	mode, err := parseConfig(c.mode)
	if err != nil {
		return err
	}
	dev, s, err := c.open()
	if err != nil {
		return err
	}
	defer s.Close()
	if err := dev.Configure(mode); err != nil {
		return err
	}
	s.log.WithField("config", mode.String()).Info("configuration written")
	return nil
}

// mergeLimits returns cur with the thresholds given on the command line
// replaced. NaN means the flag was not given. The bool reports whether
// anything was given.
func mergeLimits(cur lm75.Limits, setOS, setHyst float64) (lm75.Limits, bool) {
	changed := false
	if !math.IsNaN(setOS) {
		cur.Overtemp = float32(setOS)
		changed = true
	}
	if !math.IsNaN(setHyst) {
		cur.Hysteresis = float32(setHyst)
		changed = true
	}
	return cur, changed
}

// updateLimits writes the given thresholds, keeping the device's current value
// for the other one, and returns the limits now in effect.
func updateLimits(dev *lm75.Dev, setOS, setHyst float64) (lm75.Limits, error) {
	l, err := dev.ReadLimits()
	if err != nil {
		return lm75.Limits{}, err
	}
	next, changed := mergeLimits(l, setOS, setHyst)
	if !changed {
		return l, nil
	}
	if err := dev.SetLimits(next); err != nil {
		return lm75.Limits{}, err
	}
	return dev.ReadLimits()
}

func (c *lm75Config) execLimits(ctx context.Context, _ []string) error {
	dev, s, err := c.open()
	if err != nil {
		return err
	}
	defer s.Close()
	l, err := updateLimits(dev, c.setOS, c.setHyst)
	if err != nil {
		return err
	}
	if c.rootConfig.json {
		return writeJSON(c.out, map[string]float32{"hysteresis_c": l.Hysteresis, "overtemp_c": l.Overtemp})
	}
	_, err = fmt.Fprintf(c.out, "overtemperature %6.1f°C\nhysteresis      %6.1f°C\n", l.Overtemp, l.Hysteresis)
	return err
}

func newLM75Cmd(rootConfig *rootConfig, out, err io.Writer) *ffcli.Command {
	cfg := lm75Config{rootConfig: rootConfig, out: out, err: err}

	sub := func(name, usage, help string, exec func(context.Context, []string) error, extra func(fs *flag.FlagSet)) *ffcli.Command {
		fs := flag.NewFlagSet("envsense lm75 "+name, flag.ExitOnError)
		fs.StringVar(&cfg.addr, "addr", "", "i2c address in hex, default 0x48")
		if extra != nil {
			extra(fs)
		}
		rootConfig.registerFlags(fs)
		return &ffcli.Command{
			Name:       name,
			ShortUsage: "envsense lm75 " + usage,
			ShortHelp:  help,
			FlagSet:    fs,
			Options:    options(),
			Exec:       exec,
		}
	}

	fs := flag.NewFlagSet("envsense lm75", flag.ExitOnError)
	rootConfig.registerFlags(fs)
	cmd := &ffcli.Command{
		Name:       "lm75",
		ShortUsage: "envsense lm75 <subcommand>",
		ShortHelp:  "NXP LM75A temperature sensor.",
		FlagSet:    fs,
		Options:    options(),
		Subcommands: []*ffcli.Command{
			sub("read", "read", "Read the temperature register.", cfg.execRead, nil),
			sub("config", "config [-mode 0x02]", "Write the configuration register.", cfg.execConfig, func(fs *flag.FlagSet) {
				fs.StringVar(&cfg.mode, "mode", fmt.Sprintf("0x%02x", byte(lm75.DefaultConfig)), "configuration byte in hex")
			}),
			sub("limits", "limits [-set-os 80 -set-hyst 75]", "Read, and optionally set, the thermostat limits.", cfg.execLimits, func(fs *flag.FlagSet) {
				fs.Float64Var(&cfg.setOS, "set-os", math.NaN(), "overtemperature threshold in °C, unchanged if not given")
				fs.Float64Var(&cfg.setHyst, "set-hyst", math.NaN(), "hysteresis threshold in °C, unchanged if not given")
			}),
		},
	}
	cmd.Exec = func(context.Context, []string) error {
		fmt.Fprintln(err, ffcli.DefaultUsageFunc(cmd))
		return flag.ErrHelp
	}
	return cmd
}
