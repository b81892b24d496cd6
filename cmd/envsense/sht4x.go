// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fieldsense/envsense/sht4x"
	"github.com/peterbourgon/ff/v3/ffcli"
)

type sht4xConfig struct {
	rootConfig *rootConfig
	out        io.Writer
	err        io.Writer
	addr       string
	precision  string
	power      string
	duration   time.Duration
}

func parsePrecision(s string) (sht4x.Precision, error) {
	switch strings.ToLower(s) {
	case "high", "":
		return sht4x.PrecisionHigh, nil
	case "medium", "med":
		return sht4x.PrecisionMedium, nil
	case "low":
		return sht4x.PrecisionLow, nil
	}
	return 0, fmt.Errorf("unknown precision %q", s)
}

func parseHeaterPower(s string) (sht4x.HeaterPower, error) {
	switch strings.ToLower(s) {
	case "20mw":
		return sht4x.Power20mW, nil
	case "110mw":
		return sht4x.Power110mW, nil
	case "200mw":
		return sht4x.Power200mW, nil
	}
	return 0, fmt.Errorf("unknown heater power %q", s)
}

func (c *sht4xConfig) open() (*sht4x.Dev, *session, error) {
	addr, err := parseAddr(c.addr, c.rootConfig.halAddr, sht4x.DefaultAddress)
	if err != nil {
		return nil, nil, err
	}
	s, err := openSession(c.rootConfig)
	if err != nil {
		return nil, nil, err
	}
	dev, err := sht4x.New(s.transport, &sht4x.Opts{Addr: addr, Timeout: c.rootConfig.timeout, Log: s.log})
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	return dev, s, nil
}

func (c *sht4xConfig) printMeasurement(m sht4x.Measurement) error {
	h := m.Humidity
	return newPrinter(c.out, c.rootConfig.json).measurement(measurementOut{
		Sensor:      "sht4x",
		Temperature: m.Temperature,
		Humidity:    &h,
	})
}

func (c *sht4xConfig) execMeasure(ctx context.Context, _ []string) error {
	p, err := parsePrecision(c.precision)
	if err != nil {
		return err
	}
	dev, s, err := c.open()
	if err != nil {
		return err
	}
	defer s.Close()
	m, err := dev.Measure(p)
	if err != nil {
		return err
	}
	return c.printMeasurement(m)
}

func (c *sht4xConfig) execHeat(ctx context.Context, _ []string) error {
	power, err := parseHeaterPower(c.power)
	if err != nil {
		return err
	}
	h, err := sht4x.HeaterFor(power, sht4x.HeaterDuration(c.duration))
	if err != nil {
		return err
	}
	dev, s, err := c.open()
	if err != nil {
		return err
	}
	defer s.Close()
	s.log.WithField("heater", h.String()).Info("heating")
	m, err := dev.Heat(h)
	if err != nil {
		return err
	}
	return c.printMeasurement(m)
}

func (c *sht4xConfig) execSerial(ctx context.Context, _ []string) error {
	dev, s, err := c.open()
	if err != nil {
		return err
	}
	defer s.Close()
	sn, err := dev.SerialNumber()
	if err != nil {
		return err
	}
	return newPrinter(c.out, c.rootConfig.json).value("serial_number", sn, fmt.Sprintf("serial number 0x%08x", sn))
}

func (c *sht4xConfig) execReset(ctx context.Context, _ []string) error {
	dev, s, err := c.open()
	if err != nil {
		return err
	}
	defer s.Close()
	if err := dev.SoftReset(); err != nil {
		return err
	}
	s.log.Info("soft reset sent")
	return nil
}

func newSHT4xCmd(rootConfig *rootConfig, out, err io.Writer) *ffcli.Command {
	cfg := sht4xConfig{rootConfig: rootConfig, out: out, err: err}

	sub := func(name, usage, help string, exec func(context.Context, []string) error, extra func(fs *flag.FlagSet)) *ffcli.Command {
		fs := flag.NewFlagSet("envsense sht4x "+name, flag.ExitOnError)
		fs.StringVar(&cfg.addr, "addr", "", "i2c address in hex, default 0x44")
		if extra != nil {
			extra(fs)
		}
		rootConfig.registerFlags(fs)
		return &ffcli.Command{
			Name:       name,
			ShortUsage: "envsense sht4x " + usage,
			ShortHelp:  help,
			FlagSet:    fs,
			Options:    options(),
			Exec:       exec,
		}
	}

	fs := flag.NewFlagSet("envsense sht4x", flag.ExitOnError)
	rootConfig.registerFlags(fs)
	cmd := &ffcli.Command{
		Name:       "sht4x",
		ShortUsage: "envsense sht4x <subcommand>",
		ShortHelp:  "Sensirion SHT40/41/45 temperature and humidity sensor.",
		FlagSet:    fs,
		Options:    options(),
		Subcommands: []*ffcli.Command{
			sub("measure", "measure [-precision high|medium|low]", "Take one measurement.", cfg.execMeasure, func(fs *flag.FlagSet) {
				fs.StringVar(&cfg.precision, "precision", "high", "measurement precision: high, medium or low")
			}),
			sub("heat", "heat [-power 20mW|110mW|200mW] [-duration 100ms|1s]", "Pulse the heater and measure at the end of the pulse.", cfg.execHeat, func(fs *flag.FlagSet) {
				fs.StringVar(&cfg.power, "power", "20mW", "heater power: 20mW, 110mW or 200mW")
				fs.DurationVar(&cfg.duration, "duration", 100*time.Millisecond, "heater pulse: 100ms or 1s")
			}),
			sub("serial", "serial", "Read the factory serial number.", cfg.execSerial, nil),
			sub("reset", "reset", "Send a soft reset.", cfg.execReset, nil),
		},
	}
	cmd.Exec = func(context.Context, []string) error {
		fmt.Fprintln(err, ffcli.DefaultUsageFunc(cmd))
		return flag.ErrHelp
	}
	return cmd
}
