// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	prefixed "github.com/BertoldVdb/logrus-prefixed-formatter"
	"github.com/fieldsense/envsense/common"
	"github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// newLogger builds the command line logger. Driver transactions are logged at
// debug level, so -v shows the raw bus traffic.
func newLogger(c *rootConfig, w io.Writer) (*logrus.Entry, error) {
	level, err := logrus.ParseLevel(c.logLevel)
	if err != nil {
		return nil, err
	}
	if c.verbose && level < logrus.DebugLevel {
		level = logrus.DebugLevel
	}
	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetOutput(w)
	f := new(prefixed.TextFormatter)
	f.TimestampFormat = "2006-01-02 15:04:05"
	f.FullTimestamp = true
	logger.SetFormatter(f)
	return logger.WithField("prefix", "envsense"), nil
}

// session is an open bus plus the logger the drivers report to.
type session struct {
	transport common.Transport
	log       *logrus.Entry
	closer    io.Closer
}

func (s *session) Close() error {
	return s.closer.Close()
}

func openSession(c *rootConfig) (*session, error) {
	log, err := newLogger(c, colorable.NewColorableStderr())
	if err != nil {
		return nil, err
	}
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	bus, err := i2creg.Open(c.bus)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to bus: %w", err)
	}
	log.WithField("bus", bus.String()).Debug("bus open")
	return &session{
		transport: common.NewI2CTransport(bus),
		log:       log,
		closer:    bus,
	}, nil
}

// parseAddr parses a hex device address. With halFormat the address is in
// the 8 bit form HAL libraries use, the 7 bit address shifted left once.
func parseAddr(addrStr string, halFormat bool, def uint16) (uint16, error) {
	if addrStr == "" {
		return def, nil
	}
	addr, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(addrStr), "0x"), 16, 16)
	if err != nil {
		return 0, err
	}
	if halFormat {
		addr >>= 1
	}
	if addr == 0 || addr > 0x7f {
		return 0, errors.New("address out of the 7 bit range")
	}
	return uint16(addr), nil
}
