// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package common

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultTimeout bounds each phase of a transaction when the caller does not
// choose one.
const DefaultTimeout = 100 * time.Millisecond

// Target is one device on a bus. It performs single-shot transactions:
// one write and at most one read, no retries.
//
// Target holds no locks. The caller serializes access to the bus.
type Target struct {
	Transport Transport
	Addr      uint16
	// Timeout applies separately to the write and to the read.
	Timeout time.Duration
	// Log receives a debug trace of every transaction. May be nil.
	Log *logrus.Entry

	// sleep waits out the settle time between the phases. Replaced in tests.
	sleep func(time.Duration)
}

// Write transmits w. It is a transaction without a read phase.
func (t *Target) Write(w []byte) error {
	log := t.logger().WithField("w", w)
	if err := t.Transport.Transmit(t.Addr, w, t.Timeout); err != nil {
		log.WithError(err).Debug("transmit failed")
		return &BusError{Op: OpTransmit, Addr: t.Addr, Err: err}
	}
	log.Debug("write")
	return nil
}

// Exchange transmits w then reads exactly len(r) bytes into r. If the write
// fails no read is attempted. r is returned as received.
func (t *Target) Exchange(w, r []byte) error {
	return t.ExchangeAfter(w, r, 0)
}

// ExchangeAfter is Exchange with a wait of settle between the write and the
// read, for devices that need conversion time before they answer.
func (t *Target) ExchangeAfter(w, r []byte, settle time.Duration) error {
	if err := t.Write(w); err != nil {
		return err
	}
	if settle > 0 {
		t.wait(settle)
	}
	log := t.logger().WithField("w", w)
	if err := t.Transport.Receive(t.Addr, r, t.Timeout); err != nil {
		log.WithError(err).Debug("receive failed")
		return &BusError{Op: OpReceive, Addr: t.Addr, Err: err}
	}
	log.WithField("r", r).Debug("read")
	return nil
}

// SetSleep replaces the function used to wait between phases. A nil f
// restores time.Sleep.
func (t *Target) SetSleep(f func(time.Duration)) {
	t.sleep = f
}

func (t *Target) wait(d time.Duration) {
	if t.sleep != nil {
		t.sleep(d)
		return
	}
	time.Sleep(d)
}

func (t *Target) logger() *logrus.Entry {
	return Logger(t.Log).WithField("addr", t.Addr)
}

var discard = func() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}()

// Logger returns l, or a logger that drops everything when l is nil.
func Logger(l *logrus.Entry) *logrus.Entry {
	if l == nil {
		return discard
	}
	return l
}
