// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package common

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
)

// Transport is the bus capability the drivers need: an addressed write and an
// addressed read, each giving up after timeout.
//
// Implementations are not expected to be safe for concurrent use. The owner
// of the bus serializes transactions.
type Transport interface {
	// Transmit writes w to the device at addr.
	Transmit(addr uint16, w []byte, timeout time.Duration) error
	// Receive reads exactly len(r) bytes from the device at addr.
	Receive(addr uint16, r []byte, timeout time.Duration) error
}

// I2CTransport implements Transport on a periph.io I²C bus. Each phase is a
// separate bus transaction with its own START and STOP.
//
// A phase that times out is abandoned, not cancelled: its Bus.Tx keeps running
// and keeps the bus lock, so the following transaction blocks until it ends.
type I2CTransport struct {
	Bus i2c.Bus
}

// NewI2CTransport returns a Transport for bus.
func NewI2CTransport(bus i2c.Bus) *I2CTransport {
	return &I2CTransport{Bus: bus}
}

// Transmit implements Transport.
func (t *I2CTransport) Transmit(addr uint16, w []byte, timeout time.Duration) error {
	return t.tx(addr, w, nil, timeout)
}

// Receive implements Transport.
func (t *I2CTransport) Receive(addr uint16, r []byte, timeout time.Duration) error {
	return t.tx(addr, nil, r, timeout)
}

// tx runs one bus call. periph buses have no per-call deadline, so when a
// timeout is set the call runs in a goroutine on private copies of the
// buffers. If the deadline passes the goroutine is abandoned and the caller's
// buffers are never touched. The abandoned call still holds the bus until it
// returns, so the next transaction on the same bus waits behind it.
func (t *I2CTransport) tx(addr uint16, w, r []byte, timeout time.Duration) error {
	if timeout <= 0 {
		return t.Bus.Tx(addr, w, r)
	}
	var wc, rc []byte
	if w != nil {
		wc = append([]byte(nil), w...)
	}
	if r != nil {
		rc = make([]byte, len(r))
	}
	done := make(chan error, 1)
	go func() {
		done <- t.Bus.Tx(addr, wc, rc)
	}()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case err := <-done:
		if err == nil {
			copy(r, rc)
		}
		return err
	case <-timer.C:
		return fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
}

func (t *I2CTransport) String() string {
	return t.Bus.String()
}

var _ Transport = &I2CTransport{}
