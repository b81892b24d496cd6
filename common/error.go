// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package common

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransmit matches any failure of the write phase of a transaction.
	ErrTransmit = errors.New("transmit failed")
	// ErrReceive matches any failure of the read phase of a transaction.
	ErrReceive = errors.New("receive failed")
	// ErrChecksum matches a response whose CRC did not verify. The bus worked
	// but the data is corrupt.
	ErrChecksum = errors.New("crc mismatch")
	// ErrTimeout is returned by I2CTransport when the bus did not complete
	// within the timeout.
	ErrTimeout = errors.New("bus timeout")
)

// Op identifies the phase of a transaction.
type Op int

const (
	OpTransmit Op = iota
	OpReceive
)

func (o Op) String() string {
	switch o {
	case OpTransmit:
		return "transmit"
	case OpReceive:
		return "receive"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// BusError is a transport failure. It is returned verbatim for the single
// attempt made; nothing in this module retries.
type BusError struct {
	Op   Op
	Addr uint16
	Err  error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("%s to 0x%02x failed: %v", e.Op, e.Addr, e.Err)
}

func (e *BusError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrTransmit) and errors.Is(err, ErrReceive) work
// for the matching phase.
func (e *BusError) Is(target error) bool {
	switch target {
	case ErrTransmit:
		return e.Op == OpTransmit
	case ErrReceive:
		return e.Op == OpReceive
	}
	return false
}

// FieldError describes one data word that failed its CRC.
type FieldError struct {
	Field string
	Value uint16
	Got   byte
	Want  byte
}

// ChecksumError reports every field of a response that failed verification.
type ChecksumError struct {
	Fields []FieldError
}

func (e *ChecksumError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s 0x%04x crc 0x%02x, expected 0x%02x", f.Field, f.Value, f.Got, f.Want))
	}
	return "crc mismatch: " + strings.Join(parts, "; ")
}

func (e *ChecksumError) Is(target error) bool {
	return target == ErrChecksum
}

// CheckWords verifies each word against its checksum. Every word is checked,
// and the returned error lists all of the ones that failed. names labels the
// words in the error and may be shorter than words.
func CheckWords(names []string, words []uint16, crcs []byte) error {
	var ce *ChecksumError
	for i, w := range words {
		want := CRC8Word(w)
		if crcs[i] == want {
			continue
		}
		if ce == nil {
			ce = &ChecksumError{}
		}
		name := fmt.Sprintf("word %d", i)
		if i < len(names) {
			name = names[i]
		}
		ce.Fields = append(ce.Fields, FieldError{Field: name, Value: w, Got: crcs[i], Want: want})
	}
	if ce == nil {
		return nil
	}
	return ce
}
