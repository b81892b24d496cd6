// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package common

import (
	"testing"

	"github.com/sigurn/crc8"
)

func TestCRC8(t *testing.T) {
	var tests = []struct {
		bytes  []byte
		result byte
	}{
		{bytes: []byte{0xbe, 0xef}, result: 0x92},
		{bytes: []byte{0x01, 0xa4}, result: 0x4d},
		{bytes: []byte{0xab, 0xcd}, result: 0x6f},
		{bytes: []byte{0x61, 0x9c}, result: 0x64},
		{bytes: []byte{0x5c, 0x3a}, result: 0xcc},
		{bytes: []byte{}, result: 0xff},
	}
	for _, test := range tests {
		res := CRC8(test.bytes)
		if res != test.result {
			t.Errorf("CRC8(%#v)!=0x%02x received 0x%02x", test.bytes, test.result, res)
		}
	}
}

func TestCRC8Word(t *testing.T) {
	var tests = []struct {
		value  uint16
		result byte
	}{
		// Sample from the Sensirion datasheets.
		{value: 0xbeef, result: 0x92},
		{value: 0x619c, result: 0x64},
		{value: 0x5c3a, result: 0xcc},
		{value: 0x0000, result: 0x81},
		{value: 0xffff, result: 0xac},
		{value: 0x6666, result: 0x93},
	}
	for _, test := range tests {
		if res := CRC8Word(test.value); res != test.result {
			t.Errorf("CRC8Word(0x%04x)!=0x%02x received 0x%02x", test.value, test.result, res)
		}
		if !VerifyCRC8(test.value, test.result) {
			t.Errorf("VerifyCRC8(0x%04x, 0x%02x) returned false", test.value, test.result)
		}
	}
}

// The high byte must be processed first. 0xefbe is 0xbeef with the bytes
// swapped and has a different checksum.
func TestCRC8WordByteOrder(t *testing.T) {
	if VerifyCRC8(0xefbe, 0x92) {
		t.Error("checksum of 0xbeef verified for the byte swapped word")
	}
	if CRC8Word(0xbeef) != CRC8([]byte{0xbe, 0xef}) {
		t.Error("CRC8Word does not match CRC8 over big-endian bytes")
	}
}

func TestCRC8TableMatchesBitwise(t *testing.T) {
	for i := 0; i < 256; i++ {
		crc := byte(i)
		for j := 0; j < 8; j++ {
			if crc&0x80 == 0 {
				crc <<= 1
			} else {
				crc = (crc << 1) ^ 0x31
			}
		}
		if crc8Table[i] != crc {
			t.Errorf("crc8Table[0x%02x]=0x%02x expected 0x%02x", i, crc8Table[i], crc)
		}
	}
}

// Compare every 16-bit word against an independent implementation.
func TestCRC8WordExhaustive(t *testing.T) {
	table := crc8.MakeTable(crc8.Params{Poly: 0x31, Init: 0xff, Name: "CRC-8/NRSC-5"})
	buf := make([]byte, 2)
	for v := 0; v < 0x10000; v++ {
		buf[0] = byte(v >> 8)
		buf[1] = byte(v)
		want := crc8.Checksum(buf, table)
		if got := CRC8Word(uint16(v)); got != want {
			t.Fatalf("CRC8Word(0x%04x)=0x%02x expected 0x%02x", v, got, want)
		}
	}
}

// Any single bit flip in either the word or its checksum is detected.
func TestVerifyCRC8BitFlip(t *testing.T) {
	for v := 0; v < 0x10000; v += 7 {
		value := uint16(v)
		crc := CRC8Word(value)
		if !VerifyCRC8(value, crc) {
			t.Fatalf("VerifyCRC8(0x%04x, 0x%02x) returned false", value, crc)
		}
		for bit := 0; bit < 16; bit++ {
			if VerifyCRC8(value^(1<<bit), crc) {
				t.Fatalf("flip of bit %d in 0x%04x not detected", bit, value)
			}
		}
		for bit := 0; bit < 8; bit++ {
			if VerifyCRC8(value, crc^(1<<bit)) {
				t.Fatalf("flip of crc bit %d for 0x%04x not detected", bit, value)
			}
		}
	}
}
