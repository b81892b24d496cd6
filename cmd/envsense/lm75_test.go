// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"math"
	"testing"

	"github.com/fieldsense/envsense/common"
	"github.com/fieldsense/envsense/lm75"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func TestMergeLimits(t *testing.T) {
	cur := lm75.Limits{Hysteresis: 75, Overtemp: 80}
	nan := math.NaN()
	testCases := []struct {
		name    string
		os      float64
		hyst    float64
		want    lm75.Limits
		changed bool
	}{
		{"none", nan, nan, cur, false},
		{"overtemp only", 90, nan, lm75.Limits{Hysteresis: 75, Overtemp: 90}, true},
		{"hysteresis only", nan, 70, lm75.Limits{Hysteresis: 70, Overtemp: 80}, true},
		{"zero hysteresis", nan, 0, lm75.Limits{Hysteresis: 0, Overtemp: 80}, true},
		{"both", 60, 55, lm75.Limits{Hysteresis: 55, Overtemp: 60}, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, changed := mergeLimits(cur, tc.os, tc.hyst)
			if got != tc.want || changed != tc.changed {
				t.Errorf("got %#v, %t want %#v, %t", got, changed, tc.want, tc.changed)
			}
		})
	}
}

// limitReads scripts reading both limit registers.
func limitReads(hyst, tos [2]byte) []i2ctest.IO {
	a := lm75.DefaultAddress
	return []i2ctest.IO{
		{Addr: a, W: []byte{byte(lm75.RegHysteresis)}},
		{Addr: a, R: hyst[:]},
		{Addr: a, W: []byte{byte(lm75.RegOvertemp)}},
		{Addr: a, R: tos[:]},
	}
}

func getLM75(t *testing.T, ops []i2ctest.IO) (*lm75.Dev, *i2ctest.Playback) {
	pb := &i2ctest.Playback{Ops: ops, DontPanic: true}
	dev, err := lm75.New(common.NewI2CTransport(pb), nil)
	if err != nil {
		t.Fatal(err)
	}
	return dev, pb
}

func TestUpdateLimitsKeepsUnsetThreshold(t *testing.T) {
	a := lm75.DefaultAddress
	var ops []i2ctest.IO
	ops = append(ops, limitReads([2]byte{0x4b, 0x00}, [2]byte{0x50, 0x00})...)
	ops = append(ops,
		i2ctest.IO{Addr: a, W: []byte{byte(lm75.RegHysteresis), 0x4b, 0x00}},
		i2ctest.IO{Addr: a, W: []byte{byte(lm75.RegOvertemp), 0x5a, 0x00}})
	ops = append(ops, limitReads([2]byte{0x4b, 0x00}, [2]byte{0x5a, 0x00})...)
	dev, pb := getLM75(t, ops)

	l, err := updateLimits(dev, 90, math.NaN())
	if err != nil {
		t.Fatal(err)
	}
	if l.Hysteresis != 75 || l.Overtemp != 90 {
		t.Errorf("limits %#v expected 75/90", l)
	}
	if err := pb.Close(); err != nil {
		t.Error(err)
	}
}

func TestUpdateLimitsZeroHysteresis(t *testing.T) {
	a := lm75.DefaultAddress
	var ops []i2ctest.IO
	ops = append(ops, limitReads([2]byte{0x4b, 0x00}, [2]byte{0x50, 0x00})...)
	ops = append(ops,
		i2ctest.IO{Addr: a, W: []byte{byte(lm75.RegHysteresis), 0x00, 0x00}},
		i2ctest.IO{Addr: a, W: []byte{byte(lm75.RegOvertemp), 0x50, 0x00}})
	ops = append(ops, limitReads([2]byte{0x00, 0x00}, [2]byte{0x50, 0x00})...)
	dev, pb := getLM75(t, ops)

	l, err := updateLimits(dev, math.NaN(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if l.Hysteresis != 0 || l.Overtemp != 80 {
		t.Errorf("limits %#v expected 0/80", l)
	}
	if err := pb.Close(); err != nil {
		t.Error(err)
	}
}

func TestUpdateLimitsReadOnly(t *testing.T) {
	dev, pb := getLM75(t, limitReads([2]byte{0x4b, 0x00}, [2]byte{0x50, 0x80}))
	l, err := updateLimits(dev, math.NaN(), math.NaN())
	if err != nil {
		t.Fatal(err)
	}
	if l.Hysteresis != 75 || l.Overtemp != 80.5 {
		t.Errorf("limits %#v expected 75/80.5", l)
	}
	if err := pb.Close(); err != nil {
		t.Error(err)
	}
}

func TestUpdateLimitsRejected(t *testing.T) {
	// Overtemp 70 would fall below the current hysteresis of 75.
	dev, pb := getLM75(t, limitReads([2]byte{0x4b, 0x00}, [2]byte{0x50, 0x00}))
	if _, err := updateLimits(dev, 70, math.NaN()); err == nil {
		t.Error("expected an error")
	}
	if err := pb.Close(); err != nil {
		t.Error(err)
	}
}

func TestLimitsFlagsDefaultUnset(t *testing.T) {
	rootCmd, _ := newTestTree()
	if err := rootCmd.Parse([]string{"lm75", "limits", "-set-os", "80"}); err != nil {
		t.Fatal(err)
	}
	for _, c := range rootCmd.Subcommands[1].Subcommands {
		if c.Name != "limits" {
			continue
		}
		os := c.FlagSet.Lookup("set-os").Value.String()
		hyst := c.FlagSet.Lookup("set-hyst").Value.String()
		if os != "80" || hyst != "NaN" {
			t.Errorf("set-os=%s set-hyst=%s", os, hyst)
		}
		return
	}
	t.Fatal("no limits subcommand")
}
