// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lm75

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fieldsense/envsense/common"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
)

// Register is a pointer register value.
type Register byte

const (
	RegTemperature Register = 0x00
	RegConfig      Register = 0x01
	RegHysteresis  Register = 0x02
	RegOvertemp    Register = 0x03
)

// Config is the value of the configuration register.
type Config byte

const (
	// ConfigShutdown stops conversions. The registers stay readable.
	ConfigShutdown Config = 1 << 0
	// ConfigInterrupt runs the OS output in interrupt mode instead of
	// comparator mode.
	ConfigInterrupt Config = 1 << 1
	// ConfigOSActiveHigh makes the OS output active high.
	ConfigOSActiveHigh Config = 1 << 2

	// Number of consecutive faults before OS trips.
	FaultQueue1 Config = 0 << 3
	FaultQueue2 Config = 1 << 3
	FaultQueue4 Config = 2 << 3
	FaultQueue6 Config = 3 << 3

	faultQueueMask Config = 3 << 3

	// DefaultConfig is what Configure writes when nothing else is asked:
	// normal operation with OS in interrupt mode.
	DefaultConfig = ConfigInterrupt
)

func (c Config) String() string {
	var parts []string
	if c&ConfigShutdown != 0 {
		parts = append(parts, "shutdown")
	} else {
		parts = append(parts, "normal")
	}
	if c&ConfigInterrupt != 0 {
		parts = append(parts, "interrupt")
	} else {
		parts = append(parts, "comparator")
	}
	if c&ConfigOSActiveHigh != 0 {
		parts = append(parts, "active-high")
	} else {
		parts = append(parts, "active-low")
	}
	parts = append(parts, fmt.Sprintf("queue=%d", []int{1, 2, 4, 6}[(c&faultQueueMask)>>3]))
	return strings.Join(parts, ",")
}

const (
	// DefaultAddress is the address with A0-A2 tied low.
	DefaultAddress uint16 = 0x48

	// The minimum temperature the device can read.
	MinimumTemperature float32 = -55
	// The maximum temperature the device can read.
	MaximumTemperature float32 = 125

	resolution = physic.Kelvin / 8
)

// Reading is the content of the temperature register.
type Reading struct {
	// Raw is the register as a signed 16 bit value.
	Raw int16
	// Celsius is Raw / 256.
	Celsius float32
}

// RawToCelsius converts a temperature or limit register value to °C.
func RawToCelsius(raw int16) float32 {
	return float32(raw) / 256.0
}

// celsiusToRaw encodes a limit register value. Limits have 0.5°C steps.
func celsiusToRaw(c float32) (int16, error) {
	if c < MinimumTemperature || c > MaximumTemperature || math.IsNaN(float64(c)) {
		return 0, fmt.Errorf("lm75: limit %.1f°C out of range", c)
	}
	return int16(math.Round(float64(c)*2)) << 7, nil
}

// Limits holds the thermostat thresholds in °C. OS asserts above Overtemp
// and releases below Hysteresis.
type Limits struct {
	Hysteresis float32
	Overtemp   float32
}

// Opts holds the configuration of a Dev.
type Opts struct {
	// Addr defaults to DefaultAddress.
	Addr uint16
	// Timeout bounds each bus phase. Defaults to common.DefaultTimeout.
	Timeout time.Duration
	// Log receives a debug trace of every transaction. May be nil.
	Log *logrus.Entry
}

// Dev represents a LM75 sensor.
type Dev struct {
	t common.Target
}

// New returns a Dev that talks to the sensor through t. opts may be nil. New
// does not touch the bus; call Configure to set the operating mode.
func New(t common.Transport, opts *Opts) (*Dev, error) {
	if t == nil {
		return nil, errors.New("lm75: nil transport")
	}
	o := Opts{}
	if opts != nil {
		o = *opts
	}
	if o.Addr == 0 {
		o.Addr = DefaultAddress
	}
	if o.Addr > 0x7f {
		return nil, fmt.Errorf("lm75: invalid address 0x%x", o.Addr)
	}
	if o.Timeout == 0 {
		o.Timeout = common.DefaultTimeout
	}
	return &Dev{t: common.Target{
		Transport: t,
		Addr:      o.Addr,
		Timeout:   o.Timeout,
		Log:       common.Logger(o.Log).WithField("dev", "lm75"),
	}}, nil
}

// readRegister returns a two byte register.
func (dev *Dev) readRegister(reg Register) (int16, error) {
	var r [2]byte
	if err := dev.t.Exchange([]byte{byte(reg)}, r[:]); err != nil {
		return 0, err
	}
	return int16(uint16(r[0])<<8 | uint16(r[1])), nil
}

// ReadTemperature returns the last conversion result.
func (dev *Dev) ReadTemperature() (Reading, error) {
	raw, err := dev.readRegister(RegTemperature)
	if err != nil {
		return Reading{}, fmt.Errorf("lm75: error reading temperature: %w", err)
	}
	return Reading{Raw: raw, Celsius: RawToCelsius(raw)}, nil
}

// Configure writes the configuration register. The value is not read back.
func (dev *Dev) Configure(c Config) error {
	if err := dev.t.Write([]byte{byte(RegConfig), byte(c)}); err != nil {
		return fmt.Errorf("lm75: error writing configuration: %w", err)
	}
	return nil
}

// ReadConfig returns the configuration register.
func (dev *Dev) ReadConfig() (Config, error) {
	var r [1]byte
	if err := dev.t.Exchange([]byte{byte(RegConfig)}, r[:]); err != nil {
		return 0, fmt.Errorf("lm75: error reading configuration: %w", err)
	}
	return Config(r[0]), nil
}

// ReadLimits returns the thermostat thresholds.
func (dev *Dev) ReadLimits() (Limits, error) {
	hyst, err := dev.readRegister(RegHysteresis)
	if err != nil {
		return Limits{}, fmt.Errorf("lm75: error reading hysteresis: %w", err)
	}
	tos, err := dev.readRegister(RegOvertemp)
	if err != nil {
		return Limits{}, fmt.Errorf("lm75: error reading overtemperature: %w", err)
	}
	return Limits{Hysteresis: RawToCelsius(hyst), Overtemp: RawToCelsius(tos)}, nil
}

// SetLimits writes the thermostat thresholds, rounded to 0.5°C. Once rounded,
// Hysteresis must be below Overtemp. Nothing is written if a check fails.
func (dev *Dev) SetLimits(l Limits) error {
	hyst, err := celsiusToRaw(l.Hysteresis)
	if err != nil {
		return err
	}
	tos, err := celsiusToRaw(l.Overtemp)
	if err != nil {
		return err
	}
	if hyst >= tos {
		return fmt.Errorf("lm75: hysteresis %.1f°C must be below overtemperature %.1f°C", RawToCelsius(hyst), RawToCelsius(tos))
	}
	for _, w := range []struct {
		reg Register
		val int16
	}{{RegHysteresis, hyst}, {RegOvertemp, tos}} {
		if err := dev.t.Write([]byte{byte(w.reg), byte(uint16(w.val) >> 8), byte(w.val)}); err != nil {
			return fmt.Errorf("lm75: error writing limit: %w", err)
		}
	}
	return nil
}

// Sense reads the temperature. Implements the single-shot part of
// physic.SenseEnv.
func (dev *Dev) Sense(env *physic.Env) error {
	r, err := dev.ReadTemperature()
	if err != nil {
		return err
	}
	env.Temperature = physic.ZeroCelsius + physic.Temperature(float64(r.Celsius)*float64(physic.Kelvin))
	env.Humidity = 0
	env.Pressure = 0
	return nil
}

// Precision returns the sensor's precision, or minimum value between steps the
// device can make. Note that the accuracy of the device is +/- 2 degrees
// Celsius.
func (dev *Dev) Precision(env *physic.Env) {
	env.Temperature = resolution
	env.Pressure = 0
	env.Humidity = 0
}

// Halt implements conn.Resource. The device converts continuously on its own;
// use Configure with ConfigShutdown to stop it.
func (dev *Dev) Halt() error {
	return nil
}

func (dev *Dev) String() string {
	return fmt.Sprintf("lm75{0x%02x}", dev.t.Addr)
}

var _ conn.Resource = &Dev{}
