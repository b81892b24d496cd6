// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// sht4x is a package for interfacing with the Sensirion SHT-40, SHT-41, and
// SHT-45 sensors.
//
// Every command is a single byte. Measurement, heater and serial number
// commands answer with six bytes: a 16 bit word, its CRC, a second word and
// its CRC. A response is only used if both CRCs match.
//
// The driver performs one transaction per call and never retries. It takes no
// locks; the owner of the bus serializes access.
//
// # Datasheet
//
// https://sensirion.com/media/documents/33FD6951/67EB9032/HT_DS_Datasheet_SHT4x_5.pdf
//
// # Temperature Accuracy
//
// SHT-40 & SHT-41
//
//	Typical accuracy: ±0.2 °C
//
// SHT-45
//
//	Typical accuracy: ±0.1 °C
//
// # Humidity Accuracy
//
// SHT-40: typical ±1.8 %RH, SHT-41: typical ±1.8 %RH, SHT-45: typical
// ±1.0 %RH at 25 °C.
//
// All devices have a resolution of 0.01 °C and 0.01 %RH.
package sht4x

import (
	"errors"
	"fmt"
	"time"

	"github.com/fieldsense/envsense/common"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
)

// Precision selects the repeatability of a measurement. Higher precision
// takes longer.
type Precision byte

const (
	PrecisionHigh   Precision = 0xfd
	PrecisionMedium Precision = 0xf6
	PrecisionLow    Precision = 0xe0
)

func (p Precision) String() string {
	switch p {
	case PrecisionHigh:
		return "high"
	case PrecisionMedium:
		return "medium"
	case PrecisionLow:
		return "low"
	default:
		return fmt.Sprintf("Precision(0x%02x)", byte(p))
	}
}

// settle is the maximum measurement duration from the datasheet, rounded up.
func (p Precision) settle() (time.Duration, bool) {
	switch p {
	case PrecisionHigh:
		return 10 * time.Millisecond, true
	case PrecisionMedium:
		return 5 * time.Millisecond, true
	case PrecisionLow:
		return 2 * time.Millisecond, true
	}
	return 0, false
}

// Heater is a heater command: a power level and a pulse length. At the end of
// the pulse the device takes a high precision measurement.
type Heater byte

const (
	Heater200mW1s    Heater = 0x39
	Heater200mW100ms Heater = 0x32
	Heater110mW1s    Heater = 0x2f
	Heater110mW100ms Heater = 0x24
	Heater20mW1s     Heater = 0x1e
	Heater20mW100ms  Heater = 0x15
)

// HeaterPower represents a type for the heater power setting.
type HeaterPower int

// HeaterDuration represents a duration for turning the heater on.
type HeaterDuration time.Duration

const (
	// Power settings for the heater element.
	Power20mW HeaterPower = iota
	Power110mW
	Power200mW

	// Durations that you can turn the heater on for.
	Duration100ms HeaterDuration = HeaterDuration(100 * time.Millisecond)
	Duration1s    HeaterDuration = HeaterDuration(time.Second)
)

func (p HeaterPower) String() string {
	switch p {
	case Power20mW:
		return "20mW"
	case Power110mW:
		return "110mW"
	case Power200mW:
		return "200mW"
	default:
		return fmt.Sprintf("HeaterPower(%d)", int(p))
	}
}

// HeaterFor returns the heater command for powerLevel and duration.
func HeaterFor(powerLevel HeaterPower, duration HeaterDuration) (Heater, error) {
	switch duration {
	case Duration100ms:
		switch powerLevel {
		case Power20mW:
			return Heater20mW100ms, nil
		case Power110mW:
			return Heater110mW100ms, nil
		case Power200mW:
			return Heater200mW100ms, nil
		}
	case Duration1s:
		switch powerLevel {
		case Power20mW:
			return Heater20mW1s, nil
		case Power110mW:
			return Heater110mW1s, nil
		case Power200mW:
			return Heater200mW1s, nil
		}
	default:
		return 0, errors.New("sht4x: invalid heater duration")
	}
	return 0, errors.New("sht4x: invalid heater power")
}

// Power returns the heater power of the command.
func (h Heater) Power() HeaterPower {
	switch h {
	case Heater20mW1s, Heater20mW100ms:
		return Power20mW
	case Heater110mW1s, Heater110mW100ms:
		return Power110mW
	default:
		return Power200mW
	}
}

// Duration returns the heater pulse length of the command.
func (h Heater) Duration() HeaterDuration {
	switch h {
	case Heater200mW1s, Heater110mW1s, Heater20mW1s:
		return Duration1s
	default:
		return Duration100ms
	}
}

func (h Heater) valid() bool {
	switch h {
	case Heater200mW1s, Heater200mW100ms, Heater110mW1s, Heater110mW100ms, Heater20mW1s, Heater20mW100ms:
		return true
	}
	return false
}

func (h Heater) String() string {
	if !h.valid() {
		return fmt.Sprintf("Heater(0x%02x)", byte(h))
	}
	return fmt.Sprintf("%s for %s", h.Power(), time.Duration(h.Duration()))
}

const (
	// DefaultAddress is the I2C address of the SHT40-AD1B, SHT41 and SHT45.
	// The SHT40-BD1B answers at 0x45.
	DefaultAddress uint16 = 0x44

	cmdSoftReset        byte = 0x94
	cmdReadSerialNumber byte = 0x89

	serialSettle = 10 * time.Millisecond
	resetSettle  = 2 * time.Millisecond
	// Added to the heater pulse; the measurement follows the pulse.
	heaterMeasure = 10 * time.Millisecond
)

// Opts holds the configuration of a Dev.
type Opts struct {
	// Addr defaults to DefaultAddress.
	Addr uint16
	// Timeout bounds each bus phase. Defaults to common.DefaultTimeout.
	Timeout time.Duration
	// Log receives a debug trace of every transaction. May be nil.
	Log *logrus.Entry
}

// Dev represents a SHT-4X series temperature/humidity sensor
type Dev struct {
	t     common.Target
	sleep func(time.Duration)
}

// New returns a Dev that talks to the sensor through t. opts may be nil. New
// does not touch the bus.
func New(t common.Transport, opts *Opts) (*Dev, error) {
	if t == nil {
		return nil, errors.New("sht4x: nil transport")
	}
	o := Opts{}
	if opts != nil {
		o = *opts
	}
	if o.Addr == 0 {
		o.Addr = DefaultAddress
	}
	if o.Addr > 0x7f {
		return nil, fmt.Errorf("sht4x: invalid address 0x%x", o.Addr)
	}
	if o.Timeout == 0 {
		o.Timeout = common.DefaultTimeout
	}
	dev := &Dev{
		t: common.Target{
			Transport: t,
			Addr:      o.Addr,
			Timeout:   o.Timeout,
			Log:       common.Logger(o.Log).WithField("dev", "sht4x"),
		},
		sleep: time.Sleep,
	}
	return dev, nil
}

// setSleep replaces every wait the driver does.
func (dev *Dev) setSleep(f func(time.Duration)) {
	dev.sleep = f
	dev.t.SetSleep(f)
}

// command sends cmd and reads the six byte response once the device had
// settle to produce it.
func (dev *Dev) command(cmd byte, settle time.Duration) ([FrameLen]byte, error) {
	var r [FrameLen]byte
	err := dev.t.ExchangeAfter([]byte{cmd}, r[:], settle)
	return r, err
}

// Measure takes one measurement at the requested precision.
func (dev *Dev) Measure(p Precision) (Measurement, error) {
	settle, ok := p.settle()
	if !ok {
		return Measurement{}, fmt.Errorf("sht4x: invalid precision %s", p)
	}
	frame, err := dev.command(byte(p), settle)
	if err != nil {
		return Measurement{}, fmt.Errorf("sht4x: error reading device: %w", err)
	}
	m, err := DecodeMeasurement(frame)
	if err != nil {
		return Measurement{}, fmt.Errorf("sht4x: %w", err)
	}
	return m, nil
}

// Heat turns the heater on for the power and duration selected by h. After
// the pulse the heater turns itself off and the device measures. Enabling the
// heater can allow operation in condensing environments.
//
// Returns the temperature and humidity after the period has completed. Refer
// to section 4.9 of the datasheet.
func (dev *Dev) Heat(h Heater) (Measurement, error) {
	if !h.valid() {
		return Measurement{}, fmt.Errorf("sht4x: invalid heater command %s", h)
	}
	frame, err := dev.command(byte(h), time.Duration(h.Duration())+heaterMeasure)
	if err != nil {
		return Measurement{}, fmt.Errorf("sht4x: error setting heater: %w", err)
	}
	m, err := DecodeMeasurement(frame)
	if err != nil {
		return Measurement{}, fmt.Errorf("sht4x: %w", err)
	}
	return m, nil
}

// SetHeater is Heat with the command chosen by HeaterFor.
func (dev *Dev) SetHeater(powerLevel HeaterPower, duration HeaterDuration) (Measurement, error) {
	h, err := HeaterFor(powerLevel, duration)
	if err != nil {
		return Measurement{}, err
	}
	return dev.Heat(h)
}

// SoftReset issues a soft-reset to the device. Nothing is read back.
func (dev *Dev) SoftReset() error {
	if err := dev.t.Write([]byte{cmdSoftReset}); err != nil {
		return fmt.Errorf("sht4x: error resetting: %w", err)
	}
	dev.sleep(resetSettle)
	return nil
}

// SerialNumber returns the device serial number set at the factory.
func (dev *Dev) SerialNumber() (uint32, error) {
	frame, err := dev.command(cmdReadSerialNumber, serialSettle)
	if err != nil {
		return 0, fmt.Errorf("sht4x: error reading serial number: %w", err)
	}
	sn, err := DecodeSerial(frame)
	if err != nil {
		return 0, fmt.Errorf("sht4x: %w", err)
	}
	return sn, nil
}

// Sense reads temperature and humidity at high precision. On error e is left
// untouched.
func (dev *Dev) Sense(e *physic.Env) error {
	m, err := dev.Measure(PrecisionHigh)
	if err != nil {
		return err
	}
	env := m.Env()
	e.Temperature = env.Temperature
	e.Humidity = env.Humidity
	e.Pressure = 0
	return nil
}

// Precision returns the smallest change in readings the device can produce.
func (dev *Dev) Precision(e *physic.Env) {
	e.Temperature = physic.Kelvin / 100
	e.Humidity = physic.PercentRH / 100
	e.Pressure = 0
}

// Halt implements conn.Resource. The sensor returns to idle by itself after
// every command, so there is nothing to stop.
func (dev *Dev) Halt() error {
	return nil
}

// String returns a string representation of the device.
func (dev *Dev) String() string {
	return fmt.Sprintf("sht4x{0x%02x}", dev.t.Addr)
}

var _ conn.Resource = &Dev{}
