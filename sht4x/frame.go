// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sht4x

import (
	"github.com/fieldsense/envsense/common"
	"periph.io/x/conn/v3/physic"
)

// FrameLen is the length of every response the device sends: two data words,
// each followed by its CRC.
const FrameLen = 6

const countDivisor = 65535.0

// Measurement is one temperature/humidity reading.
type Measurement struct {
	// Temperature in °C.
	Temperature float32
	// Humidity is relative humidity in percent. It is not clamped: codes at
	// either end of the range give values slightly below 0 or above 100.
	Humidity float32
}

// Env returns the measurement in periph units.
func (m Measurement) Env() physic.Env {
	return physic.Env{
		Temperature: physic.ZeroCelsius + physic.Temperature(float64(m.Temperature)*float64(physic.Kelvin)),
		Humidity:    physic.RelativeHumidity(float64(m.Humidity) * float64(physic.PercentRH)),
	}
}

// RawToCelsius converts a temperature code to °C.
//
//	T = -45 + 175 * count / 65535
func RawToCelsius(raw uint16) float32 {
	return float32(-45.0 + 175.0*(float64(raw)/countDivisor))
}

// RawToRelativeHumidity converts a humidity code to %RH.
//
//	RH = -6 + 125 * count / 65535
func RawToRelativeHumidity(raw uint16) float32 {
	return float32(-6.0 + 125.0*(float64(raw)/countDivisor))
}

// splitFrame returns both data words after checking both CRCs.
func splitFrame(frame [FrameLen]byte, first, second string) (uint16, uint16, error) {
	a := uint16(frame[0])<<8 | uint16(frame[1])
	b := uint16(frame[3])<<8 | uint16(frame[4])
	err := common.CheckWords([]string{first, second}, []uint16{a, b}, []byte{frame[2], frame[5]})
	return a, b, err
}

// DecodeMeasurement verifies a measurement response and converts it. If
// either word fails its CRC the result is a *common.ChecksumError and no
// measurement.
func DecodeMeasurement(frame [FrameLen]byte) (Measurement, error) {
	t, rh, err := splitFrame(frame, "temperature", "humidity")
	if err != nil {
		return Measurement{}, err
	}
	return Measurement{Temperature: RawToCelsius(t), Humidity: RawToRelativeHumidity(rh)}, nil
}

// DecodeSerial verifies a serial number response. The first word is the high
// half of the serial number.
func DecodeSerial(frame [FrameLen]byte) (uint32, error) {
	msb, lsb, err := splitFrame(frame, "serial msb", "serial lsb")
	if err != nil {
		return 0, err
	}
	return uint32(msb)<<16 | uint32(lsb), nil
}
