// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sht4x_test

import (
	"log"

	"github.com/fieldsense/envsense/common"
	"github.com/fieldsense/envsense/sht4x"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Example shows creating an SHT-4X sensor and reading from it.
func Example() {
	if _, err := host.Init(); err != nil {
		log.Fatal("Error calling host.init()")
	}
	bus, err := i2creg.Open("")
	if err != nil {
		log.Fatal(err)
	}
	defer bus.Close()

	dev, err := sht4x.New(common.NewI2CTransport(bus), nil)
	if err != nil {
		log.Fatal(err)
	}

	sn, err := dev.SerialNumber()
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Serial number: 0x%08x\n", sn)

	m, err := dev.Measure(sht4x.PrecisionHigh)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Temperature: %.2f°C   Humidity: %.2f%%\n", m.Temperature, m.Humidity)
}
