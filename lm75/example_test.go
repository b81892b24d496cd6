// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lm75_test

import (
	"fmt"
	"log"

	"github.com/fieldsense/envsense/common"
	"github.com/fieldsense/envsense/lm75"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

func Example() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	bus, err := i2creg.Open("")
	if err != nil {
		log.Fatal(err)
	}
	defer bus.Close()

	dev, err := lm75.New(common.NewI2CTransport(bus), &lm75.Opts{Addr: lm75.DefaultAddress})
	if err != nil {
		log.Fatal(err)
	}
	if err := dev.Configure(lm75.DefaultConfig); err != nil {
		log.Fatal(err)
	}
	r, err := dev.ReadTemperature()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Temperature: %.3f°C\n", r.Celsius)
}
