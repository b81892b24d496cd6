// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package envsense is a container for the SHT4x and LM75 I²C sensor drivers.
//
// The drivers live in the sht4x and lm75 packages. Both talk to the bus
// through common.Transport; common.NewI2CTransport adapts a periph.io bus.
// The envsense command under cmd/ exposes every driver operation.
package envsense
