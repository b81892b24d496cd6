// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.
//
// lm75 provides a package for interfacing an NXP LM75A / LM75ADP I2C
// temperature sensor.
//
// Range: -55°C - 125°C
//
// Accuracy: +/- 2°C
//
// Resolution: 0.125°C
//
// The temperature register is a big-endian two's complement value in units of
// 1/256°C, of which the device fills the top 11 bits. The limit registers
// (Thyst and Tos) use the same layout with 9 significant bits.
//
// There is no checksum on this part. Each call is one transaction; the driver
// keeps no state between calls.
//
// For detailed information, refer to the [datasheet].
//
// [datasheet]: https://www.nxp.com/docs/en/data-sheet/LM75A.pdf
package lm75
