// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
)

// Range of the swatch colour scale, blue at the bottom and red at the top.
const (
	swatchMin = -20.0
	swatchMax = 40.0
)

// temperatureColor maps a temperature onto a blue to red gradient.
func temperatureColor(celsius float32) color.NRGBA {
	f := (float64(celsius) - swatchMin) / (swatchMax - swatchMin)
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}
	return color.NRGBA{R: byte(255 * f), G: 32, B: byte(255 * (1 - f)), A: 255}
}

// swatch returns a coloured block for the temperature, followed by a reset.
func swatch(p *ansi256.Palette, celsius float32) string {
	return p.Block(temperatureColor(celsius)) + "\033[0m"
}

func writeJSON(w io.Writer, data any) error {
	j, err := json.MarshalIndent(data, "", " ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", j)
	return err
}

// printer writes results in text or json form.
type printer struct {
	w       io.Writer
	json    bool
	palette *ansi256.Palette
}

func newPrinter(w io.Writer, asJSON bool) *printer {
	return &printer{w: w, json: asJSON, palette: ansi256.Default}
}

type measurementOut struct {
	Sensor      string   `json:"sensor"`
	Temperature float32  `json:"temperature_c"`
	Humidity    *float32 `json:"relative_humidity,omitempty"`
	Raw         *int16   `json:"raw,omitempty"`
}

func (p *printer) measurement(m measurementOut) error {
	if p.json {
		return writeJSON(p.w, m)
	}
	if _, err := fmt.Fprintf(p.w, "%s  temperature %7.2f°C\n", swatch(p.palette, m.Temperature), m.Temperature); err != nil {
		return err
	}
	if m.Humidity != nil {
		if _, err := fmt.Fprintf(p.w, "    humidity    %7.2f%%\n", *m.Humidity); err != nil {
			return err
		}
	}
	return nil
}

func (p *printer) value(key string, v any, text string) error {
	if p.json {
		return writeJSON(p.w, map[string]any{key: v})
	}
	_, err := fmt.Fprintln(p.w, text)
	return err
}
