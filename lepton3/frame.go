// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lepton3 drives a FLIR Lepton 3.x/3.5 connected over SPI (video)
// and I²C (command and control), assembling the VoSPI packet stream into
// 160x120 14 bit frames.
package lepton3

import (
	"encoding/binary"
	"image"
	"image/color"

	"github.com/cyrivs-labs/lepton3vospi/vospi"
)

// Width and Height are the Lepton 3.x/3.5 frame dimensions in pixels.
const (
	Width  = 160
	Height = 120
)

// Frame is a captured Lepton 3.x/3.5 image, 14 bit resolution stored as
// image.Gray16, values centered around 8192 according to the camera body
// temperature; each 1 increment is approximately 0.025°K.
type Frame struct {
	*image.Gray16
	Meta vospi.FrameMeta
}

func newFrame() *Frame {
	return &Frame{Gray16: image.NewGray16(image.Rect(0, 0, Width, Height))}
}

// decodeInto unpacks raw, a vospi-assembled frame buffer of big-endian 16
// bit pixels, into f.
func (f *Frame) decodeInto(raw []byte) {
	i := 0
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			v := binary.BigEndian.Uint16(raw[i : i+2])
			i += 2
			f.SetGray16(x, y, color.Gray16{Y: v})
		}
	}
}
