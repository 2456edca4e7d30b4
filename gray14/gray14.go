// Copyright 2017 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gray14 provides small statistics helpers over the 14 bit
// intensity values a Lepton frame stores as image.Gray16.
package gray14

import "image"

// Min returns the lowest pixel value in i. A pixel value of 0 means no
// reading has landed there yet, so it's excluded; Min of an image with no
// non-zero pixel is 0xFFFF.
func Min(i *image.Gray16) uint16 {
	b := i.Bounds()
	min := uint16(0xFFFF)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if v := i.Gray16At(x, y).Y; v != 0 && v < min {
				min = v
			}
		}
	}
	return min
}

// Max returns the highest pixel value in i.
func Max(i *image.Gray16) uint16 {
	b := i.Bounds()
	var max uint16
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if v := i.Gray16At(x, y).Y; v > max {
				max = v
			}
		}
	}
	return max
}
