// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package vospi

import "testing"

func TestPacketCRC16_shortPacketReturnsFalse(t *testing.T) {
	if _, ok := packetCRC16([]byte{1, 2, 3}); ok {
		t.Error("packetCRC16() ok = true for a 3 byte packet, want false")
	}
}

func TestPacketCRC16_masksIDUpperNibble(t *testing.T) {
	base := []byte{0x10, 0x14, 0x00, 0x00, 0xAB, 0xCD, 0x10, 0x20, 0x30, 0x40}
	withDiscardNibble := append([]byte(nil), base...)
	withDiscardNibble[0] = 0xF0 | (base[0] & 0x0F)
	want, _ := packetCRC16(base)
	got, _ := packetCRC16(withDiscardNibble)
	if got != want {
		t.Errorf("packetCRC16() with upper nibble set = %#x, want %#x", got, want)
	}
}

func TestPacketCRC16_zerosCRCFieldBytes(t *testing.T) {
	base := []byte{0x10, 0x14, 0x00, 0x00, 0xAB, 0xCD, 0x10, 0x20, 0x30, 0x40}
	withCRCFilled := append([]byte(nil), base...)
	withCRCFilled[2], withCRCFilled[3] = 0xFF, 0xFF
	want, _ := packetCRC16(base)
	got, _ := packetCRC16(withCRCFilled)
	if got != want {
		t.Errorf("packetCRC16() with crc field filled = %#x, want %#x", got, want)
	}
}

func TestPacketCRC16_knownVector(t *testing.T) {
	packet := []byte{0x10, 0x14, 0x00, 0x00, 0xAB, 0xCD, 0x10, 0x20, 0x30, 0x40}
	got, ok := packetCRC16(packet)
	if !ok {
		t.Fatal("packetCRC16() ok = false, want true")
	}
	if want := uint16(0x2F69); got != want {
		t.Errorf("packetCRC16() = %#x, want %#x", got, want)
	}
}
