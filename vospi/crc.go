// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package vospi

// crc16Poly is the CCITT polynomial used by the Lepton VoSPI packet CRC.
const crc16Poly = 0x1021

// PacketCRC16 computes the VoSPI packet CRC over d, the full wire packet
// including header. It's exported for packet sources that need to
// synthesize well-formed packets, such as FakePacketSource.
func PacketCRC16(d []byte) (crc uint16, ok bool) {
	return packetCRC16(d)
}

// packetCRC16 computes the VoSPI packet CRC over d, the full 164 byte wire
// packet including header. The computation normalizes the header bits that
// the CRC itself doesn't cover: the packet number's discard nibble in
// byte 0, and the CRC field itself in bytes 2 and 3.
//
// It reports ok=false if d is too short to contain a header.
func packetCRC16(d []byte) (crc uint16, ok bool) {
	if len(d) < packetHeaderBytes {
		return 0, false
	}
	var c uint16
	for i, b := range d {
		switch i {
		case 0:
			b &= 0x0F
		case 2, 3:
			b = 0
		}
		c ^= uint16(b) << 8
		for bit := 0; bit < 8; bit++ {
			if c&0x8000 != 0 {
				c = (c << 1) ^ crc16Poly
			} else {
				c <<= 1
			}
		}
	}
	return c, true
}
