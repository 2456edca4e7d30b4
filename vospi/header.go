// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package vospi

import "encoding/binary"

const (
	packetDiscardMask = 0xF000
	packetNumberMask  = 0x0FFF
	segmentBitsMask   = 0x7
	segmentOnPacket20 = 20
)

// packetHeader is the decoded 4 byte VoSPI packet header: a 16 bit packet
// ID word (discard nibble + line/packet number) followed by a 16 bit CRC.
type packetHeader struct {
	packetID     uint16
	packetNumber uint16
	crc          uint16
	isDiscard    bool
}

// parsePacketHeader decodes the header of a wire packet. It reports ok=false
// if the packet is too short to contain a 4 byte header.
func parsePacketHeader(packet []byte) (packetHeader, bool) {
	if len(packet) < packetHeaderBytes {
		return packetHeader{}, false
	}
	id := binary.BigEndian.Uint16(packet[0:2])
	crc := binary.BigEndian.Uint16(packet[2:4])
	return packetHeader{
		packetID:     id,
		packetNumber: id & packetNumberMask,
		crc:          crc,
		isDiscard:    id&packetDiscardMask == packetDiscardMask,
	}, true
}

// decodeSegmentOnPacket20 extracts the segment number carried in the top
// bits of the packet ID, valid only on packet number 20. It reports ok=false
// if the header isn't packet 20. The returned segment is whatever the 3
// segment bits hold, 0..7; the caller rejects 0 and values beyond
// SegmentsPerFrame.
func (h packetHeader) decodeSegmentOnPacket20() (segment uint8, ok bool) {
	if h.packetNumber != segmentOnPacket20 {
		return 0, false
	}
	return uint8((h.packetID >> 12) & segmentBitsMask), true
}

// validatePacketCRC reports whether packet's CRC field matches the CRC
// computed over its normalized bytes.
func validatePacketCRC(packet []byte) bool {
	h, ok := parsePacketHeader(packet)
	if !ok {
		return false
	}
	want, ok := packetCRC16(packet)
	if !ok {
		return false
	}
	return h.crc == want
}
