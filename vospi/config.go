// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package vospi implements the robust frame-capture engine for the FLIR
// Lepton 3.x/3.5 Video over SPI (VoSPI) protocol: packet header and CRC
// decoding, the Unsynced/Seeking/Locked sync-state machine, the frame
// assembler that validates packet and segment ordering while writing pixel
// data, and the bounded retry/resync capture controller.
//
// The package has no opinion on the transport: callers supply a
// PacketSource, typically backed by a SPI bus, or by a canned sequence of
// packets in tests.
package vospi

// Config holds the tunables for a capture attempt. The zero value is not
// useful; use DefaultConfig to get Lepton 3.x/3.5 defaults.
type Config struct {
	// EnableCRC, when false, skips CRC validation entirely (discard packets
	// are still honored).
	EnableCRC bool
	// MaxResyncAttempts bounds the number of resyncs per Capture call.
	// Exceeding it fails with ErrSyncLost.
	MaxResyncAttempts uint32
	// MaxFrameRetries bounds the number of retries per Capture call: at most
	// MaxFrameRetries+1 attempts are made. Exceeding it fails with the last
	// attempt's error, or ErrRetryLimitExceeded if there is none.
	MaxFrameRetries uint32
	// PacketSizeBytes is the wire packet size, header included.
	PacketSizeBytes int
	// LinesPerSegment is the number of lines in one segment.
	LinesPerSegment int
	// SegmentsPerFrame is the number of segments in one frame.
	SegmentsPerFrame int
	// MaxDiscardPackets bounds discard packets tolerated in one attempt.
	// Exceeding it fails with ErrDiscardPacketFlood.
	MaxDiscardPackets uint32
	// TimeoutPackets bounds the packets (discards included) read in one
	// attempt. Exceeding it fails with ErrTimeout.
	TimeoutPackets uint32
	// BackoffPacketReads is the number of packets drained from the source
	// between attempts, to land the next attempt on a fresh word boundary.
	BackoffPacketReads uint32
}

// DefaultConfig returns the Lepton 3.x/3.5 defaults: 164 byte packets, 60
// lines per segment, 4 segments per frame, CRC enabled.
func DefaultConfig() Config {
	return Config{
		EnableCRC:          true,
		MaxResyncAttempts:  20,
		MaxFrameRetries:    4,
		PacketSizeBytes:    164,
		LinesPerSegment:    60,
		SegmentsPerFrame:   4,
		MaxDiscardPackets:  600,
		TimeoutPackets:     3000,
		BackoffPacketReads: 2,
	}
}

const packetHeaderBytes = 4

// PayloadLen returns the per-packet payload size, PacketSizeBytes minus the
// 4 byte header. It is 0 if PacketSizeBytes is too small to hold a header.
func (c Config) PayloadLen() int {
	if c.PacketSizeBytes < packetHeaderBytes {
		return 0
	}
	return c.PacketSizeBytes - packetHeaderBytes
}

// RequiredFrameBufferLen returns the pixel buffer length a Capture call
// needs: PayloadLen * LinesPerSegment * SegmentsPerFrame.
func (c Config) RequiredFrameBufferLen() int {
	return c.PayloadLen() * c.LinesPerSegment * c.SegmentsPerFrame
}
