// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package vospi

// readOneFrame reads packets from source until a full frame has been
// assembled into frame, or an error occurs. packetBuf is reused across reads
// and must be at least cfg.PacketSizeBytes long; frame must be at least
// cfg.RequiredFrameBufferLen() long.
//
// locked selects how aggressively ordering/CRC problems are treated: while
// locked, a problem fails the attempt immediately (the caller owns deciding
// whether that bypasses retry); while not locked (Seeking), the same
// problems just reset the assembler's cursors and scanning resumes.
//
// On success it sets *state to Locked; on every other path *state is left
// for the caller to update.
func readOneFrame(source PacketSource, cfg Config, packetBuf, frame []byte, meta *FrameMeta, diag *Diagnostics, locked bool, state *SyncState) error {
	payloadLen := cfg.PayloadLen()
	expectedSegment := 1
	expectedPacketNumber := 0
	var packetsSeen uint32

	for expectedSegment <= cfg.SegmentsPerFrame {
		if err := source.ReadPacket(packetBuf); err != nil {
			return err
		}
		packetsSeen++
		if packetsSeen > cfg.TimeoutPackets {
			return ErrTimeout
		}

		h, ok := parsePacketHeader(packetBuf)
		if !ok {
			return ErrInvalidPacket
		}

		if h.isDiscard {
			diag.DiscardCount++
			meta.DiscardPackets++
			if meta.DiscardPackets > cfg.MaxDiscardPackets {
				return ErrDiscardPacketFlood
			}
			continue
		}

		if cfg.EnableCRC && !validatePacketCRC(packetBuf) {
			diag.CRCErrorCount++
			meta.CRCErrors++
			if locked {
				return ErrCRCMismatch
			}
			expectedSegment, expectedPacketNumber = 1, 0
			continue
		}

		packetNumber := int(h.packetNumber)

		if !locked && expectedSegment == 1 && expectedPacketNumber == 0 && packetNumber != 0 {
			// Still scanning for a start-of-frame; drop anything that isn't
			// packet 0 of segment 1.
			continue
		}

		if packetNumber != expectedPacketNumber {
			if locked {
				diag.BadLineCount++
				meta.BadLineCount++
				return &LineOutOfOrderError{Expected: uint16(expectedPacketNumber), Observed: uint16(packetNumber)}
			}
			expectedSegment, expectedPacketNumber = 1, 0
			continue
		}

		if packetNumber == segmentOnPacket20 {
			segment, ok := h.decodeSegmentOnPacket20()
			if !ok || segment == 0 || int(segment) > cfg.SegmentsPerFrame {
				return ErrInvalidPacket
			}
			if int(segment) != expectedSegment {
				if locked {
					return &SegmentOutOfOrderError{Expected: uint8(expectedSegment), Observed: segment}
				}
				expectedSegment, expectedPacketNumber = 1, 0
				continue
			}
		}

		frameLine := (expectedSegment-1)*cfg.LinesPerSegment + expectedPacketNumber
		off := frameLine * payloadLen
		copy(frame[off:off+payloadLen], packetBuf[packetHeaderBytes:cfg.PacketSizeBytes])

		expectedPacketNumber++
		if expectedPacketNumber == cfg.LinesPerSegment {
			expectedPacketNumber = 0
			expectedSegment++
		}
	}

	*state = Locked
	return nil
}
