// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package vospi

import (
	"encoding/binary"
	"errors"
	"testing"
)

// mockPacketSource replays a canned sequence of packets, one ReadPacket call
// at a time. Reading past the end of the sequence returns errExhausted, a
// transport-level error distinct from the package's own sentinel errors.
type mockPacketSource struct {
	packets [][]byte
	pos     int
}

var errExhausted = errors.New("mock: packet source exhausted")

func (m *mockPacketSource) ReadPacket(packet []byte) error {
	if m.pos >= len(m.packets) {
		return errExhausted
	}
	copy(packet, m.packets[m.pos])
	m.pos++
	return nil
}

const testPayloadLen = 164 - packetHeaderBytes

// mkPacket builds one 164 byte wire packet with a correct CRC. Pass
// discardID != 0 to build a discard packet instead (its content is otherwise
// irrelevant).
func mkPacket(packetNumber int, segment uint8, payloadSeed byte, discardID uint16) []byte {
	p := make([]byte, 164)
	var id uint16
	if discardID != 0 {
		id = discardID
	} else {
		id = uint16(packetNumber) & packetNumberMask
		if packetNumber == segmentOnPacket20 {
			id |= uint16(segment&segmentBitsMask) << 12
		}
	}
	binary.BigEndian.PutUint16(p[0:2], id)
	for i := range p[packetHeaderBytes:] {
		p[packetHeaderBytes+i] = payloadSeed + byte(i)
	}
	crc, _ := packetCRC16(p)
	binary.BigEndian.PutUint16(p[2:4], crc)
	return p
}

// mkFrame builds the 240 packets making up one complete, well-ordered
// frame: 4 segments of 60 lines each, payload bytes seeded per segment so
// assembled pixels can be checked against their source segment.
func mkFrame(cfg Config) [][]byte {
	var packets [][]byte
	for seg := 1; seg <= cfg.SegmentsPerFrame; seg++ {
		seed := byte(seg * 9)
		for line := 0; line < cfg.LinesPerSegment; line++ {
			packets = append(packets, mkPacket(line, uint8(seg), seed, 0))
		}
	}
	return packets
}

func mkDiscard() []byte {
	return mkPacket(0, 0, 0, 0xF000)
}

func newTestCapturer(packets [][]byte) (*Capturer, Config) {
	cfg := DefaultConfig()
	return NewCapturer(&mockPacketSource{packets: packets}, cfg, nil), cfg
}

func TestCapture_cleanFrame(t *testing.T) {
	cfg := DefaultConfig()
	cap, _ := newTestCapturer(mkFrame(cfg))
	frame := make([]byte, cfg.RequiredFrameBufferLen())
	meta, err := cap.Capture(frame)
	if err != nil {
		t.Fatalf("Capture() err = %v, want nil", err)
	}
	if !meta.Valid {
		t.Fatal("meta.Valid = false, want true")
	}
	if cap.State() != Locked {
		t.Fatalf("State() = %v, want Locked", cap.State())
	}
	payloadLen := cfg.PayloadLen()
	for seg := 1; seg <= cfg.SegmentsPerFrame; seg++ {
		seed := byte(seg * 9)
		line0Off := (seg - 1) * cfg.LinesPerSegment * payloadLen
		if frame[line0Off] != seed {
			t.Errorf("segment %d first payload byte = %d, want %d", seg, frame[line0Off], seed)
		}
	}
}

func TestCapture_discardPacketsAreSkipped(t *testing.T) {
	cfg := DefaultConfig()
	frameP := mkFrame(cfg)
	var packets [][]byte
	packets = append(packets, mkDiscard(), mkDiscard())
	packets = append(packets, frameP...)
	cap, _ := newTestCapturer(packets)
	frame := make([]byte, cfg.RequiredFrameBufferLen())
	meta, err := cap.Capture(frame)
	if err != nil {
		t.Fatalf("Capture() err = %v, want nil", err)
	}
	if meta.DiscardPackets != 2 {
		t.Errorf("meta.DiscardPackets = %d, want 2", meta.DiscardPackets)
	}
	if cap.Diagnostics().DiscardCount != 2 {
		t.Errorf("Diagnostics().DiscardCount = %d, want 2", cap.Diagnostics().DiscardCount)
	}
}

func TestCapture_segmentDecodeOnlyFromPacket20(t *testing.T) {
	h, ok := parsePacketHeader(mkPacket(19, 2, 0, 0))
	if !ok {
		t.Fatal("parsePacketHeader failed")
	}
	if _, ok := h.decodeSegmentOnPacket20(); ok {
		t.Error("decodeSegmentOnPacket20() ok = true for packet 19, want false")
	}
	h, ok = parsePacketHeader(mkPacket(segmentOnPacket20, 2, 0, 0))
	if !ok {
		t.Fatal("parsePacketHeader failed")
	}
	segment, ok := h.decodeSegmentOnPacket20()
	if !ok || segment != 2 {
		t.Errorf("decodeSegmentOnPacket20() = (%d, %v), want (2, true)", segment, ok)
	}
}

func TestCapture_segmentZeroOnPacket20Rejected(t *testing.T) {
	cfg := DefaultConfig()
	packets := mkFrame(cfg)
	// Corrupt packet 20 of the first segment to carry segment 0.
	bad := mkPacket(segmentOnPacket20, 0, 9, 0)
	packets[segmentOnPacket20] = bad
	// A single attempt, so the rejection surfaces as the last error instead
	// of being retried against the rest of this one-frame stream.
	cfg.MaxFrameRetries = 0
	cap := NewCapturer(&mockPacketSource{packets: packets}, cfg, nil)
	frame := make([]byte, cfg.RequiredFrameBufferLen())
	_, err := cap.Capture(frame)
	if !errors.Is(err, ErrInvalidPacket) {
		t.Fatalf("Capture() err = %v, want ErrInvalidPacket", err)
	}
}

func TestCapture_crcValidationDetectsCorruption(t *testing.T) {
	cfg := DefaultConfig()
	packets := mkFrame(cfg)
	corrupt := append([]byte(nil), packets[30]...)
	corrupt[packetHeaderBytes] ^= 0xFF
	packets[30] = corrupt
	// Retry the capture after corruption: resetting cursors in Seeking
	// should let the same stream's later, uncorrupted repeat of the frame
	// succeed. Append a clean second frame to the stream.
	packets = append(packets, mkFrame(cfg)...)
	cap, _ := newTestCapturer(packets)
	frame := make([]byte, cfg.RequiredFrameBufferLen())
	meta, err := cap.Capture(frame)
	if err != nil {
		t.Fatalf("Capture() err = %v, want nil", err)
	}
	if meta.CRCErrors == 0 {
		t.Error("meta.CRCErrors = 0, want > 0")
	}
}

func TestCapture_firstGarbageThenValidFrameRecovers(t *testing.T) {
	cfg := DefaultConfig()
	var packets [][]byte
	// A handful of garbage packets with plausible-looking but wrong
	// sequence numbers, before a clean frame.
	packets = append(packets, mkPacket(5, 0, 1, 0), mkPacket(2, 0, 1, 0))
	packets = append(packets, mkFrame(cfg)...)
	cap, _ := newTestCapturer(packets)
	frame := make([]byte, cfg.RequiredFrameBufferLen())
	meta, err := cap.Capture(frame)
	if err != nil {
		t.Fatalf("Capture() err = %v, want nil", err)
	}
	if !meta.Valid {
		t.Fatal("meta.Valid = false, want true")
	}
}

func TestCapture_wrongSegmentOrderRejectedWhenLocked(t *testing.T) {
	cfg := DefaultConfig()
	cap, _ := newTestCapturer(mkFrame(cfg))
	frame := make([]byte, cfg.RequiredFrameBufferLen())
	if _, err := cap.Capture(frame); err != nil {
		t.Fatalf("first Capture() err = %v, want nil", err)
	}

	// Second stream: segment 2's packets arrive where segment 1 is expected.
	var packets [][]byte
	for line := 0; line < cfg.LinesPerSegment; line++ {
		packets = append(packets, mkPacket(line, 2, 18, 0))
	}
	cap.source = &mockPacketSource{packets: packets}
	_, err := cap.Capture(frame)
	var segErr *SegmentOutOfOrderError
	if !errors.As(err, &segErr) {
		t.Fatalf("Capture() err = %v, want *SegmentOutOfOrderError", err)
	}
}

func TestCapture_lineJumpRejectedWhenLocked(t *testing.T) {
	cfg := DefaultConfig()
	cap, _ := newTestCapturer(mkFrame(cfg))
	frame := make([]byte, cfg.RequiredFrameBufferLen())
	if _, err := cap.Capture(frame); err != nil {
		t.Fatalf("first Capture() err = %v, want nil", err)
	}

	packets := mkFrame(cfg)
	// Drop line 3 of segment 1, jumping straight to line 4.
	packets = append(packets[:3], packets[4:]...)
	cap.source = &mockPacketSource{packets: packets}
	_, err := cap.Capture(frame)
	var lineErr *LineOutOfOrderError
	if !errors.As(err, &lineErr) {
		t.Fatalf("Capture() err = %v, want *LineOutOfOrderError", err)
	}
}

func TestCapture_retriesAndResyncAreBounded(t *testing.T) {
	cfg := DefaultConfig()
	// A long run of discard packets never completes a frame. Each attempt
	// fails with ErrDiscardPacketFlood once MaxDiscardPackets is exceeded,
	// well before TimeoutPackets; the TimeoutPackets+10 packets here run out
	// during the fifth attempt, so Capture ends with a wrapped transport
	// error. Either way it must give up with an error rather than loop.
	var packets [][]byte
	for i := uint32(0); i < cfg.TimeoutPackets+10; i++ {
		packets = append(packets, mkDiscard())
	}
	cap, _ := newTestCapturer(packets)
	frame := make([]byte, cfg.RequiredFrameBufferLen())
	_, err := cap.Capture(frame)
	if err == nil {
		t.Fatal("Capture() err = nil, want a bounded failure")
	}
}

func TestCapture_captureTicksUsesSuppliedTickSource(t *testing.T) {
	cfg := DefaultConfig()
	var tick uint64 = 42
	c := NewCapturer(&mockPacketSource{packets: mkFrame(cfg)}, cfg, func() uint64 { return tick })
	frame := make([]byte, cfg.RequiredFrameBufferLen())
	meta, err := c.Capture(frame)
	if err != nil {
		t.Fatalf("Capture() err = %v, want nil", err)
	}
	if meta.CaptureTicks != 42 {
		t.Errorf("meta.CaptureTicks = %d, want 42", meta.CaptureTicks)
	}
}

func TestCapture_transportErrorBypassesRetry(t *testing.T) {
	cfg := DefaultConfig()
	cap, _ := newTestCapturer(nil)
	frame := make([]byte, cfg.RequiredFrameBufferLen())
	_, err := cap.Capture(frame)
	if !errors.Is(err, errExhausted) {
		t.Fatalf("Capture() err = %v, want wrapped errExhausted", err)
	}
}

func TestCapture_defaultConfigMatchesFrameGeometry(t *testing.T) {
	cfg := DefaultConfig()
	if got, want := cfg.RequiredFrameBufferLen(), 160*120*2; got != want {
		t.Errorf("RequiredFrameBufferLen() = %d, want %d", got, want)
	}
}
