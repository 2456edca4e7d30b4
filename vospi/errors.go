// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package vospi

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Capture. Transport errors from the
// PacketSource are never one of these: they're wrapped and returned as-is,
// bypassing retry entirely.
var (
	// ErrInvalidPacket means a packet was malformed (too short to hold a
	// header) or carried a segment number on packet 20 that decodes to 0 or
	// beyond SegmentsPerFrame. Capture also returns it when PacketSizeBytes
	// is smaller than the header or the frame buffer is too short.
	ErrInvalidPacket = errors.New("vospi: invalid packet")
	// ErrSyncLost means the resync budget (MaxResyncAttempts) was exhausted
	// without completing a frame; the Capturer falls back to Unsynced.
	ErrSyncLost = errors.New("vospi: sync lost")
	// ErrDiscardPacketFlood means more than MaxDiscardPackets discard
	// packets were seen in one attempt before the frame completed.
	ErrDiscardPacketFlood = errors.New("vospi: discard packet flood")
	// ErrCRCMismatch means a packet's CRC field didn't match its computed
	// CRC while Locked. While Seeking, CRC mismatches instead reset the
	// assembler's cursors and are absorbed.
	ErrCRCMismatch = errors.New("vospi: crc mismatch")
	// ErrTimeout means more than TimeoutPackets packets (discards included)
	// were read in one attempt without completing a frame.
	ErrTimeout = errors.New("vospi: timed out waiting for frame")
	// ErrRetryLimitExceeded means MaxFrameRetries was exhausted without
	// completing a frame, and no more specific error applies.
	ErrRetryLimitExceeded = errors.New("vospi: retry limit exceeded")
)

// SegmentOutOfOrderError means a packet 20 decoded a segment number that
// doesn't match the frame assembler's expected segment, while Locked.
type SegmentOutOfOrderError struct {
	Expected uint8
	Observed uint8
}

func (e *SegmentOutOfOrderError) Error() string {
	return fmt.Sprintf("vospi: segment out of order: expected %d, observed %d", e.Expected, e.Observed)
}

// LineOutOfOrderError means a packet number doesn't match the frame
// assembler's expected packet number, while Locked.
type LineOutOfOrderError struct {
	Expected uint16
	Observed uint16
}

func (e *LineOutOfOrderError) Error() string {
	return fmt.Sprintf("vospi: line out of order: expected %d, observed %d", e.Expected, e.Observed)
}
