// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package vospi

import "fmt"

// Capturer drives one PacketSource through repeated frame captures,
// tracking sync state and cumulative diagnostics across calls.
type Capturer struct {
	source PacketSource
	cfg    Config
	// now returns a monotonic tick count stamped into each FrameMeta. It
	// defaults to a zero-returning stub; callers that care about
	// CaptureTicks should supply their own via NewCapturer.
	now func() uint64

	state            SyncState
	firstValidSynced bool
	diag             Diagnostics

	packetBuf []byte
}

// NewCapturer builds a Capturer reading from source under cfg. tick is
// called once per Capture attempt to stamp FrameMeta.CaptureTicks; pass nil
// to leave CaptureTicks at 0.
func NewCapturer(source PacketSource, cfg Config, tick func() uint64) *Capturer {
	if tick == nil {
		tick = func() uint64 { return 0 }
	}
	return &Capturer{
		source:    source,
		cfg:       cfg,
		now:       tick,
		state:     Unsynced,
		packetBuf: make([]byte, cfg.PacketSizeBytes),
	}
}

// State returns the Capturer's current sync state.
func (c *Capturer) State() SyncState { return c.state }

// Diagnostics returns a snapshot of the cumulative, never-reset counters.
func (c *Capturer) Diagnostics() Diagnostics { return c.diag }

// Capture assembles one frame into frame, which must be at least
// cfg.RequiredFrameBufferLen() long. It retries and resyncs internally per
// cfg.MaxFrameRetries/MaxResyncAttempts, and returns the FrameMeta for the
// attempt that finally succeeded.
//
// Transport errors returned by the PacketSource always bypass retry and are
// returned immediately, wrapped for errors.Is/errors.As. While Locked, a
// CRC mismatch or an ordering error also bypasses retry and is returned
// immediately: a well-synchronized stream shouldn't produce them, so
// absorbing them as noise would hide a real problem.
func (c *Capturer) Capture(frame []byte) (FrameMeta, error) {
	if c.cfg.PacketSizeBytes < packetHeaderBytes {
		return FrameMeta{}, ErrInvalidPacket
	}
	if len(c.packetBuf) < c.cfg.PacketSizeBytes {
		c.packetBuf = make([]byte, c.cfg.PacketSizeBytes)
	}
	if len(frame) < c.cfg.RequiredFrameBufferLen() {
		return FrameMeta{}, ErrInvalidPacket
	}

	var resyncAttempts, frameAttempts uint32
	var lastErr error

	for frameAttempts <= c.cfg.MaxFrameRetries {
		if resyncAttempts > c.cfg.MaxResyncAttempts {
			c.state = Unsynced
			return FrameMeta{}, ErrSyncLost
		}

		if c.firstValidSynced {
			c.state = Locked
		} else {
			c.state = Seeking
		}

		meta := FrameMeta{CaptureTicks: c.now()}
		locked := c.state == Locked

		err := readOneFrame(c.source, c.cfg, c.packetBuf, frame, &meta, &c.diag, locked, &c.state)
		if err == nil {
			c.firstValidSynced = true
			meta.Valid = true
			return meta, nil
		}

		if isTransportError(err) {
			return FrameMeta{}, fmt.Errorf("vospi: %w", err)
		}

		immediateLocked := locked && isOrderingOrCRCError(err)

		c.diag.ResyncCount++
		resyncAttempts++
		frameAttempts++
		meta.ResyncCount++
		c.state = Unsynced
		lastErr = err

		if immediateLocked {
			return FrameMeta{}, lastErr
		}

		for i := uint32(0); i < c.cfg.BackoffPacketReads; i++ {
			if err := c.source.ReadPacket(c.packetBuf); err != nil {
				return FrameMeta{}, fmt.Errorf("vospi: %w", err)
			}
		}

		if resyncAttempts > c.cfg.MaxResyncAttempts {
			c.state = Unsynced
			return FrameMeta{}, ErrSyncLost
		}
		if frameAttempts > c.cfg.MaxFrameRetries {
			if lastErr != nil {
				return FrameMeta{}, lastErr
			}
			return FrameMeta{}, ErrRetryLimitExceeded
		}
	}

	if lastErr != nil {
		return FrameMeta{}, lastErr
	}
	return FrameMeta{}, ErrRetryLimitExceeded
}

// isOrderingOrCRCError reports whether err is one of the errors that, while
// Locked, bypasses retry instead of being absorbed: a CRC mismatch, a line
// out of order, or a segment out of order.
func isOrderingOrCRCError(err error) bool {
	if err == ErrCRCMismatch {
		return true
	}
	switch err.(type) {
	case *LineOutOfOrderError, *SegmentOutOfOrderError:
		return true
	}
	return false
}

// isTransportError reports whether err originated from the PacketSource
// itself rather than from header/CRC/ordering validation. Any error value
// not recognized as one of the package's own sentinel or typed errors is
// treated as a transport error, so a custom PacketSource implementation
// doesn't need to know about this package's error taxonomy to get its
// failures propagated correctly.
func isTransportError(err error) bool {
	switch err {
	case ErrInvalidPacket, ErrSyncLost, ErrDiscardPacketFlood, ErrCRCMismatch, ErrTimeout, ErrRetryLimitExceeded:
		return false
	}
	switch err.(type) {
	case *LineOutOfOrderError, *SegmentOutOfOrderError:
		return false
	}
	return true
}
