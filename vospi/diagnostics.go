// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package vospi

// Diagnostics accumulates counters across the lifetime of a Capturer. Unlike
// FrameMeta, these counters are never reset; they reflect the health of the
// link since the Capturer was created.
type Diagnostics struct {
	DiscardCount   uint32
	CRCErrorCount  uint32
	BadLineCount   uint32
	ResyncCount    uint32
}

// FrameMeta describes the outcome of a single Capture attempt. Unlike
// Diagnostics, every field is zeroed at the start of each attempt.
type FrameMeta struct {
	Valid         bool
	CaptureTicks  uint64
	DiscardPackets uint32
	CRCErrors     uint32
	BadLineCount  uint32
	ResyncCount   uint32
}

// CapturedFrame is a successfully captured frame's pixel payload along with
// the diagnostics snapshot for the attempt that produced it.
type CapturedFrame struct {
	Pixels []byte
	Meta   FrameMeta
}
