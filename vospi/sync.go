// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package vospi

// SyncState is the current synchronization state of a Capture call against
// the packet stream.
type SyncState int

const (
	// Unsynced means no capture attempt is in progress: it is the state of a
	// new Capturer and the state the capture controller falls back to after
	// any failed attempt.
	Unsynced SyncState = iota
	// Seeking means a frame capture is in progress but no frame has ever
	// completed successfully yet; ordering errors are absorbed by resetting
	// the frame assembler's cursors rather than failing outright.
	Seeking
	// Locked means at least one frame has completed successfully in the
	// past; ordering and CRC errors now fail the attempt immediately instead
	// of being absorbed, since a well-behaved stream shouldn't produce them
	// once synchronized.
	Locked
)

func (s SyncState) String() string {
	switch s {
	case Unsynced:
		return "Unsynced"
	case Seeking:
		return "Seeking"
	case Locked:
		return "Locked"
	default:
		return "SyncState(?)"
	}
}
