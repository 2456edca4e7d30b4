// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lepton3

// Stats is internal statistics about the frame grabbing, above and beyond
// the wire-level counters in vospi.Diagnostics: it tracks the facade's own
// dedup-retry loop in ReadImg.
type Stats struct {
	GoodFrames      int
	DuplicateFrames int
	CaptureFailures int
}
