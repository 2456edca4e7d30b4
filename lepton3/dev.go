// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lepton3

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/cyrivs-labs/lepton3vospi/cci"
	"github.com/cyrivs-labs/lepton3vospi/vospi"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/spi"
)

// Dev controls a FLIR Lepton 3.x/3.5.
//
// It assumes a breakout board exposing the CS line for manual control;
// MOSI is not used by the Lepton and should be grounded.
type Dev struct {
	*cci.Dev
	cap     *vospi.Capturer
	cs      gpio.PinOut
	prevImg *image.Gray16
	rawBuf  []byte
	stats   Stats
}

// New returns an initialized connection to the FLIR Lepton 3.x/3.5.
//
// Maximum SPI speed is 20Mhz. Maximum I²C speed is 1Mhz. cfg is typically
// vospi.DefaultConfig().
func New(s spi.Conn, i i2c.Bus, cfg vospi.Config) (*Dev, error) {
	p, ok := s.(spi.Pins)
	if !ok {
		return nil, errors.New("lepton3: require manual access to the CS pin")
	}
	cs := p.CS()
	if cs == gpio.INVALID {
		return nil, errors.New("lepton3: require manual access to a valid CS pin")
	}
	if err := s.DevParams(20000000, spi.Mode3|spi.NoCS, 8); err != nil {
		return nil, err
	}
	c, err := cci.New(i)
	if err != nil {
		return nil, err
	}
	d := &Dev{
		Dev:     c,
		cs:      cs,
		prevImg: image.NewGray16(image.Rect(0, 0, Width, Height)),
		rawBuf:  make([]byte, cfg.RequiredFrameBufferLen()),
	}
	if status, err := d.GetStatus(); err != nil {
		return nil, err
	} else if status.CameraStatus != cci.SystemReady {
		// The lepton takes < 1 second to boot so it should not happen normally.
		return nil, fmt.Errorf("lepton3: camera is not ready: %s", status.CameraStatus)
	}
	d.cap = vospi.NewCapturer(&spiPacketSource{conn: s}, cfg, nil)
	return d, nil
}

// NewWithSource wires cap directly instead of deriving one from a SPI
// connection, for tests and for FakePacketSource-driven demo runs.
func NewWithSource(c *cci.Dev, source vospi.PacketSource, cfg vospi.Config) *Dev {
	return &Dev{
		Dev:     c,
		cs:      gpio.INVALID,
		prevImg: image.NewGray16(image.Rect(0, 0, Width, Height)),
		rawBuf:  make([]byte, cfg.RequiredFrameBufferLen()),
		cap:     vospi.NewCapturer(source, cfg, nil),
	}
}

// Stats returns the facade's own frame-grabbing statistics.
func (d *Dev) Stats() Stats { return d.stats }

// Diagnostics returns the cumulative wire-level VoSPI diagnostics.
func (d *Dev) Diagnostics() vospi.Diagnostics { return d.cap.Diagnostics() }

// ReadImg captures one frame. It retries internally on a frame identical to
// the previous one, since a static scene without sensor noise would
// otherwise never produce a "new" frame.
//
// It is fine to call other methods concurrently to send commands to the
// camera, since those go over I²C rather than the SPI video bus this reads.
func (d *Dev) ReadImg() (*Frame, error) {
	if d.cs != gpio.INVALID {
		if err := d.cs.Out(gpio.Low); err != nil {
			return nil, err
		}
		defer d.cs.Out(gpio.High)
	}

	f := newFrame()
	for {
		meta, err := d.cap.Capture(d.rawBuf)
		if err != nil {
			d.stats.CaptureFailures++
			return nil, err
		}
		f.Meta = meta
		f.decodeInto(d.rawBuf)
		if !bytes.Equal(d.prevImg.Pix, f.Gray16.Pix) {
			d.stats.GoodFrames++
			break
		}
		d.stats.DuplicateFrames++
	}
	copy(d.prevImg.Pix, f.Pix)
	return f, nil
}
