// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package cci

import (
	"testing"

	"periph.io/x/periph/conn/i2c/i2ctest"
)

func regAddr(addr registerAddress) []byte {
	b := make([]byte, 2)
	b[0] = byte(addr >> 8)
	b[1] = byte(addr)
	return b
}

func bootedStatusOps() []i2ctest.IO {
	return []i2ctest.IO{
		{Addr: leptonAddress, W: regAddr(regStatus), R: []byte{0x00, statusBootBit | statusBootOK}},
	}
}

func TestNew(t *testing.T) {
	p := &i2ctest.Playback{Ops: bootedStatusOps()}
	d, err := New(p)
	if err != nil {
		t.Fatalf("New() err = %v, want nil", err)
	}
	if d == nil {
		t.Fatal("New() dev = nil")
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Playback.Close() = %v, want nil", err)
	}
}

func TestGetSerial(t *testing.T) {
	ops := bootedStatusOps()
	ops = append(ops,
		i2ctest.IO{Addr: leptonAddress, W: regAddr(regStatus), R: []byte{0x00, 0x00}},
		i2ctest.IO{Addr: leptonAddress, W: append(regAddr(regDataLength), 0x00, 0x04), R: nil},
		i2ctest.IO{Addr: leptonAddress, W: append(regAddr(regCommandID), 0x02, 0x08), R: nil},
		i2ctest.IO{Addr: leptonAddress, W: regAddr(regStatus), R: []byte{0x00, 0x00}},
		i2ctest.IO{Addr: leptonAddress, W: regAddr(regData0), R: []byte{0, 0, 0, 0, 0, 0, 0x13, 0x37}},
	)
	p := &i2ctest.Playback{Ops: ops}
	d, err := New(p)
	if err != nil {
		t.Fatalf("New() err = %v, want nil", err)
	}
	serial, err := d.GetSerial()
	if err != nil {
		t.Fatalf("GetSerial() err = %v, want nil", err)
	}
	if want := uint64(0x1337); serial != want {
		t.Errorf("GetSerial() = %#x, want %#x", serial, want)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Playback.Close() = %v, want nil", err)
	}
}

func TestWaitIdle_timeout(t *testing.T) {
	var ops []i2ctest.IO
	ops = append(ops, bootedStatusOps()...)
	// Status never clears its busy bit: waitIdle must eventually give up
	// rather than loop forever.
	for i := 0; i < 1000; i++ {
		ops = append(ops, i2ctest.IO{Addr: leptonAddress, W: regAddr(regStatus), R: []byte{0x00, statusBusyBit}})
	}
	p := &i2ctest.Playback{Ops: ops}
	d, err := New(p)
	if err != nil {
		t.Fatalf("New() err = %v, want nil", err)
	}
	if _, err := d.GetSerial(); err != ErrCommandTimeout {
		t.Fatalf("GetSerial() err = %v, want ErrCommandTimeout", err)
	}
}
