// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package cci

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"time"

	"periph.io/x/periph/conn/i2c"
)

// leptonAddress is the Lepton's fixed I²C slave address.
const leptonAddress = 0x2A

// commandPollInterval is how often waitIdle polls the status register.
const commandPollInterval = 5 * time.Millisecond

// commandPollTimeout bounds how long waitIdle will poll before giving up.
const commandPollTimeout = 1 * time.Second

// ErrCommandTimeout is returned when the camera's busy bit never clears
// within commandPollTimeout. The camera may be unpowered, not yet booted,
// or wedged; the caller should not retry blindly.
var ErrCommandTimeout = errors.New("cci: timed out waiting for command to finish")

// Dev is the FLIR Lepton command and control interface, addressed over I²C.
type Dev struct {
	dev *i2c.Dev
}

// New waits for the camera to report it has booted, then returns a Dev
// ready to exchange commands over bus.
func New(bus i2c.Bus) (*Dev, error) {
	d := &Dev{dev: &i2c.Dev{Bus: bus, Addr: leptonAddress}}
	for {
		status, err := d.readRegister(regStatus)
		if err != nil {
			return nil, err
		}
		if status&(statusBootBit|statusBootOK) == statusBootBit|statusBootOK {
			return d, nil
		}
		log.Printf("cci: lepton not yet booted: 0x%02x", status)
		time.Sleep(commandPollInterval)
	}
}

// GetAttribute reads command's data into data, a pointer to a fixed-size
// value or struct of uint16 fields.
func (d *Dev) GetAttribute(command Command, data interface{}) error {
	nbWords := binary.Size(data) / 2
	if nbWords > 1024 {
		return errors.New("cci: buffer too large")
	}
	if _, err := d.waitIdle(); err != nil {
		return err
	}
	if err := d.writeRegister(regDataLength, uint16(nbWords)); err != nil {
		return err
	}
	if err := d.writeRegister(regCommandID, uint16(command)|uint16(actionGet)); err != nil {
		return err
	}
	status, err := d.waitIdle()
	if err != nil {
		return err
	}
	if status&statusErrorMask != 0 {
		return fmt.Errorf("cci: error 0x%x", status>>8)
	}
	addr := regData0
	if nbWords > 16 {
		addr = regDataBuffer0
	}
	b := make([]byte, nbWords*2)
	if err := d.readData(addr, b); err != nil {
		return err
	}
	return binary.Read(bytes.NewReader(b), binary.BigEndian, data)
}

// SetAttribute writes data to command.
func (d *Dev) SetAttribute(command Command, data interface{}) error {
	nbWords := binary.Size(data) / 2
	if nbWords > 1024 {
		return errors.New("cci: buffer too large")
	}
	buf := &bytes.Buffer{}
	if err := binary.Write(buf, binary.BigEndian, data); err != nil {
		return err
	}
	b := buf.Bytes()
	nbWords = len(b) / 2
	if _, err := d.waitIdle(); err != nil {
		return err
	}
	addr := regData0
	if nbWords > 16 {
		addr = regDataBuffer0
	}
	if err := d.writeData(addr, b); err != nil {
		return err
	}
	if err := d.writeRegister(regDataLength, uint16(nbWords)); err != nil {
		return err
	}
	if err := d.writeRegister(regCommandID, uint16(command)|uint16(actionSet)); err != nil {
		return err
	}
	status, err := d.waitIdle()
	if err != nil {
		return err
	}
	if status&statusErrorMask != 0 {
		return fmt.Errorf("cci: error 0x%x", status>>8)
	}
	return nil
}

// RunCommand triggers command, a fire-and-forget action such as
// SysFCCRunNormalization.
func (d *Dev) RunCommand(command Command) error {
	if _, err := d.waitIdle(); err != nil {
		return err
	}
	if err := d.writeRegister(regDataLength, 0); err != nil {
		return err
	}
	if err := d.writeRegister(regCommandID, uint16(command)|uint16(actionRun)); err != nil {
		return err
	}
	status, err := d.waitIdle()
	if err != nil {
		return err
	}
	if status&statusErrorMask != 0 {
		return fmt.Errorf("cci: error 0x%x", status>>8)
	}
	return nil
}

// waitIdle polls the status register until the busy bit clears, returning
// ErrCommandTimeout if it never does within commandPollTimeout.
func (d *Dev) waitIdle() (uint16, error) {
	deadline := time.Now().Add(commandPollTimeout)
	for {
		value, err := d.readRegister(regStatus)
		if err != nil || value&statusBusyBit == 0 {
			return value, err
		}
		if time.Now().After(deadline) {
			return value, ErrCommandTimeout
		}
		log.Printf("cci: device busy: 0x%x", value)
		time.Sleep(commandPollInterval)
	}
}

func (d *Dev) readRegister(addr registerAddress) (uint16, error) {
	b := make([]byte, 2)
	if err := d.readData(addr, b); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (d *Dev) writeRegister(addr registerAddress, v uint16) error {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return d.writeData(addr, b)
}

func (d *Dev) readData(addr registerAddress, data []byte) error {
	w := make([]byte, 2)
	binary.BigEndian.PutUint16(w, uint16(addr))
	return d.dev.Tx(w, data)
}

func (d *Dev) writeData(addr registerAddress, data []byte) error {
	w := make([]byte, 2, 2+len(data))
	binary.BigEndian.PutUint16(w, uint16(addr))
	w = append(w, data...)
	return d.dev.Tx(w, nil)
}
