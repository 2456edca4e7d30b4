// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package cci implements the FLIR Lepton Command and Control Interface
// (CCI), a register-level request/response protocol carried over I²C. It
// is the camera's side channel for status, serial number, uptime,
// temperature, shutter and flat-field-correction control; it has no part in
// the VoSPI video stream itself.
package cci

// Command identifies a CCI module/command pair to GetAttribute, SetAttribute
// or RunCommand.
type Command uint16

// The commands this package knows about. The full FLIR SDK command table
// is much larger; this subset covers what lepton3.Dev and the
// cmd/lepton-query tool use, plus a few related commands.
const (
	AgcEnable              Command = 0x0100 // 2   GET/SET
	SysPing                Command = 0x0200 // 0   RUN
	SysStatus              Command = 0x0204 // 4   GET
	SysSerialNumber        Command = 0x0208 // 4   GET
	SysUptime              Command = 0x020C // 2   GET
	SysHousingTemperature  Command = 0x0210 // 1   GET
	SysTemperature         Command = 0x0214 // 1   GET
	SysShutterPosition     Command = 0x0238 // 2   GET/SET
	SysFFCMode             Command = 0x023C // 17  GET/SET
	SysFCCRunNormalization Command = 0x0240 // 0   RUN
)

// registerAddress is a CCI register offset.
type registerAddress uint16

const (
	regPower      registerAddress = 0
	regStatus     registerAddress = 2
	regCommandID  registerAddress = 4
	regDataLength registerAddress = 6
	regData0      registerAddress = 8
	regDataBuffer0 registerAddress = 0xF800
)

// Status register bitmask.
const (
	statusBusyBit   = 0x1
	statusBootBit   = 0x2
	statusBootOK    = 0x4
	statusErrorMask = 0xFF00
)

// commandAction is ORed into a Command's low bits to select GET (0), SET (1)
// or RUN (2) on the wire, matching the CCI protocol's command ID encoding.
type commandAction uint16

const (
	actionGet commandAction = 0
	actionSet commandAction = 1
	actionRun commandAction = 2
)
