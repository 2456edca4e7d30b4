// Copyright 2017 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// lepton-grab captures a single image from a FLIR Lepton 3.x/3.5.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io/ioutil"
	"log"
	"os"

	"github.com/cyrivs-labs/lepton3vospi/gray14"
	"github.com/cyrivs-labs/lepton3vospi/lepton3"
	"github.com/cyrivs-labs/lepton3vospi/vospi"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/conn/spi/spireg"
	"periph.io/x/periph/host"
)

func mainImpl() error {
	i2cName := flag.String("i2c", "", "I²C bus to use")
	spiName := flag.String("spi", "", "SPI bus to use")
	i2cHz := flag.Int("i2chz", 0, "I²C bus speed")
	spiHz := flag.Int("spihz", 0, "SPI bus speed")
	fake := flag.Bool("fake", false, "simulate a camera instead of requiring hardware")
	diag := flag.Bool("diag", false, "print per-frame capture diagnostics")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()
	if !*verbose {
		log.SetOutput(ioutil.Discard)
	}
	log.SetFlags(log.Lmicroseconds)

	if flag.NArg() != 1 {
		return errors.New("supply path to PNG to save")
	}

	cfg := vospi.DefaultConfig()

	var frame *lepton3.Frame
	if *fake {
		dev := lepton3.NewWithSource(nil, lepton3.NewFakePacketSource(cfg), cfg)
		fr, err := dev.ReadImg()
		if err != nil {
			return err
		}
		frame = fr
	} else {
		if _, err := host.Init(); err != nil {
			return err
		}
		spiBus, err := spireg.Open(*spiName)
		if err != nil {
			return err
		}
		defer spiBus.Close()
		if *spiHz != 0 {
			if err := spiBus.LimitSpeed(int64(*spiHz)); err != nil {
				return err
			}
		}

		i2cBus, err := i2creg.Open(*i2cName)
		if err != nil {
			return err
		}
		defer i2cBus.Close()
		if *i2cHz != 0 {
			if err := i2cBus.SetSpeed(int64(*i2cHz)); err != nil {
				return err
			}
		}
		dev, err := lepton3.New(spiBus, i2cBus, cfg)
		if err != nil {
			return fmt.Errorf("%s\nIf testing without hardware, use -fake to simulate a camera", err)
		}
		fr, err := dev.ReadImg()
		if err != nil {
			return err
		}
		frame = fr
	}

	if *diag {
		fmt.Printf("Valid:          %t\n", frame.Meta.Valid)
		fmt.Printf("CaptureTicks:   %d\n", frame.Meta.CaptureTicks)
		fmt.Printf("DiscardPackets: %d\n", frame.Meta.DiscardPackets)
		fmt.Printf("CRCErrors:      %d\n", frame.Meta.CRCErrors)
		fmt.Printf("BadLineCount:   %d\n", frame.Meta.BadLineCount)
		fmt.Printf("ResyncCount:    %d\n", frame.Meta.ResyncCount)
		fmt.Printf("Min:            %d\n", gray14.Min(frame.Gray16))
		fmt.Printf("Max:            %d\n", gray14.Max(frame.Gray16))
	}

	out, err := os.Create(flag.Args()[0])
	if err != nil {
		return err
	}
	defer out.Close()
	return png.Encode(out, frame)
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "\nlepton-grab: %s.\n", err)
		os.Exit(1)
	}
}
