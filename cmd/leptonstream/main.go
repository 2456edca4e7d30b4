// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// leptonstream captures frames from a FLIR Lepton 3.x/3.5 continuously and
// streams them to connected websocket clients.
package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"time"

	"github.com/cyrivs-labs/lepton3vospi/lepton3"
	"github.com/cyrivs-labs/lepton3vospi/vospi"
	"github.com/maruel/interrupt"
	fsnotify "gopkg.in/fsnotify.v1"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/conn/spi/spireg"
	"periph.io/x/periph/host"
)

// stopOnRedeploy ends the capture loop as soon as the running binary is
// replaced on disk, so a supervisor (systemd, etc.) restarting the process
// picks up new code instead of leaving a stale daemon holding the SPI bus.
func stopOnRedeploy() {
	exe, err := os.Executable()
	if err != nil {
		log.Printf("stopOnRedeploy: %s", err)
		return
	}
	fi, err := os.Stat(exe)
	if err != nil {
		log.Printf("stopOnRedeploy: %s", err)
		return
	}
	deployed := fi.ModTime()
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("stopOnRedeploy: %s", err)
		return
	}
	defer watcher.Close()
	if err := watcher.Add(exe); err != nil {
		log.Printf("stopOnRedeploy: %s", err)
		return
	}
	for {
		select {
		case <-interrupt.Channel:
			return
		case err := <-watcher.Errors:
			log.Printf("stopOnRedeploy: %s", err)
			return
		case <-watcher.Events:
			if fi, err = os.Stat(exe); err != nil || !fi.ModTime().Equal(deployed) {
				interrupt.Set()
				return
			}
		}
	}
}

func openDev(i2cName, spiName string, i2cHz, spiHz int, fake bool, cfg vospi.Config) (*lepton3.Dev, error) {
	if fake {
		return lepton3.NewWithSource(nil, lepton3.NewFakePacketSource(cfg), cfg), nil
	}
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	spiBus, err := spireg.Open(spiName)
	if err != nil {
		return nil, err
	}
	if spiHz != 0 {
		if err := spiBus.LimitSpeed(int64(spiHz)); err != nil {
			return nil, err
		}
	}
	i2cBus, err := i2creg.Open(i2cName)
	if err != nil {
		return nil, err
	}
	if i2cHz != 0 {
		if err := i2cBus.SetSpeed(int64(i2cHz)); err != nil {
			return nil, err
		}
	}
	return lepton3.New(spiBus, i2cBus, cfg)
}

func mainImpl() error {
	i2cName := flag.String("i2c", "", "I²C bus to use")
	spiName := flag.String("spi", "", "SPI bus to use")
	i2cHz := flag.Int("i2chz", 0, "I²C bus speed")
	spiHz := flag.Int("spihz", 0, "SPI bus speed")
	port := flag.Int("port", 8010, "http port to listen on")
	fake := flag.Bool("fake", false, "simulate a camera instead of requiring hardware")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()
	if !*verbose {
		log.SetOutput(ioutil.Discard)
	}
	log.SetFlags(log.Lmicroseconds)

	if len(flag.Args()) != 0 {
		return fmt.Errorf("unexpected argument: %s", flag.Args())
	}

	interrupt.HandleCtrlC()

	cfg := vospi.DefaultConfig()
	dev, err := openDev(*i2cName, *spiName, *i2cHz, *spiHz, *fake, cfg)
	if err != nil {
		return fmt.Errorf("%s\nIf testing without hardware, use -fake to simulate a camera", err)
	}

	srv := StartWebServer(*port)

	go func() {
		for !interrupt.IsSet() {
			f, err := dev.ReadImg()
			if err != nil {
				log.Printf("ReadImg: %s", err)
				continue
			}
			srv.AddFrame(f)
		}
	}()

	go stopOnRedeploy()

	for !interrupt.IsSet() {
		stats := dev.Stats()
		fmt.Printf("\r%d frames %d duped %d failed", stats.GoodFrames, stats.DuplicateFrames, stats.CaptureFailures)
		time.Sleep(time.Second)
	}
	fmt.Print("\n")
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "\nleptonstream: %s.\n", err)
		os.Exit(1)
	}
}
