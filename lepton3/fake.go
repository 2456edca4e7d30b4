// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lepton3

import (
	"encoding/binary"
	"math/rand"

	"github.com/cyrivs-labs/lepton3vospi/vospi"
)

type vector struct {
	intensity float64
	x         float64
	y         float64
}

// noise is cheezy but gets us going for testing without a device.
type noise struct {
	rand    *rand.Rand
	vectors []vector
}

func makeNoise() *noise {
	n := &noise{rand: rand.New(rand.NewSource(0))}
	n.vectors = make([]vector, 10)
	for i := range n.vectors {
		n.vectors[i].intensity = n.rand.NormFloat64() * 10
		n.vectors[i].x = n.rand.NormFloat64()*28 + 80
		n.vectors[i].y = n.rand.NormFloat64()*20 + 60
	}
	return n
}

func (n *noise) update() {
	for i := range n.vectors {
		n.vectors[i].intensity += n.rand.NormFloat64() * 0.1
		n.vectors[i].x += n.rand.NormFloat64() * 0.1
		n.vectors[i].y += n.rand.NormFloat64() * 0.1
	}
}

// render fills pix, a Width*Height buffer of raw 14 bit intensities, with
// the current noise field.
func (n *noise) render(pix []uint16) {
	const dynamicRange = 128
	for y := 0; y < Height; y++ {
		base := y * Width
		fy := float64(y)
		for x := 0; x < Width; x++ {
			fx := float64(x)
			value := float64(8192)
			for _, vect := range n.vectors {
				distance := (vect.x-fx)*(vect.x-fx) + (vect.y-fy)*(vect.y-fy)
				value += vect.intensity / distance
			}
			if value >= float64(8192+dynamicRange) {
				value = float64(8192 + dynamicRange)
			}
			if value < float64(8192-dynamicRange) {
				value = float64(8192 - dynamicRange)
			}
			pix[base+x] = uint16(value)
		}
	}
}

const (
	fakeSegmentOnPacket20 = 20
	fakePacketNumberMask  = 0x0FFF
)

// FakePacketSource synthesizes a correctly ordered, correctly CRC'd VoSPI
// packet stream over a moving noise field, standing in for a real Lepton
// 3.x/3.5 when no hardware is attached.
type FakePacketSource struct {
	cfg     vospi.Config
	noise   *noise
	pixels  []uint16
	segment int
	line    int
}

// NewFakePacketSource returns a FakePacketSource producing frames shaped
// per cfg.
func NewFakePacketSource(cfg vospi.Config) *FakePacketSource {
	return &FakePacketSource{
		cfg:     cfg,
		noise:   makeNoise(),
		pixels:  make([]uint16, Width*Height),
		segment: 1,
	}
}

// ReadPacket implements vospi.PacketSource.
func (s *FakePacketSource) ReadPacket(packet []byte) error {
	if s.segment == 1 && s.line == 0 {
		s.noise.update()
		s.noise.render(s.pixels)
	}

	id := uint16(s.line) & fakePacketNumberMask
	if s.line == fakeSegmentOnPacket20 {
		id |= uint16(s.segment&0x7) << 12
	}
	binary.BigEndian.PutUint16(packet[0:2], id)

	payload := packet[4:s.cfg.PacketSizeBytes]
	frameLine := (s.segment-1)*s.cfg.LinesPerSegment + s.line
	rowStart := frameLine * s.cfg.PayloadLen() / 2
	for i := range payload {
		if i%2 == 0 {
			px := s.pixels[rowStart+i/2]
			payload[i] = byte(px >> 8)
			payload[i+1] = byte(px)
		}
	}

	crc, _ := vospi.PacketCRC16(packet[:s.cfg.PacketSizeBytes])
	binary.BigEndian.PutUint16(packet[2:4], crc)

	s.line++
	if s.line == s.cfg.LinesPerSegment {
		s.line = 0
		s.segment++
		if s.segment > s.cfg.SegmentsPerFrame {
			s.segment = 1
		}
	}
	return nil
}
