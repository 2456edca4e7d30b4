// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lepton3

import "periph.io/x/periph/conn/spi"

// spiPacketSource reads one VoSPI packet at a time off a SPI connection
// already configured for the Lepton's clock mode and speed. It implements
// vospi.PacketSource.
type spiPacketSource struct {
	conn spi.Conn
}

func (s *spiPacketSource) ReadPacket(packet []byte) error {
	return s.conn.Tx(nil, packet)
}
