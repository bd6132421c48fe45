package packet

import (
	"io"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

const captureSnapLen = 65536

// CaptureWriter records encoded frames into a pcap stream.  Simulation ticks
// are mapped onto seconds after base.
type CaptureWriter struct {
	w    *pcapgo.Writer
	base time.Time
}

func NewCaptureWriter(out io.Writer, base time.Time) (*CaptureWriter, error) {
	w := pcapgo.NewWriter(out)
	if err := w.WriteFileHeader(captureSnapLen, layers.LinkTypeEthernet); err != nil {
		return nil, err
	}
	return &CaptureWriter{w: w, base: base}, nil
}

func (c *CaptureWriter) WriteFrame(tick int, data []byte) error {
	ci := gopacket.CaptureInfo{
		Timestamp:     c.base.Add(time.Duration(tick) * time.Second),
		CaptureLength: len(data),
		Length:        len(data),
	}
	return c.w.WritePacket(ci, data)
}
