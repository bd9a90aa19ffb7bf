package hw

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"

	"github.com/robotalks/rflight/pkg/light"
)

// MaxBrightness is the APA102 global brightness limit.
const MaxBrightness = 31

// DefaultSPIFrequency is the APA102 clock.
const DefaultSPIFrequency = 4 * physic.MegaHertz

// EncodeAPA102 builds the SPI stream of the chain: a zero start frame,
// one 0xE0|brightness,B,G,R frame per LED and the end frame.
func EncodeAPA102(buf *light.Buffer, brightness uint8) []byte {
	if brightness > MaxBrightness {
		brightness = MaxBrightness
	}
	n := len(buf)
	end := (n + 15) / 16
	if end < 4 {
		end = 4
	}
	out := make([]byte, 4, 4+n*4+end)
	for _, c := range buf {
		out = append(out, 0xE0|brightness, c.B, c.G, c.R)
	}
	for i := 0; i < end; i++ {
		out = append(out, 0xFF)
	}
	return out
}

// APA102 drives an APA102 chain on a SPI port.
type APA102 struct {
	Conn       spi.Conn
	Brightness uint8

	port spi.PortCloser
}

// OpenAPA102 opens the SPI port, e.g. "SPI0.0".
func OpenAPA102(name string, freq physic.Frequency, brightness uint8) (*APA102, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	port, err := spireg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	if freq == 0 {
		freq = DefaultSPIFrequency
	}
	conn, err := port.Connect(freq, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("connect %s: %w", name, err)
	}
	return &APA102{Conn: conn, Brightness: brightness, port: port}, nil
}

// Show implements light.Driver.
func (d *APA102) Show(buf *light.Buffer) error {
	return d.Conn.Tx(EncodeAPA102(buf, d.Brightness), nil)
}

// Close releases the port.
func (d *APA102) Close() error {
	if d.port == nil {
		return nil
	}
	return d.port.Close()
}
