package hw

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
	"golang.org/x/net/websocket"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/spi"

	"github.com/robotalks/rflight/pkg/light"
)

func TestSerialMode(t *testing.T) {
	m := SerialMode(0)
	assert.Equal(t, DefaultBaudRate, m.BaudRate)
	assert.Equal(t, 8, m.DataBits)
	assert.Equal(t, serial.EvenParity, m.Parity)
	assert.Equal(t, serial.OneStopBit, m.StopBits)
	assert.Equal(t, 115200, SerialMode(115200).BaudRate)
}

func TestPin(t *testing.T) {
	gp := &gpiotest.Pin{N: "GPIO17"}
	p := &Pin{PinIO: gp}
	require.NoError(t, p.Set(true))
	assert.Equal(t, gpio.High, gp.L)
	require.NoError(t, p.Set(false))
	assert.Equal(t, gpio.Low, gp.L)

	p.ActiveLow = true
	require.NoError(t, p.Set(true))
	assert.Equal(t, gpio.Low, gp.L)
}

func TestEncodeAPA102(t *testing.T) {
	var buf light.Buffer
	buf[0] = light.RGB(1, 2, 3)
	buf[11] = light.RGB(0xff, 0, 0x80)
	out := EncodeAPA102(&buf, 40)
	require.Len(t, out, 4+light.LEDCount*4+4)
	assert.Equal(t, []byte{0, 0, 0, 0}, out[:4])
	assert.Equal(t, []byte{0xFF, 3, 2, 1}, out[4:8])
	assert.Equal(t, []byte{0xFF, 0, 0, 0}, out[8:12])
	assert.Equal(t, []byte{0xFF, 0x80, 0, 0xff}, out[48:52])
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, out[52:])

	out = EncodeAPA102(&buf, 3)
	assert.Equal(t, byte(0xE3), out[4])
}

type recordConn struct {
	writes [][]byte
}

func (c *recordConn) String() string               { return "record" }
func (c *recordConn) Duplex() conn.Duplex          { return conn.Full }
func (c *recordConn) TxPackets([]spi.Packet) error { return nil }
func (c *recordConn) Tx(w, r []byte) error {
	c.writes = append(c.writes, append([]byte(nil), w...))
	return nil
}

func TestAPA102Show(t *testing.T) {
	rc := &recordConn{}
	d := &APA102{Conn: rc, Brightness: 7}
	var buf light.Buffer
	buf.Fill(light.SideLEDs, light.RGB(9, 8, 7))
	require.NoError(t, d.Show(&buf))
	require.Len(t, rc.writes, 1)
	assert.Equal(t, EncodeAPA102(&buf, 7), rc.writes[0])
	assert.NoError(t, d.Close())
}

func TestFrameOf(t *testing.T) {
	var buf light.Buffer
	buf[4] = light.RGB(0x10, 0x20, 0x30)
	buf[5] = light.RGB(0xff, 0xff, 0xff)
	f := FrameOf(&buf)
	require.Len(t, f.Side, 5)
	require.Len(t, f.Logo, 7)
	assert.Equal(t, "#102030", f.Side[4])
	assert.Equal(t, "#ffffff", f.Logo[0])
}

func TestPreview(t *testing.T) {
	p := NewPreview()
	srv := httptest.NewServer(p.Handler())
	defer srv.Close()

	var buf light.Buffer
	require.NoError(t, p.Show(&buf))

	ws, err := websocket.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), "", srv.URL)
	require.NoError(t, err)
	defer ws.Close()
	ws.SetDeadline(time.Now().Add(5 * time.Second))

	var f Frame
	require.NoError(t, websocket.JSON.Receive(ws, &f))
	assert.Equal(t, "#000000", f.Logo[6])

	require.Eventually(t, func() bool { return p.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, p.Show(&buf))
	buf[11] = light.RGB(0, 0, 0x7f)
	require.NoError(t, p.Show(&buf))
	var raw string
	require.NoError(t, websocket.Message.Receive(ws, &raw))
	require.NoError(t, json.Unmarshal([]byte(raw), &f))
	assert.Equal(t, "#00007f", f.Logo[6])

	ws.Close()
	assert.Eventually(t, func() bool { return p.Clients() == 0 }, 2*time.Second, 5*time.Millisecond)
}
