package hw

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/rflight/pkg/light"
)

// Frame is the JSON form of the LED buffer.
type Frame struct {
	Side []string `json:"side"`
	Logo []string `json:"logo"`
}

// FrameOf converts the buffer.
func FrameOf(buf *light.Buffer) Frame {
	f := Frame{
		Side: make([]string, 0, len(light.SideLEDs)),
		Logo: make([]string, 0, len(light.LogoLEDs)),
	}
	for _, i := range light.SideLEDs {
		f.Side = append(f.Side, buf[i].String())
	}
	for _, i := range light.LogoLEDs {
		f.Logo = append(f.Logo, buf[i].String())
	}
	return f
}

// Preview mirrors the LEDs to websocket clients. Every client gets the
// latest frame on connect and then every change.
type Preview struct {
	lock    sync.Mutex
	last    []byte
	clients map[chan []byte]struct{}
}

// NewPreview creates a Preview.
func NewPreview() *Preview {
	return &Preview{clients: make(map[chan []byte]struct{})}
}

// Show implements light.Driver.
func (p *Preview) Show(buf *light.Buffer) error {
	data, err := json.Marshal(FrameOf(buf))
	if err != nil {
		return err
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	if bytes.Equal(data, p.last) {
		return nil
	}
	p.last = data
	for ch := range p.clients {
		select {
		case ch <- data:
		default:
			// slow client, it catches up with a later frame.
		}
	}
	return nil
}

// Clients returns the number of connected clients.
func (p *Preview) Clients() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return len(p.clients)
}

// Handler serves the websocket endpoint.
func (p *Preview) Handler() http.Handler {
	return websocket.Handler(p.serve)
}

func (p *Preview) serve(ws *websocket.Conn) {
	defer ws.Close()
	ch := make(chan []byte, 4)
	p.lock.Lock()
	if p.last != nil {
		ch <- p.last
	}
	p.clients[ch] = struct{}{}
	p.lock.Unlock()
	defer func() {
		p.lock.Lock()
		delete(p.clients, ch)
		p.lock.Unlock()
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		var discard []byte
		for websocket.Message.Receive(ws, &discard) == nil {
		}
	}()
	for {
		select {
		case data := <-ch:
			if err := websocket.Message.Send(ws, string(data)); err != nil {
				glog.V(1).Infof("preview client %s: %v", ws.Request().RemoteAddr, err)
				return
			}
		case <-done:
			return
		}
	}
}
