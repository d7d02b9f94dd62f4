// Package client sends Open Pixel Control messages over raw TCP or WebSocket.
package client

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/websocket"

	"github.com/epilepsia/epilepsia.go/pkg/opc"
)

// DefaultPort is the conventional OPC port.
const DefaultPort = "7890"

// Client is a connection to an OPC server.
type Client struct {
	// Channel is used by SetBrightness and SetDithering.
	Channel byte

	url    string
	writer MessageWriter
}

// New creates a Client over an established writer.
func New(w MessageWriter) *Client {
	return &Client{writer: w}
}

// Dial connects to tcp://host[:port] or ws://host[:port]/path.
// An address without scheme is treated as tcp.
func Dial(addr string) (*Client, error) {
	if !strings.Contains(addr, "://") {
		addr = "tcp://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return nil, err
	}
	host := u.Host
	if u.Port() == "" {
		host = net.JoinHostPort(u.Hostname(), DefaultPort)
	}
	var w MessageWriter
	switch u.Scheme {
	case "tcp":
		conn, err := net.Dial("tcp", host)
		if err != nil {
			return nil, err
		}
		w = NewStreamWriter(conn)
	case "ws", "wss":
		u.Host = host
		origin := "http://" + host + "/"
		conn, err := websocket.Dial(u.String(), "", origin)
		if err != nil {
			return nil, err
		}
		w = NewWebSocketWriter(conn)
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	c := New(w)
	c.url = u.Scheme + "://" + host + u.Path
	return c, nil
}

// URL returns the address the client dialed.
func (c *Client) URL() string {
	return c.url
}

// Send writes a message.
func (c *Client) Send(msg *opc.Message) error {
	return c.writer.WriteMessage(msg)
}

// PutPixels sends RGB triples to channel.
func (c *Client) PutPixels(channel byte, rgb []byte) error {
	return c.Send(&opc.Message{Channel: channel, Command: opc.CmdSetPixels, Data: rgb})
}

// SetBrightness sends a brightness change in [0,1].
func (c *Client) SetBrightness(brightness float64) error {
	return c.Send(opc.BrightnessMessage(c.Channel, brightness))
}

// SetDithering switches temporal dithering.
func (c *Client) SetDithering(on bool) error {
	return c.Send(opc.DitheringMessage(c.Channel, on))
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.writer.Close()
}
