package client

import (
	"io"

	"golang.org/x/net/websocket"

	"github.com/epilepsia/epilepsia.go/pkg/opc"
)

// MessageWriter sends messages to a server.
type MessageWriter interface {
	WriteMessage(*opc.Message) error
	Close() error
}

// StreamWriter writes raw OPC messages to a byte stream.
type StreamWriter struct {
	io.WriteCloser
}

// NewStreamWriter wraps a stream, usually a TCP connection.
func NewStreamWriter(w io.WriteCloser) *StreamWriter {
	return &StreamWriter{w}
}

// WriteMessage implements MessageWriter.
func (w *StreamWriter) WriteMessage(msg *opc.Message) error {
	_, err := msg.WriteTo(w.WriteCloser)
	return err
}

// WebSocketWriter sends one message per binary frame.
type WebSocketWriter websocket.Conn

// NewWebSocketWriter wraps websocket.Conn.
func NewWebSocketWriter(conn *websocket.Conn) *WebSocketWriter {
	return (*WebSocketWriter)(conn)
}

// WriteMessage implements MessageWriter.
func (w *WebSocketWriter) WriteMessage(msg *opc.Message) error {
	return websocket.Message.Send((*websocket.Conn)(w), msg.Bytes())
}

// Close implements MessageWriter.
func (w *WebSocketWriter) Close() error {
	return (*websocket.Conn)(w).Close()
}
