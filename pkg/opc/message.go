package opc

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Command is the command byte of a message.
type Command byte

// Commands with a registered meaning.
const (
	CmdSetPixels Command = 0x00
	CmdSysEx     Command = 0xFF
)

// String implements fmt.Stringer.
func (c Command) String() string {
	switch c {
	case CmdSetPixels:
		return "set-pixels"
	case CmdSysEx:
		return "sysex"
	}
	return fmt.Sprintf("command(%d)", byte(c))
}

const (
	// HeaderSize is the size of the message header.
	HeaderSize = 4
	// MaxDataLen is the largest data length the header can carry.
	MaxDataLen = 0xffff
)

// Message is a complete OPC message.
type Message struct {
	Channel byte
	Command Command
	Data    []byte
}

// Bytes encodes the message. Data beyond MaxDataLen is dropped.
func (m *Message) Bytes() []byte {
	data := m.Data
	if len(data) > MaxDataLen {
		data = data[:MaxDataLen]
	}
	buf := make([]byte, HeaderSize+len(data))
	buf[0], buf[1] = m.Channel, byte(m.Command)
	binary.BigEndian.PutUint16(buf[2:], uint16(len(data)))
	copy(buf[HeaderSize:], data)
	return buf
}

// WriteTo implements io.WriterTo.
func (m *Message) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(m.Bytes())
	return int64(n), err
}

// Handler consumes messages.
type Handler interface {
	HandleMessage(*Message)
}

// HandlerFunc is the func form of Handler.
type HandlerFunc func(*Message)

// HandleMessage implements Handler.
func (f HandlerFunc) HandleMessage(msg *Message) {
	f(msg)
}
