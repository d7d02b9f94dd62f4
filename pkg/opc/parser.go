package opc

import (
	"bytes"
	"encoding/binary"
)

// Transport is the framing detected on a connection.
type Transport int

// Transports.
const (
	TransportUnknown Transport = iota
	TransportOPC
	TransportWebSocket
)

// String implements fmt.Stringer.
func (t Transport) String() string {
	switch t {
	case TransportOPC:
		return "opc"
	case TransportWebSocket:
		return "websocket"
	}
	return "unknown"
}

type parseState int

const (
	stateDetect    parseState = iota // waiting for the first 4 bytes
	stateHandshake                   // reading the HTTP upgrade request
	stateWsHeader                    // waiting for a WebSocket frame header
	stateWsPayload                   // receiving a masked WebSocket payload
	stateOpcHeader                   // waiting for an OPC header
	stateOpcData                     // receiving OPC data
	stateFailed
)

var stateNames = map[parseState]string{
	stateDetect:    "detection",
	stateHandshake: "handshake",
	stateWsHeader:  "websocket header",
	stateWsPayload: "websocket payload",
	stateOpcHeader: "opc header",
	stateOpcData:   "opc data",
	stateFailed:    "failed",
}

const (
	wsOpBinary byte = 0x2
	wsOpClose  byte = 0x8
	wsFin      byte = 0x80
	wsMask     byte = 0x80
)

var getPrefix = []byte("GET ")

// Parser reassembles messages from the byte stream of one connection.
// It performs no I/O: replies to be sent back are returned from Parse.
type Parser struct {
	state   parseState
	hdr     [8]byte
	hdrLen  int
	hdrNeed int

	handshake []byte
	reply     []byte

	mask    [4]byte
	payload []byte
	msg     *Message
	recv    int
	err     error
}

// Transport returns the detected transport.
func (p *Parser) Transport() Transport {
	switch p.state {
	case stateDetect, stateFailed:
		return TransportUnknown
	case stateOpcHeader, stateOpcData:
		return TransportOPC
	}
	return TransportWebSocket
}

// Parse consumes data received from the peer. emit is called once for
// every complete message, in order. The returned reply must be written
// back to the peer. Any error is final and the connection must be closed.
func (p *Parser) Parse(data []byte, emit func(*Message)) (reply []byte, err error) {
	if p.err != nil {
		return nil, p.err
	}
	for len(data) > 0 && p.err == nil {
		var n int
		switch p.state {
		case stateDetect:
			n = p.detect(data, emit)
		case stateHandshake:
			n = p.readHandshake(data)
		case stateWsHeader:
			n = p.readWsHeader(data)
		case stateWsPayload:
			n = p.readWsPayload(data, emit)
		case stateOpcHeader:
			n = p.fill(data, HeaderSize)
			if p.hdrLen == HeaderSize {
				p.opcHeader(emit)
			}
		case stateOpcData:
			n = copy(p.msg.Data[p.recv:], data)
			if p.recv += n; p.recv == len(p.msg.Data) {
				msg := p.msg
				p.msg, p.state = nil, stateOpcHeader
				emit(msg)
			}
		}
		data = data[n:]
	}
	reply, p.reply = p.reply, nil
	return reply, p.err
}

func (p *Parser) fail(err error) {
	p.err, p.state = err, stateFailed
}

func (p *Parser) violation(reason string) {
	p.fail(&ProtocolError{State: stateNames[p.state], Reason: reason})
}

// fill appends to the header buffer until it holds need bytes.
func (p *Parser) fill(data []byte, need int) int {
	n := copy(p.hdr[p.hdrLen:need], data)
	p.hdrLen += n
	return n
}

func (p *Parser) detect(data []byte, emit func(*Message)) int {
	n := p.fill(data, len(getPrefix))
	if p.hdrLen < len(getPrefix) {
		return n
	}
	if bytes.Equal(p.hdr[:4], getPrefix) {
		p.state = stateHandshake
		p.handshake = append([]byte(nil), getPrefix...)
		p.hdrLen = 0
		return n
	}
	p.state = stateOpcHeader
	p.opcHeader(emit)
	return n
}

func (p *Parser) readHandshake(data []byte) int {
	from := len(p.handshake) - len(headerEnd) + 1
	if from < 0 {
		from = 0
	}
	p.handshake = append(p.handshake, data...)
	pos := bytes.Index(p.handshake[from:], headerEnd)
	if pos < 0 {
		if len(p.handshake) > MaxHandshakeSize {
			p.violation("request header too large")
		}
		return len(data)
	}
	end := from + pos + len(headerEnd)
	n := len(data) - (len(p.handshake) - end)
	if end > MaxHandshakeSize {
		p.violation("request header too large")
		return n
	}
	key, err := parseUpgrade(p.handshake[:end-len(headerEnd)])
	if err != nil {
		p.fail(err)
		return n
	}
	p.reply = append(p.reply, upgradeResponse(key)...)
	p.handshake = nil
	p.state, p.hdrLen, p.hdrNeed = stateWsHeader, 0, 2
	return n
}

func (p *Parser) readWsHeader(data []byte) int {
	n := p.fill(data, p.hdrNeed)
	if p.hdrLen < p.hdrNeed {
		return n
	}
	if p.hdrLen == 2 {
		b0, b1 := p.hdr[0], p.hdr[1]
		switch {
		case b0&0x0f == wsOpClose:
			p.fail(ErrPeerClosed)
		case b0&wsFin == 0:
			p.violation("fragmented frame")
		case b0&0x0f != wsOpBinary:
			p.violation("not a binary frame")
		case b1&wsMask == 0:
			p.violation("unmasked frame")
		case b1&0x7f == 127:
			p.violation("64-bit payload length unsupported")
		case b1&0x7f == 126:
			p.hdrNeed = 2 + 2 + 4
		default:
			p.hdrNeed = 2 + 4
		}
		return n
	}

	length, maskAt := int(p.hdr[1]&0x7f), 2
	if length == 126 {
		length, maskAt = int(binary.BigEndian.Uint16(p.hdr[2:])), 4
	}
	if length < HeaderSize {
		p.violation("payload shorter than message header")
		return n
	}
	copy(p.mask[:], p.hdr[maskAt:maskAt+4])
	p.payload, p.recv = make([]byte, length), 0
	p.state = stateWsPayload
	return n
}

func (p *Parser) readWsPayload(data []byte, emit func(*Message)) int {
	n := copy(p.payload[p.recv:], data)
	for i := p.recv; i < p.recv+n; i++ {
		p.payload[i] ^= p.mask[i&3]
	}
	p.recv += n
	if p.recv < len(p.payload) {
		return n
	}
	payload := p.payload
	p.payload = nil
	p.state, p.hdrLen, p.hdrNeed = stateWsHeader, 0, 2
	emit(&Message{
		Channel: payload[0],
		Command: Command(payload[1]),
		Data:    payload[HeaderSize:],
	})
	return n
}

func (p *Parser) opcHeader(emit func(*Message)) {
	msg := &Message{Channel: p.hdr[0], Command: Command(p.hdr[1])}
	length := int(binary.BigEndian.Uint16(p.hdr[2:]))
	p.hdrLen = 0
	if length == 0 {
		msg.Data = []byte{}
		emit(msg)
		return
	}
	msg.Data, p.recv = make([]byte, length), 0
	p.msg, p.state = msg, stateOpcData
}
