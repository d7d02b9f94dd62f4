package opc

import (
	"bytes"
	"crypto/sha1"
	"encoding/base64"
	"strings"
)

const (
	websocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"
	// MaxHandshakeSize limits the size of the HTTP upgrade request.
	MaxHandshakeSize = 8 * 1024
)

var headerEnd = []byte("\r\n\r\n")

// AcceptKey computes Sec-WebSocket-Accept from Sec-WebSocket-Key.
func AcceptKey(key string) string {
	sum := sha1.Sum([]byte(key + websocketGUID))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// parseUpgrade extracts Sec-WebSocket-Key from a request header block.
func parseUpgrade(block []byte) (string, error) {
	lines := strings.Split(string(block), "\r\n")
	if !strings.HasPrefix(lines[0], "GET ") {
		return "", &ProtocolError{State: "handshake", Reason: "not a GET request"}
	}
	for _, line := range lines[1:] {
		pos := strings.IndexByte(line, ':')
		if pos < 0 {
			continue
		}
		name := strings.TrimSpace(line[:pos])
		if strings.EqualFold(name, "Sec-WebSocket-Key") {
			if key := strings.TrimSpace(line[pos+1:]); key != "" {
				return key, nil
			}
		}
	}
	return "", &ProtocolError{State: "handshake", Reason: "missing Sec-WebSocket-Key"}
}

func upgradeResponse(key string) []byte {
	var buf bytes.Buffer
	buf.WriteString("HTTP/1.1 101 Switching Protocols\r\n")
	buf.WriteString("Server: epilepsia\r\n")
	buf.WriteString("Upgrade: websocket\r\n")
	buf.WriteString("Connection: Upgrade\r\n")
	buf.WriteString("Sec-WebSocket-Accept: " + AcceptKey(key) + "\r\n")
	buf.WriteString("\r\n")
	return buf.Bytes()
}
