// Package opc implements an Open Pixel Control server accepting raw TCP
// and WebSocket tunneled clients on the same ports.
//
// Wire format of a message:
//
//	[channel:u8][command:u8][length:u16 big-endian][data:length]
//
// A WebSocket client sends one message per binary frame.
package opc
