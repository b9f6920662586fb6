// Package shared defines the wire format shared by every segment that
// crosses the link: a fixed 24-byte little-endian header followed by
// an optional payload. It has no dependency on session state so that a
// host can demultiplex a conv from a raw datagram without touching a
// *kcp.Session.
package shared

import (
	"encoding/binary"
	"fmt"
)

// Command values carried in a Header's Cmd field.
const (
	CmdPush uint8 = 81 // push data
	CmdAck  uint8 = 82 // acknowledge
	CmdWask uint8 = 83 // ask remote window size (probe)
	CmdWins uint8 = 84 // tell remote window size
)

// HeaderSize is the length in bytes of the fixed segment header.
const HeaderSize = 24

// Header is the fixed portion of a segment, decoded from or destined
// for the wire. All fields are little-endian on the wire.
type Header struct {
	Conv uint32
	Cmd  uint8
	Frg  uint8
	Wnd  uint16
	Ts   uint32
	Sn   uint32
	Una  uint32
	Len  uint32
}

// IsCommand reports whether cmd is one of the four defined command values.
func IsCommand(cmd uint8) bool {
	switch cmd {
	case CmdPush, CmdAck, CmdWask, CmdWins:
		return true
	default:
		return false
	}
}

// EncodeHeader writes h into dst in wire order and returns the number
// of bytes written (always HeaderSize). dst must have at least
// HeaderSize bytes of capacity.
func EncodeHeader(dst []byte, h Header) int {
	binary.LittleEndian.PutUint32(dst[0:4], h.Conv)
	dst[4] = h.Cmd
	dst[5] = h.Frg
	binary.LittleEndian.PutUint16(dst[6:8], h.Wnd)
	binary.LittleEndian.PutUint32(dst[8:12], h.Ts)
	binary.LittleEndian.PutUint32(dst[12:16], h.Sn)
	binary.LittleEndian.PutUint32(dst[16:20], h.Una)
	binary.LittleEndian.PutUint32(dst[20:24], h.Len)
	return HeaderSize
}

// DecodeHeader parses the first HeaderSize bytes of src into a Header.
// It does not validate Cmd or Len against the remaining buffer; callers
// combine it with PeekConv and their own length bookkeeping.
func DecodeHeader(src []byte) (Header, error) {
	if len(src) < HeaderSize {
		return Header{}, fmt.Errorf("shared: header needs %d bytes, got %d", HeaderSize, len(src))
	}
	return Header{
		Conv: binary.LittleEndian.Uint32(src[0:4]),
		Cmd:  src[4],
		Frg:  src[5],
		Wnd:  binary.LittleEndian.Uint16(src[6:8]),
		Ts:   binary.LittleEndian.Uint32(src[8:12]),
		Sn:   binary.LittleEndian.Uint32(src[12:16]),
		Una:  binary.LittleEndian.Uint32(src[16:20]),
		Len:  binary.LittleEndian.Uint32(src[20:24]),
	}, nil
}

// PeekConv reads the conv field from the first 4 bytes of data without
// decoding the rest of the header or mutating any state. Hosts use this
// to demultiplex inbound datagrams across conversations before handing
// them to the matching session's Input.
func PeekConv(data []byte) (uint32, bool) {
	if len(data) < 4 {
		return 0, false
	}
	return binary.LittleEndian.Uint32(data[0:4]), true
}
