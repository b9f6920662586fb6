package kcp

import (
	rp "github.com/Clouded-Sabre/ringpool/lib"

	"github.com/Clouded-Sabre/swift-kcp/shared"
)

// segment is one unit of the send/receive buffers: a header plus its
// payload bytes, plus the in-memory-only retransmission bookkeeping
// named in spec §3. Payload storage for every PUSH segment, empty or
// not, is backed by a pooled chunk, mirroring PcpPacket's chunk/GetChunk/
// ReturnChunk/CopyToPayload dance in lib/packet.go.
type segment struct {
	conv uint32
	cmd  uint8
	frg  uint8
	wnd  uint16
	ts   uint32
	sn   uint32
	una  uint32
	data []byte

	resendts uint32
	rto      uint32
	fastack  uint32
	xmit     uint32

	chunk *rp.Element
}

// setPayload copies src into a pooled chunk obtained from pool,
// generalizing PcpPacket.CopyToPayload. A zero-length src still obtains
// a chunk so the segment has a (possibly empty) owned slice to encode.
func (s *segment) setPayload(pool *rp.RingPool, src []byte) {
	s.chunk = pool.GetElement()
	_ = s.chunk.Data.(*payload).Copy(src)
	s.data = s.chunk.Data.(*payload).GetSlice()
}

// release returns the segment's pooled chunk, if any, generalizing
// PcpPacket.ReturnChunk.
func (s *segment) release(pool *rp.RingPool) {
	if s.chunk != nil {
		pool.ReturnElement(s.chunk)
		s.chunk = nil
		s.data = nil
	}
}

// header extracts the wire header for this segment given the sender's
// current snd_una/wnd, used at encode time and for the ACK template.
func (s *segment) header() shared.Header {
	return shared.Header{
		Conv: s.conv,
		Cmd:  s.cmd,
		Frg:  s.frg,
		Wnd:  s.wnd,
		Ts:   s.ts,
		Sn:   s.sn,
		Una:  s.una,
		Len:  uint32(len(s.data)),
	}
}

// encode writes this segment's header and payload into dst, returning
// the number of bytes written. dst must have at least
// shared.HeaderSize+len(s.data) bytes of capacity.
func (s *segment) encode(dst []byte) int {
	n := shared.EncodeHeader(dst, s.header())
	n += copy(dst[n:], s.data)
	return n
}
