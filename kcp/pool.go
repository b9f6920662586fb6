package kcp

import (
	"fmt"

	rp "github.com/Clouded-Sabre/ringpool/lib"
)

// emptySlice is reused by payload.Reset, exactly as lib/pool.go keeps a
// single shared zero-filled slice for SetEmptySlice/Reset instead of
// allocating a fresh one on every release.
var emptySlice []byte

func setEmptySlice(n int) {
	if len(emptySlice) < n {
		emptySlice = make([]byte, n)
	}
}

// payload is the pooled element backing one segment's worth of bytes.
// It implements rp.DataInterface the same way lib/pool.go's Payload
// does for PcpPacket, so a Session's segment traffic is recycled
// through a ringpool.RingPool instead of allocated and garbage
// collected per segment.
type payload struct {
	bytes  []byte
	length int
}

// newPayload is the rp.RingPool element factory, mirroring
// lib/pool.go's NewPayload signature (variadic params, first one the
// desired buffer length).
func newPayload(params ...interface{}) rp.DataInterface {
	size := mtuDef
	if len(params) == 1 {
		if n, ok := params[0].(int); ok && n > 0 {
			size = n
		}
	}
	setEmptySlice(size)
	return &payload{bytes: make([]byte, size)}
}

func (p *payload) SetContent(s string) {
	p.bytes = []byte(s)
	p.length = len(s)
}

// Reset clears the payload's content without releasing the backing
// array, so the element can be recycled by the pool.
func (p *payload) Reset() {
	copy(p.bytes, emptySlice)
	p.length = 0
}

func (p *payload) PrintContent() {
	fmt.Println("kcp payload:", string(p.bytes[:p.length]))
}

// Copy stores src, growing into a freshly allocated buffer if it
// outgrows the pooled one — payload sizes vary with fragmentation while
// the pool is sized for the common case (one mss-sized chunk).
func (p *payload) Copy(src []byte) error {
	if len(src) > len(p.bytes) {
		p.bytes = make([]byte, len(src))
	}
	copy(p.bytes, src)
	p.length = len(src)
	return nil
}

func (p *payload) GetSlice() []byte {
	return p.bytes[:p.length]
}

// newSegmentPool builds the per-session ringpool.RingPool used to back
// segment payloads. Every Session owns its own pool (no package-level
// Pool var, unlike lib/pool.go). The one package-level variable is
// emptySlice, the zero-filled slice every pool's Reset copies from.
func newSegmentPool(name string, size, mss int) *rp.RingPool {
	pool := rp.NewRingPool(name, size, newPayload, mss)
	pool.Debug = false
	return pool
}
