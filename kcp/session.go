// Package kcp implements the single-owner control block described by
// this repository's protocol: a reliable, ordered, message-oriented
// session that runs atop an unreliable, unordered datagram substrate.
// A Session never opens a socket or reads a clock; the host feeds it
// datagrams via Input, drives it with Update/Check on its own
// monotonic millisecond clock, and receives outbound datagrams through
// a synchronous output callback.
//
// A Session is not safe for concurrent use: every entry point must be
// serialized by the host, the same discipline lib/pcpcore.go's single
// goroutine-per-connection model applies at the connection level.
package kcp

import (
	"fmt"

	rp "github.com/Clouded-Sabre/ringpool/lib"
)

// OutputFunc is the host-supplied sink a Session writes outbound
// datagrams to. It is called synchronously from Flush (and indirectly
// from Update) on the caller's thread; it must not call back into the
// same Session.
type OutputFunc func(buf []byte, user interface{})

// ackItem is one pending (sn, ts) pair awaiting transmission as an ACK.
type ackItem struct {
	sn uint32
	ts uint32
}

// Session is one control block per conversation. See the package doc
// and the design notes in DESIGN.md for the invariants it maintains.
type Session struct {
	conv uint32

	sndUna uint32
	sndNxt uint32
	rcvNxt uint32

	sndWnd   uint32
	rcvWnd   uint32
	rmtWnd   uint32
	cwnd     uint32
	incr     uint32
	ssthresh uint32

	rxSrtt   uint32
	rxRttval uint32
	rxRto    uint32
	rxMinrto uint32

	current   uint32
	interval  uint32
	tsFlush   uint32
	tsProbe   uint32
	probeWait uint32

	mtu int
	mss int

	stream              bool
	nodelay             int
	nocwnd              bool
	fastresend          uint32
	fastlimit           uint32
	deadLink            uint32
	conservativeFastAck bool

	probe   uint32
	state   uint32
	updated bool
	xmit    uint32

	sndQueue []*segment
	sndBuf   []*segment
	rcvBuf   *rcvBuf
	rcvQueue []*segment
	acklist  []ackItem

	buffer []byte

	pool *rp.RingPool

	output OutputFunc
	user   interface{}

	logFunc LogFunc
	logMask LogFlag
}

// New creates a Session for the given conversation number. Parameters
// take their reference defaults; set Output before the first Flush.
func New(conv uint32, user interface{}) *Session {
	s := &Session{
		conv:      conv,
		sndWnd:    wndSnd,
		rcvWnd:    wndRcv,
		rmtWnd:    wndRcv,
		ssthresh:  threshInit,
		rxRto:     rtoDef,
		rxMinrto:  rtoMin,
		interval:  intervalDef,
		mtu:       mtuDef,
		mss:       mtuDef - headerBytes,
		deadLink:  deadLinkDef,
		fastlimit: fastLimitDef,
		user:      user,
		rcvBuf:    newRcvBuf(),
	}
	s.buffer = make([]byte, 3*(s.mtu+headerBytes))
	s.pool = newSegmentPool(fmt.Sprintf("kcp(%d): ", conv), int(wndSnd+wndRcv)*2, s.mtu)
	return s
}

// SetOutput installs the datagram sink.
func (s *Session) SetOutput(fn OutputFunc) { s.output = fn }

// GetConv returns the session's conversation number.
func (s *Session) GetConv() uint32 { return s.conv }

// GetMTU returns the current MTU.
func (s *Session) GetMTU() int { return s.mtu }

// GetWindowSize returns the current (send, receive) window sizes in
// segments.
func (s *Session) GetWindowSize() (snd, rcv uint32) { return s.sndWnd, s.rcvWnd }

// WaitingForSend returns the number of segments not yet fully
// acknowledged: those already in snd_buf plus those still queued in
// snd_queue. Hosts use it to implement write-side backpressure.
func (s *Session) WaitingForSend() int {
	return len(s.sndBuf) + len(s.sndQueue)
}

// Dead reports whether the session has latched into the dead-link
// state (some segment's xmit count reached DeadLink). The protocol
// itself keeps retrying; Dead only makes the latch observable without
// the host needing to know its sentinel representation.
func (s *Session) Dead() bool { return s.state == deadState }

// TotalRetransmits returns the session-wide count of timeout-driven
// retransmissions across every segment, distinct from any one
// segment's own xmit count.
func (s *Session) TotalRetransmits() uint32 { return s.xmit }

// SetMTU changes the maximum datagram size Flush will emit. Rejects
// values below the protocol floor.
func (s *Session) SetMTU(mtu int) error {
	if mtu < 50 || mtu < headerBytes {
		return newError(KindInvalidMTU, "kcp: mtu %d is below the minimum of %d", mtu, 50)
	}
	s.mtu = mtu
	s.mss = mtu - headerBytes
	s.buffer = make([]byte, 3*(mtu+headerBytes))
	return nil
}

// SetInterval clamps and sets the flush cadence in milliseconds.
func (s *Session) SetInterval(interval int) {
	switch {
	case interval > intervalMax:
		interval = intervalMax
	case interval < intervalMin:
		interval = intervalMin
	}
	s.interval = uint32(interval)
}

// NoDelay configures the fast-mode knobs: nodelay selects the RTO
// floor and back-off behavior (0 normal, 1 fast, 2 "very fast"),
// interval<0 leaves the flush cadence unchanged, resend is the
// duplicate-ACK fast-retransmit threshold (0 disables), and nc
// disables congestion-window limiting when true.
func (s *Session) NoDelay(nodelay, interval, resend int, nc bool) {
	if nodelay >= 0 {
		s.nodelay = nodelay
		if nodelay > 0 {
			s.rxMinrto = rtoNoDelay
		} else {
			s.rxMinrto = rtoMin
		}
	}
	if interval >= 0 {
		s.SetInterval(interval)
	}
	if resend >= 0 {
		s.fastresend = uint32(resend)
	}
	s.nocwnd = nc
}

// SetFastLimit caps fast retransmission: a segment is fast-retransmitted
// only while its total transmission count is at most limit (0 disables
// the cap, and a negative limit wraps to a cap no count reaches).
func (s *Session) SetFastLimit(limit int) { s.fastlimit = uint32(limit) }

// SetDeadLink sets the transmission-count cap after which state
// latches to the dead-link sentinel.
func (s *Session) SetDeadLink(n uint32) { s.deadLink = n }

// SetFastAckConserve toggles the "conservative fast-ack" variant
// described in the design notes: when true, parse_fast_ack only counts
// an ACK against a segment if that ACK's timestamp is not older than
// the segment's own, rather than counting every higher-sn ACK
// unconditionally.
func (s *Session) SetFastAckConserve(on bool) { s.conservativeFastAck = on }

// SetWindowSize sets the local send and receive window sizes, in
// segments. rcv must be at least wndRcv since a fragmented message can
// need up to that many receive slots.
func (s *Session) SetWindowSize(snd, rcv uint32) {
	if snd > 0 {
		s.sndWnd = snd
	}
	if rcv > wndRcv {
		s.rcvWnd = rcv
	} else {
		s.rcvWnd = wndRcv
	}
}

// SetStreamMode toggles message framing (frg carries fragment index)
// versus stream framing (new sends may be merged into the snd_queue
// tail segment).
func (s *Session) SetStreamMode(on bool) { s.stream = on }
