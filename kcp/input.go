package kcp

import "github.com/Clouded-Sabre/swift-kcp/shared"

// Input parses the concatenation of zero or more segments contained in
// data, applying UNA advancement, ACK removal, duplicate detection and
// ordered insertion as described in spec §4.4/§4.5. It never leaves
// session state corrupted on a failing call: errors are returned as
// soon as a malformed segment is found, after fully processing every
// well-formed segment that preceded it in the same datagram.
func (s *Session) Input(data []byte) error {
	sndUnaBefore := s.sndUna

	var (
		hasAck   bool
		maxAck   uint32
		maxAckTs uint32
	)

	for len(data) > 0 {
		if len(data) < shared.HeaderSize {
			return newError(KindTruncated, "kcp: %d bytes left, need %d for header", len(data), shared.HeaderSize)
		}
		h, err := shared.DecodeHeader(data)
		if err != nil {
			return newError(KindTruncated, "%v", err)
		}
		data = data[shared.HeaderSize:]

		if int(h.Len) > len(data) {
			return newError(KindTruncated, "kcp: segment declares %d bytes of payload, %d remain", h.Len, len(data))
		}
		payload := data[:h.Len]
		data = data[h.Len:]

		if h.Conv != s.conv {
			return newError(KindForeignConv, "kcp: got conv %d, want %d", h.Conv, s.conv)
		}
		if !shared.IsCommand(h.Cmd) {
			return newError(KindBadCommand, "kcp: unknown command %d", h.Cmd)
		}

		s.rmtWnd = uint32(h.Wnd)
		s.parseUna(h.Una)
		s.shrinkBuf()

		switch h.Cmd {
		case shared.CmdAck:
			if seqGreaterEq(s.current, h.Ts) {
				s.updateAck(timediff(s.current, h.Ts))
			}
			s.parseAck(h.Sn)
			s.shrinkBuf()
			if !hasAck || seqGreater(h.Sn, maxAck) {
				maxAck, maxAckTs = h.Sn, h.Ts
			}
			hasAck = true
			s.logf(LogInAck, "in ack sn=%d", h.Sn)

		case shared.CmdPush:
			if seqLess(h.Sn, s.rcvNxt+s.rcvWnd) {
				s.acklist = append(s.acklist, ackItem{sn: h.Sn, ts: h.Ts})
				if seqGreaterEq(h.Sn, s.rcvNxt) {
					seg := &segment{conv: h.Conv, cmd: h.Cmd, frg: h.Frg, wnd: h.Wnd, ts: h.Ts, sn: h.Sn, una: h.Una}
					seg.setPayload(s.pool, payload)
					s.parseData(seg)
				}
			}
			s.logf(LogInData, "in push sn=%d frg=%d len=%d", h.Sn, h.Frg, h.Len)

		case shared.CmdWask:
			s.probe |= askTell
			s.logf(LogProbe, "in wask")

		case shared.CmdWins:
			s.logf(LogProbe, "in wins wnd=%d", h.Wnd)
		}
	}

	if hasAck {
		s.parseFastAck(maxAck, maxAckTs)
	}

	if seqGreater(s.sndUna, sndUnaBefore) {
		s.growCwnd()
	}

	return nil
}

// parseUna removes from snd_buf every segment with sn < una: the peer
// has told us it no longer needs anything before una.
func (s *Session) parseUna(una uint32) {
	i := 0
	for i < len(s.sndBuf) && seqLess(s.sndBuf[i].sn, una) {
		s.sndBuf[i].release(s.pool)
		i++
	}
	if i > 0 {
		s.sndBuf = s.sndBuf[i:]
	}
}

// shrinkBuf recomputes snd_una from the current contents of snd_buf.
func (s *Session) shrinkBuf() {
	if len(s.sndBuf) > 0 {
		s.sndUna = s.sndBuf[0].sn
	} else {
		s.sndUna = s.sndNxt
	}
}

// parseAck removes the snd_buf entry with the exact sequence number sn,
// if present.
func (s *Session) parseAck(sn uint32) {
	if seqLess(sn, s.sndUna) || seqGreaterEq(sn, s.sndNxt) {
		return
	}
	for i, seg := range s.sndBuf {
		if seg.sn == sn {
			seg.release(s.pool)
			s.sndBuf = append(s.sndBuf[:i], s.sndBuf[i+1:]...)
			return
		}
		if seqGreater(seg.sn, sn) {
			return
		}
	}
}

// parseFastAck increments fastack on every snd_buf segment older than
// maxack, driving fast retransmit. Under the conservative variant, a
// segment is only counted if its own timestamp is no newer than the
// triggering ACK's.
func (s *Session) parseFastAck(maxack, latestTs uint32) {
	if seqLess(maxack, s.sndUna) || seqGreaterEq(maxack, s.sndNxt) {
		return
	}
	for _, seg := range s.sndBuf {
		if seqGreaterEq(seg.sn, maxack) {
			break
		}
		if s.conservativeFastAck && seqGreater(seg.ts, latestTs) {
			continue
		}
		seg.fastack++
	}
}

// parseData drops out-of-window or duplicate arrivals, otherwise
// inserts newseg into rcv_buf and promotes any now-contiguous prefix.
func (s *Session) parseData(newseg *segment) {
	sn := newseg.sn
	if seqLess(sn, s.rcvNxt) || seqGreaterEq(sn, s.rcvNxt+s.rcvWnd) || s.rcvBuf.has(sn) {
		newseg.release(s.pool)
		return
	}
	s.rcvBuf.insert(newseg)
	s.promoteFromRcvBuf()
}

// promoteFromRcvBuf moves the contiguous run starting at rcv_nxt from
// rcv_buf into rcv_queue, advancing rcv_nxt by one per element, until
// rcv_buf no longer starts at rcv_nxt or rcv_queue is full.
func (s *Session) promoteFromRcvBuf() {
	for {
		min := s.rcvBuf.min()
		if min == nil || min.sn != s.rcvNxt || len(s.rcvQueue) >= int(s.rcvWnd) {
			return
		}
		s.rcvBuf.remove(min.sn)
		s.rcvQueue = append(s.rcvQueue, min)
		s.rcvNxt++
	}
}

// growCwnd applies spec §4.4's slow-start/congestion-avoidance growth
// after real cumulative ACK progress, clamped to rmt_wnd.
func (s *Session) growCwnd() {
	if s.rmtWnd == 0 {
		return
	}
	if s.cwnd < s.rmtWnd {
		mss := uint32(s.mss)
		if s.cwnd < s.ssthresh {
			s.cwnd++
			s.incr += mss
		} else {
			if s.incr < mss {
				s.incr = mss
			}
			s.incr += mss*mss/s.incr + mss/16
			if (s.cwnd+1)*mss <= s.incr {
				s.cwnd++
			}
		}
		if s.cwnd > s.rmtWnd {
			s.cwnd = s.rmtWnd
			s.incr = s.rmtWnd * mss
		}
	}
}
