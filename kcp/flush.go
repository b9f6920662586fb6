package kcp

import "github.com/Clouded-Sabre/swift-kcp/shared"

// unusedRcvWnd reports how many more segments rcv_queue could still
// hold, the value advertised to the remote as our own window.
func (s *Session) unusedRcvWnd() uint32 {
	if n := uint32(len(s.rcvQueue)); n < s.rcvWnd {
		return s.rcvWnd - n
	}
	return 0
}

// Flush emits every outbound datagram this Session currently owes the
// wire: pending ACKs, a window probe or its reply, newly promoted PUSH
// segments, and any PUSH segment due for first transmission, timeout
// retransmission or fast retransmission. It is idempotent in the sense
// that calling it twice in a row with no intervening Input/Send/Update
// produces the second time only whatever genuinely became due between
// calls.
func (s *Session) Flush() {
	if s.output == nil {
		return
	}

	ownWnd := s.unusedRcvWnd()
	size := 0

	emit := func(h shared.Header, data []byte) {
		need := shared.HeaderSize + len(data)
		if size+need > s.mtu {
			s.output(s.buffer[:size], s.user)
			size = 0
		}
		size += shared.EncodeHeader(s.buffer[size:], h)
		size += copy(s.buffer[size:], data)
	}

	for _, item := range s.acklist {
		emit(shared.Header{
			Conv: s.conv,
			Cmd:  shared.CmdAck,
			Wnd:  uint16(ownWnd),
			Ts:   item.ts,
			Sn:   item.sn,
			Una:  s.rcvNxt,
		}, nil)
		s.logf(LogOutAck, "out ack sn=%d", item.sn)
	}
	s.acklist = s.acklist[:0]

	if s.rmtWnd == 0 {
		if s.probeWait == 0 {
			s.probeWait = probeInitMs
			s.tsProbe = s.current + s.probeWait
		} else if seqGreaterEq(s.current, s.tsProbe) {
			if s.probeWait < probeInitMs {
				s.probeWait = probeInitMs
			}
			s.probeWait += s.probeWait / 2
			if s.probeWait > probeLimitMs {
				s.probeWait = probeLimitMs
			}
			s.tsProbe = s.current + s.probeWait
			s.probe |= askSend
		}
	} else {
		s.tsProbe = 0
		s.probeWait = 0
	}

	if s.probe&askSend != 0 {
		emit(shared.Header{Conv: s.conv, Cmd: shared.CmdWask, Wnd: uint16(ownWnd), Ts: s.current, Una: s.rcvNxt}, nil)
		s.logf(LogProbe, "out wask")
	}
	if s.probe&askTell != 0 {
		emit(shared.Header{Conv: s.conv, Cmd: shared.CmdWins, Wnd: uint16(ownWnd), Ts: s.current, Una: s.rcvNxt}, nil)
		s.logf(LogProbe, "out wins wnd=%d", ownWnd)
	}
	s.probe = 0

	cwndEff := min32(s.sndWnd, s.rmtWnd)
	if !s.nocwnd {
		cwndEff = min32(cwndEff, s.cwnd)
	}

	for len(s.sndQueue) > 0 && seqLess(s.sndNxt, s.sndUna+cwndEff) {
		seg := s.sndQueue[0]
		s.sndQueue = s.sndQueue[1:]

		seg.conv = s.conv
		seg.cmd = shared.CmdPush
		seg.wnd = uint16(ownWnd)
		seg.ts = s.current
		seg.sn = s.sndNxt
		s.sndNxt++
		seg.una = s.rcvNxt
		seg.resendts = s.current
		seg.rto = s.rxRto
		seg.fastack = 0
		seg.xmit = 0

		s.sndBuf = append(s.sndBuf, seg)
		s.logf(LogSend, "send: promoted sn=%d frg=%d", seg.sn, seg.frg)
	}

	resend := s.fastresend
	var lost, change bool

	for _, seg := range s.sndBuf {
		needsend := false

		switch {
		case seg.xmit == 0:
			needsend = true
			seg.rto = s.rxRto
			var rtomin uint32
			if s.nodelay == 0 {
				rtomin = s.rxRto >> 3
			}
			seg.resendts = s.current + seg.rto + rtomin

		case seqGreaterEq(s.current, seg.resendts):
			needsend = true
			switch {
			case s.nodelay == 0:
				seg.rto += max32(seg.rto, s.rxRto)
			case s.nodelay == 2:
				seg.rto += s.rxRto / 2
			default:
				seg.rto += seg.rto / 2
			}
			seg.resendts = s.current + seg.rto
			lost = true
			s.xmit++

		case resend > 0 && seg.fastack >= resend && (s.fastlimit == 0 || seg.xmit <= s.fastlimit):
			needsend = true
			seg.fastack = 0
			seg.resendts = s.current + seg.rto
			change = true
		}

		if !needsend {
			continue
		}

		seg.xmit++
		seg.ts = s.current
		seg.wnd = uint16(ownWnd)
		seg.una = s.rcvNxt
		seg.conv = s.conv

		if s.deadLink > 0 && seg.xmit >= s.deadLink {
			s.state = deadState
		}

		emit(seg.header(), seg.data)
		if seg.xmit > 1 {
			s.logf(LogRTO, "retransmit sn=%d xmit=%d", seg.sn, seg.xmit)
		} else {
			s.logf(LogOutData, "out push sn=%d frg=%d len=%d", seg.sn, seg.frg, len(seg.data))
		}
	}

	if size > 0 {
		s.output(s.buffer[:size], s.user)
	}

	if change {
		inflight := s.sndNxt - s.sndUna
		s.ssthresh = inflight / 2
		if s.ssthresh < threshMin {
			s.ssthresh = threshMin
		}
		s.cwnd = s.ssthresh + resend
		s.incr = s.cwnd * uint32(s.mss)
	}
	if lost {
		s.ssthresh = cwndEff / 2
		if s.ssthresh < threshMin {
			s.ssthresh = threshMin
		}
		s.cwnd = 1
		s.incr = uint32(s.mss)
	}
	if s.cwnd < 1 {
		s.cwnd = 1
		s.incr = uint32(s.mss)
	}
}
