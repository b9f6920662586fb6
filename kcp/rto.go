package kcp

// updateAck folds one new RTT sample (in milliseconds) into rx_srtt and
// rx_rttval using the same smoothing weights as the reference
// implementation, then recomputes rx_rto from them. Negative samples
// are impossible clock skew and are discarded rather than folded in.
func (s *Session) updateAck(rtt int32) {
	if rtt < 0 {
		return
	}
	if s.rxSrtt == 0 {
		s.rxSrtt = uint32(rtt)
		s.rxRttval = uint32(rtt) / 2
	} else {
		delta := rtt - int32(s.rxSrtt)
		if delta < 0 {
			delta = -delta
		}
		s.rxRttval = (3*s.rxRttval + uint32(delta)) / 4
		s.rxSrtt = (7*s.rxSrtt + uint32(rtt)) / 8
		if s.rxSrtt < 1 {
			s.rxSrtt = 1
		}
	}

	rto := s.rxSrtt + max32(s.interval, 4*s.rxRttval)
	s.rxRto = clampU32(rto, s.rxMinrto, rtoMax)
}

func max32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

func min32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

func clampU32(v, lo, hi uint32) uint32 {
	return max32(lo, min32(v, hi))
}
