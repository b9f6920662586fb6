package kcp

// PeekSize returns the size of the next complete message in rcv_queue
// without consuming it, or an error if none is ready yet.
func (s *Session) PeekSize() (int, error) {
	return s.peekSize()
}

func (s *Session) peekSize() (int, error) {
	if len(s.rcvQueue) == 0 {
		return 0, newError(KindNoMessage, "kcp: no message available")
	}
	head := s.rcvQueue[0]
	if head.frg == 0 {
		return len(head.data), nil
	}
	need := int(head.frg) + 1
	if len(s.rcvQueue) < need {
		return 0, newError(KindIncomplete, "kcp: message incomplete, have %d of %d fragments", len(s.rcvQueue), need)
	}
	size := 0
	for _, seg := range s.rcvQueue[:need] {
		size += len(seg.data)
	}
	return size, nil
}

// Receive copies one complete logical message into buf, consuming it
// from rcv_queue and returning its length. See spec §4.3 for the error
// conditions and the window-reopen (ASK_TELL) signal.
func (s *Session) Receive(buf []byte) (int, error) {
	size, err := s.peekSize()
	if err != nil {
		return 0, err
	}
	if size > len(buf) {
		return 0, newError(KindBufferTooSmall, "kcp: buffer (%d) too small for message (%d)", len(buf), size)
	}

	wasFull := len(s.rcvQueue) >= int(s.rcvWnd)

	n, count := 0, 0
	for _, seg := range s.rcvQueue {
		n += copy(buf[n:], seg.data)
		count++
		if seg.frg == 0 {
			break
		}
	}
	for _, seg := range s.rcvQueue[:count] {
		seg.release(s.pool)
	}
	s.rcvQueue = s.rcvQueue[count:]

	if wasFull && len(s.rcvQueue) < int(s.rcvWnd) {
		s.probe |= askTell
	}

	s.promoteFromRcvBuf()
	s.logf(LogRecv, "recv: %d bytes in %d fragment(s)", n, count)

	return n, nil
}
