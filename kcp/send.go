package kcp

// Send fragments buf into one or more segments appended to snd_queue.
// Segments enqueued here carry only frg (and, in stream mode, merged
// payload bytes); sn, una, ts, cmd and the retransmission bookkeeping
// are assigned later, at flush-time promotion into snd_buf.
//
// Send rejects a message that would need wndRcv or more fragments,
// since the receive window can never hold more than that many
// fragments of one logical message (spec §4.2). An empty buf is still
// carried as one zero-length segment.
func (s *Session) Send(buf []byte) error {
	if len(buf) == 0 {
		seg := &segment{}
		seg.setPayload(s.pool, nil)
		seg.frg = 0
		s.sndQueue = append(s.sndQueue, seg)
		return nil
	}

	mss := s.mss

	mergeInto := -1
	mergeLen := 0
	if s.stream && len(s.sndQueue) > 0 {
		tail := s.sndQueue[len(s.sndQueue)-1]
		if room := mss - len(tail.data); room > 0 {
			mergeInto = len(s.sndQueue) - 1
			mergeLen = room
			if mergeLen > len(buf) {
				mergeLen = len(buf)
			}
		}
	}

	remaining := buf[mergeLen:]
	count := 0
	if len(remaining) > 0 {
		count = (len(remaining) + mss - 1) / mss
	}
	if count >= wndRcv {
		return newError(KindTooLarge, "kcp: message needs %d fragments, limit is %d", count, wndRcv)
	}

	if mergeInto >= 0 && mergeLen > 0 {
		tail := s.sndQueue[mergeInto]
		merged := make([]byte, len(tail.data)+mergeLen)
		copy(merged, tail.data)
		copy(merged[len(tail.data):], buf[:mergeLen])
		tail.release(s.pool)
		tail.setPayload(s.pool, merged)
		tail.frg = 0
	}

	firstNew := len(s.sndQueue)
	offset := 0
	for i := 0; i < count; i++ {
		size := mss
		if left := len(remaining) - offset; left < size {
			size = left
		}
		seg := &segment{}
		seg.setPayload(s.pool, remaining[offset:offset+size])
		offset += size
		s.sndQueue = append(s.sndQueue, seg)
	}

	if !s.stream {
		for i, seg := range s.sndQueue[firstNew:] {
			seg.frg = uint8(count - 1 - i)
		}
	}

	return nil
}
