package kcp

// Sequence numbers and timestamps are 32-bit and wrap. Every ordering
// comparison in this package goes through these helpers rather than a
// plain <, exactly as lib/utils.go's isGreater/isLess family does for
// the teacher's 32-bit ack numbers, but using the signed-difference
// idiom spelled out by the protocol instead of the teacher's
// distance-from-wrap arithmetic.

func timediff(later, earlier uint32) int32 {
	return int32(later - earlier)
}

// seqLess reports whether a comes strictly before b in sequence order.
func seqLess(a, b uint32) bool {
	return timediff(a, b) < 0
}

// seqLessEq reports whether a comes at or before b in sequence order.
func seqLessEq(a, b uint32) bool {
	return timediff(a, b) <= 0
}

// seqGreater reports whether a comes strictly after b in sequence order.
func seqGreater(a, b uint32) bool {
	return timediff(a, b) > 0
}

// seqGreaterEq reports whether a comes at or after b in sequence order.
func seqGreaterEq(a, b uint32) bool {
	return timediff(a, b) >= 0
}
