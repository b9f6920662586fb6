package kcp

// Protocol-wide defaults, carried over from the reference implementation.
const (
	rtoNoDelay = 30    // nodelay mode minimum RTO
	rtoMin     = 100   // normal mode minimum RTO
	rtoDef     = 200   // initial RTO before any sample
	rtoMax     = 60000 // RTO ceiling

	wndSnd = 32  // default send window, in segments
	wndRcv = 128 // default receive window, in segments; also the fragment-count cap

	mtuDef      = 1400 // default MTU
	headerBytes = 24   // fixed segment header size, see package shared

	fastLimitDef = 5 // default per-segment fast-retransmit cap

	intervalDef = 100  // default flush interval, ms
	intervalMin = 10   // minimum flush interval
	intervalMax = 5000 // maximum flush interval

	deadLinkDef = 20 // default dead-link xmit cap

	threshInit = 2 // initial ssthresh
	threshMin  = 2 // floor for ssthresh

	probeInitMs  = 7000   // zero-window probe initial backoff
	probeLimitMs = 120000 // zero-window probe backoff ceiling

	// probe flag bits
	askSend uint32 = 1 // caller wants a WASK segment emitted
	askTell uint32 = 2 // caller wants a WINS segment emitted

	// deadState is the sentinel all-ones value state latches to once a
	// segment's xmit count reaches dead_link.
	deadState uint32 = 0xffffffff

	clockJumpMs = 10000 // ts_flush resync threshold on clock jump/long pause
)
