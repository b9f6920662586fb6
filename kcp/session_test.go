package kcp

import (
	"testing"
)

// link wires two sessions' output callbacks into in-memory queues so a
// test can drive both sides without any real socket.
type link struct {
	a, b     *Session
	aToB     [][]byte
	bToA     [][]byte
	dropAtoB map[int]bool
	dropBtoA map[int]bool
	sentAtoB int
	sentBtoA int
}

func newLink() *link {
	l := &link{dropAtoB: map[int]bool{}, dropBtoA: map[int]bool{}}
	l.a = New(42, nil)
	l.b = New(42, nil)
	l.a.SetOutput(func(buf []byte, _ interface{}) {
		cp := append([]byte(nil), buf...)
		if !l.dropAtoB[l.sentAtoB] {
			l.aToB = append(l.aToB, cp)
		}
		l.sentAtoB++
	})
	l.b.SetOutput(func(buf []byte, _ interface{}) {
		cp := append([]byte(nil), buf...)
		if !l.dropBtoA[l.sentBtoA] {
			l.bToA = append(l.bToA, cp)
		}
		l.sentBtoA++
	})
	return l
}

// step advances both sessions' clocks by ms milliseconds and delivers
// any datagrams queued by the previous step.
func (l *link) step(now, ms uint32) uint32 {
	for _, dg := range l.aToB {
		l.b.Input(dg)
	}
	for _, dg := range l.bToA {
		l.a.Input(dg)
	}
	l.aToB, l.bToA = nil, nil

	now += ms
	l.a.Update(now)
	l.b.Update(now)
	return now
}

func TestSendReceiveNoLoss(t *testing.T) {
	l := newLink()
	if err := l.a.Send([]byte("hello")); err != nil {
		t.Fatalf("Send: %v", err)
	}

	now := uint32(0)
	buf := make([]byte, 64)
	for i := 0; i < 20; i++ {
		now = l.step(now, 20)
		if n, err := l.b.Receive(buf); err == nil {
			if string(buf[:n]) != "hello" {
				t.Fatalf("got %q, want %q", buf[:n], "hello")
			}
			return
		}
	}
	t.Fatal("message never arrived")
}

func TestFragmentedMessage(t *testing.T) {
	l := newLink()
	big := make([]byte, 5000)
	for i := range big {
		big[i] = byte(i)
	}
	if err := l.a.Send(big); err != nil {
		t.Fatalf("Send: %v", err)
	}

	now := uint32(0)
	buf := make([]byte, 8192)
	for i := 0; i < 80; i++ {
		now = l.step(now, 20)
		if n, err := l.b.Receive(buf); err == nil {
			if n != len(big) {
				t.Fatalf("got %d bytes, want %d", n, len(big))
			}
			for i := range big {
				if buf[i] != big[i] {
					t.Fatalf("byte %d mismatch", i)
				}
			}
			return
		}
	}
	t.Fatal("fragmented message never reassembled")
}

func TestSendTooLargeRejected(t *testing.T) {
	l := newLink()
	huge := make([]byte, int(wndRcv)*(l.a.mss+1))
	err := l.a.Send(huge)
	if err == nil {
		t.Fatal("expected an error for an oversized message")
	}
	kerr, ok := err.(*Error)
	if !ok || kerr.Kind != KindTooLarge {
		t.Fatalf("got %v, want KindTooLarge", err)
	}
	if len(l.a.sndQueue) != 0 {
		t.Fatal("a rejected Send must not mutate snd_queue")
	}
}

func TestSinglePacketLossIsRetransmitted(t *testing.T) {
	l := newLink()
	l.dropAtoB[0] = true // drop the first PUSH
	if err := l.a.Send([]byte("resend me")); err != nil {
		t.Fatalf("Send: %v", err)
	}

	now := uint32(0)
	buf := make([]byte, 64)
	for i := 0; i < 100; i++ {
		now = l.step(now, 20)
		if n, err := l.b.Receive(buf); err == nil {
			if string(buf[:n]) != "resend me" {
				t.Fatalf("got %q", buf[:n])
			}
			return
		}
	}
	t.Fatal("lost segment was never retransmitted")
}

func TestFastRetransmitOnDuplicateAck(t *testing.T) {
	l := newLink()
	l.a.NoDelay(1, 10, 2, true) // fastresend=2
	l.b.NoDelay(1, 10, 2, true)
	// force each tiny PUSH segment into its own datagram so dropAtoB's
	// per-datagram index lines up with per-segment loss: at the minimum
	// MTU of 50, two 26-byte segments (24-byte header + 2 bytes) do not fit
	l.a.SetMTU(50)
	l.b.SetMTU(50)

	l.dropAtoB[0] = true // lose segment 0, segments 1-3 arrive and ack past it
	for i := 0; i < 4; i++ {
		if err := l.a.Send([]byte{byte(i), byte(i)}); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}

	now := uint32(0)
	buf := make([]byte, 64)
	recovered := false
	for i := 0; i < 50; i++ {
		now = l.step(now, 10)
		for {
			if _, err := l.b.Receive(buf); err != nil {
				break
			}
			recovered = true
		}
		if recovered {
			break
		}
	}
	if !recovered {
		t.Fatal("fast retransmit never recovered the dropped segment")
	}
}

func TestZeroWindowProbe(t *testing.T) {
	l := newLink()
	if err := l.a.Send([]byte("x")); err != nil {
		t.Fatal(err)
	}
	// force the remote window view to zero to trigger probing, as if
	// the peer's own receive window had filled up
	l.a.rmtWnd = 0

	now := uint32(0)
	sawProbe := false
	for i := 0; i < 400; i++ {
		now = l.step(now, 1000)
		if l.a.probeWait != 0 {
			sawProbe = true
			break
		}
	}
	if !sawProbe {
		t.Fatal("zero window never armed a probe backoff")
	}
}

func TestDeadLinkLatches(t *testing.T) {
	l := newLink()
	l.a.SetDeadLink(2)
	l.dropAtoB[0] = true
	l.dropAtoB[1] = true
	l.dropAtoB[2] = true
	l.dropAtoB[3] = true

	if err := l.a.Send([]byte("never arrives")); err != nil {
		t.Fatal(err)
	}

	now := uint32(0)
	for i := 0; i < 50 && !l.a.Dead(); i++ {
		now = l.step(now, 200)
	}
	if !l.a.Dead() {
		t.Fatal("session never latched dead after exceeding dead_link retransmissions")
	}
}

func TestPeekSizeNoMessage(t *testing.T) {
	s := New(1, nil)
	if _, err := s.PeekSize(); err == nil {
		t.Fatal("expected an error on an empty rcv_queue")
	}
}

func TestWaitingForSend(t *testing.T) {
	l := newLink()
	if l.a.WaitingForSend() != 0 {
		t.Fatal("fresh session should have nothing outstanding")
	}
	l.a.Send([]byte("abc"))
	if l.a.WaitingForSend() != 1 {
		t.Fatalf("got %d, want 1", l.a.WaitingForSend())
	}
}
