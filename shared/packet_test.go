package shared

import "testing"

func TestHeaderRoundTrip(t *testing.T) {
	cases := []Header{
		{Conv: 0x1234, Cmd: CmdPush, Frg: 2, Wnd: 128, Ts: 1000, Sn: 7, Una: 3, Len: 5},
		{Conv: 0, Cmd: CmdAck, Frg: 0, Wnd: 0, Ts: 0, Sn: 0, Una: 0, Len: 0},
		{Conv: 0xffffffff, Cmd: CmdWask, Frg: 255, Wnd: 65535, Ts: 0xffffffff, Sn: 0xffffffff, Una: 0xffffffff, Len: 0},
		{Conv: 42, Cmd: CmdWins, Frg: 0, Wnd: 1, Ts: 1, Sn: 1, Una: 1, Len: 0},
	}
	buf := make([]byte, HeaderSize)
	for _, h := range cases {
		n := EncodeHeader(buf, h)
		if n != HeaderSize {
			t.Fatalf("EncodeHeader returned %d, want %d", n, HeaderSize)
		}
		got, err := DecodeHeader(buf)
		if err != nil {
			t.Fatalf("DecodeHeader: %v", err)
		}
		if got != h {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, h)
		}
	}
}

func TestDecodeHeaderTruncated(t *testing.T) {
	if _, err := DecodeHeader(make([]byte, HeaderSize-1)); err == nil {
		t.Fatal("expected error decoding truncated header")
	}
}

func TestPeekConv(t *testing.T) {
	buf := make([]byte, HeaderSize)
	EncodeHeader(buf, Header{Conv: 0xdeadbeef, Cmd: CmdPush})
	conv, ok := PeekConv(buf)
	if !ok || conv != 0xdeadbeef {
		t.Fatalf("PeekConv = (%x, %v), want (deadbeef, true)", conv, ok)
	}
	if _, ok := PeekConv(buf[:3]); ok {
		t.Fatal("PeekConv should fail on short buffer")
	}
}

func TestIsCommand(t *testing.T) {
	for _, c := range []uint8{CmdPush, CmdAck, CmdWask, CmdWins} {
		if !IsCommand(c) {
			t.Fatalf("IsCommand(%d) = false, want true", c)
		}
	}
	if IsCommand(0) || IsCommand(99) {
		t.Fatal("IsCommand should reject unknown commands")
	}
}
