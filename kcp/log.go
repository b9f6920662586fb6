package kcp

import "fmt"

// LogFlag selects which category of internal event a Session reports
// through its log sink, mirroring the reference implementation's
// logmask bitmask (see e.g. the other_examples KCP ports' writelog
// field) collapsed to the categories this control block can itself
// observe.
type LogFlag uint32

const (
	LogSend    LogFlag = 1 << iota // a segment was promoted from snd_queue to snd_buf
	LogRecv                        // a message was delivered to the caller by Receive
	LogInData                      // a PUSH segment was accepted by input
	LogOutData                     // a PUSH segment was written by flush for the first time
	LogInAck                       // an ACK segment was accepted by input
	LogOutAck                      // an ACK segment was written by flush
	LogProbe                       // a WASK/WINS segment was sent or received
	LogRTO                         // a segment was retransmitted (timeout or fast retransmit)

	LogAll LogFlag = LogSend | LogRecv | LogInData | LogOutData | LogInAck | LogOutAck | LogProbe | LogRTO
)

// LogFunc is a host-supplied sink for Session diagnostics. It is called
// synchronously from the entry point that produced the event, on the
// caller's thread, exactly like the output callback.
type LogFunc func(s *Session, flag LogFlag, msg string)

// SetLogOutput installs the sink and the mask of flags it should
// receive. A nil sink (the default) disables logging entirely.
func (s *Session) SetLogOutput(fn LogFunc, mask LogFlag) {
	s.logFunc = fn
	s.logMask = mask
}

func (s *Session) logf(flag LogFlag, format string, args ...interface{}) {
	if s.logFunc == nil || s.logMask&flag == 0 {
		return
	}
	s.logFunc(s, flag, fmt.Sprintf(format, args...))
}
