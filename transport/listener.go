package transport

import (
	"errors"
	"log"
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Clouded-Sabre/swift-kcp/shared"
)

// Listener accepts inbound conversations on one shared UDP socket,
// demultiplexing datagrams by remote address the way lib/pcpcore.go's
// PcpCore keys protocol connections by address pair, except here each
// distinct remote peer gets its own Conn rather than sharing one per
// local IP. The Conn adopts the conversation number carried in the
// peer's first datagram.
type Listener struct {
	pc      net.PacketConn
	limiter *rate.Limiter

	mu    sync.Mutex
	conns map[string]*Conn

	accept      chan *Conn
	closeSignal chan struct{}
	closeOnce   sync.Once
	wg          sync.WaitGroup
}

// Listen opens a UDP socket at address and starts demultiplexing
// inbound datagrams into per-peer Conns.
func Listen(network, address string) (*Listener, error) {
	pc, err := net.ListenPacket(network, address)
	if err != nil {
		return nil, err
	}
	l := &Listener{
		pc:          pc,
		conns:       make(map[string]*Conn),
		accept:      make(chan *Conn, 16),
		closeSignal: make(chan struct{}),
	}
	l.wg.Add(1)
	go l.readLoop()
	return l, nil
}

// SetRateLimit installs a shared limiter every Conn accepted from this
// point on pushes its output through, e.g. to model a bandwidth-capped
// link in a test gateway. The limiter delays writes; it never drops them.
func (l *Listener) SetRateLimit(limiter *rate.Limiter) { l.limiter = limiter }

func (l *Listener) readLoop() {
	defer l.wg.Done()
	buf := make([]byte, 65536)
	for {
		select {
		case <-l.closeSignal:
			return
		default:
		}
		l.pc.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		n, addr, err := l.pc.ReadFrom(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			select {
			case <-l.closeSignal:
			default:
				log.Println("transport: listener read failed:", err)
			}
			return
		}
		data := make([]byte, n)
		copy(data, buf[:n])

		key := addr.String()
		l.mu.Lock()
		c, known := l.conns[key]
		if !known {
			conv, ok := shared.PeekConv(data)
			if !ok {
				l.mu.Unlock()
				continue
			}
			c = newConn(l.pc, addr, conv, l.limiter, false)
			l.conns[key] = c
		}
		l.mu.Unlock()

		if !known {
			select {
			case l.accept <- c:
			case <-l.closeSignal:
				c.Close()
				return
			}
		}
		c.input(data)
	}
}

// Accept blocks until a datagram from a previously unseen remote
// address arrives, returning the Conn created for it.
func (l *Listener) Accept() (*Conn, error) {
	select {
	case c := <-l.accept:
		return c, nil
	case <-l.closeSignal:
		return nil, errors.New("transport: listener closed")
	}
}

func (l *Listener) Close() error {
	l.closeOnce.Do(func() {
		close(l.closeSignal)
		l.pc.Close()
	})
	l.wg.Wait()

	l.mu.Lock()
	conns := make([]*Conn, 0, len(l.conns))
	for _, c := range l.conns {
		conns = append(conns, c)
	}
	l.mu.Unlock()
	for _, c := range conns {
		c.Close()
	}
	return nil
}

func (l *Listener) Addr() net.Addr { return l.pc.LocalAddr() }
