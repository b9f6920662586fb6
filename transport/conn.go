// Package transport binds a kcp.Session to a real UDP socket: one
// goroutine drains the socket and feeds Input, a ticker goroutine
// drives Update/Flush, and Read/Write expose the blocking io.ReadWriter
// shape a caller expects instead of the host-driven callback contract
// the session itself presents. The binding follows the same
// goroutine-per-connection, channel-signalled-close shape lib/pcpcore.go
// and lib/client/connection.go use for their own transport layer.
package transport

import (
	"context"
	"errors"
	"log"
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Clouded-Sabre/swift-kcp/kcp"
)

const sessionUpdateInterval = 20 * time.Millisecond

// Conn is one conversation bound to a UDP peer. It is safe for
// concurrent Read/Write/Close from multiple goroutines; every call
// into the underlying Session is serialized through mu, honoring the
// session's single-owner contract.
type Conn struct {
	sess    *kcp.Session
	pc      net.PacketConn
	remote  net.Addr
	limiter *rate.Limiter
	ownsPC  bool

	closeSignal chan struct{}
	closeOnce   sync.Once
	wg          sync.WaitGroup
	mu          sync.Mutex
}

func newConn(pc net.PacketConn, remote net.Addr, conv uint32, limiter *rate.Limiter, ownsPC bool) *Conn {
	c := &Conn{
		pc:          pc,
		remote:      remote,
		limiter:     limiter,
		ownsPC:      ownsPC,
		closeSignal: make(chan struct{}),
	}
	c.sess = kcp.New(conv, c)
	c.sess.SetOutput(c.output)
	c.wg.Add(1)
	go c.updateLoop()
	return c
}

// Dial opens a dedicated UDP socket and binds a new conversation to
// address over it.
func Dial(network, address string, conv uint32) (*Conn, error) {
	pc, err := net.ListenPacket(network, "")
	if err != nil {
		return nil, err
	}
	remote, err := net.ResolveUDPAddr(network, address)
	if err != nil {
		pc.Close()
		return nil, err
	}
	c := newConn(pc, remote, conv, nil, true)
	c.wg.Add(1)
	go c.readLoop()
	return c, nil
}

// Session exposes the underlying control block for callers that need
// knobs Conn doesn't surface directly, e.g. config.Config.Apply.
func (c *Conn) Session() *kcp.Session { return c.sess }

func (c *Conn) output(buf []byte, user interface{}) {
	if c.limiter != nil {
		_ = c.limiter.WaitN(context.Background(), len(buf))
	}
	if _, err := c.pc.WriteTo(buf, c.remote); err != nil {
		log.Println("transport: write failed:", err)
	}
}

func (c *Conn) updateLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(sessionUpdateInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.closeSignal:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			c.sess.Update(uint32(now.UnixMilli()))
			c.mu.Unlock()
		}
	}
}

func (c *Conn) readLoop() {
	defer c.wg.Done()
	buf := make([]byte, 65536)
	for {
		select {
		case <-c.closeSignal:
			return
		default:
		}
		c.pc.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		n, addr, err := c.pc.ReadFrom(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			select {
			case <-c.closeSignal:
			default:
				log.Println("transport: read failed:", err)
			}
			return
		}
		if addr.String() != c.remote.String() {
			continue
		}
		data := make([]byte, n)
		copy(data, buf[:n])
		c.input(data)
	}
}

// input feeds one inbound datagram, already known to belong to this
// conversation, into the session.
func (c *Conn) input(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.sess.Input(data); err != nil {
		log.Println("transport: input rejected:", err)
	}
}

// Read blocks until a complete message is available and copies it
// into buf, retrying on the session's Temporary errors rather than
// surfacing them to the caller.
func (c *Conn) Read(buf []byte) (int, error) {
	for {
		c.mu.Lock()
		n, err := c.sess.Receive(buf)
		c.mu.Unlock()
		if err == nil {
			return n, nil
		}
		kerr, ok := err.(*kcp.Error)
		if !ok || !kerr.Temporary() {
			return 0, err
		}
		select {
		case <-c.closeSignal:
			return 0, errors.New("transport: connection closed")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

// Write enqueues buf as one logical message. It does not block for
// acknowledgment; use Session().WaitingForSend to throttle a fast
// writer against a slow or lossy link.
func (c *Conn) Write(buf []byte) (int, error) {
	c.mu.Lock()
	err := c.sess.Send(buf)
	c.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return len(buf), nil
}

func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closeSignal)
	})
	c.wg.Wait()
	if c.ownsPC {
		return c.pc.Close()
	}
	return nil
}

func (c *Conn) LocalAddr() net.Addr  { return c.pc.LocalAddr() }
func (c *Conn) RemoteAddr() net.Addr { return c.remote }
