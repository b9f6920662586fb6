// Command lossgateway relays UDP datagrams between a single client and
// a single target server, randomly dropping a fraction of them in each
// direction. It sits below the protocol entirely, so pointing an
// echoclient/echoserver pair through it exercises Session retransmission,
// fast-retransmit and zero-window probing the way test/droptestgw/dropgw.go
// exercised the original connection-oriented implementation's recovery
// paths, just at the datagram layer instead of the connection layer.
package main

import (
	"flag"
	"log"
	"math/rand"
	"net"
	"sync"
)

func main() {
	listenAddr := flag.String("listen", "127.0.0.1:9000", "address to listen on for the client")
	targetAddr := flag.String("target", "127.0.0.1:8901", "address of the real server")
	clientDrop := flag.Float64("client-drop", 0.1, "drop rate for client->server datagrams")
	serverDrop := flag.Float64("server-drop", 0.1, "drop rate for server->client datagrams")
	flag.Parse()

	listenPC, err := net.ListenPacket("udp", *listenAddr)
	if err != nil {
		log.Fatalln("listen error:", err)
	}
	defer listenPC.Close()

	targetUDPAddr, err := net.ResolveUDPAddr("udp", *targetAddr)
	if err != nil {
		log.Fatalln("resolve target error:", err)
	}

	log.Printf("loss gateway: %s -> %s (drop %.0f%%/%.0f%%)\n", *listenAddr, *targetAddr, *clientDrop*100, *serverDrop*100)

	var (
		mu           sync.Mutex
		clientAddr   net.Addr
		serverConn   net.PacketConn
		serverStarted bool
	)

	startServerLeg := func() {
		conn, err := net.ListenPacket("udp", "")
		if err != nil {
			log.Println("error opening server leg:", err)
			return
		}
		serverConn = conn
		go relayServerToClient(conn, targetUDPAddr, &mu, &clientAddr, listenPC, *serverDrop)
	}

	buf := make([]byte, 65536)
	for {
		n, addr, err := listenPC.ReadFrom(buf)
		if err != nil {
			log.Println("client leg read error:", err)
			return
		}

		mu.Lock()
		clientAddr = addr
		if !serverStarted {
			serverStarted = true
			startServerLeg()
		}
		conn := serverConn
		mu.Unlock()

		if rand.Float64() < *clientDrop {
			log.Printf("dropped %d bytes client->server\n", n)
			continue
		}
		if conn == nil {
			continue
		}
		if _, err := conn.WriteTo(buf[:n], targetUDPAddr); err != nil {
			log.Println("error forwarding to server:", err)
		}
	}
}

func relayServerToClient(conn net.PacketConn, target net.Addr, mu *sync.Mutex, clientAddr *net.Addr, listenPC net.PacketConn, dropRate float64) {
	buf := make([]byte, 65536)
	for {
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			log.Println("server leg read error:", err)
			return
		}
		if from.String() != target.String() {
			continue
		}
		if rand.Float64() < dropRate {
			log.Printf("dropped %d bytes server->client\n", n)
			continue
		}

		mu.Lock()
		dst := *clientAddr
		mu.Unlock()
		if dst == nil {
			continue
		}
		if _, err := listenPC.WriteTo(buf[:n], dst); err != nil {
			log.Println("error forwarding to client:", err)
		}
	}
}
