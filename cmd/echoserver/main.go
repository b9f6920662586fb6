package main

import (
	"flag"
	"log"

	"github.com/Clouded-Sabre/swift-kcp/config"
	"github.com/Clouded-Sabre/swift-kcp/transport"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8901", "address to listen on")
	configPath := flag.String("config", "", "optional YAML tuning file, defaults applied when empty")
	flag.Parse()

	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.ReadConfig(*configPath)
		if err != nil {
			log.Fatalln("configuration file error:", err)
		}
	}

	ln, err := transport.Listen("udp", *addr)
	if err != nil {
		log.Fatalln("listen error:", err)
	}
	defer ln.Close()
	log.Printf("echo server listening on %s\n", ln.Addr())

	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Println("accept error:", err)
			return
		}
		cfg.Apply(conn.Session())
		log.Printf("new conversation from %s\n", conn.RemoteAddr())
		go handleConn(conn)
	}
}

func handleConn(c *transport.Conn) {
	defer c.Close()
	buf := make([]byte, 65536)
	for {
		n, err := c.Read(buf)
		if err != nil {
			log.Printf("read error from %s: %v\n", c.RemoteAddr(), err)
			return
		}
		log.Printf("echo server got %d bytes from %s: %s\n", n, c.RemoteAddr(), string(buf[:n]))
		if _, err := c.Write(buf[:n]); err != nil {
			log.Println("write error:", err)
			return
		}
	}
}
