package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Clouded-Sabre/swift-kcp/config"
	"github.com/Clouded-Sabre/swift-kcp/transport"
)

func main() {
	serverAddr := flag.String("server", "127.0.0.1:8901", "echo server address")
	configPath := flag.String("config", "", "optional YAML tuning file, defaults applied when empty")
	interval := flag.Duration("interval", 500*time.Millisecond, "interval between packets")
	conv := flag.Uint("conv", 1, "conversation number")
	flag.Parse()

	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.ReadConfig(*configPath)
		if err != nil {
			log.Fatalln("configuration file error:", err)
		}
	}

	conn, err := transport.Dial("udp", *serverAddr, uint32(*conv))
	if err != nil {
		log.Fatalln("dial error:", err)
	}
	cfg.Apply(conn.Session())
	fmt.Println("echo client connected to", *serverAddr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	buf := make([]byte, 65536)
	sent, got := 0, 0

	for {
		select {
		case <-sigChan:
			goto shutdown
		case <-ticker.C:
			sent++
			message := fmt.Sprintf("echo message %d", sent)
			if _, err := conn.Write([]byte(message)); err != nil {
				log.Printf("[%d] write error: %v\n", sent, err)
				continue
			}
			n, err := conn.Read(buf)
			if err != nil {
				log.Printf("[%d] read error: %v\n", sent, err)
				continue
			}
			got++
			log.Printf("[%d] received: %s\n", sent, string(buf[:n]))
		}
	}

shutdown:
	conn.Close()
	fmt.Printf("sent %d, echoed back %d\n", sent, got)
}
