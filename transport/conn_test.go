package transport

import (
	"testing"
	"time"
)

func TestDialListenEcho(t *testing.T) {
	ln, err := Listen("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	client, err := Dial("udp", ln.Addr().String(), 7)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	if _, err := client.Write([]byte("ping")); err != nil {
		t.Fatalf("client Write: %v", err)
	}

	acceptResult := make(chan *Conn, 1)
	acceptErr := make(chan error, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			acceptErr <- err
			return
		}
		acceptResult <- c
	}()

	var server *Conn
	select {
	case server = <-acceptResult:
	case err := <-acceptErr:
		t.Fatalf("Accept: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("Accept timed out")
	}
	defer server.Close()

	buf := make([]byte, 64)
	readResult := make(chan int, 1)
	readErr := make(chan error, 1)
	go func() {
		n, err := server.Read(buf)
		if err != nil {
			readErr <- err
			return
		}
		readResult <- n
	}()

	var n int
	select {
	case n = <-readResult:
	case err := <-readErr:
		t.Fatalf("server Read: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("server Read timed out")
	}
	if string(buf[:n]) != "ping" {
		t.Fatalf("server got %q, want %q", buf[:n], "ping")
	}

	if _, err := server.Write([]byte("pong")); err != nil {
		t.Fatalf("server Write: %v", err)
	}

	clientReadResult := make(chan int, 1)
	clientReadErr := make(chan error, 1)
	go func() {
		n, err := client.Read(buf)
		if err != nil {
			clientReadErr <- err
			return
		}
		clientReadResult <- n
	}()

	select {
	case n = <-clientReadResult:
	case err := <-clientReadErr:
		t.Fatalf("client Read: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("client Read timed out")
	}
	if string(buf[:n]) != "pong" {
		t.Fatalf("client got %q, want %q", buf[:n], "pong")
	}
}
