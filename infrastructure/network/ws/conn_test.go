package ws

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
)

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func connectedPair(t *testing.T) (dialed, accepted *Conn, ln *Listener) {
	t.Helper()
	ctx := testCtx(t)
	ln, err := Listen(ctx, "127.0.0.1:0", "/tunnel", nil)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	d, err := Dial(ctx, ln.Addr().String(), "tunnel")
	if err != nil {
		_ = ln.Close()
		t.Fatalf("Dial: %v", err)
	}
	a, err := ln.Accept(ctx)
	if err != nil {
		_ = d.Close()
		_ = ln.Close()
		t.Fatalf("Accept: %v", err)
	}
	t.Cleanup(func() {
		_ = d.Close()
		_ = a.Close()
	})
	return d, a, ln
}

func TestConn_Exchange(t *testing.T) {
	d, a, _ := connectedPair(t)
	ctx := testCtx(t)

	for _, msg := range []string{"one", "two"} {
		if err := d.WritePacket(ctx, []byte(msg)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	buf := make([]byte, 64)
	for _, want := range []string{"one", "two"} {
		n, err := a.ReadPacket(ctx, buf)
		if err != nil || string(buf[:n]) != want {
			t.Fatalf("read = (%q, %v), want %q", buf[:n], err, want)
		}
	}

	if err := a.WritePacket(ctx, []byte("back")); err != nil {
		t.Fatal(err)
	}
	n, err := d.ReadPacket(ctx, buf)
	if err != nil || string(buf[:n]) != "back" {
		t.Fatalf("read = (%q, %v)", buf[:n], err)
	}
}

func TestConn_ShortBufferDrainsMessage(t *testing.T) {
	d, a, _ := connectedPair(t)
	ctx := testCtx(t)

	if err := d.WritePacket(ctx, []byte(strings.Repeat("x", 32))); err != nil {
		t.Fatal(err)
	}
	if err := d.WritePacket(ctx, []byte("next")); err != nil {
		t.Fatal(err)
	}
	if _, err := a.ReadPacket(ctx, make([]byte, 8)); !errors.Is(err, io.ErrShortBuffer) {
		t.Fatalf("expected io.ErrShortBuffer, got %v", err)
	}
	buf := make([]byte, 8)
	n, err := a.ReadPacket(ctx, buf)
	if err != nil || string(buf[:n]) != "next" {
		t.Fatalf("read after short buffer = (%q, %v)", buf[:n], err)
	}
}

func TestConn_ExactBuffer(t *testing.T) {
	d, a, _ := connectedPair(t)
	ctx := testCtx(t)
	if err := d.WritePacket(ctx, []byte("12345678")); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 8)
	n, err := a.ReadPacket(ctx, buf)
	if err != nil || n != 8 {
		t.Fatalf("read = (%d, %v)", n, err)
	}
}

func TestConn_TextMessagesIgnored(t *testing.T) {
	d, a, _ := connectedPair(t)
	ctx := testCtx(t)
	if err := d.conn.Write(ctx, websocket.MessageText, []byte("noise")); err != nil {
		t.Fatal(err)
	}
	if err := d.WritePacket(ctx, []byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 8)
	n, err := a.ReadPacket(ctx, buf)
	if err != nil || !bytes.Equal(buf[:n], []byte{1, 2, 3}) {
		t.Fatalf("read = (%x, %v)", buf[:n], err)
	}
}

func TestConn_PeerCloseIsEOF(t *testing.T) {
	d, a, _ := connectedPair(t)
	ctx := testCtx(t)
	go func() { _ = d.Close() }()
	if _, err := a.ReadPacket(ctx, make([]byte, 8)); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestConn_ReadCancelled(t *testing.T) {
	d, _, _ := connectedPair(t)
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	if _, err := d.ReadPacket(ctx, make([]byte, 8)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestListener_SecondPeerRejected(t *testing.T) {
	_, _, ln := connectedPair(t)
	ctx := testCtx(t)

	late, err := Dial(ctx, ln.Addr().String(), "/tunnel")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer late.Close()

	_, err = late.ReadPacket(ctx, make([]byte, 8))
	if websocket.CloseStatus(err) != CloseCodeBusy {
		t.Fatalf("expected close code %d, got %v", CloseCodeBusy, err)
	}
}

func TestListener_AcceptCancelled(t *testing.T) {
	ln, err := Listen(testCtx(t), "127.0.0.1:0", "/", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ln.Accept(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNormalizePath(t *testing.T) {
	for in, want := range map[string]string{"": "/", "ws": "/ws", "/ws": "/ws"} {
		if got := normalizePath(in); got != want {
			t.Fatalf("normalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}
