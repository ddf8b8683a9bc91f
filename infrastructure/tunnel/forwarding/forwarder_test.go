package forwarding

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"sealtun/domain/network"
	"sealtun/infrastructure/settings"
	"sealtun/infrastructure/telemetry/trafficstats"
)

// mockChannel emits its queued packets, then optionally fails, then blocks on
// hold (if set) before reporting io.EOF.
type mockChannel struct {
	mu      sync.Mutex
	emit    [][]byte
	readErr error // returned once the queue is drained
	hold    <-chan struct{}

	writeErr func(packet []byte) error
	written  [][]byte

	pending   atomic.Int32 // reads currently blocked
	cancelled atomic.Bool  // a blocked read saw ctx.Done
}

func (m *mockChannel) ReadPacket(ctx context.Context, buf []byte) (int, error) {
	m.mu.Lock()
	if len(m.emit) > 0 {
		p := m.emit[0]
		m.emit = m.emit[1:]
		m.mu.Unlock()
		return copy(buf, p), nil
	}
	readErr := m.readErr
	m.mu.Unlock()

	if readErr != nil {
		return 0, readErr
	}
	if m.hold != nil {
		m.pending.Add(1)
		defer m.pending.Add(-1)
		select {
		case <-m.hold:
		case <-ctx.Done():
			m.cancelled.Store(true)
			return 0, ctx.Err()
		}
	}
	return 0, io.EOF
}

func (m *mockChannel) WritePacket(_ context.Context, packet []byte) error {
	if m.writeErr != nil {
		if err := m.writeErr(packet); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.written = append(m.written, append([]byte(nil), packet...))
	return nil
}

func (m *mockChannel) received() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.written...)
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) Printf(format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

func (l *recordingLogger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lines)
}

func packets(s ...string) [][]byte {
	out := make([][]byte, len(s))
	for i, v := range s {
		out[i] = []byte(v)
	}
	return out
}

func equalPackets(a, b [][]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}

func runAsync(f *Forwarder, ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()
	return done
}

func awaitRun(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("forwarder did not stop in time")
		return nil
	}
}

func TestForwarder_RelaysBothDirectionsUntilExhausted(t *testing.T) {
	hold := make(chan struct{})
	a := &mockChannel{emit: packets("a1", "a2"), hold: hold}
	b := &mockChannel{emit: packets("b1"), hold: hold}
	stats := trafficstats.NewCollector(time.Second, 0)

	done := runAsync(New(a, b, Options{Stats: stats}), context.Background())
	waitFor(t, func() bool {
		return len(b.received()) == 2 && len(a.received()) == 1
	})
	close(hold)

	err := awaitRun(t, done)
	var stop *StopError
	if !errors.As(err, &stop) || !errors.Is(err, io.EOF) {
		t.Fatalf("expected StopError wrapping io.EOF, got %v", err)
	}
	if !equalPackets(b.received(), packets("a1", "a2")) {
		t.Fatalf("B received %q", b.received())
	}
	if !equalPackets(a.received(), packets("b1")) {
		t.Fatalf("A received %q", a.received())
	}

	s := stats.Snapshot()
	if s.TXPackets != 2 || s.TXBytesTotal != 4 || s.RXPackets != 1 || s.RXBytesTotal != 2 {
		t.Fatalf("unexpected stats %+v", s)
	}
}

func TestForwarder_SourceFailureCancelsOtherLoop(t *testing.T) {
	errBoom := errors.New("boom")
	a := &mockChannel{emit: packets("a1"), readErr: errBoom}
	b := &mockChannel{hold: make(chan struct{})}

	err := awaitRun(t, runAsync(New(a, b, Options{}), context.Background()))

	var stop *StopError
	if !errors.As(err, &stop) {
		t.Fatalf("expected *StopError, got %v", err)
	}
	if stop.Loop != AToB || stop.Op != OpRead || !errors.Is(stop.Err, errBoom) {
		t.Fatalf("unexpected stop %+v", stop)
	}
	if !b.cancelled.Load() {
		t.Fatal("B's pending read was not cancelled")
	}
	if n := b.pending.Load(); n != 0 {
		t.Fatalf("expected no reads left blocked on B, got %d", n)
	}
	if !equalPackets(b.received(), packets("a1")) {
		t.Fatalf("B received %q", b.received())
	}
}

func TestForwarder_WriteFailureStopsRun(t *testing.T) {
	errBoom := errors.New("socket gone")
	a := &mockChannel{hold: make(chan struct{})}
	b := &mockChannel{emit: packets("b1")}
	a.writeErr = func([]byte) error { return errBoom }

	err := awaitRun(t, runAsync(New(a, b, Options{}), context.Background()))
	var stop *StopError
	if !errors.As(err, &stop) || stop.Loop != BToA || stop.Op != OpWrite || !errors.Is(err, errBoom) {
		t.Fatalf("unexpected result %v", err)
	}
}

func TestForwarder_RejectPolicy(t *testing.T) {
	rejection := network.NewRejection("bad tag")

	tests := []struct {
		name       string
		policy     settings.RejectPolicy
		wantStop   bool
		wantWrites [][]byte
	}{
		{name: "drop", policy: settings.DropRejected, wantWrites: packets("p2")},
		{name: "abort", policy: settings.AbortOnRejected, wantStop: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hold := make(chan struct{})
			a := &mockChannel{emit: packets("p1", "p2"), hold: hold}
			b := &mockChannel{hold: hold}
			b.writeErr = func(p []byte) error {
				if string(p) == "p1" {
					return fmt.Errorf("open: %w", rejection)
				}
				return nil
			}
			stats := trafficstats.NewCollector(time.Second, 0)
			logger := &recordingLogger{}

			done := runAsync(New(a, b, Options{
				RejectPolicy: tt.policy,
				Logger:       logger,
				Stats:        stats,
			}), context.Background())

			if tt.wantStop {
				err := awaitRun(t, done)
				var stop *StopError
				if !errors.As(err, &stop) || stop.Op != OpWrite || !network.IsRejected(err) {
					t.Fatalf("expected rejected write to stop the run, got %v", err)
				}
				if len(b.received()) != 0 {
					t.Fatalf("nothing should pass the rejected packet, got %q", b.received())
				}
				return
			}

			waitFor(t, func() bool { return len(b.received()) == 1 })
			close(hold)
			if err := awaitRun(t, done); !errors.Is(err, io.EOF) {
				t.Fatalf("expected io.EOF, got %v", err)
			}
			if !equalPackets(b.received(), tt.wantWrites) {
				t.Fatalf("B received %q", b.received())
			}
			if s := stats.Snapshot(); s.TXDropped != 1 || s.TXPackets != 1 {
				t.Fatalf("unexpected stats %+v", s)
			}
			if logger.count() != 1 {
				t.Fatalf("expected one log line, got %d", logger.count())
			}
		})
	}
}

func TestForwarder_DropsRejectedReads(t *testing.T) {
	calls := 0
	a := &funcChannel{read: func(buf []byte) (int, error) {
		calls++
		switch calls {
		case 1:
			return 0, network.NewRejection("oversized frame")
		case 2:
			return copy(buf, "ok"), nil
		default:
			return 0, io.EOF
		}
	}}
	b := &mockChannel{hold: make(chan struct{})}

	err := awaitRun(t, runAsync(New(a, b, Options{}), context.Background()))
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
	if !equalPackets(b.received(), packets("ok")) {
		t.Fatalf("B received %q", b.received())
	}
}

func TestForwarder_ParentCancel(t *testing.T) {
	hold := make(chan struct{})
	defer close(hold)
	a := &mockChannel{hold: hold}
	b := &mockChannel{hold: hold}

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(New(a, b, Options{}), ctx)
	waitFor(t, func() bool { return a.pending.Load() == 1 && b.pending.Load() == 1 })
	cancel()

	if err := awaitRun(t, done); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !a.cancelled.Load() || !b.cancelled.Load() {
		t.Fatal("both pending reads should observe cancellation")
	}
}

func TestForwarder_PreservesOrder(t *testing.T) {
	var emit [][]byte
	for i := 0; i < 200; i++ {
		emit = append(emit, []byte(fmt.Sprintf("pkt-%03d", i)))
	}
	hold := make(chan struct{})
	a := &mockChannel{emit: append([][]byte(nil), emit...), hold: hold}
	b := &mockChannel{hold: hold}

	done := runAsync(New(a, b, Options{}), context.Background())
	waitFor(t, func() bool { return len(b.received()) == len(emit) })
	close(hold)
	_ = awaitRun(t, done)

	if !equalPackets(b.received(), emit) {
		t.Fatal("packets were reordered")
	}
}

func TestStopError(t *testing.T) {
	err := &StopError{Loop: BToA, Op: OpRead, Err: io.EOF}
	if err.Error() != "forwarder: b->a read: EOF" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, io.EOF) {
		t.Fatal("StopError must unwrap to its cause")
	}
	if Loop(5).String() != "unknown" {
		t.Fatal("unexpected name for unknown loop")
	}
}

func TestNew_DefaultBufferSize(t *testing.T) {
	f := New(&mockChannel{}, &mockChannel{}, Options{})
	if f.opts.BufferSize != settings.MaxFrameLength {
		t.Fatalf("expected default buffer %d, got %d", settings.MaxFrameLength, f.opts.BufferSize)
	}
}

type funcChannel struct {
	read func(buf []byte) (int, error)
}

func (c *funcChannel) ReadPacket(_ context.Context, buf []byte) (int, error) { return c.read(buf) }

func (c *funcChannel) WritePacket(context.Context, []byte) error { return nil }
