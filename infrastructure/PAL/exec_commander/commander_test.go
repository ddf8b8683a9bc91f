package exec_commander

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestExecCommander_CombinedOutput(t *testing.T) {
	c := NewExecCommander()
	out, err := c.CombinedOutput(context.Background(), "/bin/sh", "-c", "printf out; printf err 1>&2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(out), "out") || !strings.Contains(string(out), "err") {
		t.Fatalf("expected both streams in output, got %q", string(out))
	}
}

func TestExecCommander_Run(t *testing.T) {
	c := NewExecCommander()
	if err := c.Run(context.Background(), "/bin/sh", "-c", "exit 0"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := c.Run(context.Background(), "/bin/sh", "-c", "echo no such device; exit 9")
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if !strings.Contains(err.Error(), "no such device") {
		t.Fatalf("expected command output in error, got %q", err.Error())
	}
}

func TestExecCommander_RunCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	if err := NewExecCommander().Run(ctx, "/bin/sh", "-c", "sleep 5"); err == nil {
		t.Fatal("expected cancelled command to fail")
	}
	if time.Since(start) > 3*time.Second {
		t.Fatal("command outlived its context")
	}
}
