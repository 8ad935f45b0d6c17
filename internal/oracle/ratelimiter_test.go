package oracle

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiter_AllowsFirstRequest(t *testing.T) {
	rl := NewRateLimiter("test", 5)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := rl.Wait(ctx); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
}

func TestRateLimiter_RespectsCancellation(t *testing.T) {
	rl := NewRateLimiter("test", 1)

	// Drain the single token.
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := rl.Wait(ctx); err == nil {
		t.Error("Wait() with cancelled context error = nil, want error")
	}
}

func TestRateLimiter_Name(t *testing.T) {
	rl := NewRateLimiter("etherscan", 5)
	if rl.Name() != "etherscan" {
		t.Errorf("Name() = %s, want etherscan", rl.Name())
	}
}
