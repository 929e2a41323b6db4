package db

import (
	"context"
	"errors"
	"testing"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

func TestNewPoolBadURL(t *testing.T) {
	_, err := NewPool(context.Background(), "not-a-url://%", 4, 1)
	if err == nil {
		t.Fatal("expected error for malformed database url")
	}
}

func TestCheckReady(t *testing.T) {
	if err := CheckReady(context.Background(), stubPinger{}); err != nil {
		t.Fatalf("CheckReady() = %v, want nil", err)
	}

	down := errors.New("connection refused")
	err := CheckReady(context.Background(), stubPinger{err: down})
	if !errors.Is(err, down) {
		t.Fatalf("CheckReady() = %v, want wrapped %v", err, down)
	}
}
