package session

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	r, err := NewRedisStore(ctx, addr, os.Getenv("REDIS_PASSWORD"), 0)
	if err != nil {
		t.Fatalf("redis: %v", err)
	}
	t.Cleanup(func() { r.Close() })

	sid := uuid.New().String()
	if err := r.Set(ctx, sid, "otp", []byte("12345"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := r.Get(ctx, sid, "otp")
	if err != nil || string(got) != "12345" {
		t.Fatalf("get: %q, %v", got, err)
	}
	got, err = r.Take(ctx, sid, "otp")
	if err != nil || string(got) != "12345" {
		t.Fatalf("take: %q, %v", got, err)
	}
	if _, err := r.Take(ctx, sid, "otp"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after take, got %v", err)
	}
	if err := r.Delete(ctx, sid, "otp"); err != nil {
		t.Fatalf("delete missing key: %v", err)
	}
}
