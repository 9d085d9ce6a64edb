package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestClient(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)

	if err := client.Set(ctx, "quiz:widget:1", []byte(`{"id":"1"}`), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	value, err := client.Get(ctx, "quiz:widget:1")
	if err != nil || string(value) != `{"id":"1"}` {
		t.Fatalf("Get = %q, %v", value, err)
	}

	if err := client.Del(ctx, "quiz:widget:1"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, err := client.Get(ctx, "quiz:widget:1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after Del = %v, want ErrNotFound", err)
	}
}

func TestTTLExpires(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)

	_ = client.Set(ctx, "k", []byte("v"), time.Second)
	mr.FastForward(2 * time.Second)

	if _, err := client.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after expiry = %v, want ErrNotFound", err)
	}
}

func TestHealthCheck(t *testing.T) {
	client, mr := newTestClient(t)

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}

	mr.Close()
	if err := client.HealthCheck(context.Background()); err == nil {
		t.Fatal("HealthCheck should fail once the server is gone")
	}
}

func TestNewRedisClientUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := NewRedisClient(context.Background(), addr, "", 0); err == nil {
		t.Fatal("expected connection error")
	}
}
