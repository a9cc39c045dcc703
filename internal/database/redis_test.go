package database

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestNewRedisDB_AgainstServer(t *testing.T) {
	mr := miniredis.RunT(t)

	db, err := NewRedisDB(mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Health(context.Background()); err != nil {
		t.Fatalf("expected healthy redis, got %v", err)
	}

	mr.Close()
	if err := db.Health(context.Background()); err == nil {
		t.Fatal("expected health error once the server is gone")
	}
}

func TestNewRedisDB_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := NewRedisDB(addr, "", 0); err == nil {
		t.Fatal("expected ping error for unreachable server")
	}
}

func TestNewRedisDB_Options(t *testing.T) {
	origNew := newRedisClient
	origPing := redisPing
	t.Cleanup(func() {
		newRedisClient = origNew
		redisPing = origPing
	})

	var got redis.Options
	newRedisClient = func(opts *redis.Options) *redis.Client {
		got = *opts
		return &redis.Client{}
	}
	redisPing = func(ctx context.Context, client *redis.Client) error { return nil }

	if _, err := NewRedisDB("cache:6380", "secret", 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checks := []struct {
		name string
		ok   bool
	}{
		{"addr", got.Addr == "cache:6380"},
		{"password", got.Password == "secret"},
		{"db", got.DB == 4},
		{"dial timeout", got.DialTimeout == 5*time.Second},
		{"read timeout", got.ReadTimeout == 3*time.Second},
		{"pool size", got.PoolSize == 10},
	}
	for _, c := range checks {
		if !c.ok {
			t.Errorf("unexpected %s in options %+v", c.name, got)
		}
	}
}

func TestRedisDB_CloseNil(t *testing.T) {
	db := &RedisDB{}
	if err := db.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
}
