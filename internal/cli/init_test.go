package cli

import (
	"context"
	"testing"
	"time"

	"nannyledger/internal/config"
	"nannyledger/internal/session"
)

func TestConnectAMQPDisabled(t *testing.T) {
	client, err := ConnectAMQP(&config.Config{})
	if err != nil || client != nil {
		t.Fatalf("expected no client without AMQP_URL, got %v %v", client, err)
	}
}

func TestNewSessionStoreMemory(t *testing.T) {
	store, closeFn, err := NewSessionStore(context.Background(), &config.Config{SessionBackend: "memory", SessionTTL: time.Hour})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer closeFn()
	if _, ok := store.(*session.MemoryStore); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}
}

func TestNewSessionStoreRedisUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, _, err := NewSessionStore(ctx, &config.Config{SessionBackend: "redis", RedisAddr: "127.0.0.1:1"})
	if err == nil {
		t.Fatal("expected ping failure")
	}
}

func TestSetupLogger(t *testing.T) {
	l := SetupLogger("debug", "test")
	if l.Component() != "test" || !l.Enabled(context.Background(), -4) {
		t.Fatalf("logger not configured for debug: %+v", l)
	}
}
