package main

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/pettycash/internal/adapter/http/middleware"
	"github.com/iho/pettycash/internal/infrastructure/config"
	"github.com/iho/pettycash/internal/infrastructure/eventpublisher"
)

func TestTokenVerifier(t *testing.T) {
	if v := tokenVerifier(&config.Config{AuthEnabled: false, JWTSecret: "s"}); v != nil {
		t.Fatalf("expected nil verifier when auth is disabled")
	}
	if v := tokenVerifier(&config.Config{AuthEnabled: true, JWTSecret: "s", JWTExpiration: time.Hour}); v == nil {
		t.Fatalf("expected verifier when auth is enabled")
	}
}

func TestNewPublisher(t *testing.T) {
	log := zerolog.Nop()

	pub, closeFn := newPublisher(&config.Config{}, &log)
	if _, ok := pub.(*eventpublisher.LogPublisher); !ok {
		t.Fatalf("expected log publisher without brokers, got %T", pub)
	}
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	pub, closeFn = newPublisher(&config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "t"}, &log)
	if _, ok := pub.(*eventpublisher.KafkaPublisher); !ok {
		t.Fatalf("expected kafka publisher with brokers, got %T", pub)
	}
	_ = closeFn()
}

func TestAllowedOrigins(t *testing.T) {
	if got := allowedOrigins([]string{"*"}); got != nil {
		t.Fatalf("expected wildcard to fall back to defaults, got %v", got)
	}
	got := allowedOrigins([]string{"https://a.example", "https://b.example"})
	if len(got) != 2 {
		t.Fatalf("expected origins to pass through, got %v", got)
	}
}

func TestCleanupLimitersStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		cleanupLimiters(ctx, middleware.NewRateLimiter(1, 1), time.Millisecond)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanupLimiters did not stop")
	}
}
