package wizard

import (
	"testing"
	"time"

	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
)

func TestRegistry(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	registry := NewRegistry(15 * time.Minute).WithClock(func() time.Time { return now })

	session := newSession("seller-a", "", &domain.DishRequest{ID: "req-1"})
	registry.Put(session)

	got, ok := registry.Get("seller-a", "req-1")
	if !ok || got != session {
		t.Fatalf("got = %v, %v; want stored session", got, ok)
	}
	if _, ok := registry.Get("seller-b", "req-1"); ok {
		t.Fatalf("sessions must be keyed by seller")
	}

	now = now.Add(10 * time.Minute)
	if _, ok := registry.Get("seller-a", "req-1"); !ok {
		t.Fatalf("session should survive within ttl")
	}

	now = now.Add(16 * time.Minute)
	if removed := registry.Cleanup(); removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if registry.Len() != 0 {
		t.Fatalf("len = %d, want 0", registry.Len())
	}

	registry.Put(session)
	if !registry.Delete("seller-a", "req-1") {
		t.Fatalf("delete should report an existing session")
	}
	if registry.Delete("seller-a", "req-1") {
		t.Fatalf("second delete should report nothing removed")
	}
}
