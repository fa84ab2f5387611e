package background

import (
	"context"
	"testing"
	"time"

	"github.com/LavaJover/shvark-dish-request-service/internal/infrastructure/memory"
	"github.com/LavaJover/shvark-dish-request-service/internal/usecase/expiry"
	"github.com/LavaJover/shvark-dish-request-service/internal/usecase/offer"
	"github.com/LavaJover/shvark-dish-request-service/internal/usecase/wizard"
)

func TestCleanupInterval(t *testing.T) {
	tests := []struct {
		ttl  time.Duration
		want time.Duration
	}{
		{ttl: 0, want: time.Minute},
		{ttl: 15 * time.Minute, want: time.Minute},
		{ttl: 10 * time.Second, want: 10 * time.Second},
	}
	for _, tt := range tests {
		if got := cleanupInterval(tt.ttl); got != tt.want {
			t.Fatalf("cleanupInterval(%v) = %v, want %v", tt.ttl, got, tt.want)
		}
	}
}

func TestStartAllStopsOnCancel(t *testing.T) {
	offers := memory.NewOfferRepository()
	ledger := offer.NewDefaultLedger(offers, memory.NewDishRequestRepository(), nil, nil, nil, nil, 0)
	scheduler := expiry.NewScheduler(offers, ledger, 10*time.Millisecond, 10, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := NewBackgroundTasks(scheduler, wizard.NewRegistry(time.Second), nil).StartAll(ctx, time.Second)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("background tasks did not stop after cancel")
	}
}
