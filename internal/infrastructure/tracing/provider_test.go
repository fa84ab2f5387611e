package tracing

import (
	"context"
	"strings"
	"testing"

	"github.com/LavaJover/shvark-dish-request-service/internal/config"
)

func TestSetupWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.Tracing{ServiceName: "test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{ratio: 1, want: "AlwaysOnSampler"},
		{ratio: 0, want: "AlwaysOffSampler"},
		{ratio: 0.25, want: "TraceIDRatioBased{0.25}"},
	}
	for _, tt := range tests {
		got := Sampler(tt.ratio).Description()
		if !strings.Contains(got, tt.want) {
			t.Fatalf("Sampler(%v) = %s, want it to mention %s", tt.ratio, got, tt.want)
		}
	}
}
