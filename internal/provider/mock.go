// internal/provider/mock.go
package provider

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// MockGateway simulates the SMS provider. A configurable fraction of sends
// fails with a simulated rate limit so retry/dead-letter paths get exercised
// in dev environments.
type MockGateway struct {
	FailureRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewMockGateway(failureRate float64) *MockGateway {
	return &MockGateway{
		FailureRate: failureRate,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (g *MockGateway) Name() string { return "mock" }

func (g *MockGateway) SendSMS(_ context.Context, to, body string) (*SendResult, error) {
	g.mu.Lock()
	roll := g.rng.Float64()
	g.mu.Unlock()

	if roll < g.FailureRate {
		return nil, &TransientError{Code: 429, Reason: "simulated provider rate limit"}
	}

	return &SendResult{
		ProviderMessageID: fmt.Sprintf("mock-%d", time.Now().UnixNano()),
		Status:            "sent",
	}, nil
}
