package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"recruitforge/hiring-engine/internal/models"
)

type stubProvider struct {
	name      string
	content   string
	err       error
	healthErr error
	calls     int
}

func (s *stubProvider) Name() string {
	return s.name
}

func (s *stubProvider) Generate(_ context.Context, _ string, _ models.GenerationOptions) (*models.GenerationResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &models.GenerationResult{
		Content: s.content,
		Model:   s.name + "-model",
		Usage:   models.TokenUsage{PromptTokens: 5, CompletionTokens: 5, TotalTokens: 10},
	}, nil
}

func (s *stubProvider) HealthCheck(_ context.Context) error {
	return s.healthErr
}

func validOptions() models.GenerationOptions {
	return models.GenerationOptions{Temperature: 0.7, MaxTokens: 256}
}

func newTestGateway(providers ...GenerationProvider) Gateway {
	return NewProviderGateway(providers, time.Second, time.Second, zap.NewNop())
}

func TestGenerateUsesHighestPriorityProvider(t *testing.T) {
	primary := &stubProvider{name: "gemini", content: `{"ok": true}`}
	secondary := &stubProvider{name: "claude", content: `{"ok": true}`}
	gateway := newTestGateway(primary, secondary)

	result, err := gateway.Generate(context.Background(), "hello", validOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Provider != "gemini" {
		t.Fatalf("expected result from gemini, got %s", result.Provider)
	}

	if secondary.calls != 0 {
		t.Fatalf("expected secondary provider to stay untouched, got %d calls", secondary.calls)
	}
}

func TestGenerateFailsOverInOrder(t *testing.T) {
	primary := &stubProvider{name: "gemini", err: errors.New("rate limited")}
	secondary := &stubProvider{name: "claude", content: `{"ok": true}`}
	gateway := newTestGateway(primary, secondary)

	result, err := gateway.Generate(context.Background(), "hello", validOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Provider != "claude" {
		t.Fatalf("expected failover to claude, got %s", result.Provider)
	}

	if primary.calls != 1 {
		t.Fatalf("expected exactly one attempt on the primary, got %d", primary.calls)
	}
}

func TestGenerateAllProvidersExhausted(t *testing.T) {
	primary := &stubProvider{name: "gemini", err: errors.New("rate limited")}
	secondary := &stubProvider{name: "claude", err: errors.New("overloaded")}
	gateway := newTestGateway(primary, secondary)

	_, err := gateway.Generate(context.Background(), "hello", validOptions())
	if err == nil {
		t.Fatalf("expected an error when every provider fails")
	}

	var exhausted *models.AllProvidersExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected AllProvidersExhaustedError, got %T: %v", err, err)
	}

	if len(exhausted.Attempts) != 2 {
		t.Fatalf("expected 2 attempts recorded, got %d", len(exhausted.Attempts))
	}

	msg := err.Error()
	if !strings.Contains(msg, "gemini: rate limited") || !strings.Contains(msg, "claude: overloaded") {
		t.Fatalf("expected both provider errors in the message, got: %s", msg)
	}
}

func TestGenerateSkipsUnavailableProvider(t *testing.T) {
	primary := &stubProvider{name: "gemini", err: errors.New("boom")}
	secondary := &stubProvider{name: "claude", content: `{"ok": true}`}
	gateway := newTestGateway(primary, secondary)

	// Five consecutive failures push the primary to unavailable.
	for i := 0; i < unavailableThreshold; i++ {
		if _, err := gateway.Generate(context.Background(), "hello", validOptions()); err != nil {
			t.Fatalf("unexpected error on call %d: %v", i+1, err)
		}
	}

	if primary.calls != unavailableThreshold {
		t.Fatalf("expected %d attempts on the primary, got %d", unavailableThreshold, primary.calls)
	}

	result, err := gateway.Generate(context.Background(), "hello", validOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Provider != "claude" {
		t.Fatalf("expected claude to serve the request, got %s", result.Provider)
	}

	if primary.calls != unavailableThreshold {
		t.Fatalf("expected the unavailable primary to be skipped, got %d calls", primary.calls)
	}
}

func TestGenerateRecoversProviderOnSuccess(t *testing.T) {
	primary := &stubProvider{name: "gemini", err: errors.New("boom")}
	secondary := &stubProvider{name: "claude", content: `{"ok": true}`}
	gateway := newTestGateway(primary, secondary)

	// Degrade but do not disable the primary.
	for i := 0; i < degradedThreshold; i++ {
		if _, err := gateway.Generate(context.Background(), "hello", validOptions()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Degraded providers are still attempted; a success resets the counters.
	primary.err = nil
	result, err := gateway.Generate(context.Background(), "hello", validOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Provider != "gemini" {
		t.Fatalf("expected the degraded primary to recover, got %s", result.Provider)
	}

	snapshots := gateway.HealthCheck(context.Background())
	for _, s := range snapshots {
		if s.Name == "gemini" {
			if s.Status != models.ProviderHealthy {
				t.Fatalf("expected gemini healthy after success, got %s", s.Status)
			}
			if s.ErrorCount != 0 {
				t.Fatalf("expected error count reset, got %d", s.ErrorCount)
			}
		}
	}
}

func TestGenerateStopsOnExpiredContext(t *testing.T) {
	primary := &stubProvider{name: "gemini", content: `{"ok": true}`}
	gateway := newTestGateway(primary)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gateway.Generate(ctx, "hello", validOptions())

	var exhausted *models.AllProvidersExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected AllProvidersExhaustedError, got %T: %v", err, err)
	}

	if primary.calls != 0 {
		t.Fatalf("expected no attempts after context expiry, got %d", primary.calls)
	}

	if !strings.Contains(err.Error(), "not attempted") {
		t.Fatalf("expected a not-attempted marker, got: %s", err.Error())
	}
}

func TestGenerateValidatesInput(t *testing.T) {
	gateway := newTestGateway(&stubProvider{name: "gemini", content: "{}"})

	cases := []struct {
		name   string
		prompt string
		opts   models.GenerationOptions
	}{
		{"empty prompt", "", validOptions()},
		{"negative temperature", "hello", models.GenerationOptions{Temperature: -0.1, MaxTokens: 256}},
		{"temperature above range", "hello", models.GenerationOptions{Temperature: 2.5, MaxTokens: 256}},
		{"zero max tokens", "hello", models.GenerationOptions{Temperature: 0.7, MaxTokens: 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := gateway.Generate(context.Background(), tc.prompt, tc.opts)

			var validationErr *models.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}
		})
	}
}

func TestProviderStateThresholds(t *testing.T) {
	state := &providerState{status: models.ProviderHealthy}
	failure := errors.New("boom")

	for i := 0; i < degradedThreshold-1; i++ {
		if status := state.recordFailure(failure); status != models.ProviderHealthy {
			t.Fatalf("expected healthy below the degraded threshold, got %s", status)
		}
	}
	if status := state.recordFailure(failure); status != models.ProviderDegraded {
		t.Fatalf("expected degraded at %d failures, got %s", degradedThreshold, status)
	}

	for i := degradedThreshold; i < unavailableThreshold-1; i++ {
		if status := state.recordFailure(failure); status != models.ProviderDegraded {
			t.Fatalf("expected degraded below the unavailable threshold, got %s", status)
		}
	}
	if status := state.recordFailure(failure); status != models.ProviderUnavailable {
		t.Fatalf("expected unavailable at %d failures, got %s", unavailableThreshold, status)
	}

	state.recordSuccess()
	if state.currentStatus() != models.ProviderHealthy {
		t.Fatalf("expected healthy after success, got %s", state.currentStatus())
	}
}

func TestHealthCheckReportsProbeResults(t *testing.T) {
	healthy := &stubProvider{name: "gemini"}
	broken := &stubProvider{name: "ollama", healthErr: errors.New("connection refused")}
	gateway := newTestGateway(healthy, broken)

	snapshots := gateway.HealthCheck(context.Background())
	if len(snapshots) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snapshots))
	}

	byName := make(map[string]models.ProviderHealth, len(snapshots))
	for _, s := range snapshots {
		byName[s.Name] = s
	}

	if !byName["gemini"].IsHealthy {
		t.Fatalf("expected gemini probe to pass")
	}
	if byName["ollama"].IsHealthy {
		t.Fatalf("expected ollama probe to fail")
	}
}
