package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"recruitforge/hiring-engine/internal/models"
)

// GenerationProvider is one external text-generation backend. Adapters
// translate the generic options to their own wire format; the gateway never
// sees provider-specific fields.
type GenerationProvider interface {
	Name() string
	Generate(ctx context.Context, prompt string, opts models.GenerationOptions) (*models.GenerationResult, error)
	HealthCheck(ctx context.Context) error
}

const (
	degradedThreshold    = 3
	unavailableThreshold = 5
)

// providerState holds one provider's mutable health counters. The mutex
// guards the read-modify-write of {status, errorCount, requestCount} when
// concurrent Generate calls land on the same provider.
type providerState struct {
	mu            sync.Mutex
	status        models.ProviderStatus
	errorCount    int
	requestCount  int64
	lastError     string
	lastErrorTime time.Time
}

type Gateway interface {
	Generate(ctx context.Context, prompt string, opts models.GenerationOptions) (*models.GenerationResult, error)
	HealthCheck(ctx context.Context) []models.ProviderHealth
}

type providerGateway struct {
	providers     []GenerationProvider
	states        map[string]*providerState
	callTimeout   time.Duration
	healthTimeout time.Duration
	logger        *zap.Logger
}

// NewProviderGateway builds a gateway over the given providers. Order is
// the failover priority: earlier providers are always tried first.
func NewProviderGateway(
	providers []GenerationProvider,
	callTimeout time.Duration,
	healthTimeout time.Duration,
	logger *zap.Logger,
) Gateway {
	states := make(map[string]*providerState, len(providers))
	for _, p := range providers {
		states[p.Name()] = &providerState{status: models.ProviderHealthy}
	}

	return &providerGateway{
		providers:     providers,
		states:        states,
		callTimeout:   callTimeout,
		healthTimeout: healthTimeout,
		logger:        logger,
	}
}

// Generate tries providers strictly in priority order, one attempt each,
// and returns the first success. Unavailable providers are skipped. A
// provider is never retried within one invocation.
func (g *providerGateway) Generate(ctx context.Context, prompt string, opts models.GenerationOptions) (*models.GenerationResult, error) {
	if err := validateGeneration(prompt, opts); err != nil {
		return nil, err
	}

	var attempts []models.ProviderAttemptError

	for _, provider := range g.providers {
		name := provider.Name()

		// The caller's deadline bounds the whole invocation: once it
		// expires, remaining providers are not attempted.
		if ctxErr := ctx.Err(); ctxErr != nil {
			attempts = append(attempts, models.ProviderAttemptError{
				Provider: name,
				Message:  "not attempted: " + ctxErr.Error(),
			})
			break
		}

		state := g.states[name]
		if state.currentStatus() == models.ProviderUnavailable {
			attempts = append(attempts, models.ProviderAttemptError{
				Provider: name,
				Message:  "skipped: provider unavailable",
			})
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
		result, err := provider.Generate(callCtx, prompt, opts)
		cancel()

		if err != nil {
			status := state.recordFailure(err)
			g.logger.Warn("provider generation failed",
				zap.String("provider", name),
				zap.String("status", string(status)),
				zap.Error(err),
			)
			attempts = append(attempts, models.ProviderAttemptError{
				Provider: name,
				Message:  err.Error(),
			})
			continue
		}

		state.recordSuccess()
		result.Provider = name

		g.logger.Debug("provider generation succeeded",
			zap.String("provider", name),
			zap.String("model", result.Model),
			zap.Int("total_tokens", result.Usage.TotalTokens),
		)
		return result, nil
	}

	return nil, &models.AllProvidersExhaustedError{Attempts: attempts}
}

// HealthCheck probes every provider independently and returns read-only
// snapshots. Probe failures do not feed the failover counters.
func (g *providerGateway) HealthCheck(ctx context.Context) []models.ProviderHealth {
	snapshots := make([]models.ProviderHealth, 0, len(g.providers))

	for _, provider := range g.providers {
		name := provider.Name()

		probeCtx, cancel := context.WithTimeout(ctx, g.healthTimeout)
		probeErr := provider.HealthCheck(probeCtx)
		cancel()

		snapshot := g.states[name].snapshot(name)
		snapshot.IsHealthy = probeErr == nil
		if probeErr != nil {
			g.logger.Warn("provider health probe failed",
				zap.String("provider", name),
				zap.Error(probeErr),
			)
		}

		snapshots = append(snapshots, snapshot)
	}

	return snapshots
}

func validateGeneration(prompt string, opts models.GenerationOptions) error {
	if prompt == "" {
		return models.NewValidationError("prompt", "must not be empty")
	}
	if opts.Temperature < 0 || opts.Temperature > 2 {
		return models.NewValidationError("temperature", "must be between 0 and 2")
	}
	if opts.MaxTokens <= 0 {
		return models.NewValidationError("max_tokens", "must be greater than 0")
	}
	return nil
}

func (s *providerState) currentStatus() models.ProviderStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *providerState) recordSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errorCount = 0
	s.status = models.ProviderHealthy
	s.requestCount++
}

func (s *providerState) recordFailure(err error) models.ProviderStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.errorCount++
	s.lastError = err.Error()
	s.lastErrorTime = time.Now()

	switch {
	case s.errorCount >= unavailableThreshold:
		s.status = models.ProviderUnavailable
	case s.errorCount >= degradedThreshold:
		s.status = models.ProviderDegraded
	}

	return s.status
}

func (s *providerState) snapshot(name string) models.ProviderHealth {
	s.mu.Lock()
	defer s.mu.Unlock()

	health := models.ProviderHealth{
		Name:         name,
		Status:       s.status,
		RequestCount: s.requestCount,
		ErrorCount:   s.errorCount,
		LastError:    s.lastError,
	}
	if !s.lastErrorTime.IsZero() {
		t := s.lastErrorTime
		health.LastErrorTime = &t
	}
	return health
}
