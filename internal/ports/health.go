package ports

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrDuplicateChecker is returned by Register when the name is already taken.
var ErrDuplicateChecker = errors.New("duplicate health checker")

// DefaultCheckTimeout bounds one readiness probe.
const DefaultCheckTimeout = 5 * time.Second

// HealthChecker reports whether a dependency of the bot can serve traffic.
// The quote store and the Telegram client both implement it:
//
//	registry.Register(store)     // "quote-store"
//	registry.Register(telegram)  // "telegram"
type HealthChecker interface {
	Name() string

	// Check returns nil when the dependency is usable. It must give up
	// once ctx is done.
	Check(ctx context.Context) error
}

// HealthRegistry collects checkers and evaluates them together for /-/ready.
type HealthRegistry interface {
	Register(checker HealthChecker) error
	CheckAll(ctx context.Context) *HealthResult
}

// HealthStatus is the outcome of one check or of the whole registry.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResult is the readiness report. Status is unhealthy as soon as any
// entry in Checks is.
type HealthResult struct {
	Status    HealthStatus            `json:"status"`
	Checks    map[string]*CheckResult `json:"checks"`
	Timestamp time.Time               `json:"timestamp"`
}

// CheckResult is the outcome of a single checker. Message carries the
// checker's error text.
type CheckResult struct {
	Status   HealthStatus  `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// DefaultHealthRegistry runs checkers in registration order, concurrently.
type DefaultHealthRegistry struct {
	mu       sync.RWMutex
	checkers []HealthChecker

	// CheckTimeout caps each checker. Zero or less means DefaultCheckTimeout.
	CheckTimeout time.Duration
}

// NewHealthRegistry returns an empty registry.
func NewHealthRegistry() *DefaultHealthRegistry {
	return &DefaultHealthRegistry{CheckTimeout: DefaultCheckTimeout}
}

// Register adds checker unless another one already answers to its name.
func (r *DefaultHealthRegistry) Register(checker HealthChecker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := checker.Name()
	if slices.ContainsFunc(r.checkers, func(c HealthChecker) bool { return c.Name() == name }) {
		return fmt.Errorf("%w: %s", ErrDuplicateChecker, name)
	}

	r.checkers = append(r.checkers, checker)

	return nil
}

// Names lists the registered checkers in registration order.
func (r *DefaultHealthRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.checkers))
	for i, c := range r.checkers {
		names[i] = c.Name()
	}

	return names
}

// CheckAll probes every checker and waits for all of them. A failing checker
// never cancels its siblings.
func (r *DefaultHealthRegistry) CheckAll(ctx context.Context) *HealthResult {
	r.mu.RLock()
	checkers := slices.Clone(r.checkers)
	r.mu.RUnlock()

	timeout := r.CheckTimeout
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}

	results := make([]*CheckResult, len(checkers))

	var g errgroup.Group
	for i, checker := range checkers {
		g.Go(func() error {
			results[i] = probe(ctx, checker, timeout)
			return nil
		})
	}

	_ = g.Wait()

	report := &HealthResult{
		Status:    HealthStatusHealthy,
		Checks:    make(map[string]*CheckResult, len(checkers)),
		Timestamp: time.Now(),
	}

	for i, checker := range checkers {
		report.Checks[checker.Name()] = results[i]

		if results[i].Status == HealthStatusUnhealthy {
			report.Status = HealthStatusUnhealthy
		}
	}

	return report
}

func probe(ctx context.Context, checker HealthChecker, timeout time.Duration) *CheckResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	err := checker.Check(ctx)
	res := &CheckResult{Status: HealthStatusHealthy, Duration: time.Since(started)}

	if err != nil {
		res.Status = HealthStatusUnhealthy
		res.Message = err.Error()
	}

	return res
}
