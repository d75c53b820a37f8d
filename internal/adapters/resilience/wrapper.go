// Package resilience runs provider calls under a per-provider circuit breaker
// with bounded exponential-backoff retries inside it.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/mycurrency/internal/apperrors"
	"github.com/SscSPs/mycurrency/internal/core/domain"
	"github.com/SscSPs/mycurrency/internal/core/ports/providers"
	"github.com/SscSPs/mycurrency/internal/platform/config"
	"github.com/SscSPs/mycurrency/internal/platform/metrics"
	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// failoverTimeout bounds the registry rotation triggered by a rejected call.
const failoverTimeout = 5 * time.Second

// Policy holds the retry and breaker tuning.
type Policy struct {
	CallTimeout      time.Duration
	MaxAttempts      int
	InitialInterval  time.Duration
	MaxInterval      time.Duration
	Multiplier       float64
	FailureThreshold uint32
	Cooldown         time.Duration
}

// PolicyFromConfig maps the resilience settings onto a Policy.
func PolicyFromConfig(cfg config.ResilienceConfig) Policy {
	return Policy{
		CallTimeout:      cfg.CallTimeout,
		MaxAttempts:      cfg.MaxAttempts,
		InitialInterval:  cfg.InitialInterval,
		MaxInterval:      cfg.MaxInterval,
		Multiplier:       cfg.Multiplier,
		FailureThreshold: cfg.BreakerFailureThreshold,
		Cooldown:         cfg.BreakerCooldown,
	}
}

// Failoverer rotates the provider registry away from a rejected provider.
type Failoverer interface {
	FailoverFrom(ctx context.Context, providerName, reason string) (*domain.FailoverResult, error)
}

// Wrapper implements providers.RateFetcher over a fixed set of adapters.
type Wrapper struct {
	policy   Policy
	adapters map[string]providers.RateProvider
	breakers map[string]*gobreaker.CircuitBreaker[any]
	failover Failoverer
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

var _ providers.RateFetcher = (*Wrapper)(nil)

// Option customizes a Wrapper.
type Option func(*Wrapper)

// WithMetrics exports retry, call and breaker metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Wrapper) { w.metrics = m }
}

// WithLogger sets the logger used for breaker transitions and retries.
func WithLogger(l *slog.Logger) Option {
	return func(w *Wrapper) { w.logger = l }
}

// New builds a wrapper with one breaker per adapter.
func New(policy Policy, failover Failoverer, adapters []providers.RateProvider, opts ...Option) *Wrapper {
	w := &Wrapper{
		policy:   policy,
		adapters: make(map[string]providers.RateProvider, len(adapters)),
		breakers: make(map[string]*gobreaker.CircuitBreaker[any], len(adapters)),
		failover: failover,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	for _, a := range adapters {
		w.adapters[a.Name()] = a
		w.breakers[a.Name()] = w.newBreaker(a.Name())
		w.metrics.SetBreakerState(a.Name(), metrics.BreakerClosed)
	}
	return w
}

func (w *Wrapper) newBreaker(name string) *gobreaker.CircuitBreaker[any] {
	threshold := w.policy.FailureThreshold
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     w.policy.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return !isProviderFailure(err)
		},
		// Caller aborts say nothing about the provider, so they neither reset
		// the failure streak nor settle a half-open trial.
		IsExcluded: isCallerAborted,
		OnStateChange: func(name string, from, to gobreaker.State) {
			w.logger.Warn("Circuit breaker state changed",
				slog.String("provider", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			w.metrics.SetBreakerState(name, breakerStateValue(to))
		},
	})
}

// State reports the breaker state of a provider, mostly for tests and diagnostics.
func (w *Wrapper) State(providerName string) (gobreaker.State, bool) {
	cb, ok := w.breakers[providerName]
	if !ok {
		return gobreaker.StateClosed, false
	}
	return cb.State(), true
}

// Fetch calls the named provider's single-rate endpoint.
func (w *Wrapper) Fetch(ctx context.Context, providerName, fromCode, toCode string, valuationDate time.Time) (*domain.RateQuote, error) {
	return call(ctx, w, providerName, func(ctx context.Context, p providers.RateProvider) (*domain.RateQuote, error) {
		return p.Fetch(ctx, fromCode, toCode, valuationDate)
	})
}

// FetchSeries calls the named provider's time-series endpoint.
func (w *Wrapper) FetchSeries(ctx context.Context, providerName, fromCode string, toCodes []string, from, to time.Time) ([]domain.ExchangeRate, error) {
	return call(ctx, w, providerName, func(ctx context.Context, p providers.RateProvider) ([]domain.ExchangeRate, error) {
		return p.FetchSeries(ctx, fromCode, toCodes, from, to)
	})
}

// callerAbortedError marks a failure caused by the caller's own context so the
// breaker does not hold it against the provider.
type callerAbortedError struct {
	error
}

func (e callerAbortedError) Unwrap() error { return e.error }

func call[T any](ctx context.Context, w *Wrapper, providerName string, fn func(context.Context, providers.RateProvider) (T, error)) (T, error) {
	var zero T

	adapter, ok := w.adapters[providerName]
	if !ok {
		return zero, apperrors.NewRateError(apperrors.ErrNoProviderAvailable, "provider "+providerName+" is not registered")
	}
	cb := w.breakers[providerName]

	callCtx, cancel := context.WithTimeout(ctx, w.policy.CallTimeout)
	defer cancel()

	start := time.Now()
	out, err := cb.Execute(func() (any, error) {
		v, err := retry(callCtx, w, providerName, func() (T, error) { return fn(callCtx, adapter) })
		if err != nil {
			if ctx.Err() != nil {
				return nil, callerAbortedError{err}
			}
			return nil, err
		}
		return v, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		w.metrics.RecordProviderCall(providerName, "rejected", time.Since(start))
		w.failoverFrom(ctx, providerName, fmt.Sprintf("circuit breaker %s", cb.State()))
		return zero, apperrors.NewAppError(
			apperrors.StatusFor(apperrors.ErrProviderRejected),
			"exchange rate provider "+providerName+" is temporarily unavailable",
			fmt.Errorf("%w: %w", apperrors.ErrProviderRejected, err),
		)
	}

	var aborted callerAbortedError
	if errors.As(err, &aborted) {
		err = aborted.error
	}
	if err != nil {
		w.metrics.RecordProviderCall(providerName, outcomeLabel(err), time.Since(start))
		return zero, classify(providerName, err)
	}

	w.metrics.RecordProviderCall(providerName, "ok", time.Since(start))
	return out.(T), nil
}

// retry runs op with exponential backoff. Only transport errors are retried.
func retry[T any](ctx context.Context, w *Wrapper, providerName string, op func() (T, error)) (T, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = w.policy.InitialInterval
	eb.Multiplier = w.policy.Multiplier
	eb.MaxInterval = w.policy.MaxInterval
	eb.RandomizationFactor = 0
	eb.MaxElapsedTime = 0
	eb.Reset()

	retries := uint64(0)
	if w.policy.MaxAttempts > 1 {
		retries = uint64(w.policy.MaxAttempts - 1)
	}
	b := backoff.WithContext(backoff.WithMaxRetries(eb, retries), ctx)

	attempt := func() (T, error) {
		v, err := op()
		if err == nil {
			return v, nil
		}
		if errors.Is(err, apperrors.ErrProviderTransport) {
			return v, err
		}
		return v, backoff.Permanent(err)
	}
	notify := func(err error, wait time.Duration) {
		w.metrics.RecordRetry(providerName)
		w.logger.Debug("Retrying provider call",
			slog.String("provider", providerName),
			slog.Duration("wait", wait),
			slog.String("error", err.Error()),
		)
	}
	return backoff.RetryNotifyWithData(attempt, b, notify)
}

func (w *Wrapper) failoverFrom(ctx context.Context, providerName, reason string) {
	if w.failover == nil {
		return
	}
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failoverTimeout)
	defer cancel()

	result, err := w.failover.FailoverFrom(fctx, providerName, reason)
	if err != nil {
		w.logger.Error("Failover after breaker rejection failed",
			slog.String("provider", providerName),
			slog.String("error", err.Error()),
		)
		return
	}
	if result != nil && !result.Superseded {
		w.logger.Warn("Failed over after breaker rejection",
			slog.String("deactivated", result.Deactivated),
			slog.String("activated", result.Activated),
		)
	}
}

func isCallerAborted(err error) bool {
	var aborted callerAbortedError
	return errors.As(err, &aborted)
}

// isProviderFailure decides what the breaker counts against a provider.
func isProviderFailure(err error) bool {
	if err == nil || isCallerAborted(err) {
		return false
	}
	return errors.Is(err, apperrors.ErrProviderTransport) ||
		errors.Is(err, apperrors.ErrProviderResponse) ||
		errors.Is(err, context.DeadlineExceeded)
}

// classify wraps err in an AppError with a client-safe message. The wrapped
// chain is kept so errors.Is still matches the adapter's sentinel.
func classify(providerName string, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperrors.NewAppError(
			apperrors.StatusFor(apperrors.ErrTimeout),
			"exchange rate provider "+providerName+" did not answer in time",
			fmt.Errorf("%w: %w", apperrors.ErrTimeout, err),
		)
	}

	var msg string
	switch {
	case errors.Is(err, apperrors.ErrRemoteDataMissing):
		msg = "no rate available from " + providerName
	case errors.Is(err, apperrors.ErrFutureDate):
		msg = "the rate cannot be retrieved from the future"
	case errors.Is(err, apperrors.ErrProviderTransport):
		msg = "exchange rate provider " + providerName + " is unreachable"
	case errors.Is(err, apperrors.ErrProviderResponse):
		msg = "exchange rate provider " + providerName + " returned an invalid response"
	default:
		msg = "exchange rate provider " + providerName + " failed"
	}
	return apperrors.NewAppError(apperrors.StatusFor(err), msg, err)
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	case errors.Is(err, apperrors.ErrRemoteDataMissing):
		return "no_data"
	case errors.Is(err, apperrors.ErrProviderTransport):
		return "transport_error"
	case errors.Is(err, apperrors.ErrProviderResponse):
		return "response_error"
	default:
		return "error"
	}
}

func breakerStateValue(s gobreaker.State) int {
	switch s {
	case gobreaker.StateOpen:
		return metrics.BreakerOpen
	case gobreaker.StateHalfOpen:
		return metrics.BreakerHalfOpen
	default:
		return metrics.BreakerClosed
	}
}
