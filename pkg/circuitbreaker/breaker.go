// Package circuitbreaker wraps sony/gobreaker for calls to the remote record
// store, with OpenTelemetry counters and defaults sized for a single clinic
// front desk rather than a high-traffic service.
package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// State represents the circuit breaker state.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

// Config holds circuit breaker configuration.
type Config struct {
	// Name identifies the breaker in logs and metrics.
	Name string
	// MaxRequests is the number of probe requests allowed while half-open.
	MaxRequests uint32
	// Interval is the cyclic period for clearing counts while closed.
	Interval time.Duration
	// Timeout is how long the circuit stays open before probing.
	Timeout time.Duration
	// FailureThreshold is the consecutive-failure count that opens the
	// circuit before MinRequests is reached.
	FailureThreshold uint32
	// FailureRatio opens the circuit once MinRequests have been seen.
	FailureRatio float64
	// MinRequests is the minimum request count before the ratio applies.
	MinRequests uint32
}

// DefaultConfig returns defaults suitable for the remote record store: trip
// fast on a dead connection so reads fall back to the local cache quickly.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      2,
		Interval:         60 * time.Second,
		Timeout:          15 * time.Second,
		FailureThreshold: 3,
		FailureRatio:     0.5,
		MinRequests:      6,
	}
}

// CircuitBreaker wraps gobreaker with observability.
type CircuitBreaker struct {
	cb     *gobreaker.CircuitBreaker
	name   string
	logger *zap.Logger
	tracer trace.Tracer

	meter          metric.Meter
	requestCounter metric.Int64Counter
	failureCounter metric.Int64Counter
	rejectCounter  metric.Int64Counter

	currentState State
	stateMu      sync.RWMutex
}

// New creates a circuit breaker.
func New(cfg Config, logger *zap.Logger) (*CircuitBreaker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cb := &CircuitBreaker{
		name:         cfg.Name,
		logger:       logger,
		tracer:       otel.Tracer("circuit-breaker"),
		meter:        otel.Meter("circuit-breaker"),
		currentState: StateClosed,
	}

	var err error
	cb.requestCounter, err = cb.meter.Int64Counter("record_store_breaker_requests_total",
		metric.WithDescription("Total requests through the record store breaker"))
	if err != nil {
		return nil, fmt.Errorf("create request counter: %w", err)
	}
	cb.failureCounter, err = cb.meter.Int64Counter("record_store_breaker_failures_total",
		metric.WithDescription("Total failed record store requests"))
	if err != nil {
		return nil, fmt.Errorf("create failure counter: %w", err)
	}
	cb.rejectCounter, err = cb.meter.Int64Counter("record_store_breaker_rejections_total",
		metric.WithDescription("Total requests rejected while the circuit was open"))
	if err != nil {
		return nil, fmt.Errorf("create rejection counter: %w", err)
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return counts.ConsecutiveFailures >= cfg.FailureThreshold
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			cb.onStateChange(from, to)
		},
	}
	cb.cb = gobreaker.NewCircuitBreaker(settings)

	return cb, nil
}

// IsRejection reports whether err means the breaker refused the call rather
// than the call itself failing.
func IsRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// Execute runs fn through the circuit breaker.
func (c *CircuitBreaker) Execute(ctx context.Context, fn func() (any, error)) (any, error) {
	ctx, span := c.tracer.Start(ctx, "circuit_breaker_execute",
		trace.WithAttributes(
			attribute.String("breaker_name", c.name),
			attribute.String("state", string(c.GetState())),
		))
	defer span.End()

	c.requestCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("name", c.name)))

	result, err := c.cb.Execute(fn)
	if err != nil {
		if IsRejection(err) {
			c.rejectCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("name", c.name)))
			span.SetAttributes(attribute.Bool("circuit_open", true))
		} else {
			c.failureCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("name", c.name)))
		}
		span.RecordError(err)
		return nil, err
	}

	return result, nil
}

// ExecuteWithFallback runs fn, invoking fallback on any failure, both open
// circuit and plain call failure. Record store reads use this to serve the
// local cache when the remote store is unreachable.
func (c *CircuitBreaker) ExecuteWithFallback(ctx context.Context, fn func() (any, error), fallback func(error) (any, error)) (any, error) {
	result, err := c.Execute(ctx, fn)
	if err != nil {
		c.logger.Warn("record store call failed, using fallback",
			zap.String("breaker", c.name),
			zap.Bool("circuit_open", IsRejection(err)),
			zap.Error(err))
		return fallback(err)
	}
	return result, nil
}

// GetState returns the current state.
func (c *CircuitBreaker) GetState() State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.currentState
}

// IsOpen reports whether the circuit is open.
func (c *CircuitBreaker) IsOpen() bool {
	return c.GetState() == StateOpen
}

// Counts returns the underlying gobreaker counts.
func (c *CircuitBreaker) Counts() gobreaker.Counts {
	return c.cb.Counts()
}

func (c *CircuitBreaker) onStateChange(from, to gobreaker.State) {
	fromState := mapState(from)
	toState := mapState(to)

	c.stateMu.Lock()
	c.currentState = toState
	c.stateMu.Unlock()

	c.logger.Warn("circuit breaker state changed",
		zap.String("breaker", c.name),
		zap.String("from", string(fromState)),
		zap.String("to", string(toState)))
}

func mapState(s gobreaker.State) State {
	switch s {
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateClosed
	}
}
