package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/Avinkovic23/local-llm-project/internal/logger"
)

// ErrGenerationUnavailable is returned when the generation provider is
// failing and the circuit breaker has opened.
var ErrGenerationUnavailable = errors.New("generation provider unavailable")

// GenerationClient wraps a Generator with a circuit breaker, a client-side
// rate limiter, and a bounded per-call timeout. Failed calls are not
// retried; the caller must resubmit.
type GenerationClient struct {
	generator   Generator
	breaker     *gobreaker.CircuitBreaker
	rateLimiter *rate.Limiter
	timeout     time.Duration
}

func NewGenerationClient(generator Generator, timeout time.Duration) *GenerationClient {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GenerationProvider",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})

	// Local inference is the bottleneck, not quota; the limiter only
	// smooths bursts.
	rateLimiter := rate.NewLimiter(rate.Limit(2), 4)

	return &GenerationClient{
		generator:   generator,
		breaker:     breaker,
		rateLimiter: rateLimiter,
		timeout:     timeout,
	}
}

func (gc *GenerationClient) Generate(ctx context.Context, prompt string) (string, error) {
	tracer := otel.Tracer("generation-client")
	ctx, span := tracer.Start(ctx, "llm.generate")
	defer span.End()

	span.SetAttributes(attribute.Int("llm.prompt_chars", len(prompt)))

	if err := gc.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("llm.rate_limited", true))
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, gc.timeout)
	defer cancel()

	result, err := gc.breaker.Execute(func() (interface{}, error) {
		return gc.generator.Generate(ctx, prompt)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState {
			span.SetAttributes(attribute.Bool("llm.circuit_breaker_open", true))
			return "", ErrGenerationUnavailable
		}
		span.SetAttributes(attribute.Bool("llm.error", true))
		return "", fmt.Errorf("generation failed: %w", err)
	}

	span.SetAttributes(attribute.Bool("llm.success", true))
	return result.(string), nil
}
