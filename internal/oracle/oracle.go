// Package oracle defers heuristically-ambiguous attribution claims to an
// external reasoning model. The oracle is a black-box judge: its decision,
// once obtained, is authoritative and never re-scored. Every failure mode
// degrades to "no decision" — nothing in this package panics or propagates
// an error into the verdict path.
package oracle

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/marketproof/attribution-cli/internal/model"
	"github.com/marketproof/attribution-cli/internal/resilience"
)

const defaultTimeout = 45 * time.Second

// Client calls a single Provider with retry, per-call timeout and a circuit
// breaker. At most MaxAttempts (default 2) requests are issued per Judge
// call; only transient failures are retried.
type Client struct {
	provider Provider
	retry    resilience.RetryConfig
	breaker  *resilience.CircuitBreaker
	timeout  time.Duration
}

// Option configures the client.
type Option func(*Client)

// WithRetryConfig overrides the default retry configuration.
func WithRetryConfig(cfg resilience.RetryConfig) Option {
	return func(c *Client) {
		c.retry = cfg
	}
}

// WithTimeout overrides the default per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithBreakerConfig overrides the default circuit breaker configuration.
func WithBreakerConfig(cfg resilience.CircuitBreakerConfig) Option {
	return func(c *Client) {
		c.breaker = resilience.NewCircuitBreaker(cfg)
	}
}

// New creates an oracle client for the given provider.
func New(provider Provider, opts ...Option) *Client {
	c := &Client{
		provider: provider,
		retry:    resilience.DefaultRetryConfig(),
		breaker:  resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig()),
		timeout:  defaultTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	// Installed after the options run so a custom retry config without its
	// own hook still logs retries.
	if c.retry.OnRetry == nil {
		c.retry.OnRetry = resilience.RetryLogger(provider.Name(), "judge")
	}
	return c
}

// Judge asks the provider whether the attribution claims are trustworthy.
// Returns nil when no decision could be obtained — the caller applies its
// fallback policy. All errors are logged with a short diagnostic and
// swallowed here.
func (c *Client) Judge(ctx context.Context, row model.NormalizedRow, heuristics model.SuspicionResult) *model.AIDecision {
	prompt := BuildPrompt(row, heuristics)

	log := zap.L().With(
		zap.String("provider", c.provider.Name()),
		zap.String("search_query", prompt.SearchQuery),
	)

	reply, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*Reply, error) {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		return resilience.ExecuteVal(callCtx, c.breaker, func(ctx context.Context) (*Reply, error) {
			return c.provider.Complete(ctx, prompt)
		})
	})
	if err != nil {
		logOracleFailure(log, err)
		return nil
	}

	text := reply.Text
	if reply.Incomplete {
		// A truncated reply is not partially-usable data.
		log.Warn("oracle reply flagged incomplete, discarding",
			zap.String("request_id", reply.RequestID),
		)
		text = ""
	}

	decision, err := ParseDecision(text)
	if err != nil {
		log.Warn("oracle reply unparseable",
			zap.String("request_id", reply.RequestID),
			zap.String("reply", truncate(text, 200)),
			zap.Error(err),
		)
		return nil
	}

	log.Info("oracle decision",
		zap.Bool("valid", decision.Valid),
		zap.String("request_id", reply.RequestID),
	)
	return decision
}

// logOracleFailure emits one short diagnostic: error class, HTTP status,
// request id when known, truncated message.
func logOracleFailure(log *zap.Logger, err error) {
	fields := []zap.Field{zap.String("error", truncate(err.Error(), 200))}

	var te *resilience.TransientError
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		fields = append(fields, zap.String("class", "circuit_open"))
	case errors.As(err, &te):
		fields = append(fields, zap.String("class", "transient"), zap.Int("status", te.StatusCode))
	default:
		fields = append(fields, zap.String("class", "permanent"))
	}

	log.Warn("oracle unavailable, no decision", fields...)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
