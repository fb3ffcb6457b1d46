package main

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/marketproof/attribution-cli/internal/config"
	"github.com/marketproof/attribution-cli/internal/oracle"
	"github.com/marketproof/attribution-cli/internal/registry"
	"github.com/marketproof/attribution-cli/internal/resilience"
	"github.com/marketproof/attribution-cli/internal/validate"
	"github.com/marketproof/attribution-cli/pkg/anthropic"
	"github.com/marketproof/attribution-cli/pkg/catalog"
	"github.com/marketproof/attribution-cli/pkg/perplexity"
)

// env wires the components a command needs from the loaded configuration.
type env struct {
	Catalog   catalog.Client
	Brands    *registry.Brands
	Validator *validate.Validator
}

// initEnv validates configuration (fail fast, before any batch work) and
// constructs the component graph.
func initEnv(c *config.Config) (*env, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	brands, err := registry.Load(c.Registry.Path)
	if err != nil {
		return nil, eris.Wrap(err, "load brand registry")
	}

	cat := catalog.NewClient(c.Catalog.BaseURL, c.Catalog.Key,
		catalog.WithRateLimit(c.Catalog.SearchRPS),
	)

	opts := []validate.ValidatorOption{
		validate.WithDryRun(c.Batch.DryRun),
		validate.WithComments(c.Batch.PostComments),
	}
	if c.Oracle.Enabled {
		opts = append(opts, validate.WithOracle(newOracle(c)))
	}

	return &env{
		Catalog:   cat,
		Brands:    brands,
		Validator: validate.NewValidator(brands, cat, opts...),
	}, nil
}

// newOracle builds the escalation client for the configured provider.
// Provider choice happens once, here; everything downstream is agnostic.
func newOracle(c *config.Config) *oracle.Client {
	var provider oracle.Provider
	switch c.Oracle.Provider {
	case oracle.ProviderPerplexity:
		pc := perplexity.NewClient(c.Perplexity.Key,
			perplexity.WithBaseURL(c.Perplexity.BaseURL),
			perplexity.WithModel(c.Perplexity.Model),
		)
		provider = oracle.NewPerplexityProvider(pc, c.Perplexity.Model)
	default:
		ac := anthropic.NewClient(c.Anthropic.Key)
		provider = oracle.NewAnthropicProvider(ac, c.Anthropic.Model)
	}

	retryCfg := resilience.FromRetryConfig(
		c.Oracle.MaxAttempts,
		c.Oracle.BackoffBaseMs,
		c.Oracle.BackoffCapMs,
		c.Oracle.BackoffJitterMs,
	)

	breakerCfg := resilience.FromCircuitConfig(c.Oracle.BreakerTrips, c.Oracle.BreakerResetSecs)

	return oracle.New(provider,
		oracle.WithRetryConfig(retryCfg),
		oracle.WithBreakerConfig(breakerCfg),
		oracle.WithTimeout(time.Duration(c.Oracle.TimeoutSecs)*time.Second),
	)
}
