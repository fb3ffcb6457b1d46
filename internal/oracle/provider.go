package oracle

import (
	"context"
	"errors"
	"strings"

	"github.com/marketproof/attribution-cli/internal/resilience"
	"github.com/marketproof/attribution-cli/pkg/anthropic"
	"github.com/marketproof/attribution-cli/pkg/perplexity"
)

// Provider names accepted by the configuration surface.
const (
	ProviderAnthropic  = "anthropic"
	ProviderPerplexity = "perplexity"
)

const judgeMaxTokens = 1024

// Provider is one interchangeable reasoning backend. Implementations receive
// the same structured prompt, may issue at most one web search, and must
// reply with the strict JSON the schema in the prompt demands.
// Transient failures are wrapped with resilience.NewTransientError so the
// client retries them; everything else fails fast.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt Prompt) (*Reply, error)
}

// Reply is a provider's raw answer.
type Reply struct {
	Text      string
	RequestID string

	// Incomplete marks a reply the provider flagged as truncated (token
	// budget exhausted). Callers must treat the content as empty.
	Incomplete bool
}

// anthropicProvider judges via the Anthropic Messages API with a single-use
// web-search tool.
type anthropicProvider struct {
	client anthropic.Client
	model  string
}

// NewAnthropicProvider wraps an Anthropic client as a Provider.
func NewAnthropicProvider(client anthropic.Client, model string) Provider {
	return &anthropicProvider{client: client, model: model}
}

func (p *anthropicProvider) Name() string { return ProviderAnthropic }

func (p *anthropicProvider) Complete(ctx context.Context, prompt Prompt) (*Reply, error) {
	temp := 0.0
	resp, err := p.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:           p.model,
		MaxTokens:       judgeMaxTokens,
		System:          prompt.System,
		Messages:        []anthropic.Message{{Role: "user", Content: prompt.User}},
		Temperature:     &temp,
		EnableWebSearch: true,
		MaxSearchUses:   1,
	})
	if err != nil {
		return nil, classifyAnthropic(err)
	}

	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "" || b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}

	resp.Usage.LogCost(resp.Model, "escalation")

	return &Reply{
		Text:       sb.String(),
		RequestID:  resp.ID,
		Incomplete: resp.StopReason == "max_tokens",
	}, nil
}

func classifyAnthropic(err error) error {
	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) && resilience.IsTransientHTTPStatus(apiErr.StatusCode) {
		return resilience.NewTransientError(err, apiErr.StatusCode)
	}
	return err
}

// perplexityProvider judges via Perplexity chat completions; sonar models
// perform their own single web search server-side.
type perplexityProvider struct {
	client perplexity.Client
	model  string
}

// NewPerplexityProvider wraps a Perplexity client as a Provider.
func NewPerplexityProvider(client perplexity.Client, model string) Provider {
	return &perplexityProvider{client: client, model: model}
}

func (p *perplexityProvider) Name() string { return ProviderPerplexity }

func (p *perplexityProvider) Complete(ctx context.Context, prompt Prompt) (*Reply, error) {
	temp := 0.0
	maxTokens := judgeMaxTokens
	resp, err := p.client.ChatCompletion(ctx, perplexity.ChatCompletionRequest{
		Model: p.model,
		Messages: []perplexity.Message{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		return nil, classifyPerplexity(err)
	}

	if len(resp.Choices) == 0 {
		return &Reply{RequestID: resp.ID}, nil
	}

	choice := resp.Choices[0]
	return &Reply{
		Text:       choice.Message.Content,
		RequestID:  resp.ID,
		Incomplete: choice.FinishReason == "length",
	}, nil
}

func classifyPerplexity(err error) error {
	var apiErr *perplexity.APIError
	if errors.As(err, &apiErr) && resilience.IsTransientHTTPStatus(apiErr.StatusCode) {
		return resilience.NewTransientError(err, apiErr.StatusCode)
	}
	return err
}
