package research

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/importer-intel/internal/cost"
	"github.com/sells-group/importer-intel/internal/resilience"
	"github.com/sells-group/importer-intel/pkg/anthropic"
	"github.com/sells-group/importer-intel/pkg/perplexity"
)

// GenerateOptions tunes a single generation.
type GenerateOptions struct {
	// WebSearch asks for a search-grounded answer.
	WebSearch bool
}

// Generator turns a prompt into free text that is expected to contain JSON.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// RouterConfig configures an LLMRouter.
type RouterConfig struct {
	Model       string // Anthropic model for prompts without web search
	SearchModel string // Perplexity model for web search prompts
	MaxTokens   int64
	Retry       resilience.RetryConfig
	Breaker     resilience.CircuitBreakerConfig
	Rates       *cost.Rates // nil uses cost.DefaultRates
}

// LLMRouter sends web-search prompts to Perplexity and everything else to
// Anthropic. When only one backend is configured it serves every prompt.
type LLMRouter struct {
	ai     anthropic.Client
	pplx   perplexity.Client
	cfg    RouterConfig
	aiCB   *resilience.CircuitBreaker
	pplxCB *resilience.CircuitBreaker

	calc   *cost.Calculator
	ledger *cost.Ledger
}

// NewLLMRouter builds a router. Either client may be nil, not both.
func NewLLMRouter(ai anthropic.Client, pplx perplexity.Client, cfg RouterConfig) (*LLMRouter, error) {
	if ai == nil && pplx == nil {
		return nil, eris.New("research: no generator backend configured")
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 8192
	}
	rates := cost.DefaultRates()
	if cfg.Rates != nil {
		rates = *cfg.Rates
	}
	return &LLMRouter{
		ai:     ai,
		pplx:   pplx,
		cfg:    cfg,
		aiCB:   resilience.NewCircuitBreaker("anthropic", cfg.Breaker),
		pplxCB: resilience.NewCircuitBreaker("perplexity", cfg.Breaker),
		calc:   cost.NewCalculator(rates),
		ledger: cost.NewLedger(),
	}, nil
}

// Generate implements Generator.
func (r *LLMRouter) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	usePerplexity := r.pplx != nil && (opts.WebSearch || r.ai == nil)
	if opts.WebSearch && r.pplx == nil {
		zap.L().Debug("research: web search requested without perplexity, using anthropic")
	}

	if usePerplexity {
		retry := r.cfg.Retry
		retry.OnRetry = resilience.RetryLogger("perplexity", "chat_completion")
		return resilience.DoVal(ctx, retry, func(ctx context.Context) (string, error) {
			return resilience.ExecuteVal(ctx, r.pplxCB, func(ctx context.Context) (string, error) {
				return r.viaPerplexity(ctx, prompt)
			})
		})
	}

	retry := r.cfg.Retry
	retry.OnRetry = resilience.RetryLogger("anthropic", "create_message")
	return resilience.DoVal(ctx, retry, func(ctx context.Context) (string, error) {
		return resilience.ExecuteVal(ctx, r.aiCB, func(ctx context.Context) (string, error) {
			return r.viaAnthropic(ctx, prompt)
		})
	})
}

func (r *LLMRouter) viaPerplexity(ctx context.Context, prompt string) (string, error) {
	resp, err := r.pplx.ChatCompletion(ctx, perplexity.ChatCompletionRequest{
		Model:    r.cfg.SearchModel,
		Messages: []perplexity.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		var apiErr *perplexity.APIError
		if errors.As(err, &apiErr) {
			return "", resilience.HTTPStatusError("perplexity", apiErr.StatusCode, apiErr.Body)
		}
		return "", err
	}
	usd := r.calc.Perplexity(r.cfg.SearchModel, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	r.ledger.Add("perplexity", usd)
	zap.L().Debug("research: perplexity reply",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Int("citations", len(resp.Citations)),
		zap.Float64("cost_usd", usd),
	)
	return resp.Text(), nil
}

func (r *LLMRouter) viaAnthropic(ctx context.Context, prompt string) (string, error) {
	resp, err := r.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     r.cfg.Model,
		MaxTokens: r.cfg.MaxTokens,
		System:    anthropic.CachedSystem(systemPrompt),
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		if code := anthropic.StatusCode(err); resilience.IsTransientHTTPStatus(code) {
			return "", resilience.NewTransientError(err, code)
		}
		return "", err
	}
	resp.Usage.Log(resp.Model, "generate")
	model := resp.Model
	if model == "" {
		model = r.cfg.Model
	}
	u := resp.Usage
	r.ledger.Add("anthropic", r.calc.Claude(model, u.InputTokens, u.OutputTokens, u.CacheCreationInputTokens, u.CacheReadInputTokens))
	return resp.Text(), nil
}

// BreakerStates reports the circuit state of each configured backend.
func (r *LLMRouter) BreakerStates() map[string]resilience.CircuitState {
	out := make(map[string]resilience.CircuitState, 2)
	if r.ai != nil {
		out["anthropic"] = r.aiCB.State()
	}
	if r.pplx != nil {
		out["perplexity"] = r.pplxCB.State()
	}
	return out
}

// Spend returns the estimated spend per backend since the router was built.
func (r *LLMRouter) Spend() []cost.Spend {
	return r.ledger.Snapshot()
}

const systemPrompt = `You are a US import trade-intelligence researcher. Answer with a single JSON object in the structure the user asks for and nothing else.`
