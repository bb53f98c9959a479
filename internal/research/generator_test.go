package research

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/importer-intel/internal/resilience"
	"github.com/sells-group/importer-intel/pkg/anthropic"
	"github.com/sells-group/importer-intel/pkg/perplexity"
)

func testRouterConfig() RouterConfig {
	return RouterConfig{
		Model:       "claude-haiku-4-5-20251001",
		SearchModel: "sonar",
		Retry:       resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond},
		Breaker:     resilience.CircuitBreakerConfig{FailureThreshold: 10},
	}
}

func pplxReply(text string) *perplexity.ChatCompletionResponse {
	return &perplexity.ChatCompletionResponse{Choices: []perplexity.Choice{{Message: perplexity.Message{Role: "assistant", Content: text}}}}
}

func aiReply(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{Model: "claude-haiku-4-5-20251001", Content: []anthropic.ContentBlock{{Type: "text", Text: text}}}
}

func TestNewLLMRouter_RequiresBackend(t *testing.T) {
	_, err := NewLLMRouter(nil, nil, testRouterConfig())
	assert.Error(t, err)
}

func TestLLMRouter_Routing(t *testing.T) {
	ai := &mockAnthropicClient{}
	pplx := &mockPerplexityClient{}
	r, err := NewLLMRouter(ai, pplx, testRouterConfig())
	require.NoError(t, err)

	pplx.On("ChatCompletion", mock.Anything, mock.MatchedBy(func(req perplexity.ChatCompletionRequest) bool {
		return req.Model == "sonar" && req.Messages[0].Content == "search this"
	})).Return(pplxReply("searched"), nil).Once()
	ai.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.Model == "claude-haiku-4-5-20251001" && req.MaxTokens == 8192 && req.Messages[0].Content == "clean this"
	})).Return(aiReply("cleaned"), nil).Once()

	got, err := r.Generate(context.Background(), "search this", GenerateOptions{WebSearch: true})
	require.NoError(t, err)
	assert.Equal(t, "searched", got)

	got, err = r.Generate(context.Background(), "clean this", GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "cleaned", got)

	ai.AssertExpectations(t)
	pplx.AssertExpectations(t)
}

func TestLLMRouter_SingleBackend(t *testing.T) {
	ai := &mockAnthropicClient{}
	ai.On("CreateMessage", mock.Anything, mock.Anything).Return(aiReply("from claude"), nil)
	r, err := NewLLMRouter(ai, nil, testRouterConfig())
	require.NoError(t, err)

	got, err := r.Generate(context.Background(), "search", GenerateOptions{WebSearch: true})
	require.NoError(t, err)
	assert.Equal(t, "from claude", got)

	pplx := &mockPerplexityClient{}
	pplx.On("ChatCompletion", mock.Anything, mock.Anything).Return(pplxReply("from sonar"), nil)
	r, err = NewLLMRouter(nil, pplx, testRouterConfig())
	require.NoError(t, err)

	got, err = r.Generate(context.Background(), "clean", GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "from sonar", got)
}

func TestLLMRouter_RetriesTransientStatus(t *testing.T) {
	pplx := &mockPerplexityClient{}
	pplx.On("ChatCompletion", mock.Anything, mock.Anything).
		Return(nil, &perplexity.APIError{StatusCode: 429, Body: "slow down"}).Twice()
	pplx.On("ChatCompletion", mock.Anything, mock.Anything).Return(pplxReply("ok"), nil).Once()

	r, err := NewLLMRouter(nil, pplx, testRouterConfig())
	require.NoError(t, err)

	got, err := r.Generate(context.Background(), "p", GenerateOptions{WebSearch: true})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	pplx.AssertNumberOfCalls(t, "ChatCompletion", 3)
}

func TestLLMRouter_NoRetryOnPermanent(t *testing.T) {
	pplx := &mockPerplexityClient{}
	pplx.On("ChatCompletion", mock.Anything, mock.Anything).
		Return(nil, &perplexity.APIError{StatusCode: 401, Body: "bad key"})
	ai := &mockAnthropicClient{}
	ai.On("CreateMessage", mock.Anything, mock.Anything).Return(nil, errors.New("invalid model"))

	r, err := NewLLMRouter(ai, pplx, testRouterConfig())
	require.NoError(t, err)

	_, err = r.Generate(context.Background(), "p", GenerateOptions{WebSearch: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	pplx.AssertNumberOfCalls(t, "ChatCompletion", 1)

	_, err = r.Generate(context.Background(), "p", GenerateOptions{})
	require.Error(t, err)
	ai.AssertNumberOfCalls(t, "CreateMessage", 1)
}

func TestLLMRouter_BreakerOpens(t *testing.T) {
	ai := &mockAnthropicClient{}
	ai.On("CreateMessage", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	cfg := testRouterConfig()
	cfg.Breaker = resilience.CircuitBreakerConfig{FailureThreshold: 2, ResetTimeout: time.Hour}
	r, err := NewLLMRouter(ai, nil, cfg)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, _ = r.Generate(context.Background(), "p", GenerateOptions{})
	}
	_, err = r.Generate(context.Background(), "p", GenerateOptions{})
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	ai.AssertNumberOfCalls(t, "CreateMessage", 2)
}

func TestLLMRouter_TracksSpend(t *testing.T) {
	ai := &mockAnthropicClient{}
	pplx := &mockPerplexityClient{}
	r, err := NewLLMRouter(ai, pplx, testRouterConfig())
	require.NoError(t, err)
	assert.Empty(t, r.Spend())

	reply := pplxReply("searched")
	reply.Usage = perplexity.Usage{PromptTokens: 1000000, CompletionTokens: 0}
	pplx.On("ChatCompletion", mock.Anything, mock.Anything).Return(reply, nil)

	claude := aiReply("cleaned")
	claude.Usage = anthropic.TokenUsage{InputTokens: 1000000}
	ai.On("CreateMessage", mock.Anything, mock.Anything).Return(claude, nil)

	_, err = r.Generate(context.Background(), "search", GenerateOptions{WebSearch: true})
	require.NoError(t, err)
	_, err = r.Generate(context.Background(), "clean", GenerateOptions{})
	require.NoError(t, err)

	spend := r.Spend()
	require.Len(t, spend, 2)
	assert.Equal(t, "anthropic", spend[0].Backend)
	assert.InDelta(t, 0.80, spend[0].USD, 0.0001)
	assert.Equal(t, "perplexity", spend[1].Backend)
	assert.InDelta(t, 1.005, spend[1].USD, 0.0001)
	assert.Equal(t, 1, spend[1].Calls)
}

func TestLLMRouter_BreakerStates(t *testing.T) {
	r, err := NewLLMRouter(&mockAnthropicClient{}, nil, testRouterConfig())
	require.NoError(t, err)

	states := r.BreakerStates()
	assert.Equal(t, map[string]resilience.CircuitState{"anthropic": resilience.CircuitClosed}, states)
}
