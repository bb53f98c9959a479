package research

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/importer-intel/internal/model"
	"github.com/sells-group/importer-intel/pkg/anthropic"
	"github.com/sells-group/importer-intel/pkg/perplexity"
)

// --- Generator Mock ---

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	args := m.Called(ctx, prompt, opts)
	return args.String(0), args.Error(1)
}

// --- LeadSource Mock ---

type mockLeadSource struct {
	mock.Mock
}

func (m *mockLeadSource) Collect(ctx context.Context, query string) []model.RawLead {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]model.RawLead)
}

// --- Anthropic Mock ---

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

// --- Perplexity Mock ---

type mockPerplexityClient struct {
	mock.Mock
}

func (m *mockPerplexityClient) ChatCompletion(ctx context.Context, req perplexity.ChatCompletionRequest) (*perplexity.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*perplexity.ChatCompletionResponse), args.Error(1)
}
