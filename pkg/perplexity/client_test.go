package perplexity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatCompletion(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    string
		wantStatus int
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body: `{
				"id": "cmpl-123",
				"model": "sonar",
				"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"importers\":[]}"}}],
				"citations": ["https://www.importyeti.com/company/acme"],
				"usage": {"prompt_tokens": 10, "completion_tokens": 5}
			}`,
		},
		{
			name:       "rate_limit",
			status:     http.StatusTooManyRequests,
			body:       `{"error": "rate limit exceeded"}`,
			wantErr:    "unexpected status 429",
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name:       "unauthorized",
			status:     http.StatusUnauthorized,
			body:       `{"error": "bad key"}`,
			wantErr:    "unexpected status 401",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:    "malformed_response",
			status:  http.StatusOK,
			body:    `{invalid json`,
			wantErr: "unmarshal response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/chat/completions", r.URL.Path)
				assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient("test-key", WithBaseURL(srv.URL))
			resp, err := client.ChatCompletion(context.Background(), ChatCompletionRequest{
				Messages: []Message{{Role: "user", Content: "Find furniture importers"}},
			})

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				if tt.wantStatus != 0 {
					var apiErr *APIError
					require.True(t, errors.As(err, &apiErr))
					assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "cmpl-123", resp.ID)
			assert.Equal(t, `{"importers":[]}`, resp.Text())
			assert.Equal(t, []string{"https://www.importyeti.com/company/acme"}, resp.Citations)
			assert.Equal(t, 5, resp.Usage.CompletionTokens)
		})
	}
}

func TestChatCompletion_RequestShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "sonar-pro", req["model"])
		assert.Equal(t, "month", req["search_recency_filter"])
		assert.Equal(t, []any{"importyeti.com"}, req["search_domain_filter"])
		_, _ = w.Write([]byte(`{"id":"1","choices":[],"usage":{}}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithModel("sonar-pro"), WithTimeout(5*time.Second))
	resp, err := client.ChatCompletion(context.Background(), ChatCompletionRequest{
		Messages:            []Message{{Role: "user", Content: "x"}},
		SearchDomainFilter:  []string{"importyeti.com"},
		SearchRecencyFilter: "month",
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Text())
}

func TestDefaultModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "sonar", req.Model)
		_, _ = w.Write([]byte(`{"id":"1","choices":[{"index":0,"message":{"role":"assistant","content":"ok"}}],"usage":{}}`))
	}))
	defer srv.Close()

	resp, err := NewClient("k", WithBaseURL(srv.URL)).ChatCompletion(context.Background(), ChatCompletionRequest{
		Messages: []Message{{Role: "user", Content: "test"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text())
}

func TestChatCompletion_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient("k", WithBaseURL(srv.URL)).ChatCompletion(ctx, ChatCompletionRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send request")
}
