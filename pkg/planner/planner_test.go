package planner

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensylisir/opsagent/pkg/capability"
	"github.com/mensylisir/opsagent/pkg/logger"
	"github.com/mensylisir/opsagent/pkg/opsimate"
)

func descriptors() []capability.Descriptor {
	client := opsimate.NewClient(opsimate.ClientOptions{BaseURL: "http://127.0.0.1:1", Logger: logger.NewNop()})
	return capability.NewBuiltinRegistry(client, capability.Options{Logger: logger.NewNop()}).Descriptors()
}

func TestRenderSystemPrompt(t *testing.T) {
	prompt, err := RenderSystemPrompt(descriptors())
	require.NoError(t, err)

	assert.Contains(t, prompt, `{"steps": [{"function": "<function_name>", "arguments": {...}}, ...]}`)
	assert.Contains(t, prompt, "- create_user(email, fullName, password, role)")
	assert.Contains(t, prompt, "- get_all_users(): ")
	assert.Contains(t, prompt, "- change_role(email, newRole)")
	assert.Contains(t, prompt, "- create_secret(displayName, secretType, secret_file?)")
	assert.Contains(t, prompt, "- create_cluster(name, providerType, secretId: integer)")
	assert.Contains(t, prompt, `"{{last_secret_id}}"`)
	assert.Contains(t, prompt, `{"steps":[{"function":"none"}]}`)
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func newTestPlanner(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	p, err := New(Options{
		Endpoint:     srv.URL + "/openai/v1/chat/completions",
		APIKey:       "gsk-test",
		Model:        "test-model",
		MaxTokens:    256,
		Logger:       logger.NewNop(),
		Capabilities: descriptors(),
	})
	require.NoError(t, err)
	return p
}

func TestPlan(t *testing.T) {
	var got chatRequest
	p := newTestPlanner(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"choices":[{"index":0,"message":{"role":"assistant","content":"  {\"steps\":[{\"function\":\"get_all_users\"}]}\n"}}]}`)
	})

	out, err := p.Plan(context.Background(), "list all users")
	require.NoError(t, err)
	assert.Equal(t, `{"steps":[{"function":"get_all_users"}]}`, out)

	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 256, got.MaxTokens)
	assert.Zero(t, got.Temperature)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, p.SystemPrompt(), got.Messages[0].Content)
	assert.Equal(t, chatMessage{Role: "user", Content: "list all users"}, got.Messages[1])
}

func TestPlan_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"api error", http.StatusUnauthorized, `{"error":{"message":"Invalid API Key"}}`, "HTTP 401: Invalid API Key"},
		{"plain error", http.StatusBadGateway, `bad gateway`, "HTTP 502: bad gateway"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "no message content"},
		{"empty reply", http.StatusOK, `{"choices":[{"message":{"content":"  "}}]}`, "empty reply"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPlanner(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := p.Plan(context.Background(), "do it")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestPlan_EmptyText(t *testing.T) {
	p := newTestPlanner(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := p.Plan(context.Background(), "   ")
	require.Error(t, err)
}
