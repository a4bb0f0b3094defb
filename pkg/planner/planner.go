// Package planner turns free text into a plan document by asking an
// OpenAI-compatible chat-completions endpoint. Its output is untrusted and is
// validated by the engine like any other plan document.
package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/mensylisir/opsagent/pkg/capability"
	"github.com/mensylisir/opsagent/pkg/common"
	"github.com/mensylisir/opsagent/pkg/logger"
)

// Planner produces the raw plan document for a request.
type Planner interface {
	Plan(ctx context.Context, text string) (string, error)
}

type Options struct {
	Endpoint     string
	APIKey       string
	Model        string
	Temperature  float64
	MaxTokens    int
	Timeout      time.Duration
	HTTPClient   *http.Client
	Logger       *logger.Logger
	Capabilities []capability.Descriptor
}

// Client is the chat-completions backed Planner.
type Client struct {
	endpoint     string
	apiKey       string
	model        string
	temperature  float64
	maxTokens    int
	systemPrompt string
	httpClient   *http.Client
	log          *logger.Logger
}

var _ Planner = (*Client)(nil)

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func New(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("planner: API key is not configured (set %s or planner.apiKey)", common.EnvPlannerAPIKey)
	}
	prompt, err := RenderSystemPrompt(opts.Capabilities)
	if err != nil {
		return nil, errors.Wrap(err, "planner: failed to render system prompt")
	}

	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = common.DefaultPlannerEndpoint
	}
	model := opts.Model
	if model == "" {
		model = common.DefaultPlannerModel
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = common.DefaultPlannerTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	log := opts.Logger
	if log == nil {
		log = logger.Get()
	}
	return &Client{
		endpoint:     endpoint,
		apiKey:       opts.APIKey,
		model:        model,
		temperature:  opts.Temperature,
		maxTokens:    opts.MaxTokens,
		systemPrompt: prompt,
		httpClient:   httpClient,
		log:          log.With("component", "planner"),
	}, nil
}

// SystemPrompt returns the rendered system prompt.
func (c *Client) SystemPrompt() string {
	return c.systemPrompt
}

// Plan sends text to the model and returns the assistant's reply verbatim,
// minus surrounding whitespace.
func (c *Client) Plan(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("planner: request text is empty")
	}
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: c.systemPrompt},
			{Role: "user", Content: text},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", errors.Wrap(err, "planner: failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "planner: failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "planner: request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "planner: failed to read response")
	}
	c.log.Debugf("chat completion with %s -> %d (%s)", c.model, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := gjson.GetBytes(raw, "error.message").String()
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return "", fmt.Errorf("planner: API returned HTTP %d: %s", resp.StatusCode, msg)
	}

	content := gjson.GetBytes(raw, "choices.0.message.content")
	if !content.Exists() {
		return "", fmt.Errorf("planner: response has no message content")
	}
	out := strings.TrimSpace(content.String())
	if out == "" {
		return "", fmt.Errorf("planner: model returned an empty reply")
	}
	return out, nil
}
