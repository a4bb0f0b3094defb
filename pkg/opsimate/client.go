// Package opsimate is a small client for the Opsimate management API. Every
// endpoint answers with an envelope of the form
// {"success": bool, "message": string, "data": any}.
package opsimate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mensylisir/opsagent/pkg/common"
	"github.com/mensylisir/opsagent/pkg/logger"
)

// API is the set of remote calls the builtin capabilities make.
type API interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*Response, error)
	ListUsers(ctx context.Context) (*Response, error)
	ChangeRole(ctx context.Context, req ChangeRoleRequest) (*Response, error)
	CreateSecret(ctx context.Context, req CreateSecretRequest) (*Response, error)
	CreateProvider(ctx context.Context, req CreateProviderRequest) (*Response, error)
}

type CreateUserRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type ChangeRoleRequest struct {
	Email   string `json:"email"`
	NewRole string `json:"newRole"`
}

// CreateSecretRequest uploads FilePath as multipart form data when it is set,
// otherwise Content is sent inline as the secret_file JSON field.
type CreateSecretRequest struct {
	DisplayName string `json:"displayName"`
	SecretType  string `json:"secretType"`
	Content     string `json:"secret_file"`
	FilePath    string `json:"-"`
}

type CreateProviderRequest struct {
	Name         string `json:"name"`
	ProviderType string `json:"providerType"`
	SecretID     int64  `json:"secretId"`
}

// Response is a decoded envelope. Body holds the whole decoded document; a
// body that is not JSON is kept as {"success": false, "raw": "<text>"}.
type Response struct {
	StatusCode int
	Success    bool
	Message    string
	Data       interface{}
	Body       map[string]interface{}
	Raw        []byte
}

// APIError is returned when the API answers with a non-2xx status, a
// success=false envelope or a body that is not an envelope at all.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	detail := strings.TrimSpace(string(e.Body))
	if e.Message != "" {
		detail = e.Message
	}
	if detail == "" {
		detail = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("opsimate API returned HTTP %d: %s", e.StatusCode, detail)
}

type ClientOptions struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logger.Logger
}

// Client talks to one configured Opsimate endpoint.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *logger.Logger
}

var _ API = (*Client)(nil)

func NewClient(opts ClientOptions) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = common.DefaultAPITimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	log := opts.Logger
	if log == nil {
		log = logger.Get()
	}
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	base = strings.TrimRight(strings.TrimSuffix(base, common.LegacyUsersSuffix), "/")
	return &Client{
		baseURL:    base,
		token:      opts.Token,
		httpClient: httpClient,
		log:        log.With("component", "opsimate"),
	}
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*Response, error) {
	return c.doJSON(ctx, http.MethodPost, common.APIPathUsers, req)
}

func (c *Client) ListUsers(ctx context.Context) (*Response, error) {
	return c.doJSON(ctx, http.MethodGet, common.APIPathUsers, nil)
}

func (c *Client) ChangeRole(ctx context.Context, req ChangeRoleRequest) (*Response, error) {
	return c.doJSON(ctx, http.MethodPatch, common.APIPathUserRole, req)
}

func (c *Client) CreateSecret(ctx context.Context, req CreateSecretRequest) (*Response, error) {
	if req.FilePath == "" {
		return c.doJSON(ctx, http.MethodPost, common.APIPathSecrets, req)
	}

	body, contentType, err := secretForm(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := c.newRequest(ctx, http.MethodPost, common.APIPathSecrets, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", contentType)
	return c.do(httpReq)
}

func (c *Client) CreateProvider(ctx context.Context, req CreateProviderRequest) (*Response, error) {
	return c.doJSON(ctx, http.MethodPost, common.APIPathProviders, req)
}

func secretForm(req CreateSecretRequest) (io.Reader, string, error) {
	f, err := os.Open(req.FilePath)
	if err != nil {
		return nil, "", errors.Wrapf(err, "failed to open secret file '%s'", req.FilePath)
	}
	defer f.Close()

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	if err := w.WriteField("displayName", req.DisplayName); err != nil {
		return nil, "", errors.Wrap(err, "failed to write form field displayName")
	}
	if err := w.WriteField("secretType", req.SecretType); err != nil {
		return nil, "", errors.Wrap(err, "failed to write form field secretType")
	}
	part, err := w.CreateFormFile("secret_file", filepath.Base(req.FilePath))
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to create form file part")
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", errors.Wrapf(err, "failed to read secret file '%s'", req.FilePath)
	}
	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "failed to finish multipart body")
	}
	return buf, w.FormDataContentType(), nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload interface{}) (*Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal request body")
		}
		body = bytes.NewReader(data)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build %s %s request", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (*Response, error) {
	start := time.Now()
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s failed", req.Method, req.URL.Path)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read response of %s %s", req.Method, req.URL.Path)
	}
	c.log.Debugf("%s %s -> %d (%s)", req.Method, req.URL.Path, httpResp.StatusCode, time.Since(start).Round(time.Millisecond))

	resp := decodeEnvelope(httpResp.StatusCode, raw)
	ok := httpResp.StatusCode >= 200 && httpResp.StatusCode < 300
	if !ok || !resp.Success {
		return resp, &APIError{StatusCode: httpResp.StatusCode, Message: resp.Message, Body: raw}
	}
	return resp, nil
}

func decodeEnvelope(status int, raw []byte) *Response {
	resp := &Response{StatusCode: status, Raw: raw}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body map[string]interface{}
	if err := dec.Decode(&body); err != nil || body == nil {
		resp.Body = map[string]interface{}{"success": false, "raw": string(raw)}
		return resp
	}
	resp.Body = body
	if v, ok := body["success"].(bool); ok {
		resp.Success = v
	}
	if v, ok := body["message"].(string); ok {
		resp.Message = v
	}
	resp.Data = body["data"]
	return resp
}
