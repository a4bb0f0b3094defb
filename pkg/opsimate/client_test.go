package opsimate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensylisir/opsagent/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, baseSuffix string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(ClientOptions{
		BaseURL: srv.URL + "/api/v1" + baseSuffix,
		Token:   "tok",
		Timeout: 5 * time.Second,
		Logger:  logger.NewNop(),
	})
}

func TestNewClient_NormalizesBaseURL(t *testing.T) {
	for _, in := range []string{
		"http://h:3001/api/v1",
		"http://h:3001/api/v1/",
		"http://h:3001/api/v1/users",
		"http://h:3001/api/v1/users/",
	} {
		c := NewClient(ClientOptions{BaseURL: in, Logger: logger.NewNop()})
		assert.Equal(t, "http://h:3001/api/v1", c.BaseURL(), "input %q", in)
	}
}

func TestClient_CreateUser(t *testing.T) {
	var got CreateUserRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/users", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"success":true,"data":{"id":7,"fullName":"Ann Lee","role":"admin"}}`)
	}, "/users")

	resp, err := c.CreateUser(context.Background(), CreateUserRequest{
		Email: "ann@example.com", FullName: "Ann Lee", Password: "pw", Role: "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", got.Email)
	assert.True(t, resp.Success)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, json.Number("7"), data["id"])
}

func TestClient_ListUsersAndChangeRole(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/users":
			_, _ = io.WriteString(w, `{"success":true,"data":[]}`)
		case r.Method == http.MethodPatch && r.URL.Path == "/api/v1/users/role":
			var req ChangeRoleRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "viewer", req.NewRole)
			_, _ = io.WriteString(w, `{"success":true,"message":"User role updated"}`)
		default:
			http.NotFound(w, r)
		}
	}, "")

	resp, err := c.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []interface{}{}, resp.Data)

	resp, err = c.ChangeRole(context.Background(), ChangeRoleRequest{Email: "a@b.io", NewRole: "viewer"})
	require.NoError(t, err)
	assert.Equal(t, "User role updated", resp.Message)
}

func TestClient_EnvelopeFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":false,"message":"email already exists"}`)
	}, "")

	resp, err := c.CreateUser(context.Background(), CreateUserRequest{})
	require.Error(t, err)
	require.NotNil(t, resp)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusOK, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "email already exists")
	assert.Equal(t, false, resp.Body["success"])
}

func TestClient_NonJSONBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream down")
	}, "")

	resp, err := c.CreateProvider(context.Background(), CreateProviderRequest{Name: "c1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
	assert.Contains(t, err.Error(), "upstream down")
	assert.Equal(t, "upstream down", resp.Body["raw"])
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(ClientOptions{BaseURL: url, Logger: logger.NewNop()})
	resp, err := c.ListUsers(context.Background())
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "GET /users failed")
}

func TestClient_CreateSecretInline(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/secrets", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "k1", body["displayName"])
		assert.Equal(t, "kubeconfig", body["secretType"])
		assert.Equal(t, "abc", body["secret_file"])
		_, _ = io.WriteString(w, `{"success":true,"data":{"secrets":[{"id":42}]}}`)
	}, "")

	resp, err := c.CreateSecret(context.Background(), CreateSecretRequest{
		DisplayName: "k1", SecretType: "kubeconfig", Content: "abc",
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestClient_CreateSecretMultipart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kubeconfig.yaml")
	require.NoError(t, os.WriteFile(path, []byte("apiVersion: v1\n"), 0o600))

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "k1", r.FormValue("displayName"))
		assert.Equal(t, "kubeconfig", r.FormValue("secretType"))
		f, hdr, err := r.FormFile("secret_file")
		require.NoError(t, err)
		defer f.Close()
		content, _ := io.ReadAll(f)
		assert.Equal(t, "kubeconfig.yaml", hdr.Filename)
		assert.Equal(t, "apiVersion: v1\n", string(content))
		_, _ = io.WriteString(w, `{"success":true,"data":{"id":5}}`)
	}, "")

	resp, err := c.CreateSecret(context.Background(), CreateSecretRequest{
		DisplayName: "k1", SecretType: "kubeconfig", FilePath: path,
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestClient_CreateSecretMissingFile(t *testing.T) {
	c := NewClient(ClientOptions{BaseURL: "http://127.0.0.1:1", Logger: logger.NewNop()})
	_, err := c.CreateSecret(context.Background(), CreateSecretRequest{FilePath: "/nonexistent/secret"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open secret file")
}

func TestAPIError_Message(t *testing.T) {
	assert.Equal(t, "opsimate API returned HTTP 404: Not Found", (&APIError{StatusCode: 404}).Error())
	assert.Equal(t, "opsimate API returned HTTP 400: {}", (&APIError{StatusCode: 400, Body: []byte(" {} ")}).Error())
	assert.Equal(t, "opsimate API returned HTTP 400: bad", (&APIError{StatusCode: 400, Message: "bad", Body: []byte("{}")}).Error())
}
