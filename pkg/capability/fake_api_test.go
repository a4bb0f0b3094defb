package capability

import (
	"context"
	"encoding/json"

	"github.com/mensylisir/opsagent/pkg/opsimate"
)

// fakeAPI records requests and answers with canned envelopes.
type fakeAPI struct {
	envelope string
	err      error

	users     []opsimate.CreateUserRequest
	roles     []opsimate.ChangeRoleRequest
	secrets   []opsimate.CreateSecretRequest
	providers []opsimate.CreateProviderRequest
	lists     int
}

func (f *fakeAPI) reply() (*opsimate.Response, error) {
	resp := &opsimate.Response{StatusCode: 200, Raw: []byte(f.envelope)}
	body := map[string]interface{}{}
	if f.envelope != "" {
		if err := json.Unmarshal([]byte(f.envelope), &body); err != nil {
			panic(err)
		}
	}
	resp.Body = body
	resp.Success, _ = body["success"].(bool)
	resp.Message, _ = body["message"].(string)
	resp.Data = body["data"]
	if f.err != nil {
		return resp, f.err
	}
	return resp, nil
}

func (f *fakeAPI) CreateUser(_ context.Context, req opsimate.CreateUserRequest) (*opsimate.Response, error) {
	f.users = append(f.users, req)
	return f.reply()
}

func (f *fakeAPI) ListUsers(context.Context) (*opsimate.Response, error) {
	f.lists++
	return f.reply()
}

func (f *fakeAPI) ChangeRole(_ context.Context, req opsimate.ChangeRoleRequest) (*opsimate.Response, error) {
	f.roles = append(f.roles, req)
	return f.reply()
}

func (f *fakeAPI) CreateSecret(_ context.Context, req opsimate.CreateSecretRequest) (*opsimate.Response, error) {
	f.secrets = append(f.secrets, req)
	return f.reply()
}

func (f *fakeAPI) CreateProvider(_ context.Context, req opsimate.CreateProviderRequest) (*opsimate.Response, error) {
	f.providers = append(f.providers, req)
	return f.reply()
}
