package capability

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/mensylisir/opsagent/pkg/common"
	"github.com/mensylisir/opsagent/pkg/opsimate"
	"github.com/mensylisir/opsagent/pkg/plan"
	"github.com/mensylisir/opsagent/pkg/util"
)

type createUser struct {
	api opsimate.API
}

func (c *createUser) Name() Name { return CreateUser }

func (c *createUser) Description() string {
	return "Create a user account with the given role."
}

func (c *createUser) Params() []Param {
	return []Param{
		{Name: "email", Type: TypeString, Required: true, Description: "login email address"},
		{Name: "fullName", Type: TypeString, Required: true, Description: "display name"},
		{Name: "password", Type: TypeString, Required: true, Description: "initial password"},
		{Name: "role", Type: TypeString, Required: true, Description: "role such as admin, editor or viewer"},
	}
}

func (c *createUser) Export() Export { return idExport(common.ContextKeyLastUserID) }

func (c *createUser) Invoke(ctx context.Context, args plan.Arguments) plan.Outcome {
	v, err := Bind(c.Name(), c.Params(), args, false)
	if err != nil {
		return plan.Failed(err.Error(), nil)
	}
	if !util.IsValidEmail(v.String("email")) {
		return plan.Failedf("invalid arguments for %s: '%s' is not a valid email address", c.Name(), v.String("email"))
	}

	resp, err := c.api.CreateUser(ctx, opsimate.CreateUserRequest{
		Email:    v.String("email"),
		FullName: v.String("fullName"),
		Password: v.String("password"),
		Role:     v.String("role"),
	})
	if err != nil {
		return remoteFailure("create user", resp, err)
	}
	name := dataString(resp, "fullName", v.String("fullName"))
	role := dataString(resp, "role", v.String("role"))
	return plan.Succeeded(fmt.Sprintf("User '%s' created successfully with role '%s'.", name, role), payload(resp))
}

type getAllUsers struct {
	api opsimate.API
}

func (c *getAllUsers) Name() Name { return GetAllUsers }

func (c *getAllUsers) Description() string { return "List every user with email and role." }

func (c *getAllUsers) Params() []Param { return nil }

func (c *getAllUsers) Invoke(ctx context.Context, args plan.Arguments) plan.Outcome {
	if _, err := Bind(c.Name(), c.Params(), args, false); err != nil {
		return plan.Failed(err.Error(), nil)
	}
	resp, err := c.api.ListUsers(ctx)
	if err != nil {
		return remoteFailure("fetch users", resp, err)
	}

	users := gjson.ParseBytes(util.ToJSON(resp.Data))
	if !users.IsArray() {
		return plan.Failed(fmt.Sprintf("failed to fetch users: expected a list of users, got %s", users.Type), payload(resp))
	}
	lines := []string{"All users:"}
	users.ForEach(func(_, u gjson.Result) bool {
		lines = append(lines, fmt.Sprintf("- %s (%s) — %s", u.Get("fullName").String(), u.Get("email").String(), u.Get("role").String()))
		return true
	})
	if len(lines) == 1 {
		lines = append(lines, "(none)")
	}
	return plan.Succeeded(strings.Join(lines, "\n"), payload(resp))
}

type changeRole struct {
	api opsimate.API
}

func (c *changeRole) Name() Name { return ChangeRole }

func (c *changeRole) Description() string { return "Change the role of an existing user." }

func (c *changeRole) Params() []Param {
	return []Param{
		{Name: "email", Type: TypeString, Required: true, Description: "email of the user to update"},
		{Name: "newRole", Type: TypeString, Required: true, Description: "role to assign"},
	}
}

func (c *changeRole) Invoke(ctx context.Context, args plan.Arguments) plan.Outcome {
	v, err := Bind(c.Name(), c.Params(), args, false)
	if err != nil {
		return plan.Failed(err.Error(), nil)
	}
	resp, err := c.api.ChangeRole(ctx, opsimate.ChangeRoleRequest{Email: v.String("email"), NewRole: v.String("newRole")})
	if err != nil {
		return remoteFailure("change role", resp, err)
	}
	msg := resp.Message
	if msg == "" {
		msg = "User role updated successfully"
	}
	return plan.Succeeded(fmt.Sprintf("%s for '%s' to '%s'.", msg, v.String("email"), v.String("newRole")), payload(resp))
}
