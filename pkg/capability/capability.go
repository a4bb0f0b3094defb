// Package capability holds the closed set of operations a plan step may name,
// their argument contracts and the values they export into the execution
// context.
package capability

import (
	"context"

	"github.com/mensylisir/opsagent/pkg/common"
	"github.com/mensylisir/opsagent/pkg/plan"
)

// Name identifies a capability. Only the constants below are ever registered.
type Name string

const (
	CreateUser    Name = common.CapabilityCreateUser
	GetAllUsers   Name = common.CapabilityGetAllUsers
	ChangeRole    Name = common.CapabilityChangeRole
	CreateSecret  Name = common.CapabilityCreateSecret
	CreateCluster Name = common.CapabilityCreateCluster
)

// Names lists every builtin capability in registration order.
func Names() []Name {
	return []Name{CreateUser, GetAllUsers, ChangeRole, CreateSecret, CreateCluster}
}

// ParamType is the accepted shape of an argument value.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInteger ParamType = "integer"
)

// Param declares one named argument.
type Param struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Required    bool      `json:"required"`
	Description string    `json:"description,omitempty"`
}

// Capability is an invocable operation with a declared argument contract.
//
// Invoke never returns an error: every failure, from argument binding to a
// rejected remote call, comes back as a failed Outcome with a message.
type Capability interface {
	Name() Name
	Description() string
	Params() []Param
	Invoke(ctx context.Context, args plan.Arguments) plan.Outcome
}

// Exporter is implemented by capabilities whose successful payload carries an
// identifier worth binding into the execution context.
type Exporter interface {
	Export() Export
}

// Descriptor is the serializable summary of a capability.
type Descriptor struct {
	Name        Name    `json:"name"`
	Description string  `json:"description"`
	Params      []Param `json:"params"`
	ExportKey   string  `json:"exportKey,omitempty"`
}

// Describe summarizes c.
func Describe(c Capability) Descriptor {
	d := Descriptor{
		Name:        c.Name(),
		Description: c.Description(),
		Params:      append([]Param{}, c.Params()...),
	}
	if e, ok := c.(Exporter); ok {
		d.ExportKey = e.Export().Key
	}
	return d
}
