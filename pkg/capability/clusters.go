package capability

import (
	"context"
	"fmt"

	"github.com/mensylisir/opsagent/pkg/common"
	"github.com/mensylisir/opsagent/pkg/opsimate"
	"github.com/mensylisir/opsagent/pkg/plan"
)

type createCluster struct {
	api opsimate.API
}

func (c *createCluster) Name() Name { return CreateCluster }

func (c *createCluster) Description() string {
	return "Register a cluster provider backed by an existing secret."
}

func (c *createCluster) Params() []Param {
	return []Param{
		{Name: "name", Type: TypeString, Required: true, Description: "cluster name"},
		{Name: "providerType", Type: TypeString, Required: true, Description: "provider kind, e.g. k8s"},
		{Name: "secretId", Type: TypeInteger, Required: true, Description: "secret id, or \"{{" + common.ContextKeyLastSecretID + "}}\""},
	}
}

func (c *createCluster) Export() Export { return idExport(common.ContextKeyLastClusterID) }

func (c *createCluster) Invoke(ctx context.Context, args plan.Arguments) plan.Outcome {
	v, err := Bind(c.Name(), c.Params(), args, true)
	if err != nil {
		return plan.Failed(err.Error(), nil)
	}
	resp, err := c.api.CreateProvider(ctx, opsimate.CreateProviderRequest{
		Name:         v.String("name"),
		ProviderType: v.String("providerType"),
		SecretID:     v.Int("secretId"),
	})
	if err != nil {
		return remoteFailure("create cluster", resp, err)
	}
	return plan.Succeeded(fmt.Sprintf("Cluster '%s' created using secret ID %d.", v.String("name"), v.Int("secretId")), payload(resp))
}
