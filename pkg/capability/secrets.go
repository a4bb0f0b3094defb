package capability

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/mensylisir/opsagent/pkg/common"
	"github.com/mensylisir/opsagent/pkg/logger"
	"github.com/mensylisir/opsagent/pkg/opsimate"
	"github.com/mensylisir/opsagent/pkg/plan"
	"github.com/mensylisir/opsagent/pkg/util"
)

type createSecret struct {
	api                opsimate.API
	validateKubeconfig bool
	log                *logger.Logger
}

func (c *createSecret) Name() Name { return CreateSecret }

func (c *createSecret) Description() string {
	return "Store a credential. secret_file is an absolute path to a local file, which is uploaded, or the raw secret content."
}

func (c *createSecret) Params() []Param {
	return []Param{
		{Name: "displayName", Type: TypeString, Required: true, Description: "name shown in the UI"},
		{Name: "secretType", Type: TypeString, Required: true, Description: "kubeconfig or ssh"},
		{Name: "secret_file", Type: TypeString, Description: "local file path or raw content"},
	}
}

func (c *createSecret) Export() Export { return idExport(common.ContextKeyLastSecretID) }

func (c *createSecret) Invoke(ctx context.Context, args plan.Arguments) plan.Outcome {
	v, err := Bind(c.Name(), c.Params(), args, true)
	if err != nil {
		return plan.Failed(err.Error(), nil)
	}

	req := opsimate.CreateSecretRequest{
		DisplayName: v.String("displayName"),
		SecretType:  v.String("secretType"),
	}
	source := v.String("secret_file")
	if source != "" && util.IsRegularFile(source) {
		req.FilePath = source
		c.log.Debugf("uploading secret '%s' from file %s", req.DisplayName, source)
	} else {
		req.Content = source
	}

	if c.validateKubeconfig && req.SecretType == common.SecretTypeKubeconfig {
		if err := checkKubeconfig(req); err != nil {
			return plan.Failedf("invalid kubeconfig for secret '%s': %v", req.DisplayName, err)
		}
	}

	resp, err := c.api.CreateSecret(ctx, req)
	if err != nil {
		return remoteFailure("create secret", resp, err)
	}
	return plan.Succeeded(fmt.Sprintf("Secret '%s' created.", req.DisplayName), payload(resp))
}

func checkKubeconfig(req opsimate.CreateSecretRequest) error {
	content := []byte(req.Content)
	if req.FilePath != "" {
		data, err := os.ReadFile(req.FilePath)
		if err != nil {
			return errors.Wrapf(err, "failed to read '%s'", req.FilePath)
		}
		content = data
	}
	cfg, err := clientcmd.Load(content)
	if err != nil {
		return err
	}
	if len(cfg.Clusters) == 0 {
		return errors.New("no clusters defined")
	}
	return nil
}
