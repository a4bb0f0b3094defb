package capability

import (
	"fmt"

	"github.com/mensylisir/opsagent/pkg/opsimate"
	"github.com/mensylisir/opsagent/pkg/plan"
	"github.com/mensylisir/opsagent/pkg/util"
)

// remoteFailure turns a failed API call into a failed Outcome. The envelope,
// when there is one, becomes the payload so the report shows what the API said.
func remoteFailure(verb string, resp *opsimate.Response, err error) plan.Outcome {
	return plan.Failed(fmt.Sprintf("failed to %s: %v", verb, err), payload(resp))
}

// payload returns the decoded envelope used as Outcome data.
func payload(resp *opsimate.Response) interface{} {
	if resp == nil || resp.Body == nil {
		return nil
	}
	return resp.Body
}

// dataString reads a string field of the envelope's data object.
func dataString(resp *opsimate.Response, path, fallback string) string {
	if resp == nil {
		return fallback
	}
	v, ok := util.GetJsonValue(util.ToJSON(resp.Data), path)
	if !ok {
		return fallback
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return fallback
	}
	return s
}
