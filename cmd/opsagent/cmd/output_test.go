package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensylisir/opsagent/pkg/capability"
	"github.com/mensylisir/opsagent/pkg/plan"
)

func sampleReport() *plan.Report {
	r := plan.NewReport("run-1")
	r.Append(plan.StepResult{Step: 1, Action: "create_secret", Result: plan.Succeeded("Secret 'prod' created.", nil)})
	r.Append(plan.StepResult{Step: 2, Action: "create_cluster", Result: plan.Failedf("failed to create cluster: boom")})
	r.Finalize(map[string]interface{}{"last_secret_id": int64(42)})
	return r
}

func TestValidateOutput(t *testing.T) {
	for _, f := range []string{"json", "yaml", "table"} {
		assert.NoError(t, validateOutput(f))
	}
	assert.Error(t, validateOutput("xml"))
}

func TestWriteReportTable(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, sampleReport(), outputTable))

	out := buf.String()
	assert.Contains(t, out, "create_secret")
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "Run run-1: PartiallyFailed (1/2 steps succeeded)")
	assert.Contains(t, out, "last_secret_id = 42")
}

func TestWriteReportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, sampleReport(), outputJSON))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "PartiallyFailed", decoded["status"])
	assert.Len(t, decoded["steps"], 2)
}

func TestWriteReportYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, sampleReport(), outputYAML))
	assert.Contains(t, buf.String(), "runId: run-1")
}

func TestWriteCapabilitiesTable(t *testing.T) {
	var buf bytes.Buffer
	writeCapabilitiesTable(&buf, []capability.Descriptor{{
		Name:        capability.CreateCluster,
		Description: "Create a cluster",
		Params: []capability.Param{
			{Name: "name", Type: capability.TypeString, Required: true},
			{Name: "secretId", Type: capability.TypeInteger, Required: true},
			{Name: "description", Type: capability.TypeString},
		},
		ExportKey: "last_cluster_id",
	}})
	out := buf.String()
	assert.Contains(t, out, "secretId:int")
	assert.Contains(t, out, "description?")
	assert.Contains(t, out, "last_cluster_id")
}

func TestReadPlanFromStdin(t *testing.T) {
	data, err := readPlan(strings.NewReader(`{"steps":[]}`), "-")
	require.NoError(t, err)
	assert.Equal(t, `{"steps":[]}`, string(data))

	_, err = readPlan(nil, "/nonexistent/plan.json")
	assert.Error(t, err)
}

func TestReportError(t *testing.T) {
	assert.Error(t, reportError(sampleReport()))

	ok := plan.NewReport("run-2")
	ok.Finalize(nil)
	assert.NoError(t, reportError(ok))
}
