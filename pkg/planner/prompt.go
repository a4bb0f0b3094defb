package planner

import (
	"github.com/mensylisir/opsagent/pkg/capability"
	"github.com/mensylisir/opsagent/pkg/common"
	"github.com/mensylisir/opsagent/pkg/util"
)

const systemPromptTemplate = `You are an AI ops agent that performs multi-step administrative actions using the functions below.
Respond ONLY with JSON, no prose and no markdown:

{"steps": [{"function": "<function_name>", "arguments": {...}}, ...]}

Supported functions and their arguments:
{{- range .Functions }}
- {{ .Name }}({{ join ", " .Args }}){{ if .Description }}: {{ .Description }}{{ end }}
{{- if .Placeholder }}
  On success a later step may pass "{{ .Placeholder }}" in place of the new id.
{{- end }}
{{- end }}

Optional arguments are marked with "?". Steps run in order and every step is attempted.
If you cannot map the request to these functions, return {"steps":[{"function":"{{ .None }}"}]}
`

type promptFunction struct {
	Name        string
	Args        []string
	Description string
	Placeholder string
}

// RenderSystemPrompt builds the planner's system prompt from the capability
// contracts, so the prompt never drifts from the registry.
func RenderSystemPrompt(descriptors []capability.Descriptor) (string, error) {
	funcs := make([]promptFunction, 0, len(descriptors))
	for _, d := range descriptors {
		pf := promptFunction{Name: string(d.Name), Description: d.Description, Args: []string{}}
		for _, p := range d.Params {
			arg := p.Name
			if !p.Required {
				arg += "?"
			}
			if p.Type == capability.TypeInteger {
				arg += ": integer"
			}
			pf.Args = append(pf.Args, arg)
		}
		if d.ExportKey != "" {
			pf.Placeholder = "{{" + d.ExportKey + "}}"
		}
		funcs = append(funcs, pf)
	}
	return util.RenderTemplate(systemPromptTemplate, map[string]interface{}{
		"Functions": funcs,
		"None":      common.CapabilityNone,
	})
}
