package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"

	"github.com/pkg/errors"
)

// ErrMalformedPlan is returned (wrapped) by ParseDocument when the planner
// output cannot be read as a step list.
var ErrMalformedPlan = errors.New("malformed plan document")

// Arguments is the argument bag of a step. A value is either a JSON literal or
// a "{{identifier}}" placeholder string.
type Arguments map[string]interface{}

// Clone returns a shallow copy. A nil receiver yields an empty, non-nil map.
func (a Arguments) Clone() Arguments {
	out := make(Arguments, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Step is one entry of a plan. Steps are produced by the planner and only read
// afterwards.
type Step struct {
	// Ordinal is the 1-based position in the plan.
	Ordinal   int       `json:"-"`
	Function  string    `json:"function"`
	Arguments Arguments `json:"arguments"`
}

// Document is the parsed form of {"steps":[{"function":...,"arguments":{...}}]}.
type Document struct {
	Steps []Step `json:"steps"`
}

// Len returns the number of steps.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Steps)
}

// planners like to wrap JSON in a markdown fence
var codeFenceRE = regexp.MustCompile("(?s)^```(?:json|JSON)?\\s*(.*?)\\s*```$")

// ParseDocument reads raw planner output into a Document. The root must be a
// JSON object; a missing or null "steps" is an empty plan. Ordinals are
// assigned in document order starting at 1.
func ParseDocument(raw []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(raw)
	if m := codeFenceRE.FindSubmatch(trimmed); len(m) > 1 {
		trimmed = bytes.TrimSpace(m[1])
	}
	if len(trimmed) == 0 {
		return nil, errors.Wrap(ErrMalformedPlan, "document is empty")
	}
	if trimmed[0] != '{' {
		return nil, errors.Wrap(ErrMalformedPlan, "root is not a JSON object")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var root map[string]interface{}
	if err := dec.Decode(&root); err != nil {
		return nil, errors.Wrapf(ErrMalformedPlan, "invalid JSON: %v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.Wrap(ErrMalformedPlan, "unexpected data after the JSON object")
	}

	doc := &Document{Steps: []Step{}}
	rawSteps, ok := root["steps"]
	if !ok || rawSteps == nil {
		return doc, nil
	}
	list, ok := rawSteps.([]interface{})
	if !ok {
		return nil, errors.Wrapf(ErrMalformedPlan, "\"steps\" must be an array, got %s", jsonKind(rawSteps))
	}

	for i, item := range list {
		ordinal := i + 1
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, errors.Wrapf(ErrMalformedPlan, "step %d must be an object, got %s", ordinal, jsonKind(item))
		}
		step := Step{Ordinal: ordinal, Function: functionName(obj["function"]), Arguments: Arguments{}}
		switch args := obj["arguments"].(type) {
		case nil:
		case map[string]interface{}:
			step.Arguments = Arguments(args)
		default:
			return nil, errors.Wrapf(ErrMalformedPlan, "step %d: \"arguments\" must be an object, got %s", ordinal, jsonKind(args))
		}
		doc.Steps = append(doc.Steps, step)
	}
	return doc, nil
}

// functionName tolerates a missing or non-string "function"; such steps end up
// as unknown capabilities rather than a malformed plan.
func functionName(v interface{}) string {
	switch fn := v.(type) {
	case nil:
		return ""
	case string:
		return fn
	default:
		return fmt.Sprint(fn)
	}
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	case string:
		return "string"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
