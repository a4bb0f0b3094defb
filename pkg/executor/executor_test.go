package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensylisir/opsagent/pkg/cache"
	"github.com/mensylisir/opsagent/pkg/capability"
	"github.com/mensylisir/opsagent/pkg/logger"
	"github.com/mensylisir/opsagent/pkg/plan"
)

type stubCapability struct {
	name   capability.Name
	export *capability.Export
	fn     func(args plan.Arguments) plan.Outcome
	calls  []plan.Arguments
}

func (s *stubCapability) Name() capability.Name      { return s.name }
func (s *stubCapability) Description() string        { return "stub" }
func (s *stubCapability) Params() []capability.Param { return nil }
func (s *stubCapability) Invoke(_ context.Context, args plan.Arguments) plan.Outcome {
	s.calls = append(s.calls, args)
	return s.fn(args)
}

type exportingStub struct {
	*stubCapability
}

func (s exportingStub) Export() capability.Export { return *s.export }

func newExecutor(t *testing.T, caps ...capability.Capability) *Executor {
	t.Helper()
	ex, err := NewExecutor(ExecutorOptions{Logger: logger.NewNop(), Registry: capability.NewRegistry(caps...)})
	require.NoError(t, err)
	return ex
}

func secretStub(id interface{}) *stubCapability {
	return &stubCapability{
		name:   "make_secret",
		export: &capability.Export{Key: "last_secret_id", Extractors: capability.IDExtractors},
		fn: func(plan.Arguments) plan.Outcome {
			return plan.Succeeded("created", map[string]interface{}{"success": true, "data": map[string]interface{}{"id": id}})
		},
	}
}

func TestNewExecutor_RequiresRegistry(t *testing.T) {
	_, err := NewExecutor(ExecutorOptions{Logger: logger.NewNop()})
	require.Error(t, err)
}

func TestExecute_UnknownFunction(t *testing.T) {
	ex := newExecutor(t)
	store := cache.New()
	store.Set("last_secret_id", int64(1))

	step := plan.Step{Ordinal: 2, Function: "none", Arguments: plan.Arguments{"x": "{{last_secret_id}}"}}
	res, delta := ex.Execute(context.Background(), step, store)

	assert.Equal(t, 2, res.Step)
	assert.Equal(t, "none", res.Action)
	assert.False(t, res.Result.OK)
	assert.Equal(t, "unknown function 'none'", res.Result.Message)
	assert.Equal(t, plan.Arguments{"x": "{{last_secret_id}}"}, res.Args, "unknown steps are not resolved")
	assert.Empty(t, delta)
	assert.False(t, res.EndTime.Before(res.StartTime))
}

func TestExecute_SuccessExports(t *testing.T) {
	stub := secretStub(42)
	ex := newExecutor(t, exportingStub{stub})

	res, delta := ex.Execute(context.Background(), plan.Step{Ordinal: 1, Function: "make_secret"}, cache.New())
	require.True(t, res.Result.OK)
	assert.Equal(t, plan.Delta{"last_secret_id": int64(42)}, delta)
	assert.Equal(t, plan.Arguments{}, res.Args)
	require.Len(t, stub.calls, 1)
}

func TestExecute_FailureExportsNothing(t *testing.T) {
	stub := &stubCapability{
		name:   "make_secret",
		export: &capability.Export{Key: "last_secret_id", Extractors: capability.IDExtractors},
		fn: func(plan.Arguments) plan.Outcome {
			o := plan.Failed("rejected", map[string]interface{}{"id": 9})
			o.Exports = map[string]interface{}{"sneaky": 1}
			return o
		},
	}
	ex := newExecutor(t, exportingStub{stub})

	res, delta := ex.Execute(context.Background(), plan.Step{Ordinal: 1, Function: "make_secret"}, cache.New())
	assert.False(t, res.Result.OK)
	assert.Empty(t, delta)
	assert.Nil(t, res.Result.Exports)
}

func TestExecute_ExplicitExportsMerged(t *testing.T) {
	stub := &stubCapability{name: "tag", fn: func(plan.Arguments) plan.Outcome {
		o := plan.Succeeded("ok", nil)
		o.Exports = map[string]interface{}{"tag": "v1"}
		return o
	}}
	ex := newExecutor(t, stub)
	_, delta := ex.Execute(context.Background(), plan.Step{Ordinal: 1, Function: "tag"}, cache.New())
	assert.Equal(t, plan.Delta{"tag": "v1"}, delta)
}

func TestExecute_ExplicitExportWinsOverExtraction(t *testing.T) {
	stub := &stubCapability{
		name:   "make_secret",
		export: &capability.Export{Key: "last_secret_id", Extractors: capability.IDExtractors},
		fn: func(plan.Arguments) plan.Outcome {
			o := plan.Succeeded("created", map[string]interface{}{"id": 1})
			o.Exports = map[string]interface{}{"last_secret_id": int64(2)}
			return o
		},
	}
	ex := newExecutor(t, exportingStub{stub})
	_, delta := ex.Execute(context.Background(), plan.Step{Ordinal: 1, Function: "make_secret"}, cache.New())
	assert.Equal(t, plan.Delta{"last_secret_id": int64(2)}, delta)
}

func TestExecute_ExtractionMissIsSilent(t *testing.T) {
	stub := &stubCapability{
		name:   "make_secret",
		export: &capability.Export{Key: "last_secret_id", Extractors: capability.IDExtractors},
		fn: func(plan.Arguments) plan.Outcome {
			return plan.Succeeded("created", map[string]interface{}{"name": "x"})
		},
	}
	ex := newExecutor(t, exportingStub{stub})
	res, delta := ex.Execute(context.Background(), plan.Step{Ordinal: 1, Function: "make_secret"}, cache.New())
	assert.True(t, res.Result.OK)
	assert.Empty(t, delta)
}

func TestExecute_ResolvesPlaceholders(t *testing.T) {
	stub := &stubCapability{name: "use", fn: func(args plan.Arguments) plan.Outcome { return plan.Succeeded("ok", nil) }}
	ex := newExecutor(t, stub)

	store := cache.New()
	store.Set("last_secret_id", int64(42))
	step := plan.Step{Ordinal: 1, Function: "use", Arguments: plan.Arguments{
		"secretId": "{{ last_secret_id }}",
		"other":    "{{last_cluster_id}}",
		"path":     "/etc/hosts",
	}}
	res, _ := ex.Execute(context.Background(), step, store)

	want := plan.Arguments{"secretId": int64(42), "other": "{{last_cluster_id}}", "path": "/etc/hosts"}
	assert.Equal(t, want, res.Args)
	require.Len(t, stub.calls, 1)
	assert.Equal(t, want, stub.calls[0])
	assert.Equal(t, "{{ last_secret_id }}", step.Arguments["secretId"], "the step is never mutated")
}

func TestExecute_CapabilityMutationDoesNotLeakIntoReport(t *testing.T) {
	stub := &stubCapability{name: "mut", fn: func(args plan.Arguments) plan.Outcome {
		args["injected"] = true
		return plan.Succeeded("ok", nil)
	}}
	ex := newExecutor(t, stub)
	res, _ := ex.Execute(context.Background(), plan.Step{Ordinal: 1, Function: "mut", Arguments: plan.Arguments{"a": 1}}, cache.New())
	assert.Equal(t, plan.Arguments{"a": 1}, res.Args)
}

func TestExecute_RecoversPanics(t *testing.T) {
	stub := &stubCapability{name: "boom", fn: func(plan.Arguments) plan.Outcome { panic("nil map write") }}
	ex := newExecutor(t, stub)

	res, delta := ex.Execute(context.Background(), plan.Step{Ordinal: 3, Function: "boom"}, cache.New())
	assert.False(t, res.Result.OK)
	assert.Equal(t, "exception calling boom: nil map write", res.Result.Message)
	assert.Empty(t, delta)
}

func TestExecute_EmptyFailureMessageFilled(t *testing.T) {
	stub := &stubCapability{name: "quiet", fn: func(plan.Arguments) plan.Outcome { return plan.Outcome{} }}
	ex := newExecutor(t, stub)
	res, _ := ex.Execute(context.Background(), plan.Step{Ordinal: 1, Function: "quiet"}, nil)
	assert.False(t, res.Result.OK)
	assert.Equal(t, "quiet failed without a message", res.Result.Message)
}

func TestRedactedArgs(t *testing.T) {
	out := redactedArgs(plan.Arguments{"email": "a@b.io", "password": "hunter2", "secret_file": "/k"})
	assert.Contains(t, out, `"email":"a@b.io"`)
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, `"/k"`)
	assert.Contains(t, out, `"password":"******"`)
}
