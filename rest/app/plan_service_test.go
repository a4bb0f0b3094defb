package app

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensylisir/opsagent/pkg/capability"
	"github.com/mensylisir/opsagent/pkg/plan"
)

type fakeEngine struct {
	n    int
	raws []string
}

func (f *fakeEngine) Run(_ context.Context, raw []byte) *plan.Report {
	f.n++
	f.raws = append(f.raws, string(raw))
	r := plan.NewReport(fmt.Sprintf("run-%d", f.n))
	r.Finalize(nil)
	return r
}

func (f *fakeEngine) Execute(_ context.Context, _ *plan.Document) *plan.Report {
	return f.Run(context.Background(), nil)
}

type fakePlanner struct{ err error }

func (f fakePlanner) Plan(_ context.Context, text string) (string, error) {
	return `{"steps":[]}`, f.err
}

func TestNewPlanService_Validation(t *testing.T) {
	_, err := NewPlanService(PlanServiceOptions{Registry: capability.NewRegistry()})
	require.Error(t, err)
	_, err = NewPlanService(PlanServiceOptions{Engine: &fakeEngine{}})
	require.Error(t, err)
}

func TestPlanService_AskAndRuns(t *testing.T) {
	eng := &fakeEngine{}
	svc, err := NewPlanService(PlanServiceOptions{Engine: eng, Registry: capability.NewRegistry(), Planner: fakePlanner{}})
	require.NoError(t, err)

	resp, err := svc.Ask(context.Background(), "do nothing")
	require.NoError(t, err)
	assert.Equal(t, `{"steps":[]}`, resp.Plan)
	assert.Equal(t, []string{`{"steps":[]}`}, eng.raws)

	got, err := svc.GetRun(resp.Report.RunID)
	require.NoError(t, err)
	assert.Same(t, resp.Report, got)

	_, err = svc.GetRun("missing")
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestPlanService_AskErrors(t *testing.T) {
	svc, err := NewPlanService(PlanServiceOptions{Engine: &fakeEngine{}, Registry: capability.NewRegistry()})
	require.NoError(t, err)
	_, err = svc.Ask(context.Background(), "x")
	assert.True(t, errors.Is(err, ErrPlannerUnavailable))

	eng := &fakeEngine{}
	svc, err = NewPlanService(PlanServiceOptions{Engine: eng, Registry: capability.NewRegistry(), Planner: fakePlanner{err: fmt.Errorf("quota")}})
	require.NoError(t, err)
	_, err = svc.Ask(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "planning failed: quota")
	assert.Empty(t, eng.raws)
}

func TestRunStore_Evicts(t *testing.T) {
	eng := &fakeEngine{}
	svc, err := NewPlanService(PlanServiceOptions{Engine: eng, Registry: capability.NewRegistry(), RetainedRuns: 2})
	require.NoError(t, err)
	first := svc.ExecutePlan(context.Background(), nil)
	svc.ExecutePlan(context.Background(), nil)
	third := svc.ExecutePlan(context.Background(), nil)

	_, err = svc.GetRun(first.RunID)
	assert.Error(t, err)
	_, err = svc.GetRun(third.RunID)
	assert.NoError(t, err)
}
