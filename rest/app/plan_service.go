package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/mensylisir/opsagent/pkg/capability"
	"github.com/mensylisir/opsagent/pkg/engine"
	"github.com/mensylisir/opsagent/pkg/logger"
	"github.com/mensylisir/opsagent/pkg/plan"
	"github.com/mensylisir/opsagent/pkg/planner"
)

// ErrPlannerUnavailable is returned by Ask when no planner is configured.
var ErrPlannerUnavailable = errors.New("planner is not configured")

// ErrRunNotFound is returned by GetRun for unknown or evicted run ids.
var ErrRunNotFound = errors.New("run not found")

const defaultRetainedRuns = 100

// PlanService is the application layer behind the HTTP handlers.
type PlanService struct {
	engine   engine.Engine
	planner  planner.Planner
	registry *capability.Registry
	log      *logger.Logger
	runs     *runStore
}

type PlanServiceOptions struct {
	Engine   engine.Engine
	Planner  planner.Planner // optional; Ask fails without it
	Registry *capability.Registry
	Logger   *logger.Logger
	// RetainedRuns bounds the in-memory report history. Zero means 100.
	RetainedRuns int
}

func NewPlanService(opts PlanServiceOptions) (*PlanService, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("NewPlanService: engine cannot be nil")
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("NewPlanService: registry cannot be nil")
	}
	log := opts.Logger
	if log == nil {
		log = logger.Get()
	}
	retained := opts.RetainedRuns
	if retained <= 0 {
		retained = defaultRetainedRuns
	}
	return &PlanService{
		engine:   opts.Engine,
		planner:  opts.Planner,
		registry: opts.Registry,
		log:      log.With("component", "plan-service"),
		runs:     newRunStore(retained),
	}, nil
}

// AskResponse is the result of a free-text request.
type AskResponse struct {
	Text   string       `json:"text"`
	Plan   string       `json:"plan"`
	Report *plan.Report `json:"report"`
}

// ExecutePlan runs a plan document and remembers the report.
func (s *PlanService) ExecutePlan(ctx context.Context, raw []byte) *plan.Report {
	report := s.engine.Run(ctx, raw)
	s.runs.put(report)
	return report
}

// Ask plans text with the planner, then executes the plan.
func (s *PlanService) Ask(ctx context.Context, text string) (*AskResponse, error) {
	if s.planner == nil {
		return nil, ErrPlannerUnavailable
	}
	raw, err := s.planner.Plan(ctx, text)
	if err != nil {
		return nil, errors.Wrap(err, "planning failed")
	}
	s.log.Debugf("Planner returned: %s", raw)
	return &AskResponse{Text: text, Plan: raw, Report: s.ExecutePlan(ctx, []byte(raw))}, nil
}

// GetRun returns a recently executed report.
func (s *PlanService) GetRun(runID string) (*plan.Report, error) {
	if r, ok := s.runs.get(runID); ok {
		return r, nil
	}
	return nil, errors.Wrapf(ErrRunNotFound, "run %s", runID)
}

// Capabilities describes the registry.
func (s *PlanService) Capabilities() []capability.Descriptor {
	return s.registry.Descriptors()
}

// runStore keeps the last N reports in insertion order.
type runStore struct {
	mu    sync.Mutex
	max   int
	order []string
	byID  map[string]*plan.Report
}

func newRunStore(max int) *runStore {
	return &runStore{max: max, byID: make(map[string]*plan.Report)}
}

func (s *runStore) put(r *plan.Report) {
	if r == nil || r.RunID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[r.RunID]; !exists {
		s.order = append(s.order, r.RunID)
	}
	s.byID[r.RunID] = r
	for len(s.order) > s.max {
		delete(s.byID, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *runStore) get(id string) (*plan.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	return r, ok
}
