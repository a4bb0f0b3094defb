// Package engine drives a plan run: parse the planner output, execute every
// step in order against a fresh execution context and assemble the report.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mensylisir/opsagent/pkg/cache"
	"github.com/mensylisir/opsagent/pkg/common"
	"github.com/mensylisir/opsagent/pkg/executor"
	"github.com/mensylisir/opsagent/pkg/logger"
	"github.com/mensylisir/opsagent/pkg/plan"
)

// Engine runs plans. Every call uses its own execution context, so one Engine
// may serve concurrent runs.
type Engine interface {
	// Run parses raw planner output and executes it. A document that cannot
	// be parsed yields a report with a single parse_plan entry.
	Run(ctx context.Context, raw []byte) *plan.Report
	// Execute runs an already parsed document.
	Execute(ctx context.Context, doc *plan.Document) *plan.Report
}

// Observer is notified as steps start and finish. Calls happen on the run's
// goroutine, in step order.
type Observer interface {
	StepStarted(runID string, step plan.Step, total int)
	StepFinished(runID string, result plan.StepResult, total int)
}

type Options struct {
	Logger   *logger.Logger
	Executor *executor.Executor
	Observer Observer
	// NewRunID overrides run id generation.
	NewRunID func() string
}

type planEngine struct {
	log      *logger.Logger
	executor *executor.Executor
	observer Observer
	newRunID func() string
}

func New(opts Options) (Engine, error) {
	if opts.Executor == nil {
		return nil, fmt.Errorf("engine: executor cannot be nil")
	}
	log := opts.Logger
	if log == nil {
		log = logger.Get()
	}
	newRunID := opts.NewRunID
	if newRunID == nil {
		newRunID = uuid.NewString
	}
	return &planEngine{
		log:      log,
		executor: opts.Executor,
		observer: opts.Observer,
		newRunID: newRunID,
	}, nil
}

func (e *planEngine) Run(ctx context.Context, raw []byte) *plan.Report {
	doc, err := plan.ParseDocument(raw)
	if err != nil {
		report := plan.NewReport(e.newRunID())
		e.log.With("run_id", report.RunID).Warnf("Plan rejected: %v", err)
		now := time.Now()
		report.Append(plan.StepResult{
			Step:      0,
			Action:    common.ParsePlanAction,
			Args:      plan.Arguments{},
			Result:    plan.Failedf("could not parse plan document: %v", err),
			Raw:       string(raw),
			StartTime: now,
			EndTime:   now,
		})
		report.Finalize(nil)
		return report
	}
	return e.Execute(ctx, doc)
}

func (e *planEngine) Execute(ctx context.Context, doc *plan.Document) *plan.Report {
	// a run always completes once started
	ctx = context.WithoutCancel(ctx)

	report := plan.NewReport(e.newRunID())
	log := e.log.With("run_id", report.RunID)
	total := doc.Len()
	log.Infof("Executing plan with %d step(s)", total)

	store := cache.New()
	if doc != nil {
		for i, step := range doc.Steps {
			step.Ordinal = i + 1
			if e.observer != nil {
				e.observer.StepStarted(report.RunID, step, total)
			}
			result, delta := e.executor.Execute(ctx, step, store)
			report.Append(result)
			store.Merge(delta)
			if e.observer != nil {
				e.observer.StepFinished(report.RunID, result, total)
			}
		}
	}

	report.Finalize(store.Snapshot())
	if keys := store.Keys(); len(keys) > 0 {
		log.Debugf("Execution context bindings: %s", strings.Join(keys, ", "))
	}
	switch report.Status {
	case plan.StatusSuccess:
		log.Successf("Plan finished: %d/%d step(s) succeeded", report.Succeeded(), total)
	default:
		log.Warnf("Plan finished with status %s: %d/%d step(s) failed", report.Status, report.FailedCount(), total)
	}
	return report
}
