// Package executor runs a single plan step: capability lookup, placeholder
// resolution, invocation and export extraction.
package executor

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/mensylisir/opsagent/pkg/cache"
	"github.com/mensylisir/opsagent/pkg/capability"
	"github.com/mensylisir/opsagent/pkg/common"
	"github.com/mensylisir/opsagent/pkg/logger"
	"github.com/mensylisir/opsagent/pkg/plan"
	"github.com/mensylisir/opsagent/pkg/resolver"
	"github.com/mensylisir/opsagent/pkg/util"
)

// Executor executes steps against a capability registry. It keeps no per-run
// state and can be shared by concurrent runs.
type Executor struct {
	Logger   *logger.Logger
	Registry *capability.Registry
}

type ExecutorOptions struct {
	Logger   *logger.Logger
	Registry *capability.Registry
}

func NewExecutor(opts ExecutorOptions) (*Executor, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("NewExecutor: capability registry cannot be nil")
	}
	log := opts.Logger
	if log == nil {
		log = logger.Get()
		log.Debugf("ExecutorOptions.Logger not provided, using global default logger for executor.")
	}
	return &Executor{Logger: log, Registry: opts.Registry}, nil
}

// Execute runs step with the bindings visible in ctxStore and returns the
// report entry plus the bindings the step exports. The delta is empty unless
// the step succeeded. Execute never panics on behalf of a capability.
func (e *Executor) Execute(ctx context.Context, step plan.Step, ctxStore cache.Reader) (plan.StepResult, plan.Delta) {
	log := e.Logger.With("step", step.Ordinal, "action", step.Function)
	result := plan.StepResult{
		Step:      step.Ordinal,
		Action:    step.Function,
		StartTime: time.Now(),
	}
	delta := plan.Delta{}

	c, ok := e.Registry.Lookup(step.Function)
	if !ok {
		result.Args = step.Arguments.Clone()
		result.Result = plan.Failedf("unknown function '%s'", step.Function)
		result.EndTime = time.Now()
		log.Warnf("Step %d skipped: unknown function '%s'", step.Ordinal, step.Function)
		return result, delta
	}

	res := resolver.Resolve(step.Arguments, ctxStore)
	result.Args = res.Args
	if len(res.Unresolved) > 0 {
		log.Warnf("Unresolved placeholders %v, passing them through unchanged", res.Unresolved)
	}
	log.Debugf("Invoking %s with %s", c.Name(), redactedArgs(res.Args))

	outcome := e.invoke(ctx, log, c, res.Args.Clone())
	if !outcome.OK && outcome.Message == "" {
		outcome.Message = fmt.Sprintf("%s failed without a message", c.Name())
	}

	if outcome.OK {
		for k, v := range outcome.Exports {
			delta[k] = v
		}
		// an explicit export for the same key wins over payload extraction
		if exp, ok := c.(capability.Exporter); ok && !hasKey(delta, exp.Export().Key) {
			x := exp.Export()
			if v, found := x.Extract(outcome.Data); found {
				delta[x.Key] = v
				log.Debugf("Exported %s=%v", x.Key, v)
			} else {
				log.Debugf("No value found for %s in the payload", x.Key)
			}
		}
		outcome.Exports = delta
		log.Successf("Step %d %s: %s", step.Ordinal, c.Name(), outcome.Message)
	} else {
		outcome.Exports = nil
		log.Warnf("Step %d %s failed: %s", step.Ordinal, c.Name(), outcome.Message)
	}

	result.Result = outcome
	result.EndTime = time.Now()
	return result, delta
}

// invoke calls the capability and turns a panic into a failed Outcome.
func (e *Executor) invoke(ctx context.Context, log *logger.Logger, c capability.Capability, args plan.Arguments) (out plan.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Debugf("Recovered panic in %s: %v\n%s", c.Name(), r, debug.Stack())
			out = plan.Failedf("exception calling %s: %v", c.Name(), r)
		}
	}()
	return c.Invoke(ctx, args)
}

func hasKey(d plan.Delta, key string) bool {
	_, ok := d[key]
	return ok
}

func redactedArgs(args plan.Arguments) string {
	data := util.ToJSON(args)
	if data == nil {
		return "<unprintable>"
	}
	redacted, err := util.RedactJSON(data, common.SensitiveArgumentKeys, common.RedactedValue)
	if err != nil {
		return "<unprintable>"
	}
	return string(redacted)
}
