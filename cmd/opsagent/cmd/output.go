package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"sigs.k8s.io/yaml"

	"github.com/mensylisir/opsagent/pkg/capability"
	"github.com/mensylisir/opsagent/pkg/plan"
)

const (
	outputJSON  = "json"
	outputYAML  = "yaml"
	outputTable = "table"
)

func validateOutput(format string) error {
	switch format {
	case outputJSON, outputYAML, outputTable:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q, must be one of: json, yaml, table", format)
	}
}

func writeReport(w io.Writer, report *plan.Report, format string) error {
	switch format {
	case outputJSON:
		return writeJSON(w, report)
	case outputYAML:
		return writeYAML(w, report)
	default:
		return writeReportTable(w, report)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v interface{}) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to render yaml: %w", err)
	}
	_, err = w.Write(out)
	return err
}

func writeReportTable(w io.Writer, report *plan.Report) error {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"STEP", "ACTION", "RESULT", "MESSAGE", "DURATION"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, s := range report.Steps {
		verdict := green("OK")
		if !s.Result.OK {
			verdict = red("FAIL")
		}
		table.Append([]string{
			fmt.Sprintf("%d", s.Step),
			s.Action,
			verdict,
			s.Result.Message,
			s.EndTime.Sub(s.StartTime).Round(time.Millisecond).String(),
		})
	}
	table.Render()

	status := string(report.Status)
	if report.Status == plan.StatusSuccess {
		status = green(status)
	} else {
		status = red(status)
	}
	fmt.Fprintf(w, "\nRun %s: %s (%d/%d steps succeeded)\n", report.RunID, status, report.Succeeded(), len(report.Steps))
	if len(report.Context) > 0 {
		keys := make([]string, 0, len(report.Context))
		for k := range report.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintln(w, "Context:")
		for _, k := range keys {
			fmt.Fprintf(w, "  %s = %v\n", k, report.Context[k])
		}
	}
	return nil
}

func writeCapabilitiesTable(w io.Writer, descs []capability.Descriptor) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"NAME", "ARGUMENTS", "EXPORTS", "DESCRIPTION"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, d := range descs {
		args := make([]string, 0, len(d.Params))
		for _, p := range d.Params {
			a := p.Name
			if !p.Required {
				a += "?"
			}
			if p.Type == capability.TypeInteger {
				a += ":int"
			}
			args = append(args, a)
		}
		table.Append([]string{string(d.Name), strings.Join(args, ", "), d.ExportKey, d.Description})
	}
	table.Render()
}

// progressObserver advances a progress bar on stderr as steps finish. The
// bar is created on the first step, when the plan length is known.
type progressObserver struct {
	bar *progressbar.ProgressBar
}

func (p *progressObserver) StepStarted(_ string, step plan.Step, total int) {
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Executing plan"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprint(os.Stderr, "\n")
			}),
		)
	}
	p.bar.Describe(fmt.Sprintf("[%d/%d] %s", step.Ordinal, total, step.Function))
}

func (p *progressObserver) StepFinished(_ string, _ plan.StepResult, _ int) {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}
