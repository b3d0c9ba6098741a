package service

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/ludo-technologies/a11yscan/domain"
	"gopkg.in/yaml.v3"
)

// OutputFormatterImpl implements the OutputFormatter interface
type OutputFormatterImpl struct {
	// ShowDetails lists affected nodes under each violation in text output
	ShowDetails bool
}

// NewOutputFormatter creates a new output formatter
func NewOutputFormatter() *OutputFormatterImpl {
	return &OutputFormatterImpl{}
}

// WriteJSON writes data as JSON to the writer
func WriteJSON(writer io.Writer, data interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteYAML writes data as YAML to the writer
func WriteYAML(writer io.Writer, data interface{}) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return err
	}
	return encoder.Close()
}

// Write writes the check result in the specified format
func (f *OutputFormatterImpl) Write(result *domain.CheckResult, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, result)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, result)
	case domain.OutputFormatCSV:
		return f.writeCSV(result, writer)
	case domain.OutputFormatHTML:
		return f.WriteHTML(result, writer)
	case domain.OutputFormatText, "":
		return f.writeText(result, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// writeText renders a summary table followed by the violation messages of every failing target
func (f *OutputFormatterImpl) writeText(result *domain.CheckResult, writer io.Writer) error {
	fmt.Fprintf(writer, "\n=== a11yscan Accessibility Report ===\n")
	fmt.Fprintf(writer, "Generated: %s\n", result.GeneratedAt)
	fmt.Fprintf(writer, "Duration: %dms\n", result.Duration)
	fmt.Fprintf(writer, "Version: %s\n\n", result.Version)

	t := table.NewWriter()
	t.SetOutputMirror(writer)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Target", "Status", "Violations", "Critical", "Serious", "Moderate", "Minor", "Score"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Target", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Violations", Align: text.AlignRight},
		{Name: "Critical", Align: text.AlignRight},
		{Name: "Serious", Align: text.AlignRight},
		{Name: "Moderate", Align: text.AlignRight},
		{Name: "Minor", Align: text.AlignRight},
		{Name: "Score", Align: text.AlignRight},
	})

	for _, target := range result.Targets {
		counts := map[domain.Impact]int{}
		violations, score := 0, 0
		if target.Report != nil {
			counts = target.Report.CountByImpact()
			violations = len(target.Report.Findings)
			score = target.Report.SeverityScore
		}
		t.AppendRow(table.Row{
			target.Target,
			statusString(&target),
			violations,
			counts[domain.ImpactCritical],
			counts[domain.ImpactSerious],
			counts[domain.ImpactModerate],
			counts[domain.ImpactMinor],
			score,
		})
	}

	s := result.Summary
	t.AppendFooter(table.Row{
		fmt.Sprintf("%d targets", s.TargetsAudited),
		fmt.Sprintf("%d passed", s.TargetsPassed),
		s.TotalViolations,
		s.ViolationsByImpact[domain.ImpactCritical],
		s.ViolationsByImpact[domain.ImpactSerious],
		s.ViolationsByImpact[domain.ImpactModerate],
		s.ViolationsByImpact[domain.ImpactMinor],
		s.TotalScore,
	})
	t.Render()

	for _, target := range result.Targets {
		if target.Error != "" && !target.PolicyFailure {
			fmt.Fprintf(writer, "\n%s\n  error: %s\n", target.Target, target.Error)
			continue
		}
		if target.Report == nil || len(target.Report.Findings) == 0 {
			continue
		}

		fmt.Fprintf(writer, "\n%s\n", target.Target)
		for i, msg := range target.Report.Messages {
			fmt.Fprintf(writer, "  - %s\n", msg)
			if !f.ShowDetails || i >= len(target.Report.Findings) {
				continue
			}
			for _, node := range target.Report.Findings[i].Nodes {
				fmt.Fprintf(writer, "      %s\n", truncate(node.HTML, 120))
				if node.FailureSummary != "" {
					for _, line := range strings.Split(node.FailureSummary, "\n") {
						fmt.Fprintf(writer, "        %s\n", line)
					}
				}
			}
		}
	}

	fmt.Fprintln(writer)
	if result.Passed {
		fmt.Fprintln(writer, "No accessibility violations found.")
	} else {
		fmt.Fprintf(writer, "%d violations in %d targets, %d targets could not be audited.\n",
			s.TotalViolations, s.TargetsFailed, s.TargetsErrored)
	}
	return nil
}

// writeCSV writes one row per affected node
func (f *OutputFormatterImpl) writeCSV(result *domain.CheckResult, writer io.Writer) error {
	w := csv.NewWriter(writer)
	if err := w.Write([]string{"target", "rule_id", "impact", "target_score", "description", "help_url", "html", "target_selector", "error"}); err != nil {
		return err
	}

	for _, target := range result.Targets {
		if target.Report == nil || len(target.Report.Findings) == 0 {
			if target.Error != "" {
				if err := w.Write([]string{target.Target, "", "", "", "", "", "", "", target.Error}); err != nil {
					return err
				}
			}
			continue
		}
		score := strconv.Itoa(target.Report.SeverityScore)
		for _, finding := range target.Report.Findings {
			for _, node := range finding.Nodes {
				row := []string{
					target.Target,
					finding.ID,
					string(finding.Impact.Key()),
					score,
					finding.Description,
					finding.HelpURL,
					node.HTML,
					selectorString(node.Target),
					target.Error,
				}
				if err := w.Write(row); err != nil {
					return err
				}
			}
		}
	}

	w.Flush()
	return w.Error()
}

func statusString(t *domain.TargetResult) string {
	switch {
	case t.Error != "" && !t.PolicyFailure:
		return "ERROR"
	case t.Failed():
		return "FAIL"
	default:
		return "PASS"
	}
}

// selectorString flattens an axe target, which nests arrays for iframes and shadow roots
func selectorString(target []any) string {
	parts := make([]string, 0, len(target))
	for _, t := range target {
		switch v := t.(type) {
		case string:
			parts = append(parts, v)
		case []any:
			parts = append(parts, selectorString(v))
		default:
			parts = append(parts, fmt.Sprint(v))
		}
	}
	return strings.Join(parts, " > ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
