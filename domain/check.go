package domain

import (
	"context"
	"io"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatCSV  OutputFormat = "csv"
	OutputFormatHTML OutputFormat = "html"
)

// TargetKind tells how a check target is loaded
type TargetKind string

const (
	TargetKindFile TargetKind = "file"
	TargetKindURL  TargetKind = "url"
)

// CheckRequest describes one `check` run
type CheckRequest struct {
	// Targets are HTML files, directories or http(s) URLs
	Targets []string

	OutputFormat OutputFormat
	OutputWriter io.Writer
	OutputPath   string
	ShowDetails  bool
	Verbose      bool

	ConfigPath string

	Recursive        bool
	RespectGitignore bool
	IncludePatterns  []string
	ExcludePatterns  []string

	// MaxConcurrency bounds the targets audited at once
	MaxConcurrency int
	// TimeoutSeconds bounds the whole run; 0 uses the executor default
	TimeoutSeconds int
	// PageStrategy selects how URL targets are audited
	PageStrategy PageStrategy

	Audit AuditConfiguration
}

// TargetResult is the outcome for a single target
type TargetResult struct {
	Target string     `json:"target" yaml:"target"`
	Kind   TargetKind `json:"kind" yaml:"kind"`
	Report *Report    `json:"report,omitempty" yaml:"report,omitempty"`
	Error  string     `json:"error,omitempty" yaml:"error,omitempty"`

	// PolicyFailure is set when fail-fast stopped the target
	PolicyFailure bool  `json:"policy_failure,omitempty" yaml:"policy_failure,omitempty"`
	DurationMs    int64 `json:"duration_ms" yaml:"duration_ms"`
}

// Failed reports whether the target has violations or could not be audited
func (t *TargetResult) Failed() bool {
	return t.Error != "" || (t.Report != nil && !t.Report.Passed)
}

// CheckSummary provides aggregate statistics
type CheckSummary struct {
	TargetsAudited     int            `json:"targets_audited" yaml:"targets_audited"`
	TargetsPassed      int            `json:"targets_passed" yaml:"targets_passed"`
	TargetsFailed      int            `json:"targets_failed" yaml:"targets_failed"`
	TargetsErrored     int            `json:"targets_errored" yaml:"targets_errored"`
	TotalViolations    int            `json:"total_violations" yaml:"total_violations"`
	TotalScore         int            `json:"total_score" yaml:"total_score"`
	ViolationsByImpact map[Impact]int `json:"violations_by_impact" yaml:"violations_by_impact"`
}

// CheckResult represents the result of an accessibility check over all targets
type CheckResult struct {
	RunID       string         `json:"run_id" yaml:"run_id"`
	Passed      bool           `json:"passed" yaml:"passed"`
	ExitCode    int            `json:"exit_code" yaml:"exit_code"`
	Targets     []TargetResult `json:"targets" yaml:"targets"`
	Summary     CheckSummary   `json:"summary" yaml:"summary"`
	Duration    int64          `json:"duration_ms" yaml:"duration_ms"`
	GeneratedAt string         `json:"generated_at" yaml:"generated_at"`
	Version     string         `json:"version" yaml:"version"`
}

// Summarize recomputes the summary, pass flag and exit code from the target results.
// Exit code 2 wins over 1 when any target could not be audited.
func (r *CheckResult) Summarize() {
	summary := CheckSummary{ViolationsByImpact: map[Impact]int{}}
	for i := range r.Targets {
		t := &r.Targets[i]
		summary.TargetsAudited++
		if t.Report != nil {
			summary.TotalViolations += len(t.Report.Findings)
			summary.TotalScore += t.Report.SeverityScore
			for impact, n := range t.Report.CountByImpact() {
				summary.ViolationsByImpact[impact] += n
			}
		}
		switch {
		case t.Error != "" && !t.PolicyFailure:
			summary.TargetsErrored++
		case t.Failed():
			summary.TargetsFailed++
		default:
			summary.TargetsPassed++
		}
	}
	r.Summary = summary
	r.Passed = summary.TargetsFailed == 0 && summary.TargetsErrored == 0
	switch {
	case summary.TargetsErrored > 0:
		r.ExitCode = 2
	case summary.TargetsFailed > 0:
		r.ExitCode = 1
	default:
		r.ExitCode = 0
	}
}

// AuditService runs one audit and applies the configured policy
type AuditService interface {
	// Test audits an input; override is merged over the stored run options for this call only
	Test(ctx context.Context, input Input, override RunOptions) (*Report, error)

	// TestValue classifies an arbitrary value before auditing it
	TestValue(ctx context.Context, v any, override RunOptions) (*Report, error)
}

// OutputFormatter defines the interface for formatting check results
type OutputFormatter interface {
	Write(result *CheckResult, format OutputFormat, writer io.Writer) error
}

// ProgressManager creates progress trackers for long-running work
type ProgressManager interface {
	StartTask(description string, total int) TaskProgress
	IsInteractive() bool
	Close()
}

// TaskProgress tracks a single task
type TaskProgress interface {
	Increment(n int)
	Describe(description string)
	Complete()
}

// ExecutableTask is a unit of work for the parallel executor
type ExecutableTask interface {
	Name() string
	Execute(ctx context.Context) (interface{}, error)
	IsEnabled() bool
}

// ParallelExecutor runs tasks concurrently
type ParallelExecutor interface {
	Execute(ctx context.Context, tasks []ExecutableTask) error
}
