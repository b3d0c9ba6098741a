// Package matchers exposes audits in the shape test runners expect: a pass flag and
// a lazily built failure message. The subpackages bind it to testing, testify and gomega.
package matchers

import (
	"context"
	"strings"

	"github.com/ludo-technologies/a11yscan/domain"
)

// Result is the outcome of matching a value against the accessibility audit
type Result struct {
	Pass    bool
	Message func() string

	// Report is the normalized report, nil when the audit failed with an error
	Report *domain.Report
}

// Match audits v through svc. Audit errors, including the fail-fast policy error,
// are returned as errors rather than as a failed Result.
func Match(ctx context.Context, svc domain.AuditService, v any, override domain.RunOptions) (Result, error) {
	report, err := svc.TestValue(ctx, v, override)
	if err != nil {
		return Result{Pass: false, Message: func() string { return err.Error() }, Report: report}, err
	}
	return FromReport(report), nil
}

// FromReport converts a report into a matcher result
func FromReport(report *domain.Report) Result {
	return Result{
		Pass:    report.Passed,
		Message: func() string { return strings.Join(report.Messages, "\n") },
		Report:  report,
	}
}
