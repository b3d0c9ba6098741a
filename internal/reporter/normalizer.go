// Package reporter turns raw auditor output into scored, grouped reports
package reporter

import (
	"fmt"

	"github.com/ludo-technologies/a11yscan/domain"
)

// DefaultMessage renders a finding as "<IMPACT>: <description>. See <helpUrl> (Rule ID: <id>)"
func DefaultMessage(f domain.Finding) string {
	return fmt.Sprintf("%s: %s. See %s (Rule ID: %s)", f.Impact.Label(), f.Description, f.HelpURL, f.ID)
}

// Normalize builds a report from the auditor's violations. It has no side effects
// and always returns a well-formed report; a nil result is treated as an empty one.
func Normalize(raw *domain.RawAuditResult, cfg *domain.AuditConfiguration) *domain.Report {
	if raw == nil {
		raw = &domain.RawAuditResult{}
	}
	if cfg == nil {
		defaults := domain.DefaultAuditConfiguration()
		cfg = &defaults
	}

	format := domain.MessageFunc(DefaultMessage)
	if cfg.FormatMessage != nil {
		format = cfg.FormatMessage
	}

	findings := make([]domain.Finding, len(raw.Violations))
	copy(findings, raw.Violations)

	report := &domain.Report{
		Passed:            len(findings) == 0,
		Findings:          findings,
		FindingsByImpact:  make(map[domain.Impact][]domain.Finding),
		Messages:          make([]string, 0, len(findings)),
		PassCount:         len(raw.Passes),
		IncompleteCount:   len(raw.Incomplete),
		InapplicableCount: len(raw.Inapplicable),
		URL:               raw.URL,
		Timestamp:         raw.Timestamp,
		TestEngine:        raw.TestEngine,
	}

	for _, f := range findings {
		key := f.Impact.Key()
		report.FindingsByImpact[key] = append(report.FindingsByImpact[key], f)
		report.Messages = append(report.Messages, format(f))
		report.SeverityScore += cfg.Weight(f.Impact)
	}

	return report
}
