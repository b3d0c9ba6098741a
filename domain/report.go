package domain

import (
	"maps"
	"slices"
	"sort"
)

// Report is the normalized result of one audit
type Report struct {
	// Passed is true iff the auditor reported no violations
	Passed bool `json:"passed" yaml:"passed"`

	// Findings are the violations in the order the auditor reported them
	Findings []Finding `json:"violations" yaml:"violations"`

	// FindingsByImpact groups findings by impact, preserving arrival order per group
	FindingsByImpact map[Impact][]Finding `json:"violationsByImpact" yaml:"violations_by_impact"`

	// Messages holds one display string per finding, index-aligned with Findings
	Messages []string `json:"violationMessages" yaml:"violation_messages"`

	// SeverityScore is the sum of configured weights over all findings
	SeverityScore int `json:"severityScore" yaml:"severity_score"`

	PassCount         int        `json:"passCount" yaml:"pass_count"`
	IncompleteCount   int        `json:"incompleteCount" yaml:"incomplete_count"`
	InapplicableCount int        `json:"inapplicableCount" yaml:"inapplicable_count"`
	URL               string     `json:"url,omitempty" yaml:"url,omitempty"`
	Timestamp         string     `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	TestEngine        TestEngine `json:"testEngine" yaml:"test_engine"`
}

// Impacts returns the impact keys present in the report, most severe first
func (r *Report) Impacts() []Impact {
	keys := slices.Collect(maps.Keys(r.FindingsByImpact))
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].Rank() != keys[j].Rank() {
			return keys[i].Rank() < keys[j].Rank()
		}
		return keys[i] < keys[j]
	})
	return keys
}

// CountByImpact returns the number of findings for each impact key
func (r *Report) CountByImpact() map[Impact]int {
	counts := make(map[Impact]int, len(r.FindingsByImpact))
	for impact, findings := range r.FindingsByImpact {
		counts[impact] = len(findings)
	}
	return counts
}

// ReportFunc receives every report a tester produces
type ReportFunc func(report *Report) error

// MessageFunc renders one finding for display
type MessageFunc func(finding Finding) string

// AuditConfiguration is the policy a tester applies to audit results
type AuditConfiguration struct {
	// SeverityWeights maps impact levels to score weights. The map is used as given:
	// levels it omits weigh DefaultSeverityWeight, not their default table entry.
	// Use OverlaySeverityWeights to start from the default table instead, which is
	// what configuration files get.
	SeverityWeights map[Impact]int

	// FailFast turns any report with findings into a PolicyError
	FailFast bool

	// CustomReporter is called with every report before fail-fast is applied
	CustomReporter ReportFunc

	// FormatMessage overrides the default message template
	FormatMessage MessageFunc

	// RunOptions are forwarded to the auditor unchanged
	RunOptions RunOptions
}

// DefaultSeverityWeights returns the default weight table
func DefaultSeverityWeights() map[Impact]int {
	return map[Impact]int{
		ImpactCritical: 10,
		ImpactSerious:  5,
		ImpactModerate: 3,
		ImpactMinor:    1,
	}
}

// OverlaySeverityWeights returns the default weight table with overrides applied.
// Impact keys are normalized, so "" and "unknown" name the same level.
func OverlaySeverityWeights(overrides map[Impact]int) map[Impact]int {
	weights := DefaultSeverityWeights()
	for impact, w := range overrides {
		weights[impact.Key()] = w
	}
	return weights
}

// DefaultAuditConfiguration returns a configuration with default weights and fail-fast disabled
func DefaultAuditConfiguration() AuditConfiguration {
	return AuditConfiguration{
		SeverityWeights: DefaultSeverityWeights(),
		RunOptions:      RunOptions{},
	}
}

// Weight returns the configured weight for an impact, falling back to DefaultSeverityWeight
func (c *AuditConfiguration) Weight(impact Impact) int {
	if w := c.SeverityWeights[impact.Key()]; w > 0 {
		return w
	}
	return DefaultSeverityWeight
}

// Clone returns a copy that shares no maps with c
func (c AuditConfiguration) Clone() AuditConfiguration {
	clone := c
	if c.SeverityWeights == nil {
		clone.SeverityWeights = DefaultSeverityWeights()
	} else {
		clone.SeverityWeights = maps.Clone(c.SeverityWeights)
	}
	clone.RunOptions = c.RunOptions.Clone()
	return clone
}
