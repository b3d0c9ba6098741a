package domain

import (
	"context"
	"maps"
	"strings"
)

// Impact is the severity classification axe-core assigns to a finding
type Impact string

const (
	ImpactCritical Impact = "critical"
	ImpactSerious  Impact = "serious"
	ImpactModerate Impact = "moderate"
	ImpactMinor    Impact = "minor"

	// ImpactUnknown is the grouping key for findings reported without an impact
	ImpactUnknown Impact = "unknown"
)

// DefaultSeverityWeight applies to any impact without a configured weight
const DefaultSeverityWeight = 1

// KnownImpacts lists impact levels from most to least severe
var KnownImpacts = []Impact{ImpactCritical, ImpactSerious, ImpactModerate, ImpactMinor, ImpactUnknown}

// Key returns the grouping key for the impact, mapping an absent impact to ImpactUnknown
func (i Impact) Key() Impact {
	if i == "" {
		return ImpactUnknown
	}
	return i
}

// Label returns the upper-case form used in violation messages
func (i Impact) Label() string {
	return strings.ToUpper(string(i.Key()))
}

// Rank orders impacts for display; unrecognized levels sort after minor
func (i Impact) Rank() int {
	for idx, known := range KnownImpacts {
		if i.Key() == known {
			return idx
		}
	}
	return len(KnownImpacts) - 1
}

// NodeResult describes one DOM node affected by a finding. The core never modifies it.
type NodeResult struct {
	HTML           string   `json:"html" yaml:"html"`
	Target         []any    `json:"target,omitempty" yaml:"target,omitempty"`
	FailureSummary string   `json:"failureSummary,omitempty" yaml:"failure_summary,omitempty"`
	Impact         Impact   `json:"impact,omitempty" yaml:"impact,omitempty"`
	XPath          []string `json:"xpath,omitempty" yaml:"xpath,omitempty"`
}

// Finding is one rule result reported by the auditor
type Finding struct {
	ID          string       `json:"id" yaml:"id"`
	Impact      Impact       `json:"impact,omitempty" yaml:"impact,omitempty"`
	Description string       `json:"description" yaml:"description"`
	Help        string       `json:"help,omitempty" yaml:"help,omitempty"`
	HelpURL     string       `json:"helpUrl" yaml:"help_url"`
	Tags        []string     `json:"tags,omitempty" yaml:"tags,omitempty"`
	Nodes       []NodeResult `json:"nodes" yaml:"nodes"`
}

// TestEngine identifies the auditor build that produced a result
type TestEngine struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
}

// RawAuditResult is the auditor's unprocessed output
type RawAuditResult struct {
	Violations   []Finding  `json:"violations"`
	Passes       []Finding  `json:"passes"`
	Incomplete   []Finding  `json:"incomplete"`
	Inapplicable []Finding  `json:"inapplicable"`
	URL          string     `json:"url,omitempty"`
	Timestamp    string     `json:"timestamp,omitempty"`
	TestEngine   TestEngine `json:"testEngine"`
}

// RunOptions is the option bag forwarded verbatim to the auditor (rules, runOnly, reporter, ...)
type RunOptions map[string]any

// Merge returns a new option bag with override applied key by key over o.
// Nested values are replaced, never merged. Neither input is modified.
func (o RunOptions) Merge(override RunOptions) RunOptions {
	merged := make(RunOptions, len(o)+len(override))
	maps.Copy(merged, o)
	maps.Copy(merged, override)
	return merged
}

// Clone returns a shallow copy of the option bag
func (o RunOptions) Clone() RunOptions {
	return RunOptions{}.Merge(o)
}

// DisableRules builds options that switch off the given rule IDs
func DisableRules(ids ...string) RunOptions {
	rules := make(map[string]any, len(ids))
	for _, id := range ids {
		rules[id] = map[string]any{"enabled": false}
	}
	return RunOptions{"rules": rules}
}

// RunOnlyTags builds options restricting the audit to rules carrying one of the tags
func RunOnlyTags(tags ...string) RunOptions {
	values := make([]any, len(tags))
	for i, tag := range tags {
		values[i] = tag
	}
	return RunOptions{"runOnly": map[string]any{"type": "tag", "values": values}}
}

// Auditor runs the accessibility rule engine against a document
type Auditor interface {
	Run(ctx context.Context, doc AuditableDocument, opts RunOptions) (*RawAuditResult, error)
}
