package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ludo-technologies/a11yscan/domain"
	"github.com/ludo-technologies/a11yscan/internal/testutil"
	"gopkg.in/yaml.v3"
)

// sampleCheckResult returns a run with one passing, one failing and one errored target
func sampleCheckResult() *domain.CheckResult {
	imageAlt := testutil.Violation("image-alt", domain.ImpactCritical, "Images must have alternate text")
	region := testutil.Violation("region", "", "All page content should be contained by landmarks")
	region.Nodes[0].FailureSummary = "Fix any of the following:\n  Some page content is not contained by landmarks"

	result := &domain.CheckResult{
		RunID:       "2f1c6a7e-0000-4000-8000-000000000000",
		GeneratedAt: "2026-10-19T10:00:00Z",
		Version:     "dev",
		Duration:    42,
		Targets: []domain.TargetResult{
			{Target: "index.html", Kind: domain.TargetKindFile, Report: &domain.Report{Passed: true, PassCount: 12}},
			{
				Target: "about.html",
				Kind:   domain.TargetKindFile,
				Report: &domain.Report{
					Findings: []domain.Finding{imageAlt, region},
					FindingsByImpact: map[domain.Impact][]domain.Finding{
						domain.ImpactCritical: {imageAlt},
						domain.ImpactUnknown:  {region},
					},
					Messages: []string{
						"CRITICAL: Images must have alternate text. See https://dequeuniversity.com/rules/axe/4.10/image-alt (Rule ID: image-alt)",
						"UNKNOWN: All page content should be contained by landmarks. See https://dequeuniversity.com/rules/axe/4.10/region (Rule ID: region)",
					},
					SeverityScore: 11,
				},
			},
			{Target: "https://example.invalid", Kind: domain.TargetKindURL, Error: "auditor load failed: net::ERR_NAME_NOT_RESOLVED"},
		},
	}
	result.Summarize()
	return result
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, map[string]interface{}{"name": "test", "value": 42}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse output as JSON: %v", err)
	}
	if result["name"] != "test" {
		t.Errorf("Expected name to be 'test', got %v", result["name"])
	}
}

func TestOutputFormatter_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := NewOutputFormatter().Write(sampleCheckResult(), domain.OutputFormatJSON, &buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var decoded struct {
		RunID    string `json:"run_id"`
		ExitCode int    `json:"exit_code"`
		Targets  []struct {
			Target string `json:"target"`
			Report *struct {
				Violations    []map[string]any `json:"violations"`
				SeverityScore int              `json:"severityScore"`
			} `json:"report"`
		} `json:"targets"`
		Summary struct {
			TotalViolations int `json:"total_violations"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if decoded.ExitCode != 2 {
		t.Errorf("expected exit code 2 with an errored target, got %d", decoded.ExitCode)
	}
	if decoded.Summary.TotalViolations != 2 {
		t.Errorf("expected 2 violations, got %d", decoded.Summary.TotalViolations)
	}
	if decoded.Targets[1].Report == nil || decoded.Targets[1].Report.SeverityScore != 11 {
		t.Errorf("expected score 11 for about.html, got %+v", decoded.Targets[1].Report)
	}
	if decoded.Targets[1].Report.Violations[0]["helpUrl"] == nil {
		t.Error("findings should keep the axe field names")
	}
}

func TestOutputFormatter_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := NewOutputFormatter().Write(sampleCheckResult(), domain.OutputFormatYAML, &buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if decoded["run_id"] != "2f1c6a7e-0000-4000-8000-000000000000" {
		t.Errorf("unexpected run_id: %v", decoded["run_id"])
	}
	if !strings.Contains(buf.String(), "severity_score: 11") {
		t.Errorf("expected snake_case report fields in YAML output:\n%s", buf.String())
	}
}

func TestOutputFormatter_CSV(t *testing.T) {
	var buf bytes.Buffer
	if err := NewOutputFormatter().Write(sampleCheckResult(), domain.OutputFormatCSV, &buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	// header + one row per node + one row for the errored target
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d: %v", len(records), records)
	}
	if records[1][1] != "image-alt" || records[1][2] != "critical" {
		t.Errorf("unexpected first row: %v", records[1])
	}
	if records[2][2] != "unknown" {
		t.Errorf("missing impact should be written as unknown, got %q", records[2][2])
	}
	if records[3][0] != "https://example.invalid" || records[3][8] == "" {
		t.Errorf("expected error row for the URL target, got %v", records[3])
	}
}

func TestOutputFormatter_Text(t *testing.T) {
	var buf bytes.Buffer
	formatter := NewOutputFormatter()
	if err := formatter.Write(sampleCheckResult(), domain.OutputFormatText, &buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"a11yscan Accessibility Report",
		"index.html",
		"PASS",
		"FAIL",
		"ERROR",
		"CRITICAL: Images must have alternate text",
		"net::ERR_NAME_NOT_RESOLVED",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected text output to contain %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<div></div>") {
		t.Error("node markup should only be shown with details enabled")
	}
}

func TestOutputFormatter_TextDetails(t *testing.T) {
	var buf bytes.Buffer
	formatter := &OutputFormatterImpl{ShowDetails: true}
	if err := formatter.Write(sampleCheckResult(), domain.OutputFormatText, &buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "<div></div>") {
		t.Errorf("expected node markup with details enabled:\n%s", out)
	}
	if !strings.Contains(out, "Some page content is not contained by landmarks") {
		t.Errorf("expected failure summary lines with details enabled:\n%s", out)
	}
}

func TestOutputFormatter_HTML(t *testing.T) {
	var buf bytes.Buffer
	if err := NewOutputFormatter().Write(sampleCheckResult(), domain.OutputFormatHTML, &buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Error("expected a standalone HTML document")
	}
	for _, want := range []string{"about.html", "status-FAIL", "status-ERROR", "impact-critical", "image-alt"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected HTML output to contain %q", want)
		}
	}
}

func TestOutputFormatter_HTMLEscapesMarkup(t *testing.T) {
	result := sampleCheckResult()
	result.Targets[1].Report.Findings[0].Nodes[0].HTML = `<img src="x" onerror="alert(1)">`

	var buf bytes.Buffer
	formatter := &OutputFormatterImpl{ShowDetails: true}
	if err := formatter.Write(result, domain.OutputFormatHTML, &buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if strings.Contains(buf.String(), `<img src="x"`) {
		t.Error("node markup must be escaped in HTML output")
	}
}

func TestOutputFormatter_UnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := NewOutputFormatter().Write(sampleCheckResult(), "pdf", &buf); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestSelectorString(t *testing.T) {
	target := []any{"iframe#main", []any{"#shadow-host", "button"}}
	if got := selectorString(target); got != "iframe#main > #shadow-host > button" {
		t.Errorf("unexpected selector: %s", got)
	}
}
