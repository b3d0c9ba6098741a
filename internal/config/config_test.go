package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ludo-technologies/a11yscan/domain"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config == nil {
		t.Fatal("DefaultConfig should not return nil")
	}

	// Verify audit defaults
	if config.Audit.FailFast {
		t.Error("FailFast should be disabled by default")
	}
	if config.Audit.SeverityWeights["critical"] != 10 || config.Audit.SeverityWeights["minor"] != 1 {
		t.Errorf("Unexpected default weights: %v", config.Audit.SeverityWeights)
	}
	if config.Audit.PageStrategy != "in-page" {
		t.Errorf("Expected page strategy 'in-page', got '%s'", config.Audit.PageStrategy)
	}

	// Verify output defaults
	if config.Output.Format != "text" {
		t.Errorf("Expected Format 'text', got '%s'", config.Output.Format)
	}

	// Verify scan defaults
	if !config.Scan.Recursive {
		t.Error("Recursive should be true by default")
	}
	if len(config.Scan.IncludePatterns) == 0 {
		t.Error("IncludePatterns should not be empty")
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestEmbeddedDefaultConfigMatchesDefaults(t *testing.T) {
	embedded, err := LoadDefaultConfig()
	if err != nil {
		t.Fatalf("LoadDefaultConfig failed: %v", err)
	}

	if !reflect.DeepEqual(embedded, DefaultConfig()) {
		t.Errorf("Embedded default config differs from DefaultConfig():\n%+v\n%+v", embedded, DefaultConfig())
	}
}

func TestLoadConfig_NoFile(t *testing.T) {
	config, err := loadConfigFromFile("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if config.Performance.MaxConcurrency != DefaultMaxConcurrency {
		t.Errorf("Expected default concurrency, got %d", config.Performance.MaxConcurrency)
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".a11yscan.yaml")
	content := `audit:
  fail_fast: true
  severity_weights:
    critical: 20
    unknown: 4
  disabled_rules: [color-contrast]
  run_options:
    resultTypes: [violations]
output:
  format: json
performance:
  max_concurrency: 2
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if !config.Audit.FailFast {
		t.Error("Expected fail_fast from file")
	}
	if config.Audit.SeverityWeights["critical"] != 20 {
		t.Errorf("Expected critical weight 20, got %d", config.Audit.SeverityWeights["critical"])
	}
	if config.Audit.SeverityWeights["serious"] != 5 {
		t.Errorf("Expected default serious weight to survive, got %d", config.Audit.SeverityWeights["serious"])
	}
	if config.Output.Format != "json" {
		t.Errorf("Expected json format, got %s", config.Output.Format)
	}
	if config.Performance.MaxConcurrency != 2 {
		t.Errorf("Expected concurrency 2, got %d", config.Performance.MaxConcurrency)
	}
	if _, ok := config.Audit.RunOptions["resultTypes"]; !ok {
		t.Errorf("Expected run option key case to be preserved, got %v", config.Audit.RunOptions)
	}

	audit := config.ToAuditConfiguration()
	if audit.Weight(domain.ImpactUnknown) != 4 {
		t.Errorf("Expected unknown weight 4, got %d", audit.Weight(domain.ImpactUnknown))
	}
	rules, ok := audit.RunOptions["rules"].(map[string]any)
	if !ok || rules["color-contrast"] == nil {
		t.Errorf("Expected disabled rule in run options, got %v", audit.RunOptions)
	}
}

func TestLoadConfig_TOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".a11yscan.toml")
	content := `[audit]
fail_fast = true

[audit.severity_weights]
critical = 20

[audit.run_options]
resultTypes = ["violations"]

[audit.run_options.runOnly]
type = "tag"
values = ["wcag2a"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if !config.Audit.FailFast {
		t.Error("Expected fail_fast from file")
	}
	for _, key := range []string{"resultTypes", "runOnly"} {
		if _, ok := config.Audit.RunOptions[key]; !ok {
			t.Errorf("Expected run option %s with its key case, got %v", key, config.Audit.RunOptions)
		}
	}
	if _, ok := config.Audit.RunOptions["resulttypes"]; ok {
		t.Error("Lower-cased run option keys must not remain")
	}

	audit := config.ToAuditConfiguration()
	if audit.Weight(domain.ImpactCritical) != 20 {
		t.Errorf("Expected critical weight 20, got %d", audit.Weight(domain.ImpactCritical))
	}
	if audit.Weight(domain.ImpactSerious) != 5 {
		t.Errorf("Expected default serious weight 5, got %d", audit.Weight(domain.ImpactSerious))
	}
}

func TestToAuditConfiguration_OverlaysDefaultWeights(t *testing.T) {
	config := &Config{Audit: AuditConfig{SeverityWeights: map[string]int{"critical": 7}}}

	audit := config.ToAuditConfiguration()

	want := map[domain.Impact]int{
		domain.ImpactCritical: 7,
		domain.ImpactSerious:  5,
		domain.ImpactModerate: 3,
		domain.ImpactMinor:    1,
	}
	if !reflect.DeepEqual(audit.SeverityWeights, want) {
		t.Errorf("SeverityWeights = %v, want %v", audit.SeverityWeights, want)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("A11YSCAN_AUDIT_FAIL_FAST", "true")
	t.Setenv("A11YSCAN_OUTPUT_FORMAT", "csv")

	config, err := loadConfigFromFile("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !config.Audit.FailFast {
		t.Error("Expected env to enable fail_fast")
	}
	if config.Output.Format != "csv" {
		t.Errorf("Expected env format csv, got %s", config.Output.Format)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad format", "output:\n  format: pdf\n", "output.format"},
		{"bad impact", "audit:\n  severity_weights:\n    blocker: 3\n", "blocker"},
		{"negative weight", "audit:\n  severity_weights:\n    minor: -1\n", "must be >= 0"},
		{"bad strategy", "audit:\n  page_strategy: remote\n", "page_strategy"},
		{"zero concurrency", "performance:\n  max_concurrency: 0\n", "max_concurrency"},
		{"bad log level", "log_level: loud\n", "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "a11yscan.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadConfig(path)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestFindDefaultConfig_SearchesUpward(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "site", "pages")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(root, ".a11yscan.yml")
	if err := os.WriteFile(configPath, []byte("log_level: info\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	page := filepath.Join(nested, "index.html")
	if err := os.WriteFile(page, []byte("<p></p>"), 0o644); err != nil {
		t.Fatal(err)
	}

	if found := findDefaultConfig(page); found != configPath {
		t.Errorf("Expected %s, got %s", configPath, found)
	}

	config, err := LoadConfigWithTarget("", nested)
	if err != nil {
		t.Fatalf("LoadConfigWithTarget failed: %v", err)
	}
	if config.LogLevel != "info" {
		t.Errorf("Expected discovered config to load, got log level %s", config.LogLevel)
	}
}

func TestBuildRunOptions(t *testing.T) {
	audit := AuditConfig{
		RunOptions: map[string]any{
			"rules":    map[string]any{"region": map[string]any{"enabled": false}},
			"reporter": "v2",
		},
		DisabledRules: []string{"color-contrast"},
		Tags:          []string{"wcag2aa"},
	}

	opts := audit.BuildRunOptions()

	rules := opts["rules"].(map[string]any)
	if len(rules) != 2 {
		t.Errorf("Expected both rule entries, got %v", rules)
	}
	if opts["reporter"] != "v2" {
		t.Errorf("Expected reporter to pass through, got %v", opts["reporter"])
	}
	runOnly := opts["runOnly"].(map[string]any)
	if runOnly["type"] != "tag" {
		t.Errorf("Unexpected runOnly: %v", runOnly)
	}
	if len(audit.RunOptions["rules"].(map[string]any)) != 1 {
		t.Error("BuildRunOptions must not modify the configured bag")
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	config := DefaultConfig()
	config.Audit.FailFast = true
	config.Output.Format = "html"

	if err := SaveConfig(config, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !loaded.Audit.FailFast || loaded.Output.Format != "html" {
		t.Errorf("Saved values not restored: %+v", loaded.Audit)
	}
}

func TestTemplatesParse(t *testing.T) {
	for projectType := range GetProjectPresets() {
		for strictness, preset := range GetStrictnessPresets() {
			path := filepath.Join(t.TempDir(), ".a11yscan.yaml")
			if err := os.WriteFile(path, []byte(GetFullConfigTemplate(projectType, strictness)), 0o644); err != nil {
				t.Fatal(err)
			}
			config, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("Template %s/%s does not load: %v", projectType, strictness, err)
			}
			if config.Audit.FailFast != preset.FailFast {
				t.Errorf("Template %s/%s: expected fail_fast %v", projectType, strictness, preset.FailFast)
			}
			if !reflect.DeepEqual(config.Audit.Tags, preset.Tags) {
				t.Errorf("Template %s/%s: expected tags %v, got %v", projectType, strictness, preset.Tags, config.Audit.Tags)
			}
		}
	}

	path := filepath.Join(t.TempDir(), ".a11yscan.yaml")
	if err := os.WriteFile(path, []byte(GetMinimalConfigTemplate()), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err != nil {
		t.Errorf("Minimal template does not load: %v", err)
	}
}
