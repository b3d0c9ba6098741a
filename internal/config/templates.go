package config

import (
	"strconv"
	"strings"
)

// ProjectType represents the kind of site being audited
type ProjectType string

const (
	ProjectTypeGeneric    ProjectType = "generic"
	ProjectTypeStaticSite ProjectType = "static"
	ProjectTypeTemplates  ProjectType = "templates"
)

// Strictness represents the audit strictness level
type Strictness string

const (
	StrictnessRelaxed  Strictness = "relaxed"
	StrictnessStandard Strictness = "standard"
	StrictnessStrict   Strictness = "strict"
)

// ProjectPreset holds file selection presets for different project types
type ProjectPreset struct {
	IncludePatterns []string
	ExcludePatterns []string
}

// StrictnessPreset holds policy values for different strictness levels
type StrictnessPreset struct {
	FailFast       bool
	Tags           []string
	CriticalWeight int
	SeriousWeight  int
	ModerateWeight int
	MinorWeight    int
	DisabledRules  []string
}

// GetProjectPresets returns presets for different project types
func GetProjectPresets() map[ProjectType]ProjectPreset {
	return map[ProjectType]ProjectPreset{
		ProjectTypeGeneric: {
			IncludePatterns: []string{"**/*.html", "**/*.htm"},
			ExcludePatterns: []string{"node_modules", ".git"},
		},
		ProjectTypeStaticSite: {
			IncludePatterns: []string{"public/**/*.html", "dist/**/*.html", "_site/**/*.html"},
			ExcludePatterns: []string{"node_modules", ".git", "*.min.html"},
		},
		ProjectTypeTemplates: {
			IncludePatterns: []string{"templates/**/*.html", "views/**/*.html", "**/*.htm"},
			ExcludePatterns: []string{"node_modules", ".git", "vendor"},
		},
	}
}

// GetStrictnessPresets returns presets for different strictness levels
func GetStrictnessPresets() map[Strictness]StrictnessPreset {
	return map[Strictness]StrictnessPreset{
		StrictnessRelaxed: {
			FailFast:       false,
			Tags:           []string{"wcag2a"},
			CriticalWeight: 10,
			SeriousWeight:  5,
			ModerateWeight: 3,
			MinorWeight:    1,
			DisabledRules:  []string{"region", "color-contrast"},
		},
		StrictnessStandard: {
			FailFast:       false,
			Tags:           []string{"wcag2a", "wcag2aa", "wcag21a", "wcag21aa"},
			CriticalWeight: 10,
			SeriousWeight:  5,
			ModerateWeight: 3,
			MinorWeight:    1,
		},
		StrictnessStrict: {
			FailFast:       true,
			Tags:           []string{"wcag2a", "wcag2aa", "wcag21a", "wcag21aa", "wcag22aa", "best-practice"},
			CriticalWeight: 20,
			SeriousWeight:  10,
			ModerateWeight: 5,
			MinorWeight:    2,
		},
	}
}

// GetFullConfigTemplate returns the documented config template as YAML
func GetFullConfigTemplate(projectType ProjectType, strictness Strictness) string {
	preset, ok := GetProjectPresets()[projectType]
	if !ok {
		preset = GetProjectPresets()[ProjectTypeGeneric]
	}
	strict, ok := GetStrictnessPresets()[strictness]
	if !ok {
		strict = GetStrictnessPresets()[StrictnessStandard]
	}

	return `# a11yscan configuration
# Documentation: https://github.com/ludo-technologies/a11yscan

# =============================================================================
# AUDIT POLICY
# =============================================================================
audit:
  # Fail the run (exit code 1) as soon as any violation is found
  fail_fast: ` + strconv.FormatBool(strict.FailFast) + `

  # Weight of each violation in the severity score, by impact.
  # Violations without an impact count as "unknown" (weight 1 unless set here).
  severity_weights:
    critical: ` + strconv.Itoa(strict.CriticalWeight) + `
    serious: ` + strconv.Itoa(strict.SeriousWeight) + `
    moderate: ` + strconv.Itoa(strict.ModerateWeight) + `
    minor: ` + strconv.Itoa(strict.MinorWeight) + `

  # Only run rules carrying one of these axe-core tags
  tags: ` + formatYAMLList(strict.Tags, 4) + `

  # axe-core rule IDs to switch off
  disabled_rules: ` + formatYAMLList(strict.DisabledRules, 4) + `

  # Options passed to axe.run as-is (keys keep their case)
  run_options: {}

  # How URLs are audited: "in-page" runs axe in the live page,
  # "serialize" copies the page markup into a local document first
  page_strategy: in-page

# =============================================================================
# AXE-CORE
# =============================================================================
axe:
  # Local axe.min.js; takes precedence over script_url
  script_path: ""
  script_url: ` + DefaultAxeScriptURL + `

# =============================================================================
# BROWSER
# =============================================================================
browser:
  exec_path: ""
  headful: false
  # Required in most containers
  no_sandbox: false
  window_width: 1280
  window_height: 800

# =============================================================================
# OUTPUT
# =============================================================================
output:
  # text, json, yaml, csv, html
  format: text
  show_details: false
  directory: ""

# =============================================================================
# FILE SELECTION
# =============================================================================
scan:
  include_patterns: ` + formatYAMLList(preset.IncludePatterns, 4) + `
  exclude_patterns: ` + formatYAMLList(preset.ExcludePatterns, 4) + `
  recursive: true
  respect_gitignore: true

performance:
  max_concurrency: ` + strconv.Itoa(DefaultMaxConcurrency) + `
  timeout_seconds: ` + strconv.Itoa(DefaultTimeoutSeconds) + `

log_level: warn
`
}

// GetMinimalConfigTemplate returns a minimal config template
func GetMinimalConfigTemplate() string {
	return `# a11yscan configuration (minimal)
# See full options: https://github.com/ludo-technologies/a11yscan

audit:
  fail_fast: false
  tags: [wcag2a, wcag2aa]

scan:
  include_patterns: ["**/*.html", "**/*.htm"]
  exclude_patterns: [node_modules, .git]
`
}

// formatYAMLList formats a string slice as a YAML block sequence indented by indent spaces
func formatYAMLList(items []string, indent int) string {
	if len(items) == 0 {
		return "[]"
	}

	pad := strings.Repeat(" ", indent)
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString("\n" + pad + "- " + strconv.Quote(item))
	}
	return sb.String()
}
