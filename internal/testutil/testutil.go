// Package testutil provides helpers and fake auditors for testing a11yscan components
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ludo-technologies/a11yscan/domain"
	"github.com/ludo-technologies/a11yscan/internal/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// CreateTestElement builds a detached element from markup
func CreateTestElement(t testing.TB, markup string) *html.Node {
	t.Helper()
	node, err := dom.CreateElement(markup)
	if err != nil {
		t.Fatalf("Failed to create element: %v", err)
	}
	return node
}

// WriteFiles creates files under dir; keys are slash-separated relative paths
func WriteFiles(t testing.TB, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
}

// Violation builds a finding with one node
func Violation(id string, impact domain.Impact, description string) domain.Finding {
	return domain.Finding{
		ID:          id,
		Impact:      impact,
		Description: description,
		Help:        description,
		HelpURL:     "https://dequeuniversity.com/rules/axe/4.10/" + id,
		Nodes:       []domain.NodeResult{{HTML: "<div></div>", Target: []any{"div"}}},
	}
}

// StaticAuditor returns the same result for every run and records what it received
type StaticAuditor struct {
	Result *domain.RawAuditResult
	Err    error

	mu    sync.Mutex
	calls []domain.RunOptions
}

func (a *StaticAuditor) Run(_ context.Context, _ domain.AuditableDocument, opts domain.RunOptions) (*domain.RawAuditResult, error) {
	a.mu.Lock()
	a.calls = append(a.calls, opts)
	a.mu.Unlock()
	if a.Err != nil {
		return nil, a.Err
	}
	if a.Result == nil {
		return &domain.RawAuditResult{}, nil
	}
	copied := *a.Result
	return &copied, nil
}

// Calls returns the run options of every call so far
func (a *StaticAuditor) Calls() []domain.RunOptions {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.RunOptions(nil), a.calls...)
}

// RuleAuditor inspects local documents with two rules: images need an alt attribute
// (critical) and buttons need text (serious). Rules disabled through the "rules"
// run option are skipped.
type RuleAuditor struct{}

func (RuleAuditor) Run(_ context.Context, doc domain.AuditableDocument, opts domain.RunOptions) (*domain.RawAuditResult, error) {
	if doc.Node == nil {
		return nil, domain.NewAuditorError("run", os.ErrInvalid)
	}

	imageAlt := domain.Finding{
		ID:          "image-alt",
		Impact:      domain.ImpactCritical,
		Description: "Ensures <img> elements have alternate text or a role of none or presentation",
		Help:        "Images must have alternate text",
		HelpURL:     "https://dequeuniversity.com/rules/axe/4.10/image-alt",
		Tags:        []string{"wcag2a", "wcag111"},
	}
	buttonName := domain.Finding{
		ID:          "button-name",
		Impact:      domain.ImpactSerious,
		Description: "Ensures buttons have discernible text",
		Help:        "Buttons must have discernible text",
		HelpURL:     "https://dequeuniversity.com/rules/axe/4.10/button-name",
		Tags:        []string{"wcag2a", "wcag412"},
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Img:
				if !hasAttr(n, "alt") {
					imageAlt.Nodes = append(imageAlt.Nodes, nodeResult(n, domain.ImpactCritical))
				}
			case atom.Button:
				if strings.TrimSpace(textContent(n)) == "" && !hasAttr(n, "aria-label") {
					buttonName.Nodes = append(buttonName.Nodes, nodeResult(n, domain.ImpactSerious))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc.Node)

	result := &domain.RawAuditResult{
		TestEngine: domain.TestEngine{Name: "rule-auditor", Version: "1.0.0"},
	}
	for _, f := range []domain.Finding{imageAlt, buttonName} {
		switch {
		case disabled(opts, f.ID):
			result.Inapplicable = append(result.Inapplicable, f)
		case len(f.Nodes) > 0:
			result.Violations = append(result.Violations, f)
		default:
			result.Passes = append(result.Passes, f)
		}
	}
	return result, nil
}

func disabled(opts domain.RunOptions, id string) bool {
	rules, ok := opts["rules"].(map[string]any)
	if !ok {
		return false
	}
	rule, ok := rules[id].(map[string]any)
	if !ok {
		return false
	}
	enabled, ok := rule["enabled"].(bool)
	return ok && !enabled
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}

func nodeResult(n *html.Node, impact domain.Impact) domain.NodeResult {
	return domain.NodeResult{
		HTML:   dom.OuterHTML(n),
		Target: []any{n.Data},
		Impact: impact,
	}
}
