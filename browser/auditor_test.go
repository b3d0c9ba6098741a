package browser

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ludo-technologies/a11yscan/domain"
	"github.com/ludo-technologies/a11yscan/internal/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedPage answers Evaluate calls from canned JSON, keyed by function declaration
type scriptedPage struct {
	responses map[string]string
	errs      map[string]error
	calls     []evalCall
}

type evalCall struct {
	fn   string
	args []any
}

func (p *scriptedPage) Content(context.Context) (string, error) { return "", nil }

func (p *scriptedPage) Evaluate(_ context.Context, fn string, out any, args ...any) error {
	p.calls = append(p.calls, evalCall{fn: fn, args: args})
	if err := p.errs[fn]; err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal([]byte(p.responses[fn]), out)
}

const axeResult = `{
  "testEngine": {"name": "axe-core", "version": "4.10.0"},
  "url": "https://example.com/",
  "timestamp": "2026-01-02T03:04:05.000Z",
  "violations": [{
    "id": "image-alt",
    "impact": "critical",
    "description": "Ensures <img> elements have alternate text",
    "help": "Images must have alternate text",
    "helpUrl": "https://dequeuniversity.com/rules/axe/4.10/image-alt",
    "tags": ["wcag2a"],
    "nodes": [{"html": "<img src=\"a.png\">", "target": ["img"], "impact": "critical"}]
  }],
  "passes": [{"id": "document-title", "description": "d", "helpUrl": "u", "nodes": []}],
  "incomplete": [],
  "inapplicable": []
}`

func newScriptedPage() *scriptedPage {
	return &scriptedPage{
		responses: map[string]string{
			injectSourceFn: `true`,
			injectURLFn:    `true`,
			runFn:          axeResult,
		},
		errs: map[string]error{},
	}
}

func TestNewAuditor_RequiresScript(t *testing.T) {
	_, err := NewAuditor(nil, AuditorConfig{})
	require.Error(t, err)

	var cfgErr *domain.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestNewAuditor_ReadsScriptPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "axe.min.js")
	require.NoError(t, os.WriteFile(path, []byte("window.axe = {};"), 0o644))

	a, err := NewAuditor(nil, AuditorConfig{ScriptPath: path})
	require.NoError(t, err)
	assert.Equal(t, "window.axe = {};", a.script)

	_, err = NewAuditor(nil, AuditorConfig{ScriptPath: filepath.Join(t.TempDir(), "missing.js")})
	assert.Error(t, err)
}

func TestAuditor_RunsInPlace(t *testing.T) {
	p := newScriptedPage()
	a, err := NewAuditor(nil, AuditorConfig{Script: "/* axe */"})
	require.NoError(t, err)

	opts := domain.RunOnlyTags("wcag2a")
	raw, err := a.Run(context.Background(), domain.AuditableDocument{Page: p}, opts)

	require.NoError(t, err)
	require.Len(t, raw.Violations, 1)
	assert.Equal(t, "image-alt", raw.Violations[0].ID)
	assert.Equal(t, domain.ImpactCritical, raw.Violations[0].Impact)
	assert.Equal(t, "https://dequeuniversity.com/rules/axe/4.10/image-alt", raw.Violations[0].HelpURL)
	assert.Equal(t, []any{"img"}, raw.Violations[0].Nodes[0].Target)
	assert.Len(t, raw.Passes, 1)
	assert.Equal(t, "4.10.0", raw.TestEngine.Version)

	require.Len(t, p.calls, 2)
	assert.Equal(t, injectSourceFn, p.calls[0].fn)
	assert.Equal(t, []any{"/* axe */"}, p.calls[0].args)
	assert.Equal(t, runFn, p.calls[1].fn)
	assert.Equal(t, []any{opts}, p.calls[1].args)
}

func TestAuditor_InjectsFromURL(t *testing.T) {
	p := newScriptedPage()
	a, err := NewAuditor(nil, AuditorConfig{ScriptURL: "https://cdn.example.com/axe.min.js"})
	require.NoError(t, err)

	_, err = a.Run(context.Background(), domain.AuditableDocument{Page: p}, nil)

	require.NoError(t, err)
	assert.Equal(t, injectURLFn, p.calls[0].fn)
	assert.Equal(t, []any{"https://cdn.example.com/axe.min.js"}, p.calls[0].args)
	assert.Equal(t, []any{domain.RunOptions{}}, p.calls[1].args)
}

func TestAuditor_Failures(t *testing.T) {
	boom := errors.New("execution context destroyed")

	tests := []struct {
		name   string
		mutate func(p *scriptedPage)
		op     string
	}{
		{"inject error", func(p *scriptedPage) { p.errs[injectSourceFn] = boom }, "inject"},
		{"axe missing after inject", func(p *scriptedPage) { p.responses[injectSourceFn] = `false` }, "inject"},
		{"run error", func(p *scriptedPage) { p.errs[runFn] = boom }, "run"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newScriptedPage()
			tt.mutate(p)
			a, err := NewAuditor(nil, AuditorConfig{Script: "x"})
			require.NoError(t, err)

			_, err = a.Run(context.Background(), domain.AuditableDocument{Page: p}, nil)

			var auditorErr *domain.AuditorError
			require.True(t, errors.As(err, &auditorErr))
			assert.Equal(t, tt.op, auditorErr.Op)
		})
	}
}

func TestAuditor_LocalDocumentWithoutBrowser(t *testing.T) {
	a, err := NewAuditor(nil, AuditorConfig{Script: "x"})
	require.NoError(t, err)

	body, err := dom.New().SetBodyHTML("<p>hi</p>")
	require.NoError(t, err)
	_, err = a.Run(context.Background(), domain.AuditableDocument{Node: body}, nil)

	var auditorErr *domain.AuditorError
	require.True(t, errors.As(err, &auditorErr))
	assert.Equal(t, "load", auditorErr.Op)
}

func TestCallExpression(t *testing.T) {
	expr, err := callExpression("  function(a, b) { return a; }\n", "x", map[string]any{"n": 1})
	require.NoError(t, err)
	assert.Equal(t, `(function(a, b) { return a; })("x", {"n":1})`, expr)

	expr, err = callExpression("function() {}")
	require.NoError(t, err)
	assert.Equal(t, `(function() {})()`, expr)

	_, err = callExpression("function(c) {}", make(chan int))
	assert.Error(t, err)
}

func TestOptionsAllocator(t *testing.T) {
	base := len(Options{}.allocatorOptions())
	full := Options{ExecPath: "/usr/bin/chromium", Headful: true, NoSandbox: true, WindowWidth: 1280, WindowHeight: 800}
	assert.Equal(t, base+4, len(full.allocatorOptions()))

	partialWindow := Options{WindowWidth: 1280}
	assert.Equal(t, base, len(partialWindow.allocatorOptions()))
}

func TestHandleKinds(t *testing.T) {
	p := &Page{}
	assert.Equal(t, domain.HandleKindPage, p.HandleKind())
	l := p.Locator("main")
	assert.Equal(t, domain.HandleKindRegion, l.HandleKind())
	assert.Equal(t, "main", l.Selector())

	var _ domain.PageHandle = p
	var _ domain.RegionHandle = l
}
