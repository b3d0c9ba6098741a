package browser

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ludo-technologies/a11yscan/domain"
	"github.com/rs/zerolog"
)

const (
	injectSourceFn = `function(src) {
  if (window.axe) { return true; }
  (0, eval)(src);
  return !!window.axe;
}`

	injectURLFn = `function(url) {
  if (window.axe) { return Promise.resolve(true); }
  return new Promise(function(resolve, reject) {
    var s = document.createElement('script');
    s.src = url;
    s.onload = function() { resolve(!!window.axe); };
    s.onerror = function() { reject(new Error('failed to load ' + url)); };
    (document.head || document.documentElement).appendChild(s);
  });
}`

	runFn = `function(opts) {
  return window.axe.run(document, opts || {});
}`
)

// AuditorConfig tells the auditor where to find axe-core
type AuditorConfig struct {
	// Script is the axe-core source; takes precedence over ScriptPath and ScriptURL
	Script string

	// ScriptPath is a local axe.min.js
	ScriptPath string

	// ScriptURL is loaded through a script tag when no source is available
	ScriptURL string

	// Timeout bounds one Run; zero means no limit beyond the caller's context
	Timeout time.Duration
}

// Auditor runs axe-core inside a browser page. Local documents are rendered into a
// fresh tab; remote documents are audited in place.
type Auditor struct {
	browser   *Browser
	script    string
	scriptURL string
	timeout   time.Duration
}

// NewAuditor creates an auditor. browser may be nil when only remote documents are audited.
func NewAuditor(browser *Browser, cfg AuditorConfig) (*Auditor, error) {
	script := cfg.Script
	if script == "" && cfg.ScriptPath != "" {
		data, err := os.ReadFile(cfg.ScriptPath)
		if err != nil {
			return nil, domain.NewConfigError(fmt.Sprintf("cannot read axe script %s", cfg.ScriptPath), err)
		}
		script = string(data)
	}
	if script == "" && cfg.ScriptURL == "" {
		return nil, domain.NewConfigError("an axe script path or URL is required", nil)
	}
	return &Auditor{
		browser:   browser,
		script:    script,
		scriptURL: cfg.ScriptURL,
		timeout:   cfg.Timeout,
	}, nil
}

// Run audits doc with opts. Every failure is returned as a *domain.AuditorError.
func (a *Auditor) Run(ctx context.Context, doc domain.AuditableDocument, opts domain.RunOptions) (*domain.RawAuditResult, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	logger := zerolog.Ctx(ctx)

	target := doc.Page
	if target == nil {
		page, err := a.load(ctx, doc)
		if err != nil {
			return nil, err
		}
		defer page.Close()
		target = page
	}

	if err := a.inject(ctx, target); err != nil {
		return nil, err
	}

	if opts == nil {
		opts = domain.RunOptions{}
	}
	var result domain.RawAuditResult
	start := time.Now()
	if err := target.Evaluate(ctx, runFn, &result, opts); err != nil {
		return nil, domain.NewAuditorError("run", err)
	}
	logger.Debug().
		Dur("elapsed", time.Since(start)).
		Int("violations", len(result.Violations)).
		Str("engine", result.TestEngine.Version).
		Msg("axe run finished")

	return &result, nil
}

// load renders a local document into a new tab
func (a *Auditor) load(ctx context.Context, doc domain.AuditableDocument) (*Page, error) {
	if a.browser == nil {
		return nil, domain.NewAuditorError("load", fmt.Errorf("no browser available for local documents"))
	}
	markup, err := doc.Markup()
	if err != nil {
		return nil, domain.NewAuditorError("load", err)
	}
	page, err := a.browser.NewPage(ctx)
	if err != nil {
		return nil, domain.NewAuditorError("load", err)
	}
	if err := page.SetContent(ctx, markup); err != nil {
		page.Close()
		return nil, domain.NewAuditorError("load", err)
	}
	return page, nil
}

// inject makes window.axe available in target
func (a *Auditor) inject(ctx context.Context, target domain.PageHandle) error {
	var ok bool
	var err error
	if a.script != "" {
		err = target.Evaluate(ctx, injectSourceFn, &ok, a.script)
	} else {
		err = target.Evaluate(ctx, injectURLFn, &ok, a.scriptURL)
	}
	if err != nil {
		return domain.NewAuditorError("inject", err)
	}
	if !ok {
		return domain.NewAuditorError("inject", fmt.Errorf("axe is not defined after injection"))
	}
	return nil
}
