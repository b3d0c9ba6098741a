package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/ludo-technologies/a11yscan/domain"
)

// Page is a browser tab. It satisfies domain.PageHandle.
type Page struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// HandleKind identifies the page for input classification
func (p *Page) HandleKind() domain.HandleKind {
	return domain.HandleKindPage
}

// Navigate loads url and waits for the load event
func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := run(ctx, p.ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// SetContent replaces the document of the page's main frame with markup
func (p *Page) SetContent(ctx context.Context, markup string) error {
	return run(ctx, p.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		return page.SetDocumentContent(tree.Frame.ID, markup).Do(ctx)
	}))
}

// Content returns the serialized markup of the whole page
func (p *Page) Content(ctx context.Context) (string, error) {
	var markup string
	if err := run(ctx, p.ctx, chromedp.OuterHTML("html", &markup, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return markup, nil
}

// URL returns the current location of the page
func (p *Page) URL(ctx context.Context) (string, error) {
	var url string
	if err := run(ctx, p.ctx, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

// Evaluate calls the function declaration fn with args and decodes the awaited result into out
func (p *Page) Evaluate(ctx context.Context, fn string, out any, args ...any) error {
	expr, err := callExpression(fn, args...)
	if err != nil {
		return err
	}

	awaitPromise := func(params *runtime.EvaluateParams) *runtime.EvaluateParams {
		return params.WithAwaitPromise(true)
	}
	if out == nil {
		return run(ctx, p.ctx, chromedp.Evaluate(expr, nil, awaitPromise))
	}

	var raw []byte
	if err := run(ctx, p.ctx, chromedp.Evaluate(expr, &raw, awaitPromise)); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode evaluation result: %w", err)
	}
	return nil
}

// Locator returns a region handle for the first element matching selector
func (p *Page) Locator(selector string) *Locator {
	return &Locator{page: p, selector: selector}
}

// Close closes the tab
func (p *Page) Close() error {
	p.cancel()
	return nil
}

// Locator is a CSS-selected element inside a Page. It satisfies domain.RegionHandle.
type Locator struct {
	page     *Page
	selector string
}

// HandleKind identifies the locator for input classification
func (l *Locator) HandleKind() domain.HandleKind {
	return domain.HandleKindRegion
}

// Selector returns the CSS selector
func (l *Locator) Selector() string {
	return l.selector
}

// InnerHTML returns the markup of the element's children
func (l *Locator) InnerHTML(ctx context.Context) (string, error) {
	var markup string
	if err := run(ctx, l.page.ctx, chromedp.InnerHTML(l.selector, &markup, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read %q: %w", l.selector, err)
	}
	return markup, nil
}

// Click clicks the element
func (l *Locator) Click(ctx context.Context) error {
	return run(ctx, l.page.ctx, chromedp.Click(l.selector, chromedp.ByQuery))
}

// callExpression builds an expression invoking a function declaration with JSON-encoded arguments
func callExpression(fn string, args ...any) (string, error) {
	encoded := make([]string, len(args))
	for i, arg := range args {
		b, err := json.Marshal(arg)
		if err != nil {
			return "", fmt.Errorf("failed to encode argument %d: %w", i, err)
		}
		encoded[i] = string(b)
	}
	return fmt.Sprintf("(%s)(%s)", strings.TrimSpace(fn), strings.Join(encoded, ", ")), nil
}
