// Package browser drives headless Chrome through chromedp: pages and locators usable
// as audit inputs, and an Auditor that runs axe-core inside a page.
package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/chromedp"
)

// Options configures the browser process
type Options struct {
	// ExecPath overrides the Chrome binary; empty uses chromedp's lookup
	ExecPath string

	// Headful disables headless mode
	Headful bool

	// NoSandbox passes --no-sandbox, needed in most containers
	NoSandbox bool

	// WindowWidth and WindowHeight set the viewport; zero keeps Chrome's default
	WindowWidth  int
	WindowHeight int
}

// allocatorOptions builds the exec allocator options for o
func (o Options) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if o.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(o.ExecPath))
	}
	if o.Headful {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if o.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if o.WindowWidth > 0 && o.WindowHeight > 0 {
		opts = append(opts, chromedp.WindowSize(o.WindowWidth, o.WindowHeight))
	}
	return opts
}

// Browser is a running Chrome process. Pages opened from it are separate tabs.
type Browser struct {
	ctx           context.Context
	cancelAlloc   context.CancelFunc
	cancelBrowser context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// Launch starts Chrome. The process lives until Close is called; ctx only bounds startup.
func Launch(ctx context.Context, opts Options) (*Browser, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts.allocatorOptions()...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	b := &Browser{
		ctx:           browserCtx,
		cancelAlloc:   cancelAlloc,
		cancelBrowser: cancelBrowser,
	}
	if err := allocate(ctx, browserCtx); err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	return b, nil
}

// NewPage opens a blank tab
func (b *Browser) NewPage(ctx context.Context) (*Page, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, fmt.Errorf("browser is closed")
	}
	tabCtx, cancel := chromedp.NewContext(b.ctx)
	b.mu.Unlock()

	p := &Page{ctx: tabCtx, cancel: cancel}
	if err := allocate(ctx, tabCtx, chromedp.Navigate("about:blank")); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	return p, nil
}

// Close stops Chrome. It is safe to call more than once.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.cancelBrowser()
	b.cancelAlloc()
	return nil
}

// allocate performs the first Run on a chromedp context. That Run binds the browser
// process or tab to the context it receives, so it must not see a derived context.
func allocate(ctx, target context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(target, actions...)
}

// run executes actions against target while honoring the caller's cancellation.
// Cancelling ctx aborts the actions but leaves the tab open.
func run(ctx, target context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithCancel(target)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}
