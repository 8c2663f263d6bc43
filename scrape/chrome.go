package scrape

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"
)

// networkIdle is the lifecycle event fired once at most two network
// connections remain open for 500ms.
const networkIdle = "networkAlmostIdle"

// lifecycleInit is the first lifecycle event of a new document.
const lifecycleInit = "init"

// Chrome launches a headless Chrome through the DevTools protocol.
type Chrome struct {
	// ExecPath overrides the browser binary. Empty means search the usual
	// locations.
	ExecPath  string
	UserAgent string
	Width     int
	Height    int
}

func (c Chrome) Launch(ctx context.Context) (Page, error) {
	width, height := c.Width, c.Height
	if width <= 0 || height <= 0 {
		width, height = DefaultViewportWidth, DefaultViewportHeight
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.WindowSize(width, height),
	)
	if c.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.ExecPath))
	}
	if c.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(c.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	// The first Run starts the browser; it must not happen under a
	// per-action timeout or the browser dies with it.
	err := chromedp.Run(tabCtx,
		page.SetLifecycleEventsEnabled(true),
		chromedp.EmulateViewport(int64(width), int64(height)),
	)
	if err != nil {
		cancelTab()
		cancelAlloc()
		return nil, errors.Wrap(err, "could not start chrome")
	}

	return &chromePage{
		ctx: tabCtx,
		cancel: func() {
			cancelTab()
			cancelAlloc()
		},
	}, nil
}

type chromePage struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func (p *chromePage) Navigate(url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()

	var frame cdp.FrameID
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		frame = tree.Frame.ID
		return nil
	}))
	if err != nil {
		return errors.Wrap(err, "could not read frame tree")
	}

	idle := make(chan struct{})
	var once sync.Once
	w := &idleWatcher{frame: frame}
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		if e, ok := ev.(*page.EventLifecycleEvent); ok && w.observe(e) {
			once.Do(func() { close(idle) })
		}
	})

	if err := chromedp.Run(ctx, chromedp.Navigate(url)); err != nil {
		return err
	}

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for network to settle")
	}
}

// idleWatcher reports when the main frame's new document reaches network
// idle. Events of other frames, and of the document shown before the
// navigation started, are ignored.
type idleWatcher struct {
	mu      sync.Mutex
	frame   cdp.FrameID
	started bool
}

func (w *idleWatcher) observe(e *page.EventLifecycleEvent) bool {
	if e.FrameID != w.frame {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	switch e.Name {
	case lifecycleInit:
		w.started = true
	case networkIdle:
		return w.started
	}
	return false
}

func (p *chromePage) WaitForSelector(selector string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx, chromedp.WaitReady(selector, chromedp.ByQuery))
}

func (p *chromePage) Content() (string, error) {
	var html string
	err := chromedp.Run(p.ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (p *chromePage) Close() error {
	err := chromedp.Cancel(p.ctx)
	p.cancel()
	return err
}
