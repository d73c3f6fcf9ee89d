// Package cdp implements browser.Driver over the Chrome DevTools Protocol
// using chromedp. It either launches a local Chrome or attaches to a
// running one through its DevTools websocket.
package cdp

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"github.com/golang/glog"

	"github.com/wanmail/loginsuite/browser"
)

// Config describes the browser to drive.
type Config struct {
	// RemoteURL is the DevTools websocket or HTTP endpoint of a running
	// browser, for example "ws://127.0.0.1:9222". When empty a local browser
	// is started.
	RemoteURL string
	// ExecPath is the browser binary started when RemoteURL is empty. Empty
	// lets chromedp look for Chrome on the PATH.
	ExecPath string
	Headless bool
	// NoSandbox passes --no-sandbox, needed inside most containers.
	NoSandbox bool
	// Args are extra "--name=value" or "--name" flags for a local browser.
	Args []string
	// ProxyServer, for example "socks5://127.0.0.1:1080", routes the
	// traffic of a local browser.
	ProxyServer string
	// Debug logs every DevTools message.
	Debug bool
}

// Driver is a browser.Driver backed by one browser tab.
type Driver struct {
	ctx     context.Context
	cancels []context.CancelFunc

	mu     sync.Mutex
	closed bool
}

var (
	_ browser.Driver    = (*Driver)(nil)
	_ browser.Versioner = (*Driver)(nil)
)

// Open starts (or attaches to) a browser and opens a tab in it. The browser
// is not bound to ctx: it lives until Quit is called.
func Open(ctx context.Context, cfg Config) (*Driver, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		allocCtx context.Context
		cancel   context.CancelFunc
	)
	if cfg.RemoteURL != "" {
		glog.V(1).Infof("cdp: attaching to %s", cfg.RemoteURL)
		allocCtx, cancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
	} else {
		glog.V(1).Infof("cdp: starting local browser (headless=%t)", cfg.Headless)
		allocCtx, cancel = chromedp.NewExecAllocator(context.Background(), allocatorOptions(cfg)...)
	}
	d := &Driver{cancels: []context.CancelFunc{cancel}}

	opts := []chromedp.ContextOption{
		chromedp.WithLogf(glog.Infof),
		chromedp.WithErrorf(glog.Errorf),
	}
	if cfg.Debug {
		opts = append(opts, chromedp.WithDebugf(glog.Infof))
	}
	tabCtx, cancel := chromedp.NewContext(allocCtx, opts...)
	d.ctx = tabCtx
	d.cancels = append(d.cancels, cancel)

	// The first Run allocates the browser. It must run on the tab context
	// itself, so the caller's ctx can only abort it by tearing down the tab.
	stop := context.AfterFunc(ctx, cancel)
	err := chromedp.Run(tabCtx)
	stop()
	if err != nil {
		d.release()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("starting browser: %w", err)
	}
	return d, nil
}

func allocatorOptions(cfg Config) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption(nil), chromedp.DefaultExecAllocatorOptions[:]...)
	if !cfg.Headless {
		opts = append(opts,
			chromedp.Flag("headless", false),
			chromedp.Flag("hide-scrollbars", false),
			chromedp.Flag("mute-audio", false),
		)
	}
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	if cfg.ProxyServer != "" {
		opts = append(opts, chromedp.ProxyServer(cfg.ProxyServer))
	}
	for _, a := range cfg.Args {
		name, value := splitFlag(a)
		opts = append(opts, chromedp.Flag(name, value))
	}
	return opts
}

// splitFlag turns "--name=value" into ("name", "value") and "--name" into
// ("name", true).
func splitFlag(arg string) (string, interface{}) {
	name, value, ok := strings.Cut(strings.TrimLeft(arg, "-"), "=")
	if !ok {
		return name, true
	}
	return name, value
}

// run executes actions on the tab, aborting them when ctx is done. Aborting
// leaves the tab open.
func (d *Driver) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return fmt.Errorf("cdp: driver is closed")
	}

	runCtx, cancel := context.WithCancel(d.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Open implements browser.Driver.
func (d *Driver) Open(ctx context.Context, url string) error {
	if err := d.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

// Find implements browser.Driver. It does not wait: a locator that matches
// nothing yields browser.ErrNoSuchElement immediately.
func (d *Driver) Find(ctx context.Context, loc browser.Locator) (browser.Element, error) {
	by, err := queryOption(loc)
	if err != nil {
		return nil, err
	}
	var nodes []*cdp.Node
	if err := d.run(ctx, chromedp.Nodes(loc.Value, &nodes, by, chromedp.AtLeast(0))); err != nil {
		return nil, fmt.Errorf("find %s: %w", loc, err)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("find %s: %w", loc, browser.ErrNoSuchElement)
	}
	return &element{d: d, node: nodes[0]}, nil
}

func queryOption(loc browser.Locator) (chromedp.QueryOption, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	switch loc.By {
	case browser.ByID:
		return chromedp.ByID, nil
	case browser.ByXPath:
		return chromedp.BySearch, nil
	}
	return chromedp.ByQuery, nil
}

// Title implements browser.Driver.
func (d *Driver) Title(ctx context.Context) (string, error) {
	var title string
	if err := d.run(ctx, chromedp.Title(&title)); err != nil {
		return "", err
	}
	return title, nil
}

// MaximizeWindow implements browser.Driver.
func (d *Driver) MaximizeWindow(ctx context.Context) error {
	return d.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		id, _, err := cdpbrowser.GetWindowForTarget().Do(ctx)
		if err != nil {
			return err
		}
		return cdpbrowser.SetWindowBounds(id, &cdpbrowser.Bounds{
			WindowState: cdpbrowser.WindowStateMaximized,
		}).Do(ctx)
	}))
}

// BrowserVersion implements browser.Versioner. It returns the product
// string, for example "HeadlessChrome/127.0.6533.88".
func (d *Driver) BrowserVersion(ctx context.Context) (string, error) {
	var product string
	err := d.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		_, product, _, _, _, err = cdpbrowser.GetVersion().Do(ctx)
		return err
	}))
	return product, err
}

// quitTimeout bounds the graceful close of the browser.
const quitTimeout = 10 * time.Second

// Quit implements browser.Driver. It closes the tab, and the browser too if
// this driver started it.
func (d *Driver) Quit() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- chromedp.Cancel(d.ctx) }()
	var err error
	select {
	case err = <-done:
	case <-time.After(quitTimeout):
		err = fmt.Errorf("cdp: closing browser timed out after %v", quitTimeout)
	}
	d.release()
	return err
}

func (d *Driver) release() {
	for i := len(d.cancels) - 1; i >= 0; i-- {
		d.cancels[i]()
	}
}

type element struct {
	d    *Driver
	node *cdp.Node
}

// IsDisplayed reports whether the node has a box model. Nodes that are not
// rendered (display: none, detached) have none.
func (e *element) IsDisplayed(ctx context.Context) (bool, error) {
	var shown bool
	err := e.d.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := dom.GetBoxModel().WithNodeID(e.node.NodeID).Do(ctx)
		shown = err == nil
		return nil
	}))
	return shown, err
}

func (e *element) SendKeys(ctx context.Context, keys string) error {
	if err := e.d.run(ctx, chromedp.KeyEventNode(e.node, keys)); err != nil {
		return fmt.Errorf("send keys: %w", err)
	}
	return nil
}

func (e *element) Click(ctx context.Context) error {
	if err := e.d.run(ctx, chromedp.MouseClickNode(e.node)); err != nil {
		return fmt.Errorf("click: %w", err)
	}
	return nil
}

func (e *element) Text(ctx context.Context) (string, error) {
	var text string
	if err := e.d.run(ctx, chromedp.Text([]cdp.NodeID{e.node.NodeID}, &text, chromedp.ByNodeID)); err != nil {
		return "", fmt.Errorf("text: %w", err)
	}
	return text, nil
}
