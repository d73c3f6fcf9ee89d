package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/golang/glog"

	"github.com/wanmail/loginsuite/browser"
	"github.com/wanmail/loginsuite/browser/cdp"
	"github.com/wanmail/loginsuite/browser/webdriver"
	"github.com/wanmail/loginsuite/internal/config"
	"github.com/wanmail/loginsuite/scenario"
	"github.com/wanmail/loginsuite/site"
)

// environment is what the scenarios run against: the site URLs, the local
// replica when one is served, and the factory of browser sessions.
type environment struct {
	urls    site.URLs
	factory scenario.SessionFactory

	srv   *http.Server
	proxy *site.Proxy
}

func newEnvironment(cfg *config.Config) (*environment, error) {
	urls, err := site.NewURLs(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	env := &environment{urls: urls}

	var proxyAddr string
	if cfg.LocalSite && cfg.Backend != config.Fake {
		if err := env.serveReplica(cfg); err != nil {
			env.Close()
			return nil, err
		}
		proxyAddr = env.proxy.Addr()
	}

	switch cfg.Backend {
	case config.WebDriver:
		env.factory = func(ctx context.Context, runID string) (browser.Driver, error) {
			d, err := webdriver.Open(ctx, webdriver.Config{
				RemoteURL:       cfg.RemoteURL,
				Browser:         cfg.Browser,
				BrowserPath:     cfg.BrowserPath,
				Headless:        !cfg.Headed,
				Name:            "loginsuite " + runID,
				BrowserLogLevel: cfg.BrowserLogLevel,
				SOCKSProxy:      proxyAddr,
				PageLoadTimeout: cfg.PageLoadTimeout,
				Debug:           cfg.Debug,
			})
			if err != nil {
				return nil, err
			}
			return d, nil
		}
	case config.CDP:
		c := cdp.Config{
			RemoteURL: cfg.RemoteURL,
			ExecPath:  cfg.BrowserPath,
			Headless:  !cfg.Headed,
			NoSandbox: true,
			Debug:     cfg.Debug,
		}
		if proxyAddr != "" {
			c.ProxyServer = "socks5://" + proxyAddr
		}
		env.factory = func(ctx context.Context, runID string) (browser.Driver, error) {
			d, err := cdp.Open(ctx, c)
			if err != nil {
				return nil, err
			}
			return d, nil
		}
	case config.Fake:
		b := site.NewFake(env.urls)
		env.factory = func(ctx context.Context, runID string) (browser.Driver, error) {
			return b.NewSession(), nil
		}
	default:
		env.Close()
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	return env, nil
}

// serveReplica serves site.Handler on a local port and starts the SOCKS5
// proxy that sends the browser there. The site is then reached over plain
// HTTP under its usual host name.
func (env *environment) serveReplica(cfg *config.Config) error {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("serving the site replica: %w", err)
	}
	env.srv = &http.Server{Handler: site.Handler}
	go func() {
		if err := env.srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			glog.Errorf("site replica: %v", err)
		}
	}()

	env.proxy, err = site.ServeProxy(cfg.ProxyAddr, l.Addr().String())
	if err != nil {
		return err
	}

	u, err := url.Parse(env.urls.Base())
	if err != nil {
		return err
	}
	u.Scheme = "http"
	if env.urls, err = site.NewURLs(u.String()); err != nil {
		return err
	}
	glog.Infof("serving the site replica at %s through the SOCKS5 proxy %s", env.urls.Base(), env.proxy.Addr())
	return nil
}

// Close stops the replica, if any.
func (env *environment) Close() {
	if env.proxy != nil {
		if err := env.proxy.Close(); err != nil {
			glog.Warningf("closing SOCKS5 proxy: %v", err)
		}
	}
	if env.srv != nil {
		if err := env.srv.Close(); err != nil {
			glog.Warningf("closing site replica: %v", err)
		}
	}
}
