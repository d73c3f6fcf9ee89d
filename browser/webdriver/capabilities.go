package webdriver

import (
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"
	"github.com/tebeka/selenium/log"
)

func newCapabilities(cfg Config) selenium.Capabilities {
	caps := selenium.Capabilities{
		"browserName": cfg.Browser,
	}
	switch cfg.Browser {
	case "chrome":
		chrCaps := chrome.Capabilities{
			Path: cfg.BrowserPath,
			Args: []string{
				// Chrome inside the Grid containers runs without the setuid
				// sandbox helper.
				"--no-sandbox",
			},
			W3C: true,
		}
		chrCaps.Args = append(chrCaps.Args, cfg.Args...)
		if cfg.Headless {
			chrCaps.Args = append(chrCaps.Args, "--headless")
		}
		caps.AddChrome(chrCaps)
	case "firefox":
		f := firefox.Capabilities{
			Binary: cfg.BrowserPath,
			Args:   append([]string(nil), cfg.Args...),
		}
		if cfg.Headless {
			f.Args = append(f.Args, "-headless")
		}
		caps.AddFirefox(f)
	}

	if cfg.SOCKSProxy != "" {
		caps.AddProxy(selenium.Proxy{
			Type:         selenium.Manual,
			SOCKS:        cfg.SOCKSProxy,
			SOCKSVersion: 5,
		})
	}
	if cfg.BrowserLogLevel != "" {
		caps.SetLogLevel(log.Browser, log.Level(cfg.BrowserLogLevel))
	}
	if cfg.Name != "" {
		caps["name"] = cfg.Name
	}
	return caps
}
