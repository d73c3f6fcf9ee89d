// Package config loads the settings of a suite run from a YAML file, the
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"regexp"
	"time"

	"github.com/blang/semver"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/wanmail/loginsuite/site"
	"github.com/wanmail/loginsuite/wait"
)

// Backends.
const (
	WebDriver = "webdriver"
	CDP       = "cdp"
	Fake      = "fake"
)

// Config is the configuration of a suite run.
type Config struct {
	Backend     string `yaml:"backend" env:"LOGINSUITE_BACKEND" env-default:"webdriver" env-description:"browser backend: webdriver, cdp or fake"`
	RemoteURL   string `yaml:"remote_url" env:"LOGINSUITE_REMOTE_URL" env-description:"WebDriver endpoint, or DevTools endpoint for cdp (empty starts a local Chrome)"`
	Browser     string `yaml:"browser" env:"LOGINSUITE_BROWSER" env-default:"chrome" env-description:"browser requested from WebDriver: chrome or firefox"`
	BrowserPath string `yaml:"browser_path" env:"LOGINSUITE_BROWSER_PATH" env-description:"browser binary"`
	// Booleans must default to false: cleanenv cannot tell a false read
	// from the file from an unset field.
	Headed       bool `yaml:"headed" env:"LOGINSUITE_HEADED" env-description:"show the browser window"`
	SkipMaximize bool `yaml:"skip_maximize" env:"LOGINSUITE_SKIP_MAXIMIZE" env-description:"keep the window size instead of maximizing it"`

	BaseURL string `yaml:"base_url" env:"LOGINSUITE_BASE_URL" env-default:"https://practicetestautomation.com" env-description:"site under test"`
	// LocalSite serves a replica of the site and routes the browser to it
	// through a SOCKS5 proxy listening on ProxyAddr.
	LocalSite bool   `yaml:"local_site" env:"LOGINSUITE_LOCAL_SITE" env-description:"test a local replica of the site instead of the real one"`
	ProxyAddr string `yaml:"proxy_addr" env:"LOGINSUITE_PROXY_ADDR" env-default:"127.0.0.1:0" env-description:"listen address of the replica's SOCKS5 proxy"`

	WaitTimeout     time.Duration `yaml:"wait_timeout" env:"LOGINSUITE_WAIT_TIMEOUT" env-default:"10s" env-description:"how long to wait for an element"`
	PollInterval    time.Duration `yaml:"poll_interval" env:"LOGINSUITE_POLL_INTERVAL" env-default:"500ms" env-description:"delay between two checks of a waited-for element"`
	ScenarioTimeout time.Duration `yaml:"scenario_timeout" env:"LOGINSUITE_SCENARIO_TIMEOUT" env-default:"2m" env-description:"bound on one scenario"`
	PageLoadTimeout time.Duration `yaml:"page_load_timeout" env:"LOGINSUITE_PAGE_LOAD_TIMEOUT" env-description:"WebDriver page load timeout, 0 for the driver default"`

	Parallel          int    `yaml:"parallel" env:"LOGINSUITE_PARALLEL" env-default:"1" env-description:"scenarios run at once"`
	Filter            string `yaml:"filter" env:"LOGINSUITE_FILTER" env-description:"regexp selecting scenarios by name"`
	MinBrowserVersion string `yaml:"min_browser_version" env:"LOGINSUITE_MIN_BROWSER_VERSION" env-description:"oldest browser version accepted"`
	BrowserLogLevel   string `yaml:"browser_log_level" env:"LOGINSUITE_BROWSER_LOG_LEVEL" env-description:"WebDriver browser log level, for example SEVERE"`
	Debug             bool   `yaml:"debug" env:"LOGINSUITE_DEBUG" env-description:"log browser protocol traffic"`
}

// Load reads the configuration from path, if not empty, and from the
// environment, which takes precedence over the file.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("cannot read configuration from file: %w", err)
		}
		return &cfg, nil
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("cannot read configuration from env: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Backend {
	case WebDriver:
		if c.Browser != "chrome" && c.Browser != "firefox" {
			return fmt.Errorf("unsupported browser %q", c.Browser)
		}
	case CDP:
		if c.Browser != "chrome" {
			return fmt.Errorf("the cdp backend only drives chrome, not %q", c.Browser)
		}
	case Fake:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}

	if _, err := site.NewURLs(c.BaseURL); err != nil {
		return err
	}
	if err := c.WaitConfig().Validate(); err != nil {
		return err
	}
	if c.WaitTimeout == 0 || c.PollInterval == 0 {
		return errors.New("wait timeout and poll interval must be positive")
	}
	if c.ScenarioTimeout < 0 {
		return fmt.Errorf("negative scenario timeout %v", c.ScenarioTimeout)
	}
	if c.PageLoadTimeout < 0 {
		return fmt.Errorf("negative page load timeout %v", c.PageLoadTimeout)
	}
	if c.Parallel < 1 {
		return fmt.Errorf("parallel must be at least 1, got %d", c.Parallel)
	}
	if _, err := c.FilterRegexp(); err != nil {
		return err
	}
	if c.MinBrowserVersion != "" {
		if _, err := semver.ParseTolerant(c.MinBrowserVersion); err != nil {
			return fmt.Errorf("bad minimum browser version %q: %w", c.MinBrowserVersion, err)
		}
	}
	return nil
}

// WaitConfig returns the configuration of element waits.
func (c *Config) WaitConfig() wait.Config {
	return wait.Config{Timeout: c.WaitTimeout, Interval: c.PollInterval}
}

// FilterRegexp compiles Filter. It returns nil when Filter is empty.
func (c *Config) FilterRegexp() (*regexp.Regexp, error) {
	if c.Filter == "" {
		return nil, nil
	}
	re, err := regexp.Compile(c.Filter)
	if err != nil {
		return nil, fmt.Errorf("bad scenario filter: %w", err)
	}
	return re, nil
}

// Flags holds command-line overrides of Config fields.
type Flags struct {
	fs *flag.FlagSet
	v  Config
}

// RegisterFlags defines one flag per Config field on fs. Only the flags set
// on the command line override the loaded configuration.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	v := &f.v
	fs.StringVar(&v.Backend, "backend", WebDriver, "browser backend: webdriver, cdp or fake")
	fs.StringVar(&v.RemoteURL, "remote_url", "", "WebDriver endpoint, or DevTools endpoint for cdp")
	fs.StringVar(&v.Browser, "browser", "chrome", "browser requested from WebDriver: chrome or firefox")
	fs.StringVar(&v.BrowserPath, "browser_path", "", "browser binary")
	fs.BoolVar(&v.Headed, "headed", false, "show the browser window")
	fs.BoolVar(&v.SkipMaximize, "skip_maximize", false, "keep the window size instead of maximizing it")
	fs.StringVar(&v.BaseURL, "base_url", site.DefaultBaseURL, "site under test")
	fs.BoolVar(&v.LocalSite, "local_site", false, "test a local replica of the site instead of the real one")
	fs.StringVar(&v.ProxyAddr, "proxy_addr", "127.0.0.1:0", "listen address of the replica's SOCKS5 proxy")
	fs.DurationVar(&v.WaitTimeout, "wait_timeout", wait.DefaultTimeout, "how long to wait for an element")
	fs.DurationVar(&v.PollInterval, "poll_interval", wait.DefaultInterval, "delay between two checks of a waited-for element")
	fs.DurationVar(&v.ScenarioTimeout, "scenario_timeout", 2*time.Minute, "bound on one scenario, 0 for none")
	fs.DurationVar(&v.PageLoadTimeout, "page_load_timeout", 0, "WebDriver page load timeout, 0 for the driver default")
	fs.IntVar(&v.Parallel, "parallel", 1, "scenarios run at once")
	fs.StringVar(&v.Filter, "filter", "", "regexp selecting scenarios by name")
	fs.StringVar(&v.MinBrowserVersion, "min_browser_version", "", "oldest browser version accepted")
	fs.StringVar(&v.BrowserLogLevel, "browser_log_level", "", "WebDriver browser log level, for example SEVERE")
	fs.BoolVar(&v.Debug, "debug", false, "log browser protocol traffic")
	return f
}

// Apply copies the flags set on the command line into c.
func (f *Flags) Apply(c *Config) {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "backend":
			c.Backend = f.v.Backend
		case "remote_url":
			c.RemoteURL = f.v.RemoteURL
		case "browser":
			c.Browser = f.v.Browser
		case "browser_path":
			c.BrowserPath = f.v.BrowserPath
		case "headed":
			c.Headed = f.v.Headed
		case "skip_maximize":
			c.SkipMaximize = f.v.SkipMaximize
		case "base_url":
			c.BaseURL = f.v.BaseURL
		case "local_site":
			c.LocalSite = f.v.LocalSite
		case "proxy_addr":
			c.ProxyAddr = f.v.ProxyAddr
		case "wait_timeout":
			c.WaitTimeout = f.v.WaitTimeout
		case "poll_interval":
			c.PollInterval = f.v.PollInterval
		case "scenario_timeout":
			c.ScenarioTimeout = f.v.ScenarioTimeout
		case "page_load_timeout":
			c.PageLoadTimeout = f.v.PageLoadTimeout
		case "parallel":
			c.Parallel = f.v.Parallel
		case "filter":
			c.Filter = f.v.Filter
		case "min_browser_version":
			c.MinBrowserVersion = f.v.MinBrowserVersion
		case "browser_log_level":
			c.BrowserLogLevel = f.v.BrowserLogLevel
		case "debug":
			c.Debug = f.v.Debug
		}
	})
}
