// Command loginsuite runs the login scenarios against practicetestautomation.com
// (or a local replica of it) in a remote or local browser, and reports one
// line per scenario.
//
// Configuration is read from the file named by -config, then from
// LOGINSUITE_* environment variables, then from the flags set on the command
// line. Run with -help to list them.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/golang/glog"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/wanmail/loginsuite/internal/config"
	"github.com/wanmail/loginsuite/scenario"
)

// Exit codes.
const (
	exitOK = iota
	exitFailed
	exitConfig
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	overrides := config.RegisterFlags(flag.CommandLine)
	header := "Environment variables:"
	flag.Usage = cleanenv.FUsage(flag.CommandLine.Output(), &config.Config{}, &header, func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
	})
	flag.Parse()

	os.Exit(func() int {
		defer glog.Flush()

		cfg, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitConfig
		}
		overrides.Apply(cfg)
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
			return exitConfig
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx, cfg, os.Stdout)
	}())
}

// run executes the suite described by cfg and writes the report to w. It
// returns the process exit code.
func run(ctx context.Context, cfg *config.Config, w io.Writer) int {
	re, err := cfg.FilterRegexp()
	if err != nil {
		fmt.Fprintln(w, err)
		return exitConfig
	}
	scenarios := scenario.Filter(scenario.All(), re)
	if len(scenarios) == 0 {
		fmt.Fprintf(w, "no scenario matches %q\n", cfg.Filter)
		return exitConfig
	}

	env, err := newEnvironment(cfg)
	if err != nil {
		fmt.Fprintln(w, err)
		return exitConfig
	}
	defer env.Close()

	r := &scenario.Runner{
		Factory:           env.factory,
		URLs:              env.urls,
		Wait:              cfg.WaitConfig(),
		Timeout:           cfg.ScenarioTimeout,
		Parallel:          cfg.Parallel,
		Maximize:          !cfg.SkipMaximize,
		MinBrowserVersion: cfg.MinBrowserVersion,
	}
	glog.Infof("running %d scenario(s) against %s with the %s backend", len(scenarios), env.urls.Base(), cfg.Backend)
	results := r.Run(ctx, scenarios)

	summary := report(w, results)
	if !summary.OK() {
		return exitFailed
	}
	return exitOK
}

func report(w io.Writer, results []scenario.Result) scenario.Summary {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	for _, res := range results {
		status := "PASS"
		if res.Err != nil {
			status = "FAIL"
		}
		fmt.Fprintf(tw, "%s\t%s\t%v\t%s\n", status, res.Name, res.Duration.Round(time.Millisecond), res.RunID)
	}
	tw.Flush()

	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(w, "\n%v\n", res.Err)
		}
	}
	summary := scenario.Summarize(results)
	fmt.Fprintf(w, "\n%s\n", summary)
	return summary
}
