package scenario

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wanmail/loginsuite/browser"
	"github.com/wanmail/loginsuite/site"
	"github.com/wanmail/loginsuite/wait"
)

// SessionFactory starts a browser session for the scenario run identified
// by runID.
type SessionFactory func(ctx context.Context, runID string) (browser.Driver, error)

// Runner runs scenarios, each in a session of its own that is quit however
// the scenario ends.
type Runner struct {
	Factory SessionFactory
	URLs    site.URLs
	Wait    wait.Config
	// Timeout bounds each scenario, session start included. Zero means no
	// bound besides the context passed to Run.
	Timeout time.Duration
	// Parallel is how many scenarios may run at once. Values below 2 run
	// them one after another.
	Parallel int
	// Maximize maximizes the window before each scenario.
	Maximize bool
	// MinBrowserVersion, if set, fails scenarios whose browser is older.
	MinBrowserVersion string
}

// Result is the outcome of one scenario.
type Result struct {
	Name     string
	RunID    string
	Duration time.Duration
	// Err is nil when the scenario passed.
	Err error
}

// Run runs scenarios and returns their results in the same order. A
// failing scenario does not stop the others.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) []Result {
	results := make([]Result, len(scenarios))
	var g errgroup.Group
	g.SetLimit(max(r.Parallel, 1))
	for i, sc := range scenarios {
		g.Go(func() error {
			results[i] = r.RunOne(ctx, sc)
			return nil
		})
	}
	g.Wait()
	return results
}

// RunOne runs a single scenario.
func (r *Runner) RunOne(ctx context.Context, sc Scenario) Result {
	res := Result{Name: sc.Name, RunID: uuid.NewString()}
	glog.Infof("%s [%s]: starting", sc.Name, res.RunID)
	start := time.Now()
	err := r.run(ctx, sc, res.RunID)
	res.Duration = time.Since(start)
	if err != nil {
		res.Err = fmt.Errorf("scenario: %s: %w", sc.Name, err)
		glog.Errorf("%s [%s]: FAIL after %v: %v", sc.Name, res.RunID, res.Duration, err)
		return res
	}
	glog.Infof("%s [%s]: PASS in %v", sc.Name, res.RunID, res.Duration)
	return res
}

func (r *Runner) run(ctx context.Context, sc Scenario, runID string) (err error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	d, err := r.Factory(ctx, runID)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer func() {
		if qerr := d.Quit(); qerr != nil {
			glog.Warningf("%s [%s]: quitting session: %v", sc.Name, runID, qerr)
		}
	}()
	defer func() {
		if p := recover(); p != nil {
			glog.Errorf("%s [%s]: panic: %v\n%s", sc.Name, runID, p, debug.Stack())
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	if r.Maximize {
		if err := d.MaximizeWindow(ctx); err != nil {
			glog.Warningf("%s [%s]: maximizing window: %v", sc.Name, runID, err)
		}
	}
	if r.MinBrowserVersion != "" {
		v, err := browser.CheckMinVersion(ctx, d, r.MinBrowserVersion)
		if err != nil {
			return fmt.Errorf("check browser version: %w", err)
		}
		glog.V(1).Infof("%s [%s]: browser version %s", sc.Name, runID, v)
	}

	return sc.Run(ctx, &Steps{Driver: d, URLs: r.URLs, Wait: r.Wait})
}

// Summary counts results.
type Summary struct {
	Passed, Failed int
	Duration       time.Duration
}

// Summarize counts passed and failed results and adds up their durations.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		if r.Err != nil {
			s.Failed++
		} else {
			s.Passed++
		}
		s.Duration += r.Duration
	}
	return s
}

// OK reports whether every scenario passed.
func (s Summary) OK() bool { return s.Failed == 0 }

func (s Summary) String() string {
	return fmt.Sprintf("%d passed, %d failed (%v)", s.Passed, s.Failed, s.Duration.Round(time.Millisecond))
}
