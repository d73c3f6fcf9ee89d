package scenario

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanmail/loginsuite/browser"
	"github.com/wanmail/loginsuite/internal/fakebrowser"
	"github.com/wanmail/loginsuite/site"
	"github.com/wanmail/loginsuite/wait"
)

var (
	testURLs = site.MustURLs(site.DefaultBaseURL)
	testWait = wait.Config{Timeout: 500 * time.Millisecond, Interval: 5 * time.Millisecond}
)

func fakeRunner(b *fakebrowser.Browser) *Runner {
	return &Runner{
		Factory: func(ctx context.Context, runID string) (browser.Driver, error) {
			return b.NewSession(), nil
		},
		URLs: testURLs,
		Wait: testWait,
	}
}

func names(scenarios []Scenario) []string {
	var out []string
	for _, sc := range scenarios {
		out = append(out, sc.Name)
	}
	return out
}

func TestAll(t *testing.T) {
	want := []string{
		"LoginWithRightCredentials",
		"LoginWithInvalidPassword",
		"LoginWithInvalidUsername",
		"VerifyComplexXPath",
		"SendFormAfterLogin",
		"StaticPage",
		"ReadPageTitle",
	}
	if diff := cmp.Diff(want, names(All())); diff != "" {
		t.Errorf("All() returned diff (-want/+got):\n%s", diff)
	}
}

func TestFilter(t *testing.T) {
	for _, tc := range []struct {
		re   string
		want []string
	}{
		{"^LoginWithInvalid", []string{"LoginWithInvalidPassword", "LoginWithInvalidUsername"}},
		{"Page", []string{"StaticPage", "ReadPageTitle"}},
		{"nothing", nil},
	} {
		got := names(Filter(All(), regexp.MustCompile(tc.re)))
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("Filter(%q) returned diff (-want/+got):\n%s", tc.re, diff)
		}
	}
	if got := Filter(All(), nil); len(got) != len(All()) {
		t.Errorf("Filter(nil) returned %d scenarios, want %d", len(got), len(All()))
	}
}

func TestRunAllPass(t *testing.T) {
	for _, parallel := range []int{0, 3} {
		b := site.NewFake(testURLs)
		r := fakeRunner(b)
		r.Parallel = parallel
		r.Maximize = true
		r.MinBrowserVersion = "120"

		results := r.Run(context.Background(), All())
		require.Len(t, results, len(All()))
		for i, res := range results {
			assert.Equal(t, All()[i].Name, res.Name)
			assert.NoError(t, res.Err, "scenario %s", res.Name)
			assert.NotEmpty(t, res.RunID)
		}

		s := Summarize(results)
		assert.True(t, s.OK(), "summary %s", s)
		assert.Equal(t, len(All()), s.Passed)

		opened, quit := b.Sessions()
		assert.Equal(t, len(All()), opened, "sessions opened")
		assert.Equal(t, opened, quit, "every session is quit")
	}
}

func TestRunIDsAreUnique(t *testing.T) {
	results := fakeRunner(site.NewFake(testURLs)).Run(context.Background(), All())
	seen := map[string]bool{}
	for _, res := range results {
		require.False(t, seen[res.RunID], "run ID %s reused", res.RunID)
		seen[res.RunID] = true
	}
}

func TestWrongTitle(t *testing.T) {
	b := site.NewFake(testURLs)
	p := b.Pages[testURLs.Login()]
	p.Title = "Practice Test Automation"
	b.Pages[testURLs.Login()] = p

	res := fakeRunner(b).RunOne(context.Background(), All()[6])
	require.Error(t, res.Err)
	assert.True(t, strings.HasPrefix(res.Err.Error(), "scenario: ReadPageTitle: check title: "), "error %q", res.Err)

	var ae *AssertionError
	require.ErrorAs(t, res.Err, &ae)
	assert.Equal(t, &AssertionError{What: "title", Want: site.LoginTitle, Got: "Practice Test Automation"}, ae)
}

func TestWrongNotification(t *testing.T) {
	b := site.NewFake(testURLs)
	s := b.NewSession()
	defer s.Quit()
	steps := &Steps{Driver: s, URLs: testURLs, Wait: testWait}
	ctx := context.Background()

	require.NoError(t, steps.Login(ctx, "invalid_user", "whatever"))
	err := steps.CheckNotification(ctx, site.ErrorMessage, site.InvalidPassword)

	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.True(t, ae.Contains)
	assert.Equal(t, site.InvalidUsername, ae.Got)
	assert.Equal(t, `text of id=error = "Your username is invalid!", want it to contain "Your password is invalid!"`, ae.Error())
}

func TestMissingElementTimesOut(t *testing.T) {
	b := site.NewFake(testURLs)
	p := b.Pages[testURLs.LoggedIn()]
	p.Elements = p.Elements[1:] // no welcome heading
	b.Pages[testURLs.LoggedIn()] = p

	start := time.Now()
	res := fakeRunner(b).RunOne(context.Background(), All()[0])
	elapsed := time.Since(start)

	var te *wait.TimeoutError
	require.ErrorAs(t, res.Err, &te)
	assert.ErrorIs(t, res.Err, browser.ErrNoSuchElement)
	assert.Contains(t, te.Condition, site.WelcomeMessage.String())
	assert.GreaterOrEqual(t, elapsed, testWait.Timeout)

	opened, quit := b.Sessions()
	assert.Equal(t, 1, opened)
	assert.Equal(t, 1, quit)
}

func TestScenarioTimeoutCancelsWait(t *testing.T) {
	b := site.NewFake(testURLs)
	r := fakeRunner(b)
	r.Wait = wait.Config{Timeout: 10 * time.Second, Interval: 10 * time.Millisecond}
	r.Timeout = 100 * time.Millisecond

	never := Scenario{Name: "Never", Run: func(ctx context.Context, s *Steps) error {
		if err := s.OpenPage(ctx, s.URLs.Login()); err != nil {
			return err
		}
		_, err := s.WaitVisible(ctx, site.ErrorMessage)
		return err
	}}

	start := time.Now()
	res := r.RunOne(context.Background(), never)
	require.Error(t, res.Err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.ErrorIs(t, res.Err, wait.ErrCancelled)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
	var te *wait.TimeoutError
	assert.False(t, errors.As(res.Err, &te), "cancellation is not a timeout: %v", res.Err)

	_, quit := b.Sessions()
	assert.Equal(t, 1, quit)
}

func TestPanicIsReported(t *testing.T) {
	b := site.NewFake(testURLs)
	boom := Scenario{Name: "Boom", Run: func(ctx context.Context, s *Steps) error {
		panic("boom")
	}}

	res := fakeRunner(b).RunOne(context.Background(), boom)
	require.EqualError(t, res.Err, "scenario: Boom: panic: boom")

	_, quit := b.Sessions()
	assert.Equal(t, 1, quit, "session is quit after a panic")
}

func TestFactoryError(t *testing.T) {
	errDown := errors.New("grid is down")
	r := &Runner{
		Factory: func(ctx context.Context, runID string) (browser.Driver, error) {
			return nil, errDown
		},
		URLs: testURLs,
		Wait: testWait,
	}
	results := r.Run(context.Background(), All()[:2])
	for _, res := range results {
		assert.ErrorIs(t, res.Err, errDown)
		assert.Contains(t, res.Err.Error(), "open session")
	}
	assert.Equal(t, Summary{Failed: 2, Duration: Summarize(results).Duration}, Summarize(results))
}

func TestBrowserTooOld(t *testing.T) {
	b := site.NewFake(testURLs)
	r := fakeRunner(b)
	r.MinBrowserVersion = "200"

	res := r.RunOne(context.Background(), All()[3])
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "check browser version")

	_, quit := b.Sessions()
	assert.Equal(t, 1, quit)
}

func TestSummary(t *testing.T) {
	s := Summarize([]Result{
		{Name: "a", Duration: time.Second},
		{Name: "b", Duration: 500 * time.Millisecond, Err: errors.New("failed")},
		{Name: "c", Duration: 250 * time.Millisecond},
	})
	want := Summary{Passed: 2, Failed: 1, Duration: 1750 * time.Millisecond}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("Summarize() returned diff (-want/+got):\n%s", diff)
	}
	if s.OK() {
		t.Error("OK() = true with a failed result")
	}
	if got, want := s.String(), "2 passed, 1 failed (1.75s)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
