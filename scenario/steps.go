package scenario

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang/glog"

	"github.com/wanmail/loginsuite/browser"
	"github.com/wanmail/loginsuite/site"
	"github.com/wanmail/loginsuite/wait"
)

// AssertionError reports a check on the page that did not hold.
type AssertionError struct {
	// What names the checked value, for example "title".
	What string
	Want string
	Got  string
	// Contains is set when Want only had to be a substring of Got.
	Contains bool
}

func (e *AssertionError) Error() string {
	if e.Contains {
		return fmt.Sprintf("%s = %q, want it to contain %q", e.What, e.Got, e.Want)
	}
	return fmt.Sprintf("%s = %q, want %q", e.What, e.Got, e.Want)
}

// Steps are the actions scenarios are written with. They all act on one
// session.
type Steps struct {
	Driver browser.Driver
	URLs   site.URLs
	Wait   wait.Config
}

// OpenPage navigates to url.
func (s *Steps) OpenPage(ctx context.Context, url string) error {
	glog.V(2).Infof("open page %s", url)
	if err := s.Driver.Open(ctx, url); err != nil {
		return fmt.Errorf("open page: %w", err)
	}
	return nil
}

// WaitVisible waits until loc resolves to a displayed element.
func (s *Steps) WaitVisible(ctx context.Context, loc browser.Locator) (browser.Element, error) {
	glog.V(2).Infof("wait for %s", loc)
	e, err := browser.WaitVisible(ctx, s.Driver, s.Wait, loc)
	if err != nil {
		return nil, fmt.Errorf("wait visible: %w", err)
	}
	return e, nil
}

// Click waits until loc is displayed and clicks it.
func (s *Steps) Click(ctx context.Context, loc browser.Locator) error {
	e, err := s.WaitVisible(ctx, loc)
	if err != nil {
		return err
	}
	if err := e.Click(ctx); err != nil {
		return fmt.Errorf("click %s: %w", loc, err)
	}
	return nil
}

// Type waits until loc is displayed and types keys into it.
func (s *Steps) Type(ctx context.Context, loc browser.Locator, keys string) error {
	e, err := s.WaitVisible(ctx, loc)
	if err != nil {
		return err
	}
	if err := e.SendKeys(ctx, keys); err != nil {
		return fmt.Errorf("type into %s: %w", loc, err)
	}
	return nil
}

// EnterCredentials fills the login form.
func (s *Steps) EnterCredentials(ctx context.Context, username, password string) error {
	if err := s.Type(ctx, site.UsernameField, username); err != nil {
		return fmt.Errorf("enter credentials: %w", err)
	}
	if err := s.Type(ctx, site.PasswordField, password); err != nil {
		return fmt.Errorf("enter credentials: %w", err)
	}
	return nil
}

// ClickLogin submits the login form.
func (s *Steps) ClickLogin(ctx context.Context) error {
	if err := s.Click(ctx, site.SubmitButton); err != nil {
		return fmt.Errorf("click login: %w", err)
	}
	return nil
}

// Login opens the login page and signs in with the given credentials.
func (s *Steps) Login(ctx context.Context, username, password string) error {
	if err := s.OpenPage(ctx, s.URLs.Login()); err != nil {
		return err
	}
	if err := s.EnterCredentials(ctx, username, password); err != nil {
		return err
	}
	return s.ClickLogin(ctx)
}

// CheckNotification waits until loc is displayed and checks that its text
// contains text.
func (s *Steps) CheckNotification(ctx context.Context, loc browser.Locator, text string) error {
	e, err := s.WaitVisible(ctx, loc)
	if err != nil {
		return fmt.Errorf("check notification: %w", err)
	}
	got, err := e.Text(ctx)
	if err != nil {
		return fmt.Errorf("check notification: reading %s: %w", loc, err)
	}
	if !strings.Contains(got, text) {
		return fmt.Errorf("check notification: %w", &AssertionError{
			What:     "text of " + loc.String(),
			Want:     text,
			Got:      got,
			Contains: true,
		})
	}
	return nil
}

// Title returns the title of the current page.
func (s *Steps) Title(ctx context.Context) (string, error) {
	title, err := s.Driver.Title(ctx)
	if err != nil {
		return "", fmt.Errorf("read title: %w", err)
	}
	return title, nil
}

// CheckTitle checks that the current page title is want.
func (s *Steps) CheckTitle(ctx context.Context, want string) error {
	got, err := s.Title(ctx)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("check title: %w", &AssertionError{What: "title", Want: want, Got: got})
	}
	return nil
}
