// Package scenario holds the login suite: its scenarios, the steps they are
// written with, and a Runner giving each scenario its own browser session.
package scenario

import (
	"context"
	"regexp"

	"github.com/wanmail/loginsuite/site"
)

// Scenario is one end-to-end check of the site.
type Scenario struct {
	Name string
	Run  func(ctx context.Context, s *Steps) error
}

// SearchQuery is what SendFormAfterLogin searches for.
const SearchQuery = "Tableau"

// All returns the suite, in order.
func All() []Scenario {
	return []Scenario{
		{Name: "LoginWithRightCredentials", Run: loginWithRightCredentials},
		{Name: "LoginWithInvalidPassword", Run: loginWithInvalidPassword},
		{Name: "LoginWithInvalidUsername", Run: loginWithInvalidUsername},
		{Name: "VerifyComplexXPath", Run: verifyComplexXPath},
		{Name: "SendFormAfterLogin", Run: sendFormAfterLogin},
		{Name: "StaticPage", Run: staticPage},
		{Name: "ReadPageTitle", Run: readPageTitle},
	}
}

// Filter returns the scenarios whose name matches re. A nil re keeps them
// all.
func Filter(scenarios []Scenario, re *regexp.Regexp) []Scenario {
	if re == nil {
		return scenarios
	}
	var out []Scenario
	for _, sc := range scenarios {
		if re.MatchString(sc.Name) {
			out = append(out, sc)
		}
	}
	return out
}

func loginWithRightCredentials(ctx context.Context, s *Steps) error {
	if err := s.Login(ctx, site.Username, site.Password); err != nil {
		return err
	}
	if _, err := s.WaitVisible(ctx, site.WelcomeMessage); err != nil {
		return err
	}
	if err := s.Click(ctx, site.LogoutButton); err != nil {
		return err
	}
	_, err := s.WaitVisible(ctx, site.UsernameField)
	return err
}

func loginWithInvalidPassword(ctx context.Context, s *Steps) error {
	if err := s.Login(ctx, site.Username, "wrong_password"); err != nil {
		return err
	}
	return s.CheckNotification(ctx, site.ErrorMessage, site.InvalidPassword)
}

func loginWithInvalidUsername(ctx context.Context, s *Steps) error {
	if err := s.Login(ctx, "invalid_user", site.Password); err != nil {
		return err
	}
	return s.CheckNotification(ctx, site.ErrorMessage, site.InvalidUsername)
}

func verifyComplexXPath(ctx context.Context, s *Steps) error {
	if err := s.OpenPage(ctx, s.URLs.Login()); err != nil {
		return err
	}
	_, err := s.WaitVisible(ctx, site.ComplexSubmit)
	return err
}

func sendFormAfterLogin(ctx context.Context, s *Steps) error {
	if err := s.Login(ctx, site.Username, site.Password); err != nil {
		return err
	}
	if _, err := s.WaitVisible(ctx, site.WelcomeMessage); err != nil {
		return err
	}
	if err := s.OpenPage(ctx, s.URLs.Sample()); err != nil {
		return err
	}
	if err := s.Type(ctx, site.SearchField, SearchQuery); err != nil {
		return err
	}
	if err := s.Click(ctx, site.SearchSubmit); err != nil {
		return err
	}
	_, err := s.WaitVisible(ctx, site.NoResultsMessage(SearchQuery))
	return err
}

func staticPage(ctx context.Context, s *Steps) error {
	if err := s.OpenPage(ctx, s.URLs.Sample()); err != nil {
		return err
	}
	_, err := s.WaitVisible(ctx, site.NotFoundMessage)
	return err
}

func readPageTitle(ctx context.Context, s *Steps) error {
	if err := s.OpenPage(ctx, s.URLs.Login()); err != nil {
		return err
	}
	return s.CheckTitle(ctx, site.LoginTitle)
}
