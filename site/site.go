// Package site describes practicetestautomation.com, the site exercised by
// the suite: its pages, element locators, credentials and messages. It also
// provides two stand-ins for the real site: Handler, an HTTP replica for
// live browsers, and NewFake, a fakebrowser model for unit tests.
package site

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/wanmail/loginsuite/browser"
)

// DefaultBaseURL is the live site.
const DefaultBaseURL = "https://practicetestautomation.com"

// Paths of the pages used by the suite.
const (
	LoginPath    = "/practice-test-login/"
	LoggedInPath = "/logged-in-successfully/"
	SamplePath   = "/sample-page/"
)

// Credentials accepted by the login form.
const (
	Username = "student"
	Password = "Password123"
)

// Texts shown by the site.
const (
	LoginTitle      = "Test Login | Practice Test Automation"
	LoggedInTitle   = "Logged In Successfully | Practice Test Automation"
	NotFoundTitle   = "Page not found | Practice Test Automation"
	InvalidUsername = "Your username is invalid!"
	InvalidPassword = "Your password is invalid!"
	WelcomeHeading  = "Logged In Successfully"
	NotFoundHeading = "404: Page Not Found"
)

// Locators of the elements the scenarios interact with.
var (
	UsernameField  = browser.ID("username")
	PasswordField  = browser.ID("password")
	SubmitButton   = browser.ID("submit")
	LogoutButton   = browser.XPath("//a[text()='Log out']")
	WelcomeMessage = browser.XPath("//h1[contains(text(),'Logged In Successfully')]")
	ErrorMessage   = browser.ID("error")
	// ComplexSubmit reaches the submit button through its enclosing divs.
	ComplexSubmit   = browser.XPath("//div//button[@id='submit']")
	NotFoundMessage = browser.XPath("//h1[contains(text(),'404: Page Not Found')]")
	SearchField     = browser.ID("search-field")
	SearchSubmit    = browser.XPath("//input[@class='search-submit']")
)

// NoResultsMessage locates the heading of an empty search result page.
func NoResultsMessage(query string) browser.Locator {
	return browser.XPath(fmt.Sprintf(`//h1[contains(text(),'No search results for "%s"')]`, query))
}

// NoResultsHeading is the heading of an empty search result page.
func NoResultsHeading(query string) string {
	return fmt.Sprintf("No search results for %q", query)
}

// URLs resolves the site's pages against a base URL.
type URLs struct {
	base string
}

// NewURLs validates base, an absolute http(s) URL, and returns the page URLs
// under it.
func NewURLs(base string) (URLs, error) {
	u, err := url.Parse(base)
	if err != nil {
		return URLs{}, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return URLs{}, fmt.Errorf("base URL %q: scheme must be http or https", base)
	}
	if u.Host == "" {
		return URLs{}, fmt.Errorf("base URL %q has no host", base)
	}
	return URLs{base: strings.TrimSuffix(base, "/")}, nil
}

// MustURLs is like NewURLs but panics on error. It is meant for constants.
func MustURLs(base string) URLs {
	u, err := NewURLs(base)
	if err != nil {
		panic(err)
	}
	return u
}

// Base returns the base URL without a trailing slash.
func (u URLs) Base() string { return u.base }

// Login is the practice login page.
func (u URLs) Login() string { return u.base + LoginPath }

// LoggedIn is the page shown after a successful login.
func (u URLs) LoggedIn() string { return u.base + LoggedInPath }

// Sample is the sample page, which the site answers with its 404 page.
func (u URLs) Sample() string { return u.base + SamplePath }

// Search is the result page of the site-wide search.
func (u URLs) Search(query string) string {
	return u.base + "/?s=" + url.QueryEscape(query)
}
