package site

import (
	"github.com/wanmail/loginsuite/browser"
	"github.com/wanmail/loginsuite/internal/fakebrowser"
)

// FakeVersion is the browser version reported by sessions of NewFake.
const FakeVersion = "HeadlessChrome/127.0.6533.88"

// Number of polls the fake site takes before dynamic content shows up.
const (
	fakeErrorDelay   = 2
	fakeWelcomeDelay = 2
)

// NewFake models the site under urls as a fakebrowser.Browser. Login
// answers and the welcome heading take a few polls to show up, as they do
// on the real site.
func NewFake(urls URLs) *fakebrowser.Browser {
	login := fakebrowser.Page{
		Title: LoginTitle,
		Elements: []fakebrowser.ElementSpec{
			{Locators: []browser.Locator{UsernameField}},
			{Locators: []browser.Locator{PasswordField}},
			{
				Locators: []browser.Locator{SubmitButton, ComplexSubmit},
				Text:     "Submit",
				OnClick: func(s *fakebrowser.Session) error {
					switch {
					case s.Value(UsernameField) != Username:
						s.Reveal(ErrorMessage, InvalidUsername, fakeErrorDelay)
					case s.Value(PasswordField) != Password:
						s.Reveal(ErrorMessage, InvalidPassword, fakeErrorDelay)
					default:
						return s.Navigate(urls.LoggedIn())
					}
					return nil
				},
			},
			{Locators: []browser.Locator{ErrorMessage}, Hidden: true},
		},
	}

	loggedIn := fakebrowser.Page{
		Title: LoggedInTitle,
		Elements: []fakebrowser.ElementSpec{
			{
				Locators:    []browser.Locator{WelcomeMessage},
				Text:        WelcomeHeading,
				AppearAfter: fakeWelcomeDelay,
			},
			{
				Locators: []browser.Locator{LogoutButton},
				Text:     "Log out",
				OnClick: func(s *fakebrowser.Session) error {
					return s.Navigate(urls.Login())
				},
			},
		},
	}

	notFound := fakebrowser.Page{
		Title: NotFoundTitle,
		Elements: append([]fakebrowser.ElementSpec{
			{Locators: []browser.Locator{NotFoundMessage}, Text: NotFoundHeading},
		}, fakeSearchForm(urls)...),
	}

	return &fakebrowser.Browser{
		Pages: map[string]fakebrowser.Page{
			urls.Login():    login,
			urls.LoggedIn(): loggedIn,
		},
		NotFound: &notFound,
		Version:  FakeVersion,
	}
}

func fakeSearchForm(urls URLs) []fakebrowser.ElementSpec {
	return []fakebrowser.ElementSpec{
		{Locators: []browser.Locator{SearchField}},
		{
			Locators: []browser.Locator{SearchSubmit},
			OnClick: func(s *fakebrowser.Session) error {
				q := s.Value(SearchField)
				s.Load(urls.Search(q), fakeResults(urls, q))
				return nil
			},
		},
	}
}

// fakeResults is the result page of a search. The site has no content, so
// every search comes back empty.
func fakeResults(urls URLs, query string) fakebrowser.Page {
	return fakebrowser.Page{
		Title: "You searched for " + query + " | Practice Test Automation",
		Elements: append([]fakebrowser.ElementSpec{
			{Locators: []browser.Locator{NoResultsMessage(query)}, Text: NoResultsHeading(query)},
		}, fakeSearchForm(urls)...),
	}
}
