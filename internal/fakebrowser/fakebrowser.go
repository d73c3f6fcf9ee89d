// Package fakebrowser provides a scripted, in-memory browser.Driver for
// tests. Documents are described as Pages made of ElementSpecs; a Session
// instantiates them on navigation so that every session starts from a fresh
// state.
package fakebrowser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wanmail/loginsuite/browser"
)

// ErrSessionClosed is returned by every Session method after Quit.
var ErrSessionClosed = errors.New("fakebrowser: session closed")

// ElementSpec describes one element of a Page.
type ElementSpec struct {
	// Locators are the locators resolving to this element.
	Locators []browser.Locator
	Text     string
	Hidden   bool
	// AppearAfter is the number of lookups that fail with
	// browser.ErrNoSuchElement before the element can be found.
	AppearAfter int
	// ShowAfter is the number of IsDisplayed calls that report false before
	// the element is displayed. It only applies when Hidden is false.
	ShowAfter int
	// Err, if set, is returned by every lookup of the element.
	Err error
	// OnClick runs when the element is clicked.
	OnClick func(s *Session) error
}

// Page is a document.
type Page struct {
	Title    string
	Elements []ElementSpec
}

// Browser holds the documents served to its sessions and counts session
// lifecycles.
type Browser struct {
	// Pages maps absolute URLs to documents.
	Pages map[string]Page
	// NotFound, if set, is served for URLs missing from Pages. Otherwise
	// Open fails for them.
	NotFound *Page
	// Version is returned by Session.BrowserVersion.
	Version string

	mu     sync.Mutex
	opened int
	quit   int
}

// NewSession starts a session with no document loaded.
func (b *Browser) NewSession() *Session {
	b.mu.Lock()
	b.opened++
	b.mu.Unlock()
	return &Session{browser: b}
}

// Sessions returns how many sessions were started and how many of them
// were quit.
func (b *Browser) Sessions() (opened, quit int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opened, b.quit
}

// Session implements browser.Driver.
type Session struct {
	browser *Browser

	mu        sync.Mutex
	url       string
	title     string
	elements  []*element
	gen       int
	maximized bool
	closed    bool
	history   []string
}

var _ browser.Driver = (*Session)(nil)

type element struct {
	session *Session
	gen     int
	spec    ElementSpec
	value   string
}

func (s *Session) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed {
		return ErrSessionClosed
	}
	return nil
}

// Open implements browser.Driver.
func (s *Session) Open(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}
	p, ok := s.browser.Pages[url]
	if !ok {
		if s.browser.NotFound == nil {
			return fmt.Errorf("fakebrowser: no page at %q", url)
		}
		p = *s.browser.NotFound
	}
	s.load(url, p)
	return nil
}

// Load replaces the current document with p, as if the browser navigated
// to url. It is meant for OnClick handlers.
func (s *Session) Load(url string, p Page) {
	s.load(url, p)
}

// Navigate loads the page the Browser serves at url. It is meant for
// OnClick handlers.
func (s *Session) Navigate(url string) error {
	p, ok := s.browser.Pages[url]
	if !ok {
		return fmt.Errorf("fakebrowser: no page at %q", url)
	}
	s.load(url, p)
	return nil
}

func (s *Session) load(url string, p Page) {
	s.gen++
	s.url = url
	s.title = p.Title
	s.elements = make([]*element, len(p.Elements))
	for i, spec := range p.Elements {
		s.elements[i] = &element{session: s, gen: s.gen, spec: spec}
	}
	s.history = append(s.history, url)
}

func (s *Session) lookup(loc browser.Locator) *element {
	for _, e := range s.elements {
		for _, l := range e.spec.Locators {
			if l == loc {
				return e
			}
		}
	}
	return nil
}

// Find implements browser.Driver.
func (s *Session) Find(ctx context.Context, loc browser.Locator) (browser.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	e := s.lookup(loc)
	if e == nil {
		return nil, fmt.Errorf("find %s: %w", loc, browser.ErrNoSuchElement)
	}
	if e.spec.Err != nil {
		return nil, e.spec.Err
	}
	if e.spec.AppearAfter > 0 {
		e.spec.AppearAfter--
		return nil, fmt.Errorf("find %s: %w", loc, browser.ErrNoSuchElement)
	}
	return e, nil
}

// Title implements browser.Driver.
func (s *Session) Title(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return "", err
	}
	return s.title, nil
}

// MaximizeWindow implements browser.Driver.
func (s *Session) MaximizeWindow(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}
	s.maximized = true
	return nil
}

// Quit implements browser.Driver.
func (s *Session) Quit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.browser.mu.Lock()
	s.browser.quit++
	s.browser.mu.Unlock()
	return nil
}

// BrowserVersion implements browser.Versioner.
func (s *Session) BrowserVersion(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.browser.Version, nil
}

// URL returns the URL of the current document.
func (s *Session) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

// History returns every URL loaded by the session, in order.
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.history...)
}

// Maximized reports whether MaximizeWindow was called.
func (s *Session) Maximized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maximized
}

// Value returns what was typed into the element at loc in the current
// document. It is meant for OnClick handlers.
func (s *Session) Value(loc browser.Locator) string {
	if e := s.lookup(loc); e != nil {
		return e.value
	}
	return ""
}

// Reveal makes the element at loc displayed with the given text after
// showAfter IsDisplayed calls. It is meant for OnClick handlers.
func (s *Session) Reveal(loc browser.Locator, text string, showAfter int) {
	if e := s.lookup(loc); e != nil {
		e.spec.Hidden = false
		e.spec.Text = text
		e.spec.ShowAfter = showAfter
	}
}

func (e *element) stale(ctx context.Context) error {
	if err := e.session.check(ctx); err != nil {
		return err
	}
	if e.gen != e.session.gen {
		return fmt.Errorf("stale element reference: %w", browser.ErrNoSuchElement)
	}
	return nil
}

func (e *element) IsDisplayed(ctx context.Context) (bool, error) {
	e.session.mu.Lock()
	defer e.session.mu.Unlock()
	if err := e.stale(ctx); err != nil {
		return false, err
	}
	if e.spec.Hidden {
		return false, nil
	}
	if e.spec.ShowAfter > 0 {
		e.spec.ShowAfter--
		return false, nil
	}
	return true, nil
}

func (e *element) SendKeys(ctx context.Context, keys string) error {
	e.session.mu.Lock()
	defer e.session.mu.Unlock()
	if err := e.stale(ctx); err != nil {
		return err
	}
	e.value += keys
	return nil
}

func (e *element) Click(ctx context.Context) error {
	e.session.mu.Lock()
	defer e.session.mu.Unlock()
	if err := e.stale(ctx); err != nil {
		return err
	}
	if e.spec.OnClick == nil {
		return nil
	}
	return e.spec.OnClick(e.session)
}

func (e *element) Text(ctx context.Context) (string, error) {
	e.session.mu.Lock()
	defer e.session.mu.Unlock()
	if err := e.stale(ctx); err != nil {
		return "", err
	}
	return e.spec.Text, nil
}
