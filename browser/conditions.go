package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wanmail/loginsuite/wait"
)

// transient marks lookups that may succeed later as not ready.
func transient(err error) error {
	if errors.Is(err, ErrNoSuchElement) || errors.Is(err, ErrNotVisible) {
		return wait.Retryable(err)
	}
	return err
}

// Present returns a predicate resolving loc to an element, visible or not.
func Present(d Driver, loc Locator) wait.Predicate[Element] {
	return func(ctx context.Context) (Element, error) {
		e, err := d.Find(ctx, loc)
		if err != nil {
			return nil, transient(err)
		}
		return e, nil
	}
}

// Visible returns a predicate resolving loc to a displayed element.
func Visible(d Driver, loc Locator) wait.Predicate[Element] {
	return func(ctx context.Context) (Element, error) {
		e, err := d.Find(ctx, loc)
		if err != nil {
			return nil, transient(err)
		}
		shown, err := e.IsDisplayed(ctx)
		if err != nil {
			return nil, transient(err)
		}
		if !shown {
			return nil, wait.Retryable(fmt.Errorf("%s: %w", loc, ErrNotVisible))
		}
		return e, nil
	}
}

// TextContains returns a predicate resolving loc to a displayed element
// whose text contains substr. It yields the full text.
func TextContains(d Driver, loc Locator, substr string) wait.Predicate[string] {
	visible := Visible(d, loc)
	return func(ctx context.Context) (string, error) {
		e, err := visible(ctx)
		if err != nil {
			return "", err
		}
		text, err := e.Text(ctx)
		if err != nil {
			return "", transient(err)
		}
		if !strings.Contains(text, substr) {
			return "", wait.NotReady("text of %s is %q", loc, text)
		}
		return text, nil
	}
}

// TitleIs returns a condition that checks if the title matches want.
func TitleIs(d Driver, want string) wait.Condition {
	return func(ctx context.Context) (bool, error) {
		title, err := d.Title(ctx)
		if err != nil {
			return false, err
		}
		return title == want, nil
	}
}

// TitleContains returns a condition that checks if the title includes
// substr.
func TitleContains(d Driver, substr string) wait.Condition {
	return func(ctx context.Context) (bool, error) {
		title, err := d.Title(ctx)
		if err != nil {
			return false, err
		}
		return strings.Contains(title, substr), nil
	}
}

// WaitVisible waits until loc resolves to a displayed element.
func WaitVisible(ctx context.Context, d Driver, cfg wait.Config, loc Locator) (Element, error) {
	return wait.Until(ctx, cfg, fmt.Sprintf("element %s to be visible", loc), Visible(d, loc))
}

// WaitPresent waits until loc resolves to an element.
func WaitPresent(ctx context.Context, d Driver, cfg wait.Config, loc Locator) (Element, error) {
	return wait.Until(ctx, cfg, fmt.Sprintf("element %s to be present", loc), Present(d, loc))
}

// WaitText waits until loc resolves to a displayed element whose text
// contains substr, and returns that text.
func WaitText(ctx context.Context, d Driver, cfg wait.Config, loc Locator, substr string) (string, error) {
	return wait.Until(ctx, cfg, fmt.Sprintf("element %s to contain %q", loc, substr), TextContains(d, loc, substr))
}
