package browser

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/blang/semver"
)

var versionRE = regexp.MustCompile(`\d+(?:\.\d+){0,3}`)

// ParseVersion extracts a semantic version from a browser version string
// such as "127.0.6533.88", "Chrome/127.0.6533.88" or a full user agent.
// Only the first three numeric components are kept.
func ParseVersion(s string) (semver.Version, error) {
	// Prefer the product token of a user agent over the Mozilla/5.0 prefix.
	for _, product := range []string{"HeadlessChrome/", "Chrome/", "Firefox/", "Edg/"} {
		if i := strings.Index(s, product); i >= 0 {
			s = s[i+len(product):]
			break
		}
	}
	m := versionRE.FindString(s)
	if m == "" {
		return semver.Version{}, fmt.Errorf("no version number in %q", s)
	}
	parts := strings.Split(m, ".")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	v, err := semver.ParseTolerant(strings.Join(parts, "."))
	if err != nil {
		return semver.Version{}, fmt.Errorf("parsing browser version %q: %w", s, err)
	}
	return v, nil
}

// CheckMinVersion fails if d reports a browser version lower than minimum.
// An empty minimum, or a driver that does not implement Versioner, always passes.
func CheckMinVersion(ctx context.Context, d Driver, minimum string) (semver.Version, error) {
	if minimum == "" {
		return semver.Version{}, nil
	}
	want, err := semver.ParseTolerant(minimum)
	if err != nil {
		return semver.Version{}, fmt.Errorf("bad minimum browser version %q: %w", minimum, err)
	}
	vr, ok := d.(Versioner)
	if !ok {
		return semver.Version{}, nil
	}
	s, err := vr.BrowserVersion(ctx)
	if err != nil {
		return semver.Version{}, fmt.Errorf("getting browser version: %w", err)
	}
	got, err := ParseVersion(s)
	if err != nil {
		return semver.Version{}, err
	}
	if got.LT(want) {
		return got, fmt.Errorf("browser version %s is older than the required %s", got, want)
	}
	return got, nil
}
