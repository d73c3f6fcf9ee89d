package browser_test

import (
	"context"
	"testing"

	"github.com/blang/semver"
	"github.com/wanmail/loginsuite/browser"
	"github.com/wanmail/loginsuite/internal/fakebrowser"
)

func TestParseVersion(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
	}{
		{"127.0.6533.88", "127.0.6533"},
		{"Chrome/127.0.6533.88", "127.0.6533"},
		{"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) HeadlessChrome/126.0.6478.126 Safari/537.36", "126.0.6478"},
		{"Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0", "128.0.0"},
		{"115", "115.0.0"},
	} {
		got, err := browser.ParseVersion(tc.in)
		if err != nil {
			t.Errorf("ParseVersion(%q) returned error: %v", tc.in, err)
			continue
		}
		if want := semver.MustParse(tc.want); !got.EQ(want) {
			t.Errorf("ParseVersion(%q) = %s, want %s", tc.in, got, want)
		}
	}

	if _, err := browser.ParseVersion("unknown"); err == nil {
		t.Error("ParseVersion(\"unknown\") did not return an error")
	}
}

func TestCheckMinVersion(t *testing.T) {
	b := &fakebrowser.Browser{Version: "Chrome/120.0.6099.71"}
	s := b.NewSession()
	defer s.Quit()

	ctx := context.Background()
	for _, tc := range []struct {
		min     string
		wantErr bool
	}{
		{"", false},
		{"100", false},
		{"120.0.6099", false},
		{"121", true},
		{"not-a-version", true},
	} {
		_, err := browser.CheckMinVersion(ctx, s, tc.min)
		if gotErr := err != nil; gotErr != tc.wantErr {
			t.Errorf("CheckMinVersion(%q) returned error %v, want error = %t", tc.min, err, tc.wantErr)
		}
	}
}
