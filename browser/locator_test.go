package browser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseLocator(t *testing.T) {
	for _, tc := range []struct {
		in      string
		want    Locator
		wantErr bool
	}{
		{in: "id=username", want: ID("username")},
		{in: "xpath=//a[text()='Log out']", want: XPath("//a[text()='Log out']")},
		{in: "css=input[name=q]", want: CSS("input[name=q]")},
		{in: "username", wantErr: true},
		{in: "name=q", wantErr: true},
		{in: "id=", wantErr: true},
	} {
		got, err := ParseLocator(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseLocator(%q) = %v, want error", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLocator(%q) returned error: %v", tc.in, err)
			continue
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("ParseLocator(%q) returned diff (-want/+got):\n%s", tc.in, diff)
		}
		if s := got.String(); s != tc.in {
			t.Errorf("ParseLocator(%q).String() = %q", tc.in, s)
		}
	}
}
