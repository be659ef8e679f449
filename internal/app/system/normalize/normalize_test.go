package normalize_test

import (
	"testing"

	"github.com/dalemusser/gatherhub/internal/app/system/normalize"
)

func TestEmail(t *testing.T) {
	cases := []struct{ in, want string }{
		{"User@Example.COM", "user@example.com"},
		{"  spaced@example.com  ", "spaced@example.com"},
		{"already@lower.com", "already@lower.com"},
		{"", ""},
	}
	for _, c := range cases {
		if got := normalize.Email(c.in); got != c.want {
			t.Errorf("Email(%q): got %q, want %q", c.in, got, c.want)
		}
	}
}

func TestAccount(t *testing.T) {
	if got := normalize.Account("  GroupFan99 "); got != "groupfan99" {
		t.Errorf("Account: got %q, want %q", got, "groupfan99")
	}
}

func TestName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  Jamie   Lin ", "Jamie Lin"},
		{"One", "One"},
		{"\tTab\tSeparated\t", "Tab Separated"},
		{"", ""},
	}
	for _, c := range cases {
		if got := normalize.Name(c.in); got != c.want {
			t.Errorf("Name(%q): got %q, want %q", c.in, got, c.want)
		}
	}
}
