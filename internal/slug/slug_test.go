package slug

import "testing"

func TestUsername(t *testing.T) {
	cases := map[string]string{
		"alice":         "alice",
		"alice.o":       "alice.o",
		"Alice O'Brien": "Alice,O,Brien",
		"a  b":          "a,b",
		"user@example":  "user,example",
	}
	for in, want := range cases {
		if got := Username(in); got != want {
			t.Errorf("Username(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestName(t *testing.T) {
	cases := map[string]string{
		"Platform Team": "Platform Team",
		"Platform_Team": "Platform Team",
		"  R&D Group  ": "R D Group",
		"Foo--Bar":      "Foo Bar",
	}
	for in, want := range cases {
		if got := Name(in); got != want {
			t.Errorf("Name(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPath(t *testing.T) {
	cases := map[string]string{
		"Platform Team": "platform-team",
		"Platform_Team": "platform-team",
		"  R&D Group  ": "r-d-group",
		"Foo--Bar":      "foo-bar",
		"UPPER":         "upper",
	}
	for in, want := range cases {
		if got := Path(in); got != want {
			t.Errorf("Path(%q) = %q, want %q", in, got, want)
		}
	}
}
