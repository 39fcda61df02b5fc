package directory

import "testing"

func TestUsernameSlugDelegatesToSharedPackage(t *testing.T) {
	cases := map[string]string{
		"alice":         "alice",
		"Alice O'Brien": "Alice,O,Brien",
	}
	for in, want := range cases {
		if got := usernameSlug(in); got != want {
			t.Errorf("usernameSlug(%q) = %q, want %q", in, got, want)
		}
	}
}
