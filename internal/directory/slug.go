// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package directory

import "github.com/archmagece/ldapforge-sync/internal/slug"

// usernameSlug restricts raw to the username character set, collapsing any
// run of disallowed characters to a single comma.
func usernameSlug(raw string) string {
	return slug.Username(raw)
}
