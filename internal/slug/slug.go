// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package slug implements the three slugification rules shared by the
// directory normalizer and the groups-phase reconciler, so a directory
// username or group name maps to the identical forge-side identity
// wherever it is computed.
package slug

import "regexp"

var (
	usernameInvalidRun = regexp.MustCompile(`[^A-Za-z0-9\-_.]+`)
	nameInvalidRun     = regexp.MustCompile(`([^A-Za-z0-9]|[-_. ])+`)
	pathInvalidRun     = regexp.MustCompile(`([^A-Za-z0-9]|[-_.])+`)
)

// Username restricts raw to the username character set (A-Z a-z 0-9 - _ .),
// collapsing any run of disallowed characters to a single comma.
func Username(raw string) string {
	return usernameInvalidRun.ReplaceAllString(raw, ",")
}

// Name produces a GitLab group display name: spaces in place of
// disallowed-character runs, case preserved, surrounding whitespace
// trimmed.
func Name(raw string) string {
	return trimSpace(nameInvalidRun.ReplaceAllString(raw, " "))
}

// Path produces a GitLab group path: hyphens in place of
// disallowed-character runs, lower-cased, surrounding hyphens trimmed.
func Path(raw string) string {
	return trimHyphen(pathInvalidRun.ReplaceAllString(toLower(raw), "-"))
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && s[start] == ' ' {
		start++
	}
	for end > start && s[end-1] == ' ' {
		end--
	}
	return s[start:end]
}

func trimHyphen(s string) string {
	start, end := 0, len(s)
	for start < end && s[start] == '-' {
		start++
	}
	for end > start && s[end-1] == '-' {
		end--
	}
	return s[start:end]
}
