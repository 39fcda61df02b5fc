// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package forge is the thin, retry-aware facade over the code-forge's REST
// API and the in-memory mirror of its identity state that the Reconciler
// diffs against.
package forge

// SSHKey is a forge-held SSH public key, keyed by its own numeric id so it
// can be individually removed.
type SSHKey struct {
	ID             int
	OpenSSHKeyText string
	MD5Fingerprint string
}

// User is the canonical in-memory representation of a forge account.
// Synthetic marks a dry-run placeholder created without a live API call;
// SyntheticKey ("dry:<dn>") substitutes for ID in that case.
type User struct {
	ID           int
	Username     string
	Blocked      bool
	SSHKeys      []SSHKey
	Synthetic    bool
	SyntheticKey string
}

// Group is the canonical in-memory representation of a forge group.
// ParentID is nil for a top-level group. Synthetic/SyntheticKey mirror
// User's dry-run placeholder mechanism.
type Group struct {
	ID           int
	Name         string
	Path         string
	FullPath     string
	ParentID     *int
	Synthetic    bool
	SyntheticKey string
}

// BuiltinUsernames are forge accounts that are observed but never mutated.
var BuiltinUsernames = map[string]bool{
	"root":         true,
	"ghost":        true,
	"support-bot":  true,
	"alert-bot":    true,
}

// BuiltinGroupNames are forge groups that are never the subject of a
// mutating call.
var BuiltinGroupNames = map[string]bool{
	"Root":           true,
	"Users":          true,
	"GitLab Instance": true,
}
