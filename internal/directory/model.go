// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package directory ingests and normalizes the authoritative identity
// state from the directory service (LDAP), producing the in-memory
// DirectorySnapshot the Reconciler drives each forge instance toward.
package directory

import "sort"

// SSHKey is a normalized directory-held SSH public key. Only keys whose
// text begins with "ssh-rsa " survive normalization.
type SSHKey struct {
	OpenSSHKeyText string
	MD5Fingerprint string
}

// User is the canonical in-memory representation of a directory entry.
type User struct {
	DN         string
	Username   string
	MatchID    string
	FullName   string
	Email      string
	IsAdmin    bool
	IsExternal bool
	SSHKeys    []SSHKey
}

// Group is the canonical in-memory representation of a directory group.
// Name may contain exactly one "/" denoting parent/child.
type Group struct {
	Name    string
	Members []string // usernames, sorted
}

// Snapshot is the full normalized directory state for one run. It is
// produced once per run and never mutated afterward.
type Snapshot struct {
	Users  map[string]*User  // keyed by username
	Groups map[string]*Group // keyed by group name
}

// NewSnapshot returns an empty, ready-to-populate Snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Users:  make(map[string]*User),
		Groups: make(map[string]*Group),
	}
}

// SortedUsernames returns the snapshot's usernames in ascending order.
func (s *Snapshot) SortedUsernames() []string {
	names := make([]string, 0, len(s.Users))
	for name := range s.Users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SortedGroupNames returns the snapshot's group names in ascending order.
func (s *Snapshot) SortedGroupNames() []string {
	names := make([]string, 0, len(s.Groups))
	for name := range s.Groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
