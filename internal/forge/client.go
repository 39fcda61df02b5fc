// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package forge

import "context"

// UserAttrs is the attribute set written on create and on update;
// Username and Password are creation-only and omitted on update.
type UserAttrs struct {
	Email           string
	Username        string
	Password        string
	Name            string
	ExternUID       string
	Provider        string
	Admin           bool
	CanCreateGroup  bool
	External        bool
	SkipConfirm     bool
	ResetPassword   bool
}

// GroupAttrs is the attribute set written on group creation.
type GroupAttrs struct {
	Name       string
	Path       string
	ParentID   *int
	Visibility string
}

// Client is the forge adapter's interface: every method that mutates
// forge state is paced and dry-run aware; every listing method pages
// until an empty page is returned.
type Client interface {
	ListUsers(ctx context.Context) ([]*User, error)
	ListBlockedUsers(ctx context.Context) ([]*User, error)
	ListUserSSHKeys(ctx context.Context, userID int) ([]SSHKey, error)
	CreateUser(ctx context.Context, attrs UserAttrs) (*User, error)
	UpdateUser(ctx context.Context, userID int, attrs UserAttrs) error
	BlockUser(ctx context.Context, userID int) error
	UnblockUser(ctx context.Context, userID int) error
	AddSSHKey(ctx context.Context, userID int, title, text string) error
	RemoveSSHKey(ctx context.Context, userID int, keyID int) error

	ListGroups(ctx context.Context) ([]*Group, error)
	ListGroupMembers(ctx context.Context, groupID int) ([]*User, error)
	CreateGroup(ctx context.Context, attrs GroupAttrs) (*Group, error)
	DeleteGroup(ctx context.Context, groupID int) error
	AddGroupMember(ctx context.Context, groupID, userID, accessLevel int) error
	RemoveGroupMember(ctx context.Context, groupID, userID int) error
	GroupHasProjectsOrSubgroups(ctx context.Context, groupID int) (bool, error)
}

// Kind classifies a forge-adapter failure for the Reconciler's per-error
// policy.
type Kind string

const (
	KindTransient Kind = "forge_transient"
	KindKnown     Kind = "forge_known"
)

// Error is the typed failure surfaced by a mutating adapter call.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// knownEmailTakenMessage is the well-known GitLab response body recognized
// and demoted to a non-fatal skip.
const knownEmailTakenMessage = "Email has already been taken"
