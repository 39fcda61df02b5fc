// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package reconcile

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/archmagece/ldapforge-sync/internal/config"
	"github.com/archmagece/ldapforge-sync/internal/forge"
	"github.com/archmagece/ldapforge-sync/internal/logging"
)

// fakeClient is an in-memory forge.Client double. It is deliberately
// simple: enough state to drive the three reconciler phases without a
// network, plus a handful of error-injection knobs used by individual
// tests.
type fakeClient struct {
	users      map[int]*forge.User
	groups     map[int]*forge.Group
	members    map[int]map[int]bool // groupID -> userID set
	nextUserID int
	nextGroupID int

	failListUsers  error
	failCreateUser error
	knownEmailTaken bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		users:       make(map[int]*forge.User),
		groups:      make(map[int]*forge.Group),
		members:     make(map[int]map[int]bool),
		nextUserID:  1,
		nextGroupID: 1,
	}
}

func (f *fakeClient) addExistingUser(username string, blocked bool) *forge.User {
	u := &forge.User{ID: f.nextUserID, Username: username, Blocked: blocked}
	f.users[u.ID] = u
	f.nextUserID++
	return u
}

func (f *fakeClient) addExistingGroup(fullPath string) *forge.Group {
	parts := strings.Split(fullPath, "/")
	g := &forge.Group{ID: f.nextGroupID, Name: parts[len(parts)-1], Path: parts[len(parts)-1], FullPath: fullPath}
	f.groups[g.ID] = g
	f.members[g.ID] = make(map[int]bool)
	f.nextGroupID++
	return g
}

func (f *fakeClient) ListUsers(ctx context.Context) ([]*forge.User, error) {
	if f.failListUsers != nil {
		return nil, f.failListUsers
	}
	out := make([]*forge.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeClient) ListBlockedUsers(ctx context.Context) ([]*forge.User, error) {
	var out []*forge.User
	for _, u := range f.users {
		if u.Blocked {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeClient) ListUserSSHKeys(ctx context.Context, userID int) ([]forge.SSHKey, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, errors.New("no such user")
	}
	return u.SSHKeys, nil
}

func (f *fakeClient) CreateUser(ctx context.Context, attrs forge.UserAttrs) (*forge.User, error) {
	if f.failCreateUser != nil {
		return nil, f.failCreateUser
	}
	if f.knownEmailTaken {
		return nil, &forge.Error{Kind: forge.KindKnown, Message: "Email has already been taken"}
	}
	u := &forge.User{ID: f.nextUserID, Username: attrs.Username, Blocked: false}
	f.users[u.ID] = u
	f.nextUserID++
	return u, nil
}

func (f *fakeClient) UpdateUser(ctx context.Context, userID int, attrs forge.UserAttrs) error {
	_, ok := f.users[userID]
	if !ok {
		return errors.New("no such user")
	}
	return nil
}

func (f *fakeClient) BlockUser(ctx context.Context, userID int) error {
	u, ok := f.users[userID]
	if !ok {
		return errors.New("no such user")
	}
	u.Blocked = true
	return nil
}

func (f *fakeClient) UnblockUser(ctx context.Context, userID int) error {
	u, ok := f.users[userID]
	if !ok {
		return errors.New("no such user")
	}
	u.Blocked = false
	return nil
}

func (f *fakeClient) AddSSHKey(ctx context.Context, userID int, title, text string) error {
	u, ok := f.users[userID]
	if !ok {
		return errors.New("no such user")
	}
	u.SSHKeys = append(u.SSHKeys, forge.SSHKey{ID: len(u.SSHKeys) + 1, OpenSSHKeyText: text, MD5Fingerprint: title})
	return nil
}

func (f *fakeClient) RemoveSSHKey(ctx context.Context, userID, keyID int) error {
	u, ok := f.users[userID]
	if !ok {
		return errors.New("no such user")
	}
	for i, k := range u.SSHKeys {
		if k.ID == keyID {
			u.SSHKeys = append(u.SSHKeys[:i], u.SSHKeys[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeClient) ListGroups(ctx context.Context) ([]*forge.Group, error) {
	out := make([]*forge.Group, 0, len(f.groups))
	for _, g := range f.groups {
		out = append(out, g)
	}
	return out, nil
}

func (f *fakeClient) ListGroupMembers(ctx context.Context, groupID int) ([]*forge.User, error) {
	members, ok := f.members[groupID]
	if !ok {
		return nil, nil
	}
	out := make([]*forge.User, 0, len(members))
	for uid := range members {
		if u, ok := f.users[uid]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeClient) CreateGroup(ctx context.Context, attrs forge.GroupAttrs) (*forge.Group, error) {
	fullPath := attrs.Path
	if attrs.ParentID != nil {
		if parent, ok := f.groups[*attrs.ParentID]; ok {
			fullPath = parent.FullPath + "/" + attrs.Path
		}
	}
	g := &forge.Group{ID: f.nextGroupID, Name: attrs.Name, Path: attrs.Path, FullPath: fullPath, ParentID: attrs.ParentID}
	f.groups[g.ID] = g
	f.members[g.ID] = make(map[int]bool)
	f.nextGroupID++
	return g, nil
}

func (f *fakeClient) DeleteGroup(ctx context.Context, groupID int) error {
	delete(f.groups, groupID)
	delete(f.members, groupID)
	return nil
}

func (f *fakeClient) AddGroupMember(ctx context.Context, groupID, userID, accessLevel int) error {
	members, ok := f.members[groupID]
	if !ok {
		return errors.New("no such group")
	}
	members[userID] = true
	return nil
}

func (f *fakeClient) RemoveGroupMember(ctx context.Context, groupID, userID int) error {
	members, ok := f.members[groupID]
	if !ok {
		return errors.New("no such group")
	}
	delete(members, userID)
	return nil
}

func (f *fakeClient) GroupHasProjectsOrSubgroups(ctx context.Context, groupID int) (bool, error) {
	return false, nil
}

func silentLogger() logging.Logger {
	return logging.New(io.Discard, "error")
}

func testOptions() config.GitLabOptions {
	return config.GitLabOptions{
		CreateEmptyGroups:    true,
		DeleteExtraGroups:    true,
		NewMemberAccessLevel: 30,
	}
}
