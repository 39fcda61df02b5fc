// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package forge

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/xanzy/go-gitlab"

	"github.com/archmagece/ldapforge-sync/internal/logging"
	"github.com/archmagece/ldapforge-sync/internal/pacer"
	"github.com/archmagece/ldapforge-sync/internal/sshkey"
)

const listPageSize = 100

// GitLabAdapter implements Client against a single GitLab instance's REST
// API, via xanzy/go-gitlab. It owns the pacing delay between mutating
// calls and the dry-run gate.
type GitLabAdapter struct {
	gl     *gitlab.Client
	pace   *pacer.Pacer
	log    logging.Logger
	dryRun bool
}

// NewGitLabAdapter builds an adapter for one configured forge instance.
// token is a personal access token; baseURL is the instance's API
// endpoint (empty selects gitlab.com). The underlying HTTP client retries
// transient network and 5xx failures before xanzy/go-gitlab ever sees them.
func NewGitLabAdapter(baseURL, token string, p *pacer.Pacer, log logging.Logger, dryRun bool) (*GitLabAdapter, error) {
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = cleanhttp.DefaultPooledClient()
	retryClient.Logger = nil

	opts := []gitlab.ClientOptionFunc{gitlab.WithHTTPClient(retryClient.StandardClient())}
	if baseURL != "" {
		opts = append(opts, gitlab.WithBaseURL(baseURL))
	}
	gl, err := gitlab.NewClient(token, opts...)
	if err != nil {
		return nil, &Error{Kind: KindTransient, Message: "construct gitlab client", Err: err}
	}
	return &GitLabAdapter{gl: gl, pace: p, log: log, dryRun: dryRun}, nil
}

func (a *GitLabAdapter) afterMutation(ctx context.Context) {
	if err := a.pace.Wait(ctx); err != nil {
		a.log.Debug("pacing wait interrupted", "error", err.Error())
	}
}

// skipDryRun logs a standard skip message and reports whether the
// live call should be skipped.
func (a *GitLabAdapter) skipDryRun(op string, kv ...any) bool {
	if !a.dryRun {
		return false
	}
	a.log.Warn("Operation skipped due to dry run.", append([]any{"operation", op}, kv...)...)
	return true
}

func (a *GitLabAdapter) ListUsers(ctx context.Context) ([]*User, error) {
	return a.listUsers(ctx, nil)
}

func (a *GitLabAdapter) ListBlockedUsers(ctx context.Context) ([]*User, error) {
	return a.listUsers(ctx, gitlab.Ptr(true))
}

func (a *GitLabAdapter) listUsers(ctx context.Context, blocked *bool) ([]*User, error) {
	opts := &gitlab.ListUsersOptions{
		ListOptions: gitlab.ListOptions{PerPage: listPageSize},
		Blocked:     blocked,
	}

	var out []*User
	for {
		users, resp, err := a.gl.Users.ListUsers(opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, transientErr("list users", err)
		}
		for _, u := range users {
			out = append(out, &User{ID: u.ID, Username: u.Username, Blocked: u.State == "blocked"})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

func (a *GitLabAdapter) ListUserSSHKeys(ctx context.Context, userID int) ([]SSHKey, error) {
	keys, _, err := a.gl.Users.ListSSHKeysForUser(userID, &gitlab.ListSSHKeysForUserOptions{PerPage: listPageSize}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, transientErr("list ssh keys", err)
	}
	out := make([]SSHKey, 0, len(keys))
	for _, k := range keys {
		sk := SSHKey{ID: k.ID, OpenSSHKeyText: k.Key}
		if sshkey.IsRSA(k.Key) {
			if fp, err := sshkey.Fingerprint(k.Key); err == nil {
				sk.MD5Fingerprint = fp
			}
		}
		out = append(out, sk)
	}
	return out, nil
}

func (a *GitLabAdapter) CreateUser(ctx context.Context, attrs UserAttrs) (*User, error) {
	if a.skipDryRun("create user", "username", attrs.Username) {
		return &User{Synthetic: true, SyntheticKey: "dry:" + attrs.ExternUID, Username: attrs.Username}, nil
	}

	opts := &gitlab.CreateUserOptions{
		Email:            &attrs.Email,
		Password:         &attrs.Password,
		Username:         &attrs.Username,
		Name:             &attrs.Name,
		ExternUID:        &attrs.ExternUID,
		Provider:         &attrs.Provider,
		Admin:            &attrs.Admin,
		CanCreateGroup:   &attrs.CanCreateGroup,
		External:         &attrs.External,
		SkipConfirmation: &attrs.SkipConfirm,
		ResetPassword:    &attrs.ResetPassword,
	}
	u, _, err := a.gl.Users.CreateUser(opts, gitlab.WithContext(ctx))
	a.afterMutation(ctx)
	if err != nil {
		if strings.Contains(err.Error(), knownEmailTakenMessage) {
			return nil, &Error{Kind: KindKnown, Message: knownEmailTakenMessage, Err: err}
		}
		return nil, transientErr("create user", err)
	}
	return &User{ID: u.ID, Username: u.Username}, nil
}

func (a *GitLabAdapter) UpdateUser(ctx context.Context, userID int, attrs UserAttrs) error {
	if a.skipDryRun("update user", "user_id", userID) {
		return nil
	}

	opts := &gitlab.ModifyUserOptions{
		Email:          &attrs.Email,
		Name:           &attrs.Name,
		ExternUID:      &attrs.ExternUID,
		Provider:       &attrs.Provider,
		Admin:          &attrs.Admin,
		CanCreateGroup: &attrs.CanCreateGroup,
		External:       &attrs.External,
	}
	_, _, err := a.gl.Users.ModifyUser(userID, opts, gitlab.WithContext(ctx))
	a.afterMutation(ctx)
	if err != nil {
		// update-user failures are logged and skipped, never silently
		// dropped.
		return transientErr("update user", err)
	}
	return nil
}

func (a *GitLabAdapter) BlockUser(ctx context.Context, userID int) error {
	if a.skipDryRun("block user", "user_id", userID) {
		return nil
	}
	err := a.gl.Users.BlockUser(userID, gitlab.WithContext(ctx))
	a.afterMutation(ctx)
	if err != nil {
		return transientErr("block user", err)
	}
	return nil
}

func (a *GitLabAdapter) UnblockUser(ctx context.Context, userID int) error {
	if a.skipDryRun("unblock user", "user_id", userID) {
		return nil
	}
	err := a.gl.Users.UnblockUser(userID, gitlab.WithContext(ctx))
	a.afterMutation(ctx)
	if err != nil {
		return transientErr("unblock user", err)
	}
	return nil
}

func (a *GitLabAdapter) AddSSHKey(ctx context.Context, userID int, title, text string) error {
	if a.skipDryRun("add ssh key", "user_id", userID) {
		return nil
	}
	_, _, err := a.gl.Users.AddSSHKeyForUser(userID, &gitlab.AddSSHKeyOptions{Title: &title, Key: &text}, gitlab.WithContext(ctx))
	a.afterMutation(ctx)
	if err != nil {
		return transientErr("add ssh key", err)
	}
	return nil
}

func (a *GitLabAdapter) RemoveSSHKey(ctx context.Context, userID, keyID int) error {
	if a.skipDryRun("remove ssh key", "user_id", userID, "key_id", keyID) {
		return nil
	}
	_, err := a.gl.Users.DeleteSSHKeyForUser(userID, keyID, gitlab.WithContext(ctx))
	a.afterMutation(ctx)
	if err != nil {
		return transientErr("remove ssh key", err)
	}
	return nil
}

func (a *GitLabAdapter) ListGroups(ctx context.Context) ([]*Group, error) {
	opts := &gitlab.ListGroupsOptions{
		ListOptions:  gitlab.ListOptions{PerPage: listPageSize},
		AllAvailable: gitlab.Ptr(true),
	}

	var out []*Group
	for {
		groups, resp, err := a.gl.Groups.ListGroups(opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, transientErr("list groups", err)
		}
		for _, g := range groups {
			out = append(out, convertGroup(g))
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

func convertGroup(g *gitlab.Group) *Group {
	var parentID *int
	if g.ParentID != 0 {
		id := g.ParentID
		parentID = &id
	}
	return &Group{
		ID:       g.ID,
		Name:     g.Name,
		Path:     g.Path,
		FullPath: g.FullPath,
		ParentID: parentID,
	}
}

func (a *GitLabAdapter) ListGroupMembers(ctx context.Context, groupID int) ([]*User, error) {
	opts := &gitlab.ListGroupMembersOptions{ListOptions: gitlab.ListOptions{PerPage: listPageSize}}

	var out []*User
	for {
		members, resp, err := a.gl.Groups.ListGroupMembers(groupID, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, transientErr("list group members", err)
		}
		for _, m := range members {
			out = append(out, &User{ID: m.ID, Username: m.Username})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

func (a *GitLabAdapter) CreateGroup(ctx context.Context, attrs GroupAttrs) (*Group, error) {
	if a.skipDryRun("create group", "path", attrs.Path) {
		return &Group{Synthetic: true, SyntheticKey: "dry:" + attrs.Path, Name: attrs.Name, Path: attrs.Path, FullPath: attrs.Path}, nil
	}

	visibility := gitlab.PrivateVisibilityValue
	opts := &gitlab.CreateGroupOptions{
		Name:       &attrs.Name,
		Path:       &attrs.Path,
		Visibility: &visibility,
	}
	if attrs.ParentID != nil {
		opts.ParentID = attrs.ParentID
	}
	g, _, err := a.gl.Groups.CreateGroup(opts, gitlab.WithContext(ctx))
	a.afterMutation(ctx)
	if err != nil {
		return nil, transientErr("create group", err)
	}
	return convertGroup(g), nil
}

func (a *GitLabAdapter) DeleteGroup(ctx context.Context, groupID int) error {
	if a.skipDryRun("delete group", "group_id", groupID) {
		return nil
	}
	_, err := a.gl.Groups.DeleteGroup(groupID, nil, gitlab.WithContext(ctx))
	a.afterMutation(ctx)
	if err != nil {
		return transientErr("delete group", err)
	}
	return nil
}

func (a *GitLabAdapter) AddGroupMember(ctx context.Context, groupID, userID, accessLevel int) error {
	if a.skipDryRun("add group member", "group_id", groupID, "user_id", userID) {
		return nil
	}
	level := gitlab.AccessLevelValue(accessLevel)
	_, _, err := a.gl.GroupMembers.AddGroupMember(groupID, &gitlab.AddGroupMemberOptions{
		UserID:      &userID,
		AccessLevel: &level,
	}, gitlab.WithContext(ctx))
	a.afterMutation(ctx)
	if err != nil {
		return transientErr("add group member", err)
	}
	return nil
}

func (a *GitLabAdapter) RemoveGroupMember(ctx context.Context, groupID, userID int) error {
	if a.skipDryRun("remove group member", "group_id", groupID, "user_id", userID) {
		return nil
	}
	_, err := a.gl.GroupMembers.RemoveGroupMember(groupID, userID, nil, gitlab.WithContext(ctx))
	a.afterMutation(ctx)
	if err != nil {
		return transientErr("remove group member", err)
	}
	return nil
}

// GroupHasProjectsOrSubgroups backs the groups-phase delete guard: a
// group with at least one project or subgroup is never deleted.
func (a *GitLabAdapter) GroupHasProjectsOrSubgroups(ctx context.Context, groupID int) (bool, error) {
	projects, _, err := a.gl.Groups.ListGroupProjects(groupID, &gitlab.ListGroupProjectsOptions{
		ListOptions: gitlab.ListOptions{PerPage: 1},
	}, gitlab.WithContext(ctx))
	if err != nil {
		return false, transientErr("list group projects", err)
	}
	if len(projects) > 0 {
		return true, nil
	}

	subgroups, _, err := a.gl.Groups.ListSubgroups(groupID, &gitlab.ListSubGroupsOptions{
		ListOptions: gitlab.ListOptions{PerPage: 1},
	}, gitlab.WithContext(ctx))
	if err != nil {
		return false, transientErr("list subgroups", err)
	}
	return len(subgroups) > 0, nil
}

func transientErr(op string, err error) error {
	return &Error{Kind: KindTransient, Message: fmt.Sprintf("%s failed", op), Err: err}
}
