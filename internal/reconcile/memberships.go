// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package reconcile

import (
	"context"
	"strings"

	"github.com/archmagece/ldapforge-sync/internal/forge"
)

// membershipsPhase runs after both the users and groups phases have
// settled foundUsers/foundGroups, so every directory username that was
// created, blocked, or updated this run already has a forge identity to
// add or remove from a group.
func (r *Reconciler) membershipsPhase(ctx context.Context) error {
	for _, name := range r.snapshot.SortedGroupNames() {
		if r.ignoredGroup(name) {
			continue
		}
		dg := r.snapshot.Groups[name]

		fg, ok := r.foundGroups[strings.ToLower(groupFullPath(name))]
		if !ok {
			// Group creation was skipped earlier (empty + createEmptyGroups=false,
			// or a non-fatal forge error) — nothing to reconcile membership for.
			continue
		}

		if err := r.reconcileGroupMembers(ctx, fg, dg.Members); err != nil {
			return err
		}
	}
	return nil
}

// reconcileGroupMembers diffs wantedUsernames — {usernames in
// (found∪new∪update) ∩ directoryGroup.members} — against the group's
// current forge membership, already restricted to identities this
// Reconciler resolved earlier in the run. It adds missing members and
// removes extras, case-insensitively, skipping built-ins.
func (r *Reconciler) reconcileGroupMembers(ctx context.Context, fg *forge.Group, wantedUsernames []string) error {
	wanted := make(map[string]bool, len(wantedUsernames))
	for _, username := range wantedUsernames {
		key := strings.ToLower(username)
		if isBuiltinUser(username) || r.ignoredUser(username) {
			continue
		}
		if _, ok := r.foundUsers[key]; !ok {
			// Username is in the directory group but has no resolved forge
			// identity this run (e.g. its user create/update was skipped).
			continue
		}
		wanted[key] = true
	}

	existing, err := r.client.ListGroupMembers(ctx, fg.ID)
	if skip, ferr := r.handleForgeError(err, "list group members: "+fg.FullPath); ferr != nil {
		return ferr
	} else if skip {
		return nil
	}

	have := make(map[string]*forge.User, len(existing))
	for _, u := range existing {
		if isBuiltinUser(u.Username) {
			continue
		}
		have[strings.ToLower(u.Username)] = u
	}

	for key := range wanted {
		if _, present := have[key]; present {
			continue
		}
		fu := r.foundUsers[key]
		err := r.client.AddGroupMember(ctx, fg.ID, fu.ID, r.opts.NewMemberAccessLevel)
		if skip, ferr := r.handleForgeError(err, "add group member: "+fg.FullPath+"/"+fu.Username); ferr != nil {
			return ferr
		} else if skip {
			continue
		}
		r.counters.MembersAdded++
	}

	for key, fu := range have {
		if wanted[key] {
			continue
		}
		err := r.client.RemoveGroupMember(ctx, fg.ID, fu.ID)
		if skip, ferr := r.handleForgeError(err, "remove group member: "+fg.FullPath+"/"+fu.Username); ferr != nil {
			return ferr
		} else if skip {
			continue
		}
		r.counters.MembersRemoved++
	}

	return nil
}
