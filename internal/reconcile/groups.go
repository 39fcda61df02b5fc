// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package reconcile

import (
	"context"
	"strings"

	"github.com/archmagece/ldapforge-sync/internal/forge"
	"github.com/archmagece/ldapforge-sync/internal/slug"
)

// groupsPhase lists forge groups, creates missing ones (parents before
// children), then deletes groups no longer present in the directory.
func (r *Reconciler) groupsPhase(ctx context.Context) error {
	if err := r.listForgeGroups(ctx); err != nil {
		return err
	}

	for _, name := range r.snapshot.SortedGroupNames() {
		g := r.snapshot.Groups[name]
		if r.ignoredGroup(name) {
			continue
		}
		if err := r.ensureGroup(ctx, name, len(g.Members) > 0); err != nil {
			return err
		}
	}

	return r.deleteExtraGroups(ctx)
}

func (r *Reconciler) ignoredGroup(name string) bool {
	for _, ignored := range r.opts.GroupNamesToIgnore {
		if strings.EqualFold(ignored, name) {
			return true
		}
	}
	return false
}

func (r *Reconciler) listForgeGroups(ctx context.Context) error {
	groups, err := r.client.ListGroups(ctx)
	if skip, ferr := r.handleForgeError(err, "list groups"); ferr != nil {
		return ferr
	} else if skip {
		return nil
	}

	for _, g := range groups {
		if g.Name == "" || g.Path == "" || g.FullPath == "" {
			r.log.Warn("forge group missing name/path/fullPath, dropping", "id", g.ID)
			continue
		}
		if isBuiltinGroup(g.Name) || r.ignoredGroup(g.Name) {
			continue
		}
		key := strings.ToLower(g.FullPath)
		if existing, dup := r.foundGroups[key]; dup {
			r.log.Warn("duplicate forge group, dropping later entry", "full_path", g.FullPath, "existing_id", existing.ID)
			continue
		}
		r.foundGroups[key] = g
	}
	return nil
}

// ensureGroup creates the directory group named name (possibly
// "parent/child") if it is not already present on the forge, creating the
// parent first when needed. hasMembers gates the createEmptyGroups check.
func (r *Reconciler) ensureGroup(ctx context.Context, name string, hasMembers bool) error {
	var parentFullPath string
	var parentID *int
	childName := name

	if idx := strings.IndexByte(name, '/'); idx >= 0 {
		parentRaw := name[:idx]
		childName = name[idx+1:]

		parent, err := r.resolveOrCreateParent(ctx, parentRaw)
		if err != nil {
			return err
		}
		if parent == nil {
			return nil // parent creation was skipped (e.g. forge error, continue-on-fail)
		}
		parentFullPath = parent.FullPath
		id := parent.ID
		parentID = &id
	}

	slugName := slug.Name(childName)
	slugPath := slug.Path(childName)

	fullPath := slugPath
	if parentFullPath != "" {
		fullPath = parentFullPath + "/" + slugPath
	}
	key := strings.ToLower(fullPath)

	if _, exists := r.foundGroups[key]; exists {
		return nil
	}

	if !hasMembers && !r.opts.CreateEmptyGroups {
		r.log.Warn("skipping empty group", "group", name)
		r.counters.GroupsSkipped++
		return nil
	}

	created, err := r.client.CreateGroup(ctx, forge.GroupAttrs{
		Name:       slugName,
		Path:       slugPath,
		ParentID:   parentID,
		Visibility: "private",
	})
	if skip, ferr := r.handleForgeError(err, "create group: "+name); ferr != nil {
		return ferr
	} else if skip {
		r.counters.GroupsSkipped++
		return nil
	}

	created.Name = slugName
	created.Path = slugPath
	created.FullPath = fullPath
	created.ParentID = parentID
	r.foundGroups[key] = created
	r.counters.GroupsCreated++

	return nil
}

// resolveOrCreateParent finds the existing forge parent group for
// parentRaw or creates it as an empty, member-less container.
func (r *Reconciler) resolveOrCreateParent(ctx context.Context, parentRaw string) (*forge.Group, error) {
	slugPath := slug.Path(parentRaw)
	key := strings.ToLower(slugPath)
	if existing, ok := r.foundGroups[key]; ok {
		return existing, nil
	}

	created, err := r.client.CreateGroup(ctx, forge.GroupAttrs{
		Name:       slug.Name(parentRaw),
		Path:       slugPath,
		Visibility: "private",
	})
	if skip, ferr := r.handleForgeError(err, "create parent group: "+parentRaw); ferr != nil {
		return nil, ferr
	} else if skip {
		r.counters.GroupsSkipped++
		return nil, nil
	}

	created.Name = slug.Name(parentRaw)
	created.Path = slugPath
	created.FullPath = slugPath
	r.foundGroups[key] = created
	r.counters.GroupsCreated++
	return created, nil
}

// deleteExtraGroups deletes a forge group absent from the directory,
// unless deleteExtraGroups is false, or it still has projects or
// subgroups.
func (r *Reconciler) deleteExtraGroups(ctx context.Context) error {
	directoryFullPaths := r.directoryGroupFullPaths()

	for key, g := range r.foundGroups {
		if _, inDirectory := directoryFullPaths[key]; inDirectory {
			continue
		}
		if !r.opts.DeleteExtraGroups {
			r.log.Info("extra forge group retained (deleteExtraGroups=false)", "full_path", g.FullPath)
			continue
		}

		hasChildren, err := r.client.GroupHasProjectsOrSubgroups(ctx, g.ID)
		if skip, ferr := r.handleForgeError(err, "check group contents: "+g.FullPath); ferr != nil {
			return ferr
		} else if skip {
			continue
		}
		if hasChildren {
			r.log.Warn("refusing to delete non-empty group", "full_path", g.FullPath)
			continue
		}

		if err := r.client.DeleteGroup(ctx, g.ID); err != nil {
			if skip, ferr := r.handleForgeError(err, "delete group: "+g.FullPath); ferr != nil {
				return ferr
			} else if skip {
				continue
			}
		}
		r.counters.GroupsDeleted++
	}
	return nil
}

// directoryGroupFullPaths computes, for each directory group, the
// lower-cased forge fullPath it is expected to map to, so the deletion
// pass can tell an "extra" forge group from a known one.
func (r *Reconciler) directoryGroupFullPaths() map[string]bool {
	out := make(map[string]bool, len(r.snapshot.Groups))
	for name := range r.snapshot.Groups {
		out[strings.ToLower(groupFullPath(name))] = true
	}
	return out
}

// groupFullPath derives the forge fullPath a directory group name
// ("name" or "parent/child") slugifies to, independent of whether either
// half was actually created or resolved this run.
func groupFullPath(name string) string {
	childName := name
	parentPath := ""
	if idx := strings.IndexByte(name, '/'); idx >= 0 {
		parentPath = slug.Path(name[:idx])
		childName = name[idx+1:]
	}
	fullPath := slug.Path(childName)
	if parentPath != "" {
		fullPath = parentPath + "/" + fullPath
	}
	return fullPath
}
