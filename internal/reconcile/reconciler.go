// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package reconcile is the core state machine: it loads the observed
// forge state, computes the new/extra/existing partitions for users and
// groups against the directory's Snapshot, and drives memberships and
// SSH keys, honoring dry-run and continue-on-failure.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/archmagece/ldapforge-sync/internal/config"
	"github.com/archmagece/ldapforge-sync/internal/directory"
	"github.com/archmagece/ldapforge-sync/internal/forge"
	"github.com/archmagece/ldapforge-sync/internal/logging"
)

// Reconciler drives exactly one forge instance toward a directory.Snapshot
// over the course of one run.
type Reconciler struct {
	snapshot       *directory.Snapshot
	client         forge.Client
	opts           config.GitLabOptions
	ldapServerName string
	continueOnFail bool
	dryRun         bool
	log            logging.Logger

	counters Counters

	// foundUsers/foundGroups accumulate every user/group this Reconciler
	// knows about by the end of the users/groups phases — both those
	// already on the forge and those created this run (real or
	// synthetic under dry-run) — so the memberships phase can resolve a
	// directory username or group name to a forge identity.
	foundUsers  map[string]*forge.User
	foundGroups map[string]*forge.Group
}

// New builds a Reconciler for one forge instance.
func New(snapshot *directory.Snapshot, client forge.Client, opts config.GitLabOptions, ldapServerName string, continueOnFail, dryRun bool, log logging.Logger) *Reconciler {
	return &Reconciler{
		snapshot:       snapshot,
		client:         client,
		opts:           opts,
		ldapServerName: ldapServerName,
		continueOnFail: continueOnFail,
		dryRun:         dryRun,
		log:            log,
		foundUsers:     make(map[string]*forge.User),
		foundGroups:    make(map[string]*forge.Group),
	}
}

// Run executes the users phase, the groups phase, and finally the
// memberships/SSH-key phase, in that order.
func (r *Reconciler) Run(ctx context.Context) (*Counters, error) {
	if err := r.usersPhase(ctx); err != nil {
		return &r.counters, err
	}
	if err := r.groupsPhase(ctx); err != nil {
		return &r.counters, err
	}
	if err := r.membershipsPhase(ctx); err != nil {
		return &r.counters, err
	}
	r.log.Info("reconcile complete", r.counters.Summary()...)
	return &r.counters, nil
}

// handleForgeError applies the per-error-class policy: a known error is
// logged and skipped, a transient error is fatal unless continueOnFail is
// set. It returns (skip, err): skip is true when the caller should drop
// the current entity and continue; err is non-nil only when the run must
// abort.
func (r *Reconciler) handleForgeError(err error, entity string) (skip bool, fatal error) {
	if err == nil {
		return false, nil
	}

	var ferr *forge.Error
	if !errors.As(err, &ferr) {
		r.log.Error("unclassified forge error, skipping entity", "entity", entity, "error", err.Error())
		return true, nil
	}

	switch ferr.Kind {
	case forge.KindKnown:
		r.log.Warn("known forge condition, skipping entity", "entity", entity, "error", ferr.Error())
		return true, nil
	case forge.KindTransient:
		if r.continueOnFail {
			r.log.Error("forge error, continuing past entity", "entity", entity, "error", ferr.Error())
			return true, nil
		}
		return true, fmt.Errorf("forge error on %s: %w", entity, ferr)
	default:
		return true, fmt.Errorf("forge error on %s: %w", entity, ferr)
	}
}

func isBuiltinUser(username string) bool {
	return forge.BuiltinUsernames[username]
}

func isBuiltinGroup(name string) bool {
	return forge.BuiltinGroupNames[name]
}
