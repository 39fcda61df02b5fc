// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package dispatch is the top-level driver: one directory ingestion pass
// feeds a private Reconciler and Pacer per configured forge instance, run
// strictly one after another.
package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/archmagece/ldapforge-sync/internal/config"
	"github.com/archmagece/ldapforge-sync/internal/directory"
	"github.com/archmagece/ldapforge-sync/internal/forge"
	ldaperrors "github.com/archmagece/ldapforge-sync/internal/errors"
	"github.com/archmagece/ldapforge-sync/internal/logging"
	"github.com/archmagece/ldapforge-sync/internal/pacer"
	"github.com/archmagece/ldapforge-sync/internal/reconcile"
)

// InstanceResult is the per-instance outcome of a Run, reported back to
// the CLI for the final summary and exit code.
type InstanceResult struct {
	Instance string
	Counters *reconcile.Counters
	Err      error
}

// Run ingests the directory once and drives every configured forge
// instance toward it in turn, honoring an optional case-insensitive
// instance-name filter. continueOnFail and dryRun apply to every
// instance's Reconciler alike.
func Run(ctx context.Context, cfg *config.Config, instanceFilter string, continueOnFail, dryRun bool, log logging.Logger) ([]InstanceResult, error) {
	names, err := selectInstances(cfg, instanceFilter)
	if err != nil {
		return nil, err
	}

	snapshot, err := ingestDirectory(cfg, log)
	if err != nil {
		return nil, err
	}

	results := make([]InstanceResult, 0, len(names))
	for _, name := range names {
		inst := cfg.GitLab.Instances[name]
		instLog := log.With("instance", name)

		counters, runErr := runInstance(ctx, snapshot, cfg, inst, continueOnFail, dryRun, instLog)
		results = append(results, InstanceResult{Instance: name, Counters: counters, Err: runErr})

		if runErr != nil {
			instLog.Error("instance reconcile failed", "error", runErr.Error())
			if !continueOnFail {
				return results, runErr
			}
		}
	}

	return results, nil
}

// selectInstances returns the configured instance names to run, narrowed
// to filter when non-empty (case-insensitive exact match).
func selectInstances(cfg *config.Config, filter string) ([]string, error) {
	all := cfg.InstanceNames()
	if filter == "" {
		return all, nil
	}
	for _, name := range all {
		if strings.EqualFold(name, filter) {
			return []string{name}, nil
		}
	}
	return nil, ldaperrors.WrapKind(ldaperrors.KindConfig, ldaperrors.ErrInstanceNotFound, fmt.Sprintf("gitlab instance %q", filter))
}

// ingestDirectory runs the Directory Client and Normalizer exactly once,
// regardless of how many forge instances will be driven against the
// result.
func ingestDirectory(cfg *config.Config, log logging.Logger) (*directory.Snapshot, error) {
	client := directory.NewClient(cfg, log.With("component", "directory"))

	rawUsers, err := client.FetchRawUsers()
	if err != nil {
		return nil, err
	}
	rawGroups, err := client.FetchRawGroups()
	if err != nil {
		return nil, err
	}

	normalizer := directory.NewNormalizer(cfg, log.With("component", "normalizer"))
	return normalizer.Normalize(rawUsers, rawGroups), nil
}

// runInstance builds this instance's pacer, forge adapter, and Reconciler
// and runs it to completion.
func runInstance(ctx context.Context, snapshot *directory.Snapshot, cfg *config.Config, inst config.GitLabInstance, continueOnFail, dryRun bool, log logging.Logger) (*reconcile.Counters, error) {
	p := pacer.New(dryRun)

	client, err := forge.NewGitLabAdapter(inst.URL, inst.Token, p, log, dryRun)
	if err != nil {
		return nil, fmt.Errorf("build forge client: %w", err)
	}

	r := reconcile.New(snapshot, client, cfg.GitLab.Options, inst.LdapServerName, continueOnFail, dryRun, log)
	return r.Run(ctx)
}
