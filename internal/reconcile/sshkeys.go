// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package reconcile

import (
	"context"

	"github.com/archmagece/ldapforge-sync/internal/directory"
	"github.com/archmagece/ldapforge-sync/internal/forge"
)

// reconcileUserSSHKeys diffs a user's directory and forge SSH keys: add
// every directory key whose fingerprint the forge user lacks, remove
// every forge ssh-rsa key whose fingerprint the directory lacks.
// Non-ssh-rsa forge keys are left alone.
func (r *Reconciler) reconcileUserSSHKeys(ctx context.Context, fu *forge.User, directoryKeys []directory.SSHKey) error {
	wanted := make(map[string]directory.SSHKey, len(directoryKeys))
	for _, k := range directoryKeys {
		wanted[k.MD5Fingerprint] = k
	}

	have := make(map[string]forge.SSHKey, len(fu.SSHKeys))
	for _, k := range fu.SSHKeys {
		if k.MD5Fingerprint == "" {
			continue // non-ssh-rsa key: ignored, never considered for removal
		}
		have[k.MD5Fingerprint] = k
	}

	for fp, k := range wanted {
		if _, ok := have[fp]; ok {
			continue
		}
		if err := r.client.AddSSHKey(ctx, fu.ID, k.MD5Fingerprint, k.OpenSSHKeyText); err != nil {
			if skip, ferr := r.handleForgeError(err, "add ssh key: "+fu.Username); ferr != nil {
				return ferr
			} else if skip {
				continue
			}
		}
		r.counters.KeysAdded++
	}

	for fp, k := range have {
		if _, ok := wanted[fp]; ok {
			continue
		}
		if err := r.client.RemoveSSHKey(ctx, fu.ID, k.ID); err != nil {
			if skip, ferr := r.handleForgeError(err, "remove ssh key: "+fu.Username); ferr != nil {
				return ferr
			} else if skip {
				continue
			}
		}
		r.counters.KeysRemoved++
	}

	return nil
}
