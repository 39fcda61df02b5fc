// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package reconcile

import (
	"context"
	"crypto/rand"
	"strings"

	"github.com/archmagece/ldapforge-sync/internal/directory"
	"github.com/archmagece/ldapforge-sync/internal/forge"
)

const generatedPasswordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
const generatedPasswordLength = 12

// generatePassword returns a uniformly random 12-character alphanumeric
// string drawn from a cryptographic RNG.
func generatePassword() (string, error) {
	buf := make([]byte, generatedPasswordLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, generatedPasswordLength)
	alphabetLen := byte(len(generatedPasswordAlphabet))
	for i, b := range buf {
		out[i] = generatedPasswordAlphabet[b%alphabetLen]
	}
	return string(out), nil
}

// usersPhase lists forge users, then creates, blocks, and updates them
// to match the directory, in that order.
func (r *Reconciler) usersPhase(ctx context.Context) error {
	if err := r.listForgeUsers(ctx); err != nil {
		return err
	}

	for _, username := range r.snapshot.SortedUsernames() {
		u := r.snapshot.Users[username]
		if r.ignoredUser(username) {
			continue
		}
		if _, exists := r.foundUsers[strings.ToLower(username)]; exists {
			continue
		}
		if err := r.createUser(ctx, u); err != nil {
			return err
		}
	}

	for key, fu := range r.foundUsers {
		if fu.Blocked {
			continue // already blocked forge users are reconsidered in the update loop below
		}
		if _, inDirectory := r.snapshot.Users[fu.Username]; inDirectory {
			continue
		}
		if isBuiltinUser(fu.Username) || r.ignoredUser(fu.Username) {
			continue
		}
		if err := r.blockUser(ctx, key, fu); err != nil {
			return err
		}
	}

	for username, u := range r.snapshot.Users {
		fu, exists := r.foundUsers[strings.ToLower(username)]
		if !exists {
			continue
		}
		if err := r.updateUser(ctx, u, fu); err != nil {
			return err
		}
	}

	return nil
}

func (r *Reconciler) ignoredUser(username string) bool {
	for _, ignored := range r.opts.UserNamesToIgnore {
		if strings.EqualFold(ignored, username) {
			return true
		}
	}
	return false
}

func (r *Reconciler) listForgeUsers(ctx context.Context) error {
	users, err := r.client.ListUsers(ctx)
	if skip, ferr := r.handleForgeError(err, "list users"); ferr != nil {
		return ferr
	} else if skip {
		return nil
	}

	for _, u := range users {
		if isBuiltinUser(u.Username) || r.ignoredUser(u.Username) {
			continue
		}
		key := strings.ToLower(u.Username)
		if existing, dup := r.foundUsers[key]; dup {
			r.log.Warn("duplicate forge user, dropping later entry", "username", u.Username, "existing_id", existing.ID)
			continue
		}

		keys, err := r.client.ListUserSSHKeys(ctx, u.ID)
		if skip, ferr := r.handleForgeError(err, "list ssh keys: "+u.Username); ferr != nil {
			return ferr
		} else if !skip {
			u.SSHKeys = keys
		}

		r.foundUsers[key] = u
	}
	return nil
}

func (r *Reconciler) createUser(ctx context.Context, u *directory.User) error {
	password, err := generatePassword()
	if err != nil {
		return err
	}

	attrs := forge.UserAttrs{
		Email:          u.Email,
		Password:       password,
		Username:       u.Username,
		Name:           u.FullName,
		ExternUID:      u.DN,
		Provider:       r.ldapServerName,
		Admin:          u.IsAdmin,
		CanCreateGroup: u.IsAdmin,
		External:       u.IsExternal,
		SkipConfirm:    true,
		ResetPassword:  false,
	}

	created, err := r.client.CreateUser(ctx, attrs)
	if skip, ferr := r.handleForgeError(err, "create user: "+u.Username); ferr != nil {
		return ferr
	} else if skip {
		r.counters.UsersSkipped++
		return nil
	}

	r.foundUsers[strings.ToLower(u.Username)] = created
	r.counters.UsersCreated++

	if err := r.reconcileUserSSHKeys(ctx, created, u.SSHKeys); err != nil {
		return err
	}
	return nil
}

func (r *Reconciler) blockUser(ctx context.Context, key string, fu *forge.User) error {
	err := r.client.BlockUser(ctx, fu.ID)
	if skip, ferr := r.handleForgeError(err, "block user: "+fu.Username); ferr != nil {
		return ferr
	} else if skip {
		r.counters.UsersSkipped++
		return nil
	}
	fu.Blocked = true
	r.counters.UsersBlocked++

	err = r.client.UpdateUser(ctx, fu.ID, forge.UserAttrs{Admin: false, CanCreateGroup: false, External: true})
	if skip, ferr := r.handleForgeError(err, "demote blocked user: "+fu.Username); ferr != nil {
		return ferr
	} else if skip {
		return nil
	}
	r.foundUsers[key] = fu
	return nil
}

func (r *Reconciler) updateUser(ctx context.Context, u *directory.User, fu *forge.User) error {
	if fu.Blocked {
		err := r.client.UnblockUser(ctx, fu.ID)
		if skip, ferr := r.handleForgeError(err, "unblock user: "+u.Username); ferr != nil {
			return ferr
		} else if !skip {
			fu.Blocked = false
		}
	}

	attrs := forge.UserAttrs{
		Email:          u.Email,
		Name:           u.FullName,
		ExternUID:      u.DN,
		Provider:       r.ldapServerName,
		Admin:          u.IsAdmin,
		CanCreateGroup: u.IsAdmin,
		External:       u.IsExternal,
	}
	err := r.client.UpdateUser(ctx, fu.ID, attrs)
	if skip, ferr := r.handleForgeError(err, "update user: "+u.Username); ferr != nil {
		return ferr
	} else if skip {
		r.counters.UsersSkipped++
		return nil
	}
	r.counters.UsersUpdated++

	return r.reconcileUserSSHKeys(ctx, fu, u.SSHKeys)
}
