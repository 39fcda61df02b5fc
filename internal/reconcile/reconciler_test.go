// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archmagece/ldapforge-sync/internal/directory"
	"github.com/archmagece/ldapforge-sync/internal/forge"
)

func TestRunEndToEndUserAndGroup(t *testing.T) {
	snap := directory.NewSnapshot()
	snap.Users["alice"] = &directory.User{DN: "uid=alice,ou=people", Username: "alice", Email: "alice@example.com"}
	snap.Groups["Platform Team"] = &directory.Group{Name: "Platform Team", Members: []string{"alice"}}

	client := newFakeClient()
	r := newTestReconciler(snap, client)

	counters, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, counters.UsersCreated)
	assert.Equal(t, 1, counters.GroupsCreated)
	assert.Equal(t, 1, counters.MembersAdded)
}

func TestHandleForgeErrorUnclassifiedSkipsWithoutFatal(t *testing.T) {
	r := newTestReconciler(directory.NewSnapshot(), newFakeClient())
	skip, fatal := r.handleForgeError(errors.New("boom"), "entity")
	assert.True(t, skip)
	assert.NoError(t, fatal)
}

func TestHandleForgeErrorKnownSkipsWithoutFatal(t *testing.T) {
	r := newTestReconciler(directory.NewSnapshot(), newFakeClient())
	skip, fatal := r.handleForgeError(&forge.Error{Kind: forge.KindKnown, Message: "known"}, "entity")
	assert.True(t, skip)
	assert.NoError(t, fatal)
}

func TestHandleForgeErrorTransientIsFatalWithoutContinueOnFail(t *testing.T) {
	r := New(directory.NewSnapshot(), newFakeClient(), testOptions(), "ldap-main", false, false, silentLogger())
	_, fatal := r.handleForgeError(&forge.Error{Kind: forge.KindTransient, Message: "down"}, "entity")
	assert.Error(t, fatal)
}

func TestHandleForgeErrorTransientSkipsWithContinueOnFail(t *testing.T) {
	r := New(directory.NewSnapshot(), newFakeClient(), testOptions(), "ldap-main", true, false, silentLogger())
	skip, fatal := r.handleForgeError(&forge.Error{Kind: forge.KindTransient, Message: "down"}, "entity")
	assert.True(t, skip)
	assert.NoError(t, fatal)
}

func TestHandleForgeErrorNilIsNoOp(t *testing.T) {
	r := newTestReconciler(directory.NewSnapshot(), newFakeClient())
	skip, fatal := r.handleForgeError(nil, "entity")
	assert.False(t, skip)
	assert.NoError(t, fatal)
}

func TestIsBuiltinUserAndGroup(t *testing.T) {
	assert.True(t, isBuiltinUser("root"))
	assert.False(t, isBuiltinUser("alice"))
	assert.True(t, isBuiltinGroup("Users"))
	assert.False(t, isBuiltinGroup("Platform Team"))
}
