package forge

import (
	"context"
	"testing"
	"time"

	"github.com/xanzy/go-gitlab"

	"github.com/archmagece/ldapforge-sync/internal/logging"
	"github.com/archmagece/ldapforge-sync/internal/pacer"
)

func newTestAdapter(t *testing.T, dryRun bool) *GitLabAdapter {
	t.Helper()
	log := logging.NewStdout()
	a, err := NewGitLabAdapter("https://gitlab.example.com", "token", pacer.New(true).WithDelay(time.Millisecond), log, dryRun)
	if err != nil {
		t.Fatalf("NewGitLabAdapter() error = %v", err)
	}
	return a
}

func TestCreateUserDryRunReturnsSyntheticUser(t *testing.T) {
	a := newTestAdapter(t, true)

	u, err := a.CreateUser(context.Background(), UserAttrs{Username: "alice", ExternUID: "uid=alice,dc=example,dc=com"})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if !u.Synthetic {
		t.Error("expected synthetic user under dry-run")
	}
	if u.SyntheticKey != "dry:uid=alice,dc=example,dc=com" {
		t.Errorf("unexpected synthetic key: %q", u.SyntheticKey)
	}
}

func TestCreateGroupDryRunReturnsSyntheticGroup(t *testing.T) {
	a := newTestAdapter(t, true)

	g, err := a.CreateGroup(context.Background(), GroupAttrs{Name: "Devs", Path: "devs"})
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}
	if !g.Synthetic || g.SyntheticKey != "dry:devs" {
		t.Errorf("expected synthetic group dry:devs, got %+v", g)
	}
}

func TestDeleteGroupDryRunSkipsCall(t *testing.T) {
	a := newTestAdapter(t, true)

	if err := a.DeleteGroup(context.Background(), 42); err != nil {
		t.Fatalf("DeleteGroup() error = %v", err)
	}
}

func TestConvertGroupMapsParentID(t *testing.T) {
	g := convertGroup(&gitlab.Group{ID: 2, Name: "backend", Path: "backend", FullPath: "devs/backend", ParentID: 1})
	if g.ParentID == nil || *g.ParentID != 1 {
		t.Errorf("expected parent id 1, got %+v", g.ParentID)
	}

	top := convertGroup(&gitlab.Group{ID: 1, Name: "devs", Path: "devs", FullPath: "devs"})
	if top.ParentID != nil {
		t.Errorf("expected nil parent id for top-level group, got %v", *top.ParentID)
	}
}
