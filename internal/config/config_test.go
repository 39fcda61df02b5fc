package config

import (
	"os"
	"path/filepath"
	"testing"

	ldaperrors "github.com/archmagece/ldapforge-sync/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

const validYAML = `
ldap:
  server:
    host: ldap.example.com
    encryption: tls
  queries:
    baseDn: dc=example,dc=com
    userFilter: (objectClass=inetOrgPerson)
    groupFilter: (objectClass=groupOfNames)
    userUniqueAttribute: uid
    userNameAttribute: cn
    userEmailAttribute: mail
    groupUniqueAttribute: cn
    groupMemberAttribute: member
gitlab:
  instances:
    primary:
      url: https://gitlab.example.com
      token: secret-token
      ldapServerName: main
`

func TestLoadValidConfigAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", validYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LDAP.Server.Port != 389 {
		t.Errorf("expected default port 389 for tls, got %d", cfg.LDAP.Server.Port)
	}
	if cfg.LDAP.Server.Version != 3 {
		t.Errorf("expected default version 3, got %d", cfg.LDAP.Server.Version)
	}
	if cfg.GitLab.Options.NewMemberAccessLevel != 30 {
		t.Errorf("expected default newMemberAccessLevel 30, got %d", cfg.GitLab.Options.NewMemberAccessLevel)
	}
	if got := cfg.InstanceNames(); len(got) != 1 || got[0] != "primary" {
		t.Errorf("InstanceNames() = %v, want [primary]", got)
	}
}

func TestLoadMissingFileWithDistHint(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yml.dist", validYAML)
	path := filepath.Join(dir, "config.yml")

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	kind, ok := ldaperrors.KindOf(err)
	if !ok || kind != ldaperrors.KindConfig {
		t.Errorf("expected KindConfig error, got %v (ok=%v)", kind, ok)
	}
}

func TestLoadRejectsInvalidEncryption(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", `
ldap:
  server:
    host: ldap.example.com
    encryption: rot13
  queries:
    baseDn: dc=example,dc=com
    userFilter: (x=1)
    groupFilter: (x=1)
    userUniqueAttribute: uid
    userNameAttribute: cn
    userEmailAttribute: mail
    groupUniqueAttribute: cn
    groupMemberAttribute: member
gitlab:
  instances:
    primary:
      url: https://gitlab.example.com
      token: t
      ldapServerName: main
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error for bad encryption value")
	}
}

func TestLoadRequiresAtLeastOneInstance(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", `
ldap:
  server:
    host: ldap.example.com
  queries:
    baseDn: dc=example,dc=com
    userFilter: (x=1)
    groupFilter: (x=1)
    userUniqueAttribute: uid
    userNameAttribute: cn
    userEmailAttribute: mail
    groupUniqueAttribute: cn
    groupMemberAttribute: member
gitlab:
  instances: {}
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error for no configured instances")
	}
}

func TestSSLDefaultPort(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", `
ldap:
  server:
    host: ldap.example.com
    encryption: ssl
  queries:
    baseDn: dc=example,dc=com
    userFilter: (x=1)
    groupFilter: (x=1)
    userUniqueAttribute: uid
    userNameAttribute: cn
    userEmailAttribute: mail
    groupUniqueAttribute: cn
    groupMemberAttribute: member
gitlab:
  instances:
    primary:
      url: https://gitlab.example.com
      token: t
      ldapServerName: main
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LDAP.Server.Port != 636 {
		t.Errorf("expected default port 636 for ssl, got %d", cfg.LDAP.Server.Port)
	}
}

func TestLoadMissingFileMatchesErrConfigNotFound(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")

	_, err := Load(path)
	if !ldaperrors.Is(err, ldaperrors.ErrConfigNotFound) {
		t.Errorf("expected errors.Is(err, ErrConfigNotFound), got %v", err)
	}
}

func TestWarningsDetectsDoubleSuffixedDN(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", `
ldap:
  server:
    host: ldap.example.com
  queries:
    baseDn: dc=example,dc=com
    userDn: ou=people,dc=example,dc=com
    groupDn: ou=groups
    userFilter: (x=1)
    groupFilter: (x=1)
    userUniqueAttribute: uid
    userNameAttribute: cn
    userEmailAttribute: mail
    groupUniqueAttribute: cn
    groupMemberAttribute: member
gitlab:
  instances:
    primary:
      url: https://gitlab.example.com
      token: t
      ldapServerName: main
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	warnings := cfg.Warnings()
	if len(warnings) != 1 {
		t.Fatalf("expected exactly 1 warning for double-suffixed userDn, got %d: %v", len(warnings), warnings)
	}
}

func TestWarningsEmptyForCleanConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", validYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if warnings := cfg.Warnings(); len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}
