// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package wizard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/archmagece/ldapforge-sync/internal/config"
)

func TestBuildConfigFillsAttributeDefaults(t *testing.T) {
	w := NewConfigInitWizard("config.yml")
	w.opts.LDAPHost = "ldap.example.com"
	w.opts.LDAPEncryption = "none"
	w.opts.BindDN = "cn=sync,dc=example,dc=com"
	w.opts.BindPassword = "${LDAP_BIND_PASSWORD}"
	w.opts.BaseDN = "dc=example,dc=com"
	w.opts.UserFilter = "(objectClass=inetOrgPerson)"
	w.opts.GroupFilter = "(objectClass=groupOfNames)"
	w.opts.InstanceName = "primary"
	w.opts.GitLabURL = "https://gitlab.example.com"
	w.opts.GitLabToken = "${GITLAB_TOKEN}"
	w.opts.LdapServerName = "main"

	cfg := w.buildConfig()

	assert.Equal(t, "ldap.example.com", cfg.LDAP.Server.Host)
	assert.Equal(t, 389, cfg.LDAP.Server.Port)
	assert.Equal(t, 3, cfg.LDAP.Server.Version)
	assert.Equal(t, "uid", cfg.LDAP.Queries.UserUniqueAttribute)
	assert.Equal(t, "cn", cfg.LDAP.Queries.GroupUniqueAttribute)
	assert.Equal(t, "member", cfg.LDAP.Queries.GroupMemberAttribute)

	inst, ok := cfg.GitLab.Instances["primary"]
	require.True(t, ok)
	assert.Equal(t, "https://gitlab.example.com", inst.URL)
	assert.Equal(t, "main", inst.LdapServerName)
	assert.Equal(t, 30, cfg.GitLab.Options.NewMemberAccessLevel)
}

func TestBuildConfigUsesSSLDefaultPort(t *testing.T) {
	w := NewConfigInitWizard("config.yml")
	w.opts.LDAPEncryption = "ssl"
	w.opts.InstanceName = "primary"

	cfg := w.buildConfig()

	assert.Equal(t, 636, cfg.LDAP.Server.Port)
}

func TestBuildConfigRespectsExplicitPort(t *testing.T) {
	w := NewConfigInitWizard("config.yml")
	w.opts.LDAPEncryption = "none"
	w.opts.LDAPPort = "1389"
	w.opts.InstanceName = "primary"

	cfg := w.buildConfig()

	assert.Equal(t, 1389, cfg.LDAP.Server.Port)
}

func TestWriteConfigProducesLoadableYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")

	w := NewConfigInitWizard(path)
	w.opts.LDAPHost = "ldap.example.com"
	w.opts.LDAPEncryption = "tls"
	w.opts.BindDN = "cn=sync,dc=example,dc=com"
	w.opts.BindPassword = "${LDAP_BIND_PASSWORD}"
	w.opts.BaseDN = "dc=example,dc=com"
	w.opts.UserFilter = "(objectClass=inetOrgPerson)"
	w.opts.GroupFilter = "(objectClass=groupOfNames)"
	w.opts.InstanceName = "primary"
	w.opts.GitLabURL = "https://gitlab.example.com"
	w.opts.GitLabToken = "${GITLAB_TOKEN}"
	w.opts.LdapServerName = "main"

	require.NoError(t, w.writeConfig())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded config.Config
	require.NoError(t, yaml.Unmarshal(data, &loaded))
	assert.Equal(t, "ldap.example.com", loaded.LDAP.Server.Host)
	assert.Equal(t, config.EncryptionTLS, loaded.LDAP.Server.Encryption)
	assert.Equal(t, "dc=example,dc=com", loaded.LDAP.Queries.BaseDN)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
