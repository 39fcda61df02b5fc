// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package config loads and validates the reconciler's YAML configuration
// file. It is consumed read-only by every other component once Load
// returns successfully.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	ldaperrors "github.com/archmagece/ldapforge-sync/internal/errors"
)

// Encryption is the LDAP transport mode.
type Encryption string

const (
	EncryptionNone Encryption = "none"
	EncryptionTLS  Encryption = "tls"
	EncryptionSSL  Encryption = "ssl"
)

func (e Encryption) defaultPort() int {
	switch e {
	case EncryptionSSL:
		return 636
	default:
		return 389
	}
}

// Config is the fully-defaulted, validated settings struct. Every other
// component treats it as immutable after Load.
type Config struct {
	LDAP   LDAPConfig   `yaml:"ldap"`
	GitLab GitLabConfig `yaml:"gitlab"`
}

// LDAPConfig groups the directory connection and query settings.
type LDAPConfig struct {
	Debug                bool         `yaml:"debug"`
	WinCompatibilityMode bool         `yaml:"winCompatibilityMode"`
	Server               LDAPServer   `yaml:"server"`
	Queries              LDAPQueries  `yaml:"queries"`
}

// LDAPServer describes how to connect and bind.
type LDAPServer struct {
	Host         string     `yaml:"host"`
	Port         int        `yaml:"port"`
	Version      int        `yaml:"version"`
	Encryption   Encryption `yaml:"encryption"`
	BindDN       string     `yaml:"bindDn"`
	BindPassword string     `yaml:"bindPassword"`
}

// LDAPQueries describes how users and groups are searched and mapped.
type LDAPQueries struct {
	BaseDN   string `yaml:"baseDn"`
	UserDN   string `yaml:"userDn"`
	GroupDN  string `yaml:"groupDn"`

	UserFilter  string `yaml:"userFilter"`
	GroupFilter string `yaml:"groupFilter"`

	UserUniqueAttribute   string `yaml:"userUniqueAttribute"`
	UserMatchAttribute    string `yaml:"userMatchAttribute"`
	UserNameAttribute     string `yaml:"userNameAttribute"`
	UserEmailAttribute    string `yaml:"userEmailAttribute"`
	UserLdapAdminAttribute string `yaml:"userLdapAdminAttribute"`
	UserSshKeyAttribute   string `yaml:"userSshKeyAttribute"`

	GroupUniqueAttribute string `yaml:"groupUniqueAttribute"`
	GroupMemberAttribute string `yaml:"groupMemberAttribute"`
}

// GitLabConfig groups the forge-facing options and the configured instances.
type GitLabConfig struct {
	Debug     bool                    `yaml:"debug"`
	Options   GitLabOptions           `yaml:"options"`
	Instances map[string]GitLabInstance `yaml:"instances"`
}

// GitLabOptions are reconciliation-wide behavior switches.
type GitLabOptions struct {
	UserNamesToIgnore          []string `yaml:"userNamesToIgnore"`
	GroupNamesToIgnore         []string `yaml:"groupNamesToIgnore"`
	GroupNamesOfAdministrators []string `yaml:"groupNamesOfAdministrators"`
	GroupNamesOfExternal       []string `yaml:"groupNamesOfExternal"`
	CreateEmptyGroups          bool     `yaml:"createEmptyGroups"`
	DeleteExtraGroups          bool     `yaml:"deleteExtraGroups"`
	NewMemberAccessLevel       int      `yaml:"newMemberAccessLevel"`
}

// GitLabInstance is a single configured forge target.
type GitLabInstance struct {
	URL            string `yaml:"url"`
	Token          string `yaml:"token"`
	LdapServerName string `yaml:"ldapServerName"`
}

// defaults fills in every documented default, ahead of validation.
func defaults() *Config {
	return &Config{
		LDAP: LDAPConfig{
			Server: LDAPServer{
				Version:    3,
				Encryption: EncryptionNone,
			},
		},
		GitLab: GitLabConfig{
			Options: GitLabOptions{
				NewMemberAccessLevel: 30,
			},
		},
	}
}

// Load reads, parses, defaults, and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, missingConfigError(path)
		}
		return nil, ldaperrors.WrapKind(ldaperrors.KindConfig, err, "read config file")
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, ldaperrors.WrapKind(ldaperrors.KindConfig, err, "parse config file")
	}

	cfg.applyDefaultsAfterParse()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// missingConfigError builds a targeted error: when config.yml is absent
// but config.yml.dist exists alongside it, the message directs the user to
// copy the dist file rather than reporting a bare file-not-found.
func missingConfigError(path string) error {
	distPath := path + ".dist"
	if _, err := os.Stat(distPath); err == nil {
		return ldaperrors.WrapKind(ldaperrors.KindConfig, ldaperrors.ErrConfigNotFound,
			fmt.Sprintf("copy %q to %q and fill in your values", distPath, path))
	}
	return ldaperrors.WrapKind(ldaperrors.KindConfig, ldaperrors.ErrConfigNotFound, fmt.Sprintf("path %q", path))
}

func (c *Config) applyDefaultsAfterParse() {
	if c.LDAP.Server.Encryption == "" {
		c.LDAP.Server.Encryption = EncryptionNone
	}
	if c.LDAP.Server.Port == 0 {
		c.LDAP.Server.Port = c.LDAP.Server.Encryption.defaultPort()
	}
	if c.LDAP.Server.Version == 0 {
		c.LDAP.Server.Version = 3
	}
	if c.LDAP.Queries.UserMatchAttribute == "" {
		c.LDAP.Queries.UserMatchAttribute = c.LDAP.Queries.UserUniqueAttribute
	}
	if c.GitLab.Options.NewMemberAccessLevel == 0 {
		c.GitLab.Options.NewMemberAccessLevel = 30
	}
}

// Validate checks the required fields and bounds. It never touches the
// network.
func (c *Config) Validate() error {
	var problems []string

	if c.LDAP.Server.Host == "" {
		problems = append(problems, "ldap.server.host is required")
	}
	switch c.LDAP.Server.Encryption {
	case EncryptionNone, EncryptionTLS, EncryptionSSL:
	default:
		problems = append(problems, fmt.Sprintf("ldap.server.encryption %q is not one of none|tls|ssl", c.LDAP.Server.Encryption))
	}
	if c.LDAP.Server.Port < 1 || c.LDAP.Server.Port > 65535 {
		problems = append(problems, "ldap.server.port must be between 1 and 65535")
	}
	if c.LDAP.Server.Version < 1 || c.LDAP.Server.Version > 3 {
		problems = append(problems, "ldap.server.version must be between 1 and 3")
	}

	if c.LDAP.Queries.BaseDN == "" {
		problems = append(problems, "ldap.queries.baseDn is required")
	}
	if c.LDAP.Queries.UserFilter == "" {
		problems = append(problems, "ldap.queries.userFilter is required")
	}
	if c.LDAP.Queries.GroupFilter == "" {
		problems = append(problems, "ldap.queries.groupFilter is required")
	}
	if c.LDAP.Queries.UserUniqueAttribute == "" {
		problems = append(problems, "ldap.queries.userUniqueAttribute is required")
	}
	if c.LDAP.Queries.UserNameAttribute == "" {
		problems = append(problems, "ldap.queries.userNameAttribute is required")
	}
	if c.LDAP.Queries.UserEmailAttribute == "" {
		problems = append(problems, "ldap.queries.userEmailAttribute is required")
	}
	if c.LDAP.Queries.GroupUniqueAttribute == "" {
		problems = append(problems, "ldap.queries.groupUniqueAttribute is required")
	}
	if c.LDAP.Queries.GroupMemberAttribute == "" {
		problems = append(problems, "ldap.queries.groupMemberAttribute is required")
	}

	if len(c.GitLab.Instances) == 0 {
		problems = append(problems, "gitlab.instances must configure at least one forge instance")
	}
	for name, inst := range c.GitLab.Instances {
		if inst.URL == "" {
			problems = append(problems, fmt.Sprintf("gitlab.instances.%s.url is required", name))
		}
		if inst.Token == "" {
			problems = append(problems, fmt.Sprintf("gitlab.instances.%s.token is required", name))
		}
		if inst.LdapServerName == "" {
			problems = append(problems, fmt.Sprintf("gitlab.instances.%s.ldapServerName is required", name))
		}
	}

	if len(problems) > 0 {
		return ldaperrors.Newf(ldaperrors.KindConfig, "invalid configuration: %v", problems)
	}
	return nil
}

// InstanceNames returns the configured forge instance names, sorted for
// deterministic iteration.
func (c *Config) InstanceNames() []string {
	names := make([]string, 0, len(c.GitLab.Instances))
	for name := range c.GitLab.Instances {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Warnings returns non-fatal configuration advice. Unlike Validate, a
// warning describes a configuration that is valid but is likely a
// mistake, such as userDn/groupDn already ending with baseDn: since the
// search base is built as "dn,baseDn", that would double up the baseDn
// suffix.
func (c *Config) Warnings() []string {
	var warnings []string
	if dn := c.LDAP.Queries.UserDN; dn != "" && strings.HasSuffix(dn, c.LDAP.Queries.BaseDN) {
		warnings = append(warnings, fmt.Sprintf(
			"ldap.queries.userDn %q already ends with ldap.queries.baseDn %q; the search base will be %q",
			dn, c.LDAP.Queries.BaseDN, dn+","+c.LDAP.Queries.BaseDN))
	}
	if dn := c.LDAP.Queries.GroupDN; dn != "" && strings.HasSuffix(dn, c.LDAP.Queries.BaseDN) {
		warnings = append(warnings, fmt.Sprintf(
			"ldap.queries.groupDn %q already ends with ldap.queries.baseDn %q; the search base will be %q",
			dn, c.LDAP.Queries.BaseDN, dn+","+c.LDAP.Queries.BaseDN))
	}
	return warnings
}
