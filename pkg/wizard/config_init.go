// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package wizard

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"gopkg.in/yaml.v3"

	"github.com/archmagece/ldapforge-sync/internal/config"
)

// ConfigInitOptions holds the answers collected by ConfigInitWizard.
type ConfigInitOptions struct {
	OutputPath string

	LDAPHost       string
	LDAPPort       string
	LDAPEncryption string
	BindDN         string
	BindPassword   string

	BaseDN      string
	UserFilter  string
	GroupFilter string

	InstanceName   string
	GitLabURL      string
	GitLabToken    string
	LdapServerName string

	Overwrite bool
}

// ConfigInitWizard walks an operator through producing a config.yml.
type ConfigInitWizard struct {
	printer *Printer
	opts    ConfigInitOptions
}

// NewConfigInitWizard creates a wizard that will write to outputPath.
func NewConfigInitWizard(outputPath string) *ConfigInitWizard {
	return &ConfigInitWizard{
		printer: NewPrinter(),
		opts: ConfigInitOptions{
			OutputPath:     outputPath,
			LDAPEncryption: "none",
			InstanceName:   "primary",
			LdapServerName: "main",
		},
	}
}

// Run executes the wizard end to end, writing config.yml on success.
func (w *ConfigInitWizard) Run(_ context.Context) (*ConfigInitOptions, error) {
	w.printer.PrintHeader(IconGear, "LDAP-to-GitLab Sync Config")
	w.printer.PrintInfo("This wizard collects the settings needed to write config.yml.")
	fmt.Println()

	if err := w.runOverwriteStep(); err != nil {
		return nil, err
	}
	if !w.opts.Overwrite {
		w.printer.PrintWarning("aborted: " + w.opts.OutputPath + " already exists")
		return &w.opts, nil
	}

	if err := w.runServerStep(); err != nil {
		return nil, err
	}
	if err := w.runBindStep(); err != nil {
		return nil, err
	}
	if err := w.runQueriesStep(); err != nil {
		return nil, err
	}
	if err := w.runGitLabStep(); err != nil {
		return nil, err
	}

	w.printSummary()

	if err := w.writeConfig(); err != nil {
		return nil, err
	}

	w.printer.PrintSuccess("wrote " + w.opts.OutputPath)
	w.printer.PrintNextSteps([]string{
		"Review " + w.opts.OutputPath + " and fill in any placeholders it still has.",
		"Export LDAP_BIND_PASSWORD/GITLAB_TOKEN if you used ${ENV_VAR} references.",
		"Run: ldapforge-sync sync --dryrun",
	})

	return &w.opts, nil
}

func (w *ConfigInitWizard) runOverwriteStep() error {
	if _, err := os.Stat(w.opts.OutputPath); err != nil {
		w.opts.Overwrite = true
		return nil
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(w.opts.OutputPath + " already exists").
				Description("Overwrite it with the wizard's answers?").
				Affirmative("Overwrite").
				Negative("Cancel").
				Value(&w.opts.Overwrite),
		),
	).WithTheme(huh.ThemeCharm())

	return form.Run()
}

func (w *ConfigInitWizard) runServerStep() error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("LDAP Host").
				Description("Hostname of the directory server").
				Placeholder("ldap.example.com").
				Validate(ValidateHost).
				Value(&w.opts.LDAPHost),

			huh.NewSelect[string]().
				Title("Encryption").
				Description("Transport mode for the LDAP connection").
				Options(
					huh.NewOption("None (ldap://)", "none"),
					huh.NewOption("StartTLS (tls)", "tls"),
					huh.NewOption("LDAPS (ssl)", "ssl"),
				).
				Value(&w.opts.LDAPEncryption),

			huh.NewInput().
				Title("Port").
				Description("Leave empty to use the default for the chosen encryption").
				Placeholder("389").
				Validate(ValidatePort).
				Value(&w.opts.LDAPPort),
		),
	).WithTheme(huh.ThemeCharm())

	return form.Run()
}

func (w *ConfigInitWizard) runBindStep() error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Bind DN").
				Description("Distinguished name used to authenticate the sync account").
				Placeholder("cn=sync,dc=example,dc=com").
				Validate(ValidateDN).
				Value(&w.opts.BindDN),

			huh.NewInput().
				Title("Bind Password").
				Description("Use ${ENV_VAR} for environment variables (recommended)").
				Placeholder("${LDAP_BIND_PASSWORD}").
				EchoMode(huh.EchoModePassword).
				Validate(ValidateNotEmpty).
				Value(&w.opts.BindPassword),
		),
	).WithTheme(huh.ThemeCharm())

	return form.Run()
}

func (w *ConfigInitWizard) runQueriesStep() error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Base DN").
				Description("Search base for both user and group lookups").
				Placeholder("dc=example,dc=com").
				Validate(ValidateDN).
				Value(&w.opts.BaseDN),

			huh.NewInput().
				Title("User Filter").
				Description("LDAP filter selecting which entries are users").
				Placeholder("(objectClass=inetOrgPerson)").
				Validate(ValidateNotEmpty).
				Value(&w.opts.UserFilter),

			huh.NewInput().
				Title("Group Filter").
				Description("LDAP filter selecting which entries are groups").
				Placeholder("(objectClass=groupOfNames)").
				Validate(ValidateNotEmpty).
				Value(&w.opts.GroupFilter),
		),
	).WithTheme(huh.ThemeCharm())

	return form.Run()
}

func (w *ConfigInitWizard) runGitLabStep() error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Instance Name").
				Description("Key under gitlab.instances; used as the sync <instance> argument").
				Placeholder("primary").
				Validate(ValidateNotEmpty).
				Value(&w.opts.InstanceName),

			huh.NewInput().
				Title("GitLab URL").
				Description("Base URL of the GitLab instance").
				Placeholder("https://gitlab.example.com").
				Validate(ValidateURLRequired).
				Value(&w.opts.GitLabURL),

			huh.NewInput().
				Title("GitLab Token").
				Description("Use ${ENV_VAR} for environment variables (recommended)").
				Placeholder("${GITLAB_TOKEN}").
				EchoMode(huh.EchoModePassword).
				Validate(ValidateNotEmpty).
				Value(&w.opts.GitLabToken),

			huh.NewInput().
				Title("LDAP Server Name").
				Description("Value GitLab stores as the user's ldap identity provider").
				Placeholder("main").
				Validate(ValidateNotEmpty).
				Value(&w.opts.LdapServerName),
		),
	).WithTheme(huh.ThemeCharm())

	return form.Run()
}

func (w *ConfigInitWizard) printSummary() {
	keys := []string{
		"LDAP Host",
		"Encryption",
		"Port",
		"Bind DN",
		"Bind Password",
		"Base DN",
		"User Filter",
		"Group Filter",
		"Instance Name",
		"GitLab URL",
		"GitLab Token",
		"LDAP Server Name",
	}

	port := w.opts.LDAPPort
	if port == "" {
		port = "(default)"
	}

	items := map[string]string{
		"LDAP Host":        w.opts.LDAPHost,
		"Encryption":       w.opts.LDAPEncryption,
		"Port":             port,
		"Bind DN":          w.opts.BindDN,
		"Bind Password":    SanitizeTokenForDisplay(w.opts.BindPassword),
		"Base DN":          w.opts.BaseDN,
		"User Filter":      w.opts.UserFilter,
		"Group Filter":     w.opts.GroupFilter,
		"Instance Name":    w.opts.InstanceName,
		"GitLab URL":       w.opts.GitLabURL,
		"GitLab Token":     SanitizeTokenForDisplay(w.opts.GitLabToken),
		"LDAP Server Name": w.opts.LdapServerName,
	}

	w.printer.PrintOrderedSummary("Configuration Summary", keys, items)
}

// buildConfig turns the wizard answers into a config.Config, filling in
// the attribute-name defaults config.yml.dist ships with for fields the
// wizard doesn't ask about directly.
func (w *ConfigInitWizard) buildConfig() *config.Config {
	encryption := config.Encryption(w.opts.LDAPEncryption)

	cfg := &config.Config{
		LDAP: config.LDAPConfig{
			Server: config.LDAPServer{
				Host:         w.opts.LDAPHost,
				Version:      3,
				Encryption:   encryption,
				BindDN:       w.opts.BindDN,
				BindPassword: w.opts.BindPassword,
			},
			Queries: config.LDAPQueries{
				BaseDN:                 w.opts.BaseDN,
				UserDN:                 "ou=people",
				GroupDN:                "ou=groups",
				UserFilter:             w.opts.UserFilter,
				GroupFilter:            w.opts.GroupFilter,
				UserUniqueAttribute:    "uid",
				UserMatchAttribute:     "uid",
				UserNameAttribute:      "cn",
				UserEmailAttribute:     "mail",
				UserLdapAdminAttribute: "",
				UserSshKeyAttribute:    "sshPublicKey",
				GroupUniqueAttribute:   "cn",
				GroupMemberAttribute:   "member",
			},
		},
		GitLab: config.GitLabConfig{
			Options: config.GitLabOptions{
				NewMemberAccessLevel: 30,
			},
			Instances: map[string]config.GitLabInstance{
				w.opts.InstanceName: {
					URL:            w.opts.GitLabURL,
					Token:          w.opts.GitLabToken,
					LdapServerName: w.opts.LdapServerName,
				},
			},
		},
	}

	defaultPort := 389
	if encryption == config.EncryptionSSL {
		defaultPort = 636
	}
	cfg.LDAP.Server.Port = ParsePort(w.opts.LDAPPort, defaultPort)

	return cfg
}

func (w *ConfigInitWizard) writeConfig() error {
	cfg := w.buildConfig()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	header := "# Generated by `ldapforge-sync config init`. Review before running sync.\n"
	if err := os.WriteFile(w.opts.OutputPath, append([]byte(header), data...), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", w.opts.OutputPath, err)
	}
	return nil
}
