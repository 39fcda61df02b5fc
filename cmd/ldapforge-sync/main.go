// Package main is the entry point for the ldapforge-sync CLI application.
// ldapforge-sync reconciles one or more GitLab instances against an LDAP
// directory: users, groups, and group memberships.
package main

import (
	"github.com/archmagece/ldapforge-sync/cmd/ldapforge-sync/cmd"
)

// version is set during build time via ldflags
var version = "dev"

func main() {
	cmd.Execute(version)
}
