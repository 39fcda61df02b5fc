// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package directory

import (
	"sort"
	"strings"

	"github.com/archmagece/ldapforge-sync/internal/config"
	"github.com/archmagece/ldapforge-sync/internal/logging"
)

// RawEntry is one directory search result: a DN plus its attribute map, as
// returned by the Directory Client's fetchRawUsers/fetchRawGroups.
// Attribute values always arrive as a list of strings, even for
// single-valued attributes.
type RawEntry struct {
	DN    string
	Attrs map[string][]string
}

// Normalizer turns raw LDAP search results into a canonical Snapshot. It
// is stateless across calls; one Normalizer is typically reused for the
// single directory ingestion pass of a run.
type Normalizer struct {
	cfg *config.Config
	log logging.Logger
}

// NewNormalizer builds a Normalizer bound to cfg's LDAP query attribute
// names and GitLab option lists (ignore lists, admin/external group names).
func NewNormalizer(cfg *config.Config, log logging.Logger) *Normalizer {
	return &Normalizer{cfg: cfg, log: log}
}

// Normalize builds the Snapshot for one run. It never returns a partial
// snapshot on a per-entry problem — bad entries are warned about and
// dropped, never fatal (fatal conditions belong to the Directory Client,
// not the Normalizer).
func (n *Normalizer) Normalize(rawUsers, rawGroups []RawEntry) *Snapshot {
	snap := NewSnapshot()

	q := n.cfg.LDAP.Queries
	ignoreUsers := newCaseInsensitiveSet(n.cfg.GitLab.Options.UserNamesToIgnore)
	ignoreGroups := newCaseInsensitiveSet(n.cfg.GitLab.Options.GroupNamesToIgnore)
	adminGroups := newCaseInsensitiveSet(n.cfg.GitLab.Options.GroupNamesOfAdministrators)
	externalGroups := newCaseInsensitiveSet(n.cfg.GitLab.Options.GroupNamesOfExternal)

	for _, raw := range rawUsers {
		u := n.normalizeUser(raw, q)
		if u == nil {
			continue
		}
		if ignoreUsers.has(u.Username) {
			continue
		}
		if _, dup := snap.Users[u.Username]; dup {
			n.log.Warn("duplicate username, dropping later entry", "username", u.Username, "dn", u.DN)
			continue
		}
		snap.Users[u.Username] = u
	}

	for _, raw := range rawGroups {
		g := n.normalizeGroup(raw, q, snap.Users)
		if g == nil {
			continue
		}
		if ignoreGroups.has(g.Name) {
			continue
		}
		if _, dup := snap.Groups[g.Name]; dup {
			n.log.Warn("duplicate group name, dropping later entry", "group", g.Name, "dn", raw.DN)
			continue
		}
		if adminGroups.has(g.Name) {
			n.flagMembers(snap, g, func(u *User) { u.IsAdmin = true })
		}
		if externalGroups.has(g.Name) {
			n.flagMembers(snap, g, func(u *User) { u.IsExternal = true })
		}
		snap.Groups[g.Name] = g
	}

	for _, g := range snap.Groups {
		members := append([]string(nil), g.Members...)
		sort.Slice(members, func(i, j int) bool {
			return strings.ToLower(members[i]) < strings.ToLower(members[j])
		})
		g.Members = members
	}

	return snap
}

func (n *Normalizer) flagMembers(snap *Snapshot, g *Group, flag func(*User)) {
	for _, username := range g.Members {
		if u, ok := snap.Users[username]; ok {
			flag(u)
		}
	}
}

func (n *Normalizer) normalizeUser(raw RawEntry, q config.LDAPQueries) *User {
	dn := strings.TrimSpace(raw.DN)
	if dn == "" {
		n.log.Warn("user entry missing dn, dropping")
		return nil
	}

	rawUnique, ok := firstString(raw.Attrs, q.UserUniqueAttribute)
	if !ok {
		n.log.Warn("user entry missing unique attribute, dropping", "dn", dn, "attribute", q.UserUniqueAttribute)
		return nil
	}
	username := usernameSlug(rawUnique)
	if username != rawUnique {
		n.log.Warn("username slugified", "dn", dn, "raw", rawUnique, "slug", username)
	}

	matchID, ok := firstString(raw.Attrs, q.UserMatchAttribute)
	if !ok {
		n.log.Warn("user entry missing match attribute, dropping", "dn", dn, "attribute", q.UserMatchAttribute)
		return nil
	}
	fullName, ok := firstString(raw.Attrs, q.UserNameAttribute)
	if !ok {
		n.log.Warn("user entry missing name attribute, dropping", "dn", dn, "attribute", q.UserNameAttribute)
		return nil
	}
	email, ok := firstString(raw.Attrs, q.UserEmailAttribute)
	if !ok {
		n.log.Warn("user entry missing email attribute, dropping", "dn", dn, "attribute", q.UserEmailAttribute)
		return nil
	}

	isAdmin := false
	if v, ok := firstString(raw.Attrs, q.UserLdapAdminAttribute); ok {
		isAdmin = parseBool(v)
	}

	var keys []SSHKey
	for _, text := range raw.Attrs[q.UserSshKeyAttribute] {
		if !isRSAKey(text) {
			continue
		}
		fp, err := fingerprint(text)
		if err != nil {
			n.log.Warn("unparsable ssh key, dropping", "dn", dn, "error", err.Error())
			continue
		}
		keys = append(keys, SSHKey{OpenSSHKeyText: text, MD5Fingerprint: fp})
	}

	return &User{
		DN:       dn,
		Username: username,
		MatchID:  matchID,
		FullName: fullName,
		Email:    email,
		IsAdmin:  isAdmin,
		SSHKeys:  keys,
	}
}

func (n *Normalizer) normalizeGroup(raw RawEntry, q config.LDAPQueries, users map[string]*User) *Group {
	name, ok := firstString(raw.Attrs, q.GroupUniqueAttribute)
	if !ok {
		n.log.Warn("group entry missing unique attribute, dropping", "dn", raw.DN, "attribute", q.GroupUniqueAttribute)
		return nil
	}

	var members []string
	for _, value := range raw.Attrs[q.GroupMemberAttribute] {
		username, ok := n.resolveMember(q.GroupMemberAttribute, value, raw.DN, users)
		if !ok {
			continue
		}
		members = append(members, username)
	}

	return &Group{Name: name, Members: members}
}

// resolveMember implements the two supported member-attribute schemas:
// memberUid matches by DirectoryUser.MatchID, member/uniqueMember matches
// by DN equality. Any other attribute name yields no match and a warning.
func (n *Normalizer) resolveMember(attrName, value, groupDN string, users map[string]*User) (string, bool) {
	switch strings.ToLower(attrName) {
	case "memberuid":
		for _, u := range users {
			if u.MatchID == value {
				return u.Username, true
			}
		}
		n.log.Warn("unresolved memberUid reference", "group_dn", groupDN, "value", value)
		return "", false
	case "member", "uniquemember":
		for _, u := range users {
			if u.DN == value {
				return u.Username, true
			}
		}
		n.log.Warn("unresolved member dn reference", "group_dn", groupDN, "value", value)
		return "", false
	default:
		n.log.Warn("unsupported group member attribute, no match attempted", "group_dn", groupDN, "attribute", attrName)
		return "", false
	}
}

// firstString is the canonical attribute-validation helper: present, a
// list, and a non-empty string after trimming.
func firstString(attrs map[string][]string, name string) (string, bool) {
	values, ok := attrs[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	v := strings.TrimSpace(values[0])
	if v == "" {
		return "", false
	}
	return v, true
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "1", "t":
		return true
	default:
		return false
	}
}

type caseInsensitiveSet map[string]struct{}

func newCaseInsensitiveSet(values []string) caseInsensitiveSet {
	s := make(caseInsensitiveSet, len(values))
	for _, v := range values {
		s[strings.ToLower(v)] = struct{}{}
	}
	return s
}

func (s caseInsensitiveSet) has(v string) bool {
	_, ok := s[strings.ToLower(v)]
	return ok
}
