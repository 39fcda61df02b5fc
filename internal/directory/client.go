// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package directory

import (
	"crypto/tls"
	"fmt"

	goldap "github.com/go-ldap/ldap/v3"

	"github.com/archmagece/ldapforge-sync/internal/config"
	ldaperrors "github.com/archmagece/ldapforge-sync/internal/errors"
	"github.com/archmagece/ldapforge-sync/internal/logging"
)

// pagingSize bounds each SearchWithPaging round trip.
const pagingSize = 1000

// Client owns exactly one LDAP connection for the lifetime of one fetch
// pass and exposes raw search results for the Normalizer to consume.
type Client struct {
	cfg *config.Config
	log logging.Logger
}

// NewClient builds a Client bound to cfg's ldap.server and ldap.queries
// settings.
func NewClient(cfg *config.Config, log logging.Logger) *Client {
	return &Client{cfg: cfg, log: log}
}

// dial connects, optionally STARTTLS's, and binds. go-ldap/v3 always
// speaks protocol version 3; a configured version outside {3} is logged
// but otherwise has no effect, since the driver exposes no version
// negotiation knob.
func (c *Client) dial() (*goldap.Conn, error) {
	server := c.cfg.LDAP.Server
	if server.Version != 0 && server.Version != 3 {
		c.log.Debug("ldap protocol version requested is not 3; go-ldap negotiates v3 regardless", "requested", server.Version)
	}
	addr := fmt.Sprintf("%s:%d", server.Host, server.Port)

	var conn *goldap.Conn
	var err error
	switch server.Encryption {
	case config.EncryptionSSL:
		conn, err = goldap.DialURL(fmt.Sprintf("ldaps://%s", addr), goldap.DialWithTLSConfig(&tls.Config{ServerName: server.Host}))
	default:
		conn, err = goldap.DialURL(fmt.Sprintf("ldap://%s", addr))
	}
	if err != nil {
		return nil, ldaperrors.WrapKind(ldaperrors.KindDirectory, err, "connect to directory server").WithContext("host", server.Host)
	}

	if server.Encryption == config.EncryptionTLS {
		if err := conn.StartTLS(&tls.Config{ServerName: server.Host}); err != nil {
			conn.Close()
			return nil, ldaperrors.WrapKind(ldaperrors.KindDirectory, err, "starttls")
		}
	}

	if server.BindDN == "" {
		if err := conn.UnauthenticatedBind(""); err != nil {
			conn.Close()
			return nil, ldaperrors.WrapKind(ldaperrors.KindDirectory, err, "anonymous bind")
		}
		return conn, nil
	}

	if err := conn.Bind(server.BindDN, server.BindPassword); err != nil {
		conn.Close()
		return nil, ldaperrors.WrapKind(ldaperrors.KindDirectory, err, "bind").WithContext("bind_dn", server.BindDN)
	}

	return conn, nil
}

func searchBase(dn, baseDN string) string {
	if dn == "" {
		return baseDN
	}
	return dn + "," + baseDN
}

// FetchRawUsers runs the user search and returns each entry's DN and
// attribute map, unprocessed.
func (c *Client) FetchRawUsers() ([]RawEntry, error) {
	q := c.cfg.LDAP.Queries
	attrs := []string{
		q.UserUniqueAttribute, q.UserMatchAttribute, q.UserNameAttribute,
		q.UserEmailAttribute, q.UserLdapAdminAttribute, q.UserSshKeyAttribute,
	}
	return c.search(searchBase(q.UserDN, q.BaseDN), q.UserFilter, attrs)
}

// FetchRawGroups runs the group search and returns each entry's DN and
// attribute map, unprocessed.
func (c *Client) FetchRawGroups() ([]RawEntry, error) {
	q := c.cfg.LDAP.Queries
	attrs := []string{q.GroupUniqueAttribute, q.GroupMemberAttribute}
	return c.search(searchBase(q.GroupDN, q.BaseDN), q.GroupFilter, attrs)
}

func (c *Client) search(base, filter string, attrs []string) ([]RawEntry, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if c.cfg.LDAP.Debug {
		c.log.Debug("ldap search", "base", base, "filter", filter, "attrs", attrs)
	}

	var controls []goldap.Control
	if c.cfg.LDAP.WinCompatibilityMode {
		// ManageDsaIT asks the server to return referral objects as plain
		// entries instead of chasing them — the closest go-ldap-supported
		// equivalent of "referral following off".
		controls = append(controls, goldap.NewControlManageDsaIT(false))
	}

	req := goldap.NewSearchRequest(base, goldap.ScopeWholeSubtree, goldap.NeverDerefAliases,
		0, 0, false, filter, attrs, controls)

	result, err := conn.SearchWithPaging(req, pagingSize)
	if err != nil {
		return nil, ldaperrors.WrapKind(ldaperrors.KindDirectory, err, "search").
			WithContext("base", base).WithContext("filter", filter)
	}

	entries := make([]RawEntry, 0, len(result.Entries))
	for _, e := range result.Entries {
		attrMap := make(map[string][]string, len(e.Attributes))
		for _, a := range e.Attributes {
			attrMap[a.Name] = a.Values
		}
		entries = append(entries, RawEntry{DN: e.DN, Attrs: attrMap})
	}
	return entries, nil
}
