// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package sshkey computes the legacy MD5 fingerprint shared by the
// directory and forge sides of a reconciliation run, so an identical key
// hashes to the identical identity on both ends.
package sshkey

import (
	"strings"

	"golang.org/x/crypto/ssh"
)

const rsaPrefix = "ssh-rsa "

// IsRSA reports whether text is a candidate ssh-rsa public key line —
// the only key type either side retains.
func IsRSA(text string) bool {
	return strings.HasPrefix(text, rsaPrefix)
}

// Fingerprint computes the colon-separated, lower-case hex MD5
// fingerprint of an "ssh-rsa <base64> [comment]" line.
func Fingerprint(text string) (string, error) {
	pub, _, _, _, err := ssh.ParseAuthorizedKey([]byte(text))
	if err != nil {
		return "", err
	}
	// FingerprintLegacyMD5 returns the md5 of the key blob as lower-case,
	// colon-separated hex byte pairs — no "MD5:" prefix, unlike
	// FingerprintSHA256.
	return ssh.FingerprintLegacyMD5(pub), nil
}
