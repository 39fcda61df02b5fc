// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package directory

import "github.com/archmagece/ldapforge-sync/internal/sshkey"

// isRSAKey reports whether text is a candidate ssh-rsa public key line —
// only entries beginning with "ssh-rsa " survive normalization.
func isRSAKey(text string) bool {
	return sshkey.IsRSA(text)
}

// fingerprint computes the colon-separated, lower-case hex MD5 fingerprint
// of an "ssh-rsa <base64> [comment]" line, delegating to the shared
// sshkey package so the directory and forge sides agree on key identity.
func fingerprint(text string) (string, error) {
	return sshkey.Fingerprint(text)
}
