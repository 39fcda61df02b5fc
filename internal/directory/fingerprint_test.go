package directory

import "testing"

func TestIsRSAKeyDelegatesToSharedPackage(t *testing.T) {
	if !isRSAKey("ssh-rsa AAAAB3NzaC1yc2E= a@b") {
		t.Error("expected ssh-rsa line to be accepted")
	}
	if isRSAKey("ssh-ed25519 AAAAC3NzaC1l a@b") {
		t.Error("expected non-rsa line to be rejected")
	}
}

func TestFingerprintDelegatesToSharedPackage(t *testing.T) {
	if _, err := fingerprint("not a key"); err == nil {
		t.Error("expected error for unparsable key text")
	}
}
