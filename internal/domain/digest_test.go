package domain

import "testing"

func TestPasswordDigest_KnownValue(t *testing.T) {
	// sha256("admin123") - the default admin bootstrap depends on this
	// exact digest being reproducible.
	const want = "240be518fabd2724ddb6f04eeb1da5967448d7e831c08c8fa822809f74c720a9"
	if got := PasswordDigest("admin123"); got != want {
		t.Errorf("PasswordDigest(admin123) = %q, expected %q", got, want)
	}
}

func TestPasswordDigest_Deterministic(t *testing.T) {
	a := PasswordDigest("كلمة السر")
	b := PasswordDigest("كلمة السر")
	if a != b {
		t.Errorf("same input produced different digests: %q vs %q", a, b)
	}
	if len(a) != 64 {
		t.Errorf("digest length = %d, expected 64 hex chars", len(a))
	}
}
