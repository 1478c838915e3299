package validation

import (
	"strings"
	"testing"
)

func TestValidUsername_Valid(t *testing.T) {
	valids := []string{
		"bob",
		"alice",
		"DAVE",
		"alice.smith",
		"ops+gw@example.com",
		"a" + strings.Repeat("b", 62) + "c", // 64 chars
	}
	for _, v := range valids {
		if !ValidUsername(v) {
			t.Fatalf("expected valid: %q", v)
		}
	}
}

func TestValidUsername_Invalid(t *testing.T) {
	invalids := []string{
		"",
		"ab",
		".hidden",
		"trailing-",
		"has space",
		"semi;colon",
		"a" + strings.Repeat("b", 63) + "c", // 65 chars
	}
	for _, v := range invalids {
		if ValidUsername(v) {
			t.Fatalf("expected invalid: %q", v)
		}
	}
}

func TestValidRole(t *testing.T) {
	for _, v := range []string{"USER", "ADMIN", "BILLING_READ"} {
		if !ValidRole(v) {
			t.Fatalf("expected valid: %q", v)
		}
	}
	for _, v := range []string{"", "user", "_ADMIN", "AD MIN"} {
		if ValidRole(v) {
			t.Fatalf("expected invalid: %q", v)
		}
	}
}
