package password

import (
	"errors"
	"strings"
	"testing"
)

func TestHashVerify(t *testing.T) {
	t.Parallel()
	h, err := Hash(Fast, "s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(h, "$argon2id$v=19$") {
		t.Fatalf("formato PHC inesperado: %s", h)
	}
	if !Verify("s3cret", h) {
		t.Fatal("el password correcto debe verificar")
	}
	if Verify("wrong", h) {
		t.Fatal("un password incorrecto no debe verificar")
	}
}

func TestHash_SaltDiffers(t *testing.T) {
	t.Parallel()
	a, _ := Hash(Fast, "x")
	b, _ := Hash(Fast, "x")
	if a == b {
		t.Fatal("dos hashes del mismo password deben diferir por el salt")
	}
}

func TestHash_Empty(t *testing.T) {
	t.Parallel()
	if _, err := Hash(Fast, ""); !errors.Is(err, ErrEmpty) {
		t.Fatalf("esperaba ErrEmpty, got %v", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()
	for _, phc := range []string{
		"",
		"plain",
		"$argon2i$v=19$m=1,t=1,p=1$AA$AA",
		"$argon2id$v=18$m=1,t=1,p=1$AA$AA",
		"$argon2id$v=19$m=1,t=0,p=1$AA$AA",
		"$argon2id$v=19$m=1,t=1,p=1$!!$AA",
	} {
		if Verify("x", phc) {
			t.Fatalf("hash malformado verificó: %q", phc)
		}
	}
}

func TestPolicy(t *testing.T) {
	t.Parallel()
	p := Policy{MinLength: 8, RequireDigit: true}
	if err := p.Validate("abcdefg1"); err != nil {
		t.Fatalf("debería pasar: %v", err)
	}
	err := p.Validate("abc")
	var pe *PolicyError
	if !errors.As(err, &pe) {
		t.Fatalf("esperaba PolicyError, got %v", err)
	}
	if len(pe.Reasons) != 2 {
		t.Fatalf("reasons: %v", pe.Reasons)
	}
	if err := (Policy{}).Validate(""); err == nil {
		t.Fatal("password vacío nunca es válido")
	}
}
