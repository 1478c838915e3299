package password

import (
	"fmt"
	"strings"
	"unicode"
)

// Validator decide si un password nuevo es aceptable. Las reglas de fortaleza
// son de un colaborador externo; Policy es la implementación por defecto.
type Validator interface {
	Validate(plain string) error
}

// Policy es un Validator configurable por reglas simples.
type Policy struct {
	MinLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireDigit  bool
	RequireSymbol bool
}

// PolicyError lista las reglas incumplidas.
type PolicyError struct{ Reasons []string }

func (e *PolicyError) Error() string {
	return fmt.Sprintf("password: policy violated: %s", strings.Join(e.Reasons, ","))
}

func (p Policy) Validate(s string) error {
	var reasons []string
	if s == "" {
		reasons = append(reasons, "empty")
	}
	if len([]rune(s)) < p.MinLength {
		reasons = append(reasons, "too_short")
	}
	var hasU, hasL, hasD, hasS bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			hasU = true
		case unicode.IsLower(r):
			hasL = true
		case unicode.IsDigit(r):
			hasD = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasS = true
		}
	}
	if p.RequireUpper && !hasU {
		reasons = append(reasons, "missing_upper")
	}
	if p.RequireLower && !hasL {
		reasons = append(reasons, "missing_lower")
	}
	if p.RequireDigit && !hasD {
		reasons = append(reasons, "missing_digit")
	}
	if p.RequireSymbol && !hasS {
		reasons = append(reasons, "missing_symbol")
	}
	if len(reasons) > 0 {
		return &PolicyError{Reasons: reasons}
	}
	return nil
}
