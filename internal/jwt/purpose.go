package jwt

import "strings"

// Purpose distingue tokens de verificación, acceso y refresh.
// No es un scope ni un permiso.
type Purpose string

const (
	PurposeVerification Purpose = "VERIFICATION"
	PurposeAccess       Purpose = "ACCESS"
	PurposeRefresh      Purpose = "REFRESH"
)

func (p Purpose) String() string { return string(p) }

// IsValid reporta si p es uno de los propósitos conocidos.
func (p Purpose) IsValid() bool {
	switch p {
	case PurposeVerification, PurposeAccess, PurposeRefresh:
		return true
	}
	return false
}

// ParsePurpose normaliza (case-insensitive) y valida.
func ParsePurpose(s string) (Purpose, bool) {
	p := Purpose(strings.ToUpper(strings.TrimSpace(s)))
	return p, p.IsValid()
}
