// Package validation tiene las reglas de formato de identificadores.
package validation

import "regexp"

// Username rules:
//   - Mayúsculas y minúsculas (el store compara case-insensitive).
//   - Empieza y termina con [A-Za-z0-9].
//   - En el medio admite [A-Za-z0-9._@+-] (un email es un username válido).
//   - Largo 3..64.
//
// Válidos: bob, alice.smith, ops+gw@example.com
// Inválidos: "", ab, .hidden, trailing-, "has space", "semi;colon"
var usernameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._@+\-]{1,62}[A-Za-z0-9]$`)

// roleRe: roles en mayúsculas, p.ej. USER, ADMIN, BILLING_READ.
var roleRe = regexp.MustCompile(`^[A-Z][A-Z0-9_]{0,31}$`)

// ValidUsername reporta si el username cumple el formato.
func ValidUsername(name string) bool {
	return usernameRe.MatchString(name)
}

// ValidRole reporta si el nombre de rol cumple el formato.
func ValidRole(name string) bool {
	return roleRe.MatchString(name)
}
