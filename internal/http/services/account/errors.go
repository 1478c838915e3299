// Package account contiene los colaboradores por defecto del ciclo de vida de
// cuentas (registro, reset de password) y el path administrativo de estado.
package account

import "errors"

var (
	ErrCredentialsMissing = errors.New("account: username and password required")
	ErrInvalidUsername    = errors.New("account: invalid username format")
	ErrUsernameTaken      = errors.New("account: username already registered")
	ErrTokenUsed          = errors.New("account: verification token already used")
	ErrNotFound           = errors.New("account: not found")
	ErrInvalidTransition  = errors.New("account: invalid status transition")
)
