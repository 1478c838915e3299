// Package types define tipos de dominio compartidos entre paquetes.
package types

// AccountStatus es el estado de lock persistido en la cuenta.
type AccountStatus string

const (
	StatusActive               AccountStatus = "ACTIVE"
	StatusTemporarilyBlocked   AccountStatus = "TEMPORARILY_BLOCKED"
	StatusAdminBlocked         AccountStatus = "ADMIN_BLOCKED"
	StatusPermanentlySuspended AccountStatus = "PERMANENTLY_SUSPENDED"
)

// IsValid retorna true si el estado es conocido.
func (s AccountStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusTemporarilyBlocked, StatusAdminBlocked, StatusPermanentlySuspended:
		return true
	}
	return false
}

// IsTerminal: no hay transición de salida desde PERMANENTLY_SUSPENDED.
func (s AccountStatus) IsTerminal() bool { return s == StatusPermanentlySuspended }

// AllowsLogin solo es true para ACTIVE.
func (s AccountStatus) AllowsLogin() bool { return s == StatusActive }

func (s AccountStatus) String() string { return string(s) }

var transitions = map[AccountStatus]map[AccountStatus]struct{}{
	StatusActive: {
		StatusTemporarilyBlocked:   {},
		StatusAdminBlocked:         {},
		StatusPermanentlySuspended: {},
	},
	StatusTemporarilyBlocked: {
		StatusActive:               {},
		StatusAdminBlocked:         {},
		StatusPermanentlySuspended: {},
	},
	StatusAdminBlocked: {
		StatusActive:               {},
		StatusPermanentlySuspended: {},
	},
	StatusPermanentlySuspended: {},
}

// CanTransition reporta si from -> to es una transición válida.
func CanTransition(from, to AccountStatus) bool {
	next, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}
