// Package account contiene DTOs del ciclo de vida de cuentas y del path admin.
package account

// RegisterResponse se devuelve al iniciar el registro (202).
type RegisterResponse struct {
	Subject string `json:"subject"`
}

// StatusResponse es el estado de la cuenta tras una operación admin.
type StatusResponse struct {
	Subject        string `json:"subject"`
	Username       string `json:"username,omitempty"`
	Status         string `json:"status"`
	Verified       bool   `json:"verified"`
	FailedAttempts int64  `json:"failedAttempts"`
}
