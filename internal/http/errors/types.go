package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError es el error estándar de la capa HTTP.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // causa original, solo para logs
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// Is compara por Code, así errors.Is(err, ErrInvalidToken) funciona con copias.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// New crea un nuevo AppError.
func New(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// FromError convierte cualquier error en AppError. Lo desconocido es 500
// conservando la causa.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServerError.WithCause(err)
}

// WithDetail devuelve una COPIA con detalle (no muta el catálogo).
func (e *AppError) WithDetail(detail string) *AppError {
	c := *e
	c.Detail = detail
	return &c
}

// WithCause devuelve una COPIA con la causa original.
func (e *AppError) WithCause(err error) *AppError {
	c := *e
	c.Err = err
	return &c
}

// =================================================================================
// CATÁLOGO
// =================================================================================

// ---------------------------------------------------------------------------------
// 400 / 409 / 429 - Errores de Cliente
// ---------------------------------------------------------------------------------

var (
	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "La solicitud contiene sintaxis inválida o parámetros faltantes.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrCredentialsMissing = &AppError{
		Code:       "CREDENTIALS_MISSING",
		Message:    "Se requieren username y password.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrPasswordPolicy = &AppError{
		Code:       "PASSWORD_POLICY",
		Message:    "El password no cumple la política configurada.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrConflict = &AppError{
		Code:       "CONFLICT",
		Message:    "El recurso ya existe.",
		HTTPStatus: http.StatusConflict,
	}

	ErrInvalidTransition = &AppError{
		Code:       "INVALID_STATUS_TRANSITION",
		Message:    "La cuenta no admite ese cambio de estado.",
		HTTPStatus: http.StatusConflict,
	}

	ErrTooManyRequests = &AppError{
		Code:       "TOO_MANY_REQUESTS",
		Message:    "Demasiadas solicitudes. Intente más tarde.",
		HTTPStatus: http.StatusTooManyRequests,
	}

	ErrMethodNotAllowed = &AppError{
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "Método HTTP no permitido.",
		HTTPStatus: http.StatusMethodNotAllowed,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Recurso no encontrado.",
		HTTPStatus: http.StatusNotFound,
	}
)

// ---------------------------------------------------------------------------------
// 401 - Autenticación
// ---------------------------------------------------------------------------------

var (
	// ErrInvalidToken es la única respuesta para header ausente, token
	// expirado/malformado/mal firmado, propósito incorrecto o ya usado.
	ErrInvalidToken = &AppError{
		Code:       "INVALID_TOKEN",
		Message:    "Token inválido o ausente.",
		HTTPStatus: http.StatusUnauthorized,
	}

	// ErrInvalidCredentials cubre username inexistente y password incorrecto.
	ErrInvalidCredentials = &AppError{
		Code:       "INVALID_CREDENTIALS",
		Message:    "Las credenciales proporcionadas son inválidas.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "No autorizado. Se requiere autenticación.",
		HTTPStatus: http.StatusUnauthorized,
	}
)

// ---------------------------------------------------------------------------------
// 403 - Lockout y autorización
// ---------------------------------------------------------------------------------

var (
	ErrAccountLockedTemporary = &AppError{
		Code:       "ACCOUNT_LOCKED_TEMPORARY",
		Message:    "Cuenta bloqueada temporalmente por intentos fallidos. Intente más tarde.",
		HTTPStatus: http.StatusForbidden,
	}

	ErrAccountLockedAdmin = &AppError{
		Code:       "ACCOUNT_LOCKED_ADMIN",
		Message:    "Cuenta bloqueada por un administrador.",
		HTTPStatus: http.StatusForbidden,
	}

	ErrAccountSuspended = &AppError{
		Code:       "ACCOUNT_SUSPENDED_PERMANENT",
		Message:    "Cuenta suspendida de forma permanente.",
		HTTPStatus: http.StatusForbidden,
	}

	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "No tiene permisos para este recurso.",
		HTTPStatus: http.StatusForbidden,
	}
)

// ---------------------------------------------------------------------------------
// 5xx - Servidor
// ---------------------------------------------------------------------------------

var (
	ErrInternalServerError = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Ocurrió un error interno en el servidor.",
		HTTPStatus: http.StatusInternalServerError,
	}

	// ErrRegistryUnavailable: el TTL store no respondió. Nunca se trata como "no revocado".
	ErrRegistryUnavailable = &AppError{
		Code:       "REGISTRY_UNAVAILABLE",
		Message:    "El registro de tokens no está disponible.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrServiceUnavailable = &AppError{
		Code:       "SERVICE_UNAVAILABLE",
		Message:    "El servicio no está disponible.",
		HTTPStatus: http.StatusServiceUnavailable,
	}
)
