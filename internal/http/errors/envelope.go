// Package errors define el catálogo de errores HTTP y el envelope de respuesta
// {timestamp, message, details, status} usado en todos los caminos.
package errors

import (
	"encoding/json"
	"net/http"
	"time"
)

// Envelope es el cuerpo de toda respuesta.
type Envelope struct {
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
	Details   any    `json:"details"`
	Status    int    `json:"status"`
}

// ErrorDetails va en Envelope.Details para respuestas de error.
type ErrorDetails struct {
	Code   string `json:"code"`
	Detail string `json:"detail,omitempty"`
}

var now = time.Now

func write(w http.ResponseWriter, status int, env Envelope) {
	env.Timestamp = now().UTC().Format(time.RFC3339)
	env.Status = status
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// WriteError escribe el envelope de error. Err (la causa) nunca se expone.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)
	write(w, appErr.HTTPStatus, Envelope{
		Message: appErr.Message,
		Details: ErrorDetails{Code: appErr.Code, Detail: appErr.Detail},
	})
}

// WriteSuccess escribe el envelope de éxito con el payload en details.
func WriteSuccess(w http.ResponseWriter, status int, message string, details any) {
	write(w, status, Envelope{Message: message, Details: details})
}
