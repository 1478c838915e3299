package jwt

import (
	"errors"
	"fmt"
)

// Kind clasifica un fallo de verificación. Solo se usa para logs y métricas:
// hacia el caller todos colapsan en el mismo 401.
type Kind string

const (
	KindExpired      Kind = "expired"
	KindMalformed    Kind = "malformed"
	KindBadSignature Kind = "bad_signature"
	KindOther        Kind = "other"
)

var (
	ErrExpired      = errors.New("token_expired")
	ErrMalformed    = errors.New("token_malformed")
	ErrBadSignature = errors.New("token_bad_signature")
	ErrInvalid      = errors.New("token_invalid")
)

// VerifyError es el error retornado por Engine.Verify.
type VerifyError struct {
	Kind Kind
	Err  error
}

func (e *VerifyError) Error() string {
	if e.Err == nil {
		return "jwt: " + string(e.Kind)
	}
	return fmt.Sprintf("jwt: %s: %v", e.Kind, e.Err)
}

func (e *VerifyError) Unwrap() error { return e.Err }

// Is permite errors.Is(err, jwt.ErrExpired) etc.
func (e *VerifyError) Is(target error) bool {
	switch target {
	case ErrExpired:
		return e.Kind == KindExpired
	case ErrMalformed:
		return e.Kind == KindMalformed
	case ErrBadSignature:
		return e.Kind == KindBadSignature
	case ErrInvalid:
		return true
	}
	return false
}

// KindOf extrae el Kind de un error de verificación; KindOther si no lo es.
func KindOf(err error) Kind {
	var ve *VerifyError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return KindOther
}
