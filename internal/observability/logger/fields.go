package logger

import (
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// CAMPOS ESTÁNDAR - HTTP
// =================================================================================

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field { return zap.String("method", v) }
func Path(v string) zap.Field { return zap.String("path", v) }
func Status(v int) zap.Field { return zap.Int("status", v) }
func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }
func UserAgent(v string) zap.Field { return zap.String("user_agent", v) }
func Bytes(v int) zap.Field { return zap.Int("bytes", v) }

// DurationMs registra la duración en milisegundos.
func DurationMs(d time.Duration) zap.Field { return zap.Int64("duration_ms", d.Milliseconds()) }

// =================================================================================
// CAMPOS ESTÁNDAR - AUTH
// =================================================================================

// Subject es el identificador de cuenta (claim sub).
func Subject(v string) zap.Field { return zap.String("subject", v) }

// JTI es el identificador único del token. Nunca loguear el token crudo.
func JTI(v string) zap.Field { return zap.String("jti", v) }

// Purpose es el propósito del token (ACCESS, REFRESH, VERIFICATION).
func Purpose(v string) zap.Field { return zap.String("purpose", v) }

// Category es la categoría del path (public, protected, action).
func Category(v string) zap.Field { return zap.String("category", v) }

// Username enmascarado; el caller debe pasarlo por util.MaskIdentifier.
func Username(v string) zap.Field { return zap.String("username", v) }

// AccountStatus es el estado de lock de la cuenta.
func AccountStatus(v string) zap.Field { return zap.String("account_status", v) }

// Outcome es el resultado de una decisión (success, rejected, anonymous).
func Outcome(v string) zap.Field { return zap.String("outcome", v) }

// Reason describe por qué se tomó una decisión (rechazo, fallback).
func Reason(v string) zap.Field { return zap.String("reason", v) }

// =================================================================================
// CAMPOS ESTÁNDAR - SISTEMA
// =================================================================================

// Component es el componente/módulo (ej: "gateway.refresh").
func Component(v string) zap.Field { return zap.String("component", v) }

// Op es la operación actual.
func Op(v string) zap.Field { return zap.String("op", v) }

// Layer es la capa (middleware, controller, service, store).
func Layer(v string) zap.Field { return zap.String("layer", v) }

func Err(err error) zap.Field { return zap.Error(err) }

func Count(v int) zap.Field { return zap.Int("count", v) }
func Key(v string) zap.Field { return zap.String("key", v) }
func String(k, v string) zap.Field { return zap.String(k, v) }
func Int(k string, v int) zap.Field { return zap.Int(k, v) }
func Bool(k string, v bool) zap.Field { return zap.Bool(k, v) }
func Any(k string, v any) zap.Field { return zap.Any(k, v) }
