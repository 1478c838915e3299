// Package notify entrega eventos de cuenta a colaboradores externos.
//
// El core llama a Sink.Notify directamente (no hay bus de eventos). El
// contenido y la entrega del mensaje final (email, SMS) no son de este servicio.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/dropDatabas3/authgate/internal/util"
)

// EventType identifica el evento.
type EventType string

const (
	AccountLocked          EventType = "account.locked"
	AccountUnlocked        EventType = "account.unlocked"
	AccountStatusChanged   EventType = "account.status_changed"
	RegistrationRequested  EventType = "registration.requested"
	RegistrationCompleted  EventType = "registration.completed"
	PasswordResetRequested EventType = "password_reset.requested"
	PasswordResetCompleted EventType = "password_reset.completed"
)

// Event es la notificación. Secret lleva el token de verificación para el
// colaborador de entrega; los sinks que loguean nunca lo imprimen.
type Event struct {
	ID         string            `json:"id"`
	Type       EventType         `json:"type"`
	Subject    string            `json:"subject"`
	OccurredAt time.Time         `json:"occurred_at"`
	Data       map[string]string `json:"data,omitempty"`
	Secret     string            `json:"secret,omitempty"`
}

// NewEvent completa ID y OccurredAt.
func NewEvent(t EventType, subject string, data map[string]string) Event {
	now := time.Now().UTC()
	return Event{ID: util.NewULIDAt(now), Type: t, Subject: subject, OccurredAt: now, Data: data}
}

// Sink recibe eventos. Los callers tratan los errores como best-effort.
type Sink interface {
	Notify(ctx context.Context, e Event) error
}

// Nop descarta todo.
type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }

// Recorder guarda los eventos en memoria (tests, modo embebido).
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Notify(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events retorna una copia de lo recibido.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Last retorna el último evento de un tipo.
func (r *Recorder) Last(t EventType) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == t {
			return r.events[i], true
		}
	}
	return Event{}, false
}
