package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	skafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

// fakeWriter registra los mensajes escritos.
type fakeWriter struct {
	msgs []skafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...skafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestKafkaSink_Publish(t *testing.T) {
	fw := &fakeWriter{}
	s := NewKafkaSinkWithWriter(fw)

	e := NewEvent(AccountLocked, "sub-1", map[string]string{"failures": "3"})
	require.NoError(t, s.Notify(context.Background(), e))
	require.Len(t, fw.msgs, 1)

	msg := fw.msgs[0]
	require.Equal(t, "sub-1", string(msg.Key))
	require.Equal(t, "event_type", msg.Headers[0].Key)
	require.Equal(t, string(AccountLocked), string(msg.Headers[0].Value))

	var got Event
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	require.Equal(t, e.ID, got.ID)
	require.Equal(t, "3", got.Data["failures"])
	require.Empty(t, got.Secret)
}

func TestKafkaSink_WriteError(t *testing.T) {
	s := NewKafkaSinkWithWriter(&fakeWriter{err: errors.New("broker down")})
	err := s.Notify(context.Background(), NewEvent(AccountUnlocked, "s", nil))
	require.Error(t, err)
}

func TestRecorder_Last(t *testing.T) {
	var r Recorder
	ctx := context.Background()
	require.NoError(t, r.Notify(ctx, NewEvent(AccountLocked, "a", nil)))
	require.NoError(t, r.Notify(ctx, NewEvent(AccountUnlocked, "a", nil)))
	require.NoError(t, r.Notify(ctx, NewEvent(AccountLocked, "b", nil)))

	last, ok := r.Last(AccountLocked)
	require.True(t, ok)
	require.Equal(t, "b", last.Subject)
	require.Len(t, r.Events(), 3)

	_, ok = r.Last(RegistrationRequested)
	require.False(t, ok)
}

func TestLogSink_NeverFails(t *testing.T) {
	e := NewEvent(RegistrationRequested, "a", nil)
	e.Secret = "raw-token"
	require.NoError(t, LogSink{}.Notify(context.Background(), e))
	require.NoError(t, Nop{}.Notify(context.Background(), e))
}
