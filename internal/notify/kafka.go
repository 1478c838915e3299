package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	skafka "github.com/segmentio/kafka-go"
)

// Writer es el subconjunto de kafka.Writer que usa KafkaSink (testeable).
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

// KafkaSink publica cada evento como JSON, con key = subject para
// preservar el orden por cuenta dentro de la partición.
type KafkaSink struct {
	writer Writer
}

// NewKafkaSink crea un writer real hacia brokers/topic.
func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	w := &skafka.Writer{
		Addr:         skafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &skafka.Hash{},
		RequiredAcks: skafka.RequireOne,
		WriteTimeout: 5 * time.Second,
	}
	return &KafkaSink{writer: w}
}

// NewKafkaSinkWithWriter permite inyectar un writer de test.
func NewKafkaSinkWithWriter(w Writer) *KafkaSink {
	return &KafkaSink{writer: w}
}

func (k *KafkaSink) Notify(ctx context.Context, e Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("notify: marshal event: %w", err)
	}
	msg := skafka.Message{
		Key:   []byte(e.Subject),
		Value: b,
		Headers: []skafka.Header{
			{Key: "event_type", Value: []byte(e.Type)},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("notify: kafka write: %w", err)
	}
	return nil
}

// Close cierra el writer subyacente.
func (k *KafkaSink) Close() error {
	return k.writer.Close()
}
