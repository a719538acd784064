package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Logger records payment lifecycle events. Every event is written to the
// structured log; when a Kafka writer is configured the event is also
// published, best-effort, so reconciliation tooling can consume the stream.
// A publish failure never propagates to the payment flow.
type Logger struct {
	log    *logrus.Logger
	writer *kafka.Writer
}

func NewLogger(log *logrus.Logger, writer *kafka.Writer) *Logger {
	return &Logger{log: log, writer: writer}
}

// NewKafkaWriter builds the event sink writer for the given brokers.
func NewKafkaWriter(topic string, brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}

func (l *Logger) Info(event string, fields logrus.Fields) {
	l.emit(logrus.InfoLevel, event, fields)
}

// Warn is for security-relevant events like a signature mismatch, which get
// logged distinctly from ordinary failures.
func (l *Logger) Warn(event string, fields logrus.Fields) {
	l.emit(logrus.WarnLevel, event, fields)
}

func (l *Logger) Error(event string, fields logrus.Fields) {
	l.emit(logrus.ErrorLevel, event, fields)
}

func (l *Logger) emit(level logrus.Level, event string, fields logrus.Fields) {
	if fields == nil {
		fields = logrus.Fields{}
	}
	fields["event"] = event
	l.log.WithFields(fields).Log(level, "payment event")

	l.publishAsync(level, event, fields)
}

func (l *Logger) publishAsync(level logrus.Level, event string, fields logrus.Fields) {
	if l.writer == nil {
		return
	}

	payload := map[string]interface{}{
		"level":       level.String(),
		"event":       event,
		"fields":      fields,
		"recorded_at": time.Now(),
	}
	value, err := json.Marshal(payload)
	if err != nil {
		l.log.Errorf("failed to marshal audit event: %v", err)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		msg := kafka.Message{
			Key:   []byte(event),
			Value: value,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(event)},
			},
		}
		if err := l.writer.WriteMessages(ctx, msg); err != nil {
			l.log.Errorf("failed to publish audit event %v: %v", event, err)
		}
	}()
}
