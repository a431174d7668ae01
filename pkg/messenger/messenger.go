// Package messenger collects user facing notices raised while a request is
// processed so they can be returned alongside the response.
package messenger

import (
	"context"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("messenger", fx.Provide(New))

type Severity string

var (
	Status  Severity = "status"
	Warning Severity = "warning"
	Error   Severity = "error"
)

func (s Severity) String() string {
	switch s {
	case Status, Warning, Error:
		return string(s)
	default:
		return ""
	}
}

type Message struct {
	Text     string   `json:"text"`
	Severity Severity `json:"severity"`
}

// Messenger is the user facing notification sink.
type Messenger interface {
	Add(ctx context.Context, text string, severity Severity)
}

type bagKey struct{}

// Bag holds the messages raised during one request.
type Bag struct {
	mu       sync.Mutex
	messages []Message
}

// add appends m unless an identical message is already queued.
func (b *Bag) add(m Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.messages {
		if existing == m {
			return
		}
	}
	b.messages = append(b.messages, m)
}

// Messages returns a copy of the collected messages in the order they were added.
func (b *Bag) Messages() []Message {
	if b == nil {
		return []Message{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Message, len(b.messages))
	copy(out, b.messages)
	return out
}

// WithBag attaches a fresh Bag to ctx.
func WithBag(ctx context.Context) (context.Context, *Bag) {
	bag := &Bag{}
	return context.WithValue(ctx, bagKey{}, bag), bag
}

// FromContext returns the Bag attached to ctx or nil.
func FromContext(ctx context.Context) *Bag {
	bag, _ := ctx.Value(bagKey{}).(*Bag)
	return bag
}

type zapMessenger struct {
	logger *zap.Logger
}

// New returns a Messenger that stores messages in the request Bag, when one
// is present, and always writes them to the log.
func New(logger *zap.Logger) Messenger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &zapMessenger{logger: logger}
}

func (m *zapMessenger) Add(ctx context.Context, text string, severity Severity) {
	if severity.String() == "" {
		severity = Status
	}

	if bag := FromContext(ctx); bag != nil {
		bag.add(Message{Text: text, Severity: severity})
	}

	fields := []zap.Field{
		zap.String("severity", string(severity)),
	}
	switch severity {
	case Error:
		m.logger.Error(text, fields...)
	case Warning:
		m.logger.Warn(text, fields...)
	default:
		m.logger.Info(text, fields...)
	}
}
