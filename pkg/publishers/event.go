// Package publishers delivers composed posts to configured sinks. The
// primary sink is the social platform itself; additional sinks mirror
// post events to webhooks or cloud queues for downstream consumers.
package publishers

import (
	"context"
	"time"
)

// Event is the payload delivered to every sink for one published post.
type Event struct {
	ProviderID string    `json:"provider_id"`
	ArticleURL string    `json:"article_url"`
	Text       string    `json:"text"`
	PostedAt   time.Time `json:"posted_at"`
}

// Publisher delivers post events to one sink.
type Publisher interface {
	ID() string
	Type() string
	// Primary reports whether a delivery failure fails the whole run.
	Primary() bool
	Publish(ctx context.Context, evt Event) error
}

// Logger is the minimal logging contract this package needs. It matches
// the module's logger so any implementation can be passed straight in.
type Logger interface {
	DebugObj(msg, event string, fields map[string]any)
	InfoObj(msg, event string, fields map[string]any)
	WarnObj(msg, event string, fields map[string]any)
	ErrorObj(msg, event string, fields map[string]any)
}

type nopLogger struct{}

func (nopLogger) DebugObj(string, string, map[string]any) {}
func (nopLogger) InfoObj(string, string, map[string]any)  {}
func (nopLogger) WarnObj(string, string, map[string]any)  {}
func (nopLogger) ErrorObj(string, string, map[string]any) {}

// ensureLogger returns a usable logger, substituting a no-op for nil.
func ensureLogger(log Logger) Logger {
	if log == nil {
		return nopLogger{}
	}
	return log
}
