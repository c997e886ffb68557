package notify

import "log"

// Context is the structured notification produced by every mutating
// operation. Persisting or broadcasting it (email, WhatsApp, audit trail) is
// the consumer's responsibility, not this service's.
type Context struct {
	ActorName      string
	AffectedEntity string
	Message        string
}

// Notifier consumes notification contexts.
type Notifier interface {
	Notify(ctx Context)
}

// LogNotifier writes notification contexts to the server log. It is the
// default sink when no delivery integration is wired in.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Notify(ctx Context) {
	log.Printf("notify: actor=%q entity=%q message=%q", ctx.ActorName, ctx.AffectedEntity, ctx.Message)
}
