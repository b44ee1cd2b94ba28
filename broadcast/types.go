package broadcast

import "strings"

// ReservedSuffix is the suffix every source type name must carry. The name of
// a source's handler is derived from the remainder: a source declared as
// "LineBroadcaster" dispatches to UpdateLine on its subscribers.
const ReservedSuffix = "Broadcaster"

const handlerPrefix = "Update"

// HandlerFunc delivers one broadcast to a subscriber. An error returned from
// a handler propagates unmodified out of the broadcast that invoked it.
type HandlerFunc func(args ...any) error

// Resolver binds a check implementation to the handler a source dispatches
// to, typically by asserting the implementation against the source's handler
// interface. A false return means the implementation lacks the handler.
type Resolver func(impl any) (HandlerFunc, bool)

// Factory constructs a check implementation. It receives the run-scoped
// Builder and the source instance the check is being attached to. A check
// that is itself a source builds its own SourceInstance here.
type Factory func(b *Builder, parent *SourceInstance) any

// SourceType is the declared identity of a data source. Sources replay the
// events they receive or produce to every check subscribed to them.
type SourceType struct {
	name        string
	handlerName string
	primary     Resolver
	signals     map[string]Resolver
	signalOrder []string
}

// SourceOption configures a SourceType declaration.
type SourceOption func(*SourceType)

// WithSignal declares an extra named signal on the source, such as an
// end-of-stream notification, with its own handler resolver. Signals are
// dispatched with Emit and are not affected by suppression.
func WithSignal(name string, resolve Resolver) SourceOption {
	return func(t *SourceType) {
		if _, ok := t.signals[name]; !ok {
			t.signalOrder = append(t.signalOrder, name)
		}
		t.signals[name] = resolve
	}
}

// Name returns the declared source type name.
func (t *SourceType) Name() string {
	return t.name
}

// HandlerName returns the name of the handler this source dispatches to,
// derived from the type name with the reserved suffix stripped.
func (t *SourceType) HandlerName() string {
	return t.handlerName
}

func derivedHandlerName(name string) string {
	return handlerPrefix + strings.TrimSuffix(name, ReservedSuffix)
}

// CheckType is the declared identity of a check: an ordered, non-empty list
// of source subscriptions plus a factory producing instances.
type CheckType struct {
	name       string
	subscribes []*SourceType
	factory    Factory
	motivation string
}

// CheckOption configures a CheckType declaration.
type CheckOption func(*CheckType)

// WithMotivation attaches rationale text to the check, shown by sinks that
// display motivation.
func WithMotivation(text string) CheckOption {
	return func(t *CheckType) {
		t.motivation = text
	}
}

// Name returns the declared check type name.
func (t *CheckType) Name() string {
	return t.name
}

// Motivation returns the declared rationale text, if any.
func (t *CheckType) Motivation() string {
	return t.motivation
}

// Subscribes returns the check's subscriptions in declaration order.
func (t *CheckType) Subscribes() []*SourceType {
	out := make([]*SourceType, len(t.subscribes))
	copy(out, t.subscribes)
	return out
}

// SubscribesTo reports whether src is one of the check's declared subscriptions.
func (t *CheckType) SubscribesTo(src *SourceType) bool {
	for _, s := range t.subscribes {
		if s == src {
			return true
		}
	}
	return false
}
