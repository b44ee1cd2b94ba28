package broadcast

import "fmt"

// SourceInstance is a live data source for one run-target, owning its
// ordered list of subscribed check instances.
type SourceInstance struct {
	typ     *SourceType
	builder *Builder
	subs    []*CheckInstance
}

// Type returns the instance's source type.
func (s *SourceInstance) Type() *SourceType {
	return s.typ
}

// Builder returns the build context this instance belongs to.
func (s *SourceInstance) Builder() *Builder {
	return s.builder
}

// Subscribers returns the live subscribers in dispatch order.
func (s *SourceInstance) Subscribers() []*CheckInstance {
	return append([]*CheckInstance(nil), s.subs...)
}

// Broadcast replays a value tuple to every live subscriber in order, through
// each subscriber's handler for this source. Handlers are resolved lazily: a
// subscriber lacking its handler surfaces a ContractError at the first
// broadcast, not at construction. Suppressed subscriptions are skipped
// silently. Dispatch is synchronous and depth-first; an error from a handler
// propagates unmodified and unwinds the broadcast.
func (s *SourceInstance) Broadcast(args ...any) error {
	for _, ci := range s.subs {
		if ci.isSuppressed(s.typ) {
			continue
		}
		h, err := ci.handler(s.typ, primarySignal)
		if err != nil {
			return err
		}
		if err := h(args...); err != nil {
			return err
		}
	}
	return nil
}

// Emit dispatches one of the source's extra named signals, such as an
// end-of-stream notification, to every subscriber in order. Signals are not
// subject to suppression.
func (s *SourceInstance) Emit(signal string, args ...any) error {
	if _, ok := s.typ.signals[signal]; !ok {
		return &DeclarationError{Type: s.typ.name, Reason: fmt.Sprintf("no declared signal %q", signal)}
	}
	for _, ci := range s.subs {
		h, err := ci.handler(s.typ, signal)
		if err != nil {
			return err
		}
		if err := h(args...); err != nil {
			return err
		}
	}
	return nil
}

// primarySignal keys the handler derived from the source type name.
const primarySignal = ""

type handlerKey struct {
	src    *SourceType
	signal string
}

// CheckInstance is a live check for one run-target. It exposes exactly one
// handler per declared subscription, resolved lazily on first dispatch, and
// tracks per-subscription suppression state.
type CheckInstance struct {
	typ        *CheckType
	impl       any
	parent     *SourceInstance
	handlers   map[handlerKey]HandlerFunc
	suppressed map[*SourceType]HandlerFunc
}

// Type returns the instance's check type.
func (c *CheckInstance) Type() *CheckType {
	return c.typ
}

// Impl returns the check implementation built by the type's factory.
func (c *CheckInstance) Impl() any {
	return c.impl
}

// Parent returns the source instance the check was first attached to.
func (c *CheckInstance) Parent() *SourceInstance {
	return c.parent
}

// Name returns the check type name. Together with Motivation it satisfies
// the report.Check interface so violations can carry their origin.
func (c *CheckInstance) Name() string {
	return c.typ.name
}

// Motivation returns the check type's declared rationale text.
func (c *CheckInstance) Motivation() string {
	return c.typ.motivation
}

// handler resolves and caches the handler implementing the given signal of
// src on this instance. Absence of the handler is a contract fault.
func (c *CheckInstance) handler(src *SourceType, signal string) (HandlerFunc, error) {
	key := handlerKey{src: src, signal: signal}
	if h, ok := c.handlers[key]; ok {
		return h, nil
	}

	resolve := src.primary
	expected := src.handlerName
	if signal != primarySignal {
		resolve = src.signals[signal]
		expected = fmt.Sprintf("the %q signal handler", signal)
	}

	h, ok := resolve(c.impl)
	if !ok || h == nil {
		return nil, &ContractError{Check: c.typ.name, Source: src.name, Handler: expected}
	}
	c.handlers[key] = h
	return h, nil
}
