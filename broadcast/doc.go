// Package broadcast is the publish/subscribe substrate every ruleflow rule
// is built on. Data sources (broadcasters) are declared against a registry,
// checks declare the sources they observe, and constructing a source for a
// run-target recursively instantiates its subscriber graph with instance
// sharing across subscriptions. Dispatch is single-threaded, synchronous and
// depth-first, in declaration order; individual subscriptions can be
// suppressed and resumed at runtime.
//
// A source may also be a check, which is how line filters are composed:
// the filter subscribes to an upstream source and re-broadcasts transformed
// events to its own subscribers.
package broadcast
