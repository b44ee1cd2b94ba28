package broadcast

import (
	"fmt"
	"strings"
	"sync"
)

// Registry maps every declared source type to the ordered list of check
// types subscribed to it. It is populated incrementally during startup,
// freezes itself when the first instance graph is built, and is never pruned
// during normal operation.
type Registry struct {
	mu       sync.RWMutex
	sources  map[string]*SourceType
	checks   map[string]*CheckType
	subs     map[*SourceType][]*CheckType
	excluded map[string]struct{}
	frozen   bool
}

// Default is the process-wide registry. Tools with a single rule set declare
// against it; tests construct their own with NewRegistry.
var Default = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sources:  make(map[string]*SourceType),
		checks:   make(map[string]*CheckType),
		subs:     make(map[*SourceType][]*CheckType),
		excluded: make(map[string]struct{}),
	}
}

// DeclareSource declares a data source type. The name must end with
// ReservedSuffix and the primary resolver must be non-nil. Declaring against
// a frozen registry is a declaration fault.
func (r *Registry) DeclareSource(name string, primary Resolver, opts ...SourceOption) (*SourceType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return nil, &DeclarationError{Type: name, Reason: "registry is frozen, sources must be declared before instantiation"}
	}
	if !strings.HasSuffix(name, ReservedSuffix) || name == ReservedSuffix {
		return nil, &DeclarationError{Type: name, Reason: fmt.Sprintf("source type names must end with %q", ReservedSuffix)}
	}
	if _, exists := r.sources[name]; exists {
		return nil, &DeclarationError{Type: name, Reason: "source type already declared"}
	}
	if primary == nil {
		return nil, &DeclarationError{Type: name, Reason: "primary handler resolver must be provided"}
	}

	t := &SourceType{
		name:        name,
		handlerName: derivedHandlerName(name),
		primary:     primary,
		signals:     make(map[string]Resolver),
	}
	for _, opt := range opts {
		opt(t)
	}

	r.sources[name] = t
	return t, nil
}

// MustDeclareSource is DeclareSource, panicking on fault. Intended for
// package startup paths where a declaration fault must abort the process.
func (r *Registry) MustDeclareSource(name string, primary Resolver, opts ...SourceOption) *SourceType {
	t, err := r.DeclareSource(name, primary, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// DeclareCheck declares a check type subscribed to the given sources, in
// order. The subscription list must be non-empty and every entry must be a
// source declared in this registry. A name on the exclusion set is skipped
// entirely: it never enters the registry, can never be instantiated, and the
// returned type is nil with no fault.
func (r *Registry) DeclareCheck(name string, factory Factory, subscribes []*SourceType, opts ...CheckOption) (*CheckType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, skip := r.excluded[name]; skip {
		return nil, nil
	}
	if r.frozen {
		return nil, &DeclarationError{Type: name, Reason: "registry is frozen, checks must be declared before instantiation"}
	}
	if _, exists := r.checks[name]; exists {
		return nil, &DeclarationError{Type: name, Reason: "check type already declared"}
	}
	if factory == nil {
		return nil, &DeclarationError{Type: name, Reason: "factory must be provided"}
	}
	if subscribes == nil {
		return nil, &DeclarationError{Type: name, Reason: "subscription list must be provided"}
	}
	if len(subscribes) == 0 {
		return nil, &DeclarationError{Type: name, Reason: "did not subscribe to any data sources"}
	}
	for i, src := range subscribes {
		if src == nil {
			return nil, &DeclarationError{Type: name, Reason: fmt.Sprintf("subscription %d is not a valid data source", i)}
		}
		if r.sources[src.name] != src {
			return nil, &DeclarationError{Type: name, Reason: fmt.Sprintf("%s is not a declared data source of this registry", src.name)}
		}
	}

	t := &CheckType{
		name:       name,
		subscribes: append([]*SourceType(nil), subscribes...),
		factory:    factory,
	}
	for _, opt := range opts {
		opt(t)
	}

	r.checks[name] = t
	for _, src := range t.subscribes {
		r.subs[src] = append(r.subs[src], t)
	}
	return t, nil
}

// MustDeclareCheck is DeclareCheck, panicking on fault. An excluded name
// yields nil without panicking.
func (r *Registry) MustDeclareCheck(name string, factory Factory, subscribes []*SourceType, opts ...CheckOption) *CheckType {
	t, err := r.DeclareCheck(name, factory, subscribes, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Exclude marks check type names to be skipped at declaration time. It must
// be called before the corresponding declarations run and fails once the
// registry is frozen.
func (r *Registry) Exclude(names ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return &DeclarationError{Type: strings.Join(names, ","), Reason: "registry is frozen, exclusions must be set before declarations"}
	}
	for _, name := range names {
		r.excluded[name] = struct{}{}
	}
	return nil
}

// Source returns the declared source type with the given name.
func (r *Registry) Source(name string) (*SourceType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.sources[name]
	return t, ok
}

// Check returns the declared check type with the given name.
func (r *Registry) Check(name string) (*CheckType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.checks[name]
	return t, ok
}

// SubscribersOf returns the check types subscribed to src, in declaration order.
func (r *Registry) SubscribersOf(src *SourceType) []*CheckType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*CheckType(nil), r.subs[src]...)
}

// Freeze stops further declarations. The instance graph builder freezes the
// registry before building, so every run operates on a fixed, pre-validated
// structure.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Reset clears all declarations, exclusions and the frozen flag.
//
// This exists for test harnesses only. Production code never prunes the
// registry.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = make(map[string]*SourceType)
	r.checks = make(map[string]*CheckType)
	r.subs = make(map[*SourceType][]*CheckType)
	r.excluded = make(map[string]struct{})
	r.frozen = false
}
