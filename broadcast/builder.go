package broadcast

import "github.com/ruleflow-dev/ruleflow/report"

// Builder is the run-scoped build context for one run-target. It owns the
// check instance cache that guarantees sharing: a check type reached through
// multiple subscriptions is instantiated once and wired to every parent.
// A Builder must not be reused across run-targets.
type Builder struct {
	registry *Registry
	cache    map[*CheckType]*CheckInstance
	restrict map[*CheckType]struct{}
	sink     report.Sink
	target   string
	root     *SourceInstance
}

// InstanceAware is implemented by check implementations that want a handle
// on their own check instance, typically to attach it to violation records
// or to drive suppression. Bind is called once, right after construction.
type InstanceAware interface {
	Bind(*CheckInstance)
}

// BuildOption configures a Builder.
type BuildOption func(*Builder)

// WithRestriction limits instantiation to the given check types. Registry
// entries outside the set are skipped. Mainly useful in tests, where mocking
// is simpler when unrelated checks are not built.
func WithRestriction(checks ...*CheckType) BuildOption {
	return func(b *Builder) {
		b.restrict = make(map[*CheckType]struct{}, len(checks))
		for _, ct := range checks {
			if ct != nil {
				b.restrict[ct] = struct{}{}
			}
		}
	}
}

// WithSink sets the violation sink checks report to during this run.
func WithSink(s report.Sink) BuildOption {
	return func(b *Builder) {
		if s != nil {
			b.sink = s
		}
	}
}

// WithTarget names the run-target, usually the file being scanned.
func WithTarget(name string) BuildOption {
	return func(b *Builder) {
		b.target = name
	}
}

// NewBuilder creates a build context for one run-target against the given
// registry. A nil registry means the process-wide Default.
func NewBuilder(reg *Registry, opts ...BuildOption) *Builder {
	if reg == nil {
		reg = Default
	}
	b := &Builder{
		registry: reg,
		cache:    make(map[*CheckType]*CheckInstance),
		sink:     report.NopSink{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Registry returns the registry this builder instantiates from.
func (b *Builder) Registry() *Registry {
	return b.registry
}

// Sink returns the violation sink for this run. Never nil.
func (b *Builder) Sink() report.Sink {
	return b.sink
}

// Target returns the run-target name.
func (b *Builder) Target() string {
	return b.target
}

// Root returns the first source instance built in this context, or nil if
// none was built yet. Checks use it as the entry point for Find.
func (b *Builder) Root() *SourceInstance {
	return b.root
}

// NewSource instantiates a data source, recursively building one instance
// per subscribed check type. Iteration follows registry declaration order,
// the restriction set filters it, and the cache ensures a check type reached
// via multiple subscriptions is shared rather than duplicated. The registry
// is frozen on first use so the structure being walked is fixed; since it is
// acyclic over types and every type is built at most once per Builder, the
// resulting instance graph is acyclic.
func (b *Builder) NewSource(typ *SourceType) *SourceInstance {
	b.registry.Freeze()

	inst := &SourceInstance{typ: typ, builder: b}
	if b.root == nil {
		b.root = inst
	}

	for _, ct := range b.registry.SubscribersOf(typ) {
		if b.restrict != nil {
			if _, ok := b.restrict[ct]; !ok {
				continue
			}
		}
		ci, ok := b.cache[ct]
		if !ok {
			ci = &CheckInstance{
				typ:        ct,
				parent:     inst,
				handlers:   make(map[handlerKey]HandlerFunc),
				suppressed: make(map[*SourceType]HandlerFunc),
			}
			ci.impl = ct.factory(b, inst)
			if aware, ok := ci.impl.(InstanceAware); ok {
				aware.Bind(ci)
			}
			b.cache[ct] = ci
		}
		inst.subs = append(inst.subs, ci)
	}
	return inst
}
