package convention

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"github.com/teranos/typeshape/errors"
	"github.com/teranos/typeshape/logger"
	"go.uber.org/zap"
)

// ServiceProvider supplies externally constructed conventions. It is
// consulted when no owning factory is registered.
type ServiceProvider interface {
	Service(contract reflect.Type) (any, bool)
}

// Services is a map backed ServiceProvider.
type Services map[reflect.Type]any

// Service implements ServiceProvider.
func (s Services) Service(contract reflect.Type) (any, bool) {
	v, ok := s[contract]
	return v, ok
}

// Provide adds v as the service for contract T.
func Provide[T any](s Services, v T) {
	s[reflect.TypeFor[T]()] = v
}

// Context is one schema build. Conventions resolved through it are
// memoized per (contract, scope) and initialized at most once, even under
// concurrent first access.
type Context struct {
	build *build
	// keys being resolved by the caller chain, used for cycle detection
	stack []key
}

type build struct {
	id           uuid.UUID
	registry     *Registry
	services     ServiceProvider
	defaultScope string
	log          *zap.SugaredLogger

	mu      sync.Mutex
	entries map[key]*entry
	order   []key
}

// entry is the single-assignment slot of one resolved key.
type entry struct {
	done  chan struct{}
	value Convention
	err   error
}

// ContextOption configures a Context.
type ContextOption func(*build)

// WithServices sets the service provider consulted before defaults.
func WithServices(sp ServiceProvider) ContextOption {
	return func(b *build) {
		b.services = sp
	}
}

// WithDefaultScope replaces DefaultScope for empty scope requests.
func WithDefaultScope(scope string) ContextOption {
	return func(b *build) {
		if scope != "" {
			b.defaultScope = scope
		}
	}
}

// WithBuildID sets the build identifier instead of a random one.
func WithBuildID(id uuid.UUID) ContextOption {
	return func(b *build) {
		b.id = id
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) ContextOption {
	return func(b *build) {
		if log != nil {
			b.log = log
		}
	}
}

// NewContext starts a build over registry. A nil registry has no factories.
func NewContext(registry *Registry, opts ...ContextOption) *Context {
	if registry == nil {
		registry = NewRegistry()
	}
	b := &build{
		id:           uuid.New(),
		registry:     registry,
		defaultScope: DefaultScope,
		entries:      make(map[key]*entry),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.log == nil {
		b.log = logger.ComponentLogger("convention")
	}
	b.log = logger.ChildLogger(b.log, logger.FieldBuildID, b.id.String())
	return &Context{build: b}
}

// ID returns the build identifier.
func (c *Context) ID() uuid.UUID { return c.build.id }

// Registry returns the registry the build resolves from.
func (c *Context) Registry() *Registry { return c.build.registry }

// Services returns the service provider, possibly nil.
func (c *Context) Services() ServiceProvider { return c.build.services }

// DefaultScope returns the scope used for empty scope requests.
func (c *Context) DefaultScope() string { return c.build.defaultScope }

// Resolved lists the keys resolved so far as contract@scope, in resolution order.
func (c *Context) Resolved() []string {
	c.build.mu.Lock()
	defer c.build.mu.Unlock()
	out := make([]string, len(c.build.order))
	for i, k := range c.build.order {
		out[i] = k.String()
	}
	return out
}

// GetOrDefault returns the convention for contract T in scope, creating it
// on first use. def is used when neither an owning factory nor a service
// exists; it may be nil.
func GetOrDefault[T any](ctx *Context, scope string, def Factory) (T, error) {
	var zero T
	contract := reflect.TypeFor[T]()
	conv, err := ctx.Resolve(contract, scope, def)
	if err != nil {
		return zero, err
	}
	out, ok := conv.(T)
	if !ok {
		return zero, notCreated(contract, ctx.scope(scope), conv)
	}
	return out, nil
}

// Get is GetOrDefault without a default.
func Get[T any](ctx *Context, scope string) (T, error) {
	return GetOrDefault[T](ctx, scope, nil)
}

// Resolve is the untyped form of GetOrDefault.
func (c *Context) Resolve(contract reflect.Type, scope string, def Factory) (Convention, error) {
	k := key{contract: contract, scope: c.scope(scope)}

	for _, active := range c.stack {
		if active == k {
			return nil, errors.WithHint(
				errors.Mark(errors.Newf("convention cycle: %s", c.cycle(k)), errors.ErrConventionNotCreated),
				"a convention must not resolve its own contract while initializing")
		}
	}

	b := c.build
	b.mu.Lock()
	if e, ok := b.entries[k]; ok {
		b.mu.Unlock()
		<-e.done
		return e.value, e.err
	}
	e := &entry{done: make(chan struct{})}
	b.entries[k] = e
	b.mu.Unlock()

	func() {
		defer func() {
			if p := recover(); p != nil {
				e.value = nil
				e.err = errors.Mark(errors.Newf("resolving %s panicked: %v", k, p), errors.ErrConventionNotCreated)
			}
			close(e.done)
		}()
		e.value, e.err = c.create(k, def)
	}()

	b.mu.Lock()
	if e.err == nil {
		b.order = append(b.order, k)
	}
	b.mu.Unlock()
	return e.value, e.err
}

func (c *Context) scope(scope string) string {
	if scope == "" {
		return c.build.defaultScope
	}
	return scope
}

func (c *Context) cycle(k key) string {
	parts := make([]string, 0, len(c.stack)+1)
	for _, s := range c.stack {
		parts = append(parts, s.String())
	}
	return strings.Join(append(parts, k.String()), " -> ")
}

func (c *Context) child(k key) *Context {
	stack := make([]key, len(c.stack), len(c.stack)+1)
	copy(stack, c.stack)
	return &Context{build: c.build, stack: append(stack, k)}
}

func (c *Context) create(k key, def Factory) (Convention, error) {
	ctx := c.child(k)
	log := logger.ChildLogger(c.build.log,
		logger.FieldContract, k.contract.String(),
		logger.FieldScope, k.scope)

	var owners, extensions []Convention
	for _, f := range c.build.registry.lookup(k) {
		conv, err := f(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "convention factory for %s failed", k)
		}
		if conv == nil {
			continue
		}
		if ext, ok := conv.(Extension); ok {
			extensions = append(extensions, ext)
			continue
		}
		owners = append(owners, conv)
	}

	if len(owners) > 1 {
		return nil, errors.WithHint(
			errors.Mark(
				errors.Newf("two conventions registered for scope %q of %s: %T and %T",
					k.scope, k.contract, owners[0], owners[1]),
				errors.ErrConventionConflict),
			"register one of them as an extension or move it to another scope")
	}

	var owner Convention
	source := "registry"
	switch {
	case len(owners) == 1:
		owner = owners[0]
	default:
		var err error
		owner, source, err = c.fallback(ctx, k, def)
		if err != nil {
			return nil, err
		}
	}
	if owner == nil {
		return nil, notCreated(k.contract, k.scope, nil)
	}
	if !reflect.TypeOf(owner).AssignableTo(k.contract) {
		return nil, notCreated(k.contract, k.scope, owner)
	}

	if err := owner.Initialize(ctx, k.scope); err != nil {
		return nil, errors.Wrapf(err, "initializing %T for %s", owner, k)
	}

	// deterministic merge order regardless of registration order
	sort.SliceStable(extensions, func(i, j int) bool {
		return fmt.Sprintf("%T", extensions[i]) < fmt.Sprintf("%T", extensions[j])
	})
	for _, conv := range extensions {
		ext := conv.(Extension)
		if err := checkVersion(owner, ext); err != nil {
			return nil, err
		}
		if err := ext.Initialize(ctx, k.scope); err != nil {
			return nil, errors.Wrapf(err, "initializing extension %T for %s", ext, k)
		}
		if err := ext.Merge(ctx, owner); err != nil {
			return nil, errors.Wrapf(err, "merging extension %T into %T", ext, owner)
		}
	}

	if completer, ok := owner.(Completer); ok {
		if err := completer.Complete(ctx); err != nil {
			return nil, errors.Wrapf(err, "completing %T for %s", owner, k)
		}
	}

	log.Debugw("Resolved convention",
		logger.FieldConvention, fmt.Sprintf("%T", owner),
		logger.FieldExtensions, len(extensions),
		logger.FieldSource, source)
	return owner, nil
}

// fallback returns a service-provided convention, then the caller default.
// A service instance already bound to another scope is skipped with a
// warning; a failing default factory is reported as not created.
func (c *Context) fallback(ctx *Context, k key, def Factory) (Convention, string, error) {
	if sp := c.build.services; sp != nil {
		if svc, ok := sp.Service(k.contract); ok {
			conv, ok := svc.(Convention)
			switch {
			case ok && !conv.IsInitialized():
				return conv, "services", nil
			case ok:
				c.build.log.Warnw("Service convention already initialized, using default",
					logger.FieldContract, k.contract.String(),
					logger.FieldScope, k.scope,
					logger.FieldConvention, fmt.Sprintf("%T", conv),
					logger.FieldReason, fmt.Sprintf("bound to scope %q", conv.Scope()))
			default:
				c.build.log.Debugw("Ignoring service convention",
					logger.FieldContract, k.contract.String(),
					logger.FieldReason, "not a convention")
			}
		}
	}
	if def == nil {
		return nil, "", nil
	}
	conv, err := def(ctx)
	if err != nil {
		return nil, "", errors.Mark(
			errors.Wrapf(err, "default convention factory for %s failed", k),
			errors.ErrConventionNotCreated)
	}
	return conv, "default", nil
}

func checkVersion(owner Convention, ext Extension) error {
	constrained, ok := ext.(Constrained)
	if !ok || constrained.Requires() == "" {
		return nil
	}
	versioned, ok := owner.(Versioned)
	if !ok {
		return errors.Mark(
			errors.Newf("extension %T requires %s but %T has no version", ext, constrained.Requires(), owner),
			errors.ErrConventionConflict)
	}

	version, err := semver.NewVersion(versioned.Version())
	if err != nil {
		return errors.Wrapf(err, "invalid version %q of %T", versioned.Version(), owner)
	}
	constraint, err := semver.NewConstraint(constrained.Requires())
	if err != nil {
		return errors.Wrapf(err, "invalid version constraint %q of %T", constrained.Requires(), ext)
	}
	if !constraint.Check(version) {
		return errors.Mark(
			errors.Newf("extension %T requires %T %s, but resolved %s", ext, owner, constrained.Requires(), version),
			errors.ErrConventionConflict)
	}
	return nil
}

func notCreated(contract reflect.Type, scope string, got any) error {
	var err error
	if got == nil {
		err = errors.Newf("convention %s could not be created for scope %q", contract, scope)
	} else {
		err = errors.Newf("convention %s could not be created for scope %q: %T does not implement it", contract, scope, got)
	}
	return errors.WithHint(
		errors.Mark(err, errors.ErrConventionNotCreated),
		"register a factory, provide a service or pass a default")
}
