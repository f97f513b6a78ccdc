// Package convert coerces runtime values between mismatched Go types.
//
// A Registry resolves a Converter per (source, target) type pair: direct
// registrations first, then an ordered chain of providers (enums, element
// wise collections, nullable unwrap and wrap, scalars). Resolved converters
// are cached for the life of the registry.
package convert

import (
	"reflect"
	"sync"

	"github.com/teranos/typeshape/errors"
	"github.com/teranos/typeshape/host"
	"github.com/teranos/typeshape/logger"
	"go.uber.org/zap"
)

// maxResolveDepth bounds provider recursion for self-referential types such
// as type Tree []Tree.
const maxResolveDepth = 16

// Converter converts a non-nil value of its source type.
type Converter func(v any) (any, error)

// Lookup resolves converters for nested types from inside a provider.
type Lookup func(from, to reflect.Type) (Converter, bool)

// Provider produces converters for type pairs it understands.
type Provider interface {
	Name() string
	Converter(from, to reflect.Type, lookup Lookup) (Converter, bool)
}

// Registry caches converters per type pair. It is safe for concurrent use;
// racing resolutions of one pair may both run a provider, and the first to
// publish wins.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
	custom    []Provider
	enums     *enumSets

	// source reflect.Type -> *sync.Map of target reflect.Type -> Converter
	cache sync.Map
	log   *zap.SugaredLogger
}

// Option configures a Registry.
type Option func(*registryOptions)

type registryOptions struct {
	scalars bool
	log     *zap.SugaredLogger
}

// WithScalars enables or disables the scalar provider (string, number,
// bool, duration and time coercion). Enabled by default.
func WithScalars(enabled bool) Option {
	return func(o *registryOptions) {
		o.scalars = enabled
	}
}

// WithLogger sets the registry logger. Without it the registry logs through
// the global logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(o *registryOptions) {
		o.log = log
	}
}

// New creates a registry with the built-in providers.
func New(opts ...Option) *Registry {
	o := registryOptions{scalars: true}
	for _, opt := range opts {
		opt(&o)
	}
	enums := newEnumSets()
	providers := []Provider{
		enumProvider{sets: enums},
		collectionProvider{},
		nullableProvider{},
	}
	if o.scalars {
		providers = append(providers, scalarProvider{})
	}
	return &Registry{
		providers: providers,
		enums:     enums,
		log:       o.log,
	}
}

// AddProvider adds a provider consulted before the built-in ones. Pairs
// already cached are not re-resolved.
func (r *Registry) AddProvider(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.custom = append(r.custom, p)
}

// Providers returns the provider names in resolution order.
func (r *Registry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.custom)+len(r.providers))
	for _, p := range r.custom {
		names = append(names, p.Name())
	}
	for _, p := range r.providers {
		names = append(names, p.Name())
	}
	return names
}

// Register adds a direct converter for a type pair, replacing any cached one.
func (r *Registry) Register(from, to reflect.Type, fn Converter) {
	r.targets(from).Store(to, fn)
	r.logger().Debugw("Registered converter",
		logger.FieldFrom, from.String(),
		logger.FieldTo, to.String())
}

// Register adds a typed direct converter.
func Register[A, B any](r *Registry, fn func(A) (B, error)) {
	r.Register(reflect.TypeFor[A](), reflect.TypeFor[B](), func(v any) (any, error) {
		a, ok := v.(A)
		if !ok {
			return nil, errors.Newf("expected %s, got %T", reflect.TypeFor[A](), v)
		}
		return fn(a)
	})
}

func (r *Registry) targets(from reflect.Type) *sync.Map {
	if m, ok := r.cache.Load(from); ok {
		return m.(*sync.Map)
	}
	m, _ := r.cache.LoadOrStore(from, &sync.Map{})
	return m.(*sync.Map)
}

// Convert converts v from type from to type to. A nil from is taken from v.
// Errors are *ConversionError values marked errors.ErrConversion.
func (r *Registry) Convert(from, to reflect.Type, v any) (any, error) {
	if to == nil {
		return nil, newConversionError(from, to, errors.New("target type is nil"))
	}
	if from == nil {
		if v == nil {
			return reflect.Zero(to).Interface(), nil
		}
		from = reflect.TypeOf(v)
	}

	if from.AssignableTo(to) {
		return v, nil
	}
	if isNil(v) {
		return reflect.Zero(to).Interface(), nil
	}

	conv, err := r.ConverterFor(from, to)
	if err != nil {
		return nil, err
	}
	out, err := conv(v)
	if err != nil {
		if errors.IsConversionError(err) {
			return nil, err
		}
		return nil, newConversionError(from, to, err)
	}
	return out, nil
}

// TryConvert is Convert that reports failure instead of returning an error.
// Provider and converter panics are reported as failure too.
func (r *Registry) TryConvert(from, to reflect.Type, v any) (out any, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			r.logger().Debugw("Converter panicked",
				logger.FieldFrom, typeName(from),
				logger.FieldTo, typeName(to),
				logger.FieldError, p)
			out, ok = nil, false
		}
	}()
	out, err := r.Convert(from, to, v)
	if err != nil {
		return nil, false
	}
	return out, true
}

// ConverterFor resolves the converter for a type pair without applying it.
func (r *Registry) ConverterFor(from, to reflect.Type) (Converter, error) {
	conv, ok := r.resolve(from, to, 0)
	if !ok {
		return nil, newConversionError(from, to, nil)
	}
	return conv, nil
}

// CanConvert reports whether values of from can be converted to to.
func (r *Registry) CanConvert(from, to reflect.Type) bool {
	if from == nil || to == nil {
		return false
	}
	if from.AssignableTo(to) {
		return true
	}
	_, ok := r.resolve(from, to, 0)
	return ok
}

func (r *Registry) resolve(from, to reflect.Type, depth int) (conv Converter, ok bool) {
	if from == nil || to == nil {
		return nil, false
	}
	targets := r.targets(from)
	if c, found := targets.Load(to); found {
		return c.(Converter), true
	}
	if depth > maxResolveDepth {
		return nil, false
	}

	lookup := func(f, t reflect.Type) (Converter, bool) {
		if f != nil && t != nil && f.AssignableTo(t) {
			return identity, true
		}
		return r.resolve(f, t, depth+1)
	}

	r.mu.RLock()
	providers := make([]Provider, 0, len(r.custom)+len(r.providers))
	providers = append(providers, r.custom...)
	providers = append(providers, r.providers...)
	r.mu.RUnlock()

	for _, p := range providers {
		c, found := safeProvide(p, from, to, lookup)
		if !found {
			continue
		}
		actual, loaded := targets.LoadOrStore(to, c)
		if !loaded {
			r.logger().Debugw("Created converter",
				logger.FieldFrom, from.String(),
				logger.FieldTo, to.String(),
				logger.FieldProvider, p.Name())
		}
		return actual.(Converter), true
	}
	return nil, false
}

func safeProvide(p Provider, from, to reflect.Type, lookup Lookup) (c Converter, ok bool) {
	defer func() {
		if recover() != nil {
			c, ok = nil, false
		}
	}()
	return p.Converter(from, to, lookup)
}

func (r *Registry) logger() *zap.SugaredLogger {
	if r.log == nil {
		return logger.ComponentLogger("convert")
	}
	return r.log
}

func identity(v any) (any, error) { return v, nil }

// isNil reports whether v is nil or a typed nil of a reference-like type.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	if host.IsReferenceLike(rv.Type()) {
		return rv.IsNil()
	}
	return false
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// Default is the process-wide registry used by the package-level helpers.
var Default = New()

// Convert converts with the Default registry.
func Convert(from, to reflect.Type, v any) (any, error) {
	return Default.Convert(from, to, v)
}

// TryConvert converts with the Default registry.
func TryConvert(from, to reflect.Type, v any) (any, bool) {
	return Default.TryConvert(from, to, v)
}

// To converts v to T with r.
func To[T any](r *Registry, v any) (T, error) {
	var zero T
	out, err := r.Convert(nil, reflect.TypeFor[T](), v)
	if err != nil {
		return zero, err
	}
	if out == nil {
		return zero, nil
	}
	t, ok := out.(T)
	if !ok {
		return zero, newConversionError(reflect.TypeOf(v), reflect.TypeFor[T](), errors.Newf("converter returned %T", out))
	}
	return t, nil
}
