// Package inspector is the facade schema builders use to turn Go types and
// members into shapes. It caches type shapes, applies nullability metadata
// to members and reads naming and inspection policies from conventions.
package inspector

import (
	"reflect"
	"sync"

	"github.com/teranos/typeshape/convention"
	"github.com/teranos/typeshape/decompose"
	"github.com/teranos/typeshape/logger"
	"github.com/teranos/typeshape/nullability"
	"github.com/teranos/typeshape/shape"
	"go.uber.org/zap"
)

// Inspector resolves shapes. It is safe for concurrent use.
type Inspector struct {
	decomposer  *decompose.Decomposer
	conventions *convention.Context
	scope       string
	log         *zap.SugaredLogger

	// shapes caches reflect.Type -> shape.Shape. Concurrent misses may
	// compute the same shape twice; the first stored one wins.
	shapes sync.Map

	readerOnce sync.Once
	reader     *nullability.Reader
	readerErr  error
	annotation nullability.AnnotationSource
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithDecomposer replaces the default decomposer.
func WithDecomposer(d *decompose.Decomposer) Option {
	return func(i *Inspector) {
		if d != nil {
			i.decomposer = d
		}
	}
}

// WithReader sets the nullability reader. Without one, the inspector
// builds a reader over its annotation source using the inspection
// policy's default context.
func WithReader(r *nullability.Reader) Option {
	return func(i *Inspector) {
		i.reader = r
	}
}

// WithAnnotations sets the annotation source of the built-in reader.
func WithAnnotations(source nullability.AnnotationSource) Option {
	return func(i *Inspector) {
		i.annotation = source
	}
}

// WithConventions resolves naming and inspection policies from ctx in scope.
func WithConventions(ctx *convention.Context, scope string) Option {
	return func(i *Inspector) {
		if ctx != nil {
			i.conventions = ctx
		}
		i.scope = scope
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(i *Inspector) {
		if log != nil {
			i.log = log
		}
	}
}

// New creates an inspector.
func New(opts ...Option) *Inspector {
	i := &Inspector{decomposer: decompose.New()}
	for _, opt := range opts {
		opt(i)
	}
	if i.log == nil {
		i.log = logger.ComponentLogger("inspector")
	}
	if i.conventions == nil {
		i.conventions = convention.NewContext(nil, convention.WithLogger(i.log))
	}
	i.decomposer = i.decomposer.WithLogger(i.log.Named("decompose"))
	return i
}

// Conventions returns the convention context the inspector resolves from.
func (i *Inspector) Conventions() *convention.Context { return i.conventions }

// Scope returns the convention scope.
func (i *Inspector) Scope() string { return i.scope }

// GetType returns the shape of t. Types no strategy can decompose get an
// opaque named shape; GetType never fails.
func (i *Inspector) GetType(t reflect.Type) shape.Shape {
	if t == nil {
		return decompose.Opaque(nil)
	}
	if s, ok := i.shapes.Load(t); ok {
		return s.(shape.Shape)
	}
	s, _ := i.shapes.LoadOrStore(t, i.build(t))
	return s.(shape.Shape)
}

func (i *Inspector) build(t reflect.Type) shape.Shape {
	stack, err := i.decomposer.Explain(t)
	if err == nil {
		var s shape.Shape
		if s, err = decompose.Blueprint(stack); err == nil {
			i.log.Debugw("Built shape",
				logger.FieldType, t.String(),
				logger.FieldStrategy, strategyOf(stack),
				logger.FieldShape, s.String(),
				logger.FieldDepth, shape.Depth(s))
			return s
		}
	}
	i.log.Debugw("Using opaque shape",
		logger.FieldType, t.String(),
		logger.FieldReason, err.Error())
	return decompose.Opaque(t)
}

func strategyOf(stack decompose.Stack) string {
	if len(stack) > 0 && stack[0].Schema {
		return "schema"
	}
	return "host"
}

// GetTypeWith returns the shape of t with its logical layers rewritten by
// overrides. The cached shape is not modified.
func (i *Inspector) GetTypeWith(t reflect.Type, overrides []shape.Nullability) (shape.Shape, error) {
	return shape.Rewrite(i.GetType(t), overrides)
}

// ChangeNullability rewrites the logical layers of s.
func (i *Inspector) ChangeNullability(s shape.Shape, vector []shape.Nullability) (shape.Shape, error) {
	return shape.Rewrite(s, vector)
}

// CollectNullability returns the nullability of each logical layer of s,
// outer to inner.
func (i *Inspector) CollectNullability(s shape.Shape) []bool {
	return shape.Collect(s)
}

// CachedTypes returns the number of cached type shapes.
func (i *Inspector) CachedTypes() int {
	n := 0
	i.shapes.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// nullabilityReader returns the injected reader or builds one once.
func (i *Inspector) nullabilityReader() (*nullability.Reader, error) {
	i.readerOnce.Do(func() {
		if i.reader != nil {
			return
		}
		policy, err := GetPolicy(i.conventions, i.scope)
		if err != nil {
			i.readerErr = err
			return
		}
		i.reader = nullability.NewReader(i.annotation,
			nullability.WithDefaultContext(policy.DefaultContext()),
			nullability.WithLogger(i.log.Named("nullability")))
	})
	return i.reader, i.readerErr
}
