package nullability

import (
	"reflect"

	"github.com/teranos/typeshape/errors"
	"github.com/teranos/typeshape/host"
	"github.com/teranos/typeshape/logger"
	"github.com/teranos/typeshape/shape"
	"go.uber.org/zap"
)

// Reader resolves nullability contexts and walk-aligned flags. It performs
// no caching; callers cache the shapes built from its output.
type Reader struct {
	source         AnnotationSource
	defaultContext shape.Nullability
	log            *zap.SugaredLogger
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithDefaultContext sets the context used when no package, type or member
// metadata exists.
func WithDefaultContext(n shape.Nullability) ReaderOption {
	return func(r *Reader) {
		r.defaultContext = n
	}
}

// WithLogger overrides the reader's logger.
func WithLogger(log *zap.SugaredLogger) ReaderOption {
	return func(r *Reader) {
		if log != nil {
			r.log = log
		}
	}
}

// NewReader creates a reader over source. A nil source reads struct tags only.
func NewReader(source AnnotationSource, opts ...ReaderOption) *Reader {
	if source == nil {
		source = NewAnnotations()
	}
	r := &Reader{
		source: source,
		log:    logger.ComponentLogger("nullability"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadAnnotationFile creates an Annotations store from a TOML annotation file.
func LoadAnnotationFile(path string) (*Annotations, error) {
	a := NewAnnotations()
	if err := a.LoadFile(path); err != nil {
		return nil, err
	}
	return a, nil
}

// ContextFor resolves the ambient nullability of m: package, then each type
// of the declaring chain from outer to inner, then the member itself. Each
// level overrides the previous one when it is known. Malformed metadata at
// any level yields Unknown.
func (r *Reader) ContextFor(m Member) shape.Nullability {
	ctx, err := r.contextFor(m)
	if err != nil {
		r.log.Debugw("Malformed nullability context",
			logger.FieldMember, m.String(),
			logger.FieldError, err)
		return shape.Unknown
	}
	return ctx
}

func (r *Reader) contextFor(m Member) (shape.Nullability, error) {
	ctx := r.defaultContext

	pkg, err := r.source.PackageContext(packageOf(m.Declaring))
	if err != nil {
		return shape.Unknown, err
	}
	ctx = pkg.Or(ctx)

	for _, t := range declaringChain(m) {
		n, err := r.source.TypeContext(t)
		if err != nil {
			return shape.Unknown, err
		}
		ctx = n.Or(ctx)
	}

	if m.Kind == MemberType {
		return ctx, nil
	}
	n, err := r.source.MemberContext(m)
	if err != nil {
		return shape.Unknown, err
	}
	return n.Or(ctx), nil
}

// FlagsFor returns one flag per position of host.Walk(m.Type). Explicit
// member flags win; positions without one take the resolved context. A
// single flag applies to every position. Malformed metadata, including a
// flag list longer than the walk, yields an all-Unknown sequence.
func (r *Reader) FlagsFor(m Member) []shape.Nullability {
	walk := host.Walk(m.Type)
	out := make([]shape.Nullability, len(walk))

	flags, err := r.source.MemberFlags(m)
	if err == nil && len(flags) > len(walk) {
		err = errors.Newf("member %s has %d flags for %d positions", m, len(flags), len(walk))
	}
	if err != nil {
		r.log.Debugw("Malformed nullability flags",
			logger.FieldMember, m.String(),
			logger.FieldError, err)
		return out
	}

	ctx, err := r.contextFor(m)
	if err != nil {
		r.log.Debugw("Malformed nullability context",
			logger.FieldMember, m.String(),
			logger.FieldError, err)
		return out
	}

	for i := range out {
		var explicit shape.Nullability
		switch {
		case len(flags) == 1:
			explicit = flags[0]
		case i < len(flags):
			explicit = flags[i]
		}
		out[i] = explicit.Or(ctx)
	}
	return out
}

// TypeFlags is FlagsFor on a bare type.
func (r *Reader) TypeFlags(t reflect.Type) []shape.Nullability {
	return r.FlagsFor(TypeMember(t))
}
