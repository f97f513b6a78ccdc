package decompose

import (
	"reflect"

	"github.com/teranos/typeshape/errors"
	"github.com/teranos/typeshape/logger"
	"go.uber.org/zap"
)

// Decomposer runs the host strategy and delegates schema-shaped types to
// the schema strategy.
type Decomposer struct {
	Host   HostStrategy
	Schema SchemaStrategy
	log    *zap.SugaredLogger
}

// New creates a decomposer with the default component caps. It logs
// through the global logger unless WithLogger is used.
func New() *Decomposer {
	return &Decomposer{
		Host:   HostStrategy{MaxComponents: MaxHostComponents},
		Schema: SchemaStrategy{MaxComponents: MaxSchemaComponents},
	}
}

var std = New()

// Decompose decomposes t with the default decomposer.
func Decompose(t reflect.Type) (Stack, bool) {
	return std.Decompose(t)
}

// Decompose returns the component stack of t, or false when no strategy can
// handle it. Callers fall back to an opaque named shape.
func (d *Decomposer) Decompose(t reflect.Type) (Stack, bool) {
	stack, err := d.Explain(t)
	if err != nil {
		d.logger().Debugw("Type not decomposable",
			logger.FieldType, typeName(t),
			logger.FieldReason, err.Error())
		return nil, false
	}
	return stack, true
}

// Explain is Decompose with the rejection reason as an error marked
// errors.ErrUnsupportedShape.
func (d *Decomposer) Explain(t reflect.Type) (stack Stack, err error) {
	defer func() {
		if r := recover(); r != nil {
			stack = nil
			err = errors.NewUnsupportedShapeError("decomposing %s panicked: %v", typeName(t), r)
		}
	}()

	stack, rej := d.Host.decompose(t)
	if rej == nil {
		return stack, nil
	}
	if !rej.delegate {
		return nil, errors.NewUnsupportedShapeError("%s strategy rejected %s: %s", d.Host.Name(), typeName(t), rej.reason)
	}

	stack, rej = d.Schema.decompose(t)
	if rej != nil {
		return nil, errors.NewUnsupportedShapeError("%s strategy rejected %s: %s", d.Schema.Name(), typeName(t), rej.reason)
	}
	return stack, nil
}

// WithLogger returns d logging to log.
func (d *Decomposer) WithLogger(log *zap.SugaredLogger) *Decomposer {
	cp := *d
	cp.log = log
	return &cp
}

func (d *Decomposer) logger() *zap.SugaredLogger {
	if d.log == nil {
		return logger.ComponentLogger("decompose")
	}
	return d.log
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
