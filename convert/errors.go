package convert

import (
	"fmt"
	"reflect"

	"github.com/teranos/typeshape/errors"
)

// ConversionError reports that no converter exists for a type pair, or
// that applying one failed.
type ConversionError struct {
	From  reflect.Type
	To    reflect.Type
	Cause error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("cannot convert %s to %s", typeName(e.From), typeName(e.To))
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying failure, if any.
func (e *ConversionError) Unwrap() error { return e.Cause }

func newConversionError(from, to reflect.Type, cause error) error {
	return errors.Mark(&ConversionError{From: from, To: to, Cause: cause}, errors.ErrConversion)
}
