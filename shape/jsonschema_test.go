package shape

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type account struct{}

func TestJSONSchema(t *testing.T) {
	t.Run("non-null list of nullable strings", func(t *testing.T) {
		s := NewNonNull(NewList(reflect.TypeOf([]string(nil)), NewNamed(stringType, true), false))
		js := JSONSchema(s, nil)
		assert.Equal(t, "array", js.Type)
		require.NotNil(t, js.Items)
		require.Len(t, js.Items.OneOf, 2)
		assert.Equal(t, "string", js.Items.OneOf[0].Type)
		assert.Equal(t, "null", js.Items.OneOf[1].Type)
	})

	t.Run("struct becomes ref", func(t *testing.T) {
		s := NewNonNull(NewNamed(reflect.TypeOf(account{}), false))
		js := JSONSchema(s, func(t reflect.Type) string { return "Account" })
		assert.Equal(t, "#/$defs/Account", js.Ref)
	})

	t.Run("map uses value argument", func(t *testing.T) {
		s := NewNonNull(NewNamed(reflect.TypeOf(map[string]int{}), false,
			NewNonNull(NewNamed(stringType, false)), NewNonNull(NewNamed(intType, false))))
		js := JSONSchema(s, nil)
		assert.Equal(t, "object", js.Type)
		require.NotNil(t, js.AdditionalProperties)
		assert.Equal(t, "integer", js.AdditionalProperties.Type)
	})

	t.Run("time is a date-time string", func(t *testing.T) {
		js := JSONSchema(NewNonNull(NewNamed(reflect.TypeOf(time.Time{}), false)), nil)
		assert.Equal(t, "string", js.Type)
		assert.Equal(t, "date-time", js.Format)
	})
}
