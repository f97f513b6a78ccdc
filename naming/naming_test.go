package naming

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/typeshape/convention"
	"github.com/teranos/typeshape/errors"
	"github.com/teranos/typeshape/host"
)

type User struct {
	ID        string
	UserName  string `json:"login,omitempty"`
	Secret    string `json:"-"`
	URLPath   string
	CreatedAt time.Time `json:",omitempty"`
}

type Page[T any] struct {
	Items []T
}

type Pair[K, V any] struct {
	Key   K
	Value V
}

type OrderType struct{}

type LoadAsync struct{}

type Type struct{}

type Scalar struct{}

func (Scalar) SchemaTypeName() string { return "Decimal" }

type Color int

func (c Color) String() string {
	return [...]string{"Red", "DarkGreen", "HTTPBlue"}[c]
}

type Level string

func (l Level) MarshalText() ([]byte, error) { return []byte("veryHigh"), nil }

func newDefault(t *testing.T) *Default {
	t.Helper()
	conv, err := NewDefault(nil)
	require.NoError(t, err)
	return conv.(*Default)
}

func TestCasing(t *testing.T) {
	tests := []struct {
		in, snake, camel, pascal string
	}{
		{"UserName", "user_name", "userName", "UserName"},
		{"ID", "id", "id", "ID"},
		{"UserID", "user_id", "userID", "UserID"},
		{"URLPath", "url_path", "urlPath", "URLPath"},
		{"HTTPSConnection", "https_connection", "httpsConnection", "HTTPSConnection"},
		{"name", "name", "name", "Name"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.snake, ToSnakeCase(tt.in))
			assert.Equal(t, tt.camel, ToCamelCase(tt.in))
			assert.Equal(t, tt.pascal, ToPascalCase(tt.in))
		})
	}

	assert.Equal(t, "DARK_GREEN", ToScreamingSnakeCase("DarkGreen"))
	assert.Equal(t, "UserName", ToPascalCase("user_name"))
	assert.Equal(t, "UserName", ToPascalCase("user-name"))
	assert.Equal(t, "userName", ToCamelCase("user_name"))
	assert.Equal(t, "", ToCamelCase(""))
}

func TestTypeName(t *testing.T) {
	d := newDefault(t)

	tests := []struct {
		typ  reflect.Type
		want string
	}{
		{reflect.TypeFor[string](), "String"},
		{reflect.TypeFor[*int64](), "Long"},
		{reflect.TypeFor[float64](), "Float"},
		{reflect.TypeFor[time.Time](), "DateTime"},
		{reflect.TypeFor[[]byte](), "Base64String"},
		{reflect.TypeFor[User](), "User"},
		{reflect.TypeFor[*User](), "User"},
		{reflect.TypeFor[Page[User]](), "PageOfUser"},
		{reflect.TypeFor[Page[*User]](), "PageOfUser"},
		{reflect.TypeFor[Page[[]User]](), "PageOfListOfUser"},
		{reflect.TypeFor[Pair[string, int]](), "PairOfStringAndInt"},
		{reflect.TypeFor[Page[Page[User]]](), "PageOfPageOfUser"},
		{reflect.TypeFor[OrderType](), "Order"},
		{reflect.TypeFor[LoadAsync](), "Load"},
		{reflect.TypeFor[Type](), "Type"},
		{reflect.TypeFor[Scalar](), "Decimal"},
		{reflect.TypeFor[[]User](), "ListOfUser"},
		{reflect.TypeFor[map[string]int](), "MapOfStringToInt"},
		{reflect.TypeFor[any](), "Any"},
		{reflect.TypeFor[struct{ A int }](), "Object"},
		{reflect.TypeFor[complex64](), "Complex64"},
		{nil, "Any"},
	}
	for _, tt := range tests {
		name := "nil"
		if tt.typ != nil {
			name = tt.typ.String()
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.TypeName(tt.typ))
		})
	}
}

func TestSchemaMarkerTypeName(t *testing.T) {
	d := newDefault(t)
	assert.Equal(t, "[Decimal]", d.TypeName(reflect.TypeFor[host.ListType[Scalar]]()))
}

func TestFieldName(t *testing.T) {
	d := newDefault(t)
	owner := reflect.TypeFor[User]()

	want := map[string]string{
		"ID":        "id",
		"UserName":  "login",
		"Secret":    "",
		"URLPath":   "urlPath",
		"CreatedAt": "createdAt",
	}
	for i := 0; i < owner.NumField(); i++ {
		f := owner.Field(i)
		assert.Equal(t, want[f.Name], d.FieldName(owner, f), f.Name)
	}
}

func TestEnumValueName(t *testing.T) {
	d := newDefault(t)
	assert.Equal(t, "RED", d.EnumValueName(Color(0)))
	assert.Equal(t, "DARK_GREEN", d.EnumValueName(Color(1)))
	assert.Equal(t, "HTTP_BLUE", d.EnumValueName(Color(2)))
	assert.Equal(t, "VERY_HIGH", d.EnumValueName(Level("x")))
	assert.Equal(t, "42", d.EnumValueName(42))
}

func TestGetFallsBackToDefault(t *testing.T) {
	ctx := convention.NewContext(nil)
	n, err := Get(ctx, "")
	require.NoError(t, err)
	assert.IsType(t, &Default{}, n)
	assert.True(t, n.IsInitialized())

	again, err := Get(ctx, "")
	require.NoError(t, err)
	assert.Same(t, n, again)
}

func TestOverridesMergeIntoDefault(t *testing.T) {
	userType := reflect.TypeFor[User]()
	r := convention.NewRegistry()
	overrides := NewOverrides(
		map[reflect.Type]string{userType: "Account"},
		map[reflect.Type]map[string]string{userType: {"URLPath": "href"}},
	)
	convention.Register[Conventions](r, "", NewDefault)
	convention.Register[Conventions](r, "", overrides)

	n, err := Get(convention.NewContext(r), "")
	require.NoError(t, err)
	assert.Equal(t, "Account", n.TypeName(userType))
	assert.Equal(t, "href", n.FieldName(userType, userType.Field(3)))
	assert.Equal(t, "id", n.FieldName(userType, userType.Field(0)))

	// a second build gets its own extension instance
	other, err := Get(convention.NewContext(r), "")
	require.NoError(t, err)
	assert.NotSame(t, n, other)
	assert.Equal(t, "Account", other.TypeName(userType))

	// the admin scope is untouched
	admin, err := Get(convention.NewContext(r), "admin")
	require.NoError(t, err)
	assert.Equal(t, "User", admin.TypeName(userType))
}

type fixedNames struct {
	convention.Base
}

func (*fixedNames) TypeName(reflect.Type) string                       { return "T" }
func (*fixedNames) FieldName(reflect.Type, reflect.StructField) string { return "f" }
func (*fixedNames) EnumValueName(any) string                           { return "V" }

func TestOverridesRequireOverridableOwner(t *testing.T) {
	r := convention.NewRegistry()
	convention.Register[Conventions](r, "", func(*convention.Context) (convention.Convention, error) {
		return &fixedNames{}, nil
	})
	convention.Register[Conventions](r, "", NewOverrides(nil, nil))

	_, err := Get(convention.NewContext(r), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not accept overrides")
	assert.False(t, errors.Is(err, errors.ErrConventionConflict))
}
