package inspector

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/typeshape/convention"
	"github.com/teranos/typeshape/decompose"
	"github.com/teranos/typeshape/errors"
	"github.com/teranos/typeshape/host"
	"github.com/teranos/typeshape/naming"
	"github.com/teranos/typeshape/nullability"
	"github.com/teranos/typeshape/shape"
	"golang.org/x/sync/errgroup"
)

type Address struct {
	City string
}

type Account struct {
	_       struct{} `nullctx:"no"`
	ID      string
	Email   *string
	Tags    []string
	Aliases []string       `nullable:"yes"`
	Friends []*Account     `json:"friends"`
	Meta    map[string]any `nullctx:"yes"`
	Secret  string         `json:"-"`
	hidden  string
	Address
	Count  host.Optional[int]
	Scores [3]int
}

type Plain struct {
	Items []string
}

type Store struct{}

func (Store) Lookup(ids []string, limit *int) []Account { return nil }

func TestGetTypeCachesShapes(t *testing.T) {
	i := New()
	typ := reflect.TypeFor[[]string]()

	first := i.GetType(typ)
	second := i.GetType(typ)
	assert.Same(t, first, second)
	assert.Equal(t, "[string!]", first.String())
	assert.Equal(t, 1, i.CachedTypes())
}

func TestGetTypeFallsBackToOpaque(t *testing.T) {
	i := New()
	s := i.GetType(reflect.TypeFor[[]host.Future[int]]())
	assert.Equal(t, shape.KindNamed, s.Kind())
	assert.True(t, s.IsNullable())

	s = i.GetType(nil)
	assert.Equal(t, shape.KindNamed, s.Kind())
}

func TestArrayScenario(t *testing.T) {
	i := New()
	s := i.GetType(reflect.TypeFor[[3]int]())
	assert.Equal(t, "List(NonNull(Named(int)))", shape.Describe(s))
	assert.Equal(t, []bool{false, false}, i.CollectNullability(s))
}

func TestGetTypeWithOverrides(t *testing.T) {
	i := New()
	typ := reflect.TypeFor[[]string]()

	s, err := i.GetTypeWith(typ, []shape.Nullability{shape.No})
	require.NoError(t, err)
	assert.Equal(t, "[string!]!", s.String())
	assert.Equal(t, "[string!]", i.GetType(typ).String(), "cached shape is unchanged")

	same, err := i.ChangeNullability(i.GetType(typ), nil)
	require.NoError(t, err)
	assert.True(t, shape.Equal(i.GetType(typ), same))

	_, err = i.GetTypeWith(typ, make([]shape.Nullability, shape.MaxRewriteVector+1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidRewrite))
}

func TestFieldShapes(t *testing.T) {
	i := New()
	typ := reflect.TypeFor[Account]()

	tests := []struct {
		field string
		want  string
	}{
		{"ID", "string!"},
		{"Email", "string"},
		{"Tags", "[string!]!"},
		{"Aliases", "[string!]"},
		{"Friends", "[Account]!"},
		{"Meta", "map[string]interface {}"},
		{"City", "string!"},
		{"Count", "int"},
		{"Scores", "[int!]"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			s, err := i.FieldType(typ, tt.field)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.String())
		})
	}

	_, err := i.FieldType(typ, "Missing")
	require.Error(t, err)
}

func TestFields(t *testing.T) {
	i := New()
	fields, err := i.Fields(reflect.TypeFor[*Account]())
	require.NoError(t, err)

	var names []string
	for _, f := range fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"id", "email", "tags", "aliases", "friends", "meta", "city", "count", "scores"}, names)

	city := fields[6]
	assert.Equal(t, "City", city.GoName)
	assert.Equal(t, []int{9, 0}, city.Index)
	assert.Equal(t, "string!", city.Shape.String())

	_, err = i.Fields(reflect.TypeFor[int]())
	require.Error(t, err)
}

func TestMethodShapes(t *testing.T) {
	storeType := reflect.TypeFor[Store]()

	i := New()
	s, err := i.ReturnType(storeType, "Lookup")
	require.NoError(t, err)
	assert.Equal(t, "[Account!]", s.String())

	s, err = i.ParameterType(storeType, "Lookup", 1)
	require.NoError(t, err)
	assert.Equal(t, "int", s.String())

	ret, ok := nullability.ReturnMember(storeType, "Lookup")
	require.True(t, ok)
	ids, ok := nullability.ParameterMember(storeType, "Lookup", 0)
	require.True(t, ok)
	annotations := nullability.NewAnnotations()
	annotations.SetMemberFlags(ret, shape.No)
	annotations.SetMemberContext(ids, shape.No)

	i = New(WithAnnotations(annotations))
	s, err = i.ReturnType(storeType, "Lookup")
	require.NoError(t, err)
	assert.Equal(t, "[Account!]!", s.String())

	s, err = i.ParameterType(storeType, "Lookup", 0)
	require.NoError(t, err)
	assert.Equal(t, "[string!]!", s.String())

	_, err = i.ReturnType(storeType, "Missing")
	require.Error(t, err)
	_, err = i.ParameterType(storeType, "Lookup", 5)
	require.Error(t, err)
}

func TestPolicyDefaultContext(t *testing.T) {
	typ := reflect.TypeFor[Plain]()

	s, err := New().FieldType(typ, "Items")
	require.NoError(t, err)
	assert.Equal(t, "[string!]", s.String())

	r := convention.NewRegistry()
	convention.Register[InspectionPolicy](r, "", PolicyFactory(shape.No))
	i := New(WithConventions(convention.NewContext(r), ""))

	s, err = i.FieldType(typ, "Items")
	require.NoError(t, err)
	assert.Equal(t, "[string!]!", s.String())
}

func TestExplicitReader(t *testing.T) {
	reader := nullability.NewReader(nil, nullability.WithDefaultContext(shape.No))
	s, err := New(WithReader(reader)).FieldType(reflect.TypeFor[Plain](), "Items")
	require.NoError(t, err)
	assert.Equal(t, "[string!]!", s.String())
}

func TestNamingOverridesReachFields(t *testing.T) {
	typ := reflect.TypeFor[Account]()
	r := convention.NewRegistry()
	convention.Register[naming.Conventions](r, "", naming.NewOverrides(
		map[reflect.Type]string{typ: "Member"},
		map[reflect.Type]map[string]string{typ: {"ID": "accountId"}},
	))
	i := New(WithConventions(convention.NewContext(r), ""))

	fields, err := i.Fields(typ)
	require.NoError(t, err)
	assert.Equal(t, "accountId", fields[0].Name)

	name, err := i.TypeName(typ)
	require.NoError(t, err)
	assert.Equal(t, "Member", name)
}

func TestPolicyConflictSurfaces(t *testing.T) {
	r := convention.NewRegistry()
	convention.Register[InspectionPolicy](r, "", NewDefaultPolicy)
	convention.Register[InspectionPolicy](r, "", PolicyFactory(shape.Yes))
	i := New(WithConventions(convention.NewContext(r), ""))

	_, err := i.Fields(reflect.TypeFor[Plain]())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConventionConflict))

	_, err = i.FieldType(reflect.TypeFor[Plain](), "Items")
	require.Error(t, err)
}

func TestObjectSchema(t *testing.T) {
	i := New()
	s, err := i.ObjectSchema(reflect.TypeFor[Account]())
	require.NoError(t, err)

	assert.Equal(t, "object", s.Type)
	assert.Equal(t, "Account", s.Title)
	assert.Equal(t, 9, s.Properties.Len())
	assert.Equal(t, []string{"id", "tags", "friends", "city", "scores"}, s.Required)

	tags, ok := s.Properties.Get("tags")
	require.True(t, ok)
	assert.Equal(t, "array", tags.Type)
}

func TestLayerVector(t *testing.T) {
	stack, ok := decompose.Decompose(reflect.TypeFor[[]map[string]int]())
	require.True(t, ok)

	// walk: []map[string]int, map[string]int, string, int
	flags := []shape.Nullability{shape.No, shape.Yes, shape.No, shape.No}
	assert.Equal(t, []shape.Nullability{shape.No, shape.Yes}, LayerVector(stack, flags))

	stack, ok = decompose.Decompose(reflect.TypeFor[*[]host.NonNull[[]string]]())
	require.True(t, ok)
	assert.Equal(t,
		[]shape.Nullability{shape.Unknown, shape.Unknown, shape.Unknown},
		LayerVector(stack, []shape.Nullability{shape.No, shape.No, shape.No, shape.No, shape.No}))
}

func TestConcurrentGetType(t *testing.T) {
	i := New()
	typ := reflect.TypeFor[[][]int]()

	var g errgroup.Group
	results := make([]shape.Shape, 32)
	for n := range results {
		g.Go(func() error {
			results[n] = i.GetType(typ)
			return nil
		})
	}
	require.NoError(t, g.Wait())
	for _, s := range results {
		assert.Same(t, results[0], s)
	}
}
