package convert

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/typeshape/errors"
	"github.com/teranos/typeshape/host"
	"golang.org/x/sync/errgroup"
)

type Color int

const (
	Red Color = iota
	Green
	Blue
)

func (c Color) String() string {
	switch c {
	case Red:
		return "Red"
	case Green:
		return "Green"
	case Blue:
		return "Blue"
	default:
		return "Color(" + strconv.Itoa(int(c)) + ")"
	}
}

type Label string

// Suit is a string-backed enum.
type Suit string

const (
	Hearts Suit = "Hearts"
	Spades Suit = "Spades"
)

func (s Suit) String() string { return string(s) }

// Mode has names differing only by case.
type Mode string

func (m Mode) String() string { return string(m) }

type level int

func (l level) MarshalText() ([]byte, error) {
	return []byte(strings.Repeat("*", int(l))), nil
}

func (l *level) UnmarshalText(text []byte) error {
	if strings.Trim(string(text), "*") != "" {
		return fmt.Errorf("invalid level %q", text)
	}
	*l = level(len(text))
	return nil
}

type celsius float64
type fahrenheit float64

type opaqueA struct{ N int }
type opaqueB struct{ N int }

var (
	stringType = reflect.TypeFor[string]()
	intType    = reflect.TypeFor[int]()
	colorType  = reflect.TypeFor[Color]()
)

func newRegistry() *Registry {
	r := New()
	RegisterEnum(r, Red, Green, Blue)
	return r
}

func TestEnumRoundTrip(t *testing.T) {
	r := newRegistry()

	out, err := r.Convert(stringType, colorType, "Red")
	require.NoError(t, err)
	assert.Equal(t, Red, out)

	back, err := r.Convert(colorType, stringType, out)
	require.NoError(t, err)
	assert.Equal(t, "Red", back)

	out, err = r.Convert(stringType, colorType, "blue")
	require.NoError(t, err)
	assert.Equal(t, Blue, out)

	label, err := r.Convert(colorType, reflect.TypeFor[Label](), Green)
	require.NoError(t, err)
	assert.Equal(t, Label("Green"), label)

	assert.Equal(t, []string{"Red", "Green", "Blue"}, r.EnumNames(colorType))
}

func TestStringBackedEnum(t *testing.T) {
	r := newRegistry()
	RegisterEnum(r, Hearts, Spades)
	suitType := reflect.TypeFor[Suit]()

	out, err := r.Convert(stringType, suitType, "hearts")
	require.NoError(t, err)
	assert.Equal(t, Hearts, out)

	back, err := r.Convert(suitType, stringType, Spades)
	require.NoError(t, err)
	assert.Equal(t, "Spades", back)

	_, err = r.Convert(stringType, suitType, "Purple")
	require.Error(t, err)
	assert.True(t, errors.IsConversionError(err))
	assert.Contains(t, errors.FlattenHints(err), "Hearts, Spades")

	_, err = r.Convert(suitType, stringType, Suit("Clubs"))
	require.Error(t, err)
}

func TestEnumFoldedLookupFollowsRegistrationOrder(t *testing.T) {
	r := New()
	RegisterEnum(r, Mode("on"), Mode("ON"), Mode("off"))
	modeType := reflect.TypeFor[Mode]()

	for range 20 {
		out, err := r.Convert(stringType, modeType, "On")
		require.NoError(t, err)
		assert.Equal(t, Mode("on"), out)
	}
	out, err := r.Convert(stringType, modeType, "ON")
	require.NoError(t, err)
	assert.Equal(t, Mode("ON"), out)
}

func TestEnumUnknownName(t *testing.T) {
	r := newRegistry()

	_, err := r.Convert(stringType, colorType, "Purple")
	require.Error(t, err)
	assert.True(t, errors.IsConversionError(err))
	assert.Contains(t, errors.FlattenHints(err), "Red, Green, Blue")

	_, ok := r.TryConvert(stringType, colorType, "Purple")
	assert.False(t, ok)
}

func TestTextMarshalers(t *testing.T) {
	r := New()

	out, err := r.Convert(stringType, reflect.TypeFor[level](), "***")
	require.NoError(t, err)
	assert.Equal(t, level(3), out)

	text, err := r.Convert(reflect.TypeFor[level](), stringType, level(2))
	require.NoError(t, err)
	assert.Equal(t, "**", text)
}

func TestAssignableAndNil(t *testing.T) {
	r := New()

	out, err := r.Convert(reflect.TypeFor[Label](), reflect.TypeFor[Label](), Label("x"))
	require.NoError(t, err)
	assert.Equal(t, Label("x"), out)

	out, err = r.Convert(reflect.TypeFor[*int](), intType, (*int)(nil))
	require.NoError(t, err)
	assert.Equal(t, 0, out)

	out, err = r.Convert(nil, reflect.TypeFor[[]string](), nil)
	require.NoError(t, err)
	assert.Nil(t, out)

	out, err = r.Convert(nil, reflect.TypeFor[any](), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, out)
}

func TestDirectRegistration(t *testing.T) {
	r := New()
	calls := 0
	Register(r, func(a opaqueA) (opaqueB, error) {
		calls++
		return opaqueB{N: a.N * 2}, nil
	})

	in := opaqueA{N: 21}
	first, err := r.Convert(reflect.TypeFor[opaqueA](), reflect.TypeFor[opaqueB](), in)
	require.NoError(t, err)
	second, err := r.Convert(reflect.TypeFor[opaqueA](), reflect.TypeFor[opaqueB](), in)
	require.NoError(t, err)

	assert.Equal(t, opaqueB{N: 42}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, opaqueA{N: 21}, in)
	assert.Equal(t, 2, calls)

	list, err := To[[]opaqueB](r, []opaqueA{{N: 1}, {N: 2}})
	require.NoError(t, err)
	assert.Equal(t, []opaqueB{{N: 2}, {N: 4}}, list)
}

func TestCollectionsAreElementWise(t *testing.T) {
	r := New()
	in := []string{"1", "22", "333"}

	out, err := r.Convert(reflect.TypeFor[[]string](), reflect.TypeFor[[]int](), in)
	require.NoError(t, err)
	ints := out.([]int)
	require.Len(t, ints, len(in))
	for i, s := range in {
		want, err := r.Convert(stringType, intType, s)
		require.NoError(t, err)
		assert.Equal(t, want, ints[i])
	}
	assert.Equal(t, []string{"1", "22", "333"}, in)

	arr, err := To[[4]int](r, [3]string{"4", "5", "6"})
	require.NoError(t, err)
	assert.Equal(t, [4]int{4, 5, 6, 0}, arr)

	_, err = To[[2]int](r, []string{"1", "2", "3"})
	require.Error(t, err)

	colors, err := To[[]Color](newRegistry(), host.List[string]{"Red", "Blue"})
	require.NoError(t, err)
	assert.Equal(t, []Color{Red, Blue}, colors)

	m, err := To[map[Label]float64](r, map[string]string{"a": "1.5", "b": "2"})
	require.NoError(t, err)
	assert.Equal(t, map[Label]float64{"a": 1.5, "b": 2}, m)

	var nilSlice []string
	empty, err := r.Convert(reflect.TypeFor[[]string](), reflect.TypeFor[[]int](), nilSlice)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestNullableProvider(t *testing.T) {
	r := New()
	five := 5
	word := "42"

	out, err := To[[]int](r, []*int{nil, &five})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 5}, out)

	n, err := To[int](r, &word)
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	p, err := To[*int](r, "7")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 7, *p)

	pp, err := r.Convert(reflect.TypeFor[*string](), reflect.TypeFor[*int](), &word)
	require.NoError(t, err)
	assert.Equal(t, 42, *pp.(*int))

	some, err := To[int](r, host.Some("9"))
	require.NoError(t, err)
	assert.Equal(t, 9, some)

	none, err := To[int](r, host.None[string]())
	require.NoError(t, err)
	assert.Equal(t, 0, none)

	dynamic, err := To[[]int](r, []any{1, "2", nil, 4.0})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 0, 4}, dynamic)
}

func TestScalars(t *testing.T) {
	r := New()

	tests := []struct {
		name string
		in   any
		to   reflect.Type
		want any
	}{
		{"string to bool", "true", reflect.TypeFor[bool](), true},
		{"int to string", 12, stringType, "12"},
		{"named float", celsius(21.5), reflect.TypeFor[fahrenheit](), fahrenheit(21.5)},
		{"string to uint8", "200", reflect.TypeFor[uint8](), uint8(200)},
		{"string to named string", "x", reflect.TypeFor[Label](), Label("x")},
		{"enum to int", Blue, intType, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Convert(nil, tt.to, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}

	_, err := r.Convert(intType, reflect.TypeFor[int8](), 300)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overflows")
}

func TestScalarsCanBeDisabled(t *testing.T) {
	r := New(WithScalars(false))
	assert.Equal(t, []string{"enum", "collection", "nullable"}, r.Providers())

	_, ok := r.TryConvert(stringType, intType, "1")
	assert.False(t, ok)
}

func TestUnsupportedConversion(t *testing.T) {
	r := New()

	_, err := r.Convert(reflect.TypeFor[opaqueA](), reflect.TypeFor[opaqueB](), opaqueA{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConversion))

	var ce *ConversionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, reflect.TypeFor[opaqueA](), ce.From)
	assert.Equal(t, reflect.TypeFor[opaqueB](), ce.To)
	assert.Contains(t, err.Error(), "convert.opaqueA")
	assert.Contains(t, err.Error(), "convert.opaqueB")

	assert.False(t, r.CanConvert(reflect.TypeFor[opaqueA](), reflect.TypeFor[opaqueB]()))
	assert.True(t, r.CanConvert(reflect.TypeFor[[]string](), reflect.TypeFor[[]int]()))
}

func TestTryConvertRecoversPanics(t *testing.T) {
	r := New()
	Register(r, func(opaqueA) (opaqueB, error) {
		panic("boom")
	})

	_, ok := r.TryConvert(reflect.TypeFor[opaqueA](), reflect.TypeFor[opaqueB](), opaqueA{})
	assert.False(t, ok)
}

type upperProvider struct{}

func (upperProvider) Name() string { return "upper" }

func (upperProvider) Converter(from, to reflect.Type, _ Lookup) (Converter, bool) {
	if from != stringType || to != reflect.TypeFor[Label]() {
		return nil, false
	}
	return func(v any) (any, error) {
		return Label(strings.ToUpper(v.(string))), nil
	}, true
}

func TestCustomProvidersComeFirst(t *testing.T) {
	r := New()
	r.AddProvider(upperProvider{})
	assert.Equal(t, "upper", r.Providers()[0])

	out, err := To[Label](r, "quiet")
	require.NoError(t, err)
	assert.Equal(t, Label("QUIET"), out)
}

func TestConcurrentResolution(t *testing.T) {
	r := newRegistry()
	var g errgroup.Group
	results := make([][]Color, 32)

	for i := range results {
		g.Go(func() error {
			out, err := To[[]Color](r, []string{"Red", "Green", "Blue"})
			results[i] = out
			return err
		})
	}
	require.NoError(t, g.Wait())
	for _, out := range results {
		assert.Equal(t, []Color{Red, Green, Blue}, out)
	}
}

func TestPackageLevelHelpers(t *testing.T) {
	out, err := Convert(stringType, intType, "3")
	require.NoError(t, err)
	assert.Equal(t, 3, out)

	_, ok := TryConvert(reflect.TypeFor[opaqueA](), reflect.TypeFor[opaqueB](), opaqueA{})
	assert.False(t, ok)
}
