// Package catalog is the sample type catalog shapectl inspects: an order
// domain declared with marker wrappers, pointers, collections and tags.
package catalog

import (
	"reflect"
	"sort"
	"strconv"
	"time"

	"github.com/teranos/typeshape/convert"
	"github.com/teranos/typeshape/host"
)

// Status is an order status enum.
type Status int

const (
	Pending Status = iota
	Shipped
	Delivered
	OnHold
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Shipped:
		return "Shipped"
	case Delivered:
		return "Delivered"
	case OnHold:
		return "OnHold"
	default:
		return "Status(" + strconv.Itoa(int(s)) + ")"
	}
}

// Statuses lists every Status value.
var Statuses = []Status{Pending, Shipped, Delivered, OnHold}

// Money is an existing schema scalar.
type Money struct{}

func (Money) SchemaTypeName() string { return "Money" }

// Customer places orders.
type Customer struct {
	Name  string
	Email host.Optional[string]
	VIP   bool `json:"vip"`
}

// Line is one order line.
type Line struct {
	SKU      string
	Quantity int
	Price    float64
}

// Order is the catalog's root object. Reference-like members are non-null
// unless tagged otherwise.
type Order struct {
	_        struct{} `nullctx:"no"`
	ID       string
	Lines    []Line
	Notes    []string `nullable:"yes"`
	Customer *Customer
	Status   Status
	Placed   time.Time         `json:"placedAt"`
	Tags     map[string]string `nullctx:"yes"`
	Internal string            `json:"-"`
}

// Page is a generic result page.
type Page[T any] struct {
	Items []T
	Next  *string `json:"nextCursor"`
}

// TypeArguments implements host.Generic.
func (Page[T]) TypeArguments() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[T]()}
}

// Entry is a named catalog type.
type Entry struct {
	Name string
	Type reflect.Type
}

// Types returns the catalog of declarations, in display order.
func Types() []Entry {
	return []Entry{
		{"[3]int", reflect.TypeFor[[3]int]()},
		{"[]string", reflect.TypeFor[[]string]()},
		{"*[]*string", reflect.TypeFor[*[]*string]()},
		{"Future[Optional[int]]", reflect.TypeFor[host.Future[host.Optional[int]]]()},
		{"List[NonNull[string]]", reflect.TypeFor[host.List[host.NonNull[string]]]()},
		{"NonNull[[]Line]", reflect.TypeFor[host.NonNull[[]Line]]()},
		{"Native[[]byte]", reflect.TypeFor[host.Native[[]byte]]()},
		{"map[string][]int", reflect.TypeFor[map[string][]int]()},
		{"<-chan Order", reflect.TypeFor[<-chan Order]()},
		{"iter.Seq[Line]", reflect.TypeFor[func(func(Line) bool)]()},
		{"Page[Order]", reflect.TypeFor[Page[Order]]()},
		{"ListType[NonNullType[Money]]", reflect.TypeFor[host.ListType[host.NonNullType[Money]]]()},
		{"Status", reflect.TypeFor[Status]()},
		{"[]Future[int]", reflect.TypeFor[[]host.Future[int]]()},
		{"[][][]int", reflect.TypeFor[[][][]int]()},
	}
}

// Lookup finds a catalog type by name.
func Lookup(name string) (reflect.Type, bool) {
	for _, e := range Types() {
		if e.Name == name {
			return e.Type, true
		}
	}
	for _, e := range Structs() {
		if e.Name == name {
			return e.Type, true
		}
	}
	return nil, false
}

// Structs returns the catalog's object types sorted by name.
func Structs() []Entry {
	out := []Entry{
		{"Customer", reflect.TypeFor[Customer]()},
		{"Line", reflect.TypeFor[Line]()},
		{"Order", reflect.TypeFor[Order]()},
		{"Page[Order]", reflect.TypeFor[Page[Order]]()},
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RegisterEnums registers the catalog enums with r.
func RegisterEnums(r *convert.Registry) {
	convert.RegisterEnum(r, Statuses...)
}
