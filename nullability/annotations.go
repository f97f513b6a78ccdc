package nullability

import (
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/teranos/typeshape/errors"
	"github.com/teranos/typeshape/shape"
)

// Struct tag names read by Annotations.
const (
	TagFlags   = "nullable"
	TagContext = "nullctx"
)

// AnnotationSource supplies raw nullability metadata. Absent metadata is
// reported as Unknown (or nil flags) with a nil error; malformed metadata is
// reported as an error.
type AnnotationSource interface {
	PackageContext(pkgPath string) (shape.Nullability, error)
	TypeContext(t reflect.Type) (shape.Nullability, error)
	MemberContext(m Member) (shape.Nullability, error)
	MemberFlags(m Member) ([]shape.Nullability, error)
}

// Annotations is the default AnnotationSource. Registrations take precedence
// over struct tags; registrations by name (from annotation files) apply to
// types the program cannot tag itself.
type Annotations struct {
	mu             sync.RWMutex
	packages       map[string]shape.Nullability
	types          map[string]shape.Nullability
	memberContexts map[string]shape.Nullability
	memberFlags    map[string][]shape.Nullability
}

// NewAnnotations creates an empty annotation store.
func NewAnnotations() *Annotations {
	return &Annotations{
		packages:       make(map[string]shape.Nullability),
		types:          make(map[string]shape.Nullability),
		memberContexts: make(map[string]shape.Nullability),
		memberFlags:    make(map[string][]shape.Nullability),
	}
}

// SetPackageContext sets the default nullability for every type declared in pkgPath.
func (a *Annotations) SetPackageContext(pkgPath string, n shape.Nullability) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.packages[pkgPath] = n
}

// SetTypeContext sets the context for members declared by t.
func (a *Annotations) SetTypeContext(t reflect.Type, n shape.Nullability) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.types[typeKey(t)] = n
}

// SetMemberContext sets the context for a single member.
func (a *Annotations) SetMemberContext(m Member, n shape.Nullability) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.memberContexts[m.String()] = n
}

// SetMemberFlags sets positional flags for a member.
func (a *Annotations) SetMemberFlags(m Member, flags ...shape.Nullability) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.memberFlags[m.String()] = append([]shape.Nullability(nil), flags...)
}

// PackageContext implements AnnotationSource.
func (a *Annotations) PackageContext(pkgPath string) (shape.Nullability, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.packages[pkgPath], nil
}

// TypeContext implements AnnotationSource. A registered context wins over a
// nullctx tag on the struct's blank field.
func (a *Annotations) TypeContext(t reflect.Type) (shape.Nullability, error) {
	a.mu.RLock()
	n, ok := a.types[typeKey(t)]
	a.mu.RUnlock()
	if ok {
		return n, nil
	}
	return blankFieldContext(t)
}

// MemberContext implements AnnotationSource.
func (a *Annotations) MemberContext(m Member) (shape.Nullability, error) {
	a.mu.RLock()
	n, ok := a.memberContexts[m.String()]
	a.mu.RUnlock()
	if ok {
		return n, nil
	}
	f, ok := structField(m)
	if !ok {
		return shape.Unknown, nil
	}
	raw, ok := f.Tag.Lookup(TagContext)
	if !ok {
		return shape.Unknown, nil
	}
	n, valid := shape.ParseNullability(raw)
	if !valid {
		return shape.Unknown, errors.Newf("malformed %s tag %q on %s", TagContext, raw, m)
	}
	return n, nil
}

// MemberFlags implements AnnotationSource.
func (a *Annotations) MemberFlags(m Member) ([]shape.Nullability, error) {
	a.mu.RLock()
	flags, ok := a.memberFlags[m.String()]
	a.mu.RUnlock()
	if ok {
		return append([]shape.Nullability(nil), flags...), nil
	}
	f, ok := structField(m)
	if !ok {
		return nil, nil
	}
	raw, ok := f.Tag.Lookup(TagFlags)
	if !ok {
		return nil, nil
	}
	flags, valid := shape.ParseVector(raw)
	if !valid {
		return nil, errors.Newf("malformed %s tag %q on %s", TagFlags, raw, m)
	}
	return flags, nil
}

func structField(m Member) (reflect.StructField, bool) {
	if m.Kind != MemberField || m.Declaring == nil || m.Declaring.Kind() != reflect.Struct || len(m.Index) == 0 {
		return reflect.StructField{}, false
	}
	var f reflect.StructField
	ok := true
	func() {
		defer func() {
			if recover() != nil {
				ok = false
			}
		}()
		f = m.Declaring.FieldByIndex(m.Index)
	}()
	return f, ok
}

// blankFieldContext reads the nullctx tag of a blank struct{} field of t.
func blankFieldContext(t reflect.Type) (shape.Nullability, error) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return shape.Unknown, nil
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Name != "_" {
			continue
		}
		raw, ok := f.Tag.Lookup(TagContext)
		if !ok {
			continue
		}
		n, valid := shape.ParseNullability(raw)
		if !valid {
			return shape.Unknown, errors.Newf("malformed %s tag %q on %s", TagContext, raw, typeKey(t))
		}
		return n, nil
	}
	return shape.Unknown, nil
}

// annotationFile is the TOML layout of an annotation file:
//
//	[packages]
//	"github.com/acme/api" = "no"
//
//	[types]
//	"github.com/acme/api.User" = "no"
//
//	[members]
//	"github.com/acme/api.User.Tags" = "no,yes"
//	"github.com/acme/api.Repo.Find(0)" = "yes"
//
//	[member_contexts]
//	"github.com/acme/api.User.Notes" = "yes"
type annotationFile struct {
	Packages       map[string]string `toml:"packages"`
	Types          map[string]string `toml:"types"`
	Members        map[string]string `toml:"members"`
	MemberContexts map[string]string `toml:"member_contexts"`
}

// LoadFile merges the annotations of a TOML annotation file into a.
// Unlike struct tags, malformed values in a file are reported: the file is
// configuration and a typo should fail loudly.
func (a *Annotations) LoadFile(path string) error {
	var file annotationFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return errors.Wrapf(err, "failed to decode annotation file %s", path)
	}
	return a.merge(file, path)
}

// LoadString merges annotations from TOML text.
func (a *Annotations) LoadString(text string) error {
	var file annotationFile
	if _, err := toml.Decode(text, &file); err != nil {
		return errors.Wrap(err, "failed to decode annotations")
	}
	return a.merge(file, "<string>")
}

func (a *Annotations) merge(file annotationFile, origin string) error {
	parseOne := func(section, key, raw string) (shape.Nullability, error) {
		n, ok := shape.ParseNullability(raw)
		if !ok {
			return shape.Unknown, errors.WithHint(
				errors.Newf("%s: [%s] %q has malformed value %q", origin, section, key, raw),
				"use yes, no or unknown")
		}
		return n, nil
	}

	packages := make(map[string]shape.Nullability, len(file.Packages))
	for k, v := range file.Packages {
		n, err := parseOne("packages", k, v)
		if err != nil {
			return err
		}
		packages[k] = n
	}
	types := make(map[string]shape.Nullability, len(file.Types))
	for k, v := range file.Types {
		n, err := parseOne("types", k, v)
		if err != nil {
			return err
		}
		types[k] = n
	}
	contexts := make(map[string]shape.Nullability, len(file.MemberContexts))
	for k, v := range file.MemberContexts {
		n, err := parseOne("member_contexts", k, v)
		if err != nil {
			return err
		}
		contexts[normalizeMemberKey(k)] = n
	}
	flags := make(map[string][]shape.Nullability, len(file.Members))
	for k, v := range file.Members {
		vec, ok := shape.ParseVector(v)
		if !ok {
			return errors.WithHint(
				errors.Newf("%s: [members] %q has malformed flags %q", origin, k, v),
				"use a comma separated list of yes, no or unknown")
		}
		flags[normalizeMemberKey(k)] = vec
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for k, v := range packages {
		a.packages[k] = v
	}
	for k, v := range types {
		a.types[k] = v
	}
	for k, v := range contexts {
		a.memberContexts[k] = v
	}
	for k, v := range flags {
		a.memberFlags[k] = v
	}
	return nil
}

// normalizeMemberKey canonicalises "Type.Method( 0 )" spellings.
func normalizeMemberKey(k string) string {
	open := strings.LastIndex(k, "(")
	if open < 0 || !strings.HasSuffix(k, ")") {
		return k
	}
	i, err := strconv.Atoi(strings.TrimSpace(k[open+1 : len(k)-1]))
	if err != nil {
		return k
	}
	return k[:open] + "(" + strconv.Itoa(i) + ")"
}
