package convention

import (
	"reflect"
	"sort"
	"sync"
)

// Factory creates an uninitialized convention or extension.
type Factory func(ctx *Context) (Convention, error)

type key struct {
	contract reflect.Type
	scope    string
}

func (k key) String() string {
	return k.contract.String() + "@" + k.scope
}

// Registry holds convention factories per contract and scope. Registering
// after a Context resolved a key does not affect that Context.
type Registry struct {
	mu        sync.RWMutex
	factories map[key][]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[key][]Factory)}
}

// Register adds a factory for contract in scope. Whether it produces the
// owning convention or an extension is decided by the instance it creates.
func (r *Registry) Register(contract reflect.Type, scope string, f Factory) {
	if scope == "" {
		scope = DefaultScope
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{contract: contract, scope: scope}
	r.factories[k] = append(r.factories[k], f)
}

// Register adds a factory for contract T.
func Register[T any](r *Registry, scope string, f Factory) {
	r.Register(reflect.TypeFor[T](), scope, f)
}

func (r *Registry) lookup(k key) []Factory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Factory(nil), r.factories[k]...)
}

// Registration summarises the factories registered for one contract and scope.
type Registration struct {
	Contract  string
	Scope     string
	Factories int
}

// Registrations lists registered contracts sorted by contract then scope.
func (r *Registry) Registrations() []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Registration, 0, len(r.factories))
	for k, fs := range r.factories {
		out = append(out, Registration{Contract: k.contract.String(), Scope: k.scope, Factories: len(fs)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Contract != out[j].Contract {
			return out[i].Contract < out[j].Contract
		}
		return out[i].Scope < out[j].Scope
	})
	return out
}
