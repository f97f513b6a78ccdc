// Package convention resolves pluggable policy objects per contract and
// scope.
//
// A convention is created lazily the first time a build Context asks for
// its contract in a scope, initialized exactly once, merged with every
// registered extension for the same contract and scope, and memoized for
// the life of the Context.
//
// Architecture:
//   - Registry holds factories per (contract, scope); it outlives builds
//   - Context is one schema build; it memoizes resolved conventions
//   - Base is the embeddable Uninitialized -> Initialized state
package convention

import (
	"sync"

	"github.com/teranos/typeshape/errors"
)

// DefaultScope is used when a caller passes an empty scope.
const DefaultScope = "default"

// Convention is implemented by owning conventions and extensions.
type Convention interface {
	// Initialize binds the convention to its scope. A second call is a
	// programming error and must fail.
	Initialize(ctx *Context, scope string) error

	// Scope returns the bound scope, empty before initialization
	Scope() string

	IsInitialized() bool
}

// Extension contributes to the owning convention of its contract and scope.
// Extensions are never resolved on their own.
type Extension interface {
	Convention

	// Merge folds the extension into owner. Called after both are initialized.
	Merge(ctx *Context, owner Convention) error
}

// Completer is implemented by conventions that finish setup after all
// extensions were merged.
type Completer interface {
	Complete(ctx *Context) error
}

// Versioned is implemented by owning conventions that publish a semver version.
type Versioned interface {
	Version() string
}

// Constrained is implemented by extensions that only merge into owners whose
// version satisfies a semver constraint such as ">= 1.2, < 2".
type Constrained interface {
	Requires() string
}

// State is the lifecycle state of a convention.
type State int

const (
	Uninitialized State = iota
	Initialized
)

func (s State) String() string {
	if s == Initialized {
		return "initialized"
	}
	return "uninitialized"
}

// Base implements the Convention lifecycle. Embed it by value in a struct
// used through a pointer; types overriding Initialize must call
// Base.Initialize first.
type Base struct {
	mu    sync.Mutex
	state State
	scope string
}

// Initialize moves the convention to Initialized and binds scope. Calling it
// twice returns an assertion failure marked errors.ErrConventionReinitialized.
func (b *Base) Initialize(_ *Context, scope string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == Initialized {
		return errors.Mark(
			errors.AssertionFailedf("convention already initialized for scope %q, cannot rebind to %q", b.scope, scope),
			errors.ErrConventionReinitialized)
	}
	b.state = Initialized
	b.scope = scope
	return nil
}

// Scope returns the bound scope.
func (b *Base) Scope() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.scope
}

// IsInitialized reports whether Initialize succeeded.
func (b *Base) IsInitialized() bool {
	return b.State() == Initialized
}

// State returns the lifecycle state.
func (b *Base) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
