// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dyn

import "github.com/petermattis/goid"

// varCore is the state shared by both variable kinds: the minted serial
// and an optional human-readable name. Immutable after construction.
type varCore struct {
	serial Serial
	name   string
}

// Option configures a variable at creation time.
type Option func(*varCore)

// WithName attaches a human-readable name, used in error text and
// diagnostics. Names carry no identity: two variables with the same name
// remain fully independent.
func WithName(name string) Option {
	return func(c *varCore) {
		c.name = name
	}
}

func newCore(opts []Option) varCore {
	c := varCore{serial: nextSerial()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&c)
	}
	return c
}

// Chan is the binding surface shared by [Var] and [OptVar]: what
// [Provide] and [Bind] accept. Consumption policy lives on the concrete
// handle. Sealed; only this package's variable kinds implement it.
type Chan[T any] interface {
	chanCore() *varCore
	value() T // phantom: pins the channel's value type, never called
}

// Var is a required-consumption dynamic variable: one independent binding
// channel whose Consume fails when no provider is in scope.
type Var[T any] struct {
	core varCore
}

// New mints a required-consumption dynamic variable with a fresh serial
// and an empty binding stack.
func New[T any](opts ...Option) *Var[T] {
	return &Var[T]{core: newCore(opts)}
}

// Serial returns the serial assigned to this variable.
func (v *Var[T]) Serial() Serial {
	return v.core.serial
}

// Name returns the name given via WithName, or "".
func (v *Var[T]) Name() string {
	return v.core.name
}

func (v *Var[T]) chanCore() *varCore { return &v.core }

func (v *Var[T]) value() T { panic("dyn: phantom") }

// Consume reads the innermost binding for v on the calling goroutine's
// stack. When no provide is live on the current call stack it returns an
// error matching [ErrNoBinding]; it never recovers on the caller's
// behalf. Presence is stack occupancy: a bound zero value is returned
// as-is with a nil error.
func (v *Var[T]) Consume() (T, error) {
	raw, ok := peek(goid.Get(), v.core.serial)
	if !ok {
		var zero T
		return zero, noBinding(&v.core)
	}
	return raw.(T), nil
}

// OptVar is an optional-consumption dynamic variable: absence is an
// ok=false, never a failure.
type OptVar[T any] struct {
	core varCore
}

// NewOpt mints an optional-consumption dynamic variable with a fresh
// serial and an empty binding stack.
func NewOpt[T any](opts ...Option) *OptVar[T] {
	return &OptVar[T]{core: newCore(opts)}
}

// Serial returns the serial assigned to this variable.
func (o *OptVar[T]) Serial() Serial {
	return o.core.serial
}

// Name returns the name given via WithName, or "".
func (o *OptVar[T]) Name() string {
	return o.core.name
}

func (o *OptVar[T]) chanCore() *varCore { return &o.core }

func (o *OptVar[T]) value() T { panic("dyn: phantom") }

// Consume reads the innermost binding for o on the calling goroutine's
// stack. Absence reports ok=false; Consume never fails.
func (o *OptVar[T]) Consume() (T, bool) {
	raw, ok := peek(goid.Get(), o.core.serial)
	if !ok {
		var zero T
		return zero, false
	}
	return raw.(T), true
}
