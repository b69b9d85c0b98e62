// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dyn

import (
	"sort"

	"github.com/petermattis/goid"
)

// Provide binds value on c for the dynamic extent of fn: the binding is
// visible to every call made, directly or transitively, from fn, and gone
// once Provide returns. A nested Provide on the same channel shadows the
// outer binding for the inner call only. The matching pop runs on every
// exit path, including a panic propagating out of fn; failures raised
// inside fn are never swallowed.
func Provide[T, R any](c Chan[T], value T, fn func() R) R {
	g := goid.Get()
	serial := c.chanCore().serial
	push(g, serial, value)
	defer pop(g, serial)
	return fn()
}

// loaded is one deferred (serial, value) pair of a loaded provider.
type loaded struct {
	serial Serial
	value  any
}

// Binding is a value-loaded provider awaiting a sub-routine: the curried
// form of [Provide], ready to be run with [With] or chained with
// [Compose]. A Binding is an inert descriptor — it touches no stack state
// until run — and is reusable. The zero Binding binds nothing.
type Binding struct {
	pairs []loaded // nesting order: pairs[0] outermost
}

// Bind returns the loaded provider that will bind value on c.
func Bind[T any](c Chan[T], value T) Binding {
	return Binding{pairs: []loaded{{serial: c.chanCore().serial, value: value}}}
}

// Compose chains loaded providers into one. The first argument
// establishes the outermost binding (pushed first, popped last), the last
// the innermost; when two inputs target the same channel the later one
// shadows. Pure combinator: no stack state is touched until the composite
// runs.
func Compose(bindings ...Binding) Binding {
	n := 0
	for _, b := range bindings {
		n += len(b.pairs)
	}
	pairs := make([]loaded, 0, n)
	for _, b := range bindings {
		pairs = append(pairs, b.pairs...)
	}
	return Binding{pairs: pairs}
}

// With runs fn under b's bindings for fn's dynamic extent, observably
// identical to nesting [Provide] calls in b's order. Every push is popped
// on every exit path, including a panic propagating out of fn.
func With[R any](b Binding, fn func() R) R {
	g := goid.Get()
	for _, p := range b.pairs {
		push(g, p.serial, p.value)
	}
	defer func() {
		for i := len(b.pairs) - 1; i >= 0; i-- {
			pop(g, b.pairs[i].serial)
		}
	}()
	return fn()
}

// Capture snapshots the calling goroutine's innermost binding of every
// live variable as a composite Binding, in ascending serial order.
// Bindings never cross goroutines implicitly; hand the snapshot to the
// new goroutine and re-provide it there:
//
//	snap := dyn.Capture()
//	go func() {
//		dyn.With(snap, work)
//	}()
func Capture() Binding {
	a := arenaOf(goid.Get())
	if a == nil {
		return Binding{}
	}
	pairs := make([]loaded, 0, len(a.stacks))
	for serial, st := range a.stacks {
		pairs = append(pairs, loaded{serial: serial, value: st[len(st)-1]})
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].serial < pairs[j].serial
	})
	return Binding{pairs: pairs}
}
