// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dyn

import (
	"code.hybscloud.com/kont"
	"github.com/petermattis/goid"
)

// dynContext tracks effect-world binding state for one evaluation: the
// goroutine whose arena receives the pushes, and the scope enters not yet
// matched by an exit.
type dynContext struct {
	g      int64
	active []Serial
}

// unwind pops any enters left live when evaluation ends early (handler
// short-circuit or a panic out of the computation), keeping the push/pop
// discipline sound on every exit path.
func (ctx *dynContext) unwind() {
	for i := len(ctx.active) - 1; i >= 0; i-- {
		pop(ctx.g, ctx.active[i])
	}
	ctx.active = ctx.active[:0]
}

// dynDispatcher is the structural interface for dynamic-binding effects.
// DispatchDyn reads or mutates the evaluating goroutine's arena; a non-nil
// error fails the whole evaluation (required binding absent).
type dynDispatcher interface {
	DispatchDyn(ctx *dynContext) (kont.Resumed, error)
}

// Ask is the effect operation reading v's innermost binding.
// Perform(Ask[T]{Var: v}) resumes with the bound value, or fails the
// evaluation with an error matching ErrNoBinding when no provider is in
// scope.
type Ask[T any] struct {
	kont.Phantom[T]
	Var *Var[T]
}

// DispatchDyn handles Ask against the evaluating goroutine's arena.
func (a Ask[T]) DispatchDyn(ctx *dynContext) (kont.Resumed, error) {
	raw, ok := peek(ctx.g, a.Var.core.serial)
	if !ok {
		return nil, noBinding(&a.Var.core)
	}
	return raw.(T), nil
}

// AskOpt is the effect operation reading o's innermost binding.
// Perform(AskOpt[T]{Var: o}) resumes with Right(value) when bound and
// Left when absent. Never fails the evaluation.
type AskOpt[T any] struct {
	kont.Phantom[kont.Either[struct{}, T]]
	Var *OptVar[T]
}

// DispatchDyn handles AskOpt against the evaluating goroutine's arena.
func (a AskOpt[T]) DispatchDyn(ctx *dynContext) (kont.Resumed, error) {
	raw, ok := peek(ctx.g, a.Var.core.serial)
	if !ok {
		return kont.Left[struct{}, T](struct{}{}), nil
	}
	return kont.Right[struct{}](raw.(T)), nil
}

// scopeEnter pushes a binding for the dynamic extent opened by
// ProvideThen. Emitted only by the fused constructors; the evaluator
// records it so an early exit can still unwind.
type scopeEnter struct {
	kont.Phantom[struct{}]
	serial Serial
	value  any
}

// DispatchDyn handles scopeEnter: push and record.
func (e scopeEnter) DispatchDyn(ctx *dynContext) (kont.Resumed, error) {
	push(ctx.g, e.serial, e.value)
	ctx.active = append(ctx.active, e.serial)
	return struct{}{}, nil
}

// scopeExit pops the matching scopeEnter. Enters and exits pair LIFO by
// construction of the fused constructors.
type scopeExit struct {
	kont.Phantom[struct{}]
	serial Serial
}

// DispatchDyn handles scopeExit: unrecord and pop.
func (e scopeExit) DispatchDyn(ctx *dynContext) (kont.Resumed, error) {
	n := len(ctx.active)
	if n == 0 || ctx.active[n-1] != e.serial {
		panic("dyn: unbalanced scope exit")
	}
	ctx.active = ctx.active[:n-1]
	pop(ctx.g, e.serial)
	return struct{}{}, nil
}

// dynHandler implements kont.Handler for dynamic-binding effects.
// A failed required Ask short-circuits the evaluation with Left; the
// evaluator's deferred unwind then restores the arena.
// Value type: passed to evalFrames on the stack, avoiding heap allocation.
type dynHandler[R any] struct {
	ctx *dynContext
}

// Dispatch implements kont.Handler via structural interface assertion.
func (h dynHandler[R]) Dispatch(op kont.Operation) (kont.Resumed, bool) {
	dop, ok := op.(dynDispatcher)
	if !ok {
		panic("dyn: unhandled effect in dynHandler")
	}
	v, err := dop.DispatchDyn(h.ctx)
	if err != nil {
		return kont.Left[error, R](err), false
	}
	return v, true
}

// Eval runs a Cont-world computation against the calling goroutine's
// bindings. Returns Right on success; Left carries the ErrNoBinding of
// the first required Ask with no provider in scope. Every binding opened
// by ProvideThen is closed again before Eval returns, on every exit path.
func Eval[R any](comp kont.Eff[R]) kont.Either[error, R] {
	wrapped := kont.Map[kont.Resumed, R, kont.Either[error, R]](comp, func(r R) kont.Either[error, R] {
		return kont.Right[error, R](r)
	})
	ctx := dynContext{g: goid.Get()}
	defer ctx.unwind()
	h := dynHandler[R]{ctx: &ctx}
	return kont.Handle(wrapped, h)
}

// EvalExpr runs an Expr-world computation against the calling goroutine's
// bindings. Same contract as Eval.
func EvalExpr[R any](comp kont.Expr[R]) kont.Either[error, R] {
	wrapped := kont.ExprMap(comp, func(r R) kont.Either[error, R] {
		return kont.Right[error, R](r)
	})
	ctx := dynContext{g: goid.Get()}
	defer ctx.unwind()
	h := dynHandler[R]{ctx: &ctx}
	return kont.HandleExpr(wrapped, h)
}
