// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package dyn provides call-stack-scoped dynamic variables (fluid bindings) for Go.
//
// A value provided at one point in a synchronous call chain becomes
// implicitly readable by every function invoked, directly or transitively,
// further down that chain, and stops being visible once the providing frame
// returns. Nested provides on the same variable shadow outer ones for the
// inner dynamic extent only, generalizing lexical shadowing to scopes that
// span textually unrelated functions connected by the call stack.
//
// # Architecture
//
//   - Binding state: goroutine-local arenas of LIFO value stacks, one stack per variable. [New] and [NewOpt] mint independent channels identified by [Serial].
//   - Discipline: [Provide] brackets the entire dynamic extent of its sub-routine; the matching pop runs on every exit path, including panics.
//   - Consumption: [Var.Consume] fails with [ErrNoBinding] when no provider is in scope; [OptVar.Consume] reports absence as ok=false. Presence is stack occupancy, never value truthiness.
//   - Execution: Dual-world API supporting closure-based (Cont-world) and defunctionalized (Expr-world) evaluation on [code.hybscloud.com/kont].
//
// # API Topologies
//
//   - Direct world: [Provide], [Bind], [With], [Compose], [Capture], [Var.Consume], [OptVar.Consume].
//   - Cont-world: [AskBind], [AskOptBranch], [ProvideThen], evaluated by [Eval].
//   - Expr-world: Zero-allocation variants [ExprAskBind], [ExprAskOptBranch], [ExprProvideThen], evaluated by [EvalExpr].
//
// # Boundaries
//
// Bindings are goroutine-local and synchronous. They never propagate across
// a goroutine or other asynchronous boundary implicitly: the stack-based
// binding has already been popped, or belongs to a different call tree, by
// the time deferred work runs. [Capture] snapshots the calling goroutine's
// current bindings as a composite [Binding] for the caller to re-provide on
// the far side with [With].
//
// # Example
//
//	region := dyn.New[string](dyn.WithName("region"))
//	got := dyn.Provide(region, "eu-west", func() string {
//		s, _ := region.Consume()
//		return s
//	})
//	// got == "eu-west"
package dyn
