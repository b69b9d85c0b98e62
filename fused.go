// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dyn

import (
	"code.hybscloud.com/kont"
)

// AskBind reads v's innermost binding and passes it to f.
// Fuses Perform(Ask[T]{Var: v}) + Bind.
func AskBind[T, B any](v *Var[T], f func(T) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(Ask[T]{Var: v}), f)
}

// AskOptBranch reads o's innermost binding and calls onBound or onAbsent.
// Fuses Perform(AskOpt[T]{Var: o}) + Bind + Either branch.
func AskOptBranch[T, A any](o *OptVar[T], onBound func(T) kont.Eff[A], onAbsent func() kont.Eff[A]) kont.Eff[A] {
	return kont.Bind(kont.Perform(AskOpt[T]{Var: o}), func(e kont.Either[struct{}, T]) kont.Eff[A] {
		if v, ok := e.GetRight(); ok {
			return onBound(v)
		}
		return onAbsent()
	})
}

// ProvideThen binds value on c for the dynamic extent of body.
// Fuses Perform(scopeEnter) + Bind + Perform(scopeExit); the evaluator
// guarantees the exit even when body fails the evaluation.
func ProvideThen[T, B any](c Chan[T], value T, body kont.Eff[B]) kont.Eff[B] {
	serial := c.chanCore().serial
	return kont.Then(kont.Perform(scopeEnter{serial: serial, value: value}),
		kont.Bind(body, func(b B) kont.Eff[B] {
			return kont.Then(kont.Perform(scopeExit{serial: serial}), kont.Pure(b))
		}),
	)
}
