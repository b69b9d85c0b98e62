// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dyn

import (
	"code.hybscloud.com/kont"
)

// exprReturnFrame is the pre-allocated terminal frame shared by the
// Expr-world constructors, avoiding per-construction boxing.
var exprReturnFrame kont.Frame = kont.ReturnFrame{}

// identityResume is the identity resume function for EffectFrame
// construction. Named function produces a static function value,
// consistent with kont convention.
func identityResume(v kont.Erased) kont.Erased { return v }

func askBindUnwind[T, B any](data, _, _ kont.Erased, current kont.Erased) (kont.Erased, kont.Frame) {
	f := data.(func(T) kont.Expr[B])
	result := f(current.(T))
	return kont.Erased(result.Value), result.Frame
}

// ExprAskBind reads v's innermost binding and passes it to f.
// Fuses ExprPerform(Ask[T]{Var: v}) + ExprBind.
func ExprAskBind[T, B any](v *Var[T], f func(T) kont.Expr[B]) kont.Expr[B] {
	bf := kont.AcquireUnwindFrame()
	bf.Data1 = f
	bf.Unwind = askBindUnwind[T, B]
	ef := kont.AcquireEffectFrame()
	ef.Operation = Ask[T]{Var: v}
	ef.Resume = identityResume
	ef.Next = bf
	return kont.ExprSuspend[B](ef)
}

func askOptBranchUnwind[T, A any](data, data2, _ kont.Erased, current kont.Erased) (kont.Erased, kont.Frame) {
	onBound := data.(func(T) kont.Expr[A])
	onAbsent := data2.(func() kont.Expr[A])
	e := current.(kont.Either[struct{}, T])
	var result kont.Expr[A]
	if v, ok := e.GetRight(); ok {
		result = onBound(v)
	} else {
		result = onAbsent()
	}
	return kont.Erased(result.Value), result.Frame
}

// ExprAskOptBranch reads o's innermost binding and calls onBound or
// onAbsent. Fuses ExprPerform(AskOpt[T]{Var: o}) + ExprBind + Either
// branch.
func ExprAskOptBranch[T, A any](o *OptVar[T], onBound func(T) kont.Expr[A], onAbsent func() kont.Expr[A]) kont.Expr[A] {
	bf := kont.AcquireUnwindFrame()
	bf.Data1 = onBound
	bf.Data2 = onAbsent
	bf.Unwind = askOptBranchUnwind[T, A]
	ef := kont.AcquireEffectFrame()
	ef.Operation = AskOpt[T]{Var: o}
	ef.Resume = identityResume
	ef.Next = bf
	return kont.ExprSuspend[A](ef)
}

// ExprProvideThen binds value on c for the dynamic extent of body.
// Fuses ExprPerform(scopeEnter) + ExprBind + ExprPerform(scopeExit); the
// evaluator guarantees the exit even when body fails the evaluation.
func ExprProvideThen[T, B any](c Chan[T], value T, body kont.Expr[B]) kont.Expr[B] {
	serial := c.chanCore().serial
	closed := kont.ExprBind(body, func(b B) kont.Expr[B] {
		return kont.ExprThen(kont.ExprPerform(scopeExit{serial: serial}), kont.ExprReturn(b))
	})
	tf := kont.AcquireThenFrame()
	tf.Second = kont.Expr[kont.Erased]{Value: kont.Erased(closed.Value), Frame: closed.Frame}
	tf.Next = exprReturnFrame
	ef := kont.AcquireEffectFrame()
	ef.Operation = scopeEnter{serial: serial, value: value}
	ef.Resume = identityResume
	ef.Next = tf
	return kont.ExprSuspend[B](ef)
}
