// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dyn_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/dyn"
)

func TestCurriedEquivalence(t *testing.T) {
	v := dyn.New[int]()

	read := func() int {
		n, err := v.Consume()
		if err != nil {
			t.Fatalf("Consume error: %v", err)
		}
		return n
	}

	immediate := dyn.Provide(v, 42, read)
	curried := dyn.With(dyn.Bind(v, 42), read)
	if immediate != curried {
		t.Fatalf("immediate %d != curried %d", immediate, curried)
	}
}

func TestBindingReusable(t *testing.T) {
	v := dyn.New[int]()
	b := dyn.Bind(v, 9)

	for i := 0; i < 3; i++ {
		got := dyn.With(b, func() int {
			n, _ := v.Consume()
			return n
		})
		if got != 9 {
			t.Fatalf("run %d got %d, want 9", i, got)
		}
	}
	if _, err := v.Consume(); !errors.Is(err, dyn.ErrNoBinding) {
		t.Fatalf("binding leaked after reuse: %v", err)
	}
}

func TestComposeOrder(t *testing.T) {
	a := dyn.New[int]()
	b := dyn.New[string]()

	// Compose(x, y) must behave exactly like With(x, () => With(y, fn)).
	composed := dyn.With(dyn.Compose(dyn.Bind(a, 1), dyn.Bind(b, "two")), func() [2]any {
		av, _ := a.Consume()
		bv, _ := b.Consume()
		return [2]any{av, bv}
	})
	nested := dyn.With(dyn.Bind(a, 1), func() [2]any {
		return dyn.With(dyn.Bind(b, "two"), func() [2]any {
			av, _ := a.Consume()
			bv, _ := b.Consume()
			return [2]any{av, bv}
		})
	})
	if composed != nested {
		t.Fatalf("composed %v != nested %v", composed, nested)
	}
}

func TestComposeSameChannelShadow(t *testing.T) {
	v := dyn.New[int]()

	// Last input is innermost: it must be current inside the sub-routine.
	got := dyn.With(dyn.Compose(dyn.Bind(v, 1), dyn.Bind(v, 2)), func() int {
		n, _ := v.Consume()
		return n
	})
	if got != 2 {
		t.Fatalf("got %d, want 2 (inner binding shadows)", got)
	}
	if _, err := v.Consume(); !errors.Is(err, dyn.ErrNoBinding) {
		t.Fatalf("stack not restored after composite: %v", err)
	}
}

func TestComposeEmpty(t *testing.T) {
	got := dyn.With(dyn.Compose(), func() int { return 11 })
	if got != 11 {
		t.Fatalf("got %d, want 11", got)
	}
}

func TestCleanupOnPanic(t *testing.T) {
	v := dyn.New[int]()

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic to propagate")
			}
		}()
		dyn.Provide(v, 1, func() struct{} {
			panic("boom")
		})
	}()

	// The pop must have run: the stack is back to its pre-call depth.
	if _, err := v.Consume(); !errors.Is(err, dyn.ErrNoBinding) {
		t.Fatalf("Consume after panic error = %v, want ErrNoBinding", err)
	}
}

func TestCleanupOnPanicNested(t *testing.T) {
	v := dyn.New[int]()

	dyn.Provide(v, 1, func() struct{} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic to propagate")
				}
			}()
			dyn.Provide(v, 2, func() struct{} {
				panic("inner")
			})
		}()
		// Inner binding gone, outer still current.
		n, err := v.Consume()
		if err != nil || n != 1 {
			t.Fatalf("Consume = (%d, %v), want (1, nil)", n, err)
		}
		return struct{}{}
	})
}

func TestWithCleanupOnPanic(t *testing.T) {
	a := dyn.New[int]()
	b := dyn.New[int]()

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic to propagate")
			}
		}()
		dyn.With(dyn.Compose(dyn.Bind(a, 1), dyn.Bind(b, 2)), func() struct{} {
			panic("boom")
		})
	}()

	if _, err := a.Consume(); !errors.Is(err, dyn.ErrNoBinding) {
		t.Fatalf("a leaked after panic: %v", err)
	}
	if _, err := b.Consume(); !errors.Is(err, dyn.ErrNoBinding) {
		t.Fatalf("b leaked after panic: %v", err)
	}
}

func TestCaptureEmpty(t *testing.T) {
	snap := dyn.Capture()
	got := dyn.With(snap, func() int { return 3 })
	if got != 3 {
		t.Fatalf("got %d, want 3", got)
	}
}

func TestCaptureAcrossGoroutine(t *testing.T) {
	region := dyn.New[string]()
	quota := dyn.NewOpt[int]()

	dyn.Provide(region, "ap-east", func() struct{} {
		dyn.Provide(quota, 3, func() struct{} {
			snap := dyn.Capture()

			type reading struct {
				region string
				quota  int
			}
			ch := make(chan reading, 1)
			go func() {
				ch <- dyn.With(snap, func() reading {
					r, _ := region.Consume()
					q, _ := quota.Consume()
					return reading{region: r, quota: q}
				})
			}()
			got := <-ch
			if got.region != "ap-east" || got.quota != 3 {
				t.Fatalf("re-provided snapshot read %+v", got)
			}
			return struct{}{}
		})
		return struct{}{}
	})
}

func TestCaptureTakesInnermost(t *testing.T) {
	v := dyn.New[int]()

	dyn.Provide(v, 1, func() struct{} {
		snap := dyn.Provide(v, 2, func() dyn.Binding {
			return dyn.Capture()
		})
		// Snapshot holds the binding that was innermost at capture time.
		got := dyn.With(snap, func() int {
			n, _ := v.Consume()
			return n
		})
		if got != 2 {
			t.Fatalf("snapshot read %d, want 2", got)
		}
		return struct{}{}
	})
}
