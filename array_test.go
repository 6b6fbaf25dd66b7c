package klee_test

import (
	"testing"

	"github.com/holycrap872/klee"
	"github.com/google/go-cmp/cmp"
)

func TestArray(t *testing.T) {
	t.Run("Concrete", func(t *testing.T) {
		t.Run("Bool", func(t *testing.T) {
			a := klee.NewArray(0, 4)
			a = a.Store(klee.NewConstantExpr(3, 32), klee.NewConstantExpr(1, 1), false)
			if expr, ok := a.Select(klee.NewConstantExpr(3, 32), 1, false).(*klee.ConstantExpr); !ok {
				t.Fatal("expected constant expr")
			} else if expr.Value != 1 {
				t.Fatal("unexpected value")
			} else if expr.Width != 1 {
				t.Fatal("unexpected width")
			}
		})

		t.Run("BigEndian", func(t *testing.T) {
			a := klee.NewArray(0, 4)
			a = a.Store(klee.NewConstantExpr(0, 32), klee.NewConstantExpr(0xAABBCCDD, 32), false)
			if expr, ok := a.Select(klee.NewConstantExpr(0, 32), 32, false).(*klee.ConstantExpr); !ok {
				t.Fatal("expected constant expr")
			} else if expr.Value != 0xAABBCCDD {
				t.Fatal("unexpected value")
			}
		})

		t.Run("LittleEndian", func(t *testing.T) {
			a := klee.NewArray(0, 4)
			a = a.Store(klee.NewConstantExpr(0, 32), klee.NewConstantExpr(0xAABBCCDD, 32), true)
			if expr, ok := a.Select(klee.NewConstantExpr(0, 32), 32, true).(*klee.ConstantExpr); !ok {
				t.Fatal("expected constant expr")
			} else if expr.Value != 0xAABBCCDD {
				t.Fatal("unexpected value")
			}
		})
	})

	t.Run("Symbolic", func(t *testing.T) {
		t.Run("Empty", func(t *testing.T) {
			t.Run("SingleByte", func(t *testing.T) {
				a := klee.NewArray(0, 4)
				if diff := cmp.Diff(
					a.Select(klee.NewConstantExpr64(0), 8, false),
					&klee.SelectExpr{
						Array: a,
						Index: klee.NewConstantExpr64(0),
					},
				); diff != "" {
					t.Fatal(diff)
				}
			})

			t.Run("BigEndian", func(t *testing.T) {
				a := klee.NewArray(0, 4)
				if diff := cmp.Diff(
					a.Select(klee.NewConstantExpr64(2), 16, false),
					&klee.ConcatExpr{
						MSB: &klee.SelectExpr{
							Array: a,
							Index: klee.NewConstantExpr64(2),
						},
						LSB: &klee.SelectExpr{
							Array: a,
							Index: klee.NewConstantExpr64(3),
						},
					},
				); diff != "" {
					t.Fatal(diff)
				}
			})

			t.Run("LittleEndian", func(t *testing.T) {
				a := klee.NewArray(0, 4)
				if diff := cmp.Diff(
					a.Select(klee.NewConstantExpr64(2), 16, true),
					&klee.ConcatExpr{
						MSB: &klee.SelectExpr{
							Array: a,
							Index: klee.NewConstantExpr64(3),
						},
						LSB: &klee.SelectExpr{
							Array: a,
							Index: klee.NewConstantExpr64(2),
						},
					},
				); diff != "" {
					t.Fatal(diff)
				}
			})

			// Ensure stores using selects from other arrays return references
			// to that original array's expressions.
			t.Run("MultiArray", func(t *testing.T) {
				a, b := klee.NewArray(0, 4), klee.NewArray(0, 8)
				b = b.Store(
					klee.NewConstantExpr64(6),
					a.Select(klee.NewConstantExpr64(2), 16, false),
					false,
				)

				if diff := cmp.Diff(
					&klee.ConcatExpr{
						MSB: &klee.SelectExpr{
							Array: b,
							Index: klee.NewConstantExpr64(4),
						},
						LSB: &klee.ConcatExpr{
							MSB: &klee.SelectExpr{
								Array: b,
								Index: klee.NewConstantExpr64(5),
							},
							LSB: &klee.ConcatExpr{
								MSB: &klee.SelectExpr{
									Array: a,
									Index: klee.NewConstantExpr64(2),
								},
								LSB: &klee.SelectExpr{
									Array: a,
									Index: klee.NewConstantExpr64(3),
								},
							},
						},
					},
					b.Select(klee.NewConstantExpr64(4), 32, false),
				); diff != "" {
					t.Fatal(diff)
				}
			})

			// Ensure selection of an array that contains a store with a
			// symbolic index will simply a read from the array.
			t.Run("SymbolicIndex", func(t *testing.T) {
				a, b, c := klee.NewArray(0, 8), klee.NewArray(0, 8), klee.NewArray(0, 8)

				// Write concrete zeros.
				c = c.Store(
					klee.NewConstantExpr64(0),
					klee.NewConstantExpr64(0),
					false,
				)

				// Overwrite with store using symbolic index.
				c = c.Store(
					b.Select(klee.NewConstantExpr64(0), 32, false),
					a.Select(klee.NewConstantExpr64(0), 8, false),
					false,
				)

				if diff := cmp.Diff(
					&klee.ConcatExpr{
						MSB: &klee.SelectExpr{
							Array: c,
							Index: klee.NewConstantExpr64(0),
						},
						LSB: &klee.SelectExpr{
							Array: c,
							Index: klee.NewConstantExpr64(1),
						},
					},
					c.Select(klee.NewConstantExpr64(0), 16, false),
				); diff != "" {
					t.Fatal(diff)
				}
			})

			// Ensure that selection from an array with a symbolic store index
			// and then concrete store index will return the concrete store.
			t.Run("SymbolicIndexOverwritten", func(t *testing.T) {
				a, b, c := klee.NewArray(0, 4), klee.NewArray(0, 4), klee.NewArray(0, 4)
				c = c.Store(
					b.Select(klee.NewConstantExpr64(0), 32, false),
					a.Select(klee.NewConstantExpr64(0), 32, false),
					false,
				)

				c = c.Store(
					klee.NewConstantExpr64(1),
					a.Select(klee.NewConstantExpr64(0), 8, false),
					false,
				)

				if diff := cmp.Diff(
					&klee.ConcatExpr{
						MSB: &klee.SelectExpr{
							Array: c,
							Index: klee.NewConstantExpr64(0),
						},
						LSB: &klee.SelectExpr{
							Array: a,
							Index: klee.NewConstantExpr64(0),
						},
					},
					c.Select(klee.NewConstantExpr64(0), 16, false),
				); diff != "" {
					t.Fatal(diff)
				}
			})
		})
	})

	t.Run("GC", func(t *testing.T) {
		t.Run("ConcreteIndex", func(t *testing.T) {
			a := klee.NewArray(0, 2)
			a = a.Store(klee.NewConstantExpr64(0), klee.NewConstantExpr8(0), false)
			a = a.Store(klee.NewConstantExpr64(1), klee.NewConstantExpr8(1), false)
			a = a.Store(klee.NewConstantExpr64(0), klee.NewConstantExpr8(2), false)
			if expr, ok := a.Select(klee.NewConstantExpr64(0), 16, false).(*klee.ConstantExpr); !ok {
				t.Fatal("expected constant expr")
			} else if expr.Value != 0x0201 {
				t.Fatalf("unexpected value: 0x%04x", expr.Value)
			}

			if diff := cmp.Diff(
				&klee.Array{
					Size: 2,
					Updates: &klee.ArrayUpdate{
						Index: klee.NewConstantExpr64(0),
						Value: klee.NewConstantExpr8(2),
						Next: &klee.ArrayUpdate{
							Index: klee.NewConstantExpr64(1),
							Value: klee.NewConstantExpr8(1),
						},
					},
				},
				a,
			); diff != "" {
				t.Fatal(diff)
			}
		})

		t.Run("SymbolicIndex", func(t *testing.T) {
			a, b := klee.NewArray(0, 2), klee.NewArray(0, 1)
			a = a.Store(klee.NewConstantExpr64(0), klee.NewConstantExpr8(0), false)
			a = a.Store(b.Select(klee.NewConstantExpr64(0), 8, false), klee.NewConstantExpr8(1), false) // symbolic index
			a = a.Store(klee.NewConstantExpr64(0), klee.NewConstantExpr8(2), false)

			if diff := cmp.Diff(
				&klee.Array{
					Size: 2,
					Updates: &klee.ArrayUpdate{
						Index: klee.NewConstantExpr64(0),
						Value: klee.NewConstantExpr8(2),
						Next: &klee.ArrayUpdate{
							Index: &klee.CastExpr{
								Src: &klee.SelectExpr{
									Array: b,
									Index: klee.NewConstantExpr64(0),
								},
								Width: 64,
							},
							Value: klee.NewConstantExpr8(1),
							Next: &klee.ArrayUpdate{
								Index: klee.NewConstantExpr64(0),
								Value: klee.NewConstantExpr8(0),
							},
						},
					},
				},
				a,
			); diff != "" {
				t.Fatal(diff)
			}
		})
	})

	t.Run("IsSymbolic", func(t *testing.T) {
		t.Run("AllConcrete", func(t *testing.T) {
			a := klee.NewArray(0, 2)
			a = a.Store(klee.NewConstantExpr(0, 32), klee.NewConstantExpr(0, 8), false)
			a = a.Store(klee.NewConstantExpr(1, 32), klee.NewConstantExpr(0, 8), false)
			if a.IsSymbolic() {
				t.Fatal("expected concrete")
			}
		})

		t.Run("UnsetByte", func(t *testing.T) {
			a := klee.NewArray(0, 2)
			a = a.Store(klee.NewConstantExpr(0, 32), klee.NewConstantExpr(0, 8), false)
			if !a.IsSymbolic() {
				t.Fatal("expected symbolic")
			}
		})

		t.Run("ContainsSelectValue", func(t *testing.T) {
			a, b := klee.NewArray(0, 2), klee.NewArray(0, 2)
			a = a.Store(klee.NewConstantExpr(0, 32), klee.NewConstantExpr(0, 8), false)
			a = a.Store(klee.NewConstantExpr(1, 32), b.Select(klee.NewConstantExpr(0, 32), 8, false), false)
			if !a.IsSymbolic() {
				t.Fatal("expected symbolic")
			}
		})

		t.Run("ContainsSelectIndex", func(t *testing.T) {
			a, b := klee.NewArray(0, 2), klee.NewArray(0, 2)
			a = a.Store(klee.NewConstantExpr(0, 32), klee.NewConstantExpr(0, 8), false)
			a = a.Store(b.Select(klee.NewConstantExpr(0, 32), 8, false), klee.NewConstantExpr(0, 32), false)
			if !a.IsSymbolic() {
				t.Fatal("expected symbolic")
			}
		})
	})
}

func TestCompareArray(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		if cmp := klee.CompareArray(nil, nil); cmp != 0 {
			t.Fatalf("unexpected compare: %d", cmp)
		} else if cmp := klee.CompareArray(nil, klee.NewArray(0, 2)); cmp != -1 {
			t.Fatalf("unexpected compare: %d", cmp)
		} else if cmp := klee.CompareArray(klee.NewArray(0, 2), nil); cmp != 1 {
			t.Fatalf("unexpected compare: %d", cmp)
		}
	})

	t.Run("Size", func(t *testing.T) {
		if cmp := klee.CompareArray(klee.NewArray(0, 2), klee.NewArray(0, 2)); cmp != 0 {
			t.Fatalf("unexpected compare: %d", cmp)
		} else if cmp := klee.CompareArray(klee.NewArray(0, 1), klee.NewArray(0, 2)); cmp != -1 {
			t.Fatalf("unexpected compare: %d", cmp)
		} else if cmp := klee.CompareArray(klee.NewArray(0, 2), klee.NewArray(0, 1)); cmp != 1 {
			t.Fatalf("unexpected compare: %d", cmp)
		}
	})
}

func TestCompareArrayUpdate(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		upd := klee.NewArrayUpdate(klee.NewConstantExpr(0, 32), klee.NewConstantExpr(0, 8), nil)
		if cmp := klee.CompareArrayUpdate(nil, nil); cmp != 0 {
			t.Fatalf("unexpected compare: %d", cmp)
		} else if cmp := klee.CompareArrayUpdate(nil, upd); cmp != -1 {
			t.Fatalf("unexpected compare: %d", cmp)
		} else if cmp := klee.CompareArrayUpdate(upd, nil); cmp != 1 {
			t.Fatalf("unexpected compare: %d", cmp)
		}
	})

	t.Run("Index", func(t *testing.T) {
		a := klee.NewArrayUpdate(klee.NewConstantExpr(0, 32), klee.NewConstantExpr(0, 8), nil)
		b := klee.NewArrayUpdate(klee.NewConstantExpr(1, 32), klee.NewConstantExpr(0, 8), nil)
		if cmp := klee.CompareArrayUpdate(a, a); cmp != 0 {
			t.Fatalf("unexpected compare: %d", cmp)
		} else if cmp := klee.CompareArrayUpdate(a, b); cmp != -1 {
			t.Fatalf("unexpected compare: %d", cmp)
		} else if cmp := klee.CompareArrayUpdate(b, a); cmp != 1 {
			t.Fatalf("unexpected compare: %d", cmp)
		}
	})

	t.Run("Value", func(t *testing.T) {
		a := klee.NewArrayUpdate(klee.NewConstantExpr(0, 32), klee.NewConstantExpr(0, 8), nil)
		b := klee.NewArrayUpdate(klee.NewConstantExpr(0, 32), klee.NewConstantExpr(1, 8), nil)
		if cmp := klee.CompareArrayUpdate(a, a); cmp != 0 {
			t.Fatalf("unexpected compare: %d", cmp)
		} else if cmp := klee.CompareArrayUpdate(a, b); cmp != -1 {
			t.Fatalf("unexpected compare: %d", cmp)
		} else if cmp := klee.CompareArrayUpdate(b, a); cmp != 1 {
			t.Fatalf("unexpected compare: %d", cmp)
		}
	})

	t.Run("Next", func(t *testing.T) {
		a := klee.NewArrayUpdate(klee.NewConstantExpr(0, 32), klee.NewConstantExpr(0, 8), nil)
		b := klee.NewArrayUpdate(klee.NewConstantExpr(0, 32), klee.NewConstantExpr(0, 8), klee.NewArrayUpdate(klee.NewConstantExpr(0, 32), klee.NewConstantExpr(0, 8), nil))
		if cmp := klee.CompareArrayUpdate(a, a); cmp != 0 {
			t.Fatalf("unexpected compare: %d", cmp)
		} else if cmp := klee.CompareArrayUpdate(a, b); cmp != -1 {
			t.Fatalf("unexpected compare: %d", cmp)
		} else if cmp := klee.CompareArrayUpdate(b, a); cmp != 1 {
			t.Fatalf("unexpected compare: %d", cmp)
		}
	})
}
