package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
)

func productA() ProductInfo {
	return ProductInfo{ID: id.MustParse("0198d1f0-0000-7000-8000-00000000000a"), Name: "A", UnitPrice: types.NewMoneyFromInt(10000)}
}

func productB() ProductInfo {
	return ProductInfo{ID: id.MustParse("0198d1f0-0000-7000-8000-00000000000b"), Name: "B", UnitPrice: types.NewMoneyFromInt(5000)}
}

// reserved + available must equal the initially seeded quantity after any
// sequence of mutations.
func assertConservation(t *testing.T, c *Cart, p ProductInfo, initial int64) {
	t.Helper()
	var reserved int64
	for _, l := range c.Snapshot() {
		if l.ProductID == p.ID {
			reserved = l.Quantity
		}
	}
	assert.Equal(t, initial, reserved+c.Available(p.ID),
		"conservation broken: reserved=%d available=%d initial=%d", reserved, c.Available(p.ID), initial)
}

func TestAdd_MergesLines(t *testing.T) {
	c := New()
	a := productA()

	require.NoError(t, c.Add(a, 3))
	require.NoError(t, c.Add(a, 999)) // seed ignored after first touch

	lines := c.Snapshot()
	require.Len(t, lines, 1)
	assert.EqualValues(t, 2, lines[0].Quantity)
	assert.EqualValues(t, 1, c.Available(a.ID))
	assertConservation(t, c, a, 3)
}

func TestAdd_RejectsWhenExhausted(t *testing.T) {
	c := New()
	a := productA()

	require.NoError(t, c.Add(a, 1))
	err := c.Add(a, 1)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	lines := c.Snapshot()
	require.Len(t, lines, 1)
	assert.EqualValues(t, 1, lines[0].Quantity, "rejected add must not change the line")
	assertConservation(t, c, a, 1)
}

func TestAdd_ZeroAvailableNeverAddsLine(t *testing.T) {
	c := New()
	a := productA()

	err := c.Add(a, 0)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
	assert.Empty(t, c.Snapshot())
}

func TestRemove_RestoresAvailability(t *testing.T) {
	c := New()
	a := productA()

	require.NoError(t, c.Add(a, 3))
	require.NoError(t, c.Add(a, 3))
	require.NoError(t, c.Remove(a.ID))

	assert.Empty(t, c.Snapshot())
	assert.EqualValues(t, 3, c.Available(a.ID))
}

func TestSetQuantity_DeltaAdmission(t *testing.T) {
	c := New()
	a := productA()

	require.NoError(t, c.Add(a, 5))

	// grow within availability
	require.NoError(t, c.SetQuantity(a.ID, 4))
	assert.EqualValues(t, 1, c.Available(a.ID))
	assertConservation(t, c, a, 5)

	// grow past availability
	err := c.SetQuantity(a.ID, 6)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
	assertConservation(t, c, a, 5)

	// shrink restores
	require.NoError(t, c.SetQuantity(a.ID, 1))
	assert.EqualValues(t, 4, c.Available(a.ID))
	assertConservation(t, c, a, 5)
}

func TestSetQuantity_FloorIsOne(t *testing.T) {
	c := New()
	a := productA()
	require.NoError(t, c.Add(a, 2))

	err := c.SetQuantity(a.ID, 0)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestUpdateDiscount_ClampsNegative(t *testing.T) {
	c := New()
	a := productA()
	require.NoError(t, c.Add(a, 2))

	require.NoError(t, c.UpdateDiscount(a.ID, types.NewMoneyFromInt(-500)))
	assert.True(t, c.Snapshot()[0].DiscountPerUnit.IsZero())

	require.NoError(t, c.UpdateDiscount(a.ID, types.NewMoneyFromInt(500)))
	assert.True(t, c.Snapshot()[0].DiscountPerUnit.Equal(types.NewMoneyFromInt(500)))
	assertConservation(t, c, a, 2)
}

func TestClear_RestoresEverything(t *testing.T) {
	c := New()
	a, b := productA(), productB()

	require.NoError(t, c.Add(a, 3))
	require.NoError(t, c.Add(a, 3))
	require.NoError(t, c.Add(b, 1))
	c.Clear()

	assert.True(t, c.IsEmpty())
	assert.EqualValues(t, 3, c.Available(a.ID))
	assert.EqualValues(t, 1, c.Available(b.ID))
}

func TestTotals(t *testing.T) {
	// 2x A (10000) + 1x B (5000) -> subtotal 25000
	c := New()
	a, b := productA(), productB()

	require.NoError(t, c.Add(a, 3))
	require.NoError(t, c.Add(a, 3))
	require.NoError(t, c.Add(b, 1))

	assert.True(t, c.Subtotal().Equal(types.NewMoneyFromInt(25000)), "subtotal = %s", c.Subtotal())
	assert.True(t, c.DiscountTotal().IsZero())
	assert.True(t, c.Total().Equal(types.NewMoneyFromInt(25000)))

	require.NoError(t, c.UpdateDiscount(a.ID, types.NewMoneyFromInt(1000)))
	assert.True(t, c.DiscountTotal().Equal(types.NewMoneyFromInt(2000)))
	assert.True(t, c.Total().Equal(types.NewMoneyFromInt(23000)))
}

func TestRegistry_LazyCreateAndDrop(t *testing.T) {
	r := NewRegistry()

	c1 := r.Get("pos-1")
	require.NotNil(t, c1)
	assert.Same(t, c1, r.Get("pos-1"))
	assert.NotSame(t, c1, r.Get("pos-2"))

	r.Drop("pos-1")
	assert.NotSame(t, c1, r.Get("pos-1"))
}
