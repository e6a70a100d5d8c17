package cart

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItems_Add_MergesSameProductAndSize(t *testing.T) {
	var items Items

	items.Add(Item{ProductID: "p1", Title: "Legging", UnitPrice: 120, Quantity: 1, SelectedSize: "M"})
	items.Add(Item{ProductID: "p1", Title: "Legging", UnitPrice: 120, Quantity: 2, SelectedSize: "M"})

	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestItems_Add_DifferentSizesAreDistinctLines(t *testing.T) {
	var items Items

	items.Add(Item{ProductID: "p1", UnitPrice: 120, SelectedSize: "M"})
	items.Add(Item{ProductID: "p1", UnitPrice: 120, SelectedSize: "L"})

	require.Len(t, items, 2)
	assert.Equal(t, "M", items[0].SelectedSize)
	assert.Equal(t, "L", items[1].SelectedSize)
}

func TestItems_Add_NoSizeIsItsOwnKey(t *testing.T) {
	var items Items

	items.Add(Item{ProductID: "p1", UnitPrice: 80})
	items.Add(Item{ProductID: "p1", UnitPrice: 80, SelectedSize: "M"})
	items.Add(Item{ProductID: "p1", UnitPrice: 80})

	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)
}

func TestItems_Add_QuantityDefaultsToOne(t *testing.T) {
	var items Items

	items.Add(Item{ProductID: "p1", UnitPrice: 50})
	items.Add(Item{ProductID: "p2", UnitPrice: 50, Quantity: -3})

	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)
}

func TestItems_Add_PreservesInsertionOrder(t *testing.T) {
	var items Items

	items.Add(Item{ProductID: "a", UnitPrice: 1})
	items.Add(Item{ProductID: "b", UnitPrice: 1})
	items.Add(Item{ProductID: "c", UnitPrice: 1})
	items.Add(Item{ProductID: "b", UnitPrice: 1})

	require.Len(t, items, 3)
	assert.Equal(t, "a", items[0].ProductID)
	assert.Equal(t, "b", items[1].ProductID)
	assert.Equal(t, "c", items[2].ProductID)
	assert.Equal(t, 2, items[1].Quantity)
}

func TestItems_Remove(t *testing.T) {
	var items Items
	items.Add(Item{ProductID: "p1", SelectedSize: "M"})
	items.Add(Item{ProductID: "p1", SelectedSize: "L"})

	items.Remove("p1", "M")
	require.Len(t, items, 1)
	assert.Equal(t, "L", items[0].SelectedSize)

	// removing an absent line is a no-op
	items.Remove("p1", "M")
	items.Remove("missing", "")
	assert.Len(t, items, 1)
}

func TestItems_SetQuantity_FloorIsOne(t *testing.T) {
	var items Items
	items.Add(Item{ProductID: "p1", SelectedSize: "M", Quantity: 4})

	items.SetQuantity("p1", "M", 0)
	assert.Equal(t, 4, items[0].Quantity)

	items.SetQuantity("p1", "M", -7)
	assert.Equal(t, 4, items[0].Quantity)

	items.SetQuantity("p1", "M", 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestItems_SetQuantity_LeavesOtherFieldsAlone(t *testing.T) {
	var items Items
	items.Add(Item{ProductID: "p1", Title: "Top", UnitPrice: 59.9, SelectedSize: "P", Images: []string{"a.jpg"}})

	items.SetQuantity("p1", "P", 3)

	require.Len(t, items, 1)
	assert.Equal(t, "Top", items[0].Title)
	assert.Equal(t, 59.9, items[0].UnitPrice)
	assert.Equal(t, []string{"a.jpg"}, items[0].Images)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestItems_Clear(t *testing.T) {
	var items Items
	items.Add(Item{ProductID: "p1"})
	items.Add(Item{ProductID: "p2"})

	items.Clear()
	assert.Empty(t, items)
	assert.Zero(t, items.Subtotal())
}

func TestItems_Subtotal(t *testing.T) {
	var items Items
	items.Add(Item{ProductID: "p1", UnitPrice: 100, Quantity: 2})
	items.Add(Item{ProductID: "p2", UnitPrice: 49.9, Quantity: 1})

	assert.InDelta(t, 249.9, items.Subtotal(), 1e-9)
}

// Random add/update/remove sequences must keep Subtotal equal to the sum
// over the surviving lines.
func TestItems_Subtotal_RandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	products := []string{"p1", "p2", "p3", "p4"}
	sizes := []string{"", "P", "M", "G"}

	var items Items
	for i := 0; i < 500; i++ {
		pid := products[rng.Intn(len(products))]
		size := sizes[rng.Intn(len(sizes))]

		switch rng.Intn(4) {
		case 0, 1:
			items.Add(Item{
				ProductID:    pid,
				UnitPrice:    float64(rng.Intn(20000)) / 100,
				Quantity:     rng.Intn(5) + 1,
				SelectedSize: size,
			})
		case 2:
			items.SetQuantity(pid, size, rng.Intn(6)) // 0 exercises the floor
		case 3:
			items.Remove(pid, size)
		}

		var want float64
		seen := map[[2]string]bool{}
		for _, it := range items {
			key := [2]string{it.ProductID, it.SelectedSize}
			require.False(t, seen[key], "duplicate line for %v", key)
			seen[key] = true
			require.GreaterOrEqual(t, it.Quantity, 1)
			want += it.UnitPrice * float64(it.Quantity)
		}
		require.InDelta(t, want, items.Subtotal(), 1e-6)
	}
}

func TestItem_LineTotal(t *testing.T) {
	it := Item{UnitPrice: 19.99, Quantity: 3}
	assert.InDelta(t, 59.97, it.LineTotal(), 1e-9)
}

func TestItems_Clone_IsIndependent(t *testing.T) {
	var items Items
	items.Add(Item{ProductID: "p1", Quantity: 1, Images: []string{"a.jpg"}})

	clone := items.Clone()
	clone[0].Quantity = 99
	clone[0].Images[0] = "b.jpg"

	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, "a.jpg", items[0].Images[0])
}
