package cart

import "time"

// Item is one cart line. A line is keyed by (ProductID, SelectedSize);
// SelectedSize is the empty string for products without sizes, and that
// empty value takes part in the key like any other size.
type Item struct {
	ProductID    string   `json:"productId" bson:"product_id" firestore:"productId"`
	Title        string   `json:"title" bson:"title" firestore:"title"`
	UnitPrice    float64  `json:"unitPrice" bson:"unit_price" firestore:"unitPrice"`
	Quantity     int      `json:"quantity" bson:"quantity" firestore:"quantity"`
	Images       []string `json:"images" bson:"images" firestore:"images"`
	SelectedSize string   `json:"selectedSize,omitempty" bson:"selected_size,omitempty" firestore:"selectedSize"`
}

// LineTotal is UnitPrice * Quantity.
func (it Item) LineTotal() float64 {
	return it.UnitPrice * float64(it.Quantity)
}

// Cart is the persisted cart record for one user.
type Cart struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" firestore:"-"`
	UserID    string    `json:"userId" bson:"user_id" firestore:"-"`
	Items     Items     `json:"items" bson:"items" firestore:"items"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at" firestore:"updatedAt"`
}

// Items is an ordered list of cart lines. All mutations preserve insertion
// order and keep the list free of duplicate (ProductID, SelectedSize) keys.
type Items []Item

// Add merges candidate into the list: an existing line with the same
// (ProductID, SelectedSize) has its quantity increased, otherwise the
// candidate is appended. A candidate quantity below 1 defaults to 1.
func (items *Items) Add(candidate Item) {
	if candidate.Quantity < 1 {
		candidate.Quantity = 1
	}

	for i := range *items {
		if (*items)[i].sameLine(candidate.ProductID, candidate.SelectedSize) {
			(*items)[i].Quantity += candidate.Quantity
			return
		}
	}
	*items = append(*items, candidate)
}

// Remove deletes the line matching (productID, size). Absent lines are a
// no-op, not an error.
func (items *Items) Remove(productID, size string) {
	for i := range *items {
		if (*items)[i].sameLine(productID, size) {
			*items = append((*items)[:i], (*items)[i+1:]...)
			return
		}
	}
}

// SetQuantity updates the matching line's quantity. Requests below the floor
// of 1 leave the line unchanged; they never remove it.
func (items Items) SetQuantity(productID, size string, quantity int) {
	if quantity < 1 {
		return
	}
	for i := range items {
		if items[i].sameLine(productID, size) {
			items[i].Quantity = quantity
			return
		}
	}
}

// Clear empties the list.
func (items *Items) Clear() {
	*items = Items{}
}

// Subtotal sums UnitPrice*Quantity over all lines. Full float64 precision;
// rounding is a presentation concern.
func (items Items) Subtotal() float64 {
	var total float64
	for _, it := range items {
		total += it.LineTotal()
	}
	return total
}

// Clone returns an independent copy, safe to hand to another goroutine.
func (items Items) Clone() Items {
	out := make(Items, len(items))
	copy(out, items)
	for i := range out {
		if len(items[i].Images) > 0 {
			out[i].Images = append([]string(nil), items[i].Images...)
		}
	}
	return out
}

func (it Item) sameLine(productID, size string) bool {
	return it.ProductID == productID && it.SelectedSize == size
}
