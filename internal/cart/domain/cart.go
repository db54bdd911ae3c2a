package domain

// Entry is one product line in a cart. Quantity is always positive.
type Entry struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Cart holds a session's pending purchases as an ordered sequence of
// entries, unique by product id. It lives only in session state and is
// never written to the relational store.
type Cart struct {
	Entries []Entry `json:"entries"`
}

// Add merges into an existing entry for the product or appends a new one.
// Quantities below 1 are clamped to 1.
func (c *Cart) Add(productID int64, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	for i := range c.Entries {
		if c.Entries[i].ProductID == productID {
			c.Entries[i].Quantity += quantity
			return
		}
	}
	c.Entries = append(c.Entries, Entry{ProductID: productID, Quantity: quantity})
}

// Remove drops the entry for the product. Removing an id that is not in
// the cart is a no-op.
func (c *Cart) Remove(productID int64) {
	for i := range c.Entries {
		if c.Entries[i].ProductID == productID {
			c.Entries = append(c.Entries[:i], c.Entries[i+1:]...)
			return
		}
	}
}

// Items returns a copy of the entries in insertion order.
func (c *Cart) Items() []Entry {
	items := make([]Entry, len(c.Entries))
	copy(items, c.Entries)
	return items
}

func (c *Cart) Clear() {
	c.Entries = nil
}

func (c *Cart) IsEmpty() bool {
	return len(c.Entries) == 0
}
