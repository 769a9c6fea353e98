package models

import "maps"

// Cart maps product id to quantity. Values are treated as immutable
// snapshots: every mutation returns a new Cart and leaves the receiver as is.
type Cart map[string]int

func (c Cart) clone() Cart {
	out := make(Cart, len(c))
	maps.Copy(out, c)
	return out
}

// Add increments productID by one.
func (c Cart) Add(productID string) Cart {
	out := c.clone()
	out[productID]++
	return out
}

// Remove decrements productID by one, floored at zero. A key that reaches
// zero stays in the map; View hides it.
func (c Cart) Remove(productID string) Cart {
	out := c.clone()
	if q := out[productID]; q > 0 {
		out[productID] = q - 1
	}
	return out
}

// Set stores quantity exactly; zero deletes the entry. Callers reject
// negative quantities before calling.
func (c Cart) Set(productID string, quantity int) Cart {
	out := c.clone()
	if quantity <= 0 {
		delete(out, productID)
	} else {
		out[productID] = quantity
	}
	return out
}

func (c Cart) Clear() Cart { return Cart{} }

// View drops non-positive entries and, when exists is non-nil, entries for
// products that no longer exist.
func (c Cart) View(exists func(productID string) bool) Cart {
	out := make(Cart, len(c))
	for id, q := range c {
		if q <= 0 {
			continue
		}
		if exists != nil && !exists(id) {
			continue
		}
		out[id] = q
	}
	return out
}

// IDs returns the product ids referenced by the cart.
func (c Cart) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	return ids
}

// CartOp is a pure cart transition.
type CartOp func(Cart) Cart
