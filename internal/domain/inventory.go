package domain

import (
	"fmt"
	"sort"
)

// Inventory is a multiset of item identifiers mapped to their counts.
// Zero counts are never stored.
type Inventory map[string]int

// NewInventory counts the given item identifiers.
func NewInventory(items []string) Inventory {
	inv := make(Inventory, len(items))
	inv.Credit(items)
	return inv
}

// Clone returns an independent copy.
func (inv Inventory) Clone() Inventory {
	out := make(Inventory, len(inv))
	for item, n := range inv {
		out[item] = n
	}
	return out
}

// Count returns how many of item the inventory holds.
func (inv Inventory) Count(item string) int {
	return inv[item]
}

// Total returns the number of items across all identifiers.
func (inv Inventory) Total() int {
	total := 0
	for _, n := range inv {
		total += n
	}
	return total
}

// Items expands the multiset into a sorted list of identifiers.
func (inv Inventory) Items() []string {
	keys := make([]string, 0, len(inv))
	for item := range inv {
		keys = append(keys, item)
	}
	sort.Strings(keys)

	items := make([]string, 0, inv.Total())
	for _, item := range keys {
		for range inv[item] {
			items = append(items, item)
		}
	}
	return items
}

// Equal reports whether both inventories hold the same counts.
func (inv Inventory) Equal(other Inventory) bool {
	if len(inv) != len(other) {
		return false
	}
	for item, n := range inv {
		if other[item] != n {
			return false
		}
	}
	return true
}

// Credit adds items.
func (inv Inventory) Credit(items []string) {
	for _, item := range items {
		inv[item]++
	}
}

// Debit removes items only if every one of them is held in the requested
// quantity. On shortage the inventory is left untouched.
func (inv Inventory) Debit(accountID string, items []string) error {
	required := make(map[string]int, len(items))
	for _, item := range items {
		required[item]++
	}

	missing := make(map[string]int)
	for item, n := range required {
		if have := inv[item]; have < n {
			missing[item] = n - have
		}
	}
	if len(missing) > 0 {
		return &InsufficientInventoryError{AccountID: accountID, Missing: missing}
	}

	for item, n := range required {
		inv[item] -= n
		if inv[item] == 0 {
			delete(inv, item)
		}
	}

	return nil
}

// Validate checks the non-negative count invariant.
func (inv Inventory) Validate() error {
	for item, n := range inv {
		if n < 0 {
			return fmt.Errorf("%w: item %q has negative count %d", ErrInternalInconsistency, item, n)
		}
	}
	return nil
}
