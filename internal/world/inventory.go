package world

// Item is a stack of one item template in the player's inventory.
type Item struct {
	ItemID string `json:"item_id"`
	Count  int    `json:"count"`
}

// Inventory holds the player's items and currency. Order is stable so saves
// round-trip byte-identically.
type Inventory struct {
	Items []Item `json:"items"`
	Gold  int64  `json:"gold"`
}

// Count returns how many of the given item the inventory holds.
func (inv *Inventory) Count(itemID string) int {
	for _, it := range inv.Items {
		if it.ItemID == itemID {
			return it.Count
		}
	}
	return 0
}

// Add increases the stack for itemID, creating it if absent.
func (inv *Inventory) Add(itemID string, n int) {
	for i := range inv.Items {
		if inv.Items[i].ItemID == itemID {
			inv.Items[i].Count += n
			return
		}
	}
	inv.Items = append(inv.Items, Item{ItemID: itemID, Count: n})
}

// Remove decrements the stack and reports whether enough items were held.
// Empty stacks are dropped.
func (inv *Inventory) Remove(itemID string, n int) bool {
	for i := range inv.Items {
		if inv.Items[i].ItemID != itemID {
			continue
		}
		if inv.Items[i].Count < n {
			return false
		}
		inv.Items[i].Count -= n
		if inv.Items[i].Count == 0 {
			inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
		}
		return true
	}
	return false
}
