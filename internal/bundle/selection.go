// Package bundle implements the item allocation engine for composite
// catalog items: each bundle group requires an exact quantity of picks from
// its candidate list.
package bundle

import (
	"github.com/poparab/jarz-pos-terminal/internal/erp"
)

// Selection tracks a user's running per-group, per-item picks for one
// bundle. It is seeded empty on entry to the bundle picker.
type Selection struct {
	bundle *erp.Bundle
	// picks[groupName][itemID] = selected count
	picks map[string]map[string]int
}

// NewSelection starts an empty selection for the bundle.
func NewSelection(b *erp.Bundle) *Selection {
	return &Selection{
		bundle: b,
		picks:  make(map[string]map[string]int),
	}
}

// Bundle returns the bundle under selection.
func (s *Selection) Bundle() *erp.Bundle {
	return s.bundle
}

// Count returns the selected count for an item within a group.
func (s *Selection) Count(group, itemID string) int {
	return s.picks[group][itemID]
}

// GroupTotal returns the summed selected count for a group.
func (s *Selection) GroupTotal(group string) int {
	total := 0
	for _, qty := range s.picks[group] {
		total += qty
	}
	return total
}

// ChangeQuantity applies a +1/-1 delta to an item's count within a group.
// A +1 is rejected when the group already holds its required quantity; a -1
// is rejected when the item's count is already zero. Rejections are no-ops
// and return false.
func (s *Selection) ChangeQuantity(group, itemID string, delta int) bool {
	g := s.findGroup(group)
	if g == nil || (delta != 1 && delta != -1) {
		return false
	}

	current := s.Count(group, itemID)
	if delta == 1 && s.GroupTotal(group) >= g.Quantity {
		return false
	}
	if delta == -1 && current == 0 {
		return false
	}

	if s.picks[group] == nil {
		s.picks[group] = make(map[string]int)
	}
	s.picks[group][itemID] = current + delta
	return true
}

// IsComplete reports whether every group's selected total equals its
// required quantity exactly.
func (s *Selection) IsComplete() bool {
	for _, g := range s.bundle.Groups {
		if s.GroupTotal(g.Name) != g.Quantity {
			return false
		}
	}
	return true
}

// Confirm expands the selection into a flat list of concrete items, each
// repeated by its selected count, in group then candidate order. It returns
// nil while the selection is incomplete.
func (s *Selection) Confirm() []erp.Product {
	if !s.IsComplete() {
		return nil
	}

	var selected []erp.Product
	for _, g := range s.bundle.Groups {
		groupPicks := s.picks[g.Name]
		for _, item := range g.Items {
			for i := 0; i < groupPicks[item.ID]; i++ {
				selected = append(selected, item)
			}
		}
	}
	return selected
}

func (s *Selection) findGroup(name string) *erp.BundleGroup {
	for i := range s.bundle.Groups {
		if s.bundle.Groups[i].Name == name {
			return &s.bundle.Groups[i]
		}
	}
	return nil
}
