package services

import "github.com/ostapdev/go-shop/app/models"

// TargetLine is one requested (product, quantity) pair of a bulk order
// update.
type TargetLine struct {
	ProductID string
	Quantity  int
}

// LineDiff is the three-way reconciliation between an order's persisted line
// items and a requested target set, keyed by product identity.
type LineDiff struct {
	Inserted []TargetLine
	Updated  []TargetLine
	Deleted  []string // product ids
}

// diffLineItems classifies target lines against the current set:
//
//   - products only in the target set are inserted
//   - products only in the current set, or targeted with quantity < 1,
//     are deleted
//   - products in both sets whose quantity changed are updated
//
// An empty current set short-circuits: everything valid is an insert.
func diffLineItems(current []models.OrderItem, target []TargetLine) LineDiff {
	var diff LineDiff

	if len(current) == 0 {
		for _, line := range target {
			if line.Quantity >= 1 {
				diff.Inserted = append(diff.Inserted, line)
			}
		}
		return diff
	}

	currentByProduct := make(map[string]models.OrderItem, len(current))
	for _, item := range current {
		currentByProduct[item.ProductID] = item
	}
	targetByProduct := make(map[string]TargetLine, len(target))
	for _, line := range target {
		targetByProduct[line.ProductID] = line
	}

	for _, line := range target {
		existing, ok := currentByProduct[line.ProductID]
		switch {
		case line.Quantity < 1:
			if ok {
				diff.Deleted = append(diff.Deleted, line.ProductID)
			}
		case !ok:
			diff.Inserted = append(diff.Inserted, line)
		case existing.Quantity != line.Quantity:
			diff.Updated = append(diff.Updated, line)
		}
	}

	for _, item := range current {
		if _, ok := targetByProduct[item.ProductID]; !ok {
			diff.Deleted = append(diff.Deleted, item.ProductID)
		}
	}

	return diff
}
