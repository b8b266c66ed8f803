package services

import (
	"testing"

	"github.com/ostapdev/go-shop/app/models"
	"github.com/stretchr/testify/assert"
)

func TestDiffLineItemsEmptyCurrent(t *testing.T) {
	diff := diffLineItems(nil, []TargetLine{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 0},
	})

	assert.Equal(t, []TargetLine{{ProductID: "p1", Quantity: 2}}, diff.Inserted)
	assert.Empty(t, diff.Updated)
	assert.Empty(t, diff.Deleted)
}

func TestDiffLineItemsClassification(t *testing.T) {
	current := []models.OrderItem{
		{ProductID: "kept", Quantity: 2},
		{ProductID: "changed", Quantity: 1},
		{ProductID: "dropped", Quantity: 3},
		{ProductID: "zeroed", Quantity: 1},
	}
	target := []TargetLine{
		{ProductID: "kept", Quantity: 2},
		{ProductID: "changed", Quantity: 5},
		{ProductID: "zeroed", Quantity: 0},
		{ProductID: "new", Quantity: 1},
	}

	diff := diffLineItems(current, target)

	assert.Equal(t, []TargetLine{{ProductID: "new", Quantity: 1}}, diff.Inserted)
	assert.Equal(t, []TargetLine{{ProductID: "changed", Quantity: 5}}, diff.Updated)
	assert.ElementsMatch(t, []string{"zeroed", "dropped"}, diff.Deleted)
}

func TestDiffLineItemsUnchangedIsNoop(t *testing.T) {
	current := []models.OrderItem{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 7},
	}
	target := []TargetLine{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 7},
	}

	diff := diffLineItems(current, target)

	assert.Empty(t, diff.Inserted)
	assert.Empty(t, diff.Updated)
	assert.Empty(t, diff.Deleted)
}

// Every product in either set ends up in exactly one bucket or is a no-op.
func TestDiffLineItemsCompleteness(t *testing.T) {
	current := []models.OrderItem{
		{ProductID: "a", Quantity: 1},
		{ProductID: "b", Quantity: 2},
		{ProductID: "c", Quantity: 3},
	}
	target := []TargetLine{
		{ProductID: "b", Quantity: 2},
		{ProductID: "c", Quantity: 9},
		{ProductID: "d", Quantity: 4},
	}

	diff := diffLineItems(current, target)

	touched := map[string]int{}
	for _, line := range diff.Inserted {
		touched[line.ProductID]++
	}
	for _, line := range diff.Updated {
		touched[line.ProductID]++
	}
	for _, id := range diff.Deleted {
		touched[id]++
	}

	for id, count := range touched {
		assert.Equalf(t, 1, count, "product %s classified %d times", id, count)
	}
	assert.Equal(t, map[string]int{"a": 1, "c": 1, "d": 1}, touched)
}
