package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestItemStatusTransitions(t *testing.T) {
	allStatuses := []ItemStatus{ItemOrdered, ItemPreparing, ItemDone, ItemCancelled}

	allowed := map[ItemStatus]map[ItemStatus]bool{
		ItemOrdered:   {ItemPreparing: true, ItemCancelled: true},
		ItemPreparing: {ItemDone: true},
		ItemDone:      {},
		ItemCancelled: {},
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			got := from.CanTransitionTo(to)
			want := allowed[from][to]
			assert.Equalf(t, want, got, "%s -> %s", from, to)
		}
	}
}

func TestItemStatusPreparingCannotCancel(t *testing.T) {
	// Ingredients are already consumed at PREPARING; cancelling would
	// silently lose inventory.
	assert.False(t, ItemPreparing.CanTransitionTo(ItemCancelled))
}

func TestItemStatusTerminal(t *testing.T) {
	assert.False(t, ItemOrdered.Terminal())
	assert.False(t, ItemPreparing.Terminal())
	assert.True(t, ItemDone.Terminal())
	assert.True(t, ItemCancelled.Terminal())
}

func TestTotalOfSkipsCancelled(t *testing.T) {
	items := []OrderItem{
		{Status: ItemDone, LineTotal: decimal.RequireFromString("120.00")},
		{Status: ItemCancelled, LineTotal: decimal.RequireFromString("55.00")},
		{Status: ItemOrdered, LineTotal: decimal.RequireFromString("30.50")},
	}

	assert.True(t, TotalOf(items).Equal(decimal.RequireFromString("150.50")))
}

func TestTotalOfEmpty(t *testing.T) {
	assert.True(t, TotalOf(nil).IsZero())
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, OrderUnpaid.Valid())
	assert.False(t, OrderStatus("PENDING").Valid())
	assert.True(t, TypeDineIn.Valid())
	assert.False(t, OrderType("DRIVE_THRU").Valid())
	assert.True(t, ItemPreparing.Valid())
	assert.False(t, ItemStatus("ready").Valid())
}
