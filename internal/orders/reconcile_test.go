package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func idPtr(id int64) *int64 { return &id }

func TestReconcileItemsMatchesExistingIDs(t *testing.T) {
	existing := []int64{1, 2, 3}
	payload := []ItemEntry{
		{ID: idPtr(2), ProductID: 10, Quantity: 5},
		{ProductID: 11, Quantity: 1},
	}

	plan := reconcileItems(existing, payload)

	assert.Equal(t, []ItemEntry{{ID: idPtr(2), ProductID: 10, Quantity: 5}}, plan.toUpdate)
	assert.Equal(t, []ItemEntry{{ProductID: 11, Quantity: 1}}, plan.toCreate)
}

func TestReconcileItemsUnmatchedIDBecomesCreate(t *testing.T) {
	existing := []int64{1}
	payload := []ItemEntry{
		{ID: idPtr(99), ProductID: 10, Quantity: 2},
	}

	plan := reconcileItems(existing, payload)

	assert.Empty(t, plan.toUpdate)
	assert.Len(t, plan.toCreate, 1)
}

func TestReconcileItemsUnmentionedItemsUntouched(t *testing.T) {
	// Items 1 and 3 are absent from the payload; the plan must not mention them
	// at all, which is what keeps PATCH a merge and not a replace.
	existing := []int64{1, 2, 3}
	payload := []ItemEntry{{ID: idPtr(2), ProductID: 7, Quantity: 4}}

	plan := reconcileItems(existing, payload)

	assert.Len(t, plan.toUpdate, 1)
	assert.Empty(t, plan.toCreate)
}

func TestReconcileItemsEmptyPayload(t *testing.T) {
	plan := reconcileItems([]int64{1, 2}, nil)
	assert.Empty(t, plan.toUpdate)
	assert.Empty(t, plan.toCreate)
}

func TestReconcileItemsNoExisting(t *testing.T) {
	payload := []ItemEntry{
		{ProductID: 1, Quantity: 1},
		{ID: idPtr(5), ProductID: 2, Quantity: 2},
	}
	plan := reconcileItems(nil, payload)
	assert.Empty(t, plan.toUpdate)
	assert.Len(t, plan.toCreate, 2)
}
