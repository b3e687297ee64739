package orders

// reconcilePlan is the outcome of matching a partial-update payload against the
// order's existing item set.
type reconcilePlan struct {
	toUpdate []ItemEntry // entries whose ID matches an existing item
	toCreate []ItemEntry // entries with no ID, or an ID that matches nothing
}

// reconcileItems matches payload entries to existing item ids. An entry carrying
// the id of an existing item overwrites that item; everything else is inserted as
// new. Existing items not mentioned in the payload are left untouched.
func reconcileItems(existingIDs []int64, payload []ItemEntry) reconcilePlan {
	existing := make(map[int64]struct{}, len(existingIDs))
	for _, id := range existingIDs {
		existing[id] = struct{}{}
	}

	var plan reconcilePlan
	for _, entry := range payload {
		if entry.ID != nil {
			if _, ok := existing[*entry.ID]; ok {
				plan.toUpdate = append(plan.toUpdate, entry)
				continue
			}
		}
		plan.toCreate = append(plan.toCreate, entry)
	}
	return plan
}
