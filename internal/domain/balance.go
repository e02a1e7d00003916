package domain

// ComputeRunningBalances computes the balance-after value for every
// non-deleted entry, keyed by entry id. The walk is anchored at the
// opening balance entry when one is present: the anchor's balance is its
// own amount (the configured starting point, not a movement), entries
// after it accumulate forward and entries before it are derived by
// walking backward. Without an anchor the balance accumulates from zero
// at the earliest entry.
//
// Soft-deleted entries are excluded entirely: they neither contribute to
// the walk nor receive a balance. The computation is a single linear pass
// in each direction; the ledger view recomputes it on every data refresh.
func ComputeRunningBalances(entries []*Entry) map[string]int64 {
	live := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		if !e.IsDeleted() {
			live = append(live, e)
		}
	}

	balances := make(map[string]int64, len(live))
	if len(live) == 0 {
		return balances
	}

	ordered := make([]*Entry, len(live))
	copy(ordered, live)
	SortChronological(ordered)

	anchor := -1
	for i, e := range ordered {
		if e.IsOpeningAnchor() {
			anchor = i
			break
		}
	}

	if anchor < 0 {
		var running int64
		for _, e := range ordered {
			running += e.Amount
			balances[e.ID] = running
		}
		return balances
	}

	// The anchor's amount is the starting balance itself.
	balances[ordered[anchor].ID] = ordered[anchor].Amount

	running := ordered[anchor].Amount
	for i := anchor + 1; i < len(ordered); i++ {
		running += ordered[i].Amount
		balances[ordered[i].ID] = running
	}

	// Out-of-order historical inserts before the anchor walk backward:
	// balance[i] = balance[i+1] - amount[i+1], where the anchor's amount
	// counts as zero movement.
	running = ordered[anchor].Amount
	for i := anchor - 1; i >= 0; i-- {
		if i+1 != anchor {
			running -= ordered[i+1].Amount
		}
		balances[ordered[i].ID] = running
	}

	return balances
}
