package domain

import (
	"sort"
	"strings"
	"time"
)

// IssueConfig holds the product tuning constants for issue detection.
// Defaults preserve the observed behavior; they are configuration, not law.
type IssueConfig struct {
	StaleCheckDays       int
	DupWindowCheckDays   int
	DupWindowOtherDays   int
	RevertHeavyThreshold int
}

// DefaultIssueConfig returns the default tuning constants.
func DefaultIssueConfig() IssueConfig {
	return IssueConfig{
		StaleCheckDays:       45,
		DupWindowCheckDays:   30,
		DupWindowOtherDays:   7,
		RevertHeavyThreshold: 3,
	}
}

// LedgerIssues are the advisory ledger-side findings. They are derived on
// every snapshot, never persisted and never block a write.
type LedgerIssues struct {
	Duplicates      map[string]bool // entry id -> in a duplicate cluster
	StaleChecks     map[string]bool // entry id -> uncleared check past threshold
	MissingCategory map[string]bool // entry id -> no usable category
}

// Count returns the total number of flagged entries across all findings.
func (li LedgerIssues) Count() int {
	seen := make(map[string]bool)
	for id := range li.Duplicates {
		seen[id] = true
	}
	for id := range li.StaleChecks {
		seen[id] = true
	}
	for id := range li.MissingCategory {
		seen[id] = true
	}
	return len(seen)
}

// DetectLedgerIssues runs all ledger-side detectors over the entry
// snapshot. It is a pure function of its inputs; today is the detector's
// reference clock.
func DetectLedgerIssues(entries []*Entry, categoryNames map[string]string, today time.Time, cfg IssueConfig) LedgerIssues {
	issues := LedgerIssues{
		Duplicates:      detectDuplicates(entries, cfg),
		StaleChecks:     make(map[string]bool),
		MissingCategory: make(map[string]bool),
	}

	staleBefore := DateOnly(today).AddDate(0, 0, -cfg.StaleCheckDays)

	for _, e := range entries {
		if e.IsDeleted() || e.IsOpeningAnchor() {
			continue
		}

		if e.Method == MethodCheck && e.Date.Before(staleBefore) {
			issues.StaleChecks[e.ID] = true
		}

		if e.Type == EntryTypeTransfer || e.Type == EntryTypeAdjustment {
			continue
		}
		if e.CategoryID == "" || IsUncategorizedName(categoryNames[e.CategoryID]) {
			issues.MissingCategory[e.ID] = true
		}
	}

	return issues
}

// detectDuplicates groups entries by (check bucket, exact amount, folded
// payee) and marks every entry that falls in any sliding time window
// holding two or more entries. Checks use a wider window than other
// methods since checks routinely clear late.
func detectDuplicates(entries []*Entry, cfg IssueConfig) map[string]bool {
	type bucketKey struct {
		isCheck bool
		amount  int64
		payee   string
	}

	buckets := make(map[bucketKey][]*Entry)
	for _, e := range entries {
		if e.IsDeleted() || e.IsOpeningAnchor() {
			continue
		}
		key := bucketKey{
			isCheck: e.Method == MethodCheck,
			amount:  e.Amount,
			payee:   strings.ToLower(strings.TrimSpace(e.Payee)),
		}
		buckets[key] = append(buckets[key], e)
	}

	dups := make(map[string]bool)
	for key, bucket := range buckets {
		if len(bucket) < 2 {
			continue
		}

		windowDays := cfg.DupWindowOtherDays
		if key.isCheck {
			windowDays = cfg.DupWindowCheckDays
		}
		window := time.Duration(windowDays) * 24 * time.Hour

		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].Date.Before(bucket[j].Date)
		})

		// Two-pointer sweep: for each right edge, shrink the left edge
		// until the window fits, then mark everything inside when the
		// window holds at least two entries.
		left := 0
		for right := 1; right < len(bucket); right++ {
			for bucket[right].Date.Sub(bucket[left].Date) > window {
				left++
			}
			if right > left {
				for i := left; i <= right; i++ {
					dups[bucket[i].ID] = true
				}
			}
		}
	}

	return dups
}

// ReconciliationIssues are the advisory reconciliation-side findings.
type ReconciliationIssues struct {
	// NotInView lists active group ids referencing a bank transaction or
	// entry missing from the loaded dataset. This diagnoses filter scope,
	// not data corruption.
	NotInView []string
	// RevertHeavy lists bank transaction ids with enough voided groups to
	// warrant human review.
	RevertHeavy []string
}

// DetectReconciliationIssues derives the reconciliation-side findings
// from the group records and the currently loaded item ids.
func DetectReconciliationIssues(groups []*MatchGroup, loadedBankTxnIDs, loadedEntryIDs map[string]bool, cfg IssueConfig) ReconciliationIssues {
	var issues ReconciliationIssues

	voidsPerTxn := make(map[string]int)
	for _, g := range groups {
		switch g.Status {
		case MatchGroupActive:
			if groupOutOfView(g, loadedBankTxnIDs, loadedEntryIDs) {
				issues.NotInView = append(issues.NotInView, g.ID)
			}
		case MatchGroupVoided:
			for _, r := range g.BankTxns {
				voidsPerTxn[r.BankTransactionID]++
			}
		}
	}

	for id, voids := range voidsPerTxn {
		if voids >= cfg.RevertHeavyThreshold {
			issues.RevertHeavy = append(issues.RevertHeavy, id)
		}
	}

	sort.Strings(issues.NotInView)
	sort.Strings(issues.RevertHeavy)

	return issues
}

func groupOutOfView(g *MatchGroup, bankIDs, entryIDs map[string]bool) bool {
	for _, r := range g.BankTxns {
		if !bankIDs[r.BankTransactionID] {
			return true
		}
	}
	for _, r := range g.Entries {
		if !entryIDs[r.EntryID] {
			return true
		}
	}
	return false
}
