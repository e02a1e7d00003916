package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
)

// Bank statements pad descriptions with rail noise that carries no signal
// for counterpart matching.
var noiseTokens = map[string]bool{
	"ach": true, "pos": true, "debit": true, "credit": true,
	"card": true, "purchase": true, "payment": true, "pmt": true,
	"web": true, "ref": true, "trn": true, "id": true, "des": true,
	"withdrawal": true, "deposit": true, "transfer": true,
	"recurring": true, "pending": true, "online": true,
}

const suggestDateWindowDays = 3

// SuggestCounterparts ranks candidate entries as best-guess counterparts
// for a bank transaction, for pre-selecting a proposal when the user
// initiates a match from the bank side. The ranking is deterministic:
// absolute amount difference ascending, then date distance in days
// ascending, then token overlap between normalized descriptions. Token
// overlap only participates when the amount difference is exactly zero
// and the dates are within three days; it never overrides an
// exact-amount, close-date match. Seeding never auto-submits.
func SuggestCounterparts(txn *BankTransaction, candidates []*Entry, limit int) []*Entry {
	type scored struct {
		entry      *Entry
		amountDiff int64
		dateDist   int
		overlap    int
	}

	txnTokens := normalizeTokens(txn.Description)

	ranked := make([]scored, 0, len(candidates))
	for _, e := range candidates {
		if e.IsDeleted() || e.IsOpeningAnchor() {
			continue
		}

		s := scored{
			entry:      e,
			amountDiff: absCents(absCents(e.Amount) - absCents(txn.Amount)),
			dateDist:   dateDistanceDays(e.Date, txn.PostedAt),
		}
		if s.amountDiff == 0 && s.dateDist <= suggestDateWindowDays {
			s.overlap = tokenOverlap(txnTokens, normalizeTokens(e.Payee))
		}
		ranked = append(ranked, s)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.amountDiff != b.amountDiff {
			return a.amountDiff < b.amountDiff
		}
		if a.dateDist != b.dateDist {
			return a.dateDist < b.dateDist
		}
		if a.overlap != b.overlap {
			return a.overlap > b.overlap
		}
		return a.entry.ID < b.entry.ID
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]*Entry, len(ranked))
	for i, s := range ranked {
		out[i] = s.entry
	}
	return out
}

// normalizeTokens lowers, splits and strips digits and statement noise
// from a description.
func normalizeTokens(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return -1
			}
			return r
		}, f)
		if len(f) < 2 || noiseTokens[f] {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// tokenOverlap counts tokens of a that appear in b, tolerating a single
// typo on longer tokens.
func tokenOverlap(a, b []string) int {
	overlap := 0
	for _, ta := range a {
		for _, tb := range b {
			if tokensEqual(ta, tb) {
				overlap++
				break
			}
		}
	}
	return overlap
}

func tokensEqual(a, b string) bool {
	if a == b {
		return true
	}
	if len(a) >= 5 && len(b) >= 5 {
		return levenshtein.ComputeDistance(a, b) <= 1
	}
	return false
}

func dateDistanceDays(a, b time.Time) int {
	d := DateOnly(a).Sub(DateOnly(b))
	if d < 0 {
		d = -d
	}
	return int(d / (24 * time.Hour))
}
