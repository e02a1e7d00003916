package domain

import (
	"strings"
	"time"
)

// Category is a bookkeeping category an entry may reference.
type Category struct {
	ID         string
	BusinessID string
	Name       string
	Archived   bool
	CreatedAt  time.Time
}

// CategoryNameMap builds the name lookup the view layer and issue
// detection receive as an explicit parameter.
func CategoryNameMap(categories []*Category) map[string]string {
	m := make(map[string]string, len(categories))
	for _, c := range categories {
		m[c.ID] = c.Name
	}
	return m
}

// IsUncategorizedName reports whether a resolved category name counts as
// missing for issue detection.
func IsUncategorizedName(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	return n == "" || n == "uncategorized"
}
