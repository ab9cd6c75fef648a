package msgraph

import (
	"fmt"
	"io"
	"strings"

	"github.com/Tiliavir/tick/internal/model"
	"github.com/Tiliavir/tick/internal/roster"
)

// SyncResult holds counters for a sync operation.
type SyncResult struct {
	Imported  int
	Updated   int
	Unchanged int
	Skipped   int
}

// SyncOptions configures a sync run.
type SyncOptions struct {
	DryRun bool
	// Out receives one progress line per user; nil discards them.
	Out io.Writer
}

// shouldSkip returns true if the user should not enter the roster.
func shouldSkip(u User) bool {
	if u.AccountEnabled != nil && !*u.AccountEnabled {
		return true
	}
	if strings.TrimSpace(u.DisplayName) == "" {
		return true
	}
	return strings.TrimSpace(u.EmployeeID) == "" && u.ID == ""
}

// MapUser converts a Graph user into a roster employee. The HR employee
// number is preferred over the directory object id, because that is what
// people type at the terminal.
func MapUser(u User) model.Employee {
	id := strings.TrimSpace(u.EmployeeID)
	if id == "" {
		id = u.ID
	}
	return model.Employee{
		ID:         id,
		Name:       strings.TrimSpace(u.DisplayName),
		Department: strings.TrimSpace(u.Department),
		Email:      strings.TrimSpace(u.Mail),
		Source:     "msgraph",
	}
}

// SyncUsers merges users into r. With DryRun the roster is left untouched
// and the counters describe what would change.
func SyncUsers(users []User, r *roster.Roster, opts SyncOptions) SyncResult {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	target := r
	if opts.DryRun {
		target = roster.New(r.All())
	}

	var result SyncResult
	for _, u := range users {
		if shouldSkip(u) {
			fmt.Fprintf(out, "  – Skipped:  %s\n", displayOrID(u))
			result.Skipped++
			continue
		}
		e := MapUser(u)
		m := target.Merge([]model.Employee{e})
		switch {
		case m.Added > 0:
			fmt.Fprintf(out, "  ✓ Imported: %s (%s)\n", e.Name, e.ID)
			result.Imported++
		case m.Updated > 0:
			fmt.Fprintf(out, "  ↑ Updated:  %s (%s)\n", e.Name, e.ID)
			result.Updated++
		default:
			result.Unchanged++
		}
	}
	return result
}

func displayOrID(u User) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.ID
}
