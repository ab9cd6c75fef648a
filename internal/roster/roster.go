// Package roster holds the employee directory used to label findings and
// payroll rows. Classification never depends on it.
package roster

import (
	"sort"
	"strings"

	"github.com/Tiliavir/tick/internal/model"
)

// Roster is an in-memory employee lookup keyed by id.
type Roster struct {
	byID map[string]model.Employee
}

// New builds a roster from employees. Later entries win on duplicate ids.
func New(employees []model.Employee) *Roster {
	r := &Roster{byID: make(map[string]model.Employee, len(employees))}
	for _, e := range employees {
		e.ID = strings.TrimSpace(e.ID)
		if e.ID == "" {
			continue
		}
		r.byID[e.ID] = e
	}
	return r
}

// Lookup returns the employee with the given id.
func (r *Roster) Lookup(id string) (model.Employee, bool) {
	if r == nil {
		return model.Employee{}, false
	}
	e, ok := r.byID[id]
	return e, ok
}

// Get is Lookup without the presence flag.
func (r *Roster) Get(id string) model.Employee {
	e, _ := r.Lookup(id)
	return e
}

// Label returns the employee's display name, or "Unknown (<id>)".
func (r *Roster) Label(id string) string {
	if e, ok := r.Lookup(id); ok && e.Name != "" {
		return e.Name
	}
	return "Unknown (" + id + ")"
}

// Len returns the number of employees.
func (r *Roster) Len() int {
	if r == nil {
		return 0
	}
	return len(r.byID)
}

// All returns every employee sorted by name, then id.
func (r *Roster) All() []model.Employee {
	out := []model.Employee{}
	if r == nil {
		return out
	}
	for _, e := range r.byID {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// MergeResult counts the outcome of a Merge.
type MergeResult struct {
	Added     int
	Updated   int
	Unchanged int
}

// Merge upserts incoming into the roster by id. Empty fields in an incoming
// record keep the existing value.
func (r *Roster) Merge(incoming []model.Employee) MergeResult {
	var res MergeResult
	if r.byID == nil {
		r.byID = map[string]model.Employee{}
	}
	for _, in := range incoming {
		in.ID = strings.TrimSpace(in.ID)
		if in.ID == "" {
			continue
		}
		cur, ok := r.byID[in.ID]
		if !ok {
			r.byID[in.ID] = in
			res.Added++
			continue
		}
		next := cur
		if in.Name != "" {
			next.Name = in.Name
		}
		if in.Department != "" {
			next.Department = in.Department
		}
		if in.Email != "" {
			next.Email = in.Email
		}
		if in.Source != "" {
			next.Source = in.Source
		}
		if next == cur {
			res.Unchanged++
			continue
		}
		r.byID[in.ID] = next
		res.Updated++
	}
	return res
}
