package results

import (
	"sort"
	"strings"

	"github.com/garnizeh/interviewdesk/internal/apperr"
	"github.com/garnizeh/interviewdesk/internal/models"
)

const (
	SortName        = "name"
	SortEmail       = "email"
	SortCompletedAt = "completed_at"
	SortOverall     = "overall_score"
)

type Direction string

const (
	Unsorted   Direction = ""
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Sort is the active sort column. Key is a fixed column or a criterion id.
type Sort struct {
	Key       string    `json:"key,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

// Table holds the search text and sort column of the candidate table.
type Table struct {
	search string
	sort   Sort
}

func (t *Table) Search() string { return t.search }

func (t *Table) SetSearch(text string) { t.search = text }

func (t *Table) Sort() Sort { return t.sort }

// ToggleSort cycles key through ascending, descending and unsorted. Picking a
// different column starts it at ascending.
func (t *Table) ToggleSort(key string, cols []models.CriteriaColumn) (Sort, error) {
	if !validKey(key, cols) {
		return t.sort, apperr.Validation("BAD_SORT_KEY", "cannot sort by %q", key)
	}
	switch {
	case t.sort.Key != key || t.sort.Direction == Unsorted:
		t.sort = Sort{Key: key, Direction: Ascending}
	case t.sort.Direction == Ascending:
		t.sort.Direction = Descending
	default:
		t.sort = Sort{}
	}
	return t.sort, nil
}

func validKey(key string, cols []models.CriteriaColumn) bool {
	switch key {
	case SortName, SortEmail, SortCompletedAt, SortOverall:
		return true
	}
	for _, c := range cols {
		if c.ID == key {
			return true
		}
	}
	return false
}

// Rows filters candidates by name or email and orders the matches. Sorting is
// stable, and candidates that compare equal keep their input order.
func (t *Table) Rows(candidates []models.CandidateResult) []models.CandidateResult {
	needle := strings.ToLower(strings.TrimSpace(t.search))
	out := make([]models.CandidateResult, 0, len(candidates))
	for _, c := range candidates {
		if needle == "" ||
			strings.Contains(strings.ToLower(c.Name), needle) ||
			strings.Contains(strings.ToLower(c.Email), needle) {
			out = append(out, c)
		}
	}
	if t.sort.Direction == Unsorted {
		return out
	}

	less := lessFor(t.sort.Key)
	sort.SliceStable(out, func(i, j int) bool {
		if t.sort.Direction == Descending {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func lessFor(key string) func(a, b models.CandidateResult) bool {
	switch key {
	case SortName:
		return func(a, b models.CandidateResult) bool { return a.Name < b.Name }
	case SortEmail:
		return func(a, b models.CandidateResult) bool { return a.Email < b.Email }
	case SortCompletedAt:
		return func(a, b models.CandidateResult) bool { return a.CompletedAt < b.CompletedAt }
	case SortOverall:
		return func(a, b models.CandidateResult) bool { return a.OverallOrZero() < b.OverallOrZero() }
	}
	return func(a, b models.CandidateResult) bool {
		return criterionScore(a, key) < criterionScore(b, key)
	}
}

func criterionScore(c models.CandidateResult, id string) float64 {
	s, _ := c.ScoreFor(id)
	return s.Value.NumberOrZero()
}
