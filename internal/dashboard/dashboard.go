// Package dashboard lists the current user's interviews with a title search.
package dashboard

import (
	"context"
	"strings"

	"github.com/garnizeh/interviewdesk/internal/apperr"
	"github.com/garnizeh/interviewdesk/internal/models"
)

type Lister interface {
	ListByOwner(ctx context.Context, ownerEmail string) ([]models.Interview, error)
}

// EmptyState tells the view which placeholder to show when nothing is listed.
type EmptyState string

const (
	EmptyNone         EmptyState = "none"
	EmptyNoInterviews EmptyState = "no_interviews"
	EmptyNoMatches    EmptyState = "no_matches"
)

type Dashboard struct {
	items   []models.Interview
	search  string
	loading bool
}

// View is what the dashboard renders.
type View struct {
	Items   []models.Interview `json:"items"`
	Search  string             `json:"search"`
	Loading bool               `json:"loading"`
	Empty   EmptyState         `json:"empty"`
	Total   int                `json:"total"`
}

func New() *Dashboard {
	return &Dashboard{items: []models.Interview{}}
}

// Fetch loads every interview owned by owner. On failure the previous list is kept.
func (d *Dashboard) Fetch(ctx context.Context, l Lister, owner string) error {
	d.Begin()
	items, err := l.ListByOwner(ctx, owner)
	if err != nil {
		d.Fail()
		return apperr.Wrap(err, apperr.KindFetch, "LIST_FAILED", "could not load interviews")
	}
	d.Complete(items)
	return nil
}

// Begin marks a load as pending. Callers that fetch outside the dashboard pair
// it with Complete or Fail.
func (d *Dashboard) Begin() { d.loading = true }

func (d *Dashboard) Complete(items []models.Interview) {
	d.items = make([]models.Interview, len(items))
	copy(d.items, items)
	d.loading = false
}

func (d *Dashboard) Fail() { d.loading = false }

func (d *Dashboard) Loading() bool { return d.loading }

func (d *Dashboard) SetSearch(text string) { d.search = text }

// Find returns the listed interview with id.
func (d *Dashboard) Find(id string) (models.Interview, bool) {
	for _, iv := range d.items {
		if iv.ID == id {
			return iv, true
		}
	}
	return models.Interview{}, false
}

func (d *Dashboard) View() View {
	needle := strings.ToLower(strings.TrimSpace(d.search))
	visible := make([]models.Interview, 0, len(d.items))
	for _, iv := range d.items {
		if needle == "" || strings.Contains(strings.ToLower(iv.Title), needle) {
			visible = append(visible, iv)
		}
	}

	v := View{Items: visible, Search: d.search, Loading: d.loading, Empty: EmptyNone, Total: len(d.items)}
	switch {
	case d.loading:
	case len(d.items) == 0:
		v.Empty = EmptyNoInterviews
	case len(visible) == 0:
		v.Empty = EmptyNoMatches
	}
	return v
}
