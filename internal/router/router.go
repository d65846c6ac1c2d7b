// Package router tracks which screen is active and which interview it shows.
package router

import (
	"context"

	"github.com/garnizeh/interviewdesk/internal/apperr"
	"github.com/garnizeh/interviewdesk/internal/models"
)

type View string

const (
	ViewDashboard View = "dashboard"
	ViewEditor    View = "editor"
	ViewResults   View = "results"
)

type Creator interface {
	CreateInterview(ctx context.Context, iv *models.Interview) (*models.Interview, error)
}

// State has Editing set only on the editor view and Viewing only on the results view.
type State struct {
	View    View              `json:"view"`
	Editing *models.Interview `json:"editing,omitempty"`
	Viewing *models.Interview `json:"viewing,omitempty"`
}

type Router struct {
	state State
}

func New() *Router {
	return &Router{state: State{View: ViewDashboard}}
}

func (r *Router) State() State {
	return State{View: r.state.View, Editing: r.state.Editing.Clone(), Viewing: r.state.Viewing.Clone()}
}

func (r *Router) View() View { return r.state.View }

// Open shows results for an interview with at least one completed candidate
// and the editor otherwise.
func (r *Router) Open(iv *models.Interview) View {
	if iv.HasResults() {
		r.state = State{View: ViewResults, Viewing: iv.Clone()}
	} else {
		r.state = State{View: ViewEditor, Editing: iv.Clone()}
	}
	return r.state.View
}

// Create stores a fresh draft for owner and opens it in the editor. The router
// stays on the dashboard when the store rejects it.
func (r *Router) Create(ctx context.Context, c Creator, owner string) (*models.Interview, error) {
	iv, err := c.CreateInterview(ctx, models.NewInterview(owner))
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindWrite, "CREATE_FAILED", "could not create the interview")
	}
	r.state = State{View: ViewEditor, Editing: iv.Clone()}
	return iv, nil
}

// Back returns to the dashboard, discarding whatever was open.
func (r *Router) Back() {
	r.state = State{View: ViewDashboard}
}
