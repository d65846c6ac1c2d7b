// Package workspace is the per-session application core. A Workspace composes
// the router, dashboard, editor and results screens of one signed-in session
// and runs one user action at a time against them.
package workspace

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/garnizeh/interviewdesk/internal/apperr"
	"github.com/garnizeh/interviewdesk/internal/dashboard"
	"github.com/garnizeh/interviewdesk/internal/editor"
	"github.com/garnizeh/interviewdesk/internal/invite"
	"github.com/garnizeh/interviewdesk/internal/models"
	"github.com/garnizeh/interviewdesk/internal/results"
	"github.com/garnizeh/interviewdesk/internal/router"
	"github.com/garnizeh/interviewdesk/internal/session"
	"github.com/garnizeh/interviewdesk/internal/templates"
	"github.com/garnizeh/interviewdesk/pkg/repository"
)

// Deps are the collaborators every workspace shares.
type Deps struct {
	Interviews repository.InterviewRepo
	Tasks      repository.TaskRepo
	Results    repository.ResultRepo
	Invites    *invite.Service
	Catalog    *templates.Catalog
	Logger     *slog.Logger
}

// Notice is the error banner of the last failed action.
type Notice struct {
	Kind    apperr.Kind `json:"kind"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Action  string      `json:"action"`
}

type InviteState struct {
	Open bool           `json:"open"`
	Link string         `json:"link"`
	Last *invite.Result `json:"last,omitempty"`
}

// Snapshot is everything the front end renders for one session.
type Snapshot struct {
	SessionID string         `json:"session_id"`
	Email     string         `json:"email"`
	View      router.View    `json:"view"`
	Dashboard dashboard.View `json:"dashboard"`
	Editor    *editor.State  `json:"editor,omitempty"`
	Results   *results.State `json:"results,omitempty"`
	Invite    *InviteState   `json:"invite,omitempty"`
	Notice    *Notice        `json:"notice,omitempty"`
	Busy      bool           `json:"busy"`
}

type Workspace struct {
	sessionID string
	email     string
	deps      Deps
	logger    *slog.Logger

	// busy admits one action at a time; mu guards the screens.
	busy atomic.Bool
	mu   sync.Mutex

	router     *router.Router
	dash       *dashboard.Dashboard
	editor     *editor.Editor
	results    *results.Screen
	lastInvite *invite.Result
	notice     *Notice
}

// New returns the workspace of s, starting on the dashboard.
func New(s *session.Session, deps Deps) *Workspace {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if deps.Catalog == nil {
		deps.Catalog = templates.Default()
	}
	return &Workspace{
		sessionID: s.ID,
		email:     s.Email,
		deps:      deps,
		logger:    logger.With(slog.String("session_id", s.ID)),
		router:    router.New(),
		dash:      dashboard.New(),
	}
}

func (w *Workspace) SessionID() string { return w.sessionID }

func (w *Workspace) Email() string { return w.email }

// Snapshot never waits for a pending action's I/O.
func (w *Workspace) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot()
}

func (w *Workspace) snapshot() Snapshot {
	s := Snapshot{
		SessionID: w.sessionID,
		Email:     w.email,
		View:      w.router.View(),
		Dashboard: w.dash.View(),
		Busy:      w.busy.Load(),
	}
	if w.notice != nil {
		n := *w.notice
		s.Notice = &n
	}
	if w.editor != nil {
		st := w.editor.State()
		s.Editor = &st
		if st.Interview.Status != models.StatusDraft && w.deps.Invites != nil {
			s.Invite = &InviteState{Open: st.InviteOpen, Link: w.deps.Invites.Link(st.Interview.ID), Last: w.lastInvite}
		}
	}
	if w.results != nil {
		st := w.results.State()
		s.Results = &st
	}
	return s
}

// DismissNotice clears the banner.
func (w *Workspace) DismissNotice() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.notice = nil
}

// acquire claims the action slot.
func (w *Workspace) acquire() error {
	if !w.busy.CompareAndSwap(false, true) {
		return apperr.ErrBusy
	}
	return nil
}

func (w *Workspace) release() { w.busy.Store(false) }

// do runs fn as one action holding the screen lock throughout.
func (w *Workspace) do(action string, fn func() error) (Snapshot, error) {
	if err := w.acquire(); err != nil {
		return Snapshot{}, err
	}
	defer w.release()

	w.mu.Lock()
	defer w.mu.Unlock()
	err := fn()
	w.record(action, err)
	return w.finished(), err
}

// finished is the snapshot handed back by a completing action. The slot is
// released once, after the lock, so it reports the action as no longer busy.
func (w *Workspace) finished() Snapshot {
	s := w.snapshot()
	s.Busy = false
	return s
}

// record turns a failed action into the banner. A successful action clears it.
func (w *Workspace) record(action string, err error) {
	if err == nil {
		w.notice = nil
		return
	}
	ae := apperr.As(err)
	w.notice = &Notice{Kind: ae.Kind, Code: ae.Code, Message: ae.Message, Action: action}
	level := slog.LevelError
	if ae.Kind == apperr.KindValidation || ae.Kind == apperr.KindNotFound {
		level = slog.LevelWarn
	}
	w.logger.Log(context.Background(), level, "action failed",
		slog.String("action", action), slog.String("code", ae.Code), slog.Any("err", err))
}

func (w *Workspace) requireEditor() (*editor.Editor, error) {
	if w.editor == nil || w.router.View() != router.ViewEditor {
		return nil, apperr.Validation("NOT_EDITING", "no interview is open in the editor")
	}
	return w.editor, nil
}

func (w *Workspace) requireResults() (*results.Screen, error) {
	if w.results == nil || w.router.View() != router.ViewResults {
		return nil, apperr.Validation("NOT_VIEWING_RESULTS", "no results are open")
	}
	return w.results, nil
}

func (w *Workspace) closeScreens() {
	w.editor = nil
	w.results = nil
	w.lastInvite = nil
}
