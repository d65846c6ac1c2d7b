package workspace

import (
	"context"
	"io"

	"github.com/garnizeh/interviewdesk/internal/apperr"
	"github.com/garnizeh/interviewdesk/internal/editor"
	"github.com/garnizeh/interviewdesk/internal/metrics"
	"github.com/garnizeh/interviewdesk/internal/models"
	"github.com/garnizeh/interviewdesk/internal/results"
	"github.com/garnizeh/interviewdesk/internal/router"
)

// Refresh reloads the dashboard. The store call runs without the screen lock
// so snapshots taken meanwhile report the dashboard as loading.
func (w *Workspace) Refresh(ctx context.Context) (Snapshot, error) {
	if err := w.acquire(); err != nil {
		return Snapshot{}, err
	}
	defer w.release()

	w.mu.Lock()
	w.dash.Begin()
	w.mu.Unlock()

	items, err := w.deps.Interviews.ListByOwner(ctx, w.email)

	w.mu.Lock()
	defer w.mu.Unlock()
	err = w.completeFetch(items, err)
	w.record("refresh", err)
	return w.finished(), err
}

func (w *Workspace) completeFetch(items []models.Interview, err error) error {
	if err != nil {
		w.dash.Fail()
		return apperr.Wrap(err, apperr.KindFetch, "LIST_FAILED", "could not load interviews")
	}
	w.dash.Complete(items)
	return nil
}

func (w *Workspace) SetSearch(text string) (Snapshot, error) {
	return w.do("search", func() error {
		w.dash.SetSearch(text)
		return nil
	})
}

// CreateInterview stores a fresh draft and opens it in the editor.
func (w *Workspace) CreateInterview(ctx context.Context) (Snapshot, error) {
	return w.do("create", func() error {
		iv, err := w.router.Create(ctx, w.deps.Interviews, w.email)
		if err != nil {
			return err
		}
		w.closeScreens()
		w.editor = editor.New(iv, w.deps.Interviews, w.deps.Tasks, w.deps.Catalog, w.logger)
		return nil
	})
}

// Open loads the interview with id and shows its results when a candidate has
// completed it, or the editor otherwise. Nothing changes when loading fails.
func (w *Workspace) Open(ctx context.Context, id string) (Snapshot, error) {
	return w.do("open", func() error {
		iv, err := w.deps.Interviews.GetWithTasks(ctx, id)
		if err != nil {
			return apperr.Wrap(err, apperr.KindFetch, "GET_INTERVIEW_FAILED", "could not load the interview")
		}
		if iv == nil || iv.OwnerEmail != w.email {
			return apperr.NotFound("INTERVIEW_NOT_FOUND", "interview %s not found", id)
		}

		var scr *results.Screen
		if iv.HasResults() {
			if scr, err = results.Load(ctx, w.deps.Results, iv); err != nil {
				return err
			}
		}

		w.closeScreens()
		switch w.router.Open(iv) {
		case router.ViewResults:
			w.results = scr
		case router.ViewEditor:
			w.editor = editor.New(iv, w.deps.Interviews, w.deps.Tasks, w.deps.Catalog, w.logger)
		}
		return nil
	})
}

// Back returns to the dashboard, dropping unsaved editor changes, and reloads the list.
func (w *Workspace) Back(ctx context.Context) (Snapshot, error) {
	return w.do("back", func() error {
		w.router.Back()
		w.closeScreens()
		w.dash.Begin()
		items, err := w.deps.Interviews.ListByOwner(ctx, w.email)
		return w.completeFetch(items, err)
	})
}

func (w *Workspace) edit(action string, fn func(e *editor.Editor) error) (Snapshot, error) {
	return w.do(action, func() error {
		e, err := w.requireEditor()
		if err != nil {
			return err
		}
		return fn(e)
	})
}

func (w *Workspace) SetTitle(title string) (Snapshot, error) {
	return w.edit("set_title", func(e *editor.Editor) error { return e.SetTitle(title) })
}

func (w *Workspace) AddTask(templateID string) (Snapshot, error) {
	return w.edit("add_task", func(e *editor.Editor) error {
		_, err := e.AddTaskFromTemplate(templateID)
		return err
	})
}

func (w *Workspace) UpdateTask(t models.Task) (Snapshot, error) {
	return w.edit("update_task", func(e *editor.Editor) error { return e.UpdateTask(t) })
}

func (w *Workspace) DeleteTask(id string) (Snapshot, error) {
	return w.edit("delete_task", func(e *editor.Editor) error { return e.DeleteTask(id) })
}

func (w *Workspace) MoveTask(from, to int) (Snapshot, error) {
	return w.edit("move_task", func(e *editor.Editor) error { return e.MoveTask(from, to) })
}

func (w *Workspace) SelectTask(id string) (Snapshot, error) {
	return w.edit("select_task", func(e *editor.Editor) error { return e.SelectTask(id) })
}

func (w *Workspace) SetGeneralCriteria(criteria []models.Criterion) (Snapshot, error) {
	return w.edit("set_criteria", func(e *editor.Editor) error { return e.SetGeneralCriteria(criteria) })
}

// AddCriterion adds c to the task with taskID, or to the general rubric when taskID is empty.
func (w *Workspace) AddCriterion(taskID string, c models.Criterion) (Snapshot, error) {
	return w.edit("add_criterion", func(e *editor.Editor) error {
		_, err := e.AddCriterion(taskID, c)
		return err
	})
}

func (w *Workspace) UpdateCriterion(taskID string, c models.Criterion) (Snapshot, error) {
	return w.edit("update_criterion", func(e *editor.Editor) error { return e.UpdateCriterion(taskID, c) })
}

func (w *Workspace) RemoveCriterion(taskID, criterionID string) (Snapshot, error) {
	return w.edit("remove_criterion", func(e *editor.Editor) error { return e.RemoveCriterion(taskID, criterionID) })
}

func (w *Workspace) Save(ctx context.Context) (Snapshot, error) {
	return w.edit("save", func(e *editor.Editor) error {
		err := e.Save(ctx)
		metrics.InterviewSaves.WithLabelValues(metrics.Outcome(err)).Inc()
		return err
	})
}

func (w *Workspace) Publish(ctx context.Context) (Snapshot, error) {
	return w.edit("publish", func(e *editor.Editor) error {
		err := e.Publish(ctx)
		metrics.InterviewSaves.WithLabelValues(metrics.Outcome(err)).Inc()
		return err
	})
}

func (w *Workspace) CloseInterview(ctx context.Context) (Snapshot, error) {
	return w.edit("close", func(e *editor.Editor) error {
		err := e.CloseInterview(ctx)
		metrics.InterviewSaves.WithLabelValues(metrics.Outcome(err)).Inc()
		return err
	})
}

func (w *Workspace) CloseInvite() (Snapshot, error) {
	return w.edit("close_invite", func(e *editor.Editor) error {
		e.CloseInvite()
		w.lastInvite = nil
		return nil
	})
}

// SendInvites invites the comma or newline separated addresses in raw to the
// interview open in the editor.
func (w *Workspace) SendInvites(ctx context.Context, raw string) (Snapshot, error) {
	return w.edit("send_invites", func(e *editor.Editor) error {
		if w.deps.Invites == nil {
			return apperr.New(apperr.KindInternal, "INVITES_DISABLED", "invitations are not configured")
		}
		res, err := w.deps.Invites.Send(ctx, e.Draft(), raw, w.email)
		w.lastInvite = &res
		return err
	})
}

func (w *Workspace) inResults(action string, fn func(s *results.Screen) error) (Snapshot, error) {
	return w.do(action, func() error {
		s, err := w.requireResults()
		if err != nil {
			return err
		}
		return fn(s)
	})
}

func (w *Workspace) SetResultsSearch(text string) (Snapshot, error) {
	return w.inResults("results_search", func(s *results.Screen) error {
		s.SetSearch(text)
		return nil
	})
}

func (w *Workspace) ToggleSort(key string) (Snapshot, error) {
	return w.inResults("sort", func(s *results.Screen) error {
		_, err := s.ToggleSort(key)
		return err
	})
}

func (w *Workspace) OpenCandidate(id string) (Snapshot, error) {
	return w.inResults("open_candidate", func(s *results.Screen) error { return s.OpenCandidate(id) })
}

func (w *Workspace) CloseCandidate() (Snapshot, error) {
	return w.inResults("close_candidate", func(s *results.Screen) error {
		s.CloseCandidate()
		return nil
	})
}

func (w *Workspace) EditScores(edits []results.ScoreEdit) (Snapshot, error) {
	return w.inResults("edit_scores", func(s *results.Screen) error { return s.EditScores(edits) })
}

func (w *Workspace) SaveScores(ctx context.Context) (Snapshot, error) {
	return w.inResults("save_scores", func(s *results.Screen) error { return s.SaveScores(ctx, w.deps.Results) })
}

// AddNote attaches a note authored by the session's user.
func (w *Workspace) AddNote(ctx context.Context, column, content string) (Snapshot, error) {
	return w.inResults("add_note", func(s *results.Screen) error {
		return s.AddNote(ctx, w.deps.Results, w.email, column, content)
	})
}

// Export writes the results table as CSV and returns the interview title.
func (w *Workspace) Export(out io.Writer) (string, error) {
	var title string
	_, err := w.inResults("export", func(s *results.Screen) error {
		title = s.State().Title
		return s.Export(out)
	})
	return title, err
}

// Overview returns the summary of the open results.
func (w *Workspace) Overview() (results.Overview, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, err := w.requireResults()
	if err != nil {
		return results.Overview{}, err
	}
	return s.Overview(), nil
}

// Table returns the filtered, sorted rows of the open results.
func (w *Workspace) Table() ([]models.CandidateResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, err := w.requireResults()
	if err != nil {
		return nil, err
	}
	return s.Rows(), nil
}
