package editor

import (
	"context"

	"github.com/garnizeh/interviewdesk/internal/apperr"
	"github.com/garnizeh/interviewdesk/internal/models"
)

// Save writes the draft to the store and adopts the stored task rows.
//
// The interview row is written first, then tasks present in the last saved
// state but missing from the draft are deleted, then all draft tasks are
// upserted in one batch. New tasks go out without an id and with their
// temporary id as ClientRef; returned rows are matched back by id or ClientRef.
// If any step fails the draft is left untouched.
func (e *Editor) Save(ctx context.Context) error {
	return e.save(ctx, e.draft.Clone())
}

// Publish moves a draft interview live, saves it and opens the invite flow.
func (e *Editor) Publish(ctx context.Context) error {
	return e.transitionAndSave(ctx, models.StatusLive, func() { e.inviteOpen = true })
}

// CloseInterview stops a live interview from accepting candidates.
func (e *Editor) CloseInterview(ctx context.Context) error {
	return e.transitionAndSave(ctx, models.StatusClosed, nil)
}

func (e *Editor) transitionAndSave(ctx context.Context, next models.Status, onSaved func()) error {
	if e.draft.Status == next {
		return apperr.Validation("BAD_TRANSITION", "interview is already %s", next)
	}
	candidate := e.draft.Clone()
	if err := candidate.Transition(next); err != nil {
		return apperr.Wrap(err, apperr.KindValidation, "BAD_TRANSITION", err.Error())
	}
	if err := e.save(ctx, candidate); err != nil {
		return err
	}
	if onSaved != nil {
		onSaved()
	}
	return nil
}

func (e *Editor) save(ctx context.Context, next *models.Interview) error {
	if err := e.interviews.UpdateInterview(ctx, next); err != nil {
		return apperr.Wrap(err, apperr.KindWrite, "SAVE_INTERVIEW_FAILED", "could not save the interview")
	}

	if gone := removedTaskIDs(e.baseline, next.Tasks); len(gone) > 0 {
		if err := e.tasks.DeleteTasks(ctx, gone); err != nil {
			return apperr.Wrap(err, apperr.KindWrite, "DELETE_TASKS_FAILED", "could not remove deleted tasks")
		}
	}

	stored, err := e.tasks.UpsertTasks(ctx, next.ID, outgoingTasks(next.Tasks))
	if err != nil {
		return apperr.Wrap(err, apperr.KindWrite, "SAVE_TASKS_FAILED", "could not save the tasks")
	}

	merged, renamed := e.mergeStored(next.Tasks, stored)
	next.Tasks = merged

	e.draft = next
	e.baseline = models.CloneTasks(merged)
	e.dirty = false
	if id, ok := renamed[e.selected]; ok {
		e.selected = id
	}
	if e.selected != "" && e.taskIndex(e.selected) < 0 {
		e.selected = ""
		if len(merged) > 0 {
			e.selected = merged[0].ID
		}
	}
	return nil
}

// removedTaskIDs lists stored task ids of the baseline that the draft no longer has.
func removedTaskIDs(baseline, draft []models.Task) []string {
	keep := make(map[string]bool, len(draft))
	for _, t := range draft {
		keep[t.ID] = true
	}
	var gone []string
	for _, t := range baseline {
		if !keep[t.ID] && !models.IsTempID(t.ID) {
			gone = append(gone, t.ID)
		}
	}
	return gone
}

// outgoingTasks prepares the upsert batch: supporting files stripped, order
// taken from position, temporary ids moved to ClientRef.
func outgoingTasks(draft []models.Task) []models.Task {
	batch := make([]models.Task, len(draft))
	for i, t := range draft {
		b := t.Clone()
		b.SupportingFiles = nil
		b.Order = i
		b.ClientRef = ""
		if models.IsTempID(b.ID) {
			b.ClientRef = b.ID
			b.ID = ""
		}
		batch[i] = b
	}
	return batch
}

// mergeStored pairs draft tasks with the rows the store returned. Draft tasks
// with no matching row are dropped. The result keeps draft order, carries the
// draft's supporting files, and maps each temporary id to its stored id.
func (e *Editor) mergeStored(draft, stored []models.Task) ([]models.Task, map[string]string) {
	byID := make(map[string]models.Task, len(stored))
	byRef := make(map[string]models.Task, len(stored))
	for _, s := range stored {
		byID[s.ID] = s
		if s.ClientRef != "" {
			byRef[s.ClientRef] = s
		}
	}

	merged := make([]models.Task, 0, len(draft))
	renamed := map[string]string{}
	for _, t := range draft {
		var (
			s  models.Task
			ok bool
		)
		if models.IsTempID(t.ID) {
			s, ok = byRef[t.ID]
		} else {
			s, ok = byID[t.ID]
		}
		if !ok {
			e.logger.Warn("task missing from save response, dropped", "interview_id", e.draft.ID, "task_id", t.ID, "title", t.Title)
			continue
		}
		if s.ID != t.ID {
			renamed[t.ID] = s.ID
		}
		s = s.Clone()
		s.ClientRef = ""
		s.SupportingFiles = append([]models.SupportingFile{}, t.SupportingFiles...)
		if s.Criteria == nil {
			s.Criteria = models.CriteriaList{}
		}
		merged = append(merged, s)
	}
	models.Renumber(merged)
	return merged, renamed
}
