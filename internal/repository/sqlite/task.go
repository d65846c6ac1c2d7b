package sqlite

import (
	"context"
	"fmt"

	"github.com/garnizeh/interviewdesk/internal/models"
	"github.com/jmoiron/sqlx"
)

const taskSelect = `SELECT id, interview_id, client_ref, title, prompt, ai_behavior, duration_minutes,
	req_audio, req_screen_share, req_webcam, req_file_upload, task_order, criteria FROM tasks`

const taskUpsert = `INSERT INTO tasks (id, interview_id, client_ref, title, prompt, ai_behavior, duration_minutes,
	req_audio, req_screen_share, req_webcam, req_file_upload, task_order, criteria)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		client_ref = excluded.client_ref,
		title = excluded.title,
		prompt = excluded.prompt,
		ai_behavior = excluded.ai_behavior,
		duration_minutes = excluded.duration_minutes,
		req_audio = excluded.req_audio,
		req_screen_share = excluded.req_screen_share,
		req_webcam = excluded.req_webcam,
		req_file_upload = excluded.req_file_upload,
		task_order = excluded.task_order,
		criteria = excluded.criteria
	WHERE tasks.interview_id = excluded.interview_id`

func normalizeTask(t *models.Task) {
	if t.Criteria == nil {
		t.Criteria = models.CriteriaList{}
	}
	if t.AIBehavior == "" {
		t.AIBehavior = models.BehaviorNeutral
	}
}

// UpsertTasks writes the batch in one transaction and returns the stored rows in
// batch order. Tasks without an ID get a fresh one; ClientRef is stored and echoed.
func (r *SQLiteRepo) UpsertTasks(ctx context.Context, interviewID string, tasks []models.Task) ([]models.Task, error) {
	if interviewID == "" {
		return nil, fmt.Errorf("interview id is required")
	}
	if len(tasks) == 0 {
		return []models.Task{}, nil
	}

	batch := make([]models.Task, len(tasks))
	for i, t := range tasks {
		if models.IsTempID(t.ID) {
			return nil, fmt.Errorf("task %q still carries a temporary id", t.ID)
		}
		t = t.Clone()
		if t.ID == "" {
			t.ID = newID()
		}
		t.InterviewID = interviewID
		t.SupportingFiles = nil
		normalizeTask(&t)
		batch[i] = t
	}

	var stored []models.Task
	err := r.conn.Tx(ctx, func(tx *sqlx.Tx) error {
		q := tx.Rebind(taskUpsert)
		for _, t := range batch {
			if _, err := tx.ExecContext(ctx, q, t.ID, t.InterviewID, t.ClientRef, t.Title, t.Prompt, t.AIBehavior, t.DurationMinutes,
				t.ReqAudio, t.ReqScreenShare, t.ReqWebcam, t.ReqFileUpload, t.Order, t.Criteria); err != nil {
				return fmt.Errorf("upsert task %s: %w", t.ID, err)
			}
		}
		return tx.SelectContext(ctx, &stored, tx.Rebind(taskSelect+` WHERE interview_id = ? ORDER BY task_order, id`), interviewID)
	})
	if err != nil {
		return nil, fmt.Errorf("upsert tasks: %w", err)
	}

	byID := make(map[string]models.Task, len(stored))
	for _, t := range stored {
		normalizeTask(&t)
		byID[t.ID] = t
	}
	out := make([]models.Task, 0, len(batch))
	for _, t := range batch {
		// a conflicting id owned by another interview is skipped by the upsert
		if s, ok := byID[t.ID]; ok {
			out = append(out, s)
		}
	}
	r.logger.Debug("tasks upserted", "interview_id", interviewID, "count", len(out))
	return out, nil
}

func (r *SQLiteRepo) DeleteTasks(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM tasks WHERE id IN (?)`, ids)
	if err != nil {
		return fmt.Errorf("delete tasks: %w", err)
	}
	if _, err := r.conn.Exec(ctx, q, args...); err != nil {
		return fmt.Errorf("delete tasks: %w", err)
	}
	return nil
}
