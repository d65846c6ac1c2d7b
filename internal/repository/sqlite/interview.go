package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/interviewdesk/internal/models"
)

// interviewRow carries the derived candidate counts next to the stored columns.
type interviewRow struct {
	models.Interview
	Invited   int `db:"invited"`
	Completed int `db:"completed"`
	Graded    int `db:"graded"`
}

const interviewSelect = `SELECT i.id, i.title, i.status, i.owner_email, i.general_criteria, i.created, i.updated,
	(SELECT COUNT(1) FROM invitations v WHERE v.interview_id = i.id) AS invited,
	(SELECT COUNT(1) FROM candidate_results c WHERE c.interview_id = i.id) AS completed,
	(SELECT COUNT(1) FROM candidate_results c WHERE c.interview_id = i.id AND c.overall_score IS NOT NULL) AS graded
	FROM interviews i`

func (row interviewRow) toModel() models.Interview {
	iv := row.Interview
	if iv.GeneralCriteria == nil {
		iv.GeneralCriteria = models.CriteriaList{}
	}
	iv.Tasks = []models.Task{}
	// drafts report no stats
	if iv.Status != models.StatusDraft {
		iv.Stats = &models.Stats{Invited: row.Invited, Completed: row.Completed, Graded: row.Graded}
	}
	return iv
}

func (r *SQLiteRepo) ListByOwner(ctx context.Context, ownerEmail string) ([]models.Interview, error) {
	var rows []interviewRow
	if err := r.conn.Select(ctx, &rows, interviewSelect+` WHERE i.owner_email = ? ORDER BY i.updated DESC, i.id`, ownerEmail); err != nil {
		return nil, fmt.Errorf("list interviews: %w", err)
	}

	out := make([]models.Interview, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

func (r *SQLiteRepo) GetWithTasks(ctx context.Context, id string) (*models.Interview, error) {
	var row interviewRow
	if err := r.conn.Get(ctx, &row, interviewSelect+` WHERE i.id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get interview: %w", err)
	}
	iv := row.toModel()

	var tasks []models.Task
	if err := r.conn.Select(ctx, &tasks, taskSelect+` WHERE interview_id = ? ORDER BY task_order, id`, id); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	for i := range tasks {
		normalizeTask(&tasks[i])
		tasks[i].ClientRef = ""
	}
	if tasks != nil {
		iv.Tasks = tasks
	}
	return &iv, nil
}

func (r *SQLiteRepo) CreateInterview(ctx context.Context, iv *models.Interview) (*models.Interview, error) {
	if iv == nil {
		return nil, fmt.Errorf("interview is nil")
	}
	if !iv.Status.Valid() {
		return nil, fmt.Errorf("invalid interview status %q", iv.Status)
	}

	out := iv.Clone()
	out.ID = newID()
	out.Created = now()
	out.Updated = out.Created
	out.Stats = nil
	if out.Status != models.StatusDraft {
		out.Stats = &models.Stats{}
	}

	_, err := r.conn.Exec(ctx, `INSERT INTO interviews (id, title, status, owner_email, general_criteria, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		out.ID, out.Title, out.Status, out.OwnerEmail, out.GeneralCriteria, out.Created, out.Updated)
	if err != nil {
		return nil, fmt.Errorf("create interview: %w", err)
	}
	r.logger.Debug("interview created", "id", out.ID, "owner", out.OwnerEmail)
	return out, nil
}

func (r *SQLiteRepo) UpdateInterview(ctx context.Context, iv *models.Interview) error {
	if iv == nil {
		return fmt.Errorf("interview is nil")
	}
	if !iv.Status.Valid() {
		return fmt.Errorf("invalid interview status %q", iv.Status)
	}

	iv.Updated = now()
	res, err := r.conn.Exec(ctx, `UPDATE interviews SET title = ?, status = ?, general_criteria = ?, updated = ? WHERE id = ?`,
		iv.Title, iv.Status, iv.GeneralCriteria, iv.Updated, iv.ID)
	if err != nil {
		return fmt.Errorf("update interview: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update interview %s: %w", iv.ID, sql.ErrNoRows)
	}
	return nil
}
