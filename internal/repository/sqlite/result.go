package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/interviewdesk/internal/models"
)

const resultSelect = `SELECT id, interview_id, name, email, completed_at, scores, notes, overall_score FROM candidate_results`

func normalizeResult(c *models.CandidateResult) {
	if c.Scores == nil {
		c.Scores = models.ScoreList{}
	}
	if c.Notes == nil {
		c.Notes = models.NoteList{}
	}
}

func (r *SQLiteRepo) ListCandidates(ctx context.Context, interviewID string) ([]models.CandidateResult, error) {
	var out []models.CandidateResult
	if err := r.conn.Select(ctx, &out, resultSelect+` WHERE interview_id = ? ORDER BY completed_at, id`, interviewID); err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	if out == nil {
		out = []models.CandidateResult{}
	}
	for i := range out {
		normalizeResult(&out[i])
	}
	return out, nil
}

func (r *SQLiteRepo) GetCandidate(ctx context.Context, id string) (*models.CandidateResult, error) {
	var c models.CandidateResult
	if err := r.conn.Get(ctx, &c, resultSelect+` WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get candidate: %w", err)
	}
	normalizeResult(&c)
	return &c, nil
}

func (r *SQLiteRepo) CreateCandidate(ctx context.Context, c *models.CandidateResult) (string, error) {
	if c == nil {
		return "", fmt.Errorf("candidate is nil")
	}
	if c.InterviewID == "" {
		return "", fmt.Errorf("candidate interview id is required")
	}
	if c.ID == "" {
		c.ID = newID()
	}
	if c.CompletedAt == 0 {
		c.CompletedAt = now()
	}
	normalizeResult(c)

	_, err := r.conn.Exec(ctx, `INSERT INTO candidate_results (id, interview_id, name, email, completed_at, scores, notes, overall_score) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.InterviewID, c.Name, c.Email, c.CompletedAt, c.Scores, c.Notes, c.OverallScore)
	if err != nil {
		return "", fmt.Errorf("create candidate: %w", err)
	}
	return c.ID, nil
}

func (r *SQLiteRepo) UpdateCandidate(ctx context.Context, c *models.CandidateResult) error {
	if c == nil {
		return fmt.Errorf("candidate is nil")
	}
	res, err := r.conn.Exec(ctx, `UPDATE candidate_results SET scores = ?, notes = ?, overall_score = ? WHERE id = ?`,
		c.Scores, c.Notes, c.OverallScore, c.ID)
	if err != nil {
		return fmt.Errorf("update candidate: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update candidate %s: %w", c.ID, sql.ErrNoRows)
	}
	return nil
}
