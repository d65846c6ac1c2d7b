package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/garnizeh/interviewdesk/internal/models"
)

// CreateInvitation records an invitation. Inviting the same email twice to one
// interview keeps the first row and returns its id.
func (r *SQLiteRepo) CreateInvitation(ctx context.Context, inv *models.Invitation) (string, error) {
	if inv == nil {
		return "", fmt.Errorf("invitation is nil")
	}
	inv.Email = strings.ToLower(strings.TrimSpace(inv.Email))
	if inv.ID == "" {
		inv.ID = newID()
	}
	inv.Created = now()

	if _, err := r.conn.Exec(ctx, `INSERT INTO invitations (id, interview_id, email, created) VALUES (?, ?, ?, ?) ON CONFLICT (interview_id, email) DO NOTHING`,
		inv.ID, inv.InterviewID, inv.Email, inv.Created); err != nil {
		return "", fmt.Errorf("create invitation: %w", err)
	}

	var id string
	if err := r.conn.Get(ctx, &id, `SELECT id FROM invitations WHERE interview_id = ? AND email = ?`, inv.InterviewID, inv.Email); err != nil {
		return "", fmt.Errorf("read invitation: %w", err)
	}
	inv.ID = id
	return id, nil
}

func (r *SQLiteRepo) ListInvitations(ctx context.Context, interviewID string) ([]models.Invitation, error) {
	var out []models.Invitation
	if err := r.conn.Select(ctx, &out, `SELECT id, interview_id, email, created FROM invitations WHERE interview_id = ? ORDER BY created, email`, interviewID); err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	if out == nil {
		out = []models.Invitation{}
	}
	return out, nil
}

func (r *SQLiteRepo) DeleteInvitation(ctx context.Context, id string) error {
	if _, err := r.conn.Exec(ctx, `DELETE FROM invitations WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete invitation: %w", err)
	}
	return nil
}
