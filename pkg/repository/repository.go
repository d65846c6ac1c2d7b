package repository

import (
	"context"

	"github.com/garnizeh/interviewdesk/internal/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
//
// Single-record getters return (nil, nil) when the record does not exist.

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (string, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
}

type InterviewRepo interface {
	// ListByOwner returns the owner's interviews, most recently updated first, without tasks.
	ListByOwner(ctx context.Context, ownerEmail string) ([]models.Interview, error)
	// GetWithTasks returns the interview joined with its tasks ordered by task_order.
	GetWithTasks(ctx context.Context, id string) (*models.Interview, error)
	CreateInterview(ctx context.Context, iv *models.Interview) (*models.Interview, error)
	// UpdateInterview writes the scalar fields and general criteria. Tasks are untouched.
	UpdateInterview(ctx context.Context, iv *models.Interview) error
}

type TaskRepo interface {
	// UpsertTasks inserts or updates tasks in one batch. Rows without an ID are inserted
	// with a fresh one; the returned rows echo each input's ClientRef.
	UpsertTasks(ctx context.Context, interviewID string, tasks []models.Task) ([]models.Task, error)
	DeleteTasks(ctx context.Context, ids []string) error
}

type ResultRepo interface {
	ListCandidates(ctx context.Context, interviewID string) ([]models.CandidateResult, error)
	GetCandidate(ctx context.Context, id string) (*models.CandidateResult, error)
	CreateCandidate(ctx context.Context, c *models.CandidateResult) (string, error)
	// UpdateCandidate persists scores, notes and overall score of an existing result.
	UpdateCandidate(ctx context.Context, c *models.CandidateResult) error
}

type InvitationRepo interface {
	CreateInvitation(ctx context.Context, inv *models.Invitation) (string, error)
	ListInvitations(ctx context.Context, interviewID string) ([]models.Invitation, error)
	DeleteInvitation(ctx context.Context, id string) error
}
