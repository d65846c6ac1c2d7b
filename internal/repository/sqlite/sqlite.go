package sqlite

import (
	"io"
	"log/slog"
	"time"

	"github.com/garnizeh/interviewdesk/internal/db"
	"github.com/garnizeh/interviewdesk/pkg/repository"
	"github.com/google/uuid"
)

// SQLiteRepo implements repository interfaces using the internal DB wrapper.
// Queries stay within the SQL both SQLite and PostgreSQL accept, so the same
// repo serves either driver.
type SQLiteRepo struct {
	conn   *db.DB
	logger *slog.Logger
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.UserRepo = (*SQLiteRepo)(nil)
var _ repository.InterviewRepo = (*SQLiteRepo)(nil)
var _ repository.TaskRepo = (*SQLiteRepo)(nil)
var _ repository.ResultRepo = (*SQLiteRepo)(nil)
var _ repository.InvitationRepo = (*SQLiteRepo)(nil)

func New(conn *db.DB, logger *slog.Logger) *SQLiteRepo {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &SQLiteRepo{conn: conn, logger: logger}
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}

func newID() string {
	return uuid.NewString()
}
