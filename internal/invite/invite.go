// Package invite hands out interview links and queues invitation emails.
package invite

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/garnizeh/interviewdesk/internal/apperr"
	"github.com/garnizeh/interviewdesk/internal/models"
)

// JobType is the background job that delivers one invitation email.
const JobType = "invite_email"

const maxAttempts = 3

type Store interface {
	CreateInvitation(ctx context.Context, inv *models.Invitation) (string, error)
	ListInvitations(ctx context.Context, interviewID string) ([]models.Invitation, error)
	DeleteInvitation(ctx context.Context, id string) error
}

type Enqueuer interface {
	Enqueue(ctx context.Context, typ string, payload any, priority int, maxAttempts int) (int64, error)
}

// EmailPayload is the job payload of JobType.
type EmailPayload struct {
	InvitationID   string `json:"invitation_id"`
	InterviewID    string `json:"interview_id"`
	InterviewTitle string `json:"interview_title"`
	To             string `json:"to"`
	Link           string `json:"link"`
	InvitedBy      string `json:"invited_by"`
}

// Result reports what Send did with each address.
type Result struct {
	Link    string   `json:"link"`
	Queued  []string `json:"queued"`
	Invalid []string `json:"invalid"`
	Failed  []string `json:"failed"`
}

// Link is the public URL a candidate opens to take the interview.
func Link(publicURL, interviewID string) string {
	return strings.TrimRight(publicURL, "/") + "/interview/" + interviewID
}

// ParseEmails splits raw on commas and newlines. Addresses are lowercased and
// deduplicated; entries that are not addresses come back in invalid.
func ParseEmails(raw string) (valid, invalid []string) {
	seen := map[string]bool{}
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '\n' || r == '\r' || r == ';' })
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		addr, err := mail.ParseAddress(f)
		if err != nil {
			invalid = append(invalid, f)
			continue
		}
		email := strings.ToLower(addr.Address)
		if seen[email] {
			continue
		}
		seen[email] = true
		valid = append(valid, email)
	}
	return valid, invalid
}

type Service struct {
	store     Store
	queue     Enqueuer
	publicURL string
	logger    *slog.Logger
}

func NewService(store Store, queue Enqueuer, publicURL string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, queue: queue, publicURL: publicURL, logger: logger}
}

func (s *Service) Link(interviewID string) string { return Link(s.publicURL, interviewID) }

// Send records an invitation per address and queues its email. Only live
// interviews take invitations. An address whose email cannot be queued is
// reported in Failed and leaves no new invitation row behind; the rest of the
// batch still goes out.
func (s *Service) Send(ctx context.Context, iv *models.Interview, raw, invitedBy string) (Result, error) {
	res := Result{Link: s.Link(iv.ID), Queued: []string{}, Invalid: []string{}, Failed: []string{}}
	if iv.Status != models.StatusLive {
		return res, apperr.Validation("NOT_LIVE", "only live interviews can take invitations")
	}
	valid, invalid := ParseEmails(raw)
	res.Invalid = append(res.Invalid, invalid...)
	if len(valid) == 0 {
		return res, apperr.Validation("NO_EMAILS", "enter at least one email address")
	}

	existing, err := s.store.ListInvitations(ctx, iv.ID)
	if err != nil {
		return res, apperr.Wrap(err, apperr.KindFetch, "INVITE_FAILED", "could not read the invitations")
	}
	known := make(map[string]bool, len(existing))
	for _, inv := range existing {
		known[inv.Email] = true
	}

	var firstErr error
	for _, email := range valid {
		if err := s.sendOne(ctx, iv, email, res.Link, invitedBy, known[email]); err != nil {
			res.Failed = append(res.Failed, email)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		res.Queued = append(res.Queued, email)
	}
	s.logger.Info("invitations queued", slog.String("interview_id", iv.ID),
		slog.Int("count", len(res.Queued)), slog.Int("failed", len(res.Failed)))
	if firstErr != nil {
		return res, apperr.Wrap(firstErr, apperr.KindWrite, "INVITE_FAILED",
			"could not queue the invitation for "+strings.Join(res.Failed, ", "))
	}
	return res, nil
}

// sendOne records the invitation and queues its email. A row created here is
// withdrawn again when the email cannot be queued.
func (s *Service) sendOne(ctx context.Context, iv *models.Interview, email, link, invitedBy string, known bool) error {
	id, err := s.store.CreateInvitation(ctx, &models.Invitation{InterviewID: iv.ID, Email: email})
	if err != nil {
		return err
	}
	payload := EmailPayload{
		InvitationID:   id,
		InterviewID:    iv.ID,
		InterviewTitle: iv.Title,
		To:             email,
		Link:           link,
		InvitedBy:      invitedBy,
	}
	if _, err := s.queue.Enqueue(ctx, JobType, payload, 0, maxAttempts); err != nil {
		if !known {
			if derr := s.store.DeleteInvitation(ctx, id); derr != nil {
				s.logger.Error("withdraw invitation", slog.String("invitation_id", id), slog.Any("err", derr))
			}
		}
		return err
	}
	return nil
}
