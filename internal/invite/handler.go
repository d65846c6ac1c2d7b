package invite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/garnizeh/interviewdesk/internal/jobs"
	"github.com/garnizeh/interviewdesk/internal/metrics"
)

// Message renders the invitation email for p.
func (p EmailPayload) Message(from string) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello,\n\nYou have been invited to take the interview %q", p.InterviewTitle)
	if p.InvitedBy != "" {
		fmt.Fprintf(&b, " by %s", p.InvitedBy)
	}
	fmt.Fprintf(&b, ".\n\nStart here: %s\n\nGood luck!\n", p.Link)
	return Message{
		From:    from,
		To:      p.To,
		Subject: "Interview invitation: " + p.InterviewTitle,
		Body:    b.String(),
	}
}

// Handler delivers JobType jobs through m.
func Handler(m Mailer, from string) jobs.Handler {
	return func(ctx context.Context, j *jobs.Job) error {
		var p EmailPayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			metrics.InviteEmails.WithLabelValues(metrics.ResultError).Inc()
			return fmt.Errorf("decode invite payload: %w", err)
		}
		err := m.Send(ctx, p.Message(from))
		metrics.InviteEmails.WithLabelValues(metrics.Outcome(err)).Inc()
		return err
	}
}
