package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/garnizeh/interviewdesk/internal/apperr"
	"github.com/garnizeh/interviewdesk/internal/models"
	"github.com/garnizeh/interviewdesk/internal/validation"
	"github.com/garnizeh/interviewdesk/pkg/repository"
)

// IngestHandler accepts graded candidate attempts from the grading service.
type IngestHandler struct {
	interviews repository.InterviewRepo
	results    repository.ResultRepo
	now        func() time.Time
}

func NewIngestHandler(interviews repository.InterviewRepo, results repository.ResultRepo) *IngestHandler {
	return &IngestHandler{interviews: interviews, results: results, now: time.Now}
}

// CreateResult stores one candidate result for a published interview the
// caller owns. A missing overall score is computed from the numeric scores.
func (h *IngestHandler) CreateResult(w http.ResponseWriter, r *http.Request) {
	s, _ := SessionFrom(r.Context())
	id := mux.Vars(r)["id"]

	var c models.CandidateResult
	if err := decode(r, validation.SchemaResult, &c); err != nil {
		writeError(w, err)
		return
	}

	iv, err := h.interviews.GetWithTasks(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Wrap(err, apperr.KindFetch, "GET_INTERVIEW_FAILED", "could not load the interview"))
		return
	}
	if iv == nil || iv.OwnerEmail != s.Email {
		writeError(w, apperr.NotFound("INTERVIEW_NOT_FOUND", "interview %s not found", id))
		return
	}
	if iv.Status == models.StatusDraft {
		writeError(w, apperr.Validation("NOT_PUBLISHED", "draft interviews take no results"))
		return
	}

	c.InterviewID = id
	if c.CompletedAt == 0 {
		c.CompletedAt = h.now().UnixMilli()
	}
	if c.Notes == nil {
		c.Notes = models.NoteList{}
	}
	if c.OverallScore == nil {
		overall := models.OverallScore(c.Scores)
		c.OverallScore = &overall
	}

	cid, err := h.results.CreateCandidate(r.Context(), &c)
	if err != nil {
		writeError(w, apperr.Wrap(err, apperr.KindWrite, "CREATE_RESULT_FAILED", "could not store the result"))
		return
	}
	logger.Info("result ingested", slog.String("interview_id", id), slog.String("candidate_id", cid))
	writeJSON(w, http.StatusCreated, map[string]string{"id": cid})
}
