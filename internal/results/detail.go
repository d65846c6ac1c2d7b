package results

import (
	"context"
	"strings"
	"time"

	"github.com/garnizeh/interviewdesk/internal/apperr"
	"github.com/garnizeh/interviewdesk/internal/models"
)

type Updater interface {
	UpdateCandidate(ctx context.Context, c *models.CandidateResult) error
}

// Detail is one candidate opened for review. Score edits are held until SaveScores.
type Detail struct {
	candidate models.CandidateResult
	pending   map[string]models.ScoreValue
}

// DetailState is the serialisable view of a Detail.
type DetailState struct {
	Candidate models.CandidateResult       `json:"candidate"`
	Pending   map[string]models.ScoreValue `json:"pending_scores"`
	Unsaved   bool                         `json:"unsaved"`
}

func NewDetail(c models.CandidateResult) *Detail {
	return &Detail{candidate: c.Clone(), pending: map[string]models.ScoreValue{}}
}

func (d *Detail) Candidate() models.CandidateResult { return d.candidate.Clone() }

func (d *Detail) State() DetailState {
	pending := make(map[string]models.ScoreValue, len(d.pending))
	for k, v := range d.pending {
		pending[k] = v
	}
	return DetailState{Candidate: d.candidate.Clone(), Pending: pending, Unsaved: len(pending) > 0}
}

// ScoreEdit is one staged change of a criterion score.
type ScoreEdit struct {
	CriterionID string            `json:"criterion_id"`
	Value       models.ScoreValue `json:"score"`
}

// EditScore stages a new value for one of the candidate's scores.
func (d *Detail) EditScore(criterionID string, v models.ScoreValue) error {
	return d.EditScores([]ScoreEdit{{CriterionID: criterionID, Value: v}})
}

// EditScores stages a batch of edits. Only numeric scores can be changed, and only
// to another number. Nothing is staged unless every edit is valid.
func (d *Detail) EditScores(edits []ScoreEdit) error {
	for _, e := range edits {
		cur, ok := d.candidate.ScoreFor(e.CriterionID)
		if !ok {
			return apperr.NotFound("SCORE_NOT_FOUND", "candidate has no score for criterion %s", e.CriterionID)
		}
		if e.Value.Kind() == models.KindNone {
			return apperr.Validation("SCORE_REQUIRED", "score for criterion %s is empty", e.CriterionID)
		}
		if cur.Value.Kind() != models.KindNumber || e.Value.Kind() != models.KindNumber {
			return apperr.Validation("SCORE_NOT_NUMERIC", "score for criterion %s is not numeric", e.CriterionID)
		}
	}
	for _, e := range edits {
		d.pending[e.CriterionID] = e.Value
	}
	return nil
}

func (d *Detail) DiscardEdits() {
	d.pending = map[string]models.ScoreValue{}
}

// SaveScores applies the staged edits, recomputes the overall score as the mean
// of numeric scores and persists the candidate. Staged edits survive a failure.
func (d *Detail) SaveScores(ctx context.Context, u Updater) error {
	next := d.candidate.Clone()
	for i, s := range next.Scores {
		if v, ok := d.pending[s.CriterionID]; ok {
			next.Scores[i].Value = v
		}
	}
	overall := models.OverallScore(next.Scores)
	next.OverallScore = &overall

	if err := u.UpdateCandidate(ctx, &next); err != nil {
		return apperr.Wrap(err, apperr.KindWrite, "SAVE_SCORES_FAILED", "could not save the scores")
	}
	d.candidate = next
	d.pending = map[string]models.ScoreValue{}
	return nil
}

// AddNote attaches a note by author to the criterion column named column.
func (d *Detail) AddNote(ctx context.Context, u Updater, author, column, content string, cols []models.CriteriaColumn) error {
	column = strings.TrimSpace(column)
	content = strings.TrimSpace(content)
	if column == "" || content == "" {
		return apperr.Validation("NOTE_INCOMPLETE", "a note needs a criterion and some text")
	}
	if !hasColumnNamed(cols, column) {
		return apperr.Validation("UNKNOWN_COLUMN", "no criterion named %q", column)
	}

	next := d.candidate.Clone()
	next.Notes = append(next.Notes, models.CandidateNote{
		Author:  author,
		Column:  column,
		Content: content,
		Created: time.Now().UTC().UnixMilli(),
	})
	if err := u.UpdateCandidate(ctx, &next); err != nil {
		return apperr.Wrap(err, apperr.KindWrite, "ADD_NOTE_FAILED", "could not save the note")
	}
	d.candidate = next
	return nil
}

func hasColumnNamed(cols []models.CriteriaColumn, name string) bool {
	for _, c := range cols {
		if c.Name == name {
			return true
		}
	}
	return false
}
