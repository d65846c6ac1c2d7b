package results

import (
	"context"
	"io"

	"github.com/garnizeh/interviewdesk/internal/apperr"
	"github.com/garnizeh/interviewdesk/internal/models"
)

type Lister interface {
	ListCandidates(ctx context.Context, interviewID string) ([]models.CandidateResult, error)
}

// Screen is the results screen of one interview.
type Screen struct {
	interview *models.Interview
	data      models.PerformanceData
	table     Table
	detail    *Detail
}

// State is the serialisable view of a Screen.
type State struct {
	InterviewID string                   `json:"interview_id"`
	Title       string                   `json:"title"`
	Overview    Overview                 `json:"overview"`
	Columns     []models.CriteriaColumn  `json:"criteria_columns"`
	Rows        []models.CandidateResult `json:"rows"`
	Search      string                   `json:"search"`
	Sort        Sort                     `json:"sort"`
	Detail      *DetailState             `json:"detail,omitempty"`
}

// Load fetches the candidates of iv.
func Load(ctx context.Context, l Lister, iv *models.Interview) (*Screen, error) {
	cands, err := l.ListCandidates(ctx, iv.ID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindFetch, "LIST_RESULTS_FAILED", "could not load the results")
	}
	if cands == nil {
		cands = []models.CandidateResult{}
	}
	return &Screen{
		interview: iv.Clone(),
		data:      models.PerformanceData{Candidates: cands, CriteriaColumns: Columns(iv)},
	}, nil
}

func (s *Screen) InterviewID() string { return s.interview.ID }

func (s *Screen) Data() models.PerformanceData { return s.data }

func (s *Screen) Overview() Overview { return Summarize(s.data) }

func (s *Screen) Rows() []models.CandidateResult { return s.table.Rows(s.data.Candidates) }

func (s *Screen) SetSearch(text string) { s.table.SetSearch(text) }

func (s *Screen) ToggleSort(key string) (Sort, error) {
	return s.table.ToggleSort(key, s.data.CriteriaColumns)
}

func (s *Screen) OpenCandidate(id string) error {
	for _, c := range s.data.Candidates {
		if c.ID == id {
			s.detail = NewDetail(c)
			return nil
		}
	}
	return apperr.NotFound("CANDIDATE_NOT_FOUND", "candidate %s not found", id)
}

func (s *Screen) CloseCandidate() { s.detail = nil }

func (s *Screen) EditScore(criterionID string, v models.ScoreValue) error {
	d, err := s.openDetail()
	if err != nil {
		return err
	}
	return d.EditScore(criterionID, v)
}

func (s *Screen) EditScores(edits []ScoreEdit) error {
	d, err := s.openDetail()
	if err != nil {
		return err
	}
	return d.EditScores(edits)
}

func (s *Screen) SaveScores(ctx context.Context, u Updater) error {
	d, err := s.openDetail()
	if err != nil {
		return err
	}
	if err := d.SaveScores(ctx, u); err != nil {
		return err
	}
	s.replace(d.Candidate())
	return nil
}

func (s *Screen) AddNote(ctx context.Context, u Updater, author, column, content string) error {
	d, err := s.openDetail()
	if err != nil {
		return err
	}
	if err := d.AddNote(ctx, u, author, column, content, s.data.CriteriaColumns); err != nil {
		return err
	}
	s.replace(d.Candidate())
	return nil
}

// Export writes the current table, filtered and sorted, as CSV.
func (s *Screen) Export(w io.Writer) error {
	return WriteCSV(w, s.Rows(), s.data.CriteriaColumns)
}

func (s *Screen) State() State {
	st := State{
		InterviewID: s.interview.ID,
		Title:       s.interview.Title,
		Overview:    s.Overview(),
		Columns:     s.data.CriteriaColumns,
		Rows:        s.Rows(),
		Search:      s.table.Search(),
		Sort:        s.table.Sort(),
	}
	if s.detail != nil {
		ds := s.detail.State()
		st.Detail = &ds
	}
	return st
}

func (s *Screen) openDetail() (*Detail, error) {
	if s.detail == nil {
		return nil, apperr.Validation("NO_CANDIDATE", "no candidate is open")
	}
	return s.detail, nil
}

func (s *Screen) replace(c models.CandidateResult) {
	for i := range s.data.Candidates {
		if s.data.Candidates[i].ID == c.ID {
			s.data.Candidates[i] = c
			return
		}
	}
}
