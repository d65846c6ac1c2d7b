package results_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/garnizeh/interviewdesk/internal/apperr"
	"github.com/garnizeh/interviewdesk/internal/models"
	"github.com/garnizeh/interviewdesk/internal/results"
	"github.com/garnizeh/interviewdesk/pkg/repository/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func interview() *models.Interview {
	iv := models.NewInterview("owner@example.com")
	iv.ID = "iv-1"
	iv.Status = models.StatusLive
	iv.GeneralCriteria = models.CriteriaList{{ID: "comm", Name: "Communication", Type: models.CriterionRating, Scope: models.ScopeGeneral}}
	iv.Tasks = []models.Task{{
		ID:    "t1",
		Title: "Merger Math",
		Criteria: models.CriteriaList{
			{ID: "acc", Name: "Accuracy", Type: models.CriterionNumeric, Scope: models.ScopeTask},
			{ID: "done", Name: "Finished", Type: models.CriterionBoolean, Scope: models.ScopeTask},
		},
	}}
	iv.Stats = &models.Stats{Invited: 3, Completed: 3}
	return iv
}

func candidates() []models.CandidateResult {
	return []models.CandidateResult{
		{
			ID: "c1", InterviewID: "iv-1", Name: "Michael Chen", Email: "michael@example.com", CompletedAt: 2000,
			Scores: models.ScoreList{
				{CriterionID: "comm", CriterionName: "Communication", Value: models.Number(4)},
				{CriterionID: "acc", CriterionName: "Accuracy", Value: models.Number(3.6)},
				{CriterionID: "done", CriterionName: "Finished", Value: models.Bool(true)},
			},
			OverallScore: ptr(3.8),
		},
		{
			ID: "c2", InterviewID: "iv-1", Name: "Sarah Johnson", Email: "sarah@example.com", CompletedAt: 1000,
			Scores: models.ScoreList{
				{CriterionID: "comm", CriterionName: "Communication", Value: models.Number(5)},
				{CriterionID: "acc", CriterionName: "Accuracy", Value: models.Number(3.4)},
				{CriterionID: "done", CriterionName: "Finished", Value: models.Bool(false)},
			},
			OverallScore: ptr(4.2),
		},
		{
			ID: "c3", InterviewID: "iv-1", Name: "Alex Rivera", Email: "alex@corp.test", CompletedAt: 3000,
			Scores: models.ScoreList{
				{CriterionID: "comm", CriterionName: "Communication", Value: models.Number(3)},
			},
		},
	}
}

func names(rows []models.CandidateResult) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func TestColumns_GeneralThenTask(t *testing.T) {
	cols := results.Columns(interview())
	require.Len(t, cols, 3)
	assert.Equal(t, "comm", cols[0].ID)
	assert.Equal(t, models.ScopeGeneral, cols[0].Scope)
	assert.Empty(t, cols[0].TaskName)
	assert.Equal(t, "acc", cols[1].ID)
	assert.Equal(t, "Merger Math", cols[1].TaskName)
	assert.Equal(t, models.ScopeTask, cols[2].Scope)

	assert.Empty(t, results.Columns(nil))
}

func TestSummarize(t *testing.T) {
	data := models.PerformanceData{Candidates: candidates(), CriteriaColumns: results.Columns(interview())}
	ov := results.Summarize(data)

	assert.Equal(t, 3, ov.TotalCandidates)
	assert.InDelta(t, (3.8+4.2+0)/3, ov.AverageOverall, 1e-9)
	require.NotNil(t, ov.TopPerformer)
	assert.Equal(t, "c2", ov.TopPerformer.ID)

	require.Len(t, ov.CriteriaAverages, 3)
	assert.InDelta(t, 4.0, ov.CriteriaAverages[0].Average, 1e-9)
	assert.InDelta(t, 7.0/3, ov.CriteriaAverages[1].Average, 1e-9)
	assert.InDelta(t, 0.0, ov.CriteriaAverages[2].Average, 1e-9)
	require.NotNil(t, ov.Strongest)
	require.NotNil(t, ov.Weakest)
	assert.Equal(t, "comm", ov.Strongest.ID)
	assert.Equal(t, "done", ov.Weakest.ID)
}

func TestSummarize_TiesPickFirst(t *testing.T) {
	data := models.PerformanceData{
		Candidates: []models.CandidateResult{
			{ID: "a", OverallScore: ptr(4), Scores: models.ScoreList{{CriterionID: "x", Value: models.Number(2)}, {CriterionID: "y", Value: models.Number(2)}}},
			{ID: "b", OverallScore: ptr(4), Scores: models.ScoreList{{CriterionID: "x", Value: models.Number(2)}, {CriterionID: "y", Value: models.Number(2)}}},
		},
		CriteriaColumns: []models.CriteriaColumn{{ID: "x", Name: "X"}, {ID: "y", Name: "Y"}},
	}
	ov := results.Summarize(data)
	assert.Equal(t, "a", ov.TopPerformer.ID)
	assert.Equal(t, "x", ov.Strongest.ID)
	assert.Equal(t, "x", ov.Weakest.ID)
}

func TestSummarize_Empty(t *testing.T) {
	ov := results.Summarize(models.PerformanceData{CriteriaColumns: []models.CriteriaColumn{{ID: "x", Name: "X"}}})
	assert.Zero(t, ov.TotalCandidates)
	assert.Zero(t, ov.AverageOverall)
	assert.Nil(t, ov.TopPerformer)
	require.Len(t, ov.CriteriaAverages, 1)
	assert.Zero(t, ov.CriteriaAverages[0].Average)
}

func TestTable_SortCycle(t *testing.T) {
	var tbl results.Table
	cols := results.Columns(interview())

	s, err := tbl.ToggleSort(results.SortOverall, cols)
	require.NoError(t, err)
	assert.Equal(t, results.Ascending, s.Direction)
	assert.Equal(t, []string{"Alex Rivera", "Michael Chen", "Sarah Johnson"}, names(tbl.Rows(candidates())))

	s, _ = tbl.ToggleSort(results.SortOverall, cols)
	assert.Equal(t, results.Descending, s.Direction)
	assert.Equal(t, []string{"Sarah Johnson", "Michael Chen", "Alex Rivera"}, names(tbl.Rows(candidates())))

	s, _ = tbl.ToggleSort(results.SortOverall, cols)
	assert.Equal(t, results.Unsorted, s.Direction)
	assert.Empty(t, s.Key)
	assert.Equal(t, []string{"Michael Chen", "Sarah Johnson", "Alex Rivera"}, names(tbl.Rows(candidates())))
}

func TestTable_NewColumnStartsAscending(t *testing.T) {
	var tbl results.Table
	cols := results.Columns(interview())
	_, _ = tbl.ToggleSort(results.SortName, cols)
	_, _ = tbl.ToggleSort(results.SortName, cols)

	s, err := tbl.ToggleSort(results.SortCompletedAt, cols)
	require.NoError(t, err)
	assert.Equal(t, results.Sort{Key: results.SortCompletedAt, Direction: results.Ascending}, s)
	assert.Equal(t, []string{"Sarah Johnson", "Michael Chen", "Alex Rivera"}, names(tbl.Rows(candidates())))
}

func TestTable_SortByCriterion(t *testing.T) {
	var tbl results.Table
	_, err := tbl.ToggleSort("acc", results.Columns(interview()))
	require.NoError(t, err)
	// Alex has no accuracy score and sorts as 0.
	assert.Equal(t, []string{"Alex Rivera", "Sarah Johnson", "Michael Chen"}, names(tbl.Rows(candidates())))
}

func TestTable_UnknownKey(t *testing.T) {
	var tbl results.Table
	_, err := tbl.ToggleSort("nope", results.Columns(interview()))
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, results.Sort{}, tbl.Sort())
}

func TestTable_SearchComposesWithSort(t *testing.T) {
	var tbl results.Table
	cols := results.Columns(interview())
	tbl.SetSearch("EXAMPLE.com")
	_, _ = tbl.ToggleSort(results.SortOverall, cols)
	_, _ = tbl.ToggleSort(results.SortOverall, cols)

	assert.Equal(t, []string{"Sarah Johnson", "Michael Chen"}, names(tbl.Rows(candidates())))

	tbl.SetSearch("rivera")
	assert.Equal(t, []string{"Alex Rivera"}, names(tbl.Rows(candidates())))

	tbl.SetSearch("zzz")
	assert.Empty(t, tbl.Rows(candidates()))
}

func TestDetail_SaveScoresRecomputesOverall(t *testing.T) {
	m := mock.NewMocks()
	for _, c := range candidates() {
		_, err := m.ResultRepo.CreateCandidate(context.Background(), &c)
		require.NoError(t, err)
	}
	d := results.NewDetail(candidates()[0])

	require.NoError(t, d.EditScore("comm", models.Number(5)))
	require.NoError(t, d.EditScore("acc", models.Number(4)))
	assert.True(t, d.State().Unsaved)

	require.NoError(t, d.SaveScores(context.Background(), m.ResultRepo))
	got := d.Candidate()
	require.NotNil(t, got.OverallScore)
	// [5, 4, true] -> 4.5
	assert.InDelta(t, 4.5, *got.OverallScore, 1e-9)
	assert.False(t, d.State().Unsaved)

	require.Len(t, m.ResultRepo.Updated, 1)
	assert.InDelta(t, 4.5, *m.ResultRepo.Updated[0].OverallScore, 1e-9)
}

func TestDetail_SaveFailureKeepsEdits(t *testing.T) {
	m := mock.NewMocks()
	m.ResultRepo.UpdateErr = errors.New("boom")
	d := results.NewDetail(candidates()[0])
	require.NoError(t, d.EditScore("comm", models.Number(1)))

	err := d.SaveScores(context.Background(), m.ResultRepo)
	require.Error(t, err)
	assert.Equal(t, apperr.KindWrite, apperr.KindOf(err))

	st := d.State()
	assert.True(t, st.Unsaved)
	assert.InDelta(t, 3.8, *st.Candidate.OverallScore, 1e-9)
	v, _ := st.Candidate.ScoreFor("comm")
	assert.Equal(t, models.Number(4), v.Value)
}

func TestDetail_EditUnknownScore(t *testing.T) {
	d := results.NewDetail(candidates()[2])
	err := d.EditScore("acc", models.Number(2))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	err = d.EditScore("comm", models.ScoreValue{})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestScreen_AddNote(t *testing.T) {
	m := mock.NewMocks()
	for _, c := range candidates() {
		_, err := m.ResultRepo.CreateCandidate(context.Background(), &c)
		require.NoError(t, err)
	}
	scr, err := results.Load(context.Background(), m.ResultRepo, interview())
	require.NoError(t, err)

	err = scr.AddNote(context.Background(), m.ResultRepo, "owner@example.com", "Accuracy", "solid")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "no candidate open")

	require.NoError(t, scr.OpenCandidate("c2"))
	err = scr.AddNote(context.Background(), m.ResultRepo, "owner@example.com", "", "solid")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	err = scr.AddNote(context.Background(), m.ResultRepo, "owner@example.com", "Charisma", "solid")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	require.NoError(t, scr.AddNote(context.Background(), m.ResultRepo, "owner@example.com", "Accuracy", "  solid work "))
	st := scr.State()
	require.NotNil(t, st.Detail)
	require.Len(t, st.Detail.Candidate.Notes, 1)
	note := st.Detail.Candidate.Notes[0]
	assert.Equal(t, "owner@example.com", note.Author)
	assert.Equal(t, "Accuracy", note.Column)
	assert.Equal(t, "solid work", note.Content)

	stored, err := m.ResultRepo.GetCandidate(context.Background(), "c2")
	require.NoError(t, err)
	assert.Len(t, stored.Notes, 1)
}

func TestScreen_LoadFailure(t *testing.T) {
	m := mock.NewMocks()
	m.ResultRepo.ListErr = errors.New("down")
	_, err := results.Load(context.Background(), m.ResultRepo, interview())
	assert.Equal(t, apperr.KindFetch, apperr.KindOf(err))
}

func TestScreen_OpenMissingCandidate(t *testing.T) {
	scr, err := results.Load(context.Background(), mock.NewMocks().ResultRepo, interview())
	require.NoError(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(scr.OpenCandidate("ghost")))
	assert.Empty(t, scr.State().Rows)
}

func TestExport(t *testing.T) {
	m := mock.NewMocks()
	for _, c := range candidates() {
		_, err := m.ResultRepo.CreateCandidate(context.Background(), &c)
		require.NoError(t, err)
	}
	scr, err := results.Load(context.Background(), m.ResultRepo, interview())
	require.NoError(t, err)
	scr.SetSearch("example.com")

	var buf bytes.Buffer
	require.NoError(t, scr.Export(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Name,Email,Completed At,Overall Score,Communication,Merger Math: Accuracy,Merger Math: Finished", lines[0])
	assert.Equal(t, "Michael Chen,michael@example.com,1970-01-01T00:00:02Z,3.80,4.0,3.6,Yes", lines[1])
	assert.Equal(t, "Sarah Johnson,sarah@example.com,1970-01-01T00:00:01Z,4.20,5.0,3.4,No", lines[2])
}

func TestDetail_EditScoresIsAllOrNothing(t *testing.T) {
	d := results.NewDetail(candidates()[0])
	err := d.EditScores([]results.ScoreEdit{
		{CriterionID: "comm", Value: models.Number(1)},
		{CriterionID: "ghost", Value: models.Number(2)},
	})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.False(t, d.State().Unsaved)
}

func TestDetail_EditScoresNumericOnly(t *testing.T) {
	d := results.NewDetail(candidates()[0])

	err := d.EditScore("comm", models.Text("great"))
	require.Error(t, err)
	assert.Equal(t, "SCORE_NOT_NUMERIC", apperr.As(err).Code)

	err = d.EditScore("done", models.Number(5))
	require.Error(t, err)
	assert.Equal(t, "SCORE_NOT_NUMERIC", apperr.As(err).Code)

	err = d.EditScores([]results.ScoreEdit{
		{CriterionID: "acc", Value: models.Number(4)},
		{CriterionID: "done", Value: models.Bool(false)},
	})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.False(t, d.State().Unsaved)

	m := mock.NewMocks()
	require.NoError(t, d.EditScore("acc", models.Number(4)))
	c := d.Candidate()
	_, err = m.ResultRepo.CreateCandidate(context.Background(), &c)
	require.NoError(t, err)
	require.NoError(t, d.SaveScores(context.Background(), m.ResultRepo))
	saved := d.Candidate()
	assert.InDelta(t, 4.0, *saved.OverallScore, 1e-9)
	done, _ := saved.ScoreFor("done")
	assert.Equal(t, models.Bool(true), done.Value)
}
