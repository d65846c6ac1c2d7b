package api_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/garnizeh/interviewdesk/internal/models"
	"github.com/garnizeh/interviewdesk/internal/results"
	"github.com/garnizeh/interviewdesk/internal/workspace"
)

var errTest = errors.New("store unavailable")

func seedResults(t *testing.T, app *testApp, owner string) *models.Interview {
	t.Helper()
	iv := models.NewInterview(owner)
	iv.Title = "Q3 Analyst"
	iv.Status = models.StatusLive
	iv.GeneralCriteria = models.CriteriaList{{ID: "comm", Name: "Communication", Type: models.CriterionRating, Scope: models.ScopeGeneral}}
	iv.Stats = &models.Stats{Invited: 2, Completed: 2}
	return app.mocks.InterviewRepo.Put(iv)
}

func TestIngestAndResultsFlow(t *testing.T) {
	app := newTestApp(t, nil)
	tok := app.signUp(t, "owner@example.com")
	iv := seedResults(t, app, "owner@example.com")

	ingest := []map[string]any{
		{"name": "Michael Chen", "email": "m@example.com", "completed_at": 1700000000000,
			"scores": []map[string]any{{"criterion_id": "comm", "score": 3.8}}},
		{"name": "Sarah Johnson", "email": "s@example.com", "completed_at": 1700000100000,
			"scores": []map[string]any{{"criterion_id": "comm", "score": 4.2}, {"criterion_id": "fit", "score": true}}},
	}
	var ids []string
	for _, body := range ingest {
		w := app.do(t, http.MethodPost, "/v1/interviews/"+iv.ID+"/results", tok, body)
		if w.Code != http.StatusCreated {
			t.Fatalf("ingest: expected 201 got %d: %s", w.Code, w.Body.String())
		}
		var out struct {
			ID string `json:"id"`
		}
		decodeBody(t, w, &out)
		ids = append(ids, out.ID)
	}
	stored, _ := app.mocks.ResultRepo.GetCandidate(t.Context(), ids[1])
	if stored == nil || stored.OverallScore == nil || *stored.OverallScore != 4.2 {
		t.Fatalf("ingest: expected the overall computed from numeric scores, got %+v", stored)
	}

	if w := app.do(t, http.MethodPost, "/v1/interviews/"+iv.ID+"/results", tok, map[string]any{"name": "x"}); w.Code != http.StatusBadRequest {
		t.Fatalf("ingest invalid: expected 400 got %d", w.Code)
	}

	w := app.do(t, http.MethodPost, "/v1/app/interviews/"+iv.ID+"/open", tok, nil)
	var snap workspace.Snapshot
	decodeBody(t, w, &snap)
	if snap.View != "results" || snap.Results == nil || len(snap.Results.Rows) != 2 {
		t.Fatalf("open: expected results, got %+v", snap)
	}

	app.do(t, http.MethodPost, "/v1/app/results/sort/"+results.SortOverall, tok, nil)
	w = app.do(t, http.MethodPost, "/v1/app/results/sort/"+results.SortOverall, tok, nil)
	decodeBody(t, w, &snap)
	if snap.Results.Sort.Direction != results.Descending || snap.Results.Rows[0].Name != "Sarah Johnson" {
		t.Fatalf("sort: unexpected rows %+v", snap.Results.Rows)
	}
	if w := app.do(t, http.MethodPost, "/v1/app/results/sort/bogus", tok, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad sort key: expected 400 got %d", w.Code)
	}

	w = app.do(t, http.MethodGet, "/v1/app/results/overview", tok, nil)
	var ov results.Overview
	decodeBody(t, w, &ov)
	if ov.TotalCandidates != 2 || ov.TopPerformer == nil || ov.TopPerformer.Name != "Sarah Johnson" {
		t.Fatalf("overview: unexpected %+v", ov)
	}

	w = app.do(t, http.MethodGet, "/v1/app/results/export.csv", tok, nil)
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv") {
		t.Fatalf("export: %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	if got := w.Header().Get("Content-Disposition"); got != `attachment; filename="q3-analyst-results.csv"` {
		t.Fatalf("export: unexpected disposition %q", got)
	}
	if lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n"); len(lines) != 3 {
		t.Fatalf("export: expected header and two rows, got %q", w.Body.String())
	}

	if w := app.do(t, http.MethodPost, "/v1/app/results/candidates/"+ids[0]+"/open", tok, nil); w.Code != http.StatusOK {
		t.Fatalf("open candidate: %d %s", w.Code, w.Body.String())
	}
	if w := app.do(t, http.MethodPut, "/v1/app/results/detail/scores", tok, []map[string]any{}); w.Code != http.StatusBadRequest {
		t.Fatalf("empty edits: expected 400 got %d", w.Code)
	}
	w = app.do(t, http.MethodPut, "/v1/app/results/detail/scores", tok, []map[string]any{{"criterion_id": "comm", "score": 5}})
	decodeBody(t, w, &snap)
	if snap.Results.Detail == nil || !snap.Results.Detail.Unsaved {
		t.Fatalf("edit: expected unsaved edits, got %+v", snap.Results.Detail)
	}
	w = app.do(t, http.MethodPost, "/v1/app/results/detail/save", tok, nil)
	decodeBody(t, w, &snap)
	if got := snap.Results.Detail.Candidate.OverallOrZero(); got != 5 {
		t.Fatalf("save: expected overall 5, got %v", got)
	}

	w = app.do(t, http.MethodPost, "/v1/app/results/detail/notes", tok, map[string]string{"column": "Communication", "content": "clear"})
	if w.Code != http.StatusOK {
		t.Fatalf("note: %d %s", w.Code, w.Body.String())
	}
	w = app.do(t, http.MethodPost, "/v1/app/results/detail/notes", tok, map[string]string{"column": "Nope", "content": "clear"})
	if w.Code != http.StatusBadRequest || errorCode(t, w) != "UNKNOWN_COLUMN" {
		t.Fatalf("note on unknown column: %d %s", w.Code, w.Body.String())
	}
}

func TestIngest_ForeignOrDraft(t *testing.T) {
	app := newTestApp(t, nil)
	tok := app.signUp(t, "owner@example.com")
	foreign := seedResults(t, app, "someone@else.com")
	draft := app.mocks.InterviewRepo.Put(models.NewInterview("owner@example.com"))

	body := map[string]any{"name": "A", "email": "a@example.com", "scores": []map[string]any{}}
	if w := app.do(t, http.MethodPost, "/v1/interviews/"+foreign.ID+"/results", tok, body); w.Code != http.StatusNotFound {
		t.Fatalf("foreign: expected 404 got %d", w.Code)
	}
	if w := app.do(t, http.MethodPost, "/v1/interviews/"+draft.ID+"/results", tok, body); w.Code != http.StatusBadRequest || errorCode(t, w) != "NOT_PUBLISHED" {
		t.Fatalf("draft: got %d %s", w.Code, w.Body.String())
	}
}
