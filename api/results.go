package api

import (
	"bytes"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/gorilla/mux"

	"github.com/garnizeh/interviewdesk/internal/results"
	"github.com/garnizeh/interviewdesk/internal/validation"
)

type noteRequest struct {
	Column  string `json:"column"`
	Content string `json:"content"`
}

func (h *AppHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.workspace(r).Overview()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

func (h *AppHandler) Table(w http.ResponseWriter, r *http.Request) {
	rows, err := h.workspace(r).Table()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func (h *AppHandler) ResultsSearch(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decode(r, "", &req); err != nil {
		writeError(w, err)
		return
	}
	snap, err := h.workspace(r).SetResultsSearch(req.Text)
	respond(w, snap, err)
}

func (h *AppHandler) ToggleSort(w http.ResponseWriter, r *http.Request) {
	snap, err := h.workspace(r).ToggleSort(mux.Vars(r)["key"])
	respond(w, snap, err)
}

var unsafeName = regexp.MustCompile(`[^a-z0-9]+`)

// exportName turns an interview title into a download file name.
func exportName(title string) string {
	slug := strings.Trim(unsafeName.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if slug == "" {
		slug = "interview"
	}
	return slug + "-results.csv"
}

// Export sends the filtered, sorted table as a CSV download.
func (h *AppHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	title, err := h.workspace(r).Export(&buf)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportName(title)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *AppHandler) OpenCandidate(w http.ResponseWriter, r *http.Request) {
	snap, err := h.workspace(r).OpenCandidate(mux.Vars(r)["cid"])
	respond(w, snap, err)
}

func (h *AppHandler) CloseCandidate(w http.ResponseWriter, r *http.Request) {
	snap, err := h.workspace(r).CloseCandidate()
	respond(w, snap, err)
}

// EditScores stages score edits on the open candidate without saving them.
func (h *AppHandler) EditScores(w http.ResponseWriter, r *http.Request) {
	var edits []results.ScoreEdit
	if err := decode(r, validation.SchemaScores, &edits); err != nil {
		writeError(w, err)
		return
	}
	snap, err := h.workspace(r).EditScores(edits)
	respond(w, snap, err)
}

func (h *AppHandler) SaveScores(w http.ResponseWriter, r *http.Request) {
	snap, err := h.workspace(r).SaveScores(r.Context())
	respond(w, snap, err)
}

func (h *AppHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decode(r, "", &req); err != nil {
		writeError(w, err)
		return
	}
	snap, err := h.workspace(r).AddNote(r.Context(), req.Column, req.Content)
	respond(w, snap, err)
}
