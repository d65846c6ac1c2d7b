package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/interviewdesk/internal/templates"
	"github.com/garnizeh/interviewdesk/internal/workspace"
)

// AppHandler drives the caller's workspace. Every action answers with the
// resulting snapshot.
type AppHandler struct {
	registry *workspace.Registry
	catalog  *templates.Catalog
}

func NewAppHandler(reg *workspace.Registry, catalog *templates.Catalog) *AppHandler {
	if catalog == nil {
		catalog = templates.Default()
	}
	return &AppHandler{registry: reg, catalog: catalog}
}

type textRequest struct {
	Text string `json:"text"`
}

func (h *AppHandler) workspace(r *http.Request) *workspace.Workspace {
	s, _ := SessionFrom(r.Context())
	return h.registry.For(s)
}

func respond(w http.ResponseWriter, snap workspace.Snapshot, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *AppHandler) Templates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"templates": h.catalog.List()})
}

func (h *AppHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.workspace(r).Snapshot())
}

func (h *AppHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	snap, err := h.workspace(r).Refresh(r.Context())
	respond(w, snap, err)
}

func (h *AppHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decode(r, "", &req); err != nil {
		writeError(w, err)
		return
	}
	snap, err := h.workspace(r).SetSearch(req.Text)
	respond(w, snap, err)
}

func (h *AppHandler) Create(w http.ResponseWriter, r *http.Request) {
	snap, err := h.workspace(r).CreateInterview(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *AppHandler) Open(w http.ResponseWriter, r *http.Request) {
	snap, err := h.workspace(r).Open(r.Context(), mux.Vars(r)["id"])
	respond(w, snap, err)
}

func (h *AppHandler) Back(w http.ResponseWriter, r *http.Request) {
	snap, err := h.workspace(r).Back(r.Context())
	respond(w, snap, err)
}

func (h *AppHandler) DismissNotice(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	ws.DismissNotice()
	writeJSON(w, http.StatusOK, ws.Snapshot())
}
