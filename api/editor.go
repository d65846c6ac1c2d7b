package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/interviewdesk/internal/models"
	"github.com/garnizeh/interviewdesk/internal/validation"
)

type titleRequest struct {
	Title string `json:"title"`
}

type addTaskRequest struct {
	TemplateID string `json:"template_id"`
}

type moveRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type invitesRequest struct {
	Emails string `json:"emails"`
}

func (h *AppHandler) SetTitle(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if err := decode(r, "", &req); err != nil {
		writeError(w, err)
		return
	}
	snap, err := h.workspace(r).SetTitle(req.Title)
	respond(w, snap, err)
}

func (h *AppHandler) AddTask(w http.ResponseWriter, r *http.Request) {
	var req addTaskRequest
	if err := decode(r, "", &req); err != nil {
		writeError(w, err)
		return
	}
	if req.TemplateID == "" {
		req.TemplateID = "custom"
	}
	snap, err := h.workspace(r).AddTask(req.TemplateID)
	respond(w, snap, err)
}

func (h *AppHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var t models.Task
	if err := decode(r, validation.SchemaTask, &t); err != nil {
		writeError(w, err)
		return
	}
	t.ID = mux.Vars(r)["taskID"]
	snap, err := h.workspace(r).UpdateTask(t)
	respond(w, snap, err)
}

func (h *AppHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	snap, err := h.workspace(r).DeleteTask(mux.Vars(r)["taskID"])
	respond(w, snap, err)
}

func (h *AppHandler) MoveTask(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decode(r, "", &req); err != nil {
		writeError(w, err)
		return
	}
	snap, err := h.workspace(r).MoveTask(req.From, req.To)
	respond(w, snap, err)
}

func (h *AppHandler) SelectTask(w http.ResponseWriter, r *http.Request) {
	snap, err := h.workspace(r).SelectTask(mux.Vars(r)["taskID"])
	respond(w, snap, err)
}

// SetCriteria replaces the general rubric.
func (h *AppHandler) SetCriteria(w http.ResponseWriter, r *http.Request) {
	var list []models.Criterion
	if err := decode(r, validation.SchemaCriteria, &list); err != nil {
		writeError(w, err)
		return
	}
	snap, err := h.workspace(r).SetGeneralCriteria(list)
	respond(w, snap, err)
}

// decodeCriterion reads a single criterion, validated as a one-item rubric.
func decodeCriterion(r *http.Request, c *models.Criterion) error {
	body, err := readBody(r, "")
	if err != nil {
		return err
	}
	wrapped := append(append([]byte("["), body...), ']')
	if err := validation.Default().Validate(r.Context(), validation.SchemaCriteria, wrapped); err != nil {
		return err
	}
	var list []models.Criterion
	if err := json.Unmarshal(wrapped, &list); err != nil {
		return badRequest("INVALID_REQUEST", err.Error())
	}
	if len(list) != 1 {
		return badRequest("INVALID_REQUEST", "expected one criterion")
	}
	*c = list[0]
	return nil
}

// AddCriterion adds to the task named by the task query parameter, or to the
// general rubric without one.
func (h *AppHandler) AddCriterion(w http.ResponseWriter, r *http.Request) {
	var c models.Criterion
	if err := decodeCriterion(r, &c); err != nil {
		writeError(w, err)
		return
	}
	snap, err := h.workspace(r).AddCriterion(r.URL.Query().Get("task"), c)
	respond(w, snap, err)
}

func (h *AppHandler) UpdateCriterion(w http.ResponseWriter, r *http.Request) {
	var c models.Criterion
	if err := decodeCriterion(r, &c); err != nil {
		writeError(w, err)
		return
	}
	c.ID = mux.Vars(r)["criterionID"]
	snap, err := h.workspace(r).UpdateCriterion(r.URL.Query().Get("task"), c)
	respond(w, snap, err)
}

func (h *AppHandler) RemoveCriterion(w http.ResponseWriter, r *http.Request) {
	snap, err := h.workspace(r).RemoveCriterion(r.URL.Query().Get("task"), mux.Vars(r)["criterionID"])
	respond(w, snap, err)
}

func (h *AppHandler) Save(w http.ResponseWriter, r *http.Request) {
	snap, err := h.workspace(r).Save(r.Context())
	respond(w, snap, err)
}

func (h *AppHandler) Publish(w http.ResponseWriter, r *http.Request) {
	snap, err := h.workspace(r).Publish(r.Context())
	respond(w, snap, err)
}

func (h *AppHandler) CloseInterview(w http.ResponseWriter, r *http.Request) {
	snap, err := h.workspace(r).CloseInterview(r.Context())
	respond(w, snap, err)
}

func (h *AppHandler) SendInvites(w http.ResponseWriter, r *http.Request) {
	var req invitesRequest
	if err := decode(r, "", &req); err != nil {
		writeError(w, err)
		return
	}
	snap, err := h.workspace(r).SendInvites(r.Context(), req.Emails)
	respond(w, snap, err)
}

func (h *AppHandler) CloseInvite(w http.ResponseWriter, r *http.Request) {
	snap, err := h.workspace(r).CloseInvite()
	respond(w, snap, err)
}
