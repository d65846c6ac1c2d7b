// Package editor holds the in-memory draft of one interview and writes it back
// to the store, reconciling the task list on save.
package editor

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/garnizeh/interviewdesk/internal/apperr"
	"github.com/garnizeh/interviewdesk/internal/models"
	"github.com/garnizeh/interviewdesk/internal/templates"
)

type InterviewWriter interface {
	UpdateInterview(ctx context.Context, iv *models.Interview) error
}

type TaskWriter interface {
	UpsertTasks(ctx context.Context, interviewID string, tasks []models.Task) ([]models.Task, error)
	DeleteTasks(ctx context.Context, ids []string) error
}

// Editor is not safe for concurrent use; callers serialise actions.
type Editor struct {
	interviews InterviewWriter
	tasks      TaskWriter
	catalog    *templates.Catalog
	logger     *slog.Logger

	draft      *models.Interview
	baseline   []models.Task
	selected   string
	dirty      bool
	inviteOpen bool
}

// State is a read-only snapshot of the editor.
type State struct {
	Interview      *models.Interview `json:"interview"`
	SelectedTaskID string            `json:"selected_task_id,omitempty"`
	Dirty          bool              `json:"dirty"`
	InviteOpen     bool              `json:"invite_open"`
	CriteriaCount  int               `json:"criteria_count"`
}

// New opens iv for editing. The first task, if any, starts selected.
func New(iv *models.Interview, interviews InterviewWriter, tasks TaskWriter, catalog *templates.Catalog, logger *slog.Logger) *Editor {
	if catalog == nil {
		catalog = templates.Default()
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	draft := iv.Clone()
	if draft.Tasks == nil {
		draft.Tasks = []models.Task{}
	}
	if draft.GeneralCriteria == nil {
		draft.GeneralCriteria = models.CriteriaList{}
	}
	e := &Editor{
		interviews: interviews,
		tasks:      tasks,
		catalog:    catalog,
		logger:     logger,
		draft:      draft,
		baseline:   models.CloneTasks(draft.Tasks),
	}
	if len(draft.Tasks) > 0 {
		e.selected = draft.Tasks[0].ID
	}
	return e
}

func (e *Editor) State() State {
	return State{
		Interview:      e.draft.Clone(),
		SelectedTaskID: e.selected,
		Dirty:          e.dirty,
		InviteOpen:     e.inviteOpen,
		CriteriaCount:  e.criteriaCount(),
	}
}

// Draft returns a copy of the interview being edited.
func (e *Editor) Draft() *models.Interview { return e.draft.Clone() }

func (e *Editor) ID() string { return e.draft.ID }

func (e *Editor) Dirty() bool { return e.dirty }

func (e *Editor) SelectedTaskID() string { return e.selected }

func (e *Editor) InviteOpen() bool { return e.inviteOpen }

func (e *Editor) CloseInvite() { e.inviteOpen = false }

func (e *Editor) criteriaCount() int {
	n := len(e.draft.GeneralCriteria)
	for _, t := range e.draft.Tasks {
		n += len(t.Criteria)
	}
	return n
}

func (e *Editor) taskIndex(id string) int {
	for i, t := range e.draft.Tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func taskNotFound(id string) error {
	return apperr.NotFound("TASK_NOT_FOUND", "task %s is not part of this interview", id)
}

func (e *Editor) SetTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return apperr.Validation("TITLE_REQUIRED", "interview title must not be empty")
	}
	e.draft.Title = title
	e.dirty = true
	return nil
}

// AddTaskFromTemplate appends a new task built from the template and selects it.
func (e *Editor) AddTaskFromTemplate(templateID string) (models.Task, error) {
	tpl, ok := e.catalog.Get(templateID)
	if !ok {
		return models.Task{}, apperr.Validation("UNKNOWN_TEMPLATE", "unknown task template %q", templateID)
	}
	t := tpl.NewTask()
	t.InterviewID = e.draft.ID
	t.Order = len(e.draft.Tasks)
	e.draft.Tasks = append(e.draft.Tasks, t)
	e.selected = t.ID
	e.dirty = true
	return t.Clone(), nil
}

// UpdateTask replaces the editable fields of the task with t.ID. Identity, order
// and criterion scope are kept.
func (e *Editor) UpdateTask(t models.Task) error {
	i := e.taskIndex(t.ID)
	if i < 0 {
		return taskNotFound(t.ID)
	}
	if err := validateTask(t); err != nil {
		return err
	}
	cur := e.draft.Tasks[i]
	next := t.Clone()
	next.ID = cur.ID
	next.InterviewID = cur.InterviewID
	next.ClientRef = ""
	next.Order = cur.Order
	if next.SupportingFiles == nil {
		next.SupportingFiles = []models.SupportingFile{}
	}
	next.Criteria = adoptCriteria(next.Criteria, models.ScopeTask)
	e.draft.Tasks[i] = next
	e.dirty = true
	return nil
}

// DeleteTask removes the task and renumbers the rest. When the selected task is
// removed the first remaining task becomes selected.
func (e *Editor) DeleteTask(id string) error {
	i := e.taskIndex(id)
	if i < 0 {
		return taskNotFound(id)
	}
	e.draft.Tasks = append(e.draft.Tasks[:i], e.draft.Tasks[i+1:]...)
	models.Renumber(e.draft.Tasks)
	if e.selected == id {
		e.selected = ""
		if len(e.draft.Tasks) > 0 {
			e.selected = e.draft.Tasks[0].ID
		}
	}
	e.dirty = true
	return nil
}

// MoveTask moves the task at index from to index to, shifting the tasks in between.
func (e *Editor) MoveTask(from, to int) error {
	n := len(e.draft.Tasks)
	if from < 0 || from >= n || to < 0 || to >= n {
		return apperr.Validation("BAD_POSITION", "cannot move task from %d to %d in a list of %d", from, to, n)
	}
	if from == to {
		return nil
	}
	t := e.draft.Tasks[from]
	tasks := append(e.draft.Tasks[:from:from], e.draft.Tasks[from+1:]...)
	tasks = append(tasks[:to], append([]models.Task{t}, tasks[to:]...)...)
	models.Renumber(tasks)
	e.draft.Tasks = tasks
	e.dirty = true
	return nil
}

func (e *Editor) SelectTask(id string) error {
	if id == "" {
		e.selected = ""
		return nil
	}
	if e.taskIndex(id) < 0 {
		return taskNotFound(id)
	}
	e.selected = id
	return nil
}

// SetGeneralCriteria replaces the interview-wide rubric.
func (e *Editor) SetGeneralCriteria(criteria []models.Criterion) error {
	for _, c := range criteria {
		if err := validateCriterion(c); err != nil {
			return err
		}
	}
	e.draft.GeneralCriteria = adoptCriteria(criteria, models.ScopeGeneral)
	e.dirty = true
	return nil
}

// criteriaOf returns the criteria list a criterion edit targets: the general
// rubric for an empty taskID, otherwise the task's own list.
func (e *Editor) criteriaOf(taskID string) (*models.CriteriaList, models.Scope, error) {
	if taskID == "" {
		return &e.draft.GeneralCriteria, models.ScopeGeneral, nil
	}
	i := e.taskIndex(taskID)
	if i < 0 {
		return nil, "", taskNotFound(taskID)
	}
	return &e.draft.Tasks[i].Criteria, models.ScopeTask, nil
}

// AddCriterion appends c to the general rubric (empty taskID) or to a task.
func (e *Editor) AddCriterion(taskID string, c models.Criterion) (models.Criterion, error) {
	if err := validateCriterion(c); err != nil {
		return models.Criterion{}, err
	}
	list, scope, err := e.criteriaOf(taskID)
	if err != nil {
		return models.Criterion{}, err
	}
	c.ID = models.NewCriterionID()
	c.Scope = scope
	*list = append(*list, c)
	e.dirty = true
	return c, nil
}

// UpdateCriterion edits the criterion with c.ID. Its scope never changes.
func (e *Editor) UpdateCriterion(taskID string, c models.Criterion) error {
	if err := validateCriterion(c); err != nil {
		return err
	}
	list, _, err := e.criteriaOf(taskID)
	if err != nil {
		return err
	}
	for i := range *list {
		if (*list)[i].ID == c.ID {
			c.Scope = (*list)[i].Scope
			(*list)[i] = c
			e.dirty = true
			return nil
		}
	}
	return apperr.NotFound("CRITERION_NOT_FOUND", "criterion %s not found", c.ID)
}

func (e *Editor) RemoveCriterion(taskID, criterionID string) error {
	list, _, err := e.criteriaOf(taskID)
	if err != nil {
		return err
	}
	for i := range *list {
		if (*list)[i].ID == criterionID {
			*list = append((*list)[:i], (*list)[i+1:]...)
			e.dirty = true
			return nil
		}
	}
	return apperr.NotFound("CRITERION_NOT_FOUND", "criterion %s not found", criterionID)
}

// adoptCriteria gives criteria without an id a fresh one and stamps every
// criterion with the scope of its owner.
func adoptCriteria(in []models.Criterion, scope models.Scope) models.CriteriaList {
	out := make(models.CriteriaList, 0, len(in))
	for _, c := range in {
		if c.ID == "" {
			c.ID = models.NewCriterionID()
		}
		c.Scope = scope
		out = append(out, c)
	}
	return out
}

func validateCriterion(c models.Criterion) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperr.Validation("CRITERION_NAME_REQUIRED", "criterion name must not be empty")
	}
	if !c.Type.Valid() {
		return apperr.Validation("BAD_CRITERION_TYPE", "unknown criterion type %q", c.Type)
	}
	return nil
}

func validateTask(t models.Task) error {
	if !t.AIBehavior.Valid() {
		return apperr.Validation("BAD_AI_BEHAVIOR", "unknown ai behavior %q", t.AIBehavior)
	}
	if t.DurationMinutes != nil && *t.DurationMinutes <= 0 {
		return apperr.Validation("BAD_DURATION", "duration must be a positive number of minutes")
	}
	for _, c := range t.Criteria {
		if err := validateCriterion(c); err != nil {
			return err
		}
	}
	return nil
}
