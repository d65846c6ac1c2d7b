// Package templates holds the fixed catalog of task templates new tasks are
// created from.
package templates

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/garnizeh/interviewdesk/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

type CriterionTemplate struct {
	Name        string               `yaml:"name" json:"name"`
	Description string               `yaml:"description" json:"description,omitempty"`
	Type        models.CriterionType `yaml:"type" json:"type"`
}

type Requirements struct {
	Audio       bool `yaml:"audio" json:"audio"`
	ScreenShare bool `yaml:"screen_share" json:"screen_share"`
	Webcam      bool `yaml:"webcam" json:"webcam"`
	FileUpload  bool `yaml:"file_upload" json:"file_upload"`
}

// Template is a preset a task is instantiated from.
type Template struct {
	ID              string              `yaml:"id" json:"id"`
	Title           string              `yaml:"title" json:"title"`
	Description     string              `yaml:"description" json:"description"`
	Prompt          string              `yaml:"prompt" json:"prompt"`
	AIBehavior      models.AIBehavior   `yaml:"ai_behavior" json:"ai_behavior"`
	DurationMinutes int                 `yaml:"duration_minutes" json:"duration_minutes"`
	Requirements    Requirements        `yaml:"requirements" json:"requirements"`
	Criteria        []CriterionTemplate `yaml:"criteria" json:"criteria"`
}

// Reqs returns the template's media requirements as the model type.
func (t Template) Reqs() models.Requirements {
	return models.Requirements{
		Audio:       t.Requirements.Audio,
		ScreenShare: t.Requirements.ScreenShare,
		Webcam:      t.Requirements.Webcam,
		FileUpload:  t.Requirements.FileUpload,
	}
}

// NewTask instantiates the template as an unsaved task: a fresh temporary id and
// copies of the criteria with fresh ids and task scope.
func (t Template) NewTask() models.Task {
	d := t.DurationMinutes
	task := models.Task{
		ID:              models.NewTempID(),
		Title:           t.Title,
		Prompt:          t.Prompt,
		AIBehavior:      t.AIBehavior,
		DurationMinutes: &d,
		Criteria:        make(models.CriteriaList, 0, len(t.Criteria)),
		SupportingFiles: []models.SupportingFile{},
	}
	task.SetRequirements(t.Reqs())
	for _, c := range t.Criteria {
		task.Criteria = append(task.Criteria, models.Criterion{
			ID:          models.NewCriterionID(),
			Name:        c.Name,
			Description: c.Description,
			Type:        c.Type,
			Scope:       models.ScopeTask,
		})
	}
	return task
}

// Catalog is an ordered, read-only set of templates.
type Catalog struct {
	list []Template
	byID map[string]int
}

type catalogFile struct {
	Templates []Template `yaml:"templates"`
}

// Parse decodes and checks a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	c := &Catalog{byID: make(map[string]int, len(f.Templates))}
	for _, t := range f.Templates {
		if t.ID == "" {
			return nil, fmt.Errorf("template %q has no id", t.Title)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate template id %q", t.ID)
		}
		if !t.AIBehavior.Valid() {
			return nil, fmt.Errorf("template %s: unknown ai_behavior %q", t.ID, t.AIBehavior)
		}
		for _, cr := range t.Criteria {
			if !cr.Type.Valid() {
				return nil, fmt.Errorf("template %s: criterion %q has unknown type %q", t.ID, cr.Name, cr.Type)
			}
		}
		if t.Criteria == nil {
			t.Criteria = []CriterionTemplate{}
		}
		c.byID[t.ID] = len(c.list)
		c.list = append(c.list, t)
	}
	return c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the embedded catalog. It panics if the embedded file is invalid.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(catalogYAML)
		if err != nil {
			panic(fmt.Sprintf("templates: embedded catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// List returns the templates in catalog order.
func (c *Catalog) List() []Template {
	out := make([]Template, len(c.list))
	copy(out, c.list)
	return out
}

func (c *Catalog) Get(id string) (Template, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Template{}, false
	}
	return c.list[i], true
}
