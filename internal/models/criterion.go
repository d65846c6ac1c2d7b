package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// CriterionType is the value type a criterion is scored with.
type CriterionType string

const (
	CriterionRating  CriterionType = "rating"
	CriterionNumeric CriterionType = "numeric"
	CriterionBoolean CriterionType = "boolean"
	CriterionText    CriterionType = "text"
)

func (c CriterionType) Valid() bool {
	switch c {
	case CriterionRating, CriterionNumeric, CriterionBoolean, CriterionText:
		return true
	}
	return false
}

// Scope tells whether a criterion applies to the whole interview or a single task.
type Scope string

const (
	ScopeGeneral Scope = "general"
	ScopeTask    Scope = "task"
)

// Criterion is one evaluation dimension.
type Criterion struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Type        CriterionType `json:"type"`
	Scope       Scope         `json:"scope"`
}

// NewCriterionID allocates a criterion identifier.
func NewCriterionID() string {
	return "criterion-" + uuid.NewString()
}

// CriteriaList is stored as a JSON document column.
type CriteriaList []Criterion

// Value implements driver.Valuer.
func (c CriteriaList) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]Criterion(c))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (c *CriteriaList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*c = CriteriaList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("criteria: unsupported column type %T", src)
	}
	if len(raw) == 0 {
		*c = CriteriaList{}
		return nil
	}
	var out []Criterion
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("criteria: %w", err)
	}
	*c = CriteriaList(out)
	return nil
}

// CloneCriteria deep-copies criteria. A nil input yields an empty list.
func CloneCriteria(in []Criterion) []Criterion {
	out := make([]Criterion, len(in))
	copy(out, in)
	return out
}
