package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
)

// ValueKind is the dynamic type held by a ScoreValue.
type ValueKind int

const (
	KindNone ValueKind = iota
	KindNumber
	KindText
	KindBool
)

// ScoreValue is a score that is a number, text or a boolean depending on the criterion.
// It encodes to the bare JSON value.
type ScoreValue struct {
	kind ValueKind
	num  float64
	text string
	b    bool
}

func Number(v float64) ScoreValue { return ScoreValue{kind: KindNumber, num: v} }
func Text(v string) ScoreValue    { return ScoreValue{kind: KindText, text: v} }
func Bool(v bool) ScoreValue      { return ScoreValue{kind: KindBool, b: v} }

func (v ScoreValue) Kind() ValueKind { return v.kind }

// Float returns the numeric value and whether the score is numeric.
func (v ScoreValue) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// NumberOrZero returns the numeric value, treating every other kind as 0.
func (v ScoreValue) NumberOrZero() float64 {
	n, _ := v.Float()
	return n
}

// String renders the score for tables and exports.
func (v ScoreValue) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', 1, 64)
	case KindBool:
		if v.b {
			return "Yes"
		}
		return "No"
	case KindText:
		return v.text
	}
	return ""
}

func (v ScoreValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindText:
		return json.Marshal(v.text)
	case KindBool:
		return json.Marshal(v.b)
	}
	return []byte("null"), nil
}

func (v *ScoreValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = ScoreValue{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Bool(b)
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("score value: %w", err)
		}
		*v = Number(n)
	}
	return nil
}

// CandidateScore is one criterion score of a candidate.
type CandidateScore struct {
	CriterionID   string     `json:"criterion_id"`
	CriterionName string     `json:"criterion_name"`
	Value         ScoreValue `json:"score"`
	MaxValue      *float64   `json:"max_score,omitempty"`
}

// CandidateNote is a free-text note attached to one criterion column.
type CandidateNote struct {
	Author  string `json:"author"`
	Column  string `json:"column"`
	Content string `json:"content"`
	Created int64  `json:"created_at"`
}

// CandidateResult is a candidate's completed attempt, produced by the grading collaborator.
type CandidateResult struct {
	ID           string    `json:"id" db:"id"`
	InterviewID  string    `json:"interview_id" db:"interview_id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	CompletedAt  int64     `json:"completed_at" db:"completed_at"`
	Scores       ScoreList `json:"scores" db:"scores"`
	Notes        NoteList  `json:"notes" db:"notes"`
	OverallScore *float64  `json:"overall_score,omitempty" db:"overall_score"`
}

// OverallOrZero returns the overall score with a missing value read as 0.
func (c CandidateResult) OverallOrZero() float64 {
	if c.OverallScore == nil {
		return 0
	}
	return *c.OverallScore
}

// ScoreFor returns the score recorded for criterionID.
func (c CandidateResult) ScoreFor(criterionID string) (CandidateScore, bool) {
	for _, s := range c.Scores {
		if s.CriterionID == criterionID {
			return s, true
		}
	}
	return CandidateScore{}, false
}

// Clone returns a deep copy of c.
func (c CandidateResult) Clone() CandidateResult {
	out := c
	out.Scores = append(ScoreList{}, c.Scores...)
	out.Notes = append(NoteList{}, c.Notes...)
	if c.OverallScore != nil {
		v := *c.OverallScore
		out.OverallScore = &v
	}
	return out
}

// OverallScore is the mean of the numeric scores. Non-numeric scores are ignored;
// with no numeric score the result is 0.
func OverallScore(scores []CandidateScore) float64 {
	var sum float64
	var n int
	for _, s := range scores {
		if v, ok := s.Value.Float(); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// ScoreList is stored as a JSON document column.
type ScoreList []CandidateScore

func (l ScoreList) Value() (driver.Value, error) { return jsonValue(l) }
func (l *ScoreList) Scan(src any) error         { return jsonScan(src, l) }

// NoteList is stored as a JSON document column.
type NoteList []CandidateNote

func (l NoteList) Value() (driver.Value, error) { return jsonValue(l) }
func (l *NoteList) Scan(src any) error         { return jsonScan(src, l) }

func jsonValue(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return "[]", nil
	}
	return string(b), nil
}

func jsonScan(src any, dst any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported json column type %T", src)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// CriteriaColumn is one column of the results table.
type CriteriaColumn struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Type     CriterionType `json:"type"`
	Scope    Scope         `json:"scope"`
	TaskName string        `json:"task_name,omitempty"`
}

// PerformanceData is the aggregate the results screen consumes.
type PerformanceData struct {
	Candidates      []CandidateResult `json:"candidates"`
	CriteriaColumns []CriteriaColumn  `json:"criteria_columns"`
}
