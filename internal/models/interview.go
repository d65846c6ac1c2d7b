package models

import "fmt"

// Status is the lifecycle state of an interview.
type Status string

const (
	StatusDraft  Status = "draft"
	StatusLive   Status = "live"
	StatusClosed Status = "closed"
)

// DefaultInterviewTitle is the title given to freshly created interviews.
const DefaultInterviewTitle = "New Interview"

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusLive, StatusClosed:
		return true
	}
	return false
}

// CanTransition reports whether an interview may move from s to next.
// Only draft -> live and live -> closed are allowed; staying put is a no-op.
func (s Status) CanTransition(next Status) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusDraft:
		return next == StatusLive
	case StatusLive:
		return next == StatusClosed
	}
	return false
}

// Stats are the aggregate candidate counts of a published interview.
type Stats struct {
	Invited   int `json:"invited" db:"invited"`
	Completed int `json:"completed" db:"completed"`
	Graded    int `json:"graded" db:"graded"`
}

// Interview is one interview definition owned by a hiring-team user.
type Interview struct {
	ID              string       `json:"id" db:"id"`
	Title           string       `json:"title" db:"title"`
	Status          Status       `json:"status" db:"status"`
	Created         int64        `json:"created_at" db:"created"`
	Updated         int64        `json:"updated_at" db:"updated"`
	OwnerEmail      string       `json:"owner_email" db:"owner_email"`
	Tasks           []Task       `json:"tasks" db:"-"`
	GeneralCriteria CriteriaList `json:"general_criteria" db:"general_criteria"`
	Stats           *Stats       `json:"stats,omitempty" db:"-"`
}

// HasResults reports whether at least one candidate completed the interview.
func (iv *Interview) HasResults() bool {
	return iv != nil && iv.Stats != nil && iv.Stats.Completed > 0
}

// NewInterview returns an empty draft for owner.
func NewInterview(owner string) *Interview {
	return &Interview{
		Title:           DefaultInterviewTitle,
		Status:          StatusDraft,
		OwnerEmail:      owner,
		Tasks:           []Task{},
		GeneralCriteria: CriteriaList{},
	}
}

// Clone returns a deep copy of the interview.
func (iv *Interview) Clone() *Interview {
	if iv == nil {
		return nil
	}
	out := *iv
	out.Tasks = CloneTasks(iv.Tasks)
	out.GeneralCriteria = CloneCriteria(iv.GeneralCriteria)
	if iv.Stats != nil {
		s := *iv.Stats
		out.Stats = &s
	}
	return &out
}

// Transition moves the interview to next, rejecting backwards or skipping moves.
func (iv *Interview) Transition(next Status) error {
	if !next.Valid() {
		return fmt.Errorf("unknown status %q", next)
	}
	if !iv.Status.CanTransition(next) {
		return fmt.Errorf("cannot move interview from %s to %s", iv.Status, next)
	}
	iv.Status = next
	return nil
}
