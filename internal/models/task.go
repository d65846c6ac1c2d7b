package models

import (
	"strings"

	"github.com/google/uuid"
)

// AIBehavior controls how actively the AI interviewer engages during a task.
type AIBehavior string

const (
	BehaviorPassive    AIBehavior = "passive"
	BehaviorNeutral    AIBehavior = "neutral"
	BehaviorActive     AIBehavior = "active"
	BehaviorVeryActive AIBehavior = "very_active"
)

func (b AIBehavior) Valid() bool {
	switch b {
	case BehaviorPassive, BehaviorNeutral, BehaviorActive, BehaviorVeryActive:
		return true
	}
	return false
}

// TempIDPrefix marks identifiers allocated by the editor that the store has never seen.
const TempIDPrefix = "temp-"

// NewTempID allocates a temporary task identifier.
func NewTempID() string {
	return TempIDPrefix + uuid.NewString()
}

// IsTempID reports whether id was allocated client side.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// SupportingFile is an opaque file reference shown to the candidate during a task.
type SupportingFile struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Requirements lists the media a candidate must provide for a task.
type Requirements struct {
	Audio       bool `json:"audio"`
	ScreenShare bool `json:"screen_share"`
	Webcam      bool `json:"webcam"`
	FileUpload  bool `json:"file_upload"`
}

// Task is one ordered section of an interview.
//
// Order is stored in the task_order column. SupportingFiles never reach the store.
type Task struct {
	ID              string           `json:"id" db:"id"`
	InterviewID     string           `json:"interview_id" db:"interview_id"`
	ClientRef       string           `json:"client_ref,omitempty" db:"client_ref"`
	Title           string           `json:"title" db:"title"`
	Prompt          string           `json:"prompt" db:"prompt"`
	AIBehavior      AIBehavior       `json:"ai_behavior" db:"ai_behavior"`
	DurationMinutes *int             `json:"duration_minutes,omitempty" db:"duration_minutes"`
	ReqAudio        bool             `json:"req_audio" db:"req_audio"`
	ReqScreenShare  bool             `json:"req_screen_share" db:"req_screen_share"`
	ReqWebcam       bool             `json:"req_webcam" db:"req_webcam"`
	ReqFileUpload   bool             `json:"req_file_upload" db:"req_file_upload"`
	Order           int              `json:"order" db:"task_order"`
	Criteria        CriteriaList     `json:"criteria" db:"criteria"`
	SupportingFiles []SupportingFile `json:"supporting_files" db:"-"`
}

// Requirements returns the media flags as one value.
func (t Task) Requirements() Requirements {
	return Requirements{
		Audio:       t.ReqAudio,
		ScreenShare: t.ReqScreenShare,
		Webcam:      t.ReqWebcam,
		FileUpload:  t.ReqFileUpload,
	}
}

// SetRequirements copies r onto the task's media flags.
func (t *Task) SetRequirements(r Requirements) {
	t.ReqAudio = r.Audio
	t.ReqScreenShare = r.ScreenShare
	t.ReqWebcam = r.Webcam
	t.ReqFileUpload = r.FileUpload
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	out := t
	if t.DurationMinutes != nil {
		d := *t.DurationMinutes
		out.DurationMinutes = &d
	}
	out.Criteria = CloneCriteria(t.Criteria)
	if t.SupportingFiles != nil {
		out.SupportingFiles = append([]SupportingFile(nil), t.SupportingFiles...)
	}
	return out
}

// CloneTasks deep-copies a task list. A nil input yields an empty list.
func CloneTasks(in []Task) []Task {
	out := make([]Task, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}

// Renumber rewrites Order so tasks form a dense 0..n-1 sequence in slice order.
func Renumber(tasks []Task) {
	for i := range tasks {
		tasks[i].Order = i
	}
}
