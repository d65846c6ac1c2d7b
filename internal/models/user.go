package models

// User is a hiring-team account. PasswordHash is empty for externally authenticated users.
type User struct {
	ID           string `json:"id" db:"id"`
	Email        string `json:"email" db:"email"`
	Name         string `json:"name" db:"name"`
	Company      string `json:"company" db:"company"`
	PasswordHash string `json:"-" db:"password_hash"`
	Updated      int64  `json:"updated" db:"updated"`
}

// Invitation records one candidate invited to an interview.
type Invitation struct {
	ID          string `json:"id" db:"id"`
	InterviewID string `json:"interview_id" db:"interview_id"`
	Email       string `json:"email" db:"email"`
	Created     int64  `json:"created" db:"created"`
}
