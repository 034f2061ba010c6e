package issues

import "time"

type Status string

const (
	StatusOpen      Status = "Open"
	StatusResolved  Status = "Resolved"
	StatusDismissed Status = "Dismissed"
)

type Issue struct {
	IssueID     uint64    `json:"issue_id"`
	IssueULID   string    `json:"issue_ulid"`
	StudentID   int64     `json:"student_id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Reporter is the student shown next to an issue in the warden list.
type Reporter struct {
	Name   string  `json:"name"`
	RegNo  string  `json:"reg_no"`
	RoomNo *string `json:"room_no"`
}

type IssueWithReporter struct {
	Issue
	Student Reporter `json:"student"`
}
