package face

import "time"

// Enrollment is a student's single reference face.
type Enrollment struct {
	StudentID  int64
	Descriptor Descriptor
	Image      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
