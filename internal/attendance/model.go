package attendance

import "time"

type Status string

const (
	StatusPresent Status = "Present"
	StatusLate    Status = "Late"
)

// DB行に対応（スキャン用）
type attendanceRow struct {
	AttendanceID   uint64
	ULID           string
	StudentID      int64
	AttendedOn     string // DATE → "YYYY-MM-DD"
	AttendedTime   string // TIME → "HH:MM:SS"
	Status         string
	Lat            float64
	Lng            float64
	FaceMatchScore *float64
	CapturedImage  *string
	CreatedAt      time.Time
}

// Service ↔ Store で使うモデル
type Attendance struct {
	AttendanceID   uint64
	ULID           string
	StudentID      int64
	AttendedOn     string
	AttendedTime   string
	Status         Status
	Lat            float64
	Lng            float64
	FaceMatchScore float64
	CapturedImage  *string
	CreatedAt      time.Time
}

func (r attendanceRow) toModel() Attendance {
	a := Attendance{
		AttendanceID:  r.AttendanceID,
		ULID:          r.ULID,
		StudentID:     r.StudentID,
		AttendedOn:    r.AttendedOn,
		AttendedTime:  r.AttendedTime,
		Status:        Status(r.Status),
		Lat:           r.Lat,
		Lng:           r.Lng,
		CapturedImage: r.CapturedImage,
		CreatedAt:     r.CreatedAt.UTC(),
	}
	if r.FaceMatchScore != nil {
		a.FaceMatchScore = *r.FaceMatchScore
	}
	return a
}

func (a Attendance) toDTO() AttendanceResponse {
	return AttendanceResponse{
		AttendanceID:   a.AttendanceID,
		AttendanceULID: a.ULID,
		StudentID:      a.StudentID,
		Date:           a.AttendedOn,
		Time:           a.AttendedTime,
		Status:         a.Status,
		LocationLat:    a.Lat,
		LocationLng:    a.Lng,
		FaceMatchScore: a.FaceMatchScore,
		CreatedAt:      a.CreatedAt,
	}
}

// StudentSummary is the roster slice shown next to a day's records.
type StudentSummary struct {
	Name   string  `json:"name"`
	RegNo  string  `json:"reg_no"`
	RoomNo *string `json:"room_no"`
	Hostel *string `json:"hostel"`
	Mobile *string `json:"mobile"`
	Email  string  `json:"email"`
}

// DayRecord is one attendance row joined with its student, for the warden view.
type DayRecord struct {
	Attendance
	Student StudentSummary
}
