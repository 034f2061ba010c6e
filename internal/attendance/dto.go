package attendance

import (
	"time"

	"night-attendance-backend/internal/face"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
	DateLayout       = "2006-01-02"
	TimeLayout       = "15:04:05"
	// 寮フィルタでこの値は全寮扱い
	AllHostels = "All"
)

type MarkAttendanceRequest struct {
	Lat            *float64        `json:"lat" binding:"required,latitude"`
	Lng            *float64        `json:"lng" binding:"required,longitude"`
	FaceDescriptor face.Descriptor `json:"faceDescriptor" binding:"required"`
	Image          string          `json:"image" binding:"required"`
}

type AttendanceResponse struct {
	AttendanceID   uint64    `json:"attendance_id"`
	AttendanceULID string    `json:"attendance_ulid"`
	StudentID      int64     `json:"student_id"`
	Date           string    `json:"date"` // YYYY-MM-DD
	Time           string    `json:"time"` // HH:MM:SS
	Status         Status    `json:"status"`
	LocationLat    float64   `json:"location_lat"`
	LocationLng    float64   `json:"location_long"`
	FaceMatchScore float64   `json:"face_match_score"`
	CreatedAt      time.Time `json:"created_at"`
}

type MarkAttendanceResponse struct {
	Message    string             `json:"message"`
	Data       AttendanceResponse `json:"data"`
	MatchScore string             `json:"matchScore"`
}

type HistoryQuery struct {
	From   *string
	To     *string
	Limit  int
	Offset int
}

type HistoryResponse struct {
	Items []AttendanceResponse `json:"items"`
	Total int64                `json:"total"`
}

type WardenRecord struct {
	AttendanceResponse
	CapturedImage *string        `json:"captured_image,omitempty"`
	Student       StudentSummary `json:"student"`
}

type WardenStatsResponse struct {
	Date           string         `json:"date"`
	Hostel         string         `json:"hostel"`
	TotalStudents  int64          `json:"totalStudents"`
	PresentCount   int64          `json:"presentCount"`
	LateCount      int64          `json:"lateCount"`
	AbsentCount    int64          `json:"absentCount"`
	AttendanceList []WardenRecord `json:"attendanceList"`
}
