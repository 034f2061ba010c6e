package attendance

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"night-attendance-backend/internal/face"
	"night-attendance-backend/internal/geofence"
	"night-attendance-backend/internal/platform/apierror"
)

// ===== インターフェース群 =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

type IDGen interface {
	New() (string, error)
}

type ulidGen struct{}

func (ulidGen) New() (string, error) {
	t := time.Now().UTC()
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// AdmissionRepository is everything MarkAttendance reads or writes.
type AdmissionRepository interface {
	FindEnrollment(ctx context.Context, studentID int64) (*face.Enrollment, error)
	FindAttendanceForDay(ctx context.Context, studentID int64, day string) (*Attendance, error)
	// InsertAttendance returns ErrDuplicate when the day is already taken.
	InsertAttendance(ctx context.Context, a *Attendance) error
	ListBoundaryPoints(ctx context.Context) ([]geofence.BoundaryPoint, error)
}

type ReportRepository interface {
	ListByStudent(ctx context.Context, studentID int64, q HistoryQuery) ([]Attendance, int64, error)
	CountStudents(ctx context.Context, hostel string) (int64, error)
	ListForDay(ctx context.Context, day, hostel string) ([]DayRecord, error)
}

// BoundaryEvaluator runs the geofence over an already loaded polygon.
type BoundaryEvaluator interface {
	Evaluate(p geofence.Point, polygon []geofence.Point) geofence.CheckResponse
}

// ImageChecker validates the captured image as an opaque base64 payload.
type ImageChecker interface {
	Payload(payload string) (int, error)
}

// Policy holds the admission knobs from config.
type Policy struct {
	Location        *time.Location
	LateHour        int
	Threshold       float64
	EnforceGeofence bool
}

// DefaultPolicy: IST, late from 22:00, threshold 0.6, geofence not enforced.
func DefaultPolicy() Policy {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		loc = time.FixedZone("IST", 5*3600+1800)
	}
	return Policy{Location: loc, LateHour: 22, Threshold: face.DefaultThreshold}
}

// ===== Service本体 =====

type Service struct {
	repo    AdmissionRepository
	reports ReportRepository
	fence   BoundaryEvaluator
	images  ImageChecker
	policy  Policy
	clock   Clock
	id      IDGen
	locks   *keyedMutex
}

func NewService(repo AdmissionRepository, reports ReportRepository, fence BoundaryEvaluator, images ImageChecker, policy Policy) *Service {
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	return &Service{
		repo:    repo,
		reports: reports,
		fence:   fence,
		images:  images,
		policy:  policy,
		clock:   realClock{},
		id:      ulidGen{},
		locks:   newKeyedMutex(),
	}
}

// MarkInput is a verified student's check-in attempt.
type MarkInput struct {
	StudentID  int64
	Descriptor face.Descriptor
	Lat        float64
	Lng        float64
	Image      string
}

type MarkResult struct {
	Record Attendance
	Match  face.Match
}

// StatusAt classifies a local time: at or after lateHour is Late.
func StatusAt(local time.Time, lateHour int) Status {
	if local.Hour() >= lateHour {
		return StatusLate
	}
	return StatusPresent
}

// 出席登録
// ゲート順: ジオフェンス(任意) → 顔登録 → 顔照合 → 画像 → 当日重複 → 区分判定 → 書き込み
func (s *Service) MarkAttendance(ctx context.Context, in MarkInput) (*MarkResult, error) {
	if in.StudentID <= 0 {
		return nil, apierror.Invalid("student id is required")
	}
	if in.Lat < -90 || in.Lat > 90 || in.Lng < -180 || in.Lng > 180 {
		return nil, apierror.Invalid("lat and lng must be valid coordinates")
	}
	if s.policy.EnforceGeofence {
		rows, err := s.repo.ListBoundaryPoints(ctx)
		if err != nil {
			return nil, err
		}
		res := s.fence.Evaluate(geofence.Point{Lat: in.Lat, Lng: in.Lng}, geofence.Polygon(rows))
		if !res.Inside {
			return nil, ErrOutsideGeofence(res.DistanceMeters)
		}
	}

	enrollment, err := s.repo.FindEnrollment(ctx, in.StudentID)
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		return nil, ErrNotEnrolled()
	}

	match := face.Compare(enrollment.Descriptor, in.Descriptor, s.policy.Threshold)
	if !match.Matched {
		return nil, ErrFaceMismatch(match)
	}

	// 画像は中身を解釈せずそのまま保存する（base64 とサイズのみ検査）
	if _, err := s.images.Payload(in.Image); err != nil {
		return nil, apierror.Invalid(fmt.Sprintf("captured image: %v", err))
	}

	// 同一学生の並行リクエストは重複チェック〜書き込みを直列化
	unlock, err := s.locks.Lock(ctx, in.StudentID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := s.clock.Now().In(s.policy.Location)
	day := now.Format(DateLayout)

	existing, err := s.repo.FindAttendanceForDay(ctx, in.StudentID, day)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyMarked()
	}

	publicID, err := s.id.New()
	if err != nil {
		return nil, fmt.Errorf("generate attendance id: %w", err)
	}

	image := in.Image
	rec := Attendance{
		ULID:           publicID,
		StudentID:      in.StudentID,
		AttendedOn:     day,
		AttendedTime:   now.Format(TimeLayout),
		Status:         StatusAt(now, s.policy.LateHour),
		Lat:            in.Lat,
		Lng:            in.Lng,
		FaceMatchScore: match.Score(),
		CapturedImage:  &image,
		CreatedAt:      now.UTC(),
	}
	if err := s.repo.InsertAttendance(ctx, &rec); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrAlreadyMarked()
		}
		return nil, err
	}
	return &MarkResult{Record: rec, Match: match}, nil
}

// History returns the student's records, newest first.
func (s *Service) History(ctx context.Context, studentID int64, q HistoryQuery) (*HistoryResponse, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	if q.Offset < 0 {
		return nil, apierror.Invalid("offset must be >= 0")
	}
	for _, v := range []*string{q.From, q.To} {
		if v == nil {
			continue
		}
		if _, err := time.ParseInLocation(DateLayout, *v, s.policy.Location); err != nil {
			return nil, apierror.Invalid("from/to must be YYYY-MM-DD")
		}
	}
	if q.From != nil && q.To != nil && *q.To < *q.From {
		return nil, apierror.Invalid("to must be >= from")
	}

	rows, total, err := s.reports.ListByStudent(ctx, studentID, q)
	if err != nil {
		return nil, err
	}
	out := make([]AttendanceResponse, 0, len(rows))
	for i := 0; i < len(rows); i++ {
		out = append(out, rows[i].toDTO())
	}
	return &HistoryResponse{Items: out, Total: total}, nil
}

// WardenStats summarises the current local day. Absent is derived, never stored.
func (s *Service) WardenStats(ctx context.Context, hostel string) (*WardenStatsResponse, error) {
	if hostel == "" {
		hostel = AllHostels
	}
	day := s.clock.Now().In(s.policy.Location).Format(DateLayout)

	total, err := s.reports.CountStudents(ctx, hostel)
	if err != nil {
		return nil, err
	}
	records, err := s.reports.ListForDay(ctx, day, hostel)
	if err != nil {
		return nil, err
	}

	res := &WardenStatsResponse{
		Date:           day,
		Hostel:         hostel,
		TotalStudents:  total,
		PresentCount:   int64(len(records)),
		AttendanceList: make([]WardenRecord, 0, len(records)),
	}
	for _, r := range records {
		if r.Status == StatusLate {
			res.LateCount++
		}
		res.AttendanceList = append(res.AttendanceList, WardenRecord{
			AttendanceResponse: r.Attendance.toDTO(),
			CapturedImage:      r.CapturedImage,
			Student:            r.Student,
		})
	}
	// 途中で学生が削除されても負にしない
	res.AbsentCount = max(total-res.PresentCount, 0)
	return res, nil
}
