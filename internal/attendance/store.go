package attendance

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"night-attendance-backend/internal/face"
	"night-attendance-backend/internal/geofence"
	"night-attendance-backend/internal/platform/db"
)

type Store struct {
	db       *sql.DB
	boundary *geofence.Store
}

func NewStore(conn *sql.DB) *Store {
	return &Store{db: conn, boundary: geofence.NewStore(conn)}
}

var (
	_ AdmissionRepository = (*Store)(nil)
	_ ReportRepository    = (*Store)(nil)
)

const selectColumns = `
	SELECT a.attendance_id, a.attendance_ulid, a.student_id,
	       DATE_FORMAT(a.attended_on, '%Y-%m-%d') AS attended_on,
	       TIME_FORMAT(a.attended_time, '%H:%i:%s') AS attended_time,
	       a.status, a.location_lat, a.location_lng, a.face_match_score, a.created_at`

func scanRow(sc interface{ Scan(...any) error }, r *attendanceRow, extra ...any) error {
	dst := []any{&r.AttendanceID, &r.ULID, &r.StudentID, &r.AttendedOn, &r.AttendedTime,
		&r.Status, &r.Lat, &r.Lng, &r.FaceMatchScore, &r.CreatedAt}
	return sc.Scan(append(dst, extra...)...)
}

func (s *Store) FindEnrollment(ctx context.Context, studentID int64) (*face.Enrollment, error) {
	return face.FindEnrollment(ctx, s.db, studentID)
}

func (s *Store) ListBoundaryPoints(ctx context.Context) ([]geofence.BoundaryPoint, error) {
	return s.boundary.ListBoundaryPoints(ctx)
}

// FindAttendanceForDay: 指定学生の指定日(YYYY-MM-DD)の行。無ければ nil
func (s *Store) FindAttendanceForDay(ctx context.Context, studentID int64, day string) (*Attendance, error) {
	return findForDay(ctx, s.db, studentID, day, false)
}

func findForDay(ctx context.Context, q db.DBTX, studentID int64, day string, forUpdate bool) (*Attendance, error) {
	query := selectColumns + `
	FROM attendances a
	WHERE a.student_id = ? AND a.attended_on = ?
	LIMIT 1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var r attendanceRow
	err := scanRow(q.QueryRowContext(ctx, query, studentID, day), &r)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query attendance for day: %w", err)
	}
	a := r.toModel()
	return &a, nil
}

// 行ロック競合で deadlock になった場合の再試行回数
const insertAttempts = 3

// InsertAttendance: (student_id, attended_on) を行ロック付きで再確認してから INSERT。
// UNIQUE 違反 (1062) も ErrDuplicate に揃える。
func (s *Store) InsertAttendance(ctx context.Context, a *Attendance) error {
	var err error
	for i := 0; i < insertAttempts; i++ {
		err = s.insertOnce(ctx, a)
		if !db.IsDeadlock(err) {
			return err
		}
		log.Printf("[WARN] deadlock inserting attendance for student %d (attempt %d)", a.StudentID, i+1)
	}
	return err
}

func (s *Store) insertOnce(ctx context.Context, a *Attendance) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		existing, err := findForDay(ctx, tx, a.StudentID, a.AttendedOn, true)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrDuplicate
		}

		res, err := tx.ExecContext(ctx, `
		INSERT INTO attendances (
			attendance_ulid, student_id, attended_on, attended_time, status,
			location_lat, location_lng, face_match_score, captured_image, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ULID, a.StudentID, a.AttendedOn, a.AttendedTime, string(a.Status),
			a.Lat, a.Lng, a.FaceMatchScore, a.CapturedImage, a.CreatedAt,
		)
		if err != nil {
			if db.IsDuplicateKey(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("insert attendance: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		a.AttendanceID = uint64(id)
		return nil
	})
}

// ListByStudent: 動的WHERE + ORDER + LIMIT/OFFSET。画像は返さない
func (s *Store) ListByStudent(ctx context.Context, studentID int64, q HistoryQuery) ([]Attendance, int64, error) {
	var (
		buf    bytes.Buffer
		args   []any
		wheres = []string{"a.student_id = ?"}
	)
	args = append(args, studentID)

	if q.From != nil && *q.From != "" {
		wheres = append(wheres, "a.attended_on >= ?")
		args = append(args, *q.From)
	}
	if q.To != nil && *q.To != "" {
		wheres = append(wheres, "a.attended_on <= ?")
		args = append(args, *q.To)
	}
	where := " WHERE " + strings.Join(wheres, " AND ")

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	buf.WriteString(selectColumns)
	buf.WriteString(" FROM attendances a")
	buf.WriteString(where)
	buf.WriteString(" ORDER BY a.attended_on DESC, a.attended_time DESC, a.attendance_id DESC")
	buf.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, q.Offset))

	var (
		out   []Attendance
		total int64
	)
	// ページと件数を同一スナップショットで読む
	err := db.ReadOnly(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		rows, err := tx.QueryContext(ctx, buf.String(), args...)
		if err != nil {
			return fmt.Errorf("query history: %w", err)
		}
		defer rows.Close()

		out = make([]Attendance, 0, limit)
		for rows.Next() {
			var r attendanceRow
			if err := scanRow(rows, &r); err != nil {
				return fmt.Errorf("scan history: %w", err)
			}
			out = append(out, r.toModel())
		}
		if err := rows.Err(); err != nil {
			return err
		}
		rows.Close()

		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM attendances a"+where, args...).Scan(&total); err != nil {
			return fmt.Errorf("count history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) CountStudents(ctx context.Context, hostel string) (int64, error) {
	q := `SELECT COUNT(*) FROM students`
	var args []any
	if hostel != "" && hostel != AllHostels {
		q += ` WHERE hostel = ?`
		args = append(args, hostel)
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return n, nil
}

// ListForDay: 当日の出席を学生情報付きで返す（寮で絞り込み可）
func (s *Store) ListForDay(ctx context.Context, day, hostel string) ([]DayRecord, error) {
	q := selectColumns + `,
	       a.captured_image, st.name, st.reg_no, st.room_no, st.hostel, st.mobile, st.email
	FROM attendances a
	JOIN students st ON st.id = a.student_id
	WHERE a.attended_on = ?`
	args := []any{day}
	if hostel != "" && hostel != AllHostels {
		q += ` AND st.hostel = ?`
		args = append(args, hostel)
	}
	q += ` ORDER BY a.attended_time ASC, a.attendance_id ASC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query day attendance: %w", err)
	}
	defer rows.Close()

	var out []DayRecord
	for rows.Next() {
		var (
			r  attendanceRow
			st StudentSummary
		)
		if err := scanRow(rows, &r, &r.CapturedImage,
			&st.Name, &st.RegNo, &st.RoomNo, &st.Hostel, &st.Mobile, &st.Email); err != nil {
			return nil, fmt.Errorf("scan day attendance: %w", err)
		}
		out = append(out, DayRecord{Attendance: r.toModel(), Student: st})
	}
	return out, rows.Err()
}
