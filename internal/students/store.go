package students

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// 寮フィルタでこの値は全寮扱い
const AllHostels = "All"

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

const selectStudent = `
	SELECT s.id, s.reg_no, s.name, s.email, s.room_no, s.hostel, s.mobile,
	       s.floor, s.seater, s.ac_status, s.created_at,
	       EXISTS (SELECT 1 FROM face_enrollments f WHERE f.student_id = s.id) AS enrolled
	FROM students s`

func scanStudent(sc interface{ Scan(...any) error }) (Student, error) {
	var st Student
	err := sc.Scan(&st.ID, &st.RegNo, &st.Name, &st.Email, &st.RoomNo, &st.Hostel, &st.Mobile,
		&st.Floor, &st.Seater, &st.ACStatus, &st.CreatedAt, &st.Enrolled)
	return st, err
}

// FindByID returns nil when no such student exists.
func (s *Store) FindByID(ctx context.Context, id int64) (*Student, error) {
	st, err := scanStudent(s.db.QueryRowContext(ctx, selectStudent+` WHERE s.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query student: %w", err)
	}
	return &st, nil
}

// List returns the roster ordered by hostel, room and name.
func (s *Store) List(ctx context.Context, hostel string) ([]Student, error) {
	q := selectStudent
	var args []any
	if hostel != "" && hostel != AllHostels {
		q += ` WHERE s.hostel = ?`
		args = append(args, hostel)
	}
	q += ` ORDER BY s.hostel ASC, s.room_no ASC, s.name ASC, s.id ASC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}
	defer rows.Close()

	out := make([]Student, 0, 64)
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// Upsert inserts the roster entry keyed by reg_no. Existing students keep
// their password; only the roster columns are refreshed.
func (s *Store) Upsert(ctx context.Context, e RosterEntry, passwordHash string) (created bool, err error) {
	res, err := s.db.ExecContext(ctx, `
	INSERT INTO students (reg_no, name, email, password_hash, room_no, hostel, mobile, floor, seater, ac_status)
	VALUES (?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''))
	ON DUPLICATE KEY UPDATE
		name = VALUES(name),
		room_no = VALUES(room_no),
		hostel = VALUES(hostel),
		mobile = VALUES(mobile),
		floor = VALUES(floor),
		seater = VALUES(seater),
		ac_status = VALUES(ac_status)`,
		e.RegNo, e.Name, e.Email, passwordHash, e.RoomNo, e.Hostel, e.Mobile, e.Floor, e.Seater, e.ACStatus)
	if err != nil {
		return false, fmt.Errorf("upsert student %s: %w", e.RegNo, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
