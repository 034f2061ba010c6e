package face

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"night-attendance-backend/internal/platform/db"
)

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

// FindByStudent returns nil when the student has not enrolled.
func (s *Store) FindByStudent(ctx context.Context, studentID int64) (*Enrollment, error) {
	return FindEnrollment(ctx, s.db, studentID)
}

// FindEnrollment is shared with attendance, which reads it inside its own transaction.
func FindEnrollment(ctx context.Context, q db.DBTX, studentID int64) (*Enrollment, error) {
	var (
		e   = Enrollment{StudentID: studentID}
		raw []byte
		img sql.NullString
	)
	err := q.QueryRowContext(ctx, `
	SELECT face_descriptor, image, created_at, updated_at
	FROM face_enrollments
	WHERE student_id = ?`, studentID).Scan(&raw, &img, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query enrollment: %w", err)
	}
	if err := json.Unmarshal(raw, &e.Descriptor); err != nil {
		return nil, fmt.Errorf("decode face descriptor for student %d: %w", studentID, err)
	}
	if img.Valid {
		e.Image = &img.String
	}
	return &e, nil
}

// Upsert creates the enrollment or replaces its descriptor. A nil image keeps the
// stored one. created reports whether a new row was inserted.
func (s *Store) Upsert(ctx context.Context, studentID int64, d Descriptor, image *string) (created bool, err error) {
	buf, err := json.Marshal(d)
	if err != nil {
		return false, fmt.Errorf("encode face descriptor: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
	INSERT INTO face_enrollments (student_id, face_descriptor, image)
	VALUES (?, ?, ?)
	ON DUPLICATE KEY UPDATE
		face_descriptor = VALUES(face_descriptor),
		image = COALESCE(VALUES(image), image)`, studentID, string(buf), image)
	if err != nil {
		return false, fmt.Errorf("upsert enrollment: %w", err)
	}
	// MySQL: 1 = inserted, 2 = updated, 0 = updated with identical values
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// StudentExists guards enrollment against dangling student ids.
func (s *Store) StudentExists(ctx context.Context, studentID int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM students WHERE id = ?`, studentID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query student: %w", err)
	}
	return true, nil
}
