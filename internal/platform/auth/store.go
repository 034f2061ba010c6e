package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Account is a warden or a student as seen by login.
type Account struct {
	ID           int64
	Role         string
	Name         string
	Email        string
	PasswordHash string
	Hostel       sql.NullString
	// 学生のみ。未登録なら nil
	FaceDescriptor []float64
}

type AccountStore interface {
	FindWardenByEmail(ctx context.Context, email string) (*Account, error)
	FindStudentByEmail(ctx context.Context, email string) (*Account, error)
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

var _ AccountStore = (*Store)(nil)

func (s *Store) FindWardenByEmail(ctx context.Context, email string) (*Account, error) {
	const q = `
SELECT id, name, email, password_hash, hostel
FROM wardens
WHERE email = ?
LIMIT 1
`
	a := Account{Role: RoleWarden}
	err := s.db.QueryRowContext(ctx, q, email).Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Hostel)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find warden: %w", err)
	}
	return &a, nil
}

func (s *Store) FindStudentByEmail(ctx context.Context, email string) (*Account, error) {
	const q = `
SELECT s.id, s.name, s.email, s.password_hash, s.hostel, f.face_descriptor
FROM students s
LEFT JOIN face_enrollments f ON f.student_id = s.id
WHERE s.email = ?
LIMIT 1
`
	a := Account{Role: RoleStudent}
	var descriptor []byte
	err := s.db.QueryRowContext(ctx, q, email).Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Hostel, &descriptor)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find student: %w", err)
	}
	if len(descriptor) > 0 {
		if err := json.Unmarshal(descriptor, &a.FaceDescriptor); err != nil {
			return nil, fmt.Errorf("decode face descriptor for student %d: %w", a.ID, err)
		}
	}
	return &a, nil
}

// UpsertWarden creates the warden or resets name, password and hostel of an existing one.
func (s *Store) UpsertWarden(ctx context.Context, name, email, passwordHash, hostel string) error {
	const q = `
INSERT INTO wardens (name, email, password_hash, hostel)
VALUES (?, ?, ?, NULLIF(?, ''))
ON DUPLICATE KEY UPDATE
	name = VALUES(name),
	password_hash = VALUES(password_hash),
	hostel = VALUES(hostel)
`
	if _, err := s.db.ExecContext(ctx, q, name, email, passwordHash, hostel); err != nil {
		return fmt.Errorf("upsert warden %s: %w", email, err)
	}
	return nil
}
