package issues

import (
	"context"
	"database/sql"
	"fmt"
)

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

func (s *Store) Create(ctx context.Context, is *Issue) error {
	res, err := s.db.ExecContext(ctx, `
	INSERT INTO issues (issue_ulid, student_id, type, description, status, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		is.IssueULID, is.StudentID, is.Type, is.Description, string(is.Status), is.CreatedAt, is.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert issue: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	is.IssueID = uint64(id)
	return nil
}

// ListWithReporter returns every issue, newest first.
func (s *Store) ListWithReporter(ctx context.Context) ([]IssueWithReporter, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT i.issue_id, i.issue_ulid, i.student_id, i.type, i.description, i.status,
	       i.created_at, i.updated_at, st.name, st.reg_no, st.room_no
	FROM issues i
	JOIN students st ON st.id = i.student_id
	ORDER BY i.created_at DESC, i.issue_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query issues: %w", err)
	}
	defer rows.Close()

	out := make([]IssueWithReporter, 0, 32)
	for rows.Next() {
		var (
			r      IssueWithReporter
			status string
		)
		if err := rows.Scan(&r.IssueID, &r.IssueULID, &r.StudentID, &r.Type, &r.Description, &status,
			&r.CreatedAt, &r.UpdatedAt, &r.Student.Name, &r.Student.RegNo, &r.Student.RoomNo); err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		r.Status = Status(status)
		out = append(out, r)
	}
	return out, rows.Err()
}
