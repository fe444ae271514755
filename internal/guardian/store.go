package guardian

import (
	"context"
	"database/sql"
	"errors"

	"github.com/oklog/ulid/v2"

	platformdb "KATS-backend/internal/platform/db"
)

type Store struct{ db platformdb.DBTX }

func NewStore(db platformdb.DBTX) *Store { return &Store{db: db} }

func (s *Store) Create(ctx context.Context, name, email string) (*Parent, error) {
	id := ulid.Make().String()
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO parents (parent_id, name, email, created_at)
	VALUES (?, ?, ?, NOW(6))`, id, name, email)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *Store) GetByID(ctx context.Context, id string) (*Parent, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT parent_id, name, email, created_at FROM parents WHERE parent_id = ? LIMIT 1`, id)
	var p Parent
	err := row.Scan(&p.ParentID, &p.Name, &p.Email, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// AssignStudent: 保護者と生徒の割当。重複はUNIQUEで弾いて無視。
func (s *Store) AssignStudent(ctx context.Context, parentID, studentID string) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT IGNORE INTO parent_students (parent_id, student_id) VALUES (?, ?)`, parentID, studentID)
	return err
}

// ListByStudent: 生徒に割り当てられた保護者全員（通知のファンアウト先）。
func (s *Store) ListByStudent(ctx context.Context, studentID string) ([]Parent, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT p.parent_id, p.name, p.email, p.created_at
	FROM parents p
	JOIN parent_students ps ON ps.parent_id = p.parent_id
	WHERE ps.student_id = ?
	ORDER BY p.parent_id ASC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Parent
	for rows.Next() {
		var p Parent
		if err := rows.Scan(&p.ParentID, &p.Name, &p.Email, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// HasStudent: 保護者に当該生徒が割り当てられているか（履歴閲覧のアクセス制御）。
func (s *Store) HasStudent(ctx context.Context, parentID, studentID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
	SELECT 1 FROM parent_students WHERE parent_id = ? AND student_id = ? LIMIT 1`,
		parentID, studentID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
