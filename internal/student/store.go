package student

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/oklog/ulid/v2"

	"KATS-backend/internal/ledger"
	"KATS-backend/internal/platform/apperr"
	platformdb "KATS-backend/internal/platform/db"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

const selectCols = `student_id, student_number, name, profile, ledger, version`

// GetByNumber: 短縮IDで1件取得。UNIQUE制約があるので0件か1件。
func (s *Store) GetByNumber(ctx context.Context, number string) (*Student, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT `+selectCols+` FROM students WHERE student_number = ? LIMIT 1`, number)
	return scanOne(row)
}

func (s *Store) GetByID(ctx context.Context, id string) (*Student, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT `+selectCols+` FROM students WHERE student_id = ? LIMIT 1`, id)
	return scanOne(row)
}

// ListAll: 夜間バッチ用の全件取得。student_id順で安定させる。
func (s *Store) ListAll(ctx context.Context) ([]Student, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT `+selectCols+` FROM students ORDER BY student_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Student
	for rows.Next() {
		var r studentRow
		if err := rows.Scan(&r.StudentID, &r.Number, &r.Name, &r.Profile, &r.Ledger, &r.Version); err != nil {
			return nil, err
		}
		st, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// Create: INSERTと読み戻しを同一Txで行う。
func (s *Store) Create(ctx context.Context, number, name string, profile json.RawMessage) (*Student, error) {
	id := ulid.Make().String()
	if len(profile) == 0 {
		profile = json.RawMessage(`{}`)
	}

	var created *Student
	err := platformdb.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx platformdb.DBTX) error {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO students (student_id, student_number, name, profile, ledger, version)
		VALUES (?, ?, ?, ?, JSON_ARRAY(), 1)`, id, number, name, []byte(profile))
		if err != nil {
			return err
		}
		row := tx.QueryRowContext(ctx, `
		SELECT `+selectCols+` FROM students WHERE student_id = ? LIMIT 1`, id)
		created, err = scanOne(row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Save: 集約全体の条件付き書き戻し。versionが読んだ時点から動いていたら
// 1行も当たらず CONFLICT を返す（打刻の競合取りこぼし対策）。
// 台帳以外の列も読んだ値をそのまま書き戻す（全集約書き込みの契約）。
func (s *Store) Save(ctx context.Context, st *Student, newLedger ledger.Ledger) error {
	ledgerJSON, err := json.Marshal(newLedger)
	if err != nil {
		return apperr.ErrInternal("台帳のJSON化に失敗: " + err.Error())
	}
	profile := st.Profile
	if len(profile) == 0 {
		profile = json.RawMessage(`{}`)
	}

	res, err := s.db.ExecContext(ctx, `
	UPDATE students
	SET name = ?, profile = ?, ledger = ?, version = version + 1
	WHERE student_id = ? AND version = ?`,
		st.Name, []byte(profile), ledgerJSON, st.StudentID, st.Version)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.ErrConflict("student was updated concurrently")
	}
	st.Ledger = newLedger
	st.Version++
	return nil
}

func scanOne(row *sql.Row) (*Student, error) {
	var r studentRow
	err := row.Scan(&r.StudentID, &r.Number, &r.Name, &r.Profile, &r.Ledger, &r.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	st, err := r.toModel()
	if err != nil {
		return nil, err
	}
	return &st, nil
}
