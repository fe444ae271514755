package student

import (
	"encoding/json"

	"KATS-backend/internal/ledger"
)

// Student は外部公開の短縮ID（数字最大8桁）と台帳を持つ集約。
// Profile は氏名以外の付帯情報（学年・連絡欄など）を生のJSONのまま持ち、
// 打刻更新では一切手を付けずにそのまま書き戻す。部分更新はしない。
type Student struct {
	StudentID string // ULID
	Number    string // 端末で入力する短縮ID
	Name      string
	Profile   json.RawMessage
	Ledger    ledger.Ledger
	Version   int64 // 楽観ロック用。書き込みのたびに+1
}

// DB行（スキャン用）。ledger/profile はJSON列。
type studentRow struct {
	StudentID string
	Number    string
	Name      string
	Profile   []byte
	Ledger    []byte
	Version   int64
}

func (r studentRow) toModel() (Student, error) {
	s := Student{
		StudentID: r.StudentID,
		Number:    r.Number,
		Name:      r.Name,
		Profile:   json.RawMessage(r.Profile),
		Version:   r.Version,
	}
	if len(r.Ledger) > 0 {
		if err := json.Unmarshal(r.Ledger, &s.Ledger); err != nil {
			return Student{}, err
		}
	}
	return s, nil
}
