// Package ledger は生徒ごとの出退室台帳（追記専用のレコード列）を扱う。
// レコードは一度作られたら不変・削除もしない。挿入順はおおむね時刻順だが
// 保証はないので、日次の解析では必ずタイムスタンプでソートし直す。
package ledger

import (
	"sort"

	"KATS-backend/internal/jstime"
)

type Status string

const (
	StatusLogin  Status = "login"
	StatusLogout Status = "logout"
)

// IsValidStatus: 外部入力の status 検証用。
func IsValidStatus(s Status) bool {
	return s == StatusLogin || s == StatusLogout
}

type Origin string

const (
	// OriginUserInput: 端末で本人が確定した打刻
	OriginUserInput Origin = "user-input"
	// OriginSystemFix: 夜間バッチが補った退室打刻
	OriginSystemFix Origin = "system-fix"
)

// Record の timestamp は必ず jstime の正準文字列。
// time.Time を持たせないことで保存形式とソート順を安定させる。
type Record struct {
	Timestamp string `json:"timestamp"`
	Status    Status `json:"status"`
	Origin    Origin `json:"origin"`
}

type Ledger []Record

// Append: 元のスライスを変更せずに追記したコピーを返す。
// 書き込み中の並行読み取りを安全にするため in-place では伸ばさない。
func (l Ledger) Append(r Record) Ledger {
	out := make(Ledger, len(l), len(l)+1)
	copy(out, l)
	return append(out, r)
}

// Last: 挿入順で最後のレコード。時刻順最後ではない点に注意
// （端末の確認フローは「直近に追記されたもの」を見る仕様）。
func (l Ledger) Last() (Record, bool) {
	if len(l) == 0 {
		return Record{}, false
	}
	return l[len(l)-1], true
}

// OnDay: 指定日（"YYYY-MM-DD"）のレコードを時刻昇順で返す。
// 同時刻はもとの並びを保つ（stable）。
func (l Ledger) OnDay(dayPrefix string) Ledger {
	var out Ledger
	for _, r := range l {
		if jstime.DayPrefix(r.Timestamp) == dayPrefix {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out
}

// Sorted: 全レコードを時刻昇順にしたコピー。
func (l Ledger) Sorted() Ledger {
	out := make(Ledger, len(l))
	copy(out, l)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out
}
