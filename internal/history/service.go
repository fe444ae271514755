// Package history は台帳を保護者向けの閲覧用に整形する（読み取り専用）。
// 日ごとに入室・退室をペアにした行へ組み直し、新しい日から順に返す。
package history

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/text/language"

	"KATS-backend/internal/jstime"
	"KATS-backend/internal/ledger"
	"KATS-backend/internal/platform/apperr"
	"KATS-backend/internal/student"
)

const (
	// 対になる打刻が無い側の表示
	placeholder = "—"
	// system-fix の退室は時刻でなく固定マーカーで示す（自動補完の明示）
	systemFixMark = "#"
)

type Row struct {
	Date   string `json:"date"`   // 例 "2024/05/01 (水)"
	Login  string `json:"login"`  // "HH:MM" or "—"
	Logout string `json:"logout"` // "HH:MM", "—", "#"
}

type HistoryResponse struct {
	StudentID     string `json:"student_id"`
	StudentNumber string `json:"student_number"`
	StudentName   string `json:"student_name"`
	Rows          []Row  `json:"rows"`
}

type StatsRow struct {
	StudentNumber string `json:"student_number"`
	StudentName   string `json:"student_name"`
	Days          int    `json:"days"` // 期間内に入室のあった日数
}

// StudentSource: 参照のみ。
type StudentSource interface {
	GetByNumber(ctx context.Context, number string) (*student.Student, error)
	ListAll(ctx context.Context) ([]student.Student, error)
}

type Service struct{ store StudentSource }

func NewService(store StudentSource) *Service { return &Service{store: store} }

func (s *Service) History(ctx context.Context, number, locale string) (HistoryResponse, error) {
	st, err := s.store.GetByNumber(ctx, number)
	if err != nil {
		return HistoryResponse{}, err
	}
	if st == nil {
		return HistoryResponse{}, apperr.ErrNotFound("student not found")
	}
	return HistoryResponse{
		StudentID:     st.StudentID,
		StudentNumber: st.Number,
		StudentName:   st.Name,
		Rows:          Format(st.Ledger, locale),
	}, nil
}

// Format: 台帳を表示行へ整形する純関数。
//  1. 全レコードを時刻昇順に並べ直す
//  2. 日ごとにまとめる
//  3. 日の中で login から次の未ペア logout へ貪欲にペアを作る。
//     相手がいなければ "—"。先行する login のない logout は単独行。
//  4. system-fix の退室は時刻の代わりに "#"
//  5. 日の並びは新しい順（日の中はそのまま）
func Format(l ledger.Ledger, locale string) []Row {
	sorted := l.Sorted()

	var days []string
	byDay := map[string]ledger.Ledger{}
	for _, r := range sorted {
		day := jstime.DayPrefix(r.Timestamp)
		if _, ok := byDay[day]; !ok {
			days = append(days, day)
		}
		byDay[day] = append(byDay[day], r)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))

	japanese := weekdayJapanese(locale)

	var rows []Row
	for _, day := range days {
		recs := byDay[day]
		date := displayDate(day, japanese)

		paired := make([]bool, len(recs))
		for i, r := range recs {
			if paired[i] {
				continue
			}
			if r.Status == ledger.StatusLogin {
				row := Row{Date: date, Login: timeOf(r), Logout: placeholder}
				for j := i + 1; j < len(recs); j++ {
					if !paired[j] && recs[j].Status == ledger.StatusLogout {
						paired[j] = true
						row.Logout = logoutDisplay(recs[j])
						break
					}
				}
				rows = append(rows, row)
			} else {
				// 対応する入室のない退室（前日からの持ち越し等）も1行にする
				rows = append(rows, Row{Date: date, Login: placeholder, Logout: logoutDisplay(r)})
			}
		}
	}
	return rows
}

func timeOf(r ledger.Record) string {
	// "YYYY-MM-DD HH:MM:SS" → "HH:MM"
	if len(r.Timestamp) >= 16 {
		return r.Timestamp[11:16]
	}
	return r.Timestamp
}

func logoutDisplay(r ledger.Record) string {
	if r.Origin == ledger.OriginSystemFix {
		return systemFixMark
	}
	return timeOf(r)
}

var jaWeekdays = [7]string{"日", "月", "火", "水", "木", "金", "土"}

// weekdayJapanese: 曜日を和文1文字にするか英文略称にするか。
// localeの解釈は golang.org/x/text に任せ、判別できなければ日本語。
func weekdayJapanese(locale string) bool {
	if locale == "" {
		return true
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return true
	}
	base, _ := tag.Base()
	return base.String() == "ja"
}

func displayDate(dayPrefix string, japanese bool) string {
	t, err := jstime.ParseDay(dayPrefix)
	if err != nil {
		return dayPrefix
	}
	wd := t.Weekday()
	if japanese {
		return fmt.Sprintf("%s (%s)", t.Format("2006/01/02"), jaWeekdays[wd])
	}
	return fmt.Sprintf("%s (%s)", t.Format("2006/01/02"), wd.String()[:3])
}

// Stats: 期間内に入室打刻のあった日数を生徒別に集計（多い順）。
func (s *Service) Stats(ctx context.Context, from, to string, limit int) ([]StatsRow, error) {
	if _, err := jstime.ParseDay(from); err != nil {
		return nil, apperr.ErrInvalid("from must be YYYY-MM-DD")
	}
	if _, err := jstime.ParseDay(to); err != nil {
		return nil, apperr.ErrInvalid("to must be YYYY-MM-DD")
	}
	if to < from {
		return nil, apperr.ErrInvalid("to must be >= from")
	}
	if limit <= 0 {
		limit = 10
	}

	all, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]StatsRow, 0, len(all))
	for _, st := range all {
		days := map[string]struct{}{}
		for _, r := range st.Ledger {
			if r.Status != ledger.StatusLogin {
				continue
			}
			day := jstime.DayPrefix(r.Timestamp)
			if from <= day && day <= to {
				days[day] = struct{}{}
			}
		}
		if len(days) > 0 {
			out = append(out, StatsRow{StudentNumber: st.Number, StudentName: st.Name, Days: len(days)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Days != out[j].Days {
			return out[i].Days > out[j].Days
		}
		return out[i].StudentNumber < out[j].StudentNumber
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
