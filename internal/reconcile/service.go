// Package reconcile は退室打ち忘れを補完する夜間バッチ。
// その日の最後が login のまま残っている生徒へ system-fix の退室打刻
// （既定 22:00:00 JST）を1件だけ追記する。同日に何度実行しても
// 2件目は入らない（判定側の冪等条件による）。
package reconcile

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"

	"KATS-backend/internal/jstime"
	"KATS-backend/internal/ledger"
	"KATS-backend/internal/platform/apperr"
	"KATS-backend/internal/student"
)

const (
	OutcomeSystemLogoutAdded = "system_logout_added"
	OutcomeNoActionNeeded    = "no_action_needed"
	OutcomeSkippedNoRecords  = "skipped:no_records_today"
)

type StudentResult struct {
	StudentNumber string `json:"student_number"`
	Outcome       string `json:"outcome"`
	Reason        string `json:"reason"`
}

// Report: 1回の実行の全結果。手動実行のレスポンスにもそのまま使う。
type Report struct {
	RunID        string          `json:"run_id"`
	Day          string          `json:"day"` // 対象日（JST）
	Processed    int             `json:"processed"`
	LogoutsAdded int             `json:"logouts_added"`
	Results      []StudentResult `json:"results"`
	Errors       []string        `json:"errors,omitempty"`
}

// StudentSource: バッチが使う範囲のストア操作。
type StudentSource interface {
	ListAll(ctx context.Context) ([]student.Student, error)
	GetByID(ctx context.Context, id string) (*student.Student, error)
	Save(ctx context.Context, st *student.Student, newLedger ledger.Ledger) error
}

type Service struct {
	store      StudentSource
	cutoffHour int // 補完打刻の時刻（JST）
}

func NewService(store StudentSource, cutoffHour int) *Service {
	return &Service{store: store, cutoffHour: cutoffHour}
}

// Run: 全生徒を1巡して補完打刻を入れる。
// 個々の生徒での失敗は Errors に積んで続行し、ジョブ全体は
// 生徒一覧の取得に失敗したときだけエラーを返す。
// dayPrefix が空なら今日（JST）。
func (s *Service) Run(ctx context.Context, dayPrefix string) (Report, error) {
	if dayPrefix == "" {
		dayPrefix = jstime.Today()
	}

	// 補完打刻のタイムスタンプ。今日ぶんは codec に任せ、
	// 過去日を指定した手動実行では対象日の日付で組み立てる。
	cutoffTS := jstime.At(s.cutoffHour, 0, 0)
	if dayPrefix != jstime.Today() {
		cutoffTS = fmt.Sprintf("%s %02d:00:00", dayPrefix, s.cutoffHour)
	}

	report := Report{
		RunID: ulid.Make().String(),
		Day:   dayPrefix,
	}

	students, err := s.store.ListAll(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("生徒一覧の取得に失敗: %w", err)
	}

	for i := range students {
		st := &students[i]
		report.Processed++

		result, err := s.reconcileOne(ctx, st, dayPrefix, cutoffTS)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("student=%s: %v", st.Number, err))
			continue
		}
		if result.Outcome == OutcomeSystemLogoutAdded {
			report.LogoutsAdded++
		}
		report.Results = append(report.Results, result)
	}
	return report, nil
}

func (s *Service) reconcileOne(ctx context.Context, st *student.Student, dayPrefix, cutoffTS string) (StudentResult, error) {
	needs, reason := st.Ledger.NeedsAutomaticLogout(dayPrefix)
	if !needs {
		outcome := OutcomeNoActionNeeded
		if reason == ledger.ReasonNoRecordsToday {
			outcome = OutcomeSkippedNoRecords
		}
		return StudentResult{StudentNumber: st.Number, Outcome: outcome, Reason: string(reason)}, nil
	}

	rec := ledger.Record{
		Timestamp: cutoffTS,
		Status:    ledger.StatusLogout,
		Origin:    ledger.OriginSystemFix,
	}

	err := s.store.Save(ctx, st, st.Ledger.Append(rec))
	if err == nil {
		return StudentResult{StudentNumber: st.Number, Outcome: OutcomeSystemLogoutAdded, Reason: string(ledger.ReasonMissingLogout)}, nil
	}

	// 端末打刻と競合したら読み直して1回だけやり直す。
	// 読み直した結果もう補完不要なら（本人が退室打刻していた等）何もしない。
	if api, ok := err.(*apperr.APIError); !ok || api.Code != apperr.CodeConflict {
		return StudentResult{}, err
	}

	fresh, err := s.store.GetByID(ctx, st.StudentID)
	if err != nil {
		return StudentResult{}, err
	}
	if fresh == nil {
		return StudentResult{}, apperr.ErrNotFound("student disappeared during reconciliation")
	}
	needs, reason = fresh.Ledger.NeedsAutomaticLogout(dayPrefix)
	if !needs {
		return StudentResult{StudentNumber: fresh.Number, Outcome: OutcomeNoActionNeeded, Reason: string(reason)}, nil
	}
	if err := s.store.Save(ctx, fresh, fresh.Ledger.Append(rec)); err != nil {
		return StudentResult{}, err
	}
	return StudentResult{StudentNumber: fresh.Number, Outcome: OutcomeSystemLogoutAdded, Reason: string(ledger.ReasonMissingLogout)}, nil
}
