package student

import (
	"context"
	"encoding/json"
	"log"
	"regexp"

	"KATS-backend/internal/jstime"
	"KATS-backend/internal/ledger"
	"KATS-backend/internal/platform/apperr"
)

// 短縮IDは数字のみ・最大8桁（端末のテンキー入力）
var numberRe = regexp.MustCompile(`^[0-9]{1,8}$`)

// StudentSource: サービスが必要とする範囲のストア操作。
// テストではメモリ実装に差し替える。
type StudentSource interface {
	GetByNumber(ctx context.Context, number string) (*Student, error)
	GetByID(ctx context.Context, id string) (*Student, error)
	ListAll(ctx context.Context) ([]Student, error)
	Create(ctx context.Context, number, name string, profile json.RawMessage) (*Student, error)
	Save(ctx context.Context, st *Student, newLedger ledger.Ledger) error
}

// AttendanceNotifier: 打刻成功後の保護者通知。guardian側が実装する。
// 通知失敗は打刻の成否に影響させない。
type AttendanceNotifier interface {
	NotifyAttendance(ctx context.Context, studentID, studentName, studentNumber, status, timestamp string) error
}

type Service struct {
	store    StudentSource
	notifier AttendanceNotifier
}

func NewService(store StudentSource, notifier AttendanceNotifier) *Service {
	return &Service{store: store, notifier: notifier}
}

// Lookup: 確認ダイアログ用。氏名と次操作を返す。
func (s *Service) Lookup(ctx context.Context, number string) (KioskStudentResponse, error) {
	if !numberRe.MatchString(number) {
		return KioskStudentResponse{}, apperr.ErrInvalid("student_number must be 1-8 digits")
	}
	st, err := s.store.GetByNumber(ctx, number)
	if err != nil {
		return KioskStudentResponse{}, err
	}
	if st == nil {
		return KioskStudentResponse{}, apperr.ErrNotFound("student not found")
	}
	return KioskStudentResponse{
		StudentNumber: st.Number,
		Name:          st.Name,
		NextAction:    string(st.Ledger.NextAction()),
	}, nil
}

// RecordAttendance: 端末で確定した打刻を1件追記する。
// 集約を丸ごと読み、台帳だけ差し替えて丸ごと書き戻す。
// 書き込み成功後の通知はベストエフォート（失敗はログのみ）。
func (s *Service) RecordAttendance(ctx context.Context, in CreateAttendanceRequest) (AttendanceResponse, error) {
	status := ledger.Status(in.Status)
	if !ledger.IsValidStatus(status) {
		return AttendanceResponse{}, apperr.ErrInvalid("status must be 'login' or 'logout'")
	}
	if !numberRe.MatchString(in.StudentNumber) {
		return AttendanceResponse{}, apperr.ErrInvalid("student_number must be 1-8 digits")
	}

	st, err := s.store.GetByNumber(ctx, in.StudentNumber)
	if err != nil {
		return AttendanceResponse{}, err
	}
	if st == nil {
		return AttendanceResponse{}, apperr.ErrNotFound("student not found")
	}

	rec := ledger.Record{
		Timestamp: jstime.Now(),
		Status:    status,
		Origin:    ledger.OriginUserInput,
	}
	if err := s.store.Save(ctx, st, st.Ledger.Append(rec)); err != nil {
		return AttendanceResponse{}, err
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyAttendance(ctx, st.StudentID, st.Name, st.Number, string(status), rec.Timestamp); err != nil {
			log.Printf("[WARN] 保護者通知に失敗 student=%s: %v", st.Number, err)
		}
	}

	return AttendanceResponse{
		StudentNumber: st.Number,
		StudentName:   st.Name,
		Status:        string(status),
		Timestamp:     rec.Timestamp,
	}, nil
}

// ---- 管理用 ----

func (s *Service) CreateStudent(ctx context.Context, in CreateStudentRequest) (StudentResponse, error) {
	if !numberRe.MatchString(in.StudentNumber) {
		return StudentResponse{}, apperr.ErrInvalid("student_number must be 1-8 digits")
	}
	if in.Name == "" {
		return StudentResponse{}, apperr.ErrInvalid("name is required")
	}
	if exists, err := s.store.GetByNumber(ctx, in.StudentNumber); err != nil {
		return StudentResponse{}, err
	} else if exists != nil {
		return StudentResponse{}, apperr.ErrConflict("student_number already exists")
	}
	st, err := s.store.Create(ctx, in.StudentNumber, in.Name, in.Profile)
	if err != nil {
		return StudentResponse{}, err
	}
	return st.toDTO(), nil
}

func (s *Service) GetStudent(ctx context.Context, number string) (StudentResponse, error) {
	st, err := s.store.GetByNumber(ctx, number)
	if err != nil {
		return StudentResponse{}, err
	}
	if st == nil {
		return StudentResponse{}, apperr.ErrNotFound("student not found")
	}
	return st.toDTO(), nil
}

func (s *Service) ListStudents(ctx context.Context) ([]StudentResponse, error) {
	all, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]StudentResponse, 0, len(all))
	for _, st := range all {
		out = append(out, st.toDTO())
	}
	return out, nil
}
