package guardian

import (
	"context"
	"errors"
	"fmt"

	"KATS-backend/internal/notify"
	"KATS-backend/internal/platform/apperr"
)

// ParentSource: サービスが使う範囲のストア操作（テスト差し替え用）。
type ParentSource interface {
	Create(ctx context.Context, name, email string) (*Parent, error)
	GetByID(ctx context.Context, id string) (*Parent, error)
	AssignStudent(ctx context.Context, parentID, studentID string) error
	ListByStudent(ctx context.Context, studentID string) ([]Parent, error)
	HasStudent(ctx context.Context, parentID, studentID string) (bool, error)
}

type Service struct {
	store      ParentSource
	dispatcher notify.Dispatcher
}

func NewService(store ParentSource, dispatcher notify.Dispatcher) *Service {
	return &Service{store: store, dispatcher: dispatcher}
}

func (s *Service) CreateParent(ctx context.Context, in CreateParentRequest) (ParentResponse, error) {
	p, err := s.store.Create(ctx, in.Name, in.Email)
	if err != nil {
		return ParentResponse{}, err
	}
	return p.toDTO(), nil
}

func (s *Service) GetParent(ctx context.Context, id string) (ParentResponse, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return ParentResponse{}, err
	}
	if p == nil {
		return ParentResponse{}, apperr.ErrNotFound("parent not found")
	}
	return p.toDTO(), nil
}

func (s *Service) AssignStudent(ctx context.Context, parentID, studentID string) error {
	p, err := s.store.GetByID(ctx, parentID)
	if err != nil {
		return err
	}
	if p == nil {
		return apperr.ErrNotFound("parent not found")
	}
	return s.store.AssignStudent(ctx, parentID, studentID)
}

// CanViewStudent: 保護者アカウントが当該生徒の履歴を見てよいか。
func (s *Service) CanViewStudent(ctx context.Context, parentID, studentID string) (bool, error) {
	return s.store.HasStudent(ctx, parentID, studentID)
}

// NotifyAttendance: 打刻1件につき割当保護者それぞれへ1通。
// 一部失敗しても残りには送り、失敗をまとめて返す（呼び出し側はログのみ）。
// system-fix の補完打刻では呼ばれない。
func (s *Service) NotifyAttendance(ctx context.Context, studentID, studentName, studentNumber, status, timestamp string) error {
	parents, err := s.store.ListByStudent(ctx, studentID)
	if err != nil {
		return fmt.Errorf("宛先の取得に失敗: %w", err)
	}

	var errs []error
	for _, p := range parents {
		err := s.dispatcher.Dispatch(ctx, notify.Payload{
			RecipientID:   p.ParentID,
			RecipientName: p.Name,
			Email:         p.Email,
			StudentName:   studentName,
			StudentNumber: studentNumber,
			Status:        status,
			Timestamp:     timestamp,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("parent=%s: %w", p.ParentID, err))
		}
	}
	return errors.Join(errs...)
}
