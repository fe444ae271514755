package student

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"KATS-backend/internal/jstime"
	"KATS-backend/internal/ledger"
	"KATS-backend/internal/platform/apperr"
)

type memStore struct {
	byNumber map[string]*Student
	saveErr  error
	saves    int
}

func newMemStore() *memStore { return &memStore{byNumber: map[string]*Student{}} }

func (m *memStore) add(st Student) {
	cp := st
	m.byNumber[st.Number] = &cp
}

func (m *memStore) GetByNumber(_ context.Context, number string) (*Student, error) {
	st, ok := m.byNumber[number]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*Student, error) {
	for _, st := range m.byNumber {
		if st.StudentID == id {
			cp := *st
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListAll(_ context.Context) ([]Student, error) {
	out := make([]Student, 0, len(m.byNumber))
	for _, st := range m.byNumber {
		out = append(out, *st)
	}
	return out, nil
}

func (m *memStore) Create(_ context.Context, number, name string, profile json.RawMessage) (*Student, error) {
	st := Student{StudentID: "mem-" + number, Number: number, Name: name, Profile: profile, Version: 1}
	m.add(st)
	return &st, nil
}

func (m *memStore) Save(_ context.Context, st *Student, newLedger ledger.Ledger) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	cur := m.byNumber[st.Number]
	cur.Ledger = newLedger
	cur.Version++
	return nil
}

type memNotifier struct {
	calls []string // "status timestamp"
	err   error
}

func (n *memNotifier) NotifyAttendance(_ context.Context, _, _, _, status, ts string) error {
	n.calls = append(n.calls, status+" "+ts)
	return n.err
}

func sampleStudent() Student {
	return Student{
		StudentID: "01HX",
		Number:    "1001",
		Name:      "山田太郎",
		Profile:   json.RawMessage(`{"grade":2,"note":"アレルギーあり"}`),
		Version:   1,
	}
}

func TestRecordAttendanceAppendsOneRecord(t *testing.T) {
	store := newMemStore()
	store.add(sampleStudent())
	notifier := &memNotifier{}
	svc := NewService(store, notifier)

	resp, err := svc.RecordAttendance(context.Background(), CreateAttendanceRequest{
		StudentNumber: "1001",
		Status:        "login",
	})
	require.NoError(t, err)

	assert.Equal(t, "山田太郎", resp.StudentName)
	assert.Equal(t, "login", resp.Status)
	assert.True(t, jstime.IsValid(resp.Timestamp))

	saved := store.byNumber["1001"]
	require.Len(t, saved.Ledger, 1)
	assert.Equal(t, ledger.StatusLogin, saved.Ledger[0].Status)
	assert.Equal(t, ledger.OriginUserInput, saved.Ledger[0].Origin)
	assert.Equal(t, resp.Timestamp, saved.Ledger[0].Timestamp)

	// 台帳以外のフィールドはそのまま
	assert.Equal(t, json.RawMessage(`{"grade":2,"note":"アレルギーあり"}`), saved.Profile)
	assert.Equal(t, "山田太郎", saved.Name)

	// 保護者通知が1回呼ばれている
	require.Len(t, notifier.calls, 1)
	assert.Contains(t, notifier.calls[0], "login")
}

func TestRecordAttendanceRejectsBadInputBeforeIO(t *testing.T) {
	store := newMemStore()
	store.add(sampleStudent())
	svc := NewService(store, nil)

	cases := []CreateAttendanceRequest{
		{StudentNumber: "1001", Status: "present"},
		{StudentNumber: "1001", Status: ""},
		{StudentNumber: "abc", Status: "login"},
		{StudentNumber: "123456789", Status: "login"}, // 9桁
		{StudentNumber: "", Status: "login"},
	}
	for _, in := range cases {
		_, err := svc.RecordAttendance(context.Background(), in)
		var api *apperr.APIError
		require.ErrorAs(t, err, &api, "%+v", in)
		assert.Equal(t, apperr.CodeInvalidArgument, api.Code)
	}
	assert.Zero(t, store.saves)
}

func TestRecordAttendanceNotFound(t *testing.T) {
	svc := NewService(newMemStore(), nil)
	_, err := svc.RecordAttendance(context.Background(), CreateAttendanceRequest{
		StudentNumber: "1001", Status: "login",
	})
	var api *apperr.APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, apperr.CodeNotFound, api.Code)
}

// 通知の失敗は打刻の成功を妨げない
func TestRecordAttendanceNotifyFailureIsSwallowed(t *testing.T) {
	store := newMemStore()
	store.add(sampleStudent())
	notifier := &memNotifier{err: errors.New("smtp down")}
	svc := NewService(store, notifier)

	_, err := svc.RecordAttendance(context.Background(), CreateAttendanceRequest{
		StudentNumber: "1001", Status: "logout",
	})
	assert.NoError(t, err)
	assert.Len(t, store.byNumber["1001"].Ledger, 1)
}

// 書き込みが失敗したら通知しない（永続化成功が先）
func TestRecordAttendanceNoNotifyOnWriteFailure(t *testing.T) {
	store := newMemStore()
	store.add(sampleStudent())
	store.saveErr = apperr.ErrConflict("student was updated concurrently")
	notifier := &memNotifier{}
	svc := NewService(store, notifier)

	_, err := svc.RecordAttendance(context.Background(), CreateAttendanceRequest{
		StudentNumber: "1001", Status: "login",
	})
	assert.Error(t, err)
	assert.Empty(t, notifier.calls)
}

func TestLookupNextAction(t *testing.T) {
	store := newMemStore()
	st := sampleStudent()
	store.add(st)
	svc := NewService(store, nil)

	resp, err := svc.Lookup(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, "login", resp.NextAction)
	assert.Equal(t, "山田太郎", resp.Name)

	// login 打刻後は logout
	_, err = svc.RecordAttendance(context.Background(), CreateAttendanceRequest{
		StudentNumber: "1001", Status: "login",
	})
	require.NoError(t, err)

	resp, err = svc.Lookup(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, "logout", resp.NextAction)
}

func TestCreateStudentDuplicateNumber(t *testing.T) {
	store := newMemStore()
	store.add(sampleStudent())
	svc := NewService(store, nil)

	_, err := svc.CreateStudent(context.Background(), CreateStudentRequest{
		StudentNumber: "1001", Name: "別の生徒",
	})
	var api *apperr.APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, apperr.CodeConflict, api.Code)
}
