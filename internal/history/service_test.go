package history

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"KATS-backend/internal/ledger"
	"KATS-backend/internal/student"
)

func rec(ts string, st ledger.Status, or ledger.Origin) ledger.Record {
	return ledger.Record{Timestamp: ts, Status: st, Origin: or}
}

func TestFormatPairsLoginLogout(t *testing.T) {
	l := ledger.Ledger{
		rec("2024-05-01 09:00:00", ledger.StatusLogin, ledger.OriginUserInput),
		rec("2024-05-01 17:00:00", ledger.StatusLogout, ledger.OriginUserInput),
	}
	rows := Format(l, "ja")
	require.Len(t, rows, 1)
	assert.Equal(t, "2024/05/01 (水)", rows[0].Date)
	assert.Equal(t, "09:00", rows[0].Login)
	assert.Equal(t, "17:00", rows[0].Logout)
}

func TestFormatLoneLogin(t *testing.T) {
	l := ledger.Ledger{rec("2024-05-01 09:00:00", ledger.StatusLogin, ledger.OriginUserInput)}
	rows := Format(l, "ja")
	require.Len(t, rows, 1)
	assert.Equal(t, "09:00", rows[0].Login)
	assert.Equal(t, "—", rows[0].Logout)
}

func TestFormatLoneLogout(t *testing.T) {
	l := ledger.Ledger{rec("2024-05-01 10:00:00", ledger.StatusLogout, ledger.OriginUserInput)}
	rows := Format(l, "ja")
	require.Len(t, rows, 1)
	assert.Equal(t, "—", rows[0].Login)
	assert.Equal(t, "10:00", rows[0].Logout)
}

// system-fix の退室は時刻でなく "#"
func TestFormatSystemFixMarker(t *testing.T) {
	l := ledger.Ledger{
		rec("2024-05-01 09:00:00", ledger.StatusLogin, ledger.OriginUserInput),
		rec("2024-05-01 22:00:00", ledger.StatusLogout, ledger.OriginSystemFix),
	}
	rows := Format(l, "ja")
	require.Len(t, rows, 1)
	assert.Equal(t, "09:00", rows[0].Login)
	assert.Equal(t, "#", rows[0].Logout)
}

// 入退を繰り返した日は複数行。2つ目の login は次の logout とペアになる
func TestFormatMultiplePairsSameDay(t *testing.T) {
	l := ledger.Ledger{
		rec("2024-05-01 09:00:00", ledger.StatusLogin, ledger.OriginUserInput),
		rec("2024-05-01 12:00:00", ledger.StatusLogout, ledger.OriginUserInput),
		rec("2024-05-01 13:00:00", ledger.StatusLogin, ledger.OriginUserInput),
	}
	rows := Format(l, "ja")
	require.Len(t, rows, 2)
	assert.Equal(t, "09:00", rows[0].Login)
	assert.Equal(t, "12:00", rows[0].Logout)
	assert.Equal(t, "13:00", rows[1].Login)
	assert.Equal(t, "—", rows[1].Logout)
}

// 挿入順が乱れていても出力は同じ（決定的）
func TestFormatDeterministic(t *testing.T) {
	a := ledger.Ledger{
		rec("2024-05-01 09:00:00", ledger.StatusLogin, ledger.OriginUserInput),
		rec("2024-05-01 17:00:00", ledger.StatusLogout, ledger.OriginUserInput),
	}
	b := ledger.Ledger{a[1], a[0]}

	assert.Equal(t, Format(a, "ja"), Format(b, "ja"))
	assert.Equal(t, Format(a, "ja"), Format(a, "ja"))
}

// 日は新しい順
func TestFormatNewestDayFirst(t *testing.T) {
	l := ledger.Ledger{
		rec("2024-05-01 09:00:00", ledger.StatusLogin, ledger.OriginUserInput),
		rec("2024-05-02 09:30:00", ledger.StatusLogin, ledger.OriginUserInput),
	}
	rows := Format(l, "ja")
	require.Len(t, rows, 2)
	assert.Equal(t, "2024/05/02 (木)", rows[0].Date)
	assert.Equal(t, "2024/05/01 (水)", rows[1].Date)
}

func TestFormatLocale(t *testing.T) {
	l := ledger.Ledger{rec("2024-05-01 09:00:00", ledger.StatusLogin, ledger.OriginUserInput)}

	assert.Equal(t, "2024/05/01 (水)", Format(l, "ja")[0].Date)
	assert.Equal(t, "2024/05/01 (水)", Format(l, "")[0].Date) // 既定は日本語
	assert.Equal(t, "2024/05/01 (Wed)", Format(l, "en")[0].Date)
	assert.Equal(t, "2024/05/01 (Wed)", Format(l, "en-US")[0].Date)
}

func TestFormatEmptyLedger(t *testing.T) {
	assert.Empty(t, Format(nil, "ja"))
}

// ---- Stats ----

type fakeSource struct{ students []student.Student }

func (f *fakeSource) GetByNumber(_ context.Context, number string) (*student.Student, error) {
	for i := range f.students {
		if f.students[i].Number == number {
			return &f.students[i], nil
		}
	}
	return nil, nil
}

func (f *fakeSource) ListAll(_ context.Context) ([]student.Student, error) {
	return f.students, nil
}

func TestStatsCountsDistinctLoginDays(t *testing.T) {
	src := &fakeSource{students: []student.Student{
		{StudentID: "01A", Number: "1001", Name: "A", Ledger: ledger.Ledger{
			rec("2024-05-01 09:00:00", ledger.StatusLogin, ledger.OriginUserInput),
			rec("2024-05-01 13:00:00", ledger.StatusLogin, ledger.OriginUserInput), // 同日2回は1日と数える
			rec("2024-05-02 09:00:00", ledger.StatusLogin, ledger.OriginUserInput),
			rec("2024-06-01 09:00:00", ledger.StatusLogin, ledger.OriginUserInput), // 期間外
		}},
		{StudentID: "01B", Number: "1002", Name: "B", Ledger: ledger.Ledger{
			rec("2024-05-01 10:00:00", ledger.StatusLogin, ledger.OriginUserInput),
		}},
		{StudentID: "01C", Number: "1003", Name: "C"}, // 記録なし → 出力されない
	}}
	svc := NewService(src)

	rows, err := svc.Stats(context.Background(), "2024-05-01", "2024-05-31", 10)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "1001", rows[0].StudentNumber)
	assert.Equal(t, 2, rows[0].Days)
	assert.Equal(t, "1002", rows[1].StudentNumber)
	assert.Equal(t, 1, rows[1].Days)
}

func TestStatsValidatesRange(t *testing.T) {
	svc := NewService(&fakeSource{})

	_, err := svc.Stats(context.Background(), "bad", "2024-05-31", 10)
	assert.Error(t, err)

	_, err = svc.Stats(context.Background(), "2024-05-31", "2024-05-01", 10)
	assert.Error(t, err)
}

func TestHistoryNotFound(t *testing.T) {
	svc := NewService(&fakeSource{})
	_, err := svc.History(context.Background(), "9999", "ja")
	assert.Error(t, err)
}
