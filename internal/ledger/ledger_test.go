package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(ts string, st Status, or Origin) Record {
	return Record{Timestamp: ts, Status: st, Origin: or}
}

func TestAppendDoesNotMutate(t *testing.T) {
	base := Ledger{rec("2024-05-01 08:00:00", StatusLogin, OriginUserInput)}

	got := base.Append(rec("2024-05-01 17:00:00", StatusLogout, OriginUserInput))

	require.Len(t, base, 1)
	require.Len(t, got, 2)

	// 追記後のスライスをいじっても元に影響しない
	got[0].Timestamp = "mutated"
	assert.Equal(t, "2024-05-01 08:00:00", base[0].Timestamp)
}

func TestLastIsInsertionOrder(t *testing.T) {
	// 時刻順では 17:00 が最後だが、挿入順では 08:00 が最後
	l := Ledger{
		rec("2024-05-01 17:00:00", StatusLogout, OriginUserInput),
		rec("2024-05-01 08:00:00", StatusLogin, OriginUserInput),
	}
	last, ok := l.Last()
	require.True(t, ok)
	assert.Equal(t, "2024-05-01 08:00:00", last.Timestamp)

	_, ok = Ledger{}.Last()
	assert.False(t, ok)
}

func TestOnDayFiltersAndSorts(t *testing.T) {
	l := Ledger{
		rec("2024-05-02 09:00:00", StatusLogin, OriginUserInput),
		rec("2024-05-01 17:00:00", StatusLogout, OriginUserInput),
		rec("2024-05-01 08:00:00", StatusLogin, OriginUserInput),
	}

	day := l.OnDay("2024-05-01")
	require.Len(t, day, 2)
	assert.Equal(t, "2024-05-01 08:00:00", day[0].Timestamp)
	assert.Equal(t, "2024-05-01 17:00:00", day[1].Timestamp)

	assert.Empty(t, l.OnDay("2024-04-30"))
}

func TestOnDayStableForEqualTimestamps(t *testing.T) {
	l := Ledger{
		rec("2024-05-01 08:00:00", StatusLogin, OriginUserInput),
		rec("2024-05-01 08:00:00", StatusLogout, OriginUserInput),
	}
	day := l.OnDay("2024-05-01")
	require.Len(t, day, 2)
	assert.Equal(t, StatusLogin, day[0].Status)
	assert.Equal(t, StatusLogout, day[1].Status)
}

func TestIsValidStatus(t *testing.T) {
	assert.True(t, IsValidStatus(StatusLogin))
	assert.True(t, IsValidStatus(StatusLogout))
	assert.False(t, IsValidStatus(Status("")))
	assert.False(t, IsValidStatus(Status("check-in")))
}
