package ledger

// 状態推定。台帳から「いま入室中か／次に取るべき操作はどちらか」を導く。

// NextAction: 端末の確認ダイアログに出す次操作。
// 挿入順最後のレコードが login なら次は logout、それ以外（空含む）は login。
// 最後の1件しか見ない厳密な2状態トグル。
func (l Ledger) NextAction() Status {
	last, ok := l.Last()
	if ok && last.Status == StatusLogin {
		return StatusLogout
	}
	return StatusLogin
}

// NeedsAutomaticLogout の判定理由。バッチレポートにそのまま載る。
type Reason string

const (
	ReasonNoRecordsToday       Reason = "no_records_today"
	ReasonLastRecordIsLogout   Reason = "last_record_is_logout"
	ReasonSystemLogoutPresent  Reason = "system_logout_present"
	ReasonLogoutAfterLastLogin Reason = "logout_after_last_login"
	ReasonMissingLogout        Reason = "missing_logout"
)

// NeedsAutomaticLogout: 指定日について退室打刻の補完が必要か。
// こちらは NextAction と違い、時刻順に並べ直した「その日の実際の時系列」で判定する。
// 3条件（当日最後が login／system-fix 退室が無い／最後の login 以降に退室が無い）を
// すべて満たすときだけ true。何度実行しても二重補完しない（冪等）ための構成。
func (l Ledger) NeedsAutomaticLogout(dayPrefix string) (bool, Reason) {
	today := l.OnDay(dayPrefix)
	if len(today) == 0 {
		return false, ReasonNoRecordsToday
	}

	last := today[len(today)-1]
	if last.Status != StatusLogin {
		return false, ReasonLastRecordIsLogout
	}

	for _, r := range today {
		if r.Status == StatusLogout && r.Origin == OriginSystemFix {
			return false, ReasonSystemLogoutPresent
		}
	}

	lastLoginIdx := -1
	for i, r := range today {
		if r.Status == StatusLogin {
			lastLoginIdx = i
		}
	}
	for _, r := range today[lastLoginIdx+1:] {
		if r.Status == StatusLogout {
			return false, ReasonLogoutAfterLastLogin
		}
	}

	return true, ReasonMissingLogout
}
