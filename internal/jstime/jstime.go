// Package jstime は出退室記録で使う正準タイムスタンプ文字列を扱う。
// 形式は "YYYY-MM-DD HH:MM:SS" 固定・常にJST（UTC+9）。
// 固定幅・日付先頭なので、文字列の辞書順比較＝時刻順比較が成り立つ。
package jstime

import (
	"fmt"
	"regexp"
	"time"
)

const (
	Layout     = "2006-01-02 15:04:05"
	DateLayout = "2006-01-02"

	jstOffsetSec = 9 * 60 * 60
)

// サーバのローカルTZに依存しないよう固定オフセットで持つ
// （tzdataが無い環境でも time.LoadLocation に失敗しない）
var JST = time.FixedZone("JST", jstOffsetSec)

var canonicalRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)

// Now: 現在時刻をJSTの正準文字列で返す。
func Now() string {
	return time.Now().In(JST).Format(Layout)
}

// At: 今日（JST）の日付に指定時刻を合成した正準文字列。
// 夜間バッチが打刻する固定時刻（22:00:00）の生成に使う。
func At(hour, min, sec int) string {
	today := time.Now().In(JST).Format(DateLayout)
	return fmt.Sprintf("%s %02d:%02d:%02d", today, hour, min, sec)
}

// Today: JSTでの今日の "YYYY-MM-DD"。
func Today() string {
	return time.Now().In(JST).Format(DateLayout)
}

// IsValid: 正準形式かどうかの形式チェック（値の妥当性まではみない）。
func IsValid(s string) bool {
	return canonicalRe.MatchString(s)
}

// DayPrefix: 正準文字列から "YYYY-MM-DD" 部分を取り出す。
// 形式外の文字列はそのまま返す（比較に使われても一致しないだけ）。
func DayPrefix(s string) string {
	if len(s) < len(DateLayout) {
		return s
	}
	return s[:len(DateLayout)]
}

// Parse: 正準文字列を time.Time（JST）へ。表示以外では使わないこと。
func Parse(s string) (time.Time, error) {
	return time.ParseInLocation(Layout, s, JST)
}

// ParseDay: "YYYY-MM-DD" を time.Time（JST）へ。
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, JST)
}
