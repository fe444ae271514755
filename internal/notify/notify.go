// Package notify は保護者への出退室通知。
// 打刻の永続化が成功した後に呼ばれる「ベストエフォート」な出口で、
// 送信失敗しても打刻処理は失敗にしない（呼び出し側でログのみ）。
package notify

import "context"

// Payload: 保護者1人あたり1通ぶんのフラットな通知内容。
// system-fix の補完打刻では送らない（利用者操作のみ）。
type Payload struct {
	RecipientID   string // 保護者ULID
	RecipientName string
	Email         string
	StudentName   string
	StudentNumber string
	Status        string // "login" / "logout"
	Timestamp     string // 正準JST文字列
}

type Dispatcher interface {
	Dispatch(ctx context.Context, p Payload) error
}
