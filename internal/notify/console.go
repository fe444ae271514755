package notify

import (
	"context"
	"log"
)

// consoleDispatcher: 開発用。APIキー未設定時に送信内容をログへ出すだけ。
type consoleDispatcher struct{}

var _ Dispatcher = (*consoleDispatcher)(nil)

func NewConsole() Dispatcher { return &consoleDispatcher{} }

func (consoleDispatcher) Dispatch(_ context.Context, p Payload) error {
	log.Printf("[NOTIFY] to=%s <%s> student=%s(%s) status=%s at=%s",
		p.RecipientName, p.Email, p.StudentName, p.StudentNumber, p.Status, p.Timestamp)
	return nil
}
