package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sgHost     = "https://api.sendgrid.com"
	sgEndpoint = "/v3/mail/send"
)

type sendgridDispatcher struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
}

var _ Dispatcher = (*sendgridDispatcher)(nil)

func NewSendgrid(key, appName, fromEmail string) Dispatcher {
	return &sendgridDispatcher{
		key:        key,
		from:       sgmail.NewEmail(appName, fromEmail),
		subjPrefix: "[" + appName + "] ",
	}
}

func (d *sendgridDispatcher) Dispatch(ctx context.Context, p Payload) error {
	m := d.build(p)

	req := sendgrid.GetRequest(d.key, sgEndpoint, sgHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid送信失敗: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid送信失敗: status=%d body=%s", res.StatusCode, res.Body)
	}
	return nil
}

func (d *sendgridDispatcher) build(p Payload) *sgmail.SGMailV3 {
	pe := sgmail.NewPersonalization()
	pe.Subject = d.subjPrefix + subjectFor(p)
	pe.AddTos(sgmail.NewEmail(p.RecipientName, p.Email))

	m := sgmail.NewV3Mail()
	m.SetFrom(d.from)
	m.AddPersonalizations(pe)
	m.AddContent(sgmail.NewContent("text/plain", bodyFor(p)))
	return m
}

func subjectFor(p Payload) string {
	if p.Status == "login" {
		return fmt.Sprintf("%sさんが入室しました", p.StudentName)
	}
	return fmt.Sprintf("%sさんが退室しました", p.StudentName)
}

func bodyFor(p Payload) string {
	action := "入室"
	if p.Status != "login" {
		action = "退室"
	}
	return fmt.Sprintf("%s（ID: %s）さんが %s に%sしました。", p.StudentName, p.StudentNumber, p.Timestamp, action)
}
