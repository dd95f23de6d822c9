// Package channels chứa các kênh gửi thông báo ra ngoài hệ thống.
package channels

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// EmailSender gửi email qua SMTP. Host rỗng nghĩa là kênh email bị tắt.
type EmailSender struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewEmailSender tạo EmailSender từ cấu hình SMTP.
func NewEmailSender(host string, port int, username, password, from string) *EmailSender {
	return &EmailSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// Enabled cho biết kênh email có được cấu hình không.
func (e *EmailSender) Enabled() bool {
	return e != nil && e.host != ""
}

// Send gửi một email HTML đến danh sách người nhận.
func (e *EmailSender) Send(ctx context.Context, recipients []string, subject, htmlBody string) error {
	if !e.Enabled() {
		return fmt.Errorf("kênh email chưa được cấu hình")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", e.from)
	msg.SetHeader("To", recipients...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	dialer := gomail.NewDialer(e.host, e.port, e.username, e.password)
	return dialer.DialAndSend(msg)
}
