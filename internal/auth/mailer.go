package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// Mailer はメール送信のインターフェース。
type Mailer interface {
	// SendVerificationMail はメールアドレス確認メールを送信する。
	SendVerificationMail(ctx context.Context, to, verifyURL string) error
}

// SMTPMailerConfig はSMTPメーラーの設定。
type SMTPMailerConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// SMTPMailer はSMTP経由でメールを送信するMailerの実装。
type SMTPMailer struct {
	config SMTPMailerConfig
}

// NewSMTPMailer はSMTPMailerを生成する。
func NewSMTPMailer(config SMTPMailerConfig) *SMTPMailer {
	return &SMTPMailer{config: config}
}

// SendVerificationMail はメールアドレス確認メールを送信する。
func (m *SMTPMailer) SendVerificationMail(ctx context.Context, to, verifyURL string) error {
	subject := "Verify your email address for Tarot42"
	body := fmt.Sprintf("Please click the following link to verify your email address: %s\r\n", verifyURL)

	var msg strings.Builder
	msg.WriteString("From: " + m.config.From + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)
	auth := smtp.PlainAuth("", m.config.User, m.config.Pass, m.config.Host)

	if err := smtp.SendMail(addr, auth, envelopeFrom(m.config.From), []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send verification mail: %w", err)
	}

	return nil
}

// envelopeFrom は表示名付きFromヘッダーからエンベロープ用のアドレスを取り出す。
// 例: "Tarot42 <noreply@tarot42.dev>" → "noreply@tarot42.dev"
func envelopeFrom(from string) string {
	start := strings.LastIndex(from, "<")
	end := strings.LastIndex(from, ">")
	if start >= 0 && end > start {
		return from[start+1 : end]
	}
	return from
}

// NoopMailer はSMTP未設定時に使用するMailerの実装。
// 送信せず警告ログのみを出力する。
type NoopMailer struct{}

// SendVerificationMail は警告ログを出力してnilを返す。
func (NoopMailer) SendVerificationMail(ctx context.Context, to, verifyURL string) error {
	slog.Warn("mail transport not configured, verification mail not sent",
		slog.String("to", to),
	)
	return nil
}

// compile-time interface check
var (
	_ Mailer = (*SMTPMailer)(nil)
	_ Mailer = NoopMailer{}
)
