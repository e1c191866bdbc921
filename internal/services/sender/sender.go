// Package sender доставляет письма сброса пароля: напрямую через SMTP
// или через очередь RabbitMQ, которую разбирает notification-sender.
package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/secure-notes/internal/lib/sl"
	"github.com/magabrotheeeer/secure-notes/internal/lib/smtp"
	"github.com/magabrotheeeer/secure-notes/internal/models"
)

const (
	passwordResetSubject = "Password Reset Request"
	sendTimeout          = 30 * time.Second
)

// Transport открывает SMTP-сессию.
type Transport interface {
	Connect(ctx context.Context) (smtp.Client, error)
	From() string
}

// SenderService отправляет письма через SMTP.
type SenderService struct {
	transport Transport
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport Transport) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendPasswordReset отправляет письмо со ссылкой сброса на адрес to.
func (s *SenderService) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	const op = "services.sender.SendPasswordReset"
	body := "Click the link to reset your password: " + resetURL
	if err := s.sendEmail(ctx, []string{to}, passwordResetSubject, body); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// HandlePasswordReset обрабатывает сообщение очереди писем.
func (s *SenderService) HandlePasswordReset(body []byte) error {
	const op = "services.sender.HandlePasswordReset"
	var message models.PasswordResetEmail
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if message.Email == "" || message.ResetURL == "" {
		return fmt.Errorf("%s: incomplete message", op)
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	return s.SendPasswordReset(ctx, message.Email, message.ResetURL)
}

func (s *SenderService) sendEmail(ctx context.Context, to []string, subject, bodyText string) error {
	from := s.transport.From()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ","),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Mail(from); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return err
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}
	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}
	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent", slog.Int("recipients", len(to)))
	return nil
}
