package sender

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/secure-notes/internal/models"
	"github.com/magabrotheeeer/secure-notes/internal/rabbitmq"
)

// QueuePublisher ставит письма в очередь вместо прямой отправки.
type QueuePublisher struct {
	ch         rabbitmq.Channel
	exchange   string
	routingKey string
}

// NewQueuePublisher создает публикатор в обменник exchange с ключом routingKey.
func NewQueuePublisher(ch rabbitmq.Channel, exchange, routingKey string) *QueuePublisher {
	return &QueuePublisher{ch: ch, exchange: exchange, routingKey: routingKey}
}

// SendPasswordReset публикует сообщение со ссылкой сброса.
func (p *QueuePublisher) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	const op = "services.sender.QueuePublisher.SendPasswordReset"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	msg := models.PasswordResetEmail{Email: to, ResetURL: resetURL}
	if err := rabbitmq.PublishMessage(p.ch, p.exchange, p.routingKey, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
