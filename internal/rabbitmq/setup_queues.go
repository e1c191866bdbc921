package rabbitmq

import "github.com/magabrotheeeer/secure-notes/internal/config"

// QueueConfig связывает очередь с ключом маршрутизации обменника.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetMailQueues возвращает очереди почтовых уведомлений.
func GetMailQueues(cfg config.RabbitMQConfig) []QueueConfig {
	return []QueueConfig{
		{QueueName: cfg.Queue, RoutingKey: cfg.RoutingKey},
	}
}
