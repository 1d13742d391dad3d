package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

func GetEventQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "postcraft.post.generated", RoutingKey: "post.generated"},
		// при необходимости дополнительные очереди для других потребителей
	}
}

// SetupExchange объявляет durable topic-обменник и привязывает к нему
// очереди событий.
func SetupExchange(ch *amqp.Channel, exchange string) error {
	const op = "rabbitmq.SetupExchange"
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, q := range GetEventQueues() {
		if _, err := ch.QueueDeclare(q.QueueName, true, false, false, false, nil); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if err := ch.QueueBind(q.QueueName, q.RoutingKey, exchange, false, nil); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}
