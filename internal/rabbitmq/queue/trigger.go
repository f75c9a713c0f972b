package queue

import (
	"encoding/json"
	"fmt"

	"github.com/wb-go/wbf/rabbitmq"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/faithbridge/notify/internal/model"
)

const (
	ExchangeName   = "dispatch-exchange"
	MainQueueName  = "dispatch-queue"
	RetryQueueName = "dispatch-retry"
	DLQName        = "dispatch-dlq"
	RoutingKey     = "dispatch"
)

// TriggerMessage is one dispatch request published by the scheduler or
// the web application (devotion times, event reminders, prayer alerts,
// broadcasts).
type TriggerMessage struct {
	RecipientID string         `json:"recipient_id,omitempty"`
	Broadcast   bool           `json:"broadcast,omitempty"`
	Category    model.Category `json:"category"`
	Payload     model.Payload  `json:"payload"`
}

// TriggerQueue wires the dispatch trigger topology: a durable main
// queue dead-lettering into the DLQ, and a retry queue that TTLs
// messages back onto the main queue.
type TriggerQueue struct {
	Publisher *rabbitmq.Publisher
	Consumer  *rabbitmq.Consumer
}

func NewTriggerQueue(ch *rabbitmq.Channel) (*TriggerQueue, error) {
	exchange := rabbitmq.NewExchange(ExchangeName, "direct")
	if err := exchange.BindToChannel(ch); err != nil {
		return nil, fmt.Errorf("failed to bind to exchange: %w", err)
	}

	qm := rabbitmq.NewQueueManager(ch)

	_, err := qm.DeclareQueue(DLQName, rabbitmq.QueueConfig{Durable: true})
	if err != nil {
		return nil, fmt.Errorf("failed to declare DLQ queue: %w", err)
	}

	retryArgs := map[string]interface{}{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": MainQueueName,
		"x-message-ttl":             int32(5000),
	}

	_, err = qm.DeclareQueue(RetryQueueName, rabbitmq.QueueConfig{
		Durable: true,
		Args:    retryArgs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare retry queue: %w", err)
	}

	mainArgs := map[string]interface{}{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": DLQName,
	}

	mainQ, err := qm.DeclareQueue(MainQueueName, rabbitmq.QueueConfig{
		Durable: true,
		Args:    mainArgs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare main queue: %w", err)
	}

	if err := ch.QueueBind(mainQ.Name, RoutingKey, exchange.Name(), false, nil); err != nil {
		return nil, fmt.Errorf("failed to bind the exchange to the main queue: %w", err)
	}

	pub := rabbitmq.NewPublisher(ch, exchange.Name())
	cons := rabbitmq.NewConsumer(ch, rabbitmq.NewConsumerConfig(mainQ.Name))

	return &TriggerQueue{Publisher: pub, Consumer: cons}, nil
}

// Publish enqueues one trigger message.
func (q *TriggerQueue) Publish(msg TriggerMessage, strategy retry.Strategy) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return q.Publisher.PublishWithRetry(body, RoutingKey, "application/json", strategy)
}

// Consume decodes trigger messages into out until the consumer stops.
func (q *TriggerQueue) Consume(out chan<- TriggerMessage, strategy retry.Strategy) error {
	msgChan := make(chan []byte)

	go func() {
		for m := range msgChan {
			var msg TriggerMessage
			if err := json.Unmarshal(m, &msg); err != nil {
				zlog.Logger.Error().Err(err).Msg("failed to unmarshal trigger message")
				continue
			}

			out <- msg
		}
	}()

	return q.Consumer.ConsumeWithRetry(msgChan, strategy)
}
