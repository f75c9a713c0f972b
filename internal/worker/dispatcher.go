package worker

import (
	"context"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/faithbridge/notify/internal/dispatch"
	"github.com/faithbridge/notify/internal/model"
	"github.com/faithbridge/notify/internal/rabbitmq/queue"
)

type triggerQueue interface {
	Consume(out chan<- queue.TriggerMessage, strategy retry.Strategy) error
}

type dispatcher interface {
	Dispatch(ctx context.Context, target dispatch.Target, category model.Category, payload model.Payload) (*dispatch.Result, error)
}

// Dispatcher consumes trigger messages and runs one dispatch cycle per
// message through a pool of workers.
type Dispatcher struct {
	queue  triggerQueue
	engine dispatcher
}

func NewDispatcher(q triggerQueue, engine dispatcher) *Dispatcher {
	return &Dispatcher{queue: q, engine: engine}
}

// Run consumes trigger messages until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context, strategy retry.Strategy, workerCount int) {
	msgChan := make(chan queue.TriggerMessage)

	go func() {
		if err := d.queue.Consume(msgChan, strategy); err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to consume trigger messages")
		}
	}()

	for i := 0; i < workerCount; i++ {
		go func(id int) {
			zlog.Logger.Printf("dispatch worker-%d started", id)

			for {
				select {
				case <-ctx.Done():
					zlog.Logger.Printf("dispatch worker-%d shutting down", id)
					return
				case msg := <-msgChan:
					target := dispatch.Target{RecipientID: msg.RecipientID, Broadcast: msg.Broadcast}

					result, err := d.engine.Dispatch(ctx, target, msg.Category, msg.Payload)
					if err != nil {
						zlog.Logger.Error().Err(err).Str("category", string(msg.Category)).Msg("dispatch cycle rejected")
						continue
					}

					zlog.Logger.Info().
						Str("notification_id", result.NotificationID.String()).
						Str("category", string(msg.Category)).
						Int("sent", result.Sent).
						Int("failed", result.Failed).
						Int("skipped", result.Skipped).
						Msg("dispatch cycle finished")
				}
			}
		}(i)
	}

	<-ctx.Done()
	zlog.Logger.Print("dispatcher stopped")
}
