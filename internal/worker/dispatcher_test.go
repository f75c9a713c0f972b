package worker

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"

	"github.com/faithbridge/notify/internal/dispatch"
	mocks "github.com/faithbridge/notify/internal/mocks/worker"
	"github.com/faithbridge/notify/internal/model"
	"github.com/faithbridge/notify/internal/rabbitmq/queue"
)

func TestDispatcher_Run_HandlesTrigger(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockQueue := mocks.NewMocktriggerQueue(ctrl)
	mockEngine := mocks.NewMockdispatcher(ctrl)

	d := NewDispatcher(mockQueue, mockEngine)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	strategy := retry.Strategy{Attempts: 1, Delay: time.Millisecond}

	msg := queue.TriggerMessage{
		RecipientID: "u1",
		Category:    model.CategoryDevotion,
		Payload:     model.Payload{Title: "T", Body: "B"},
	}

	mockQueue.EXPECT().Consume(gomock.Any(), strategy).DoAndReturn(
		func(out chan<- queue.TriggerMessage, _ retry.Strategy) error {
			out <- msg
			return nil
		},
	)

	mockEngine.EXPECT().
		Dispatch(gomock.Any(), dispatch.Target{RecipientID: "u1"}, model.CategoryDevotion, msg.Payload).
		Return(&dispatch.Result{NotificationID: uuid.New(), Sent: 1}, nil)

	go d.Run(ctx, strategy, 1)

	time.Sleep(50 * time.Millisecond)
	cancel()
	time.Sleep(50 * time.Millisecond)
}

func TestDispatcher_Run_RejectedDispatchDoesNotStopWorker(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockQueue := mocks.NewMocktriggerQueue(ctrl)
	mockEngine := mocks.NewMockdispatcher(ctrl)

	d := NewDispatcher(mockQueue, mockEngine)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	strategy := retry.Strategy{Attempts: 1, Delay: time.Millisecond}

	bad := queue.TriggerMessage{Category: model.CategoryDevotion, Payload: model.Payload{Title: "T", Body: "B"}}
	good := queue.TriggerMessage{RecipientID: "u1", Category: model.CategoryDevotion, Payload: model.Payload{Title: "T", Body: "B"}}

	mockQueue.EXPECT().Consume(gomock.Any(), strategy).DoAndReturn(
		func(out chan<- queue.TriggerMessage, _ retry.Strategy) error {
			out <- bad
			out <- good
			return nil
		},
	)

	mockEngine.EXPECT().
		Dispatch(gomock.Any(), dispatch.Target{}, model.CategoryDevotion, bad.Payload).
		Return(nil, dispatch.ErrInvalidTarget)
	mockEngine.EXPECT().
		Dispatch(gomock.Any(), dispatch.Target{RecipientID: "u1"}, model.CategoryDevotion, good.Payload).
		Return(&dispatch.Result{NotificationID: uuid.New(), Sent: 1}, nil)

	go d.Run(ctx, strategy, 1)

	time.Sleep(50 * time.Millisecond)
	cancel()
	time.Sleep(50 * time.Millisecond)
}
