// Package dispatch implements the notification dispatch engine: it
// resolves candidate endpoints for a target, gates them through the
// recipient's preferences, localizes the payload and fans deliveries
// out concurrently, recording every outcome.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/faithbridge/notify/internal/eligibility"
	"github.com/faithbridge/notify/internal/localize"
	"github.com/faithbridge/notify/internal/model"
	"github.com/faithbridge/notify/pkg/webpush"
)

// Validation errors returned before any dispatch work begins.
var (
	ErrInvalidPayload  = errors.New("payload must have a title and a body")
	ErrInvalidTarget   = errors.New("target must be a recipient id or an explicit broadcast")
	ErrInvalidCategory = errors.New("unknown notification category")
)

type subscriptionSource interface {
	ListFor(ctx context.Context, recipientID string) ([]model.Subscription, error)
	ListAll(ctx context.Context) ([]model.Subscription, error)
	Invalidate(ctx context.Context, endpoint string) error
}

type preferenceSource interface {
	Get(ctx context.Context, recipientID string) (model.Preferences, error)
}

type deliveryLog interface {
	AppendAttempt(ctx context.Context, attempt model.DeliveryAttempt) error
	AppendEvent(ctx context.Context, event model.EngagementEvent) error
	CountSentNotifications(ctx context.Context, recipientID string, since time.Time) (int, error)
}

type pushSender interface {
	Send(ctx context.Context, sub model.Subscription, body []byte) error
}

// Target selects the recipients of one dispatch cycle. Broadcast must
// be requested explicitly; it is never the default.
type Target struct {
	RecipientID string
	Broadcast   bool
}

// Result aggregates one dispatch cycle. Counts are exact regardless of
// delivery order.
type Result struct {
	NotificationID uuid.UUID               `json:"notification_id"`
	Sent           int                     `json:"sent"`
	Failed         int                     `json:"failed"`
	Skipped        int                     `json:"skipped"`
	Attempts       []model.DeliveryAttempt `json:"attempts"`
}

// Config tunes one engine instance.
type Config struct {
	Workers          int            // delivery concurrency bound
	SendTimeout      time.Duration  // per-endpoint wall-clock bound
	Location         *time.Location // recipient-local civil time for quiet hours
	FallbackLanguage string
}

// Engine is the dispatch core. All collaborators are injected so tests
// can substitute in-memory stores and a fake sender.
type Engine struct {
	subs   subscriptionSource
	prefs  preferenceSource
	log    deliveryLog
	sender pushSender
	cfg    Config
}

// NewEngine creates a dispatch engine.
func NewEngine(subs subscriptionSource, prefs preferenceSource, log deliveryLog, sender pushSender, cfg Config) *Engine {
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	return &Engine{subs: subs, prefs: prefs, log: log, sender: sender, cfg: cfg}
}

// deliveryJob is one localized payload bound for one endpoint.
type deliveryJob struct {
	sub  model.Subscription
	body []byte
}

// Dispatch runs one cycle: it delivers the payload to every eligible,
// currently registered endpoint of the target exactly once and records
// each outcome. Endpoint deliveries are independent: one endpoint's
// failure never blocks or alters another's.
//
// The daily cap is read once per recipient at cycle start, so two
// concurrent cycles for the same recipient can together overshoot
// maxPerDay; the log stays lock-free and the overshoot is bounded by
// the number of concurrent cycles.
func (e *Engine) Dispatch(ctx context.Context, target Target, category model.Category, payload model.Payload) (*Result, error) {
	if payload.Title == "" || payload.Body == "" {
		return nil, ErrInvalidPayload
	}
	if !category.Valid() {
		return nil, ErrInvalidCategory
	}
	if target.Broadcast == (target.RecipientID != "") {
		return nil, ErrInvalidTarget
	}

	var (
		subs []model.Subscription
		err  error
	)
	if target.Broadcast {
		subs, err = e.subs.ListAll(ctx)
	} else {
		subs, err = e.subs.ListFor(ctx, target.RecipientID)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve subscriptions: %w", err)
	}

	result := &Result{NotificationID: uuid.New()}
	if len(subs) == 0 {
		return result, nil
	}

	byRecipient := make(map[string][]model.Subscription)
	for _, sub := range subs {
		byRecipient[sub.RecipientID] = append(byRecipient[sub.RecipientID], sub)
	}

	now := time.Now().In(e.cfg.Location)
	capWindow := now.Add(-24 * time.Hour)

	var jobs []deliveryJob
	for recipientID, recipientSubs := range byRecipient {
		prefs, err := e.prefs.Get(ctx, recipientID)
		if err != nil {
			// One store hiccup must not abort the whole cycle: this
			// recipient's endpoints are recorded failed-transient and
			// processing continues.
			e.recordUnavailable(ctx, result, recipientSubs, category, fmt.Errorf("preferences unavailable: %w", err))
			continue
		}

		if !eligibility.IsEligible(prefs, category, now) {
			result.Skipped += len(recipientSubs)
			continue
		}

		if suppressed, ok := urgentOnlySuppressed(prefs, category, payload); ok && suppressed {
			result.Skipped += len(recipientSubs)
			continue
		}

		count, err := e.log.CountSentNotifications(ctx, recipientID, capWindow)
		if err != nil {
			e.recordUnavailable(ctx, result, recipientSubs, category, fmt.Errorf("delivery log unavailable: %w", err))
			continue
		}
		if count >= prefs.MaxPerDay {
			result.Skipped += len(recipientSubs)
			continue
		}

		localized := localize.Localize(payload, prefs, category, e.cfg.FallbackLanguage)
		body, err := json.Marshal(localized)
		if err != nil {
			e.recordUnavailable(ctx, result, recipientSubs, category, fmt.Errorf("encode payload: %w", err))
			continue
		}

		for _, sub := range recipientSubs {
			jobs = append(jobs, deliveryJob{sub: sub, body: body})
		}
	}

	e.fanOut(ctx, result, jobs, category)

	return result, nil
}

// fanOut delivers all jobs through a bounded worker pool and joins on
// completion before returning.
func (e *Engine) fanOut(ctx context.Context, result *Result, jobs []deliveryJob, category model.Category) {
	if len(jobs) == 0 {
		return
	}

	workers := e.cfg.Workers
	if workers > len(jobs) {
		workers = len(jobs)
	}

	jobChan := make(chan deliveryJob)
	attempts := make(chan model.DeliveryAttempt)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for job := range jobChan {
				attempts <- e.deliver(ctx, result.NotificationID, category, job)
			}
		}()
	}

	go func() {
		for _, job := range jobs {
			jobChan <- job
		}
		close(jobChan)
	}()

	go func() {
		wg.Wait()
		close(attempts)
	}()

	for attempt := range attempts {
		if attempt.Status == model.StatusSent {
			result.Sent++
		} else {
			result.Failed++
		}
		result.Attempts = append(result.Attempts, attempt)
	}
}

// deliver sends to one endpoint, classifies the outcome and records it.
func (e *Engine) deliver(ctx context.Context, notificationID uuid.UUID, category model.Category, job deliveryJob) model.DeliveryAttempt {
	sendCtx, cancel := context.WithTimeout(ctx, e.cfg.SendTimeout)
	defer cancel()

	attempt := model.DeliveryAttempt{
		ID:             uuid.New(),
		NotificationID: notificationID,
		Endpoint:       job.sub.Endpoint,
		RecipientID:    job.sub.RecipientID,
		Category:       category,
		CreatedAt:      time.Now(),
	}

	err := e.sender.Send(sendCtx, job.sub, job.body)
	switch {
	case err == nil:
		attempt.Status = model.StatusSent
	case errors.Is(err, webpush.ErrEndpointGone):
		attempt.Status = model.StatusFailedPermanent
		attempt.ErrorDetail = err.Error()

		if invErr := e.subs.Invalidate(ctx, job.sub.Endpoint); invErr != nil {
			zlog.Logger.Error().Err(invErr).Str("endpoint", job.sub.Endpoint).Msg("failed to invalidate dead endpoint")
		}
	default:
		attempt.Status = model.StatusFailedTransient
		attempt.ErrorDetail = err.Error()
	}

	e.record(ctx, attempt)

	return attempt
}

// record appends the attempt and, when it succeeded, the matching sent
// engagement event. Log errors are contained here: the aggregate result
// stays exact even when a record write fails.
func (e *Engine) record(ctx context.Context, attempt model.DeliveryAttempt) {
	if err := e.log.AppendAttempt(ctx, attempt); err != nil {
		zlog.Logger.Error().Err(err).Str("endpoint", attempt.Endpoint).Msg("failed to append delivery attempt")
	}

	if attempt.Status != model.StatusSent {
		return
	}

	event := model.EngagementEvent{
		ID:             uuid.New(),
		RecipientID:    attempt.RecipientID,
		NotificationID: attempt.NotificationID,
		Category:       attempt.Category,
		Action:         model.ActionSent,
		CreatedAt:      attempt.CreatedAt,
	}
	if err := e.log.AppendEvent(ctx, event); err != nil {
		zlog.Logger.Error().Err(err).Str("recipient", attempt.RecipientID).Msg("failed to append sent event")
	}
}

// recordUnavailable marks every endpoint of one recipient as a
// transient failure without attempting delivery.
func (e *Engine) recordUnavailable(ctx context.Context, result *Result, subs []model.Subscription, category model.Category, cause error) {
	zlog.Logger.Warn().Err(cause).Str("recipient", subs[0].RecipientID).Msg("skipping delivery, store unavailable")

	for _, sub := range subs {
		attempt := model.DeliveryAttempt{
			ID:             uuid.New(),
			NotificationID: result.NotificationID,
			Endpoint:       sub.Endpoint,
			RecipientID:    sub.RecipientID,
			Category:       category,
			Status:         model.StatusFailedTransient,
			ErrorDetail:    cause.Error(),
			CreatedAt:      time.Now(),
		}

		if err := e.log.AppendAttempt(ctx, attempt); err != nil {
			zlog.Logger.Error().Err(err).Str("endpoint", sub.Endpoint).Msg("failed to append delivery attempt")
		}

		result.Failed++
		result.Attempts = append(result.Attempts, attempt)
	}
}

// urgentOnlySuppressed applies the prayers urgent-only filter: when the
// recipient opted into urgent prayer alerts only, a non-urgent prayer
// payload is skipped. The ok result is false for other categories.
func urgentOnlySuppressed(prefs model.Preferences, category model.Category, payload model.Payload) (suppressed, ok bool) {
	if category != model.CategoryPrayer || !prefs.Prayers.UrgentOnly {
		return false, false
	}
	return payload.Data["urgent"] != "true", true
}
