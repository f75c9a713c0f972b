package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"

	"github.com/faithbridge/notify/internal/model"
	"github.com/faithbridge/notify/internal/repository/inmemory"
	preferencesvc "github.com/faithbridge/notify/internal/service/preference"
	"github.com/faithbridge/notify/pkg/webpush"
)

// fakeSender records delivered bodies and fails per-endpoint on demand.
type fakeSender struct {
	mu     sync.Mutex
	errFor map[string]error // endpoint -> error
	bodies map[string][]byte
}

func newFakeSender() *fakeSender {
	return &fakeSender{
		errFor: make(map[string]error),
		bodies: make(map[string][]byte),
	}
}

func (f *fakeSender) Send(_ context.Context, sub model.Subscription, body []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.errFor[sub.Endpoint]; ok {
		return err
	}

	f.bodies[sub.Endpoint] = append([]byte(nil), body...)
	return nil
}

type fixture struct {
	subs   *inmemory.SubscriptionStore
	prefs  *inmemory.PreferenceStore
	log    *inmemory.DeliveryLog
	sender *fakeSender
	engine *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		subs:   inmemory.NewSubscriptionStore(),
		prefs:  inmemory.NewPreferenceStore(),
		log:    inmemory.NewDeliveryLog(),
		sender: newFakeSender(),
	}

	prefSource := preferencesvc.NewService(f.prefs, nil, retry.Strategy{})
	f.engine = NewEngine(f.subs, prefSource, f.log, f.sender, Config{
		Workers:     4,
		SendTimeout: time.Second,
		Location:    time.UTC,
	})

	return f
}

func (f *fixture) addSubscription(t *testing.T, recipientID, endpoint string) {
	t.Helper()

	_, err := f.subs.Register(context.Background(), model.Subscription{
		Endpoint:    endpoint,
		Keys:        model.Keys{P256dh: "p", Auth: "a"},
		RecipientID: recipientID,
	})
	require.NoError(t, err)
}

// openPrefs stores preferences with quiet hours off so tests are not
// sensitive to the wall clock.
func (f *fixture) openPrefs(t *testing.T, recipientID string, mutate func(*model.Preferences)) {
	t.Helper()

	p := model.DefaultPreferences()
	p.QuietHours.Enabled = false
	if mutate != nil {
		mutate(&p)
	}
	require.NoError(t, f.prefs.Upsert(context.Background(), recipientID, p))
}

func TestDispatch_ValidationErrors(t *testing.T) {
	f := newFixture(t)
	payload := model.Payload{Title: "T", Body: "B"}

	_, err := f.engine.Dispatch(context.Background(), Target{RecipientID: "u1"}, model.CategoryDevotion, model.Payload{Title: "T"})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = f.engine.Dispatch(context.Background(), Target{}, model.CategoryDevotion, payload)
	assert.ErrorIs(t, err, ErrInvalidTarget)

	_, err = f.engine.Dispatch(context.Background(), Target{RecipientID: "u1", Broadcast: true}, model.CategoryDevotion, payload)
	assert.ErrorIs(t, err, ErrInvalidTarget)

	_, err = f.engine.Dispatch(context.Background(), Target{RecipientID: "u1"}, model.Category("bogus"), payload)
	assert.ErrorIs(t, err, ErrInvalidCategory)

	// no side effects before validation passes
	assert.Empty(t, f.log.Attempts())
}

func TestDispatch_SingleRecipientLocalized(t *testing.T) {
	f := newFixture(t)
	f.addSubscription(t, "u1", "https://push.example/ep1")
	f.openPrefs(t, "u1", func(p *model.Preferences) {
		p.Devotions.Language = "zh"
	})

	result, err := f.engine.Dispatch(
		context.Background(),
		Target{RecipientID: "u1"},
		model.CategoryDevotion,
		model.Payload{Title: "T", Body: "B"},
	)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 0, result.Failed)
	require.Len(t, result.Attempts, 1)
	assert.Equal(t, model.StatusSent, result.Attempts[0].Status)

	var delivered model.Payload
	require.NoError(t, json.Unmarshal(f.sender.bodies["https://push.example/ep1"], &delivered))
	assert.Equal(t, "T", delivered.Title)
	assert.Equal(t, "zh", delivered.Data["language"])

	// one attempt and one sent event recorded
	attempts := f.log.Attempts()
	require.Len(t, attempts, 1)
	assert.Equal(t, result.NotificationID, attempts[0].NotificationID)

	events := f.log.Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.ActionSent, events[0].Action)
}

func TestDispatch_GloballyDisabledRecipientGetsNothing(t *testing.T) {
	f := newFixture(t)
	f.addSubscription(t, "u1", "https://push.example/ep1")
	f.openPrefs(t, "u1", func(p *model.Preferences) {
		p.Enabled = false
	})

	for _, c := range []model.Category{
		model.CategoryDevotion, model.CategoryPrayer, model.CategoryEvent,
		model.CategoryCommunity, model.CategoryReminder,
	} {
		result, err := f.engine.Dispatch(
			context.Background(), Target{RecipientID: "u1"}, c, model.Payload{Title: "T", Body: "B"},
		)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Sent, "category %s", c)
		assert.Equal(t, 1, result.Skipped, "category %s", c)
	}

	for _, a := range f.log.Attempts() {
		assert.NotEqual(t, model.StatusSent, a.Status)
	}
}

func TestDispatch_FullDayQuietWindowSkips(t *testing.T) {
	f := newFixture(t)
	f.addSubscription(t, "u1", "https://push.example/ep1")
	f.openPrefs(t, "u1", func(p *model.Preferences) {
		// equal bounds cover the whole day, so this skips at any wall time
		p.QuietHours = model.QuietHours{Enabled: true, Start: "08:00", End: "08:00"}
	})

	result, err := f.engine.Dispatch(
		context.Background(), Target{RecipientID: "u1"}, model.CategoryDevotion, model.Payload{Title: "T", Body: "B"},
	)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Sent)
	assert.Equal(t, 1, result.Skipped)
}

func TestDispatch_DailyCap(t *testing.T) {
	f := newFixture(t)
	f.addSubscription(t, "u1", "https://push.example/ep1")
	f.openPrefs(t, "u1", func(p *model.Preferences) {
		p.MaxPerDay = 3
	})

	seed := func(age time.Duration) {
		require.NoError(t, f.log.AppendAttempt(context.Background(), model.DeliveryAttempt{
			ID:             uuid.New(),
			NotificationID: uuid.New(),
			Endpoint:       "https://push.example/ep1",
			RecipientID:    "u1",
			Category:       model.CategoryDevotion,
			Status:         model.StatusSent,
			CreatedAt:      time.Now().Add(-age),
		}))
	}

	seed(1 * time.Hour)
	seed(2 * time.Hour)
	seed(3 * time.Hour)

	result, err := f.engine.Dispatch(
		context.Background(), Target{RecipientID: "u1"}, model.CategoryDevotion, model.Payload{Title: "T", Body: "B"},
	)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Sent)
	assert.Equal(t, 1, result.Skipped)
}

func TestDispatch_DailyCapAgesOut(t *testing.T) {
	f := newFixture(t)
	f.addSubscription(t, "u1", "https://push.example/ep1")
	f.openPrefs(t, "u1", func(p *model.Preferences) {
		p.MaxPerDay = 3
	})

	ages := []time.Duration{25 * time.Hour, 2 * time.Hour, 3 * time.Hour}
	for _, age := range ages {
		require.NoError(t, f.log.AppendAttempt(context.Background(), model.DeliveryAttempt{
			ID:             uuid.New(),
			NotificationID: uuid.New(),
			RecipientID:    "u1",
			Status:         model.StatusSent,
			CreatedAt:      time.Now().Add(-age),
		}))
	}

	// only two sent notifications remain inside the trailing 24 hours
	result, err := f.engine.Dispatch(
		context.Background(), Target{RecipientID: "u1"}, model.CategoryDevotion, model.Payload{Title: "T", Body: "B"},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
}

func TestDispatch_DailyCapIsPerRecipientNotPerEndpoint(t *testing.T) {
	f := newFixture(t)
	f.addSubscription(t, "u1", "https://push.example/ep1")
	f.addSubscription(t, "u1", "https://push.example/ep2")
	f.addSubscription(t, "u1", "https://push.example/ep3")
	f.openPrefs(t, "u1", func(p *model.Preferences) {
		p.MaxPerDay = 2
	})

	// first cycle reaches all three devices but consumes one cap unit
	result, err := f.engine.Dispatch(
		context.Background(), Target{RecipientID: "u1"}, model.CategoryDevotion, model.Payload{Title: "T", Body: "B"},
	)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Sent)

	result, err = f.engine.Dispatch(
		context.Background(), Target{RecipientID: "u1"}, model.CategoryDevotion, model.Payload{Title: "T", Body: "B"},
	)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Sent)

	// cap reached: third cycle delivers nothing
	result, err = f.engine.Dispatch(
		context.Background(), Target{RecipientID: "u1"}, model.CategoryDevotion, model.Payload{Title: "T", Body: "B"},
	)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Sent)
	assert.Equal(t, 3, result.Skipped)
}

func TestDispatch_PermanentFailureInvalidatesEndpoint(t *testing.T) {
	f := newFixture(t)
	f.addSubscription(t, "u1", "https://push.example/dead")
	f.addSubscription(t, "u1", "https://push.example/alive")
	f.openPrefs(t, "u1", nil)

	f.sender.errFor["https://push.example/dead"] = fmt.Errorf("410: %w", webpush.ErrEndpointGone)

	result, err := f.engine.Dispatch(
		context.Background(), Target{RecipientID: "u1"}, model.CategoryEvent, model.Payload{Title: "T", Body: "B"},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, result.Failed)

	subs, err := f.subs.ListFor(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "https://push.example/alive", subs[0].Endpoint)
}

func TestDispatch_TransientFailureKeepsSubscription(t *testing.T) {
	f := newFixture(t)
	f.addSubscription(t, "u1", "https://push.example/flaky")
	f.openPrefs(t, "u1", nil)

	f.sender.errFor["https://push.example/flaky"] = errors.New("push service error: 503 Service Unavailable")

	result, err := f.engine.Dispatch(
		context.Background(), Target{RecipientID: "u1"}, model.CategoryEvent, model.Payload{Title: "T", Body: "B"},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)

	require.Len(t, result.Attempts, 1)
	assert.Equal(t, model.StatusFailedTransient, result.Attempts[0].Status)

	subs, err := f.subs.ListFor(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestDispatch_Broadcast(t *testing.T) {
	f := newFixture(t)

	gone := fmt.Errorf("410: %w", webpush.ErrEndpointGone)
	transient := errors.New("push service error: 502 Bad Gateway")

	for i := 0; i < 500; i++ {
		recipient := fmt.Sprintf("u%03d", i)
		endpoint := fmt.Sprintf("https://push.example/ep%03d", i)
		f.addSubscription(t, recipient, endpoint)
		f.openPrefs(t, recipient, nil)

		switch {
		case i < 10:
			f.sender.errFor[endpoint] = gone
		case i < 15:
			f.sender.errFor[endpoint] = transient
		}
	}

	result, err := f.engine.Dispatch(
		context.Background(), Target{Broadcast: true}, model.CategoryCommunity, model.Payload{Title: "T", Body: "B"},
	)
	require.NoError(t, err)

	assert.Equal(t, 485, result.Sent)
	assert.Equal(t, 15, result.Failed)
	assert.Len(t, result.Attempts, 500)

	// the 10 permanently failed endpoints are gone from the registry
	assert.Equal(t, 490, f.subs.Len())
}

func TestDispatch_PreferenceStoreFailureIsContained(t *testing.T) {
	f := newFixture(t)
	f.addSubscription(t, "u1", "https://push.example/ep1")
	f.addSubscription(t, "u2", "https://push.example/ep2")
	f.openPrefs(t, "u2", nil)

	// u1's preference reads fail, u2's succeed
	prefSource := &selectivePrefs{
		inner: preferencesvc.NewService(f.prefs, nil, retry.Strategy{}),
		fail:  map[string]bool{"u1": true},
	}
	engine := NewEngine(f.subs, prefSource, f.log, f.sender, Config{
		Workers: 2, SendTimeout: time.Second, Location: time.UTC,
	})

	result, err := engine.Dispatch(
		context.Background(), Target{Broadcast: true}, model.CategoryCommunity, model.Payload{Title: "T", Body: "B"},
	)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, result.Failed)

	var statuses []string
	for _, a := range result.Attempts {
		if a.RecipientID == "u1" {
			statuses = append(statuses, a.Status)
		}
	}
	assert.Equal(t, []string{model.StatusFailedTransient}, statuses)
}

type selectivePrefs struct {
	inner *preferencesvc.Service
	fail  map[string]bool
}

func (s *selectivePrefs) Get(ctx context.Context, recipientID string) (model.Preferences, error) {
	if s.fail[recipientID] {
		return model.Preferences{}, errors.New("store down")
	}
	return s.inner.Get(ctx, recipientID)
}

func TestDispatch_UrgentOnlyPrayerFilter(t *testing.T) {
	f := newFixture(t)
	f.addSubscription(t, "u1", "https://push.example/ep1")
	f.openPrefs(t, "u1", func(p *model.Preferences) {
		p.Prayers.UrgentOnly = true
	})

	result, err := f.engine.Dispatch(
		context.Background(), Target{RecipientID: "u1"}, model.CategoryPrayer, model.Payload{Title: "T", Body: "B"},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)

	result, err = f.engine.Dispatch(
		context.Background(), Target{RecipientID: "u1"}, model.CategoryPrayer,
		model.Payload{Title: "T", Body: "B", Data: map[string]string{"urgent": "true"}},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
}

func TestDispatch_NoSubscriptions(t *testing.T) {
	f := newFixture(t)

	result, err := f.engine.Dispatch(
		context.Background(), Target{RecipientID: "nobody"}, model.CategoryDevotion, model.Payload{Title: "T", Body: "B"},
	)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Sent)
	assert.Equal(t, 0, result.Failed)
	assert.Empty(t, result.Attempts)
}
