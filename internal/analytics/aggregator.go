// Package analytics computes engagement statistics over the append-only
// event log.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/faithbridge/notify/internal/model"
	"github.com/faithbridge/notify/internal/repository/delivery"
)

type eventSource interface {
	ListEvents(ctx context.Context, filter delivery.EventFilter) ([]model.EngagementEvent, error)
}

// Breakdown carries the counters and rates for one slice of the window.
type Breakdown struct {
	Sent             int     `json:"sent"`
	Clicks           int     `json:"clicks"`
	Dismissals       int     `json:"dismissals"`
	ClickThroughRate float64 `json:"click_through_rate"`
	EngagementRate   float64 `json:"engagement_rate"`
}

// Summary is the aggregate over one query window.
type Summary struct {
	TotalSent        int                  `json:"total_sent"`
	TotalClicks      int                  `json:"total_clicks"`
	TotalDismissals  int                  `json:"total_dismissals"`
	ClickThroughRate float64              `json:"click_through_rate"`
	EngagementRate   float64              `json:"engagement_rate"`
	ByCategory       map[string]Breakdown `json:"by_category"`
	ByDay            map[string]Breakdown `json:"by_day"`
}

// Aggregator answers analytics queries for the admin dashboard.
type Aggregator struct {
	events eventSource
}

func NewAggregator(events eventSource) *Aggregator {
	return &Aggregator{events: events}
}

// Summarize computes totals, click-through and engagement rates over
// [from, to), optionally narrowed to one recipient and/or category.
// Close and dismiss both count as dismissals. Rates over an empty
// window are 0, never NaN.
func (a *Aggregator) Summarize(ctx context.Context, recipientID string, category model.Category, from, to time.Time) (Summary, error) {
	events, err := a.events.ListEvents(ctx, delivery.EventFilter{
		RecipientID: recipientID,
		Category:    category,
		From:        from,
		To:          to,
	})
	if err != nil {
		return Summary{}, fmt.Errorf("list engagement events: %w", err)
	}

	summary := Summary{
		ByCategory: make(map[string]Breakdown),
		ByDay:      make(map[string]Breakdown),
	}

	for _, e := range events {
		day := e.CreatedAt.Format("2006-01-02")
		cat := string(e.Category)

		byCat := summary.ByCategory[cat]
		byDay := summary.ByDay[day]

		switch e.Action {
		case model.ActionSent:
			summary.TotalSent++
			byCat.Sent++
			byDay.Sent++
		case model.ActionClick:
			summary.TotalClicks++
			byCat.Clicks++
			byDay.Clicks++
		case model.ActionClose, model.ActionDismiss:
			summary.TotalDismissals++
			byCat.Dismissals++
			byDay.Dismissals++
		}

		summary.ByCategory[cat] = byCat
		summary.ByDay[day] = byDay
	}

	summary.ClickThroughRate = rate(summary.TotalClicks, summary.TotalSent)
	summary.EngagementRate = rate(summary.TotalClicks+summary.TotalDismissals, summary.TotalSent)

	for cat, b := range summary.ByCategory {
		b.ClickThroughRate = rate(b.Clicks, b.Sent)
		b.EngagementRate = rate(b.Clicks+b.Dismissals, b.Sent)
		summary.ByCategory[cat] = b
	}
	for day, b := range summary.ByDay {
		b.ClickThroughRate = rate(b.Clicks, b.Sent)
		b.EngagementRate = rate(b.Clicks+b.Dismissals, b.Sent)
		summary.ByDay[day] = b
	}

	return summary, nil
}

// rate divides with a zero guard: anything over zero sends is 0.
func rate(part, sent int) float64 {
	if sent == 0 {
		return 0
	}
	return float64(part) / float64(sent)
}
