package analytics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/faithbridge/notify/internal/analytics"
	"github.com/faithbridge/notify/internal/api/respond"
	"github.com/faithbridge/notify/internal/model"
)

type summarizer interface {
	Summarize(ctx context.Context, recipientID string, category model.Category, from, to time.Time) (analytics.Summary, error)
}

type Handler struct {
	aggregator summarizer
}

func NewHandler(aggregator summarizer) *Handler {
	return &Handler{aggregator: aggregator}
}

// Summary answers an analytics query over the last N days (default 30),
// optionally filtered by recipient and category.
func (h *Handler) Summary(c *ginext.Context) {
	days := 30
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			zlog.Logger.Warn().Str("days", raw).Msg("invalid days parameter")
			respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid days parameter"))
			return
		}
		days = parsed
	}

	category := model.Category(c.Query("category"))
	if category != "" && !category.Valid() {
		zlog.Logger.Warn().Str("category", string(category)).Msg("invalid category parameter")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid category parameter"))
		return
	}

	to := time.Now()
	from := to.AddDate(0, 0, -days)

	summary, err := h.aggregator.Summarize(c.Request.Context(), c.Query("recipient_id"), category, from, to)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to summarize engagement")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.OK(c.Writer, summary)
}
