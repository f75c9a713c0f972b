package engagement

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/faithbridge/notify/internal/api/dto"
	"github.com/faithbridge/notify/internal/api/respond"
	"github.com/faithbridge/notify/internal/model"
)

type eventLog interface {
	AppendEvent(ctx context.Context, event model.EngagementEvent) error
}

type Handler struct {
	log       eventLog
	validator *validator.Validate
}

func NewHandler(log eventLog, v *validator.Validate) *Handler {
	return &Handler{log: log, validator: v}
}

// Record appends one engagement event reported by the service worker
// (click, close or dismiss of a delivered notification).
func (h *Handler) Record(c *ginext.Context) {
	var req dto.EngagementRequest

	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to validate request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("validation error: %s", err.Error()))
		return
	}

	notificationID, err := uuid.Parse(req.NotificationID)
	if err != nil {
		zlog.Logger.Warn().Err(err).Str("notification_id", req.NotificationID).Msg("failed to parse notification id")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid notification id"))
		return
	}

	event := model.EngagementEvent{
		ID:             uuid.New(),
		RecipientID:    req.RecipientID,
		NotificationID: notificationID,
		Category:       model.Category(req.Category),
		Action:         req.Action,
		Metadata:       req.Metadata,
		CreatedAt:      time.Now(),
	}

	if err := h.log.AppendEvent(c.Request.Context(), event); err != nil {
		zlog.Logger.Error().Err(err).Str("recipient", req.RecipientID).Msg("failed to record engagement event")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.Created(c.Writer, event.ID)
}
