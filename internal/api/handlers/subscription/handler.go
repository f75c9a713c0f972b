package subscription

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/faithbridge/notify/internal/api/dto"
	"github.com/faithbridge/notify/internal/api/respond"
	"github.com/faithbridge/notify/internal/model"
)

type subscriptionService interface {
	Register(ctx context.Context, sub model.Subscription) (model.Subscription, error)
	Unregister(ctx context.Context, endpoint string) (bool, error)
}

type Handler struct {
	service   subscriptionService
	validator *validator.Validate
}

func NewHandler(s subscriptionService, v *validator.Validate) *Handler {
	return &Handler{service: s, validator: v}
}

// Subscribe registers a device endpoint. Upsert semantics: subscribing
// the same endpoint again overwrites the previous registration.
func (h *Handler) Subscribe(c *ginext.Context) {
	var req dto.SubscribeRequest

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

	sub := model.Subscription{
		Endpoint:    req.Endpoint,
		Keys:        model.Keys{P256dh: req.Keys.P256dh, Auth: req.Keys.Auth},
		RecipientID: req.RecipientID,
		UserAgent:   req.UserAgent,
		Preferences: req.Preferences,
	}

	registered, err := h.service.Register(c.Request.Context(), sub)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("recipient", req.RecipientID).Msg("failed to register subscription")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.Created(c.Writer, registered)
}

// Unsubscribe removes a subscription by endpoint. Idempotent: removing
// an unknown endpoint still succeeds.
func (h *Handler) Unsubscribe(c *ginext.Context) {
	var req dto.UnsubscribeRequest

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

	existed, err := h.service.Unregister(c.Request.Context(), req.Endpoint)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to unregister subscription")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.OK(c.Writer, map[string]bool{"existed": existed})
}
