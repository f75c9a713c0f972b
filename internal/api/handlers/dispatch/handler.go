package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/faithbridge/notify/internal/api/dto"
	"github.com/faithbridge/notify/internal/api/respond"
	"github.com/faithbridge/notify/internal/dispatch"
	"github.com/faithbridge/notify/internal/model"
)

type dispatcher interface {
	Dispatch(ctx context.Context, target dispatch.Target, category model.Category, payload model.Payload) (*dispatch.Result, error)
}

type Handler struct {
	engine    dispatcher
	validator *validator.Validate
}

func NewHandler(engine dispatcher, v *validator.Validate) *Handler {
	return &Handler{engine: engine, validator: v}
}

// Dispatch runs one dispatch cycle for the requested target. Validation
// failures reject the request before any delivery work begins.
func (h *Handler) Dispatch(c *ginext.Context) {
	var req dto.DispatchRequest

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

	target := dispatch.Target{RecipientID: req.RecipientID, Broadcast: req.Broadcast}

	result, err := h.engine.Dispatch(c.Request.Context(), target, model.Category(req.Category), req.Payload)
	if err != nil {
		if errors.Is(err, dispatch.ErrInvalidPayload) ||
			errors.Is(err, dispatch.ErrInvalidTarget) ||
			errors.Is(err, dispatch.ErrInvalidCategory) {
			zlog.Logger.Warn().Err(err).Msg("dispatch request rejected")
			respond.Fail(c.Writer, http.StatusBadRequest, err)
			return
		}

		zlog.Logger.Error().Err(err).Str("category", req.Category).Msg("dispatch cycle failed")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.OK(c.Writer, result)
}
