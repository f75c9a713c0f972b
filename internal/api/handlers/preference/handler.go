package preference

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/faithbridge/notify/internal/api/respond"
	"github.com/faithbridge/notify/internal/model"
)

type preferenceService interface {
	Get(ctx context.Context, recipientID string) (model.Preferences, error)
	Update(ctx context.Context, recipientID string, update model.PreferencesUpdate) (model.Preferences, error)
}

type Handler struct {
	service preferenceService
}

func NewHandler(s preferenceService) *Handler {
	return &Handler{service: s}
}

// Get returns a recipient's preferences; recipients who never saved any
// get the default record.
func (h *Handler) Get(c *ginext.Context) {
	recipientID := c.Param("recipientID")
	if recipientID == "" {
		zlog.Logger.Warn().Msg("missing recipient id")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("missing recipient id"))
		return
	}

	prefs, err := h.service.Get(c.Request.Context(), recipientID)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("recipient", recipientID).Msg("failed to get preferences")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.OK(c.Writer, prefs)
}

// Update applies a partial preferences change. Fields absent from the
// request body are left untouched.
func (h *Handler) Update(c *ginext.Context) {
	recipientID := c.Param("recipientID")
	if recipientID == "" {
		zlog.Logger.Warn().Msg("missing recipient id")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("missing recipient id"))
		return
	}

	var update model.PreferencesUpdate
	if err := json.NewDecoder(c.Request.Body).Decode(&update); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	merged, err := h.service.Update(c.Request.Context(), recipientID, update)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("recipient", recipientID).Msg("failed to update preferences")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.OK(c.Writer, merged)
}
