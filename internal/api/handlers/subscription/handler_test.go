package subscription

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/faithbridge/notify/internal/api/dto"
	mocks "github.com/faithbridge/notify/internal/mocks/api/handlers/subscription"
	"github.com/faithbridge/notify/internal/model"
)

func setupHandler(t *testing.T) (*Handler, *mocks.MocksubscriptionService) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMocksubscriptionService(ctrl)
	handler := NewHandler(mockService, validator.New())
	return handler, mockService
}

func TestHandler_Subscribe_Success(t *testing.T) {
	handler, mockService := setupHandler(t)

	reqBody := dto.SubscribeRequest{
		Endpoint:    "https://push.example/ep1",
		Keys:        dto.SubscriptionKeys{P256dh: "p", Auth: "a"},
		RecipientID: "u1",
		UserAgent:   "Mozilla/5.0",
	}

	bodyBytes, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/subscriptions", bytes.NewReader(bodyBytes))
	w := httptest.NewRecorder()

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	sub := model.Subscription{
		Endpoint:    reqBody.Endpoint,
		Keys:        model.Keys{P256dh: "p", Auth: "a"},
		RecipientID: "u1",
		UserAgent:   "Mozilla/5.0",
	}

	mockService.EXPECT().
		Register(gomock.Any(), sub).
		Return(sub, nil)

	handler.Subscribe(c)

	assert.Equal(t, http.StatusCreated, w.Result().StatusCode)
}

func TestHandler_Subscribe_MissingKeys(t *testing.T) {
	handler, _ := setupHandler(t)

	reqBody := dto.SubscribeRequest{
		Endpoint:    "https://push.example/ep1",
		RecipientID: "u1",
	}

	bodyBytes, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/subscriptions", bytes.NewReader(bodyBytes))
	w := httptest.NewRecorder()

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Subscribe(c)

	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}

func TestHandler_Subscribe_InvalidBody(t *testing.T) {
	handler, _ := setupHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/subscriptions", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Subscribe(c)

	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}

func TestHandler_Unsubscribe_Success(t *testing.T) {
	handler, mockService := setupHandler(t)

	reqBody := dto.UnsubscribeRequest{Endpoint: "https://push.example/ep1"}

	bodyBytes, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodDelete, "/subscriptions", bytes.NewReader(bodyBytes))
	w := httptest.NewRecorder()

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	mockService.EXPECT().
		Unregister(gomock.Any(), reqBody.Endpoint).
		Return(true, nil)

	handler.Unsubscribe(c)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
}
