package router

import (
	"github.com/wb-go/wbf/ginext"

	"github.com/faithbridge/notify/internal/api/handlers/analytics"
	"github.com/faithbridge/notify/internal/api/handlers/dispatch"
	"github.com/faithbridge/notify/internal/api/handlers/engagement"
	"github.com/faithbridge/notify/internal/api/handlers/preference"
	"github.com/faithbridge/notify/internal/api/handlers/subscription"
)

type Handlers struct {
	Subscription *subscription.Handler
	Preference   *preference.Handler
	Dispatch     *dispatch.Handler
	Engagement   *engagement.Handler
	Analytics    *analytics.Handler
}

func New(h Handlers) *ginext.Engine {
	e := ginext.New()
	e.Use(ginext.Logger())
	e.Use(ginext.Recovery())

	api := e.Group("/api")

	api.POST("/subscriptions", h.Subscription.Subscribe)
	api.DELETE("/subscriptions", h.Subscription.Unsubscribe)

	api.GET("/preferences/:recipientID", h.Preference.Get)
	api.PATCH("/preferences/:recipientID", h.Preference.Update)

	api.POST("/dispatch", h.Dispatch.Dispatch)
	api.POST("/engagement", h.Engagement.Record)

	api.GET("/analytics/summary", h.Analytics.Summary)

	return e
}
