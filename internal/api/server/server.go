// Package server builds the HTTP server serving the notification API.
package server

import (
	"net/http"

	"github.com/wb-go/wbf/ginext"
)

// New returns an http.Server bound to addr with the API router attached.
func New(addr string, router *ginext.Engine) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: router,
	}
}
