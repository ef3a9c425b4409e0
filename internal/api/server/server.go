package server

import (
	"net/http"
	"time"

	"github.com/wb-go/wbf/ginext"
)

func New(addr string, router *ginext.Engine) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: router,
		// An upload batch runs its files through the vision model inside the
		// request, so reads and writes cannot be bounded by the usual short
		// timeouts.
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      0,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
