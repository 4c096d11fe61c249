package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health answers load balancer and uptime probes with a plain "ok". It
// touches no upstream, so a degraded record store or bot never fails it.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
