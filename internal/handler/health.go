package handler // declare the package name; contains HTTP handlers

import (
    "context"  // bounds the database ping
    "net/http" // net/http provides status codes and response helpers
    "time"     // ping timeout

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
    PingContext(ctx context.Context) error
}

// HealthHandler answers load balancer health checks.  DB is optional.
type HealthHandler struct {
    DB Pinger
}

// Health returns "ok" with 200 when the service (and its database, if one is
// configured) is reachable, and "degraded" with 503 otherwise.
func (h *HealthHandler) Health(c echo.Context) error {
    if h.DB != nil {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()
        if err := h.DB.PingContext(ctx); err != nil {
            c.Logger().Warnf("health: database ping failed: %v", err)
            return c.String(http.StatusServiceUnavailable, "degraded")
        }
    }
    return c.String(http.StatusOK, "ok")
}
