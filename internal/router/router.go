package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"                   // import the Echo web framework to handle routing
	echomw "github.com/labstack/echo/v4/middleware" // body size limit

	"github.com/iliyamo/cinema-admission/internal/handler"    // handlers that implement the endpoints
	"github.com/iliyamo/cinema-admission/internal/middleware" // JWT authentication and role enforcement
)

// bodyLimit caps the request bodies of the evaluation and aggregation
// endpoints.
const bodyLimit = "1M"

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo, health *handler.HealthHandler) {
	// Load balancers and monitoring poll this endpoint.
	e.GET("/healthz", health.Health)
}

// RegisterAdmission registers the admission endpoints.  Evaluation is public;
// the audit trail under /v1/admission/checks requires an OPERATOR token.
func RegisterAdmission(e *echo.Echo, h *handler.AdmissionHandler, jwtSecret string) {
	e.POST("/v1/admission/evaluate", h.Evaluate, echomw.BodyLimit(bodyLimit))

	g := e.Group(
		"/v1/admission/checks",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleOperator),
	)
	g.GET("", h.ListChecks)
	g.GET("/:id", h.GetCheck)
}

// RegisterAccessLog registers the aggregation endpoint.  Any extra
// middleware (the response cache) is applied to this route only, after the
// body limit.
func RegisterAccessLog(e *echo.Echo, mw ...echo.MiddlewareFunc) {
	chain := append([]echo.MiddlewareFunc{echomw.BodyLimit(bodyLimit)}, mw...)
	e.POST("/v1/access-logs/aggregate", handler.AggregateAccessLog, chain...)
}
