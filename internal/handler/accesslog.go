package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-admission/internal/accesslog"
)

// Defaults used when an aggregation request leaves a field out.
const (
    defaultFrom = "1970-01-01"
    defaultTo   = "2100-12-31"
    defaultTZ   = "jst"
    defaultTop  = 5
)

type aggregateReq struct {
    Lines []string `json:"lines"`
    From  string   `json:"from"`
    To    string   `json:"to"`
    TZ    string   `json:"tz"`
    Top   *int     `json:"top"`
}

// AggregateAccessLog handles POST /v1/access-logs/aggregate.
func AggregateAccessLog(c echo.Context) error {
    var req aggregateReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    opt := accesslog.Options{From: req.From, To: req.To, TZ: req.TZ, Top: defaultTop}
    if opt.From == "" {
        opt.From = defaultFrom
    }
    if opt.To == "" {
        opt.To = defaultTo
    }
    if opt.TZ == "" {
        opt.TZ = defaultTZ
    }
    if req.Top != nil {
        opt.Top = *req.Top
    }

    entries, err := accesslog.Aggregate(req.Lines, opt)
    if err != nil {
        if errors.Is(err, accesslog.ErrInvalidOptions) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_options", "message": err.Error()})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "aggregation failed"})
    }
    return c.JSON(http.StatusOK, entries)
}
