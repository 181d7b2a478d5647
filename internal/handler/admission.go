package handler

import (
    "context"       // bounds store and broker calls
    "encoding/json" // decoding {"lines": [...]} bodies
    "errors"        // errors.Is for sentinel comparisons
    "io"            // reading raw request bodies
    "net/http"      // HTTP status codes
    "strconv"       // parsing path and query parameters
    "strings"       // joining JSON lines
    "time"          // timestamps and timeouts

    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/iliyamo/cinema-admission/internal/admission"  // rule engine
    "github.com/iliyamo/cinema-admission/internal/model"      // audit record
    "github.com/iliyamo/cinema-admission/internal/queue"      // event payloads
    "github.com/iliyamo/cinema-admission/internal/repository" // sentinel errors
)

const maxInputBytes = 1 << 20

// CheckStore persists evaluated batches.  *repository.AdmissionRepo
// implements it.
type CheckStore interface {
    Create(ctx context.Context, c *model.AdmissionCheck) error
    GetByID(ctx context.Context, id uint64) (*model.AdmissionCheck, error)
    List(ctx context.Context, limit, offset int) ([]model.AdmissionCheck, error)
}

// PublishFunc sends an event to the broker.
type PublishFunc func(ctx context.Context, ev queue.AdmissionEvaluatedEvent) error

// AdmissionHandler exposes the admission engine over HTTP.  Store and
// Publish are optional; without them evaluations are neither audited nor
// announced.
type AdmissionHandler struct {
    Store         CheckStore
    Publish       PublishFunc
    DefaultLocale string
}

// NewAdmissionHandler wires the handler.  Pass a nil store when persistence
// is disabled.
func NewAdmissionHandler(store CheckStore, publish PublishFunc, defaultLocale string) *AdmissionHandler {
    return &AdmissionHandler{Store: store, Publish: publish, DefaultLocale: defaultLocale}
}

type evaluateReq struct {
    Lines []string `json:"lines"`
}

type ticketResult struct {
    Line     int                `json:"line"`
    Seat     string             `json:"seat"`
    Age      admission.Age      `json:"age"`
    Price    int                `json:"price"`
    Admitted bool               `json:"admitted"`
    Reasons  []admission.Reason `json:"reasons,omitempty"`
}

// Evaluate handles POST /v1/admission/evaluate.  The body is either raw
// text (one request per line) or JSON {"lines": [...]}.  ?locale= picks the
// message catalog.  Bodies over 1 MiB are refused with 413.  A malformed
// batch yields 400 with the localized invalid-input token and the number of
// the first bad line.
func (h *AdmissionHandler) Evaluate(c echo.Context) error {
    input, err := readInput(c)
    if errors.Is(err, errBodyTooLarge) {
        return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "request body too large"})
    }
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    locale := c.QueryParam("locale")
    if locale == "" {
        locale = h.DefaultLocale
    }
    catalog := admission.CatalogFor(locale)
    check := &model.AdmissionCheck{Input: input, Locale: catalog.Name}

    tickets, err := admission.ParseLines(input)
    if err != nil {
        c.Logger().Debugf("admission: rejected batch: %v", err)
        check.Output = catalog.Invalid
        h.record(c, check, nil)
        resp := echo.Map{"error": "invalid_input", "output": catalog.Invalid}
        var le *admission.LineError
        if errors.As(err, &le) {
            resp["line"] = le.Line
        }
        return c.JSON(http.StatusBadRequest, resp)
    }

    outcome := admission.Evaluate(tickets)
    check.Valid = true
    check.Admitted = outcome.Admitted()
    check.Output = outcome.Render(catalog)
    check.TicketCount = uint32(len(tickets))
    check.RejectedCount = uint32(outcome.Rejected())
    h.record(c, check, tickets)

    results := make([]ticketResult, 0, len(outcome.Results))
    for i, r := range outcome.Results {
        results = append(results, ticketResult{
            Line:     i + 1,
            Seat:     r.Ticket.Seat(),
            Age:      r.Ticket.Age,
            Price:    r.Price,
            Admitted: r.Admitted(),
            Reasons:  r.Reasons,
        })
    }
    resp := echo.Map{
        "output":   check.Output,
        "admitted": check.Admitted,
        "results":  results,
    }
    if check.ID != 0 {
        resp["check_id"] = check.ID
    }
    return c.JSON(http.StatusOK, resp)
}

// record stores the check and announces it.  Failures are logged and never
// change the response.
func (h *AdmissionHandler) record(c echo.Context, check *model.AdmissionCheck, tickets []admission.Ticket) {
    if h.Store != nil {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
        if err := h.Store.Create(ctx, check); err != nil {
            c.Logger().Errorf("admission: store check failed: %v", err)
        }
        cancel()
    }
    if h.Publish == nil {
        return
    }
    seats := make([]string, 0, len(tickets))
    for _, t := range tickets {
        seats = append(seats, t.Seat())
    }
    ev := queue.AdmissionEvaluatedEvent{
        CheckID:       check.ID,
        Valid:         check.Valid,
        Admitted:      check.Admitted,
        TicketCount:   int(check.TicketCount),
        RejectedCount: int(check.RejectedCount),
        Seats:         seats,
        Locale:        check.Locale,
        Output:        check.Output,
        EvaluatedAt:   time.Now().UTC().Format(time.RFC3339),
    }
    logger := c.Logger()
    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        if err := h.Publish(ctx, ev); err != nil {
            logger.Warnf("admission: publish event failed: %v", err)
        }
    }()
}

// errBodyTooLarge marks a request body over maxInputBytes.  A truncated
// batch would change the set facts, so it is refused instead of evaluated.
var errBodyTooLarge = errors.New("request body too large")

// readInput returns the batch text of a raw or JSON body.  Both forms share
// the maxInputBytes limit.
func readInput(c echo.Context) (string, error) {
    req := c.Request()
    if req.Body == nil {
        return "", nil
    }
    raw, err := io.ReadAll(io.LimitReader(req.Body, maxInputBytes+1))
    if err != nil {
        var he *echo.HTTPError
        if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge {
            return "", errBodyTooLarge
        }
        return "", err
    }
    if len(raw) > maxInputBytes {
        return "", errBodyTooLarge
    }
    if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
        var body evaluateReq
        if err := json.Unmarshal(raw, &body); err != nil {
            return "", err
        }
        return strings.Join(body.Lines, "\n"), nil
    }
    return string(raw), nil
}

// ListChecks handles GET /v1/admission/checks?limit=&offset=.  limit
// defaults to 20 and is capped at 100.
func (h *AdmissionHandler) ListChecks(c echo.Context) error {
    if h.Store == nil {
        return storeUnavailable(c)
    }
    limit, _ := strconv.Atoi(c.QueryParam("limit"))
    if limit < 1 {
        limit = 20
    }
    if limit > 100 {
        limit = 100
    }
    offset, _ := strconv.Atoi(c.QueryParam("offset"))
    if offset < 0 {
        offset = 0
    }

    items, err := h.Store.List(c.Request().Context(), limit, offset)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "data":   items,
        "limit":  limit,
        "offset": offset,
    })
}

// GetCheck handles GET /v1/admission/checks/:id.
func (h *AdmissionHandler) GetCheck(c echo.Context) error {
    if h.Store == nil {
        return storeUnavailable(c)
    }
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check id"})
    }
    item, err := h.Store.GetByID(c.Request().Context(), id)
    if err != nil {
        if errors.Is(err, repository.ErrCheckNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "check not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, item)
}

func storeUnavailable(c echo.Context) error {
    return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": repository.ErrUnavailable.Error()})
}
