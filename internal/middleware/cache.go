package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/cinema-admission/internal/config"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    size   int64
    limit  int64
}
func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }
func (cw *captureWriter) Write(b []byte) (int, error) {
    if cw.limit <= 0 || cw.size < cw.limit {
        remain := cw.limit - cw.size
        if cw.limit <= 0 {
            cw.buf.Write(b)
        } else if remain > 0 {
            if int64(len(b)) <= remain {
                cw.buf.Write(b)
            } else {
                cw.buf.Write(b[:remain])
            }
        }
        cw.size += int64(len(b))
    }
    return cw.ResponseWriter.Write(b)
}

// cacheKeyFrom builds a stable cache key honoring prefix/strategy.  With the
// "route_body" strategy the request body is hashed too; body must then be
// the full request body.
func cacheKeyFrom(cfg config.CacheConfig, c echo.Context, body []byte) string {
    r := c.Request()
    method := r.Method
    route := c.Path()
    query := r.URL.RawQuery

    parts := []string{cfg.Prefix}
    switch strings.ToLower(cfg.KeyStrategy) {
    case "route":
        parts = append(parts, "route", route)
    case "route_query":
        parts = append(parts, "method", method, "route", route, "q", query)
    default: // "route_body"
        bodySum := sha1.Sum(body)
        parts = append(parts, "method", method, "route", route, "q", query, "body", fmt.Sprintf("%x", bodySum[:]))
    }

    tail := strings.Join(parts[1:], ":")
    sum := sha1.Sum([]byte(tail))
    return fmt.Sprintf("%s:%x", parts[0], sum[:])
}

// readBody drains the request body up to limit bytes and puts an equivalent
// reader back so handlers still see the full body.  ok is false when the
// body is larger than limit.
func readBody(r *http.Request, limit int64) (body []byte, ok bool, err error) {
    if r.Body == nil {
        return nil, true, nil
    }
    src := io.Reader(r.Body)
    if limit > 0 {
        src = io.LimitReader(r.Body, limit+1)
    }
    body, err = io.ReadAll(src)
    if err != nil {
        return nil, false, err
    }
    r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), r.Body))
    return body, limit <= 0 || int64(len(body)) <= limit, nil
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
    hdrJSON, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    total := 4 + 4 + len(hdrJSON) + len(body)
    out := make([]byte, total)
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
    copy(out[8:8+len(hdrJSON)], hdrJSON)
    copy(out[8+len(hdrJSON):], body)
    return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
    if len(bs) < 8 {
        return 0, nil, nil, false
    }
    status = int(binary.BigEndian.Uint32(bs[0:4]))
    hlen := int(binary.BigEndian.Uint32(bs[4:8]))
    if 8+hlen > len(bs) || hlen < 0 {
        return 0, nil, nil, false
    }
    var hdr http.Header
    if hlen > 0 {
        if err := json.Unmarshal(bs[8:8+hlen], &hdr); err != nil {
            return 0, nil, nil, false
        }
    } else {
        hdr = make(http.Header)
    }
    body = bs[8+hlen:]
    return status, hdr, body, true
}

// replayHeader reports whether a stored header is restored on a hit.
// Content-Length is recomputed and X-Cache is set fresh.  X-RateLimit-*
// belong to the current request and were already set by the limiter.
func replayHeader(name string) bool {
    name = http.CanonicalHeaderKey(name)
    switch {
    case name == "Content-Length", name == "X-Cache":
        return false
    case strings.HasPrefix(name, "X-Ratelimit-"):
        return false
    }
    return true
}

// NewRedisCache caches successful responses of pure endpoints.  It stores
// headers + body so a hit replays the first response byte for byte.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 5 * time.Minute
    }

    maxBody := int64(cfg.MaxBodyBytes)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }

            ctx := c.Request().Context()
            body, fits, err := readBody(c.Request(), maxBody)
            if err != nil {
                return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable body"})
            }
            if !fits {
                return next(c)
            }
            key := cacheKeyFrom(cfg, c, body)

            if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
                if status, hdr, cached, ok := decodePayload(bs); ok {
                    h := c.Response().Header()
                    for k, vals := range hdr {
                        if !replayHeader(k) {
                            continue
                        }
                        for _, v := range vals {
                            h.Add(k, v)
                        }
                    }
                    h.Set("X-Cache", "HIT")
                    c.Response().WriteHeader(status)
                    if len(cached) > 0 {
                        _, _ = c.Response().Write(cached)
                    }
                    return nil
                }
            }

            // Miss: capture
            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }

            // Only complete 200 responses are replayed.
            if cw.status != http.StatusOK || (maxBody > 0 && cw.size > maxBody) {
                return nil
            }
            hdr := make(http.Header)
            for k, vals := range c.Response().Header() {
                if replayHeader(k) {
                    hdr[k] = append([]string(nil), vals...)
                }
            }
            if payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes()); err == nil {
                if err := rdb.SetEx(context.Background(), key, payload, ttl).Err(); err != nil {
                    c.Logger().Warnf("cache: store %s failed: %v", key, err)
                }
            }
            return nil
        }
    }
}
