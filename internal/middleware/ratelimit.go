package middleware

import (
    "context"
    "errors"
    "fmt"
    "math"
    "net/http"
    "strconv"
    "strings"
    "sync"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "golang.org/x/time/rate"

    "github.com/iliyamo/cinema-admission/internal/config"
)

// Both bucket stores share one shape: Capacity tokens, RefillTokens added
// every RefillInterval, one token per request.

// verdict is the outcome of taking one token.
type verdict struct {
    allowed   bool
    remaining int64
    retry     time.Duration
}

// takeFunc takes one token from the bucket named key.
type takeFunc func(ctx context.Context, key string, now time.Time) (verdict, error)

// NewTokenBucket limits requests per key (see buildRateKey).  With a Redis
// client the buckets live in Redis and are shared by every instance; when
// Redis is nil or a call fails, an in-process bucket of the same shape
// answers instead.  Install IdentifyOperator first for user-keyed strategies.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled {
        return passThrough
    }
    local := newLocalBuckets(cfg)
    if rdb == nil {
        return limitBy(cfg, local.take, nil)
    }
    remote := &redisBuckets{cfg: cfg, rdb: rdb}
    return limitBy(cfg, remote.take, local.take)
}

// NewLocalTokenBucket is the in-process variant of NewTokenBucket.
func NewLocalTokenBucket(cfg config.RateLimitConfig) echo.MiddlewareFunc {
    if !cfg.Enabled {
        return passThrough
    }
    return limitBy(cfg, newLocalBuckets(cfg).take, nil)
}

func limitBy(cfg config.RateLimitConfig, primary, fallback takeFunc) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, c)
            now := time.Now()
            ctx := c.Request().Context()

            v, err := primary(ctx, key, now)
            if err != nil && fallback != nil {
                if cfg.Debug {
                    c.Logger().Warnf("[ratelimit] redis error for key=%s: %v", key, err)
                }
                v, err = fallback(ctx, key, now)
            }
            if err != nil {
                c.Logger().Errorf("[ratelimit] key=%s: %v", key, err)
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(v.remaining, 10))
            if cfg.Debug {
                h.Set("X-RateLimit-Key", key)
            }
            if !v.allowed {
                secs := int(math.Ceil(v.retry.Seconds()))
                if cfg.Debug {
                    c.Logger().Infof("[ratelimit] block key=%s retry=%ds", key, secs)
                }
                return tooManyRequests(c, secs)
            }
            return next(c)
        }
    }
}

// bucketScript refills by whole intervals, takes one token when available
// and returns {allowed, tokens left, ms until the next refill}.
var bucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last = tonumber(state[2])
if tokens == nil or last == nil then
    tokens = capacity
    last = now_ms
end

local steps = math.floor(math.max(0, now_ms - last) / interval_ms)
if steps > 0 then
    tokens = math.min(capacity, tokens + steps * refill)
    last = last + steps * interval_ms
end

local allowed = 0
local wait_ms = 0
if tokens > 0 then
    allowed = 1
    tokens = tokens - 1
else
    wait_ms = math.max(0, interval_ms - (now_ms - last))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last)
redis.call('EXPIRE', key, ttl)
return {allowed, tokens, wait_ms}
`)

type redisBuckets struct {
    cfg config.RateLimitConfig
    rdb *redis.Client
}

func (b *redisBuckets) take(ctx context.Context, key string, now time.Time) (verdict, error) {
    ttl := int64(b.cfg.TTL / time.Second)
    if ttl < 1 {
        ttl = 1
    }
    interval := max(b.cfg.RefillInterval.Milliseconds(), 1)
    res, err := bucketScript.Run(ctx, b.rdb, []string{key},
        now.UnixMilli(), b.cfg.Capacity, b.cfg.RefillTokens, interval, ttl,
    ).Int64Slice()
    if err != nil {
        return verdict{}, err
    }
    if len(res) != 3 {
        return verdict{}, fmt.Errorf("bucket script returned %d values", len(res))
    }
    return verdict{
        allowed:   res[0] == 1,
        remaining: res[1],
        retry:     time.Duration(res[2]) * time.Millisecond,
    }, nil
}

// localBuckets holds one x/time/rate limiter per key.  Idle entries are
// swept once they have not been used for cfg.TTL.
type localBuckets struct {
    mu      sync.Mutex
    cfg     config.RateLimitConfig
    buckets map[string]*localBucket
    swept   time.Time
}

type localBucket struct {
    lim  *rate.Limiter
    seen time.Time
}

func newLocalBuckets(cfg config.RateLimitConfig) *localBuckets {
    return &localBuckets{cfg: cfg, buckets: map[string]*localBucket{}, swept: time.Now()}
}

func (b *localBuckets) get(key string, now time.Time) *rate.Limiter {
    b.mu.Lock()
    defer b.mu.Unlock()
    if now.Sub(b.swept) > b.cfg.TTL {
        for k, v := range b.buckets {
            if now.Sub(v.seen) > b.cfg.TTL {
                delete(b.buckets, k)
            }
        }
        b.swept = now
    }
    e, ok := b.buckets[key]
    if !ok {
        e = &localBucket{lim: rate.NewLimiter(rate.Limit(b.cfg.PerSecond()), b.cfg.Capacity)}
        b.buckets[key] = e
    }
    e.seen = now
    return e.lim
}

func (b *localBuckets) take(_ context.Context, key string, now time.Time) (verdict, error) {
    lim := b.get(key, now)
    if lim.AllowN(now, 1) {
        return verdict{allowed: true, remaining: int64(lim.TokensAt(now))}, nil
    }
    r := lim.ReserveN(now, 1)
    if !r.OK() {
        return verdict{}, errors.New("bucket capacity below one token")
    }
    wait := r.DelayFrom(now)
    r.CancelAt(now)
    return verdict{retry: wait}, nil
}

// keyStrategies lists the request dimensions each RATE_LIMIT_KEY_STRATEGY
// joins into the bucket key.  Unknown strategies use all three.
var keyStrategies = map[string][]string{
    "ip":         {"ip"},
    "user":       {"user"},
    "route":      {"route"},
    "ip_user":    {"ip", "user"},
    "ip_route":   {"ip", "route"},
    "user_route": {"user", "route"},
}

// buildRateKey names the bucket of a request, e.g.
// "admission:rl:ip:10.0.0.1:route:POST /v1/admission/evaluate".  The user
// dimension is the operator set by IdentifyOperator or JWTAuth, else "anon".
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    dims, ok := keyStrategies[strings.ToLower(cfg.KeyStrategy)]
    if !ok {
        dims = []string{"ip", "user", "route"}
    }
    parts := []string{cfg.Prefix}
    for _, d := range dims {
        var v string
        switch d {
        case "ip":
            if v = c.RealIP(); v == "" {
                v = "unknown"
            }
        case "user":
            v = operatorID(c)
        case "route":
            v = c.Request().Method + " " + c.Path()
        }
        parts = append(parts, d, v)
    }
    return strings.Join(parts, ":")
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func tooManyRequests(c echo.Context, retrySecs int) error {
    c.Response().Header().Set("Retry-After", strconv.Itoa(retrySecs))
    return c.JSON(http.StatusTooManyRequests, map[string]any{
        "error":       "too_many_requests",
        "message":     "rate limit exceeded",
        "retry_after": retrySecs,
    })
}
