package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http"               // HTTP status codes for responses
    "strings"               // string utilities for prefix checking and trimming

    "github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
    "github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

// Context keys set by JWTAuth.
const (
    CtxOperator = "operator" // subject claim of the token
    CtxRole     = "role"     // role claim of the token
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the token's subject and role claims into the request context.  The
// provided secret must match the one used when issuing tokens (see
// cmd/admintoken).  Only HMAC-signed tokens are accepted.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            claims, msg := bearerClaims(c, secret)
            if claims == nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": msg})
            }
            setIdentity(c, claims)
            return next(c)
        }
    }
}

// IdentifyOperator records the subject and role of a valid bearer token but
// never rejects a request.  It runs ahead of the rate limiter so user-keyed
// buckets see the caller; route groups still enforce with JWTAuth.
func IdentifyOperator(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if claims, _ := bearerClaims(c, secret); claims != nil {
                setIdentity(c, claims)
            }
            return next(c)
        }
    }
}

// bearerClaims parses the Authorization header.  On failure claims is nil
// and msg says why.
func bearerClaims(c echo.Context, secret string) (claims jwt.MapClaims, msg string) {
    // A valid header starts with "Bearer " followed by the JWT.
    auth := c.Request().Header.Get("Authorization")
    if !strings.HasPrefix(auth, "Bearer ") {
        return nil, "missing bearer token"
    }
    raw := strings.TrimPrefix(auth, "Bearer ")

    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // Only HMAC; "none" and asymmetric tokens are refused.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, echo.ErrUnauthorized
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return nil, "invalid token"
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return nil, "invalid claims"
    }
    return claims, ""
}

// setIdentity stores the claims read downstream via c.Get().
func setIdentity(c echo.Context, claims jwt.MapClaims) {
    sub, _ := claims.GetSubject()
    c.Set(CtxOperator, sub)
    c.Set(CtxRole, claims["role"])
}

// operatorID returns the authenticated subject or "anon".
func operatorID(c echo.Context) string {
    if s, ok := c.Get(CtxOperator).(string); ok && s != "" {
        return s
    }
    return "anon"
}
