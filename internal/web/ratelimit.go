package web

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware applies a per-client-IP token bucket allowing rps
// requests per second with the given burst.
func RateLimitMiddleware(rps float64, burst int) echo.MiddlewareFunc {
	if burst < 1 {
		burst = 1
	}

	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		if l, ok := limiters[ip]; ok {
			return l
		}
		l := rate.NewLimiter(rate.Limit(rps), burst)
		limiters[ip] = l
		return l
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiterFor(c.RealIP()).Allow() {
				return c.JSON(http.StatusTooManyRequests, errorResponse{
					Code:    "resource-exhausted",
					Message: "too many requests",
				})
			}
			return next(c)
		}
	}
}
