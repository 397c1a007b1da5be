package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/RigelNana/cinexnema/pkg/apperr"
	"github.com/RigelNana/cinexnema/pkg/metrics"
	"github.com/RigelNana/cinexnema/pkg/ratelimit"
)

// RateLimit limits requests per client ip under scope. A nil limiter lets
// everything through, as does a limiter backend error.
func RateLimit(limiter ratelimit.Limiter, service, scope string, log logrus.FieldLogger) gin.HandlerFunc {
	if limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), scope+":"+c.ClientIP())
		if err != nil {
			log.WithError(err).WithField("scope", scope).Warn("rate limiter unavailable")
			c.Next()
			return
		}
		if !allowed {
			metrics.RateLimitedTotal.WithLabelValues(service, scope).Inc()
			RenderError(c, apperr.New(apperr.KindRateLimited, "too many requests, try again later"))
			return
		}
		c.Next()
	}
}
