package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/smart_incident_detection/internal/auth"
	"github.com/sirupsen/logrus"
)

const basicAuthChallenge = `Basic realm="Login Required"`

// Authenticator проверяет пару имя/секрет
type Authenticator interface {
	Authenticate(ctx context.Context, username, secret string) error
}

// BasicAuthMiddleware - middleware для аутентификации по HTTP Basic
func BasicAuthMiddleware(gate Authenticator, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, secret, ok := c.Request.BasicAuth()
		if !ok {
			log.Warn("Credentials missing from request")
			unauthorized(c, "Missing credentials")
			return
		}

		if err := gate.Authenticate(c.Request.Context(), username, secret); err != nil {
			if errors.Is(err, auth.ErrUnauthorized) {
				unauthorized(c, "Unauthorized")
				return
			}
			log.WithError(err).Error("Credential check failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			return
		}

		c.Next()
	}
}

func unauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", basicAuthChallenge)
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: message})
}
