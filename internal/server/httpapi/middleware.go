package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/lirra/internal/common"
	"github.com/dmitrijs2005/lirra/internal/logging"
	"github.com/dmitrijs2005/lirra/internal/server/auth"
	"github.com/dmitrijs2005/lirra/internal/server/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	identityKey     = "identity"
)

// requestLogger logs one line per request. 5xx responses also carry the
// errors handlers attached with c.Error.
func requestLogger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(requestIDHeader, reqID)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), reqID))

		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
		}
		if id := identity(c); id != nil {
			args = append(args, "user_id", id.UserID)
		}

		ctx := c.Request.Context()
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			if len(c.Errors) > 0 {
				args = append(args, "err", c.Errors.String())
			}
			log.Error(ctx, "request failed", args...)
		case status >= http.StatusBadRequest:
			log.Warn(ctx, "request rejected", args...)
		default:
			log.Info(ctx, "request", args...)
		}
	}
}

// authRequired verifies the bearer access token and stores the identity in
// the gin context.
func authRequired(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		token, found := strings.CutPrefix(header, common.BearerPrefix)
		if !found || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		id, err := auth.ParseToken(strings.TrimSpace(token), secret)
		if err != nil {
			fail(c, err)
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// adminOnly rejects callers whose token does not carry the admin role.
// Services re-check the role against the database.
func adminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := identity(c); id == nil || id.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}

func identity(c *gin.Context) *auth.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*auth.Identity)
	return id
}

// userID is only called behind authRequired.
func userID(c *gin.Context) string {
	if id := identity(c); id != nil {
		return id.UserID
	}
	return ""
}
