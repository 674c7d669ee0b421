package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/lirra/internal/common"
	"github.com/dmitrijs2005/lirra/internal/dbx"
	"github.com/gin-gonic/gin"
)

// statusFor maps service errors onto HTTP statuses. Anything unknown is a 500.
// An id that Postgres cannot parse names nothing, so it is a 404.
func statusFor(err error) int {
	switch {
	case dbx.IsInvalidText(err):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired),
		errors.Is(err, common.ErrInvalidSignature):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorForbidden),
		errors.Is(err, common.ErrorLimitReached),
		errors.Is(err, common.ErrNoActiveSubscription):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorAlreadyExists),
		errors.Is(err, common.ErrTokenAlreadyRedeemed),
		errors.Is(err, common.ErrTokenRevoked):
		return http.StatusConflict
	case errors.Is(err, common.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"data": data})
}

// fail writes the error envelope. Internal errors are attached to the
// context for the request logger and replaced by a generic message.
func fail(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if dbx.IsInvalidText(err) {
		msg = common.ErrorNotFound.Error()
	}
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = common.ErrorInternal.Error()
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// badRequest reports malformed input that never reached a service.
func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
