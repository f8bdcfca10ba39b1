package controller

import (
	"net/http"

	"github.com/kaimonolist/linkd/internal/apperr"
	"github.com/kaimonolist/linkd/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// handleAPIError turns a service error into the JSON error envelope used
// by every /api endpoint. Internal errors are logged here so handlers do
// not have to.
func handleAPIError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch apperr.KindOf(err) {
	case apperr.InvalidArgument:
		status = http.StatusBadRequest
	case apperr.Unauthenticated:
		status = http.StatusUnauthorized
	case apperr.PermissionDenied:
		status = http.StatusForbidden
	case apperr.NotFound:
		status = http.StatusNotFound
	case apperr.FailedPrecondition:
		status = http.StatusConflict
	case apperr.DeadlineExceeded:
		status = http.StatusGone
	case apperr.ResourceExhausted:
		status = http.StatusTooManyRequests
	}

	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("Request failed")
	}

	c.JSON(status, gin.H{
		"status":  status,
		"message": apperr.MessageOf(err, "内部エラーが発生しました。しばらくしてからお試しください。"),
	})
}

func requireUser(c *gin.Context) (string, bool) {
	context, err := utils.GetContext(c)

	if err != nil || !context.IsLoggedIn {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  http.StatusUnauthorized,
			"message": "Unauthorized",
		})
		return "", false
	}

	return context.UID, true
}
