package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jobconnect/jobboard-api/internal/logger"
	"github.com/jobconnect/jobboard-api/internal/services"
	log "github.com/sirupsen/logrus"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var errorStatuses = []struct {
	err    error
	status int
	code   string
}{
	{services.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{services.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{services.ErrForbidden, http.StatusForbidden, "forbidden"},
	{services.ErrNotFound, http.StatusNotFound, "not_found"},
	{services.ErrConflict, http.StatusConflict, "conflict"},
	{services.ErrMediaUnavailable, http.StatusServiceUnavailable, "media_unavailable"},
}

func abortWithError(c *gin.Context, err error) {
	for _, known := range errorStatuses {
		if errors.Is(err, known.err) {
			abort(c, known.status, known.code, err.Error())
			return
		}
	}

	log.WithField(logger.ErrorTypeField, logger.ErrorTypeHttp).
		Errorf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	abort(c, http.StatusInternalServerError, "internal", "internal server error")
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": errorBody{Code: code, Message: message}})
}

func badRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, "invalid_input", message)
}
