package handler

import (
	"net/http"

	"procurement/internal/service"
	"procurement/pkg/response"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// statusFor maps the service error taxonomy onto HTTP status codes.
func statusFor(err error) (int, string) {
	switch {
	case service.IsNotFound(err):
		return http.StatusNotFound, response.CodeNotFound
	case service.IsConflict(err):
		return http.StatusConflict, response.CodeConflict
	case service.IsValidation(err):
		return http.StatusBadRequest, response.CodeValidation
	default:
		return http.StatusInternalServerError, response.CodeInternal
	}
}

func respondError(c *gin.Context, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	c.JSON(status, response.ErrorWithCode(status, code, err.Error()))
}

func respondBadBody(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.ErrorWithCode(http.StatusBadRequest, response.CodeValidation, "Invalid request body: "+err.Error()))
}
