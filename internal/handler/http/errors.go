package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/chong-myung/collabcut-sub001/internal/repository"
	"github.com/chong-myung/collabcut-sub001/internal/service"
)

// HandleServiceError maps service-layer errors onto HTTP status codes.
func HandleServiceError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrInvalidComment) || errors.Is(err, service.ErrInvalidCursor) || errors.Is(err, service.ErrInvalidOperation) {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	} else if errors.Is(err, repository.ErrNotFound) {
		ErrorResponse(c, http.StatusNotFound, err.Error())
	} else if errors.Is(err, repository.ErrDuplicateEntry) {
		ErrorResponse(c, http.StatusConflict, err.Error())
	} else {
		logrus.WithError(err).Error("Unhandled internal server error")
		ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
