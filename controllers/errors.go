package controllers

import (
	"errors"
	"strings"

	"filevault/services"
	"filevault/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondServiceError maps a service failure onto the matching HTTP
// status. Unclassified errors are logged and hidden behind a generic
// message.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c, serviceMessage(err, services.ErrForbidden))
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, serviceMessage(err, services.ErrNotFound))
	case errors.Is(err, services.ErrInvalidInput):
		utils.BadRequestResponse(c, serviceMessage(err, services.ErrInvalidInput))
	case errors.Is(err, services.ErrConflict):
		utils.ConflictResponse(c, serviceMessage(err, services.ErrConflict))
	default:
		logrus.WithError(err).Error("unhandled service error")
		utils.InternalServerErrorResponse(c, "Something went wrong")
	}
}

func serviceMessage(err, sentinel error) string {
	return strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
}
