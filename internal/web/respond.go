package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tyemirov/storefront/internal/apiclient"
	"github.com/tyemirov/storefront/internal/forms"
	"github.com/tyemirov/storefront/internal/session"
	"go.uber.org/zap"
)

const genericFailureMessage = "Something went wrong. Please try again."

func renderView(contextGin *gin.Context, view string, data any) {
	contextGin.JSON(http.StatusOK, gin.H{"view": view, "data": data})
}

func redirectAfterPost(contextGin *gin.Context, location string) {
	contextGin.Redirect(http.StatusSeeOther, location)
}

func respondError(contextGin *gin.Context, logger *zap.Logger, err error) {
	var validationErr *forms.ValidationError
	var apiErr *apiclient.APIError
	switch {
	case errors.As(err, &validationErr):
		contextGin.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "validation_failed",
			"message": "Please correct the highlighted fields.",
			"fields":  validationErr.Fields,
		})
	case errors.Is(err, forms.ErrMalformedInput):
		contextGin.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_input",
			"message": "The submitted form could not be read.",
		})
	case errors.As(err, &apiErr):
		contextGin.AbortWithStatusJSON(apiErr.StatusCode, gin.H{
			"error":   "backend_rejected",
			"message": apiErr.Message,
		})
	case errors.Is(err, session.ErrMissingToken):
		contextGin.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":   "session_missing",
			"message": "Please sign in again.",
		})
	default:
		logger.Error("request failed",
			zap.String("code", "web.backend_unavailable"),
			zap.String("path", contextGin.Request.URL.Path),
			zap.Error(err))
		contextGin.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
			"error":   "backend_unavailable",
			"message": genericFailureMessage,
		})
	}
}
