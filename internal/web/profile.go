package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tyemirov/storefront/internal/forms"
	"go.uber.org/zap"
)

type homeView struct {
	Authenticated bool   `json:"authenticated"`
	DisplayName   string `json:"display_name"`
	IsAdmin       bool   `json:"is_admin"`
}

func (handlers *shellHandlers) home(contextGin *gin.Context) {
	store := handlers.scope.Store(contextGin)
	ctx := contextGin.Request.Context()
	record, err := store.Read(ctx)
	if err != nil {
		handlers.logger.Warn("session read failed",
			zap.String("code", "web.home.session_read_failed"),
			zap.Error(err))
	}
	renderView(contextGin, "home", homeView{
		Authenticated: record != nil,
		DisplayName:   store.DisplayName(ctx),
		IsAdmin:       record.IsAdmin(),
	})
}

func (handlers *shellHandlers) showProfile(contextGin *gin.Context) {
	store := handlers.scope.Store(contextGin)
	ctx := contextGin.Request.Context()
	record, err := store.Read(ctx)
	if err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	if record == nil {
		contextGin.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	renderView(contextGin, "profile", gin.H{
		"email":        record.Email,
		"role":         record.Role,
		"user_id":      record.UserID,
		"full_name":    record.FullName,
		"display_name": store.DisplayName(ctx),
	})
}

func (handlers *shellHandlers) updateProfile(contextGin *gin.Context) {
	var form forms.ProfileForm
	if err := forms.Bind(contextGin, &form); err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	if _, err := handlers.accounts(contextGin).UpdateProfile(contextGin.Request.Context(), form); err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	redirectAfterPost(contextGin, "/profile")
}
