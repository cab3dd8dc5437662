package web

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tyemirov/storefront/internal/forms"
	"go.uber.org/zap"
)

func (handlers *shellHandlers) signIn(contextGin *gin.Context) {
	var form forms.SignInForm
	if err := forms.Bind(contextGin, &form); err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	if _, err := handlers.accounts(contextGin).SignIn(contextGin.Request.Context(), form); err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	redirectAfterPost(contextGin, "/")
}

func (handlers *shellHandlers) signUp(contextGin *gin.Context) {
	var form forms.SignUpForm
	if err := forms.Bind(contextGin, &form); err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	if _, err := handlers.accounts(contextGin).SignUp(contextGin.Request.Context(), form); err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	redirectAfterPost(contextGin, "/")
}

func (handlers *shellHandlers) googleSignIn(contextGin *gin.Context) {
	var inbound struct {
		Credential string `form:"credential" json:"credential" binding:"required"`
	}
	if err := forms.Bind(contextGin, &inbound); err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	if _, err := handlers.accounts(contextGin).GoogleSignIn(contextGin.Request.Context(), inbound.Credential); err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	redirectAfterPost(contextGin, "/")
}

func (handlers *shellHandlers) oauthCallback(contextGin *gin.Context) {
	token := strings.TrimSpace(contextGin.Query("token"))
	if _, err := handlers.accounts(contextGin).CompleteOAuthCallback(contextGin.Request.Context(), token); err != nil {
		handlers.logger.Warn("oauth callback failed",
			zap.String("code", "web.oauth_callback.failed"),
			zap.Error(err))
		contextGin.Redirect(http.StatusFound, "/signin?error="+url.QueryEscape("oauth_failed"))
		return
	}
	contextGin.Redirect(http.StatusFound, "/")
}

func (handlers *shellHandlers) signOut(contextGin *gin.Context) {
	if err := handlers.accounts(contextGin).SignOut(contextGin.Request.Context()); err != nil {
		handlers.logger.Warn("sign out left keys behind",
			zap.String("code", "web.sign_out.clear_failed"),
			zap.Error(err))
	}
	redirectAfterPost(contextGin, "/")
}

func (handlers *shellHandlers) forgotPassword(contextGin *gin.Context) {
	var form forms.ForgotPasswordForm
	if err := forms.Bind(contextGin, &form); err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	if _, err := handlers.accounts(contextGin).ForgotPassword(contextGin.Request.Context(), form); err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	redirectAfterPost(contextGin, "/signin")
}

func (handlers *shellHandlers) showResetPassword(contextGin *gin.Context) {
	token := contextGin.Param("token")
	if err := handlers.accounts(contextGin).VerifyResetToken(contextGin.Request.Context(), token); err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	renderView(contextGin, "reset_password", gin.H{"token": token})
}

func (handlers *shellHandlers) resetPassword(contextGin *gin.Context) {
	var form forms.ResetPasswordForm
	if err := forms.Bind(contextGin, &form); err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	if _, err := handlers.accounts(contextGin).ResetPassword(contextGin.Request.Context(), contextGin.Param("token"), form); err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	redirectAfterPost(contextGin, "/signin")
}
