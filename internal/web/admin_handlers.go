package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tyemirov/storefront/internal/forms"
)

// Admin handlers sit behind an advisory role check. The backend decides
// whether each call is allowed and its refusal is passed through.

func (handlers *shellHandlers) createProduct(contextGin *gin.Context) {
	var form forms.ProductForm
	if err := forms.Bind(contextGin, &form); err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	if _, err := handlers.client(contextGin).Products().Create(contextGin.Request.Context(), form.Input()); err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	redirectAfterPost(contextGin, "/admin/products")
}

func (handlers *shellHandlers) updateProduct(contextGin *gin.Context) {
	var form forms.ProductForm
	if err := forms.Bind(contextGin, &form); err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	product, err := handlers.client(contextGin).Products().Update(contextGin.Request.Context(), contextGin.Param("id"), form.Input())
	if err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	renderView(contextGin, "product", product)
}

func (handlers *shellHandlers) deleteProduct(contextGin *gin.Context) {
	if err := handlers.client(contextGin).Products().Delete(contextGin.Request.Context(), contextGin.Param("id")); err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	contextGin.Status(http.StatusNoContent)
}

func (handlers *shellHandlers) createBanner(contextGin *gin.Context) {
	var form forms.BannerForm
	if err := forms.Bind(contextGin, &form); err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	if _, err := handlers.client(contextGin).Banners().Create(contextGin.Request.Context(), form.Input()); err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	redirectAfterPost(contextGin, "/admin/banners")
}

func (handlers *shellHandlers) updateBanner(contextGin *gin.Context) {
	var form forms.BannerForm
	if err := forms.Bind(contextGin, &form); err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	banner, err := handlers.client(contextGin).Banners().Update(contextGin.Request.Context(), contextGin.Param("id"), form.Input())
	if err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	renderView(contextGin, "banner", banner)
}

func (handlers *shellHandlers) deleteBanner(contextGin *gin.Context) {
	if err := handlers.client(contextGin).Banners().Delete(contextGin.Request.Context(), contextGin.Param("id")); err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	contextGin.Status(http.StatusNoContent)
}

func (handlers *shellHandlers) listSubmissions(contextGin *gin.Context) {
	submissions, err := handlers.client(contextGin).Contact().Submissions(contextGin.Request.Context())
	if err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	renderView(contextGin, "contact_submissions", submissions)
}
