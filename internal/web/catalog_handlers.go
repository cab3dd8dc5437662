package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tyemirov/storefront/internal/apiclient"
	"github.com/tyemirov/storefront/internal/forms"
)

func productQuery(contextGin *gin.Context) apiclient.ProductQuery {
	page, _ := strconv.Atoi(contextGin.Query("page"))
	limit, _ := strconv.Atoi(contextGin.Query("limit"))
	return apiclient.ProductQuery{
		Page:     page,
		Limit:    limit,
		Category: contextGin.Query("category"),
		Company:  contextGin.Query("company"),
		Search:   contextGin.Query("search"),
	}
}

func (handlers *shellHandlers) listProducts(contextGin *gin.Context) {
	page, err := handlers.client(contextGin).Products().List(contextGin.Request.Context(), productQuery(contextGin))
	if err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	renderView(contextGin, "products", page)
}

func (handlers *shellHandlers) showProduct(contextGin *gin.Context) {
	product, err := handlers.client(contextGin).Products().Get(contextGin.Request.Context(), contextGin.Param("id"))
	if err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	renderView(contextGin, "product", product)
}

func (handlers *shellHandlers) productCategories(contextGin *gin.Context) {
	categories, err := handlers.client(contextGin).Products().Categories(contextGin.Request.Context())
	if err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	renderView(contextGin, "categories", categories)
}

func (handlers *shellHandlers) productCompanies(contextGin *gin.Context) {
	companies, err := handlers.client(contextGin).Products().Companies(contextGin.Request.Context())
	if err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	renderView(contextGin, "companies", companies)
}

func (handlers *shellHandlers) listBanners(contextGin *gin.Context) {
	banners, err := handlers.client(contextGin).Banners().List(contextGin.Request.Context())
	if err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	renderView(contextGin, "banners", banners)
}

func (handlers *shellHandlers) submitContact(contextGin *gin.Context) {
	var form forms.ContactForm
	if err := forms.Bind(contextGin, &form); err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	if _, err := handlers.client(contextGin).Contact().Submit(contextGin.Request.Context(), form.Input()); err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	redirectAfterPost(contextGin, "/")
}

func (handlers *shellHandlers) listOrders(contextGin *gin.Context) {
	orders, err := handlers.client(contextGin).Orders().List(contextGin.Request.Context())
	if err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	renderView(contextGin, "orders", orders)
}

func (handlers *shellHandlers) showOrder(contextGin *gin.Context) {
	order, err := handlers.client(contextGin).Orders().Get(contextGin.Request.Context(), contextGin.Param("id"))
	if err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	renderView(contextGin, "order", order)
}

func (handlers *shellHandlers) deleteOrder(contextGin *gin.Context) {
	if err := handlers.client(contextGin).Orders().Delete(contextGin.Request.Context(), contextGin.Param("id")); err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	contextGin.Status(http.StatusNoContent)
}

func (handlers *shellHandlers) refundOrder(contextGin *gin.Context) {
	orderID := contextGin.Param("id")
	if _, err := handlers.client(contextGin).Orders().Refund(contextGin.Request.Context(), orderID); err != nil {
		respondError(contextGin, handlers.logger, err)
		return
	}
	redirectAfterPost(contextGin, "/orders/"+orderID)
}
