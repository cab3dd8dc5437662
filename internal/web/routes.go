package web

import (
	"github.com/gin-gonic/gin"
	"github.com/tyemirov/storefront/internal/account"
	"github.com/tyemirov/storefront/internal/apiclient"
	"github.com/tyemirov/storefront/internal/guard"
	"github.com/tyemirov/storefront/internal/session"
	"github.com/tyemirov/storefront/internal/telemetry"
	"go.uber.org/zap"
)

// Shell bundles what the shell routes need.
type Shell struct {
	Scope   *SessionScope
	API     *apiclient.Client
	Config  ShellConfig
	Logger  *zap.Logger
	Metrics telemetry.MetricsRecorder
}

type shellHandlers struct {
	scope  *SessionScope
	api    *apiclient.Client
	config ShellConfig
	logger *zap.Logger
}

// MountShellRoutes registers the storefront pages and form endpoints.
func MountShellRoutes(router gin.IRouter, shell Shell) {
	if shell.Scope == nil || shell.API == nil {
		panic("shell routes require a session scope and an api client")
	}
	logger := shell.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	handlers := &shellHandlers{scope: shell.Scope, api: shell.API, config: shell.Config, logger: logger}
	guardOptions := guard.Options{Logger: logger, Metrics: shell.Metrics}
	resolver := guard.Resolver(shell.Scope.Store)

	router.GET("/", handlers.home)
	router.GET("/products", handlers.listProducts)
	router.GET("/products/categories", handlers.productCategories)
	router.GET("/products/companies", handlers.productCompanies)
	router.GET("/products/:id", handlers.showProduct)
	router.POST("/contact", handlers.submitContact)
	router.GET("/banners", handlers.listBanners)
	router.GET("/config", func(contextGin *gin.Context) {
		ServeShellConfig(contextGin, handlers.config)
	})
	router.GET("/auth/google/callback", handlers.oauthCallback)
	router.POST("/logout", handlers.signOut)

	public := router.Group("", guard.RequirePublic(resolver, guardOptions))
	public.GET("/signin", handlers.staticView("signin"))
	public.POST("/signin", handlers.signIn)
	public.GET("/signup", handlers.staticView("signup"))
	public.POST("/signup", handlers.signUp)
	public.POST("/signin/google", handlers.googleSignIn)
	public.GET("/forgot-password", handlers.staticView("forgot_password"))
	public.POST("/forgot-password", handlers.forgotPassword)
	public.GET("/reset-password/:token", handlers.showResetPassword)
	public.POST("/reset-password/:token", handlers.resetPassword)

	protected := router.Group("", guard.RequireAuthenticated(resolver, guardOptions))
	protected.GET("/profile", handlers.showProfile)
	protected.POST("/profile", handlers.updateProfile)
	protected.GET("/orders", handlers.listOrders)
	protected.GET("/orders/:id", handlers.showOrder)
	protected.DELETE("/orders/:id", handlers.deleteOrder)
	protected.POST("/orders/:id/refund", handlers.refundOrder)

	admin := protected.Group("/admin", guard.RequireRole(resolver, session.AdminRole, guardOptions))
	admin.GET("/products", handlers.listProducts)
	admin.POST("/products", handlers.createProduct)
	admin.PUT("/products/:id", handlers.updateProduct)
	admin.DELETE("/products/:id", handlers.deleteProduct)
	admin.GET("/banners", handlers.listBanners)
	admin.POST("/banners", handlers.createBanner)
	admin.PUT("/banners/:id", handlers.updateBanner)
	admin.DELETE("/banners/:id", handlers.deleteBanner)
	admin.GET("/contact-submissions", handlers.listSubmissions)
}

// client returns the api client bound to the request's session.
func (handlers *shellHandlers) client(contextGin *gin.Context) *apiclient.Client {
	return handlers.api.WithTokens(handlers.scope.Store(contextGin))
}

func (handlers *shellHandlers) accounts(contextGin *gin.Context) *account.Service {
	store := handlers.scope.Store(contextGin)
	return account.NewService(handlers.api.WithTokens(store).Auth(), store, handlers.logger)
}

func (handlers *shellHandlers) staticView(view string) gin.HandlerFunc {
	return func(contextGin *gin.Context) {
		renderView(contextGin, view, nil)
	}
}
