// Package guard gates gin routes on the request's Session Record.
package guard

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tyemirov/storefront/internal/session"
	"github.com/tyemirov/storefront/internal/telemetry"
	"go.uber.org/zap"
)

// Default redirect targets.
const (
	DefaultSignInPath = "/signin"
	DefaultHomePath   = "/"
)

// Policy selects which visitors a route admits.
type Policy int

const (
	// PolicyRequireAuthenticated admits visitors with a session.
	PolicyRequireAuthenticated Policy = iota
	// PolicyRequirePublic admits visitors without a session.
	PolicyRequirePublic
)

// Action is the outcome of a guard decision.
type Action int

const (
	// ActionRender lets the request through to the route handler.
	ActionRender Action = iota
	// ActionRedirect sends the visitor to Decision.Location instead.
	ActionRedirect
)

// Decision tells the caller to render the route or redirect elsewhere.
type Decision struct {
	Action   Action
	Location string
}

// Redirecting reports whether the decision is a redirect.
func (decision Decision) Redirecting() bool {
	return decision.Action == ActionRedirect
}

// Resolver returns the session store for the current request.
type Resolver func(*gin.Context) *session.Store

// Options configures the guard middlewares.
type Options struct {
	SignInPath string
	HomePath   string
	Logger     *zap.Logger
	Metrics    telemetry.MetricsRecorder
}

func (options Options) withDefaults() Options {
	if strings.TrimSpace(options.SignInPath) == "" {
		options.SignInPath = DefaultSignInPath
	}
	if strings.TrimSpace(options.HomePath) == "" {
		options.HomePath = DefaultHomePath
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	if options.Metrics == nil {
		options.Metrics = telemetry.NopMetrics()
	}
	return options
}

// Decide maps a policy and the visitor's state to a decision using the
// default redirect targets.
func Decide(policy Policy, authenticated bool) Decision {
	return Options{}.withDefaults().decide(policy, authenticated)
}

func (options Options) decide(policy Policy, authenticated bool) Decision {
	switch policy {
	case PolicyRequireAuthenticated:
		if !authenticated {
			return Decision{Action: ActionRedirect, Location: options.SignInPath}
		}
	case PolicyRequirePublic:
		if authenticated {
			return Decision{Action: ActionRedirect, Location: options.HomePath}
		}
	}
	return Decision{Action: ActionRender}
}

// RequireAuthenticated redirects visitors without a session to the sign-in page.
func RequireAuthenticated(resolver Resolver, options Options) gin.HandlerFunc {
	return enforce(resolver, PolicyRequireAuthenticated, options.withDefaults())
}

// RequirePublic redirects visitors with a session to the home page.
func RequirePublic(resolver Resolver, options Options) gin.HandlerFunc {
	return enforce(resolver, PolicyRequirePublic, options.withDefaults())
}

func enforce(resolver Resolver, policy Policy, options Options) gin.HandlerFunc {
	if resolver == nil {
		panic("guard resolver is required")
	}
	return func(contextGin *gin.Context) {
		store := resolver(contextGin)
		decision := options.decide(policy, store.IsAuthenticated(contextGin.Request.Context()))
		if !decision.Redirecting() {
			contextGin.Next()
			return
		}
		if policy == PolicyRequireAuthenticated {
			options.Metrics.Increment(telemetry.EventGuardRedirectSignIn)
		} else {
			options.Metrics.Increment(telemetry.EventGuardRedirectHome)
		}
		options.Logger.Debug("guard redirect",
			zap.String("path", contextGin.Request.URL.Path),
			zap.String("location", decision.Location))
		contextGin.Redirect(http.StatusFound, decision.Location)
		contextGin.Abort()
	}
}

// RequireRole hides routes from visitors whose stored role differs from role.
//
// The stored role is unverified and anyone can forge it, so this only
// shapes navigation. Handlers behind it must still rely on the backend
// rejecting the request.
func RequireRole(resolver Resolver, role string, options Options) gin.HandlerFunc {
	if resolver == nil {
		panic("guard resolver is required")
	}
	options = options.withDefaults()
	return func(contextGin *gin.Context) {
		record, err := resolver(contextGin).Read(contextGin.Request.Context())
		if err != nil {
			options.Logger.Warn("session read failed",
				zap.String("code", "guard.role.read_failed"),
				zap.Error(err))
		}
		if record == nil {
			options.Metrics.Increment(telemetry.EventGuardRedirectSignIn)
			contextGin.Redirect(http.StatusFound, options.SignInPath)
			contextGin.Abort()
			return
		}
		if record.Role != role {
			options.Metrics.Increment(telemetry.EventGuardRedirectHome)
			contextGin.Redirect(http.StatusFound, options.HomePath)
			contextGin.Abort()
			return
		}
		contextGin.Next()
	}
}
