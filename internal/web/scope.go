package web

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tyemirov/storefront/internal/session"
)

const sessionStoreContextKey = "storefront_session_store"

// DefaultVisitorCookieName names the cookie that keys server-side sessions.
const DefaultVisitorCookieName = "sf_visitor"

// StorageProvider yields the session storage for a request.
type StorageProvider interface {
	Storage(contextGin *gin.Context) session.Storage
}

// CookieProvider keeps the Session Record in the visitor's cookies.
type CookieProvider struct {
	Cookie session.CookieConfig
}

// Storage returns cookie storage bound to the request and response.
func (provider CookieProvider) Storage(contextGin *gin.Context) session.Storage {
	return session.NewCookieStorage(contextGin.Writer, contextGin.Request, provider.Cookie)
}

// NamespacedProvider keeps the Session Record on the server, keyed by a
// random visitor id stored in a cookie.
type NamespacedProvider struct {
	Backend    session.Backend
	Cookie     session.CookieConfig
	CookieName string
}

// Storage returns the backend scope for the visitor, issuing a visitor id
// on first contact. The returned storage is a session.Renewer.
func (provider NamespacedProvider) Storage(contextGin *gin.Context) session.Storage {
	storage := &visitorStorage{provider: provider, contextGin: contextGin}
	if cookie, err := contextGin.Request.Cookie(provider.cookieName()); err == nil {
		if visitorID, parseErr := uuid.Parse(cookie.Value); parseErr == nil {
			storage.Storage = provider.Backend.Scope(visitorID.String())
			return storage
		}
	}
	storage.Storage = provider.Backend.Scope(provider.issueVisitorID(contextGin))
	storage.issued = true
	return storage
}

func (provider NamespacedProvider) cookieName() string {
	if strings.TrimSpace(provider.CookieName) == "" {
		return DefaultVisitorCookieName
	}
	return provider.CookieName
}

// issueVisitorID sets a new visitor cookie on the response and returns its id.
func (provider NamespacedProvider) issueVisitorID(contextGin *gin.Context) string {
	visitorID := uuid.NewString()
	sameSite := provider.Cookie.SameSite
	if sameSite == http.SameSiteDefaultMode {
		sameSite = http.SameSiteLaxMode
	}
	http.SetCookie(contextGin.Writer, &http.Cookie{
		Name:     provider.cookieName(),
		Value:    visitorID,
		Path:     "/",
		Domain:   provider.Cookie.Domain,
		MaxAge:   int(provider.Cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   !provider.Cookie.AllowInsecureHTTP,
		SameSite: sameSite,
	})
	return visitorID
}

// visitorStorage is the backend scope of one visitor id. Renew moves it to
// a newly issued id unless this request already issued it.
type visitorStorage struct {
	session.Storage
	provider   NamespacedProvider
	contextGin *gin.Context
	issued     bool
}

func (storage *visitorStorage) Renew(ctx context.Context) error {
	if storage.issued {
		return nil
	}
	storage.Storage = storage.provider.Backend.Scope(storage.provider.issueVisitorID(storage.contextGin))
	storage.issued = true
	return nil
}

// SessionScope builds one Session Store per request.
type SessionScope struct {
	Provider StorageProvider
	Options  []session.Option
}

// Store returns the request's Session Store, creating it on first use.
func (scope *SessionScope) Store(contextGin *gin.Context) *session.Store {
	if cached, found := contextGin.Get(sessionStoreContextKey); found {
		if store, ok := cached.(*session.Store); ok {
			return store
		}
	}
	store := session.NewStore(scope.Provider.Storage(contextGin), scope.Options...)
	contextGin.Set(sessionStoreContextKey, store)
	return store
}
