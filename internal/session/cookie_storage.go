package session

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// DefaultCookiePrefix namespaces the per-key session cookies.
const DefaultCookiePrefix = "sf_"

// CookieConfig describes how session cookies are written.
type CookieConfig struct {
	Prefix   string
	Domain   string
	MaxAge   time.Duration
	SameSite http.SameSite
	// AllowInsecureHTTP drops the Secure attribute for local development.
	AllowInsecureHTTP bool
}

// CookieStorage stores each key as its own cookie on a request/response pair,
// which is the server-side counterpart of origin-scoped browser storage.
type CookieStorage struct {
	writer        http.ResponseWriter
	request       *http.Request
	configuration CookieConfig

	mutex   sync.Mutex
	pending map[string]*string
}

// NewCookieStorage binds cookie storage to one request.
func NewCookieStorage(writer http.ResponseWriter, request *http.Request, configuration CookieConfig) *CookieStorage {
	if configuration.Prefix == "" {
		configuration.Prefix = DefaultCookiePrefix
	}
	if configuration.SameSite == 0 {
		configuration.SameSite = http.SameSiteLaxMode
	}
	return &CookieStorage{
		writer:        writer,
		request:       request,
		configuration: configuration,
		pending:       make(map[string]*string),
	}
}

// Get returns the value written earlier in this request, or the inbound cookie.
func (storage *CookieStorage) Get(ctx context.Context, key string) (string, bool, error) {
	storage.mutex.Lock()
	pendingValue, written := storage.pending[key]
	storage.mutex.Unlock()
	if written {
		if pendingValue == nil {
			return "", false, nil
		}
		return *pendingValue, true, nil
	}

	cookie, cookieErr := storage.request.Cookie(storage.cookieName(key))
	if cookieErr != nil || cookie == nil {
		return "", false, nil
	}
	value, unescapeErr := url.QueryUnescape(cookie.Value)
	if unescapeErr != nil {
		return "", false, nil
	}
	return value, true, nil
}

// Set writes a durable cookie for key.
func (storage *CookieStorage) Set(ctx context.Context, key string, value string) error {
	cookie := storage.baseCookie(key)
	cookie.Value = url.QueryEscape(value)
	if storage.configuration.MaxAge > 0 {
		cookie.MaxAge = int(storage.configuration.MaxAge.Seconds())
		cookie.Expires = time.Now().UTC().Add(storage.configuration.MaxAge)
	}
	http.SetCookie(storage.writer, cookie)

	storage.mutex.Lock()
	storage.pending[key] = &value
	storage.mutex.Unlock()
	return nil
}

// Delete expires the cookie for key.
func (storage *CookieStorage) Delete(ctx context.Context, key string) error {
	cookie := storage.baseCookie(key)
	cookie.MaxAge = -1
	http.SetCookie(storage.writer, cookie)

	storage.mutex.Lock()
	storage.pending[key] = nil
	storage.mutex.Unlock()
	return nil
}

func (storage *CookieStorage) baseCookie(key string) *http.Cookie {
	return &http.Cookie{
		Name:     storage.cookieName(key),
		Path:     "/",
		Domain:   storage.configuration.Domain,
		Secure:   !storage.configuration.AllowInsecureHTTP,
		HttpOnly: true,
		SameSite: storage.configuration.SameSite,
	}
}

func (storage *CookieStorage) cookieName(key string) string {
	return storage.configuration.Prefix + key
}
