package apiclient

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

type bearerTransport struct {
	base   http.RoundTripper
	tokens TokenSource
	origin string
}

// originOf returns scheme://host for rawURL, lower-cased, or "" when rawURL
// has no host.
func originOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return strings.ToLower(parsed.Scheme + "://" + parsed.Host)
}

// RoundTrip reads the current token and attaches it to a copy of request.
// Requests leaving the backend origin, such as redirect hops, go out bare.
func (transport *bearerTransport) RoundTrip(request *http.Request) (*http.Response, error) {
	base := transport.base
	if base == nil {
		base = http.DefaultTransport
	}
	if transport.tokens == nil || !transport.sameOrigin(request.URL) {
		return base.RoundTrip(request)
	}
	token, err := transport.tokens.Token(request.Context())
	if err != nil {
		if request.Body != nil {
			_ = request.Body.Close()
		}
		return nil, fmt.Errorf("apiclient.token: %w", err)
	}
	if token == "" {
		return base.RoundTrip(request)
	}
	authorized := request.Clone(request.Context())
	authorized.Header.Set("Authorization", "Bearer "+token)
	return base.RoundTrip(authorized)
}

func (transport *bearerTransport) sameOrigin(target *url.URL) bool {
	if target == nil || transport.origin == "" {
		return false
	}
	return strings.ToLower(target.Scheme+"://"+target.Host) == transport.origin
}
