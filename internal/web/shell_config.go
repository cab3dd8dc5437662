package web

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ShellConfig holds the public settings a browser needs to talk to the shell.
type ShellConfig struct {
	APIBaseURL     string
	GoogleClientID string
	BaseURL        string
}

// ServeShellConfig writes the public settings as JSON. An empty BaseURL is
// derived from the request.
func ServeShellConfig(contextGin *gin.Context, configuration ShellConfig) {
	baseURL := configuration.BaseURL
	if strings.TrimSpace(baseURL) == "" {
		host := contextGin.Request.Host
		if host == "" {
			host = "localhost"
		}
		baseURL = fmt.Sprintf("%s://%s", forwardedProto(contextGin.Request), host)
	}
	contextGin.Header("Cache-Control", "no-store, no-cache, must-revalidate, private")
	contextGin.Header("X-Content-Type-Options", "nosniff")
	contextGin.JSON(http.StatusOK, gin.H{
		"apiBaseUrl":     configuration.APIBaseURL,
		"googleClientId": configuration.GoogleClientID,
		"baseUrl":        baseURL,
	})
}

func forwardedProto(request *http.Request) string {
	if request == nil {
		return "https"
	}
	if headerValue := request.Header.Get("X-Forwarded-Proto"); headerValue != "" {
		return headerValue
	}
	if request.TLS != nil {
		return "https"
	}
	return "http"
}
