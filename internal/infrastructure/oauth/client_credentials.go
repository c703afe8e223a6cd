package oauth

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

// NewClientCredentialsClient returns an HTTP client that authenticates service-to-service
// calls with tokens from tokenURL. Without a client id it returns a plain client.
func NewClientCredentialsClient(ctx context.Context, clientID, clientSecret, tokenURL string, timeout time.Duration, scopes ...string) *http.Client {
	if clientID == "" {
		return &http.Client{Timeout: timeout}
	}

	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		Scopes:       scopes,
	}

	client := config.Client(ctx)
	client.Timeout = timeout
	return client
}
