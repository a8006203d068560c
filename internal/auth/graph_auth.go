package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2/clientcredentials"
)

const GraphScope = "https://graph.microsoft.com/.default"

// GraphTokenURL is the v2 token endpoint of a tenant under authority.
func GraphTokenURL(authority, tenantID string) string {
	return fmt.Sprintf("%s/%s/oauth2/v2.0/token", strings.TrimRight(authority, "/"), tenantID)
}

// GraphClient returns an HTTP client that authenticates as the application
// (client credentials grant) and refreshes its token on expiry.
func GraphClient(ctx context.Context, authority, tenantID, clientID, clientSecret string) (*http.Client, error) {
	if tenantID == "" || clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("graph credentials are incomplete")
	}
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     GraphTokenURL(authority, tenantID),
		Scopes:       []string{GraphScope},
	}
	return cfg.Client(ctx), nil
}
