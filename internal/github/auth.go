package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"
)

// AppCredentials identify a GitHub App.
type AppCredentials struct {
	AppID          int64
	PrivateKeyPath string
}

// CreateInstallationClient creates a GitHub client authenticated as a specific
// App installation. Write operations through it are attributed to the App's
// bot user, "<slug>[bot]".
func CreateInstallationClient(ctx context.Context, creds AppCredentials, installationID int64, logger *slog.Logger) (Client, error) {
	logger.Info("creating GitHub installation client", "installation_id", installationID)

	privateKey, err := os.ReadFile(creds.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key from %s: %w", creds.PrivateKeyPath, err)
	}

	appTransport, err := ghinstallation.NewAppsTransport(http.DefaultTransport, creds.AppID, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub App transport: %w", err)
	}
	appClient := github.NewClient(&http.Client{Transport: appTransport})

	app, _, err := appClient.Apps.Get(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to look up GitHub App %d: %w", creds.AppID, err)
	}

	token, _, err := appClient.Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create installation token for installation ID %d: %w", installationID, err)
	}
	if token.GetToken() == "" {
		return nil, fmt.Errorf("received an empty installation token")
	}
	logger.Debug("created installation token", "installation_id", installationID, "expires_at", token.GetExpiresAt())

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token.GetToken()})
	base := context.WithValue(ctx, oauth2.HTTPClient, rateLimitedHTTPClient())
	tc := oauth2.NewClient(base, ts)

	return &gitHubClient{
		client: github.NewClient(tc),
		logger: logger,
		login:  botLogin(app.GetSlug()),
	}, nil
}

func botLogin(slug string) string {
	if slug == "" {
		return ""
	}
	return slug + "[bot]"
}
