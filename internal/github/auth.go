package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AppAuth holds GitHub App authentication configuration
type AppAuth struct {
	AppID      string
	PrivateKey string
	// APIURL defaults to https://api.github.com.
	APIURL     string
	HTTPClient *http.Client
}

// InstallationToken represents a GitHub App installation access token
type InstallationToken struct {
	Token     string
	ExpiresAt time.Time
}

// GenerateJWT creates a JWT token for GitHub App authentication
func (a *AppAuth) GenerateJWT() (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(a.PrivateKey))
	if err != nil {
		return "", fmt.Errorf("failed to parse private key: %w", err)
	}

	appID, err := strconv.ParseInt(a.AppID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid app ID: %w", err)
	}

	// Backdate iat to tolerate clock drift
	now := time.Now()
	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now.Add(-60 * time.Second)),
		ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
		Issuer:    strconv.FormatInt(appID, 10),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signedToken, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT: %w", err)
	}
	return signedToken, nil
}

// GetInstallationToken gets an installation access token for "owner/repo"
func (a *AppAuth) GetInstallationToken(ctx context.Context, repo string) (*InstallationToken, error) {
	owner, name, ok := splitRepo(repo)
	if !ok {
		return nil, fmt.Errorf("invalid repo format: %s (expected owner/repo)", repo)
	}

	jwtToken, err := a.GenerateJWT()
	if err != nil {
		return nil, err
	}

	var installation struct {
		ID int64 `json:"id"`
	}
	if err := a.do(ctx, http.MethodGet, fmt.Sprintf("/repos/%s/%s/installation", owner, name), jwtToken, http.StatusOK, &installation); err != nil {
		return nil, fmt.Errorf("failed to get installation: %w", err)
	}

	var result struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := a.do(ctx, http.MethodPost, fmt.Sprintf("/app/installations/%d/access_tokens", installation.ID), jwtToken, http.StatusCreated, &result); err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	return &InstallationToken{Token: result.Token, ExpiresAt: result.ExpiresAt}, nil
}

func (a *AppAuth) do(ctx context.Context, method, path, jwtToken string, want int, out any) error {
	base := strings.TrimRight(a.APIURL, "/")
	if base == "" {
		base = defaultAPIURL
	}
	req, err := http.NewRequestWithContext(ctx, method, base+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+jwtToken)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	client := a.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GitHub API error: %d - %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ResolveToken returns token when set, otherwise mints an installation token
// from the App credentials.
func ResolveToken(ctx context.Context, token string, app *AppAuth, repo string) (string, error) {
	if token != "" {
		return token, nil
	}
	if app == nil || app.AppID == "" || app.PrivateKey == "" {
		return "", fmt.Errorf("GITHUB_TOKEN or GITHUB_APP_ID and GITHUB_PRIVATE_KEY are required")
	}
	it, err := app.GetInstallationToken(ctx, repo)
	if err != nil {
		return "", err
	}
	return it.Token, nil
}

func splitRepo(repo string) (string, string, bool) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
