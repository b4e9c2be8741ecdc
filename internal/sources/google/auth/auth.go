package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"drive-harvest/internal/config"

	"github.com/charmbracelet/huh"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/term"
	drive "google.golang.org/api/drive/v3"
)

// Credential kinds detected from the credentials JSON.
const (
	CredentialOAuthClient    = "oauth_client"
	CredentialServiceAccount = "service_account"
)

// GetClient returns an HTTP client authenticated for read-only Drive access.
// Service account keys authenticate directly; OAuth client secrets use the
// cached token, starting the interactive login flow when none exists.
func GetClient() (*http.Client, error) {
	credPath, err := config.GetCredentialsPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(credPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	if detectKind(data) == CredentialServiceAccount {
		jwtConfig, err := google.JWTConfigFromJSON(data, drive.DriveReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		slog.Debug("using service account credentials", "path", credPath)

		return jwtConfig.Client(context.Background()), nil
	}

	oauthConfig, err := google.ConfigFromJSON(data, drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}

	tokenPath, err := config.GetTokenPath()
	if err != nil {
		return nil, err
	}

	tok, err := tokenFromFile(tokenPath)
	if err != nil {
		tok, err = getTokenFromWeb(oauthConfig)
		if err != nil {
			return nil, err
		}

		if err := saveToken(tokenPath, tok); err != nil {
			return nil, err
		}
	}

	return oauthConfig.Client(context.Background(), tok), nil
}

// Login runs the interactive OAuth flow and caches the token, replacing any
// existing one.
func Login() error {
	credPath, err := config.GetCredentialsPath()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(credPath)
	if err != nil {
		return fmt.Errorf("unable to read credentials file: %w", err)
	}

	if detectKind(data) == CredentialServiceAccount {
		return errors.New("service account credentials authenticate directly and do not need a login")
	}

	oauthConfig, err := google.ConfigFromJSON(data, drive.DriveReadonlyScope)
	if err != nil {
		return fmt.Errorf("unable to parse client secret file to config: %w", err)
	}

	tok, err := getTokenFromWeb(oauthConfig)
	if err != nil {
		return err
	}

	tokenPath, err := config.GetTokenPath()
	if err != nil {
		return err
	}

	return saveToken(tokenPath, tok)
}

// DetectCredentialKind reports whether the credentials file holds a service
// account key or an OAuth client secret.
func DetectCredentialKind(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("unable to read credentials file: %w", err)
	}

	return detectKind(data), nil
}

func detectKind(data []byte) string {
	var probe struct {
		Type string `json:"type"`
	}

	if err := json.Unmarshal(data, &probe); err == nil && probe.Type == CredentialServiceAccount {
		return CredentialServiceAccount
	}

	return CredentialOAuthClient
}

// getTokenFromWeb walks the user through the consent flow: open the URL,
// approve read-only access, paste the code back.
func getTokenFromWeb(oauthConfig *oauth2.Config) (*oauth2.Token, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("no cached token and stdin is not a terminal; run 'drive-harvest auth login' interactively first")
	}

	authURL := oauthConfig.AuthCodeURL("state-token", oauth2.AccessTypeOffline)

	fmt.Printf("Open the following link in your browser and approve access:\n%v\n\n", authURL)

	var authCode string

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Authorization code").
			Description("Paste the code Google shows after you approve access.").
			Value(&authCode).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("authorization code is required")
				}

				return nil
			}),
	))

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("authorization prompt failed: %w", err)
	}

	tok, err := oauthConfig.Exchange(context.Background(), strings.TrimSpace(authCode))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve token from web: %w", err)
	}

	return tok, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = f.Close()
	}()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("unable to parse token file %s: %w", path, err)
	}

	return tok, nil
}

// saveToken writes the token with owner-only permissions.
func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("unable to create token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to save oauth token: %w", err)
	}

	defer func() {
		_ = f.Close()
	}()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("unable to encode oauth token: %w", err)
	}

	return nil
}

// Status describes the configured credentials and any cached token.
type Status struct {
	CredentialsPath string
	CredentialKind  string
	TokenPath       string
	HasToken        bool
	TokenExpiry     time.Time
}

// GetStatus inspects the credential and token files without talking to
// Google.
func GetStatus() (*Status, error) {
	credPath, err := config.GetCredentialsPath()
	if err != nil {
		return nil, err
	}

	kind, err := DetectCredentialKind(credPath)
	if err != nil {
		return nil, err
	}

	status := &Status{
		CredentialsPath: credPath,
		CredentialKind:  kind,
	}

	if kind == CredentialServiceAccount {
		return status, nil
	}

	tokenPath, err := config.GetTokenPath()
	if err != nil {
		return nil, err
	}

	status.TokenPath = tokenPath

	if tok, err := tokenFromFile(tokenPath); err == nil {
		status.HasToken = true
		status.TokenExpiry = tok.Expiry
	}

	return status, nil
}
