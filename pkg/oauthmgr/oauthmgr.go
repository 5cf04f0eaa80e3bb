// Package oauthmgr implements the authorization-code OAuth flow used to
// acquire and refresh tool credentials (spec §4.8): state-protected
// code→token exchange, expiry-driven refresh, and encrypted at-rest
// storage of the resulting tokens.
package oauthmgr

import (
	"context"
	crand "crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/relaycortex/agentcore/pkg/agenterr"
	"github.com/relaycortex/agentcore/pkg/agentregistry"
)

const (
	stateTTL          = 10 * time.Minute
	refreshLeadWindow = 5 * time.Minute
	stateRandomBytes  = 32
)

// ProviderConfig is one integration's OAuth client registration.
type ProviderConfig struct {
	IntegrationID string
	ClientID      string
	ClientSecret  string
	AuthURL       string
	TokenURL      string
	Scopes        []string
	RedirectURL   string
}

func (c ProviderConfig) toOAuth2Config() oauth2.Config {
	return oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURL,
		Scopes:       c.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.AuthURL,
			TokenURL:  c.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

// Manager drives the authorization-code grant with refresh for a fixed
// set of configured integrations.
type Manager struct {
	configs map[string]ProviderConfig
	enc     *CredentialEncryption
	repo    agentregistry.OAuthRepository
}

// NewManager builds a Manager over the given provider configs (keyed by
// IntegrationID), a credential encryptor, and the backing repository.
func NewManager(configs map[string]ProviderConfig, enc *CredentialEncryption, repo agentregistry.OAuthRepository) *Manager {
	return &Manager{configs: configs, enc: enc, repo: repo}
}

// InitiateFlow generates a state token, persists it with a 10-minute
// expiry, and returns the provider's authorization URL.
func (m *Manager) InitiateFlow(ctx context.Context, integrationID, userID, tenantID, sessionID string) (authURL string, state string, err error) {
	cfg, ok := m.configs[integrationID]
	if !ok {
		return "", "", agenterr.ArgumentErrorf("ArgumentError", "unknown oauth integration %q", integrationID)
	}

	state, err = generateState(userID, tenantID, integrationID, sessionID)
	if err != nil {
		return "", "", err
	}

	now := time.Now()
	if err := m.repo.SaveState(ctx, agentregistry.OAuthState{
		State: state, Integration: integrationID, UserID: userID, TenantID: tenantID,
		Session: sessionID, ExpiresAt: now.Add(stateTTL),
	}); err != nil {
		return "", "", err
	}

	return buildAuthURL(cfg, state), state, nil
}

// generateState hashes 32 cryptographically random bytes together with
// the owning context so the token is unguessable and non-reusable across
// flows (spec §4.8).
func generateState(userID, tenantID, integrationID, sessionID string) (string, error) {
	randomBytes := make([]byte, stateRandomBytes)
	if _, err := crand.Read(randomBytes); err != nil {
		return "", err
	}
	flowContext := fmt.Sprintf("%s:%s:%s:%s", userID, tenantID, integrationID, sessionID)
	sum := sha256.Sum256(append(randomBytes, []byte(flowContext)...))
	return hex.EncodeToString(sum[:]), nil
}

// buildAuthURL mirrors the provider's query-parameter conventions:
// Notion joins multiple scopes with a literal "+" rather than a space.
func buildAuthURL(cfg ProviderConfig, state string) string {
	params := url.Values{}
	params.Set("client_id", cfg.ClientID)
	params.Set("redirect_uri", cfg.RedirectURL)
	params.Set("response_type", "code")
	params.Set("state", state)

	if len(cfg.Scopes) > 0 {
		separator := " "
		if cfg.IntegrationID == "notion" {
			separator = "+"
		}
		params.Set("scope", strings.Join(cfg.Scopes, separator))
	}

	return cfg.AuthURL + "?" + params.Encode()
}

// CompleteFlow validates the state, exchanges the code for tokens with
// HTTP Basic client credentials, encrypts and stores them, and deletes
// the consumed state.
func (m *Manager) CompleteFlow(ctx context.Context, code, state string, workspaceName string) (uuid.UUID, error) {
	stateData, err := m.repo.GetState(ctx, state)
	if err != nil {
		return uuid.Nil, agenterr.OAuthStateError("invalid or expired oauth state")
	}
	if time.Now().After(stateData.ExpiresAt) {
		return uuid.Nil, agenterr.OAuthStateError("oauth state expired")
	}

	cfg, ok := m.configs[stateData.Integration]
	if !ok {
		return uuid.Nil, agenterr.OAuthTokenError(fmt.Sprintf("unknown integration %q", stateData.Integration))
	}

	token, err := cfg.toOAuth2Config().Exchange(ctx, code)
	if err != nil {
		return uuid.Nil, agenterr.OAuthTokenError(fmt.Sprintf("token exchange failed: %v", err))
	}

	cred, err := m.encryptCredential(stateData.UserID, stateData.TenantID, stateData.Integration, workspaceName, token)
	if err != nil {
		return uuid.Nil, err
	}
	if err := m.repo.SaveCredential(ctx, cred); err != nil {
		return uuid.Nil, err
	}
	if err := m.repo.DeleteState(ctx, state); err != nil {
		return uuid.Nil, err
	}
	return cred.ID, nil
}

func (m *Manager) encryptCredential(userID, tenantID, integration, workspaceName string, token *oauth2.Token) (agentregistry.OAuthCredential, error) {
	encAccess, err := m.enc.Encrypt(token.AccessToken)
	if err != nil {
		return agentregistry.OAuthCredential{}, err
	}
	var encRefresh string
	if token.RefreshToken != "" {
		encRefresh, err = m.enc.Encrypt(token.RefreshToken)
		if err != nil {
			return agentregistry.OAuthCredential{}, err
		}
	}
	return agentregistry.OAuthCredential{
		ID: uuid.New(), Integration: integration, UserID: userID, TenantID: tenantID,
		EncryptedAccessToken: encAccess, EncryptedRefreshToken: encRefresh,
		ExpiresAt: token.Expiry, WorkspaceName: workspaceName,
	}, nil
}

// GetAccessToken loads the credential, verifies ownership, refreshes if
// the token is expired or within five minutes of expiring, and returns
// the decrypted access token.
func (m *Manager) GetAccessToken(ctx context.Context, credentialID uuid.UUID, userID, tenantID string) (string, error) {
	cred, err := m.repo.GetCredential(ctx, credentialID)
	if err != nil {
		return "", agenterr.OAuthPermissionError("credential not found")
	}
	if cred.UserID != userID || cred.TenantID != tenantID {
		return "", agenterr.OAuthPermissionError("credential access denied")
	}

	if isExpiring(cred.ExpiresAt) {
		cred, err = m.RefreshToken(ctx, cred)
		if err != nil {
			return "", err
		}
	}

	return m.enc.Decrypt(cred.EncryptedAccessToken)
}

func isExpiring(expiresAt time.Time) bool {
	if expiresAt.IsZero() {
		return false
	}
	return expiresAt.Before(time.Now().Add(refreshLeadWindow))
}

// RefreshToken exchanges a credential's refresh token for a new access
// token and persists the result.
func (m *Manager) RefreshToken(ctx context.Context, cred agentregistry.OAuthCredential) (agentregistry.OAuthCredential, error) {
	if cred.EncryptedRefreshToken == "" {
		return agentregistry.OAuthCredential{}, agenterr.OAuthTokenError("no refresh token available")
	}
	cfg, ok := m.configs[cred.Integration]
	if !ok {
		return agentregistry.OAuthCredential{}, agenterr.OAuthTokenError(fmt.Sprintf("unknown integration %q", cred.Integration))
	}

	refreshToken, err := m.enc.Decrypt(cred.EncryptedRefreshToken)
	if err != nil {
		return agentregistry.OAuthCredential{}, err
	}

	source := cfg.toOAuth2Config().TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return agentregistry.OAuthCredential{}, agenterr.OAuthTokenError(fmt.Sprintf("token refresh failed: %v", err))
	}

	encAccess, err := m.enc.Encrypt(token.AccessToken)
	if err != nil {
		return agentregistry.OAuthCredential{}, err
	}
	cred.EncryptedAccessToken = encAccess
	if token.RefreshToken != "" {
		encRefresh, err := m.enc.Encrypt(token.RefreshToken)
		if err != nil {
			return agentregistry.OAuthCredential{}, err
		}
		cred.EncryptedRefreshToken = encRefresh
	}
	cred.ExpiresAt = token.Expiry

	if err := m.repo.UpdateCredential(ctx, cred); err != nil {
		return agentregistry.OAuthCredential{}, err
	}
	return cred, nil
}

// CleanupExpiredStates bulk-deletes pending states past their expiry.
func (m *Manager) CleanupExpiredStates(ctx context.Context) (int, error) {
	return m.repo.DeleteExpiredStates(ctx, time.Now())
}
