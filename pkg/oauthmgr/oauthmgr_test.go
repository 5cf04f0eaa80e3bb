package oauthmgr

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaycortex/agentcore/pkg/agentregistry"
)

func newTestManager(t *testing.T, tokenHandler http.HandlerFunc) (*Manager, *httptest.Server, agentregistry.OAuthRepository) {
	t.Helper()
	server := httptest.NewServer(tokenHandler)
	t.Cleanup(server.Close)

	repo := agentregistry.NewInMemoryOAuthRepository()
	enc, err := NewCredentialEncryption(make([]byte, 32))
	require.NoError(t, err)

	configs := map[string]ProviderConfig{
		"github": {
			IntegrationID: "github", ClientID: "client-id", ClientSecret: "client-secret",
			AuthURL: server.URL + "/authorize", TokenURL: server.URL + "/token",
			Scopes: []string{"repo", "read:org"}, RedirectURL: "https://app.example.com/callback",
		},
		"notion": {
			IntegrationID: "notion", ClientID: "notion-id", ClientSecret: "notion-secret",
			AuthURL: server.URL + "/authorize", TokenURL: server.URL + "/token",
			Scopes: []string{"read_content", "write_content"}, RedirectURL: "https://app.example.com/callback",
		},
	}
	return NewManager(configs, enc, repo), server, repo
}

func tokenExchangeHandler(accessToken, refreshToken string, expiresIn int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":%q,"refresh_token":%q,"token_type":"Bearer","expires_in":%d}`,
			accessToken, refreshToken, expiresIn)
	}
}

func TestInitiateFlow_UnknownIntegrationFails(t *testing.T) {
	m, _, _ := newTestManager(t, tokenExchangeHandler("tok", "", 0))
	_, _, err := m.InitiateFlow(context.Background(), "ghost", "u", "t", "s")
	assert.Error(t, err)
}

func TestInitiateFlow_PersistsStateAndBuildsAuthURL(t *testing.T) {
	m, _, repo := newTestManager(t, tokenExchangeHandler("tok", "", 0))
	authURL, state, err := m.InitiateFlow(context.Background(), "github", "user-1", "tenant-1", "session-1")
	require.NoError(t, err)
	assert.NotEmpty(t, state)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	assert.Equal(t, state, parsed.Query().Get("state"))
	assert.Equal(t, "repo read:org", parsed.Query().Get("scope"))

	stored, err := repo.GetState(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, "user-1", stored.UserID)
	assert.True(t, stored.ExpiresAt.After(time.Now()))
}

func TestInitiateFlow_NotionUsesPlusScopeSeparator(t *testing.T) {
	m, _, _ := newTestManager(t, tokenExchangeHandler("tok", "", 0))
	authURL, _, err := m.InitiateFlow(context.Background(), "notion", "u", "t", "s")
	require.NoError(t, err)
	assert.Contains(t, authURL, "scope=read_content%2Bwrite_content")
}

func TestCompleteFlow_RejectsUnknownState(t *testing.T) {
	m, _, _ := newTestManager(t, tokenExchangeHandler("tok", "", 0))
	_, err := m.CompleteFlow(context.Background(), "code", "ghost-state", "")
	assert.Error(t, err)
}

func TestCompleteFlow_RejectsExpiredState(t *testing.T) {
	m, _, repo := newTestManager(t, tokenExchangeHandler("tok", "", 0))
	require.NoError(t, repo.SaveState(context.Background(), agentregistry.OAuthState{
		State: "expired-state", Integration: "github", UserID: "u", TenantID: "t",
		ExpiresAt: time.Now().Add(-time.Minute),
	}))
	_, err := m.CompleteFlow(context.Background(), "code", "expired-state", "")
	assert.Error(t, err)
}

func TestCompleteFlow_ExchangesAndStoresEncryptedCredential(t *testing.T) {
	m, _, repo := newTestManager(t, tokenExchangeHandler("access-xyz", "refresh-abc", 3600))
	_, state, err := m.InitiateFlow(context.Background(), "github", "user-1", "tenant-1", "session-1")
	require.NoError(t, err)

	credID, err := m.CompleteFlow(context.Background(), "auth-code", state, "My Workspace")
	require.NoError(t, err)

	cred, err := repo.GetCredential(context.Background(), credID)
	require.NoError(t, err)
	assert.Equal(t, "My Workspace", cred.WorkspaceName)
	assert.NotEqual(t, "access-xyz", cred.EncryptedAccessToken)
	assert.True(t, cred.ExpiresAt.After(time.Now()))

	_, err = repo.GetState(context.Background(), state)
	assert.Error(t, err, "consumed state should be deleted")
}

func TestGetAccessToken_RejectsOwnershipMismatch(t *testing.T) {
	m, _, _ := newTestManager(t, tokenExchangeHandler("access-xyz", "refresh-abc", 3600))
	_, state, err := m.InitiateFlow(context.Background(), "github", "user-1", "tenant-1", "session-1")
	require.NoError(t, err)
	credID, err := m.CompleteFlow(context.Background(), "auth-code", state, "")
	require.NoError(t, err)

	_, err = m.GetAccessToken(context.Background(), credID, "someone-else", "tenant-1")
	assert.Error(t, err)
}

func TestGetAccessToken_DecryptsWithoutRefreshWhenFresh(t *testing.T) {
	m, _, _ := newTestManager(t, tokenExchangeHandler("access-xyz", "refresh-abc", 3600))
	_, state, err := m.InitiateFlow(context.Background(), "github", "user-1", "tenant-1", "session-1")
	require.NoError(t, err)
	credID, err := m.CompleteFlow(context.Background(), "auth-code", state, "")
	require.NoError(t, err)

	token, err := m.GetAccessToken(context.Background(), credID, "user-1", "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, "access-xyz", token)
}

func TestGetAccessToken_RefreshesWhenExpiringSoon(t *testing.T) {
	var tokenCalls int
	handler := func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		body := r.FormValue("grant_type")
		w.Header().Set("Content-Type", "application/json")
		if body == "refresh_token" {
			fmt.Fprint(w, `{"access_token":"refreshed-access","refresh_token":"refreshed-refresh","token_type":"Bearer","expires_in":3600}`)
			return
		}
		fmt.Fprint(w, `{"access_token":"access-xyz","refresh_token":"refresh-abc","token_type":"Bearer","expires_in":60}`)
	}
	m, _, repo := newTestManager(t, handler)
	_, state, err := m.InitiateFlow(context.Background(), "github", "user-1", "tenant-1", "session-1")
	require.NoError(t, err)
	credID, err := m.CompleteFlow(context.Background(), "auth-code", state, "")
	require.NoError(t, err)

	token, err := m.GetAccessToken(context.Background(), credID, "user-1", "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, "refreshed-access", token)
	assert.Equal(t, 2, tokenCalls)

	cred, err := repo.GetCredential(context.Background(), credID)
	require.NoError(t, err)
	assert.True(t, cred.ExpiresAt.After(time.Now().Add(time.Hour-time.Minute)))
}

func TestRefreshToken_FailsWithoutRefreshToken(t *testing.T) {
	m, _, repo := newTestManager(t, tokenExchangeHandler("access-xyz", "", 3600))
	_, state, err := m.InitiateFlow(context.Background(), "github", "user-1", "tenant-1", "session-1")
	require.NoError(t, err)
	credID, err := m.CompleteFlow(context.Background(), "auth-code", state, "")
	require.NoError(t, err)

	cred, err := repo.GetCredential(context.Background(), credID)
	require.NoError(t, err)

	_, err = m.RefreshToken(context.Background(), cred)
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "refresh"))
}

func TestCleanupExpiredStates_RemovesOnlyExpired(t *testing.T) {
	m, _, repo := newTestManager(t, tokenExchangeHandler("tok", "", 0))
	require.NoError(t, repo.SaveState(context.Background(), agentregistry.OAuthState{
		State: "old", Integration: "github", ExpiresAt: time.Now().Add(-time.Hour),
	}))
	require.NoError(t, repo.SaveState(context.Background(), agentregistry.OAuthState{
		State: "new", Integration: "github", ExpiresAt: time.Now().Add(time.Hour),
	}))

	count, err := m.CleanupExpiredStates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
