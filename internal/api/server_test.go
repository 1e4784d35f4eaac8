package api

import (
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ficai/signal-server/internal/auth"
	"github.com/ficai/signal-server/internal/config"
	"github.com/ficai/signal-server/internal/http/response"
	"github.com/ficai/signal-server/internal/metadata/fichub"
	"github.com/ficai/signal-server/internal/service"
	"github.com/ficai/signal-server/internal/store/sqlite"
	"github.com/ficai/signal-server/internal/validation"
)

const (
	testBetaKey  = "onlyfriendsallowed"
	testStoryURL = "https://forums.example.com/threads/with-this-ring.12345/"
)

// setupTestServer builds a full server over a temporary database and a
// stubbed FicHub upstream.
func setupTestServer(t *testing.T) *Server {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := sqlite.Open(dbPath, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == testStoryURL {
			w.Write([]byte(`{"id":"abc123","title":"With This Ring","source":"spacebattles"}`))
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(upstream.Close)

	cfg := &config.Config{
		Auth: config.AuthConfig{
			Pepper:       []byte("0123456789abcdef0123456789abcdef"),
			CookieDomain: "fic.ai",
			BetaKey:      testBetaKey,
		},
	}

	logger := slog.New(slog.DiscardHandler)
	validator := validation.New()

	authService := service.NewAuthService(st, validator, cfg, logger)
	signalService := service.NewSignalService(st, validator, logger)
	searchService := service.NewTagSearchService(st, logger)
	metaService := service.NewMetaService(fichub.NewClient(upstream.URL, logger), logger)

	return NewServer(cfg, authService, signalService, searchService, metaService, st, logger)
}

// doJSON performs a request with an optional JSON body and session
// cookie.
func doJSON(t *testing.T, s *Server, method, target, body string, sessionCookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionCookie != nil {
		req.AddCookie(sessionCookie)
	}

	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

// register creates an account and returns its session cookie.
func register(t *testing.T, s *Server, email string) *http.Cookie {
	t.Helper()

	w := doJSON(t, s, http.MethodPost, "/v1/accounts",
		`{"email":"`+email+`","password":"hunter2hunter2","betaKey":"`+testBetaKey+`"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, "register response: %s", w.Body.String())

	cookie := sessionCookieFrom(t, w)
	require.NotNil(t, cookie, "register must set a session cookie")
	return cookie
}

func sessionCookieFrom(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	return nil
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestCreateAccount(t *testing.T) {
	s := setupTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/v1/accounts",
		`{"email":"alice@example.com","password":"hunter2hunter2","betaKey":"`+testBetaKey+`"}`, nil)

	require.Equal(t, http.StatusCreated, w.Code)

	cookie := sessionCookieFrom(t, w)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)

	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", data["email"])
}

func TestCreateAccount_Failures(t *testing.T) {
	s := setupTestServer(t)
	register(t, s, "alice@example.com")

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "wrong beta key",
			body:       `{"email":"bob@example.com","password":"hunter2","betaKey":"nope"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "duplicate email",
			body:       `{"email":"alice@example.com","password":"hunter2","betaKey":"` + testBetaKey + `"}`,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "invalid email",
			body:       `{"email":"nope","password":"hunter2","betaKey":"` + testBetaKey + `"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not json",
			body:       `this is not json`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, s, http.MethodPost, "/v1/accounts", tt.body, nil)
			assert.Equal(t, tt.wantStatus, w.Code, "body: %s", w.Body.String())
			assert.Nil(t, sessionCookieFrom(t, w), "failed registration must not set a cookie")
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := setupTestServer(t)
	register(t, s, "alice@example.com")

	// Login.
	w := doJSON(t, s, http.MethodPost, "/v1/sessions",
		`{"email":"alice@example.com","password":"hunter2hunter2"}`, nil)
	require.Equal(t, http.StatusNoContent, w.Code, "login response: %s", w.Body.String())
	cookie := sessionCookieFrom(t, w)
	require.NotNil(t, cookie)

	// Whoami.
	w = doJSON(t, s, http.MethodGet, "/v1/sessions", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", data["email"])

	// Logout clears the cookie.
	w = doJSON(t, s, http.MethodDelete, "/v1/sessions", "", cookie)
	require.Equal(t, http.StatusNoContent, w.Code)
	cleared := sessionCookieFrom(t, w)
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)

	// The old session no longer authenticates.
	w = doJSON(t, s, http.MethodGet, "/v1/sessions", "", cookie)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLogin_BadCredentials(t *testing.T) {
	s := setupTestServer(t)
	register(t, s, "alice@example.com")

	for _, body := range []string{
		`{"email":"alice@example.com","password":"wrong password"}`,
		`{"email":"nobody@example.com","password":"hunter2hunter2"}`,
	} {
		w := doJSON(t, s, http.MethodPost, "/v1/sessions", body, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Nil(t, sessionCookieFrom(t, w))
	}
}

func TestSessionCookieHandling(t *testing.T) {
	s := setupTestServer(t)

	// No cookie at all.
	w := doJSON(t, s, http.MethodGet, "/v1/sessions", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// A cookie we could never have issued.
	w = doJSON(t, s, http.MethodGet, "/v1/sessions", "", &http.Cookie{
		Name:  auth.SessionCookieName,
		Value: "definitely-not-base64!",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Well-formed but unknown.
	w = doJSON(t, s, http.MethodGet, "/v1/sessions", "", &http.Cookie{
		Name:  auth.SessionCookieName,
		Value: auth.EncodeSessionID(make([]byte, 16)),
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSignalsFlow(t *testing.T) {
	s := setupTestServer(t)
	alice := register(t, s, "alice@example.com")
	bob := register(t, s, "bob@example.com")

	// Alice votes for Quest and against Romance; Bob votes for Quest.
	w := doJSON(t, s, http.MethodPatch, "/v1/signals",
		`{"url":"`+testStoryURL+`","add":["Quest"],"rm":["Romance"]}`, alice)
	require.Equal(t, http.StatusNoContent, w.Code, "patch response: %s", w.Body.String())

	w = doJSON(t, s, http.MethodPatch, "/v1/signals",
		`{"url":"`+testStoryURL+`","add":["Quest"]}`, bob)
	require.Equal(t, http.StatusNoContent, w.Code)

	// Alice sees the aggregate plus her own votes.
	w = doJSON(t, s, http.MethodGet, "/v1/signals?url="+testStoryURL, "", alice)
	require.Equal(t, http.StatusOK, w.Code)

	var authed struct {
		Data SignalsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &authed))
	require.Len(t, authed.Data.Signals, 2)

	quest := authed.Data.Signals[0]
	assert.Equal(t, "Quest", quest.Tag)
	assert.Equal(t, int64(2), quest.SignalsFor)
	require.NotNil(t, quest.Signal)
	assert.True(t, *quest.Signal)

	romance := authed.Data.Signals[1]
	assert.Equal(t, "Romance", romance.Tag)
	assert.Equal(t, int64(1), romance.SignalsAgainst)

	// Anonymous callers see counts but no personal votes.
	w = doJSON(t, s, http.MethodGet, "/v1/signals?url="+testStoryURL, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var anon struct {
		Data SignalsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &anon))
	require.Len(t, anon.Data.Signals, 2)
	for _, sig := range anon.Data.Signals {
		assert.Nil(t, sig.Signal)
	}

	// Erase removes Alice's Quest vote but leaves Bob's.
	w = doJSON(t, s, http.MethodPatch, "/v1/signals",
		`{"url":"`+testStoryURL+`","erase":["Quest","Romance"]}`, alice)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, s, http.MethodGet, "/v1/signals?url="+testStoryURL, "", alice)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &authed))
	require.Len(t, authed.Data.Signals, 1)
	assert.Equal(t, int64(1), authed.Data.Signals[0].SignalsFor)
	assert.Nil(t, authed.Data.Signals[0].Signal)
}

func TestPatchSignals_RequiresSession(t *testing.T) {
	s := setupTestServer(t)

	w := doJSON(t, s, http.MethodPatch, "/v1/signals",
		`{"url":"`+testStoryURL+`","add":["Quest"]}`, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetSignals_RejectsBadCookie(t *testing.T) {
	s := setupTestServer(t)

	// Anonymous is fine, but a present-and-broken cookie is not.
	w := doJSON(t, s, http.MethodGet, "/v1/signals?url="+testStoryURL, "", &http.Cookie{
		Name:  auth.SessionCookieName,
		Value: "garbage!",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchTags(t *testing.T) {
	s := setupTestServer(t)
	alice := register(t, s, "alice@example.com")

	w := doJSON(t, s, http.MethodPatch, "/v1/signals",
		`{"url":"`+testStoryURL+`","add":["fluff","flux"]}`, alice)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, s, http.MethodGet, "/v1/tags?q=flufy", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result struct {
		Data TagSearchResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Data.Tags, 2)
	assert.Equal(t, "fluff", result.Data.Tags[0].Tag)

	// Bad limit values are rejected.
	w = doJSON(t, s, http.MethodGet, "/v1/tags?q=flufy&limit=zero", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetMeta(t *testing.T) {
	s := setupTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/v1/meta?url="+testStoryURL, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "With This Ring")

	w = doJSON(t, s, http.MethodGet, "/v1/meta?url=https://unknown.example.com/", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, s, http.MethodGet, "/v1/meta", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthCheck(t *testing.T) {
	s := setupTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"healthy"`)
}
