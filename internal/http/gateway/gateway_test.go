package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dropDatabas3/authgate/internal/cache/cachetest"
	"github.com/dropDatabas3/authgate/internal/jwt"
	"github.com/dropDatabas3/authgate/internal/revocation"
	"github.com/dropDatabas3/authgate/internal/session"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func testLifetimes() map[jwt.Purpose]time.Duration {
	return map[jwt.Purpose]time.Duration{
		jwt.PurposeAccess:       time.Minute,
		jwt.PurposeRefresh:      time.Hour,
		jwt.PurposeVerification: 10 * time.Minute,
	}
}

type fixture struct {
	spy        *cachetest.Spy
	sessions   *session.Manager
	handler    http.Handler
	nextCalled bool
	principal  *Principal
	authReq    *AuthenticationRequest
}

func newFixture(t *testing.T, enforceWhitelist bool) *fixture {
	t.Helper()
	engine, err := jwt.NewEngine(jwt.Config{Key: testKey, Lifetimes: testLifetimes()})
	require.NoError(t, err)
	paths, err := NewPathSet(Paths{
		Public:       []string{"/v1/auth/login", "/healthz"},
		Logout:       []string{"/v1/auth/logout"},
		Refresh:      []string{"/v1/auth/refresh"},
		Verification: []string{"/v1/auth/password/reset"},
	})
	require.NoError(t, err)

	f := &fixture{spy: cachetest.NewSpy()}
	f.sessions = session.NewManager(engine, revocation.New(f.spy, 0))
	c := NewClassifier(Config{Paths: paths, Sessions: f.sessions, EnforceWhitelist: enforceWhitelist})
	f.handler = c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.nextCalled = true
		f.principal, _ = PrincipalFrom(r.Context())
		f.authReq, _ = AuthRequestFrom(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))
	return f
}

func (f *fixture) do(method, path, bearer string) *httptest.ResponseRecorder {
	f.nextCalled, f.principal, f.authReq = false, nil, nil
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) issue(t *testing.T, p jwt.Purpose) jwt.Token {
	t.Helper()
	tok, err := f.sessions.Engine().Issue("sub-1", p, []string{"USER"})
	require.NoError(t, err)
	return tok
}

func decodeDetails(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env struct {
		Details map[string]any `json:"details"`
		Status  int            `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, rec.Code, env.Status)
	return env.Details
}

func TestPathSet(t *testing.T) {
	s, err := NewPathSet(Paths{Public: []string{"/a/"}, Refresh: []string{"b"}})
	require.NoError(t, err)
	require.Equal(t, CategoryPublic, s.Categorize("/a"))
	require.Equal(t, CategoryPublic, s.Categorize("/a/"))
	require.Equal(t, CategoryRefresh, s.Categorize("/b"))
	require.Equal(t, CategoryProtected, s.Categorize("/a/b"))

	_, err = NewPathSet(Paths{Public: []string{"/x"}, Logout: []string{"/x/"}})
	require.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	cases := map[string]bool{
		"":              false,
		"Bearer":        false,
		"Bearer ":       false,
		"Basic abc":     false,
		"Bearer a b":    false,
		"Bearer abc":    true,
		"bearer abc":    true,
		"  Bearer abc ": true,
	}
	for h, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", h)
		_, ok := bearerToken(req)
		require.Equal(t, want, ok, "header %q", h)
	}
}

func TestPublicPassesWithoutToken(t *testing.T) {
	f := newFixture(t, false)
	rec := f.do(http.MethodPost, "/v1/auth/login/", "garbage")
	require.Equal(t, http.StatusTeapot, rec.Code)
	require.Zero(t, f.spy.Calls())
}

func TestProtected_AnonymousWhenMissingOrInvalid(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(http.MethodGet, "/v1/me", "")
	require.Equal(t, http.StatusTeapot, rec.Code)
	require.Nil(t, f.principal)

	rec = f.do(http.MethodGet, "/v1/me", "not.a.jwt")
	require.Equal(t, http.StatusTeapot, rec.Code)
	require.Nil(t, f.principal)

	// REFRESH en un path protegido no autentica.
	rec = f.do(http.MethodGet, "/v1/me", f.issue(t, jwt.PurposeRefresh).Raw)
	require.Equal(t, http.StatusTeapot, rec.Code)
	require.Nil(t, f.principal)
}

func TestProtected_AccessSetsPrincipal(t *testing.T) {
	f := newFixture(t, false)
	tok := f.issue(t, jwt.PurposeAccess)

	rec := f.do(http.MethodGet, "/v1/me", tok.Raw)
	require.Equal(t, http.StatusTeapot, rec.Code)
	require.NotNil(t, f.principal)
	require.Equal(t, "sub-1", f.principal.Subject)
	require.True(t, f.principal.HasRole("user"))
	require.Equal(t, tok.JTI, f.principal.JTI)
	require.Zero(t, f.spy.Calls())
}

func TestActionPaths_FailClosed(t *testing.T) {
	f := newFixture(t, false)
	for _, path := range []string{"/v1/auth/logout", "/v1/auth/refresh", "/v1/auth/password/reset"} {
		rec := f.do(http.MethodPost, path, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
		require.False(t, f.nextCalled)
		require.Equal(t, "INVALID_TOKEN", decodeDetails(t, rec)["code"])
	}
}

func TestExpiredTokenIsGeneric401(t *testing.T) {
	f := newFixture(t, false)
	past, err := jwt.NewEngine(jwt.Config{
		Key:       testKey,
		Lifetimes: testLifetimes(),
		Now:       func() time.Time { return time.Now().Add(-2 * time.Hour) },
	})
	require.NoError(t, err)
	expired, err := past.Issue("sub-1", jwt.PurposeRefresh, nil)
	require.NoError(t, err)

	rec := f.do(http.MethodPost, "/v1/auth/refresh", expired.Raw)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "INVALID_TOKEN", decodeDetails(t, rec)["code"])
	require.NotContains(t, strings.ToLower(rec.Body.String()), "expired")
}

func TestRefresh_AccessTokenRejectedWithoutRegistryCall(t *testing.T) {
	f := newFixture(t, false)
	rec := f.do(http.MethodPost, "/v1/auth/refresh", f.issue(t, jwt.PurposeAccess).Raw)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Zero(t, f.spy.Calls())
}

func TestRefresh_SingleUse(t *testing.T) {
	f := newFixture(t, true)
	pair, err := f.sessions.IssuePair(context.Background(), "sub-1", []string{"USER"})
	require.NoError(t, err)

	rec := f.do(http.MethodPost, "/v1/auth/refresh", pair.RefreshToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	details := decodeDetails(t, rec)
	require.NotEmpty(t, details["accessToken"])
	require.NotEmpty(t, details["refreshToken"])
	require.False(t, f.nextCalled)

	rec = f.do(http.MethodPost, "/v1/auth/refresh", pair.RefreshToken)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// El refresh nuevo sí sirve.
	rec = f.do(http.MethodPost, "/v1/auth/refresh", details["refreshToken"].(string))
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestRefresh_EnforceWhitelistRejectsUnknown(t *testing.T) {
	f := newFixture(t, true)
	rec := f.do(http.MethodPost, "/v1/auth/refresh", f.issue(t, jwt.PurposeRefresh).Raw)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout(t *testing.T) {
	f := newFixture(t, false)
	refresh := f.issue(t, jwt.PurposeRefresh)

	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/v1/auth/logout", refresh.Raw).Code)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/v1/auth/logout", refresh.Raw).Code)
	require.False(t, f.nextCalled)

	// Después del logout el refresh ya no rota.
	require.Equal(t, http.StatusUnauthorized, f.do(http.MethodPost, "/v1/auth/refresh", refresh.Raw).Code)
}

func TestLogout_WrongPurposeNoRegistryCall(t *testing.T) {
	f := newFixture(t, false)
	rec := f.do(http.MethodPost, "/v1/auth/logout", f.issue(t, jwt.PurposeAccess).Raw)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Zero(t, f.spy.Calls())
}

func TestVerification(t *testing.T) {
	f := newFixture(t, false)
	tok := f.issue(t, jwt.PurposeVerification)

	rec := f.do(http.MethodPost, "/v1/auth/password/reset", tok.Raw)
	require.Equal(t, http.StatusTeapot, rec.Code)
	require.NotNil(t, f.authReq)
	require.Equal(t, tok.Raw, f.authReq.RawToken)
	require.Equal(t, tok.JTI, f.authReq.JTI)
	require.Equal(t, "/v1/auth/password/reset", f.authReq.Path)

	rec = f.do(http.MethodPost, "/v1/auth/password/reset", f.issue(t, jwt.PurposeAccess).Raw)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, f.nextCalled)
}

func TestRegistryDown_Is500(t *testing.T) {
	f := newFixture(t, false)
	refresh := f.issue(t, jwt.PurposeRefresh)
	f.spy.SetFail(true)

	rec := f.do(http.MethodPost, "/v1/auth/logout", refresh.Raw)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "REGISTRY_UNAVAILABLE", decodeDetails(t, rec)["code"])

	rec = f.do(http.MethodPost, "/v1/auth/refresh", refresh.Raw)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
