package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/avetisk/authgate/internal/api/http/httpctx"
	"github.com/avetisk/authgate/internal/model"
	"github.com/avetisk/authgate/internal/testutil"
)

type sessionValidatorMock struct {
	mock.Mock
}

func (m *sessionValidatorMock) Validate(ctx context.Context, token string) (model.Session, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(model.Session), args.Error(1)
}

const testCookieName = "authToken"

func newTestAuthenticate(sessions SessionValidator, ctxMgr *httpctx.Manager) *Authenticate {
	return NewAuthenticate(
		sessions,
		ctxMgr,
		testCookieName,
		[]string{"/api/v1/auth", "/login", "/register", "/metrics"},
		"/login",
		"/chat",
		testutil.MakeNoopLogger(),
	)
}

func withCookie(r *http.Request, token string) *http.Request {
	r.AddCookie(&http.Cookie{Name: testCookieName, Value: token})
	return r
}

func TestAuthenticate_PublicRoutePassesWithoutCookie(t *testing.T) {
	t.Parallel()

	sessions := &sessionValidatorMock{}
	mw := newTestAuthenticate(sessions, httpctx.NewManager())

	called := false
	h := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/send-code", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	sessions.AssertNotCalled(t, "Validate")
}

func TestAuthenticate_ProtectedBrowserRequestRedirectsToLogin(t *testing.T) {
	t.Parallel()

	sessions := &sessionValidatorMock{}
	mw := newTestAuthenticate(sessions, httpctx.NewManager())

	h := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/settings/profile", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?redirect=%2Fsettings%2Fprofile", rec.Header().Get("Location"))
}

func TestAuthenticate_ProtectedAPIRequestGets401(t *testing.T) {
	t.Parallel()

	sessions := &sessionValidatorMock{}
	mw := newTestAuthenticate(sessions, httpctx.NewManager())

	h := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/refresh", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"not authenticated"}`, rec.Body.String())
}

func TestAuthenticate_StaleCookieClearedAndRedirected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
	}{
		{name: "unknown token", err: model.ErrNotFound},
		{name: "expired session", err: model.ErrSessionExpired},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sessions := &sessionValidatorMock{}
			sessions.On("Validate", mock.Anything, "stale").Return(model.Session{}, tt.err)
			mw := newTestAuthenticate(sessions, httpctx.NewManager())

			h := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler must not run")
			}))

			req := withCookie(httptest.NewRequest(http.MethodGet, "/settings", nil), "stale")
			req.Header.Set("Accept", "text/html")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/login?redirect=%2Fsettings", rec.Header().Get("Location"))

			cookies := rec.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.Equal(t, testCookieName, cookies[0].Name)
			assert.Empty(t, cookies[0].Value)
			assert.Negative(t, cookies[0].MaxAge)
		})
	}
}

func TestAuthenticate_StorageErrorIs500Not401(t *testing.T) {
	t.Parallel()

	sessions := &sessionValidatorMock{}
	sessions.On("Validate", mock.Anything, "token").
		Return(model.Session{}, model.ErrStorage)
	mw := newTestAuthenticate(sessions, httpctx.NewManager())

	h := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := withCookie(httptest.NewRequest(http.MethodGet, "/settings", nil), "token")
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))
	assert.Empty(t, rec.Result().Cookies())
}

func TestAuthenticate_ValidSessionSetsUserID(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	ctxMgr := httpctx.NewManager()

	sessions := &sessionValidatorMock{}
	sessions.On("Validate", mock.Anything, "token").Return(model.Session{
		Token:     "token",
		UserID:    userID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)
	mw := newTestAuthenticate(sessions, ctxMgr)

	var gotID uuid.UUID
	var gotOK bool
	h := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, gotOK = ctxMgr.GetUserID(r.Context())
	}))

	req := withCookie(httptest.NewRequest(http.MethodGet, "/api/v1/session", nil), "token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotOK)
	assert.Equal(t, userID, gotID)
}

func TestAuthenticate_AuthenticatedUserBouncedOffLoginPage(t *testing.T) {
	t.Parallel()

	sessions := &sessionValidatorMock{}
	sessions.On("Validate", mock.Anything, "token").Return(model.Session{
		Token:  "token",
		UserID: uuid.New(),
	}, nil)
	mw := newTestAuthenticate(sessions, httpctx.NewManager())

	h := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("login page must not render for authenticated user")
	}))

	req := withCookie(httptest.NewRequest(http.MethodGet, "/login", nil), "token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/chat", rec.Header().Get("Location"))
}

func TestAuthenticate_LoginPageRendersForAnonymous(t *testing.T) {
	t.Parallel()

	sessions := &sessionValidatorMock{}
	mw := newTestAuthenticate(sessions, httpctx.NewManager())

	called := false
	h := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

	assert.True(t, called)
	sessions.AssertNotCalled(t, "Validate")
}

func TestAuthenticate_LoginPageWithBrokenCookieStillRenders(t *testing.T) {
	t.Parallel()

	sessions := &sessionValidatorMock{}
	sessions.On("Validate", mock.Anything, "stale").Return(model.Session{}, model.ErrNotFound)
	mw := newTestAuthenticate(sessions, httpctx.NewManager())

	called := false
	h := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := withCookie(httptest.NewRequest(http.MethodGet, "/login", nil), "stale")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}
