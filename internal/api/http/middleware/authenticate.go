package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/avetisk/authgate/internal/api/http/httpctx"
	"github.com/avetisk/authgate/internal/logger"
	"github.com/avetisk/authgate/internal/model"
)

// SessionValidator resolves session tokens to sessions.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (model.Session, error)
}

// Authenticate gates every request. Routes under a public prefix pass
// through untouched (except login pages, which bounce authenticated users
// to the landing route); everything else needs a valid session cookie.
type Authenticate struct {
	sessions       SessionValidator
	ctxMgr         *httpctx.Manager
	cookieName     string
	publicPrefixes []string
	loginPath      string
	landingPath    string
	logger         *logger.Logger
}

func NewAuthenticate(
	sessions SessionValidator,
	ctxMgr *httpctx.Manager,
	cookieName string,
	publicPrefixes []string,
	loginPath string,
	landingPath string,
	logger *logger.Logger,
) *Authenticate {
	return &Authenticate{
		sessions:       sessions,
		ctxMgr:         ctxMgr,
		cookieName:     cookieName,
		publicPrefixes: publicPrefixes,
		loginPath:      loginPath,
		landingPath:    landingPath,
		logger:         logger,
	}
}

// Handler is the middleware entry point.
func (m *Authenticate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		token := m.cookieToken(r)

		if m.isPublic(path) {
			// An authenticated user has no business on the login page.
			if m.isAuthPage(path) && token != "" {
				if _, err := m.sessions.Validate(r.Context(), token); err == nil {
					http.Redirect(w, r, m.landingPath, http.StatusFound)
					return
				}
			}
			next.ServeHTTP(w, r)
			return
		}

		if token == "" {
			m.rejectUnauthenticated(w, r, path)
			return
		}

		session, err := m.sessions.Validate(r.Context(), token)
		switch {
		case err == nil:
			ctx := m.ctxMgr.SetUserID(r.Context(), session.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		case errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrSessionExpired):
			// Stale or forged cookie: drop it and treat the request as
			// unauthenticated rather than as an error.
			m.clearCookie(w)
			m.rejectUnauthenticated(w, r, path)
		default:
			// "Could not check session" is not "no session".
			m.logger.Error("session validation failed", "error", err.Error())
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	})
}

func (m *Authenticate) isPublic(path string) bool {
	for _, prefix := range m.publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (m *Authenticate) isAuthPage(path string) bool {
	return path == m.loginPath || path == "/register"
}

// rejectUnauthenticated redirects browser navigation to the login page with
// the original path preserved, and answers API calls with a bare 401.
func (m *Authenticate) rejectUnauthenticated(w http.ResponseWriter, r *http.Request, originalPath string) {
	if r.Method == http.MethodGet && acceptsHTML(r) {
		target := m.loginPath + "?redirect=" + url.QueryEscape(originalPath)
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"success":false,"message":"not authenticated"}`))
}

func (m *Authenticate) cookieToken(r *http.Request) string {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (m *Authenticate) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func acceptsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
