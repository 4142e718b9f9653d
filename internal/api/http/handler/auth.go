package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/avetisk/authgate/internal/api/http/httpctx"
	"github.com/avetisk/authgate/internal/logger"
	"github.com/avetisk/authgate/internal/model"
	"github.com/avetisk/authgate/internal/service"
)

// AuthCookieName is the session cookie set on successful verification.
const AuthCookieName = "authToken"

// AuthHandler exposes the OTP and session endpoints.
type AuthHandler struct {
	issuer   *service.Issuer
	auth     *service.Auth
	sessions *service.Session
	users    model.UserStore
	ctxMgr   *httpctx.Manager
	devMode  bool
	logger   *logger.Logger
}

func NewAuthHandler(
	issuer *service.Issuer,
	auth *service.Auth,
	sessions *service.Session,
	users model.UserStore,
	ctxMgr *httpctx.Manager,
	devMode bool,
	logger *logger.Logger,
) *AuthHandler {
	return &AuthHandler{
		issuer:   issuer,
		auth:     auth,
		sessions: sessions,
		users:    users,
		ctxMgr:   ctxMgr,
		devMode:  devMode,
		logger:   logger,
	}
}

type sendCodeRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

type sendCodeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Channel string `json:"channel"`
	DevCode string `json:"devCode,omitempty"`
}

type verifyCodeRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	OTP         string `json:"otp"`
}

type userResponse struct {
	ID          string `json:"id"`
	Phone       string `json:"phone"`
	DisplayName string `json:"displayName,omitempty"`
}

type verifyCodeResponse struct {
	Valid   bool          `json:"valid"`
	Message string        `json:"message"`
	Token   string        `json:"token,omitempty"`
	User    *userResponse `json:"user,omitempty"`
}

type sessionResponse struct {
	Valid     bool          `json:"valid"`
	User      *userResponse `json:"user,omitempty"`
	ExpiresAt time.Time     `json:"expiresAt,omitempty"`
}

// SendCode handles POST /api/v1/auth/send-code.
func (h *AuthHandler) SendCode(w http.ResponseWriter, r *http.Request) {
	var req sendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PhoneNumber == "" {
		writeJSON(w, http.StatusBadRequest, sendCodeResponse{Success: false, Message: "phoneNumber is required"})
		return
	}

	result, err := h.issuer.SendCode(r.Context(), req.PhoneNumber)
	if err != nil {
		h.handleError(w, err)
		return
	}

	resp := sendCodeResponse{
		Success: true,
		Message: "verification code sent",
		Channel: result.Channel,
	}
	if !result.Delivered {
		resp.Message = "verification code issued"
		// The code itself leaves the server only in development posture.
		if h.devMode {
			resp.DevCode = result.Code
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// VerifyCode handles POST /api/v1/auth/verify-code. A matching code logs the
// user in: the session cookie is set here.
func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req verifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PhoneNumber == "" || req.OTP == "" {
		writeJSON(w, http.StatusBadRequest, verifyCodeResponse{Valid: false, Message: "phoneNumber and otp are required"})
		return
	}

	user, session, err := h.auth.Login(r.Context(), req.PhoneNumber, req.OTP)
	if err != nil {
		h.handleError(w, err)
		return
	}

	http.SetCookie(w, sessionCookie(session.Token, int(model.SessionDuration.Seconds())))

	writeJSON(w, http.StatusOK, verifyCodeResponse{
		Valid:   true,
		Message: "authenticated",
		Token:   session.Token,
		User:    toUserResponse(user),
	})
}

// Logout handles POST /api/v1/auth/logout. The cookie is cleared whether or
// not a session existed server-side.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(AuthCookieName); err == nil && cookie.Value != "" {
		if session, err := h.sessions.Validate(r.Context(), cookie.Value); err == nil {
			if err := h.auth.Logout(r.Context(), session.UserID); err != nil {
				h.logger.Error("failed to destroy session on logout", "error", err.Error())
			}
		}
	}

	http.SetCookie(w, sessionCookie("", -1))
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Session handles GET /api/v1/session for the authenticated user.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.ctxMgr.GetUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, sessionResponse{Valid: false})
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	cookie, err := r.Cookie(AuthCookieName)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, sessionResponse{Valid: false})
		return
	}
	session, err := h.sessions.Validate(r.Context(), cookie.Value)
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Valid:     true,
		User:      toUserResponse(user),
		ExpiresAt: session.ExpiresAt,
	})
}

// Health handles GET /api/v1/auth/health.
func (h *AuthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     AuthCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func toUserResponse(user model.User) *userResponse {
	return &userResponse{
		ID:          user.ID.String(),
		Phone:       user.Phone,
		DisplayName: user.DisplayName,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *AuthHandler) handleError(w http.ResponseWriter, err error) {
	writeError(w, err, h.logger)
}
