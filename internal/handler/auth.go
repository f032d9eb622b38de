package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/devconnector/internal/auth"
	"github.com/sakif/devconnector/internal/service"
)

// stateCookie holds the OAuth state between the redirect to GitHub and the
// callback.
const stateCookie = "oauth_state"

// GitHubSignIn is the OAuth side of GitHub sign-in. *auth.GitHubProvider
// implements it.
type GitHubSignIn interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GitHubUser, error)
}

// AuthHandler serves registration, password login, GitHub sign-in and the
// current-user lookup.
type AuthHandler struct {
	auth   *service.AuthService
	github GitHubSignIn // nil when GitHub sign-in is not configured
	logger *slog.Logger
}

func NewAuthHandler(authSvc *service.AuthService, github GitHubSignIn, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   authSvc,
		github: github,
		logger: logger,
	}
}

// HandleRegister creates an account and returns its token.
//
// HTTP: POST /api/users  {"name", "email", "password"} → {"token"}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.auth.Register(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{Token: res.Token})
}

// HandleLogin checks a password and returns a token.
//
// HTTP: POST /api/auth  {"email", "password"} → {"token"}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.auth.Login(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{Token: res.Token})
}

// HandleMe returns the signed-in user without the credential hash.
//
// HTTP: GET /api/auth
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	user, err := h.auth.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleGitHubLogin redirects the browser to GitHub's consent page. A random
// state goes into a short-lived cookie and must come back on the callback.
//
// HTTP: GET /api/auth/github/login
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback finishes GitHub sign-in: it checks the state, trades
// the code for the GitHub user, signs the matching account in and returns
// the token both as JSON and as the "token" cookie.
//
// HTTP: GET /api/auth/github/callback?code=...&state=...
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	c, err := r.Cookie(stateCookie)
	if err != nil || c.Value == "" || q.Get("state") != c.Value {
		h.logger.Warn("github callback: state mismatch")
		writeJSON(w, http.StatusBadRequest, MessageResponse{Msg: "Invalid OAuth state"})
		return
	}

	// single use
	http.SetCookie(w, &http.Cookie{
		Name:   stateCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if e := q.Get("error"); e != "" {
		h.logger.Info("github callback: authorization denied", slog.String("error", e))
		writeJSON(w, http.StatusUnauthorized, MessageResponse{Msg: "GitHub authorization denied"})
		return
	}

	code := q.Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, MessageResponse{Msg: "Missing OAuth code"})
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("github callback: exchange failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, MessageResponse{Msg: "GitHub sign-in failed"})
		return
	}

	res, err := h.auth.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieToken,
		Value:    res.Token,
		Path:     "/",
		MaxAge:   int(h.auth.TokenTTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, TokenResponse{Token: res.Token})
}

// HandleLogout clears the token cookie. Bearer tokens held by the client
// stay valid until they expire.
//
// HTTP: POST /api/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieToken,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, MessageResponse{Msg: "Logged out"})
}
