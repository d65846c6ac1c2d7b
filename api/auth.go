package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/garnizeh/interviewdesk/internal/apperr"
	"github.com/garnizeh/interviewdesk/internal/session"
)

const stateCookie = "idesk_oauth_state"

// Authenticator is the part of the session manager the auth endpoints drive.
type Authenticator interface {
	SignUp(ctx context.Context, name, email, company, password string) (string, *session.Session, error)
	SignIn(ctx context.Context, email, password string) (string, *session.Session, error)
	BeginSignIn(state string) (string, error)
	CompleteSignIn(ctx context.Context, code string) (string, *session.Session, error)
	SignOut(ctx context.Context, token string) error
	SignOutEverywhere(ctx context.Context, email string) error
}

var _ Authenticator = (*session.Manager)(nil)

type AuthHandler struct {
	auth Authenticator
	// secureCookies marks the oauth state cookie Secure.
	secureCookies bool
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(auth Authenticator, secureCookies bool) *AuthHandler {
	return &AuthHandler{auth: auth, secureCookies: secureCookies}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Company  string `json:"company"`
	Password string `json:"password"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token   string           `json:"token"`
	Session *session.Session `json:"session"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decode(r, "", &req); err != nil {
		writeError(w, err)
		return
	}
	tok, s, err := h.auth.SignUp(r.Context(), req.Name, req.Email, req.Company, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: tok, Session: s})
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := decode(r, "", &req); err != nil {
		writeError(w, err)
		return
	}
	tok, s, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: tok, Session: s})
}

// OAuthStart redirects the browser to the identity provider, binding the
// round trip to a state cookie.
func (h *AuthHandler) OAuthStart(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	target, err := h.auth.BeginSignIn(state)
	if err != nil {
		writeError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/v1/auth/oauth",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c, err := r.Cookie(stateCookie)
	if err != nil || c.Value == "" || c.Value != q.Get("state") {
		writeError(w, apperr.New(apperr.KindAuth, "BAD_STATE", "sign-in state does not match"))
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/v1/auth/oauth", MaxAge: -1})

	if e := q.Get("error"); e != "" {
		writeError(w, apperr.New(apperr.KindAuth, "OAUTH_DENIED", "identity provider refused: "+e))
		return
	}
	code := q.Get("code")
	if code == "" {
		writeError(w, badRequest("MISSING_CODE", "authorization code is missing"))
		return
	}
	tok, s, err := h.auth.CompleteSignIn(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: tok, Session: s})
}

func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.SignOut(r.Context(), tokenFrom(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}

// SignoutEverywhere ends every session of the caller, this one included.
func (h *AuthHandler) SignoutEverywhere(w http.ResponseWriter, r *http.Request) {
	s, _ := SessionFrom(r.Context())
	if err := h.auth.SignOutEverywhere(r.Context(), s.Email); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "signed out everywhere"})
}
