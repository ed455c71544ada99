package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/careerlens/apiserver/internal/auth"
	"github.com/careerlens/apiserver/internal/services"
	"github.com/careerlens/apiserver/internal/store"
	"github.com/careerlens/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Authenticator resolves bearer tokens to users.
type Authenticator struct {
	users  *services.UserService
	tokens *auth.TokenManager
	responder
}

func NewAuthenticator(users *services.UserService, tokens *auth.TokenManager, logger logrus.FieldLogger) *Authenticator {
	return &Authenticator{users: users, tokens: tokens, responder: responder{logger: logger}}
}

// RequireAuth rejects requests without a valid token for an existing user.
// Websocket upgrades may pass the token as the "token" query parameter.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := a.authenticate(r)
		if err != nil {
			if errors.Is(err, auth.ErrMissingToken) || errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, unauthorizedMessage(err))
				return
			}
			a.fail(w, r, err, "user not found", "failed to authenticate")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

// OptionalAuth attaches the user when a valid token is present and passes
// the request through unchanged otherwise.
func (a *Authenticator) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, err := a.authenticate(r); err == nil {
			r = r.WithContext(withUser(r.Context(), user))
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) authenticate(r *http.Request) (types.User, error) {
	token, err := auth.BearerToken(r)
	if errors.Is(err, auth.ErrMissingToken) && websocket.IsWebSocketUpgrade(r) {
		if q := strings.TrimSpace(r.URL.Query().Get("token")); q != "" {
			token, err = q, nil
		}
	}
	if err != nil {
		return types.User{}, err
	}

	userID, err := a.tokens.Verify(token)
	if err != nil {
		return types.User{}, err
	}
	return a.users.GetByID(r.Context(), userID)
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		return "missing or invalid authorization header"
	case errors.Is(err, store.ErrNotFound):
		return "token user no longer exists"
	default:
		return "invalid or expired token"
	}
}

// RequireRole passes only users with exactly role. It must run after RequireAuth.
func RequireRole(role types.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if err := services.CheckRole(user, role); err != nil {
				writeError(w, http.StatusForbidden, "access denied: "+string(role)+"s only")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuthHandler provides signup, login, and identity endpoints.
type AuthHandler struct {
	users  *services.UserService
	tokens *auth.TokenManager
	responder
}

func NewAuthHandler(users *services.UserService, tokens *auth.TokenManager, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, responder: responder{logger: logger}}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, h *AuthHandler, authn *Authenticator) {
	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)
	r.With(authn.RequireAuth).Get("/me", h.Me)
}

// Signup creates an account and returns a token for it.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	role, ok := types.ParseRole(req.Role)
	if !ok {
		writeError(w, http.StatusBadRequest, "role must be seeker or employer")
		return
	}

	user, err := h.users.Signup(r.Context(), services.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusBadRequest, "user already exists")
			return
		}
		h.fail(w, r, err, "user not found", "unable to create user")
		return
	}

	h.respondWithToken(w, r, http.StatusCreated, user)
}

// Login verifies credentials and returns a token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err, "invalid credentials", "failed to login")
		return
	}

	h.respondWithToken(w, r, http.StatusOK, user)
}

// Me returns the current authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user types.User) {
	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.fail(w, r, err, "user not found", "failed to create token")
		return
	}
	writeJSON(w, status, AuthResponse{Token: token, User: user})
}

// SignupRequest is the signup body. full_name is accepted for older clients.
type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"required"`
}

func (req *SignupRequest) normalize() {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		req.Name = strings.TrimSpace(req.FullName)
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (req *LoginRequest) normalize() {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
}

type AuthResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}
