package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/DivyanshChaudhary0/Virtual-Study-Group-Platform/internal/api/middleware"
	"github.com/DivyanshChaudhary0/Virtual-Study-Group-Platform/internal/auth"
	"github.com/DivyanshChaudhary0/Virtual-Study-Group-Platform/internal/domain"
	"github.com/DivyanshChaudhary0/Virtual-Study-Group-Platform/internal/storage"
	"github.com/DivyanshChaudhary0/Virtual-Study-Group-Platform/internal/validation"
)

// IdentityHandler handles registration, login, and session introspection.
type IdentityHandler struct {
	store  storage.Storage
	hasher *auth.PasswordHasher
	tokens *auth.TokenService
}

// NewIdentityHandler creates a new IdentityHandler.
func NewIdentityHandler(store storage.Storage, hasher *auth.PasswordHasher, tokens *auth.TokenService) *IdentityHandler {
	return &IdentityHandler{store: store, hasher: hasher, tokens: tokens}
}

// Register creates a new user and returns it together with a session
// token, so a fresh registration does not require a second login call.
func (h *IdentityHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var errs validation.ValidationErrors
	if err := validation.ValidateUserName(req.Name); err != nil {
		errs.Add("name", err.Error())
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		errs.Add("email", err.Error())
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		errs.Add("password", err.Error())
	}
	if errs.HasErrors() {
		respondValidationErrors(w, errs)
		return
	}

	hash, err := h.hasher.Hash(r.Context(), req.Password)
	if err != nil {
		handleError(w, err)
		return
	}

	user := &domain.User{
		ID:           generateID(),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := h.store.CreateUser(r.Context(), user); err != nil {
		handleError(w, err)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, &domain.SessionResponse{User: user, Token: token})
}

// Login verifies credentials and returns a session token. Unknown email
// and wrong password produce the same response so accounts cannot be
// enumerated.
func (h *IdentityHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			handleError(w, domain.ErrInvalidCredentials)
			return
		}
		handleError(w, err)
		return
	}

	ok, err := h.hasher.Verify(r.Context(), req.Password, user.PasswordHash)
	if err != nil {
		handleError(w, err)
		return
	}
	if !ok {
		handleError(w, domain.ErrInvalidCredentials)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &domain.SessionResponse{User: user, Token: token})
}

// Session returns the caller's resolved identity.
func (h *IdentityHandler) Session(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	respondJSON(w, http.StatusOK, user)
}
