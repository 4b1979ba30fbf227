package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/DivyanshChaudhary0/Virtual-Study-Group-Platform/internal/api/middleware"
	"github.com/DivyanshChaudhary0/Virtual-Study-Group-Platform/internal/domain"
	"github.com/DivyanshChaudhary0/Virtual-Study-Group-Platform/internal/storage"
	"github.com/DivyanshChaudhary0/Virtual-Study-Group-Platform/internal/validation"
)

// PostHandler handles post endpoints.
type PostHandler struct {
	store storage.Storage
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(store storage.Storage) *PostHandler {
	return &PostHandler{store: store}
}

// requireMember checks that the caller belongs to the group. Returns
// false after writing the error response when the check fails.
func (h *PostHandler) requireMember(w http.ResponseWriter, r *http.Request, groupID string) bool {
	user := middleware.UserFromContext(r.Context())

	member, err := h.store.IsGroupMember(r.Context(), groupID, user.ID)
	if err != nil {
		handleError(w, err)
		return false
	}
	if !member {
		handleError(w, domain.ErrNotMember)
		return false
	}
	return true
}

// Create creates a post in the group. Members only; the post's author
// name is taken from the resolved identity, never from the request body.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")
	if !h.requireMember(w, r, groupID) {
		return
	}

	var req domain.CreatePostRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validation.ValidatePostText(req.Text); err != nil {
		var errs validation.ValidationErrors
		errs.Add("text", err.Error())
		respondValidationErrors(w, errs)
		return
	}

	user := middleware.UserFromContext(r.Context())
	now := time.Now()
	post := &domain.Post{
		ID:         generateID(),
		Text:       strings.TrimSpace(req.Text),
		AuthorName: user.Name,
		GroupID:    groupID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.store.CreatePost(r.Context(), post); err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, post)
}

// List lists the group's posts, newest first. Members only.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")
	if !h.requireMember(w, r, groupID) {
		return
	}

	posts, err := h.store.ListPostsByGroup(r.Context(), groupID)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

// Update edits a post's text. Author only.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	post, err := h.store.GetPost(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	if post.AuthorName != user.Name {
		handleError(w, domain.ErrNotAuthor)
		return
	}

	var req domain.UpdatePostRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validation.ValidatePostText(req.Text); err != nil {
		var errs validation.ValidationErrors
		errs.Add("text", err.Error())
		respondValidationErrors(w, errs)
		return
	}

	updated, err := h.store.UpdatePostText(r.Context(), id, strings.TrimSpace(req.Text))
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// Delete deletes a post. Author only.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	post, err := h.store.GetPost(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	if post.AuthorName != user.Name {
		handleError(w, domain.ErrNotAuthor)
		return
	}

	if err := h.store.DeletePost(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
