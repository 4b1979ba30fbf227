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

// GroupHandler handles group endpoints.
type GroupHandler struct {
	store storage.Storage
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(store storage.Storage) *GroupHandler {
	return &GroupHandler{store: store}
}

// Create creates a new group owned by the caller.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	var req domain.CreateGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var errs validation.ValidationErrors
	if err := validation.ValidateGroupName(req.Name); err != nil {
		errs.Add("name", err.Error())
	}
	if err := validation.ValidateGroupSubject(req.Subject); err != nil {
		errs.Add("subject", err.Error())
	}
	if errs.HasErrors() {
		respondValidationErrors(w, errs)
		return
	}

	group := &domain.Group{
		ID:          generateID(),
		Name:        strings.TrimSpace(req.Name),
		Subject:     strings.TrimSpace(req.Subject),
		Description: strings.TrimSpace(req.Description),
		AuthorID:    user.ID,
		Members:     []string{},
		CreatedAt:   time.Now(),
	}

	if err := h.store.CreateGroup(r.Context(), group); err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, group)
}

// List lists all groups, newest first. Public.
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.store.ListGroups(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, groups)
}

// Get returns a single group by ID. Public.
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	group, err := h.store.GetGroup(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, group)
}

// Join adds the caller to the group's member set. The insert is a
// single atomic conditional update in the store; a repeat join is
// rejected with a conflict and leaves the set unchanged.
func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.store.AddGroupMember(r.Context(), id, user.ID); err != nil {
		handleError(w, err)
		return
	}

	group, err := h.store.GetGroup(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, group)
}

// Delete deletes a group and cascades to its posts. Owner only.
func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	group, err := h.store.GetGroup(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	if group.AuthorID != user.ID {
		handleError(w, domain.ErrNotOwner)
		return
	}

	if err := h.store.DeleteGroup(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
