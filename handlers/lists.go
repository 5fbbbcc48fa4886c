package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/teamboard/teamboard/services"
)

// ListHandler handles list endpoints.
type ListHandler struct {
	listService *services.ListService
}

func NewListHandler(listService *services.ListService) *ListHandler {
	return &ListHandler{listService: listService}
}

// Create adds a list to a group. Owner or admin only.
func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	groupID, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid group id", http.StatusBadRequest)
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "List title is required", http.StatusBadRequest)
		return
	}

	list, err := h.listService.Create(r.Context(), req.Title, groupID, actor)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"status": "success",
		"list":   list,
	})
}

// ByGroup returns a group's lists. Any member may read.
func (h *ListHandler) ByGroup(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	groupID, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid group id", http.StatusBadRequest)
		return
	}

	lists, err := h.listService.ByGroup(r.Context(), groupID, actor)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"lists":  lists,
	})
}

// Get returns one list. Any member may read.
func (h *ListHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid list id", http.StatusBadRequest)
		return
	}

	list, err := h.listService.Get(r.Context(), id, actor)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"list":   list,
	})
}

// Update renames a list. Owner or admin only.
func (h *ListHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid list id", http.StatusBadRequest)
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "List title is required", http.StatusBadRequest)
		return
	}

	list, err := h.listService.Update(r.Context(), id, req.Title, actor)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"list":   list,
	})
}

// Delete removes a list and its tasks. Owner or admin only.
func (h *ListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid list id", http.StatusBadRequest)
		return
	}

	if err := h.listService.Delete(r.Context(), id, actor); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
