package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/teamboard/teamboard/services"
)

// GroupHandler handles group lifecycle and membership endpoints.
type GroupHandler struct {
	groupService *services.GroupService
}

func NewGroupHandler(groupService *services.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

// Create makes the actor the owner of a new group.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Group name is required", http.StatusBadRequest)
		return
	}

	group, err := h.groupService.Create(r.Context(), actor, req.Name, req.Description)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"status": "success",
		"group":  group,
	})
}

// List returns every group the actor owns or belongs to.
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}

	groups, err := h.groupService.ListForUser(r.Context(), actor)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"groups": groups,
	})
}

// Get returns one group with expanded member references.
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid group id", http.StatusBadRequest)
		return
	}

	group, err := h.groupService.Get(r.Context(), id, actor)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"group":  groupPayload(group),
	})
}

// Update changes name/description/background. Owner only.
func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid group id", http.StatusBadRequest)
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Background  *string `json:"background"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	group, err := h.groupService.Update(r.Context(), id, actor, services.GroupPatch{
		Name:        req.Name,
		Description: req.Description,
		Background:  req.Background,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"group":  group,
	})
}

// Delete removes the group and everything under it. Owner only.
func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid group id", http.StatusBadRequest)
		return
	}

	if err := h.groupService.Delete(r.Context(), id, actor); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// AddAdmin promotes a member. Owner only.
func (h *GroupHandler) AddAdmin(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid group id", http.StatusBadRequest)
		return
	}

	var req struct {
		UserID uint `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if err := h.groupService.AddAdmin(r.Context(), id, req.UserID, actor); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// RemoveAdmin demotes an admin. Owner only.
func (h *GroupHandler) RemoveAdmin(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid group id", http.StatusBadRequest)
		return
	}
	userID, ok := pathID(r, "userId")
	if !ok {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	if err := h.groupService.RemoveAdmin(r.Context(), id, userID, actor); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// RemoveMember drops a member. Owner only; the owner cannot be removed.
func (h *GroupHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid group id", http.StatusBadRequest)
		return
	}
	userID, ok := pathID(r, "userId")
	if !ok {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	if err := h.groupService.RemoveMember(r.Context(), id, userID, actor); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// AvailableUsers lists users who could still be invited. Owner only.
func (h *GroupHandler) AvailableUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid group id", http.StatusBadRequest)
		return
	}

	users, err := h.groupService.AvailableUsers(r.Context(), id, actor)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"users":  summarize(users),
	})
}
