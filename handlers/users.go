package handlers

import (
	"net/http"

	"github.com/teamboard/teamboard/services"
)

// UserHandler handles block management and the actor's assigned-task view.
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Block adds the target user to the actor's block list.
func (h *UserHandler) Block(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	target, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	if err := h.userService.Block(r.Context(), actor, target); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// Unblock removes the target user from the actor's block list.
func (h *UserHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	target, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	if err := h.userService.Unblock(r.Context(), actor, target); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// MyTasks returns the tasks currently assigned to the actor.
func (h *UserHandler) MyTasks(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}

	tasks, err := h.userService.AssignedTasks(r.Context(), actor)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"tasks":  tasks,
	})
}
