package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/teamboard/teamboard/services"
)

// InvitationHandler handles the invite workflow endpoints.
type InvitationHandler struct {
	invitationService *services.InvitationService
}

func NewInvitationHandler(invitationService *services.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService}
}

// Send creates a pending invitation. Group owner only.
func (h *InvitationHandler) Send(w http.ResponseWriter, r *http.Request) {
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
		ReceiverID uint `json:"receiverId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	inv, err := h.invitationService.Send(r.Context(), groupID, req.ReceiverID, actor)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"status":     "success",
		"invitation": inv,
	})
}

// List returns the invitations addressed to the actor.
func (h *InvitationHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}

	invs, err := h.invitationService.ListForUser(r.Context(), actor)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":      "success",
		"invitations": invs,
	})
}

// Accept joins the actor to the inviting group.
func (h *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid invitation id", http.StatusBadRequest)
		return
	}

	inv, err := h.invitationService.Accept(r.Context(), id, actor)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"invitation": inv,
	})
}

// Reject declines the invitation without joining.
func (h *InvitationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid invitation id", http.StatusBadRequest)
		return
	}

	inv, err := h.invitationService.Reject(r.Context(), id, actor)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"invitation": inv,
	})
}
