package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/teamboard/teamboard/database"
	"github.com/teamboard/teamboard/services"
)

// UserSummary is the projection used for user references in responses.
type UserSummary struct {
	ID          uint   `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

func summarize(users []database.User) []UserSummary {
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, UserSummary{ID: u.ID, DisplayName: u.DisplayName, Email: u.Email})
	}
	return out
}

// groupPayload expands owner/members/admins references into summaries.
func groupPayload(g *database.Group) map[string]any {
	return map[string]any{
		"id":          g.ID,
		"name":        g.Name,
		"description": g.Description,
		"background":  g.Background,
		"owner":       UserSummary{ID: g.Owner.ID, DisplayName: g.Owner.DisplayName, Email: g.Owner.Email},
		"members":     summarize(g.Members),
		"admins":      summarize(g.Admins),
		"lists":       g.Lists,
		"createdAt":   g.CreatedAt,
	}
}

// taskPayload expands assignee references into summaries.
func taskPayload(t *database.Task) map[string]any {
	return map[string]any{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"completed":   t.Completed,
		"listId":      t.ListID,
		"assignedTo":  summarize(t.AssignedTo),
		"checklists":  t.Checklists,
		"tags":        t.Tags,
		"createdAt":   t.CreatedAt,
		"updatedAt":   t.UpdatedAt,
	}
}

func taskPayloads(tasks []database.Task) []map[string]any {
	out := make([]map[string]any, 0, len(tasks))
	for i := range tasks {
		out = append(out, taskPayload(&tasks[i]))
	}
	return out
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError maps the service error taxonomy onto HTTP status codes. The
// message propagates unchanged; unknown errors become opaque 500s.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch services.KindOf(err) {
	case services.KindNotFound:
		status, message = http.StatusNotFound, err.Error()
	case services.KindForbidden:
		status, message = http.StatusForbidden, err.Error()
	case services.KindConflict:
		status, message = http.StatusConflict, err.Error()
	case services.KindBadRequest:
		status, message = http.StatusBadRequest, err.Error()
	case services.KindUnauthorized:
		status, message = http.StatusUnauthorized, err.Error()
	default:
		log.Printf("internal error: %v", err)
	}

	respondJSON(w, status, map[string]string{"error": message})
}

// pathID parses a numeric path variable.
func pathID(r *http.Request, name string) (uint, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// pathIndex parses a zero-based position path variable.
func pathIndex(r *http.Request, name string) (int, bool) {
	raw := mux.Vars(r)[name]
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}
