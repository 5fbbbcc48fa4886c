package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/teamboard/teamboard/database"
	"github.com/teamboard/teamboard/services"
)

// TaskHandler handles task endpoints, including assignment and the embedded
// checklist/tag sub-resources.
type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// Create adds a task to a list. Owner or admin only.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	listID, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid list id", http.StatusBadRequest)
		return
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "Task title is required", http.StatusBadRequest)
		return
	}

	task, err := h.taskService.Create(r.Context(), req.Title, req.Description, listID, actor)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"status": "success",
		"task":   taskPayload(task),
	})
}

// ByList returns a list's tasks. Any member may read.
func (h *TaskHandler) ByList(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	listID, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid list id", http.StatusBadRequest)
		return
	}

	tasks, err := h.taskService.ByList(r.Context(), listID, actor)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"tasks":  taskPayloads(tasks),
	})
}

// Get returns one task. Any member may read.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}

	task, err := h.taskService.Get(r.Context(), id, actor)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"task":   taskPayload(task),
	})
}

// Update edits the task's fields. Owner, admin, or assignee.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Completed   *bool   `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	task, err := h.taskService.Update(r.Context(), id, actor, services.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"task":   taskPayload(task),
	})
}

// Delete removes the task. Owner or admin only.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}

	if err := h.taskService.Delete(r.Context(), id, actor); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// Assign adds a member to the task's assignee set. Owner or admin only.
func (h *TaskHandler) Assign(w http.ResponseWriter, r *http.Request) {
	h.assignment(w, r, h.taskService.Assign)
}

// Unassign removes a member from the task's assignee set. Owner or admin only.
func (h *TaskHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	h.assignment(w, r, h.taskService.Unassign)
}

func (h *TaskHandler) assignment(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, taskID, targetID, actorID uint) (*database.Task, error)) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}

	var req struct {
		UserID uint `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	task, err := op(r.Context(), id, req.UserID, actor)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"task":   taskPayload(task),
	})
}

// AddChecklist appends a checklist. Owner, admin, or assignee.
func (h *TaskHandler) AddChecklist(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	task, err := h.taskService.AddChecklist(r.Context(), id, actor, req.Title)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"status": "success",
		"task":   taskPayload(task),
	})
}

// RenameChecklist retitles a checklist by position.
func (h *TaskHandler) RenameChecklist(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}
	index, ok := pathIndex(r, "index")
	if !ok {
		http.Error(w, "invalid checklist index", http.StatusBadRequest)
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	task, err := h.taskService.RenameChecklist(r.Context(), id, index, actor, req.Title)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"task":   taskPayload(task),
	})
}

// DeleteChecklist removes a checklist by position.
func (h *TaskHandler) DeleteChecklist(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}
	index, ok := pathIndex(r, "index")
	if !ok {
		http.Error(w, "invalid checklist index", http.StatusBadRequest)
		return
	}

	task, err := h.taskService.DeleteChecklist(r.Context(), id, index, actor)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"task":   taskPayload(task),
	})
}

// AddChecklistElement appends an element to a checklist.
func (h *TaskHandler) AddChecklistElement(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}
	index, ok := pathIndex(r, "index")
	if !ok {
		http.Error(w, "invalid checklist index", http.StatusBadRequest)
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	task, err := h.taskService.AddChecklistElement(r.Context(), id, index, actor, req.Title)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"status": "success",
		"task":   taskPayload(task),
	})
}

// UpdateChecklistElement edits an element's title or completed flag.
func (h *TaskHandler) UpdateChecklistElement(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}
	index, ok := pathIndex(r, "index")
	if !ok {
		http.Error(w, "invalid checklist index", http.StatusBadRequest)
		return
	}
	pos, ok := pathIndex(r, "pos")
	if !ok {
		http.Error(w, "invalid element position", http.StatusBadRequest)
		return
	}

	var req struct {
		Title     *string `json:"title"`
		Completed *bool   `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	task, err := h.taskService.UpdateChecklistElement(r.Context(), id, index, pos, actor, req.Title, req.Completed)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"task":   taskPayload(task),
	})
}

// DeleteChecklistElement removes a checklist element.
func (h *TaskHandler) DeleteChecklistElement(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}
	index, ok := pathIndex(r, "index")
	if !ok {
		http.Error(w, "invalid checklist index", http.StatusBadRequest)
		return
	}
	pos, ok := pathIndex(r, "pos")
	if !ok {
		http.Error(w, "invalid element position", http.StatusBadRequest)
		return
	}

	task, err := h.taskService.DeleteChecklistElement(r.Context(), id, index, pos, actor)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"task":   taskPayload(task),
	})
}

// AddTag appends a tag. Owner, admin, or assignee.
func (h *TaskHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}

	var req struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	task, err := h.taskService.AddTag(r.Context(), id, actor, req.Name, req.Color)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"status": "success",
		"task":   taskPayload(task),
	})
}

// UpdateTag edits a tag by position.
func (h *TaskHandler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}
	index, ok := pathIndex(r, "index")
	if !ok {
		http.Error(w, "invalid tag index", http.StatusBadRequest)
		return
	}

	var req struct {
		Name  *string `json:"name"`
		Color *string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	task, err := h.taskService.UpdateTag(r.Context(), id, index, actor, req.Name, req.Color)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"task":   taskPayload(task),
	})
}

// DeleteTag removes a tag by position.
func (h *TaskHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}
	index, ok := pathIndex(r, "index")
	if !ok {
		http.Error(w, "invalid tag index", http.StatusBadRequest)
		return
	}

	task, err := h.taskService.DeleteTag(r.Context(), id, index, actor)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"task":   taskPayload(task),
	})
}
