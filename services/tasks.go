package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/teamboard/teamboard/database"
)

// TaskPatch carries the editable task fields. Nil means unchanged.
// Assignees may apply any of these; assignment itself is managed separately
// and is owner/admin only.
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
}

// TaskService wraps task CRUD, assignment and the embedded checklist/tag
// sub-resources.
type TaskService struct {
	taskRepo  *database.TaskRepository
	listRepo  *database.ListRepository
	groupRepo *database.GroupRepository
	userRepo  *database.UserRepository
	auditor   *Auditor
}

func NewTaskService(taskRepo *database.TaskRepository, listRepo *database.ListRepository, groupRepo *database.GroupRepository, userRepo *database.UserRepository, auditor *Auditor) *TaskService {
	return &TaskService{taskRepo: taskRepo, listRepo: listRepo, groupRepo: groupRepo, userRepo: userRepo, auditor: auditor}
}

// Create adds a task to a list. Titles must be unique within the list at
// creation time.
func (s *TaskService) Create(ctx context.Context, title, description string, listID, actorID uint) (*database.Task, error) {
	list, group, err := s.loadListAndGroup(ctx, listID)
	if err != nil {
		return nil, err
	}
	if !IsOwnerOrAdmin(group, actorID) {
		return nil, errForbidden("only the group owner or an admin may create tasks")
	}

	_, err = s.taskRepo.FindByListAndTitle(ctx, listID, title)
	switch {
	case err == nil:
		return nil, errConflict("a task titled %q already exists in this list", title)
	case !errors.Is(err, database.ErrNotFound):
		return nil, fmt.Errorf("find task by title: %w", err)
	}

	task := database.Task{Title: title, Description: description, ListID: list.ID}
	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}

	s.auditor.Record(database.AuditCreate, "task", task.ID, actorID,
		fmt.Sprintf("created task %q in list %d", title, listID))
	return &task, nil
}

// Get returns one task with assignees loaded. Any group member may read.
func (s *TaskService) Get(ctx context.Context, taskID, actorID uint) (*database.Task, error) {
	task, _, group, err := s.loadTaskChain(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !IsMember(group, actorID) {
		return nil, errForbidden("only group members may view tasks")
	}
	return task, nil
}

// ByList returns the list's tasks. Any group member may read.
func (s *TaskService) ByList(ctx context.Context, listID, actorID uint) ([]database.Task, error) {
	_, group, err := s.loadListAndGroup(ctx, listID)
	if err != nil {
		return nil, err
	}
	if !IsMember(group, actorID) {
		return nil, errForbidden("only group members may view tasks")
	}
	return s.taskRepo.ListByList(ctx, listID)
}

// Update edits title, description or the completed flag. Owner, admin, or
// an assignee of this task.
func (s *TaskService) Update(ctx context.Context, taskID, actorID uint, patch TaskPatch) (*database.Task, error) {
	task, err := s.loadForEdit(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}

	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}

	s.auditor.Record(database.AuditUpdate, "task", task.ID, actorID, "updated task")
	return task, nil
}

// Delete removes the task and its assignment rows. Owner or admin only;
// assignees may edit but not delete.
func (s *TaskService) Delete(ctx context.Context, taskID, actorID uint) error {
	task, _, group, err := s.loadTaskChain(ctx, taskID)
	if err != nil {
		return err
	}
	if !IsOwnerOrAdmin(group, actorID) {
		return errForbidden("only the group owner or an admin may delete tasks")
	}

	if err := s.taskRepo.DeleteCascade(ctx, task); err != nil {
		return err
	}

	s.auditor.Record(database.AuditDelete, "task", taskID, actorID, fmt.Sprintf("deleted task %q", task.Title))
	return nil
}

// Assign adds a group member to the task's assignee set. Owner or admin
// only, and only for members of the task's group.
func (s *TaskService) Assign(ctx context.Context, taskID, targetID, actorID uint) (*database.Task, error) {
	task, _, group, err := s.loadTaskChain(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !IsOwnerOrAdmin(group, actorID) {
		return nil, errForbidden("only the group owner or an admin may assign tasks")
	}

	target, err := s.userRepo.FindByID(ctx, targetID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, errNotFound("user %d not found", targetID)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !IsMember(group, targetID) {
		return nil, errForbidden("user %d is not a member of the task's group", targetID)
	}
	if IsAssignee(task, targetID) {
		return nil, errConflict("user %d is already assigned to this task", targetID)
	}

	if err := s.taskRepo.Assign(ctx, task, target); err != nil {
		return nil, err
	}

	s.auditor.Record(database.AuditUpdate, "task", taskID, actorID, fmt.Sprintf("assigned user %d", targetID))
	return s.taskRepo.FindByID(ctx, taskID)
}

// Unassign removes a user from the task's assignee set. Same authorization
// as Assign.
func (s *TaskService) Unassign(ctx context.Context, taskID, targetID, actorID uint) (*database.Task, error) {
	task, _, group, err := s.loadTaskChain(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !IsOwnerOrAdmin(group, actorID) {
		return nil, errForbidden("only the group owner or an admin may unassign tasks")
	}

	target, err := s.userRepo.FindByID(ctx, targetID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, errNotFound("user %d not found", targetID)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !IsAssignee(task, targetID) {
		return nil, errConflict("user %d is not assigned to this task", targetID)
	}

	if err := s.taskRepo.Unassign(ctx, task, target); err != nil {
		return nil, err
	}

	s.auditor.Record(database.AuditUpdate, "task", taskID, actorID, fmt.Sprintf("unassigned user %d", targetID))
	return s.taskRepo.FindByID(ctx, taskID)
}

// AddChecklist appends an empty checklist to the task.
func (s *TaskService) AddChecklist(ctx context.Context, taskID, actorID uint, title string) (*database.Task, error) {
	task, err := s.loadForEdit(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}

	task.Checklists = append(task.Checklists, database.Checklist{Title: title})
	return s.saveEdited(ctx, task, actorID, fmt.Sprintf("added checklist %q", title))
}

// RenameChecklist changes a checklist's title, addressed by position.
func (s *TaskService) RenameChecklist(ctx context.Context, taskID uint, index int, actorID uint, title string) (*database.Task, error) {
	task, err := s.loadForEdit(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(task.Checklists) {
		return nil, errNotFound("checklist %d not found", index)
	}

	task.Checklists[index].Title = title
	return s.saveEdited(ctx, task, actorID, fmt.Sprintf("renamed checklist %d", index))
}

// DeleteChecklist removes a checklist and its elements.
func (s *TaskService) DeleteChecklist(ctx context.Context, taskID uint, index int, actorID uint) (*database.Task, error) {
	task, err := s.loadForEdit(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(task.Checklists) {
		return nil, errNotFound("checklist %d not found", index)
	}

	task.Checklists = append(task.Checklists[:index], task.Checklists[index+1:]...)
	return s.saveEdited(ctx, task, actorID, fmt.Sprintf("deleted checklist %d", index))
}

// AddChecklistElement appends an element to a checklist.
func (s *TaskService) AddChecklistElement(ctx context.Context, taskID uint, index int, actorID uint, title string) (*database.Task, error) {
	task, err := s.loadForEdit(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(task.Checklists) {
		return nil, errNotFound("checklist %d not found", index)
	}

	cl := &task.Checklists[index]
	cl.Elements = append(cl.Elements, database.ChecklistElement{Title: title})
	return s.saveEdited(ctx, task, actorID, fmt.Sprintf("added element to checklist %d", index))
}

// UpdateChecklistElement edits an element's title and/or completed flag.
func (s *TaskService) UpdateChecklistElement(ctx context.Context, taskID uint, index, pos int, actorID uint, title *string, completed *bool) (*database.Task, error) {
	task, err := s.loadForEdit(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(task.Checklists) {
		return nil, errNotFound("checklist %d not found", index)
	}
	cl := &task.Checklists[index]
	if pos < 0 || pos >= len(cl.Elements) {
		return nil, errNotFound("checklist element %d not found", pos)
	}

	if title != nil {
		cl.Elements[pos].Title = *title
	}
	if completed != nil {
		cl.Elements[pos].Completed = *completed
	}
	return s.saveEdited(ctx, task, actorID, fmt.Sprintf("updated element %d of checklist %d", pos, index))
}

// DeleteChecklistElement removes one element from a checklist.
func (s *TaskService) DeleteChecklistElement(ctx context.Context, taskID uint, index, pos int, actorID uint) (*database.Task, error) {
	task, err := s.loadForEdit(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(task.Checklists) {
		return nil, errNotFound("checklist %d not found", index)
	}
	cl := &task.Checklists[index]
	if pos < 0 || pos >= len(cl.Elements) {
		return nil, errNotFound("checklist element %d not found", pos)
	}

	cl.Elements = append(cl.Elements[:pos], cl.Elements[pos+1:]...)
	return s.saveEdited(ctx, task, actorID, fmt.Sprintf("deleted element %d of checklist %d", pos, index))
}

// AddTag appends a tag to the task.
func (s *TaskService) AddTag(ctx context.Context, taskID, actorID uint, name, color string) (*database.Task, error) {
	task, err := s.loadForEdit(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}

	task.Tags = append(task.Tags, database.Tag{Name: name, Color: color})
	return s.saveEdited(ctx, task, actorID, fmt.Sprintf("added tag %q", name))
}

// UpdateTag edits a tag's name and/or color, addressed by position.
func (s *TaskService) UpdateTag(ctx context.Context, taskID uint, index int, actorID uint, name, color *string) (*database.Task, error) {
	task, err := s.loadForEdit(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(task.Tags) {
		return nil, errNotFound("tag %d not found", index)
	}

	if name != nil {
		task.Tags[index].Name = *name
	}
	if color != nil {
		task.Tags[index].Color = *color
	}
	return s.saveEdited(ctx, task, actorID, fmt.Sprintf("updated tag %d", index))
}

// DeleteTag removes one tag.
func (s *TaskService) DeleteTag(ctx context.Context, taskID uint, index int, actorID uint) (*database.Task, error) {
	task, err := s.loadForEdit(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(task.Tags) {
		return nil, errNotFound("tag %d not found", index)
	}

	task.Tags = append(task.Tags[:index], task.Tags[index+1:]...)
	return s.saveEdited(ctx, task, actorID, fmt.Sprintf("deleted tag %d", index))
}

// loadTaskChain resolves task -> list -> group.
func (s *TaskService) loadTaskChain(ctx context.Context, taskID uint) (*database.Task, *database.List, *database.Group, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil, nil, errNotFound("task %d not found", taskID)
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("find task: %w", err)
	}

	list, group, err := s.loadListAndGroup(ctx, task.ListID)
	if err != nil {
		return nil, nil, nil, err
	}
	return task, list, group, nil
}

func (s *TaskService) loadListAndGroup(ctx context.Context, listID uint) (*database.List, *database.Group, error) {
	list, err := s.listRepo.FindByID(ctx, listID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil, errNotFound("list %d not found", listID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("find list: %w", err)
	}

	group, err := s.groupRepo.FindByID(ctx, list.GroupID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil, errNotFound("group %d not found", list.GroupID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("find group: %w", err)
	}
	return list, group, nil
}

// loadForEdit gates the shared edit surface: owner, admin, or assignee.
func (s *TaskService) loadForEdit(ctx context.Context, taskID, actorID uint) (*database.Task, error) {
	task, _, group, err := s.loadTaskChain(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !IsOwnerOrAdmin(group, actorID) && !IsAssignee(task, actorID) {
		return nil, errForbidden("only the group owner, an admin, or an assignee may edit this task")
	}
	return task, nil
}

func (s *TaskService) saveEdited(ctx context.Context, task *database.Task, actorID uint, details string) (*database.Task, error) {
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	s.auditor.Record(database.AuditUpdate, "task", task.ID, actorID, details)
	return task, nil
}
