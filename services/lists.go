package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/teamboard/teamboard/database"
)

// ListService wraps list CRUD. Writes require owner or admin on the parent
// group; reads require membership.
type ListService struct {
	listRepo  *database.ListRepository
	groupRepo *database.GroupRepository
	auditor   *Auditor
}

func NewListService(listRepo *database.ListRepository, groupRepo *database.GroupRepository, auditor *Auditor) *ListService {
	return &ListService{listRepo: listRepo, groupRepo: groupRepo, auditor: auditor}
}

// Create adds a list to a group. Titles are unique within the group.
func (s *ListService) Create(ctx context.Context, title string, groupID, actorID uint) (*database.List, error) {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !IsOwnerOrAdmin(group, actorID) {
		return nil, errForbidden("only the group owner or an admin may create lists")
	}

	if err := s.checkTitleFree(ctx, groupID, title, 0); err != nil {
		return nil, err
	}

	list := database.List{Title: title, GroupID: groupID}
	if err := s.listRepo.Create(ctx, &list); err != nil {
		return nil, err
	}

	s.auditor.Record(database.AuditCreate, "list", list.ID, actorID,
		fmt.Sprintf("created list %q in group %d", title, groupID))
	return &list, nil
}

// Get returns one list. Any group member may read.
func (s *ListService) Get(ctx context.Context, listID, actorID uint) (*database.List, error) {
	list, err := s.load(ctx, listID)
	if err != nil {
		return nil, err
	}
	group, err := s.loadGroup(ctx, list.GroupID)
	if err != nil {
		return nil, err
	}
	if !IsMember(group, actorID) {
		return nil, errForbidden("only group members may view lists")
	}
	return list, nil
}

// ByGroup returns the group's lists in creation order. Any member may read.
func (s *ListService) ByGroup(ctx context.Context, groupID, actorID uint) ([]database.List, error) {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !IsMember(group, actorID) {
		return nil, errForbidden("only group members may view lists")
	}
	return s.listRepo.ListByGroup(ctx, groupID)
}

// Update renames a list. The uniqueness check skips the list itself.
func (s *ListService) Update(ctx context.Context, listID uint, title string, actorID uint) (*database.List, error) {
	list, err := s.load(ctx, listID)
	if err != nil {
		return nil, err
	}
	group, err := s.loadGroup(ctx, list.GroupID)
	if err != nil {
		return nil, err
	}
	if !IsOwnerOrAdmin(group, actorID) {
		return nil, errForbidden("only the group owner or an admin may update lists")
	}

	if err := s.checkTitleFree(ctx, list.GroupID, title, list.ID); err != nil {
		return nil, err
	}

	list.Title = title
	if err := s.listRepo.Save(ctx, list); err != nil {
		return nil, err
	}

	s.auditor.Record(database.AuditUpdate, "list", list.ID, actorID, fmt.Sprintf("renamed list to %q", title))
	return list, nil
}

// Delete removes the list, its tasks and their assignments.
func (s *ListService) Delete(ctx context.Context, listID, actorID uint) error {
	list, err := s.load(ctx, listID)
	if err != nil {
		return err
	}
	group, err := s.loadGroup(ctx, list.GroupID)
	if err != nil {
		return err
	}
	if !IsOwnerOrAdmin(group, actorID) {
		return errForbidden("only the group owner or an admin may delete lists")
	}

	if err := s.listRepo.DeleteCascade(ctx, list); err != nil {
		return err
	}

	s.auditor.Record(database.AuditDelete, "list", listID, actorID, fmt.Sprintf("deleted list %q", list.Title))
	return nil
}

func (s *ListService) load(ctx context.Context, listID uint) (*database.List, error) {
	list, err := s.listRepo.FindByID(ctx, listID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, errNotFound("list %d not found", listID)
	}
	if err != nil {
		return nil, fmt.Errorf("find list: %w", err)
	}
	return list, nil
}

func (s *ListService) loadGroup(ctx context.Context, groupID uint) (*database.Group, error) {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, errNotFound("group %d not found", groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("find group: %w", err)
	}
	return group, nil
}

// checkTitleFree enforces per-group title uniqueness. excludeID skips the
// list being renamed.
func (s *ListService) checkTitleFree(ctx context.Context, groupID uint, title string, excludeID uint) error {
	existing, err := s.listRepo.FindByGroupAndTitle(ctx, groupID, title)
	switch {
	case err == nil:
		if existing.ID == excludeID {
			return nil
		}
		return errConflict("a list titled %q already exists in this group", title)
	case errors.Is(err, database.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("find list by title: %w", err)
	}
}
