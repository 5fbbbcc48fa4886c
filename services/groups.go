package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/teamboard/teamboard/database"
)

// GroupPatch carries the owner-editable group fields. Nil means unchanged.
type GroupPatch struct {
	Name        *string
	Description *string
	Background  *string
}

// GroupService wraps group lifecycle and membership management.
type GroupService struct {
	groupRepo *database.GroupRepository
	userRepo  *database.UserRepository
	auditor   *Auditor
}

func NewGroupService(groupRepo *database.GroupRepository, userRepo *database.UserRepository, auditor *Auditor) *GroupService {
	return &GroupService{groupRepo: groupRepo, userRepo: userRepo, auditor: auditor}
}

// Create makes the actor owner of a new group. Group names are unique per
// owner, not globally.
func (s *GroupService) Create(ctx context.Context, actorID uint, name, description string) (*database.Group, error) {
	if err := s.checkNameFree(ctx, actorID, name); err != nil {
		return nil, err
	}

	owner, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("find owner: %w", err)
	}

	group := database.Group{
		Name:        name,
		Description: description,
		OwnerID:     actorID,
		Members:     []database.User{*owner},
	}
	if err := s.groupRepo.Create(ctx, &group); err != nil {
		return nil, err
	}

	s.auditor.Record(database.AuditCreate, "group", group.ID, actorID, fmt.Sprintf("created group %q", name))
	return &group, nil
}

// Get returns the group with membership sets loaded. Any member may read.
func (s *GroupService) Get(ctx context.Context, groupID, actorID uint) (*database.Group, error) {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !IsMember(group, actorID) {
		return nil, errForbidden("only group members may view this group")
	}
	return group, nil
}

// ListForUser returns every group the user owns or belongs to.
func (s *GroupService) ListForUser(ctx context.Context, userID uint) ([]database.Group, error) {
	return s.groupRepo.ListForUser(ctx, userID)
}

// Update changes name, description or background. Owner only.
func (s *GroupService) Update(ctx context.Context, groupID, actorID uint, patch GroupPatch) (*database.Group, error) {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !IsOwner(group, actorID) {
		return nil, errForbidden("only the group owner may update the group")
	}

	if patch.Name != nil && *patch.Name != group.Name {
		if err := s.checkNameFree(ctx, group.OwnerID, *patch.Name); err != nil {
			return nil, err
		}
		group.Name = *patch.Name
	}
	if patch.Description != nil {
		group.Description = *patch.Description
	}
	if patch.Background != nil {
		group.Background = *patch.Background
	}

	if err := s.groupRepo.Save(ctx, group); err != nil {
		return nil, err
	}

	s.auditor.Record(database.AuditUpdate, "group", group.ID, actorID, "updated group")
	return group, nil
}

// Delete removes the group and cascades into its lists, their tasks, and
// every assignment of those tasks. Owner only.
func (s *GroupService) Delete(ctx context.Context, groupID, actorID uint) error {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return err
	}
	if !IsOwner(group, actorID) {
		return errForbidden("only the group owner may delete the group")
	}

	if err := s.groupRepo.DeleteCascade(ctx, group); err != nil {
		return err
	}

	s.auditor.Record(database.AuditDelete, "group", groupID, actorID, fmt.Sprintf("deleted group %q", group.Name))
	return nil
}

// AddAdmin promotes an existing member. Owner only.
func (s *GroupService) AddAdmin(ctx context.Context, groupID, targetID, actorID uint) error {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return err
	}
	if !IsOwner(group, actorID) {
		return errForbidden("only the group owner may manage admins")
	}

	target, err := s.userRepo.FindByID(ctx, targetID)
	if errors.Is(err, database.ErrNotFound) {
		return errNotFound("user %d not found", targetID)
	}
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}

	if !IsMember(group, targetID) {
		return errBadRequest("user %d is not a member of the group", targetID)
	}
	if containsUser(group.Admins, targetID) {
		return errConflict("user %d is already an admin", targetID)
	}

	if err := s.groupRepo.AddAdmin(ctx, group, target); err != nil {
		return err
	}

	s.auditor.Record(database.AuditUpdate, "group", groupID, actorID, fmt.Sprintf("promoted user %d to admin", targetID))
	return nil
}

// RemoveAdmin demotes an admin back to plain member. Owner only.
func (s *GroupService) RemoveAdmin(ctx context.Context, groupID, targetID, actorID uint) error {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return err
	}
	if !IsOwner(group, actorID) {
		return errForbidden("only the group owner may manage admins")
	}
	if !containsUser(group.Admins, targetID) {
		return errBadRequest("user %d is not an admin", targetID)
	}

	target, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}

	if err := s.groupRepo.RemoveAdmin(ctx, group, target); err != nil {
		return err
	}

	s.auditor.Record(database.AuditUpdate, "group", groupID, actorID, fmt.Sprintf("demoted admin %d", targetID))
	return nil
}

// RemoveMember drops a member (and any admin role they held). The owner can
// never be removed. Owner only.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, targetID, actorID uint) error {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return err
	}
	if !IsOwner(group, actorID) {
		return errForbidden("only the group owner may remove members")
	}
	if targetID == group.OwnerID {
		return errBadRequest("the group owner cannot be removed")
	}
	if !containsUser(group.Members, targetID) {
		return errBadRequest("user %d is not a member of the group", targetID)
	}

	target, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}

	if err := s.groupRepo.RemoveMember(ctx, group, target); err != nil {
		return err
	}

	s.auditor.Record(database.AuditUpdate, "group", groupID, actorID, fmt.Sprintf("removed member %d", targetID))
	return nil
}

// AvailableUsers returns users who could still be invited: everyone except
// current members and the owner. Owner only.
func (s *GroupService) AvailableUsers(ctx context.Context, groupID, actorID uint) ([]database.User, error) {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !IsOwner(group, actorID) {
		return nil, errForbidden("only the group owner may list available users")
	}

	exclude := []uint{group.OwnerID}
	for _, m := range group.Members {
		if m.ID != group.OwnerID {
			exclude = append(exclude, m.ID)
		}
	}
	return s.userRepo.ListExcluding(ctx, exclude)
}

func (s *GroupService) load(ctx context.Context, groupID uint) (*database.Group, error) {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, errNotFound("group %d not found", groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("find group: %w", err)
	}
	return group, nil
}

func (s *GroupService) checkNameFree(ctx context.Context, ownerID uint, name string) error {
	_, err := s.groupRepo.FindByOwnerAndName(ctx, ownerID, name)
	switch {
	case err == nil:
		return errConflict("you already own a group named %q", name)
	case errors.Is(err, database.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("find group by name: %w", err)
	}
}
