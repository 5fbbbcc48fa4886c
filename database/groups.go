package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// GroupRepository handles CRUD for groups and their membership sets.
type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(ctx context.Context, group *Group) error {
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	return nil
}

// FindByID loads a group with its membership sets and lists.
func (r *GroupRepository) FindByID(ctx context.Context, id uint) (*Group, error) {
	var group Group
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Members").
		Preload("Admins").
		Preload("Lists").
		First(&group, id).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// FindByOwnerAndName is used for the per-owner name uniqueness check.
func (r *GroupRepository) FindByOwnerAndName(ctx context.Context, ownerID uint, name string) (*Group, error) {
	var group Group
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND name = ?", ownerID, name).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// ListForUser returns every group the user owns or is a member of.
func (r *GroupRepository) ListForUser(ctx context.Context, userID uint) ([]Group, error) {
	var groups []Group
	err := r.db.WithContext(ctx).
		Preload("Members").
		Preload("Admins").
		Where("owner_id = ? OR id IN (SELECT group_id FROM group_members WHERE user_id = ?)", userID, userID).
		Order("id").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *GroupRepository) Save(ctx context.Context, group *Group) error {
	if err := r.db.WithContext(ctx).Save(group).Error; err != nil {
		return fmt.Errorf("save group: %w", err)
	}
	return nil
}

func (r *GroupRepository) AddMember(ctx context.Context, group *Group, user *User) error {
	if err := r.db.WithContext(ctx).Model(group).Association("Members").Append(user); err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

// RemoveMember drops the user from members and, in the same transaction,
// from admins. Admins are a subset of members; a dangling admin row would
// let a non-member keep write access.
func (r *GroupRepository) RemoveMember(ctx context.Context, group *Group, user *User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(group).Association("Members").Delete(user); err != nil {
			return fmt.Errorf("remove member: %w", err)
		}
		if err := tx.Model(group).Association("Admins").Delete(user); err != nil {
			return fmt.Errorf("remove admin role: %w", err)
		}
		return nil
	})
}

func (r *GroupRepository) AddAdmin(ctx context.Context, group *Group, user *User) error {
	if err := r.db.WithContext(ctx).Model(group).Association("Admins").Append(user); err != nil {
		return fmt.Errorf("add admin: %w", err)
	}
	return nil
}

func (r *GroupRepository) RemoveAdmin(ctx context.Context, group *Group, user *User) error {
	if err := r.db.WithContext(ctx).Model(group).Association("Admins").Delete(user); err != nil {
		return fmt.Errorf("remove admin: %w", err)
	}
	return nil
}

// DeleteCascade removes the group and everything under it: membership rows,
// lists, tasks in those lists, and the tasks' assignment rows. One
// transaction, dependents first.
func (r *GroupRepository) DeleteCascade(ctx context.Context, group *Group) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var listIDs []uint
		if err := tx.Model(&List{}).Where("group_id = ?", group.ID).Pluck("id", &listIDs).Error; err != nil {
			return fmt.Errorf("collect list ids: %w", err)
		}

		if len(listIDs) > 0 {
			var taskIDs []uint
			if err := tx.Model(&Task{}).Where("list_id IN ?", listIDs).Pluck("id", &taskIDs).Error; err != nil {
				return fmt.Errorf("collect task ids: %w", err)
			}
			if len(taskIDs) > 0 {
				if err := tx.Exec("DELETE FROM task_assignees WHERE task_id IN ?", taskIDs).Error; err != nil {
					return fmt.Errorf("clear assignments: %w", err)
				}
				if err := tx.Where("id IN ?", taskIDs).Delete(&Task{}).Error; err != nil {
					return fmt.Errorf("delete tasks: %w", err)
				}
			}
			if err := tx.Where("id IN ?", listIDs).Delete(&List{}).Error; err != nil {
				return fmt.Errorf("delete lists: %w", err)
			}
		}

		if err := tx.Exec("DELETE FROM group_members WHERE group_id = ?", group.ID).Error; err != nil {
			return fmt.Errorf("clear members: %w", err)
		}
		if err := tx.Exec("DELETE FROM group_admins WHERE group_id = ?", group.ID).Error; err != nil {
			return fmt.Errorf("clear admins: %w", err)
		}
		if err := tx.Delete(&Group{}, group.ID).Error; err != nil {
			return fmt.Errorf("delete group: %w", err)
		}
		return nil
	})
}
