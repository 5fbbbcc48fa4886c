package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// ListRepository handles CRUD for lists.
type ListRepository struct {
	db *gorm.DB
}

func NewListRepository(db *gorm.DB) *ListRepository {
	return &ListRepository{db: db}
}

func (r *ListRepository) Create(ctx context.Context, list *List) error {
	if err := r.db.WithContext(ctx).Create(list).Error; err != nil {
		return fmt.Errorf("create list: %w", err)
	}
	return nil
}

func (r *ListRepository) FindByID(ctx context.Context, id uint) (*List, error) {
	var list List
	if err := r.db.WithContext(ctx).First(&list, id).Error; err != nil {
		return nil, err
	}
	return &list, nil
}

// FindByGroupAndTitle is used for the per-group title uniqueness check.
func (r *ListRepository) FindByGroupAndTitle(ctx context.Context, groupID uint, title string) (*List, error) {
	var list List
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND title = ?", groupID, title).
		First(&list).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// ListByGroup returns the group's lists in creation order.
func (r *ListRepository) ListByGroup(ctx context.Context, groupID uint) ([]List, error) {
	var lists []List
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("id").
		Find(&lists).Error
	if err != nil {
		return nil, err
	}
	return lists, nil
}

func (r *ListRepository) Save(ctx context.Context, list *List) error {
	if err := r.db.WithContext(ctx).Save(list).Error; err != nil {
		return fmt.Errorf("save list: %w", err)
	}
	return nil
}

// DeleteCascade removes the list, its tasks and their assignment rows in one
// transaction.
func (r *ListRepository) DeleteCascade(ctx context.Context, list *List) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taskIDs []uint
		if err := tx.Model(&Task{}).Where("list_id = ?", list.ID).Pluck("id", &taskIDs).Error; err != nil {
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
		if err := tx.Delete(&List{}, list.ID).Error; err != nil {
			return fmt.Errorf("delete list: %w", err)
		}
		return nil
	})
}
