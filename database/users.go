package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrNotFound is returned by Find* methods when no record matches.
var ErrNotFound = gorm.ErrRecordNotFound

// UserRepository handles CRUD for users and the block relation.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListExcluding returns all users except those whose id is in exclude.
func (r *UserRepository) ListExcluding(ctx context.Context, exclude []uint) ([]User, error) {
	var users []User
	q := r.db.WithContext(ctx)
	if len(exclude) > 0 {
		q = q.Where("id NOT IN ?", exclude)
	}
	if err := q.Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// HasBlocked reports whether blocker has target on their block list.
func (r *UserRepository) HasBlocked(ctx context.Context, blockerID, targetID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Table("user_blocks").
		Where("blocker_id = ? AND blocked_id = ?", blockerID, targetID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("count blocks: %w", err)
	}
	return n > 0, nil
}

// Block records the block relation and auto-rejects every pending invitation
// the target has sent to the blocker, as one transaction.
func (r *UserRepository) Block(ctx context.Context, blocker, target *User, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(blocker).Association("BlockedUsers").Append(target); err != nil {
			return fmt.Errorf("append block: %w", err)
		}
		err := tx.Model(&Invitation{}).
			Where("sender_id = ? AND receiver_id = ? AND status = ?", target.ID, blocker.ID, InvitationPending).
			Updates(map[string]any{"status": InvitationRejected, "responded_at": now}).Error
		if err != nil {
			return fmt.Errorf("reject pending invitations: %w", err)
		}
		return nil
	})
}

// Unblock removes the block relation. Invitations rejected by a previous
// Block stay rejected.
func (r *UserRepository) Unblock(ctx context.Context, blocker, target *User) error {
	if err := r.db.WithContext(ctx).Model(blocker).Association("BlockedUsers").Delete(target); err != nil {
		return fmt.Errorf("delete block: %w", err)
	}
	return nil
}

// AssignedTasks returns the tasks currently assigned to the user.
func (r *UserRepository) AssignedTasks(ctx context.Context, userID uint) ([]Task, error) {
	var user User
	err := r.db.WithContext(ctx).Preload("TasksToDo").First(&user, userID).Error
	if err != nil {
		return nil, err
	}
	return user.TasksToDo, nil
}
