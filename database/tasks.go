package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// TaskRepository handles CRUD for tasks and the assignment set.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id uint) (*Task, error) {
	var task Task
	err := r.db.WithContext(ctx).Preload("AssignedTo").First(&task, id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByListAndTitle is used for the create-time title uniqueness check.
func (r *TaskRepository) FindByListAndTitle(ctx context.Context, listID uint, title string) (*Task, error) {
	var task Task
	err := r.db.WithContext(ctx).
		Where("list_id = ? AND title = ?", listID, title).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByList returns the list's tasks with assignees loaded.
func (r *TaskRepository) ListByList(ctx context.Context, listID uint) ([]Task, error) {
	var tasks []Task
	err := r.db.WithContext(ctx).
		Preload("AssignedTo").
		Where("list_id = ?", listID).
		Order("id").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) Save(ctx context.Context, task *Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

// Assign adds the user to the task's assignee set. The insert is a single
// add-if-absent row in task_assignees, which is also what backs the user's
// assigned-task view, so both sides update together.
func (r *TaskRepository) Assign(ctx context.Context, task *Task, user *User) error {
	if err := r.db.WithContext(ctx).Model(task).Association("AssignedTo").Append(user); err != nil {
		return fmt.Errorf("assign task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Unassign(ctx context.Context, task *Task, user *User) error {
	if err := r.db.WithContext(ctx).Model(task).Association("AssignedTo").Delete(user); err != nil {
		return fmt.Errorf("unassign task: %w", err)
	}
	return nil
}

// DeleteCascade removes the task and its assignment rows in one transaction.
func (r *TaskRepository) DeleteCascade(ctx context.Context, task *Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM task_assignees WHERE task_id = ?", task.ID).Error; err != nil {
			return fmt.Errorf("clear assignments: %w", err)
		}
		if err := tx.Delete(&Task{}, task.ID).Error; err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		return nil
	})
}
