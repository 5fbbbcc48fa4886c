package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/teamboard/teamboard/database"
)

// UserService wraps identity and block-relation logic.
type UserService struct {
	userRepo *database.UserRepository
	auditor  *Auditor
}

func NewUserService(userRepo *database.UserRepository, auditor *Auditor) *UserService {
	return &UserService{userRepo: userRepo, auditor: auditor}
}

// Register creates a user with a bcrypt-hashed credential.
func (s *UserService) Register(ctx context.Context, email, displayName, password string) (*database.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	_, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, errConflict("a user with email %q already exists", email)
	case !errors.Is(err, database.ErrNotFound):
		return nil, fmt.Errorf("find user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := database.User{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(ctx, &user); err != nil {
		return nil, err
	}

	s.auditor.Record(database.AuditCreate, "user", user.ID, user.ID, "registered")
	return &user, nil
}

// Authenticate checks credentials and returns the matching user.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*database.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		return nil, errUnauthorized("invalid email or password")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, errUnauthorized("invalid email or password")
	}

	return user, nil
}

func (s *UserService) Get(ctx context.Context, userID uint) (*database.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, errNotFound("user %d not found", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// Block adds target to the blocker's block list. Every pending invitation
// from the target to the blocker auto-transitions to rejected with it.
func (s *UserService) Block(ctx context.Context, blockerID, targetID uint) error {
	if blockerID == targetID {
		return errBadRequest("cannot block yourself")
	}

	blocker, err := s.Get(ctx, blockerID)
	if err != nil {
		return err
	}
	target, err := s.Get(ctx, targetID)
	if err != nil {
		return err
	}

	blocked, err := s.userRepo.HasBlocked(ctx, blockerID, targetID)
	if err != nil {
		return err
	}
	if blocked {
		return errConflict("user %d is already blocked", targetID)
	}

	if err := s.userRepo.Block(ctx, blocker, target, time.Now()); err != nil {
		return err
	}

	s.auditor.Record(database.AuditUpdate, "user", blockerID, blockerID,
		fmt.Sprintf("blocked user %d", targetID))
	return nil
}

// Unblock removes the block relation. Invitations rejected by the block stay
// rejected.
func (s *UserService) Unblock(ctx context.Context, blockerID, targetID uint) error {
	blocker, err := s.Get(ctx, blockerID)
	if err != nil {
		return err
	}
	target, err := s.Get(ctx, targetID)
	if err != nil {
		return err
	}

	blocked, err := s.userRepo.HasBlocked(ctx, blockerID, targetID)
	if err != nil {
		return err
	}
	if !blocked {
		return errBadRequest("user %d is not blocked", targetID)
	}

	if err := s.userRepo.Unblock(ctx, blocker, target); err != nil {
		return err
	}

	s.auditor.Record(database.AuditUpdate, "user", blockerID, blockerID,
		fmt.Sprintf("unblocked user %d", targetID))
	return nil
}

// AssignedTasks returns the tasks currently assigned to the user.
func (s *UserService) AssignedTasks(ctx context.Context, userID uint) ([]database.Task, error) {
	tasks, err := s.userRepo.AssignedTasks(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, errNotFound("user %d not found", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("list assigned tasks: %w", err)
	}
	return tasks, nil
}
