package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/teamboard/teamboard/database"
)

// testEnv wires every service against a throwaway sqlite database.
type testEnv struct {
	users       *UserService
	groups      *GroupService
	invitations *InvitationService
	lists       *ListService
	tasks       *TaskService

	userRepo  *database.UserRepository
	groupRepo *database.GroupRepository
	listRepo  *database.ListRepository
	taskRepo  *database.TaskRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	auditor := NewAuditor(database.NewAuditRepository(db))
	go auditor.Run()
	t.Cleanup(auditor.Close)

	userRepo := database.NewUserRepository(db)
	groupRepo := database.NewGroupRepository(db)
	listRepo := database.NewListRepository(db)
	taskRepo := database.NewTaskRepository(db)
	invRepo := database.NewInvitationRepository(db)

	return &testEnv{
		users:       NewUserService(userRepo, auditor),
		groups:      NewGroupService(groupRepo, userRepo, auditor),
		invitations: NewInvitationService(invRepo, groupRepo, userRepo, auditor),
		lists:       NewListService(listRepo, groupRepo, auditor),
		tasks:       NewTaskService(taskRepo, listRepo, groupRepo, userRepo, auditor),
		userRepo:    userRepo,
		groupRepo:   groupRepo,
		listRepo:    listRepo,
		taskRepo:    taskRepo,
	}
}

// user creates an identity directly, skipping bcrypt for speed.
func (e *testEnv) user(t *testing.T, email string) *database.User {
	t.Helper()
	u := &database.User{Email: email, DisplayName: email, PasswordHash: "x"}
	if err := e.userRepo.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

// group creates a group owned by owner with the given members joined.
func (e *testEnv) group(t *testing.T, owner *database.User, name string, members ...*database.User) *database.Group {
	t.Helper()
	ctx := context.Background()
	g, err := e.groups.Create(ctx, owner.ID, name, "")
	if err != nil {
		t.Fatalf("create group %s: %v", name, err)
	}
	for _, m := range members {
		if err := e.groupRepo.AddMember(ctx, g, m); err != nil {
			t.Fatalf("add member %d: %v", m.ID, err)
		}
	}
	return g
}

func (e *testEnv) reloadGroup(t *testing.T, id uint) *database.Group {
	t.Helper()
	g, err := e.groupRepo.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("reload group %d: %v", id, err)
	}
	return g
}

func (e *testEnv) reloadTask(t *testing.T, id uint) *database.Task {
	t.Helper()
	task, err := e.taskRepo.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("reload task %d: %v", id, err)
	}
	return task
}

// wantKind asserts that err carries the expected failure kind.
func wantKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error of kind %v, got nil", kind)
	}
	if got := KindOf(err); got != kind {
		t.Fatalf("expected kind %v, got %v (%v)", kind, got, err)
	}
}

// uniqueEmail avoids collisions across subtests sharing an env.
var emailSeq int

func nextEmail(prefix string) string {
	emailSeq++
	return fmt.Sprintf("%s%d@example.com", prefix, emailSeq)
}
