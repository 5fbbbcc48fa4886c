package services

import (
	"context"
	"errors"
	"testing"

	"github.com/teamboard/teamboard/database"
)

func TestCreateGroup_OwnerBecomesMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, nextEmail("owner"))

	group, err := env.groups.Create(ctx, owner.ID, "Team", "our team")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	loaded := env.reloadGroup(t, group.ID)
	if !IsOwner(loaded, owner.ID) {
		t.Fatal("creator should be owner")
	}
	if !IsMember(loaded, owner.ID) {
		t.Fatal("creator should be a member")
	}
	if !containsUser(loaded.Members, owner.ID) {
		t.Fatal("creator should be stored in members")
	}
	if len(loaded.Admins) != 0 {
		t.Fatalf("new group should have no admins, got %d", len(loaded.Admins))
	}
}

func TestCreateGroup_DuplicateNamePerOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, nextEmail("owner"))
	other := env.user(t, nextEmail("other"))

	if _, err := env.groups.Create(ctx, owner.ID, "Team", ""); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := env.groups.Create(ctx, owner.ID, "Team", "")
	wantKind(t, err, KindConflict)

	// Names are unique per owner, not globally.
	if _, err := env.groups.Create(ctx, other.ID, "Team", ""); err != nil {
		t.Fatalf("same name under another owner: %v", err)
	}
}

func TestAdminLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, nextEmail("owner"))
	member := env.user(t, nextEmail("member"))
	outsider := env.user(t, nextEmail("outsider"))
	group := env.group(t, owner, "Team", member)

	// Promoting a non-member is a bad request.
	err := env.groups.AddAdmin(ctx, group.ID, outsider.ID, owner.ID)
	wantKind(t, err, KindBadRequest)

	// Only the owner may promote.
	err = env.groups.AddAdmin(ctx, group.ID, member.ID, member.ID)
	wantKind(t, err, KindForbidden)

	if err := env.groups.AddAdmin(ctx, group.ID, member.ID, owner.ID); err != nil {
		t.Fatalf("add admin: %v", err)
	}

	loaded := env.reloadGroup(t, group.ID)
	if !IsOwnerOrAdmin(loaded, member.ID) {
		t.Fatal("promoted member should be owner-or-admin")
	}
	if !IsMember(loaded, member.ID) {
		t.Fatal("promoted member should still be a member")
	}

	// Promoting twice conflicts.
	err = env.groups.AddAdmin(ctx, group.ID, member.ID, owner.ID)
	wantKind(t, err, KindConflict)

	// Demotion restores plain membership.
	if err := env.groups.RemoveAdmin(ctx, group.ID, member.ID, owner.ID); err != nil {
		t.Fatalf("remove admin: %v", err)
	}
	loaded = env.reloadGroup(t, group.ID)
	if IsOwnerOrAdmin(loaded, member.ID) {
		t.Fatal("demoted member should not be owner-or-admin")
	}
	if !IsMember(loaded, member.ID) {
		t.Fatal("demoted member should remain a member")
	}

	// Demoting a non-admin is a bad request.
	err = env.groups.RemoveAdmin(ctx, group.ID, member.ID, owner.ID)
	wantKind(t, err, KindBadRequest)
}

func TestRemoveMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, nextEmail("owner"))
	member := env.user(t, nextEmail("member"))
	group := env.group(t, owner, "Team", member)

	// The owner can never be removed.
	err := env.groups.RemoveMember(ctx, group.ID, owner.ID, owner.ID)
	wantKind(t, err, KindBadRequest)

	// Removing an admin member clears the admin role with the membership.
	if err := env.groups.AddAdmin(ctx, group.ID, member.ID, owner.ID); err != nil {
		t.Fatalf("add admin: %v", err)
	}
	if err := env.groups.RemoveMember(ctx, group.ID, member.ID, owner.ID); err != nil {
		t.Fatalf("remove member: %v", err)
	}

	loaded := env.reloadGroup(t, group.ID)
	if IsMember(loaded, member.ID) {
		t.Fatal("removed user should not be a member")
	}
	if IsOwnerOrAdmin(loaded, member.ID) {
		t.Fatal("removed user should not keep the admin role")
	}

	// Removing again is a bad request.
	err = env.groups.RemoveMember(ctx, group.ID, member.ID, owner.ID)
	wantKind(t, err, KindBadRequest)
}

func TestGroupUpdate_OwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, nextEmail("owner"))
	member := env.user(t, nextEmail("member"))
	group := env.group(t, owner, "Team", member)

	name := "Renamed"
	_, err := env.groups.Update(ctx, group.ID, member.ID, GroupPatch{Name: &name})
	wantKind(t, err, KindForbidden)

	desc := "new description"
	updated, err := env.groups.Update(ctx, group.ID, owner.ID, GroupPatch{Name: &name, Description: &desc})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Renamed" || updated.Description != "new description" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	_, err = env.groups.Update(ctx, 9999, owner.ID, GroupPatch{Name: &name})
	wantKind(t, err, KindNotFound)
}

func TestDeleteGroup_Cascade(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, nextEmail("owner"))
	member := env.user(t, nextEmail("member"))
	group := env.group(t, owner, "Team", member)

	list, err := env.lists.Create(ctx, "Backlog", group.ID, owner.ID)
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	task, err := env.tasks.Create(ctx, "Write spec", "", list.ID, owner.ID)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := env.tasks.Assign(ctx, task.ID, member.ID, owner.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	// Members cannot delete the group.
	err = env.groups.Delete(ctx, group.ID, member.ID)
	wantKind(t, err, KindForbidden)

	if err := env.groups.Delete(ctx, group.ID, owner.ID); err != nil {
		t.Fatalf("delete group: %v", err)
	}

	if _, err := env.groupRepo.FindByID(ctx, group.ID); !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("group should be gone, got %v", err)
	}
	if _, err := env.listRepo.FindByID(ctx, list.ID); !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("list should be gone, got %v", err)
	}
	if _, err := env.taskRepo.FindByID(ctx, task.ID); !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("task should be gone, got %v", err)
	}

	tasks, err := env.users.AssignedTasks(ctx, member.ID)
	if err != nil {
		t.Fatalf("assigned tasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("assignee should have no dangling task references, got %d", len(tasks))
	}
}

func TestAvailableUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, nextEmail("owner"))
	member := env.user(t, nextEmail("member"))
	outsider := env.user(t, nextEmail("outsider"))
	group := env.group(t, owner, "Team", member)

	// Owner only.
	_, err := env.groups.AvailableUsers(ctx, group.ID, member.ID)
	wantKind(t, err, KindForbidden)

	users, err := env.groups.AvailableUsers(ctx, group.ID, owner.ID)
	if err != nil {
		t.Fatalf("available users: %v", err)
	}
	if len(users) != 1 || users[0].ID != outsider.ID {
		t.Fatalf("expected only the outsider, got %+v", users)
	}
}
