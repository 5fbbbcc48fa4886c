package services

import (
	"context"
	"errors"
	"testing"

	"github.com/teamboard/teamboard/database"
)

func TestTaskCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, nextEmail("owner"))
	member := env.user(t, nextEmail("member"))
	group := env.group(t, owner, "Team", member)
	list, err := env.lists.Create(ctx, "Backlog", group.ID, owner.ID)
	if err != nil {
		t.Fatalf("create list: %v", err)
	}

	if _, err := env.tasks.Create(ctx, "Write spec", "first draft", list.ID, owner.ID); err != nil {
		t.Fatalf("create task: %v", err)
	}

	// Title unique within the list at creation time.
	_, err = env.tasks.Create(ctx, "Write spec", "", list.ID, owner.ID)
	wantKind(t, err, KindConflict)

	// Plain members cannot create tasks.
	_, err = env.tasks.Create(ctx, "Another", "", list.ID, member.ID)
	wantKind(t, err, KindForbidden)
}

func TestTaskAssignment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, nextEmail("owner"))
	member := env.user(t, nextEmail("member"))
	outsider := env.user(t, nextEmail("outsider"))
	group := env.group(t, owner, "Team", member)
	list, err := env.lists.Create(ctx, "Backlog", group.ID, owner.ID)
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	task, err := env.tasks.Create(ctx, "Write spec", "", list.ID, owner.ID)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	// Members cannot assign.
	_, err = env.tasks.Assign(ctx, task.ID, member.ID, member.ID)
	wantKind(t, err, KindForbidden)

	// Non-members cannot be assigned.
	_, err = env.tasks.Assign(ctx, task.ID, outsider.ID, owner.ID)
	wantKind(t, err, KindForbidden)

	assigned, err := env.tasks.Assign(ctx, task.ID, member.ID, owner.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if !IsAssignee(assigned, member.ID) {
		t.Fatal("target should be in the task's assignee set")
	}

	// Both sides of the relation see the assignment.
	todo, err := env.users.AssignedTasks(ctx, member.ID)
	if err != nil {
		t.Fatalf("assigned tasks: %v", err)
	}
	if len(todo) != 1 || todo[0].ID != task.ID {
		t.Fatalf("assignee's task view should contain the task, got %+v", todo)
	}

	// Double assignment conflicts.
	_, err = env.tasks.Assign(ctx, task.ID, member.ID, owner.ID)
	wantKind(t, err, KindConflict)

	unassigned, err := env.tasks.Unassign(ctx, task.ID, member.ID, owner.ID)
	if err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if IsAssignee(unassigned, member.ID) {
		t.Fatal("target should be gone from the assignee set")
	}
	todo, err = env.users.AssignedTasks(ctx, member.ID)
	if err != nil {
		t.Fatalf("assigned tasks: %v", err)
	}
	if len(todo) != 0 {
		t.Fatalf("assignee's task view should be empty, got %+v", todo)
	}

	// Unassigning a non-assignee conflicts.
	_, err = env.tasks.Unassign(ctx, task.ID, member.ID, owner.ID)
	wantKind(t, err, KindConflict)
}

func TestTaskEditRights(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, nextEmail("owner"))
	assignee := env.user(t, nextEmail("assignee"))
	member := env.user(t, nextEmail("member"))
	group := env.group(t, owner, "Team", assignee, member)
	list, err := env.lists.Create(ctx, "Backlog", group.ID, owner.ID)
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	task, err := env.tasks.Create(ctx, "Write spec", "", list.ID, owner.ID)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := env.tasks.Assign(ctx, task.ID, assignee.ID, owner.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	// An assignee may edit fields.
	done := true
	updated, err := env.tasks.Update(ctx, task.ID, assignee.ID, TaskPatch{Completed: &done})
	if err != nil {
		t.Fatalf("assignee update: %v", err)
	}
	if !updated.Completed {
		t.Fatal("completed flag should be set")
	}

	// A plain member may not.
	_, err = env.tasks.Update(ctx, task.ID, member.ID, TaskPatch{Completed: &done})
	wantKind(t, err, KindForbidden)

	// An assignee may not delete.
	err = env.tasks.Delete(ctx, task.ID, assignee.ID)
	wantKind(t, err, KindForbidden)

	// Nor assign others.
	_, err = env.tasks.Assign(ctx, task.ID, member.ID, assignee.ID)
	wantKind(t, err, KindForbidden)
}

func TestTaskDelete_Cascade(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, nextEmail("owner"))
	a := env.user(t, nextEmail("a"))
	b := env.user(t, nextEmail("b"))
	group := env.group(t, owner, "Team", a, b)
	list, err := env.lists.Create(ctx, "Backlog", group.ID, owner.ID)
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	task, err := env.tasks.Create(ctx, "Write spec", "", list.ID, owner.ID)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	for _, u := range []*database.User{a, b} {
		if _, err := env.tasks.Assign(ctx, task.ID, u.ID, owner.ID); err != nil {
			t.Fatalf("assign %d: %v", u.ID, err)
		}
	}

	if err := env.tasks.Delete(ctx, task.ID, owner.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := env.taskRepo.FindByID(ctx, task.ID); !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("task should be gone, got %v", err)
	}
	for _, u := range []*database.User{a, b} {
		todo, err := env.users.AssignedTasks(ctx, u.ID)
		if err != nil {
			t.Fatalf("assigned tasks %d: %v", u.ID, err)
		}
		if len(todo) != 0 {
			t.Fatalf("user %d should have no dangling task references, got %d", u.ID, len(todo))
		}
	}

	remaining, err := env.tasks.ByList(ctx, list.ID, owner.ID)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("list should reference no tasks, got %d", len(remaining))
	}
}

func TestTaskChecklistsAndTags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, nextEmail("owner"))
	assignee := env.user(t, nextEmail("assignee"))
	member := env.user(t, nextEmail("member"))
	group := env.group(t, owner, "Team", assignee, member)
	list, err := env.lists.Create(ctx, "Backlog", group.ID, owner.ID)
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	task, err := env.tasks.Create(ctx, "Write spec", "", list.ID, owner.ID)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := env.tasks.Assign(ctx, task.ID, assignee.ID, owner.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	// Assignees share the checklist/tag edit gate.
	if _, err := env.tasks.AddChecklist(ctx, task.ID, assignee.ID, "Review steps"); err != nil {
		t.Fatalf("add checklist: %v", err)
	}
	if _, err := env.tasks.AddChecklistElement(ctx, task.ID, 0, assignee.ID, "Read draft"); err != nil {
		t.Fatalf("add element: %v", err)
	}
	done := true
	updated, err := env.tasks.UpdateChecklistElement(ctx, task.ID, 0, 0, assignee.ID, nil, &done)
	if err != nil {
		t.Fatalf("update element: %v", err)
	}
	if !updated.Checklists[0].Elements[0].Completed {
		t.Fatal("element should be completed")
	}

	// Plain members are forbidden.
	_, err = env.tasks.AddChecklist(ctx, task.ID, member.ID, "Nope")
	wantKind(t, err, KindForbidden)

	// Out-of-range positions are not found.
	_, err = env.tasks.RenameChecklist(ctx, task.ID, 5, owner.ID, "Missing")
	wantKind(t, err, KindNotFound)
	_, err = env.tasks.UpdateChecklistElement(ctx, task.ID, 0, 5, owner.ID, nil, &done)
	wantKind(t, err, KindNotFound)

	if _, err := env.tasks.AddTag(ctx, task.ID, owner.ID, "urgent", "#ff0000"); err != nil {
		t.Fatalf("add tag: %v", err)
	}
	color := "#00ff00"
	tagged, err := env.tasks.UpdateTag(ctx, task.ID, 0, owner.ID, nil, &color)
	if err != nil {
		t.Fatalf("update tag: %v", err)
	}
	if tagged.Tags[0].Color != "#00ff00" {
		t.Fatalf("unexpected tag color %q", tagged.Tags[0].Color)
	}
	if _, err := env.tasks.DeleteTag(ctx, task.ID, 0, owner.ID); err != nil {
		t.Fatalf("delete tag: %v", err)
	}
	_, err = env.tasks.DeleteTag(ctx, task.ID, 0, owner.ID)
	wantKind(t, err, KindNotFound)

	// Embedded data persists across reloads.
	reloaded := env.reloadTask(t, task.ID)
	if len(reloaded.Checklists) != 1 || len(reloaded.Checklists[0].Elements) != 1 {
		t.Fatalf("checklist should persist, got %+v", reloaded.Checklists)
	}
	if len(reloaded.Tags) != 0 {
		t.Fatalf("tags should be empty after delete, got %+v", reloaded.Tags)
	}
}

// TestTeamScenario walks the lifecycle end to end: create a group, invite
// and accept, build a list and a task, assign, edit as assignee, and clean
// up as owner.
func TestTeamScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	o := env.user(t, nextEmail("o"))
	a := env.user(t, nextEmail("a"))

	group, err := env.groups.Create(ctx, o.ID, "Team", "")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	inv, err := env.invitations.Send(ctx, group.ID, a.ID, o.ID)
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if _, err := env.invitations.Accept(ctx, inv.ID, a.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if !IsMember(env.reloadGroup(t, group.ID), a.ID) {
		t.Fatal("A should be a member after accepting")
	}

	list, err := env.lists.Create(ctx, "Backlog", group.ID, o.ID)
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	task, err := env.tasks.Create(ctx, "Write spec", "", list.ID, o.ID)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := env.tasks.Assign(ctx, task.ID, a.ID, o.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	done := true
	if _, err := env.tasks.Update(ctx, task.ID, a.ID, TaskPatch{Completed: &done}); err != nil {
		t.Fatalf("assignee toggle: %v", err)
	}

	err = env.tasks.Delete(ctx, task.ID, a.ID)
	wantKind(t, err, KindForbidden)

	if err := env.tasks.Delete(ctx, task.ID, o.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	todo, err := env.users.AssignedTasks(ctx, a.ID)
	if err != nil {
		t.Fatalf("assigned tasks: %v", err)
	}
	if len(todo) != 0 {
		t.Fatalf("A should have no dangling task references, got %d", len(todo))
	}
}
