package services

import (
	"testing"

	"github.com/teamboard/teamboard/database"
)

func TestPermissions_OwnerIsAuthoritative(t *testing.T) {
	// The owner is never stored in Members or Admins here, on purpose.
	group := &database.Group{ID: 1, OwnerID: 10}

	if !IsOwner(group, 10) {
		t.Fatal("expected IsOwner for the owner")
	}
	if !IsMember(group, 10) {
		t.Fatal("expected IsMember for the owner without a stored member row")
	}
	if !IsOwnerOrAdmin(group, 10) {
		t.Fatal("expected IsOwnerOrAdmin for the owner without a stored admin row")
	}
}

func TestPermissions_Roles(t *testing.T) {
	group := &database.Group{
		ID:      1,
		OwnerID: 10,
		Members: []database.User{{ID: 20}, {ID: 30}},
		Admins:  []database.User{{ID: 30}},
	}

	tests := []struct {
		name         string
		userID       uint
		owner        bool
		member       bool
		ownerOrAdmin bool
	}{
		{"owner", 10, true, true, true},
		{"plain member", 20, false, true, false},
		{"admin member", 30, false, true, true},
		{"outsider", 40, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOwner(group, tt.userID); got != tt.owner {
				t.Errorf("IsOwner = %v, want %v", got, tt.owner)
			}
			if got := IsMember(group, tt.userID); got != tt.member {
				t.Errorf("IsMember = %v, want %v", got, tt.member)
			}
			if got := IsOwnerOrAdmin(group, tt.userID); got != tt.ownerOrAdmin {
				t.Errorf("IsOwnerOrAdmin = %v, want %v", got, tt.ownerOrAdmin)
			}
		})
	}
}

func TestPermissions_IsAssignee(t *testing.T) {
	task := &database.Task{ID: 1, AssignedTo: []database.User{{ID: 20}}}

	if !IsAssignee(task, 20) {
		t.Fatal("expected IsAssignee for an assigned user")
	}
	if IsAssignee(task, 21) {
		t.Fatal("did not expect IsAssignee for an unassigned user")
	}
	if IsAssignee(&database.Task{}, 20) {
		t.Fatal("did not expect IsAssignee on a task with no assignees")
	}
}
