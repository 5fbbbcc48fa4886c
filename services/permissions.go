package services

import "github.com/teamboard/teamboard/database"

// Role predicates. All of them are pure functions over a loaded group or
// task snapshot and compare stable ids, never struct identity. The owner is
// authoritative everywhere without needing to appear in the stored sets.

// IsOwner reports whether userID owns the group.
func IsOwner(group *database.Group, userID uint) bool {
	return group.OwnerID == userID
}

// IsMember reports whether userID may read the group's content. Owners are
// members whether or not they are stored in Members.
func IsMember(group *database.Group, userID uint) bool {
	return IsOwner(group, userID) || containsUser(group.Members, userID)
}

// IsOwnerOrAdmin reports whether userID may manage the group's content.
func IsOwnerOrAdmin(group *database.Group, userID uint) bool {
	return IsOwner(group, userID) || containsUser(group.Admins, userID)
}

// IsAssignee reports whether userID is assigned to the task.
func IsAssignee(task *database.Task, userID uint) bool {
	return containsUser(task.AssignedTo, userID)
}

func containsUser(users []database.User, id uint) bool {
	for _, u := range users {
		if u.ID == id {
			return true
		}
	}
	return false
}
