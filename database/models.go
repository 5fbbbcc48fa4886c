package database

import "time"

// User is an identity record. TasksToDo is read from the task_assignees
// join table, the same table Task.AssignedTo writes, so the back-reference
// can never drift from the assignment set.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"uniqueIndex" json:"email"`
	DisplayName  string `json:"displayName"`
	PasswordHash string `json:"-"`

	BlockedUsers []User `gorm:"many2many:user_blocks;joinForeignKey:BlockerID;joinReferences:BlockedID" json:"-"`
	TasksToDo    []Task `gorm:"many2many:task_assignees;joinForeignKey:UserID;joinReferences:TaskID" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

// Group is the collaboration unit. The owner is authoritative for every
// membership and admin check whether or not it appears in Members.
type Group struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"index:idx_owner_group_name,unique" json:"name"`
	Description string `json:"description"`
	Background  string `json:"background,omitempty"`
	OwnerID     uint   `gorm:"index:idx_owner_group_name,unique" json:"ownerId"`

	Owner   User   `json:"-"`
	Members []User `gorm:"many2many:group_members" json:"-"`
	Admins  []User `gorm:"many2many:group_admins" json:"-"`
	Lists   []List `gorm:"foreignKey:GroupID" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

// List is a named container of tasks inside one group.
type List struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Title   string `gorm:"index:idx_group_list_title,unique" json:"title"`
	GroupID uint   `gorm:"index:idx_group_list_title,unique" json:"groupId"`

	Tasks []Task `gorm:"foreignKey:ListID" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

// Task is a unit of work. Checklists and tags are embedded, they have no
// identity outside the task and are stored as JSON columns.
type Task struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `gorm:"default:false" json:"completed"`
	ListID      uint   `gorm:"index" json:"listId"`

	AssignedTo []User      `gorm:"many2many:task_assignees" json:"-"`
	Checklists []Checklist `gorm:"serializer:json" json:"checklists"`
	Tags       []Tag       `gorm:"serializer:json" json:"tags"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Checklist is an ordered group of checklist elements embedded in a task.
type Checklist struct {
	Title    string             `json:"title"`
	Elements []ChecklistElement `json:"elements"`
}

type ChecklistElement struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Tag is a named color label embedded in a task.
type Tag struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Invitation statuses. Accepted and rejected are terminal.
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationRejected = "rejected"
)

// Invitation mediates how a user joins a group. Invitations deliberately
// survive group deletion; responding to one whose group is gone fails.
type Invitation struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	GroupID     uint       `gorm:"index" json:"groupId"`
	SenderID    uint       `json:"senderId"`
	ReceiverID  uint       `gorm:"index" json:"receiverId"`
	Status      string     `gorm:"default:pending" json:"status"`
	RespondedAt *time.Time `json:"respondedAt,omitempty"`

	Sender   User `json:"-"`
	Receiver User `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

// Audit operations.
const (
	AuditCreate = "CREATE"
	AuditUpdate = "UPDATE"
	AuditDelete = "DELETE"
)

// AuditEntry is an append-only record of a mutating operation. The system
// writes these and never reads them back.
type AuditEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Operation  string    `json:"operation"`
	EntityKind string    `json:"entityKind"`
	EntityID   uint      `json:"entityId"`
	ActorID    uint      `json:"actorId"`
	Details    string    `json:"details"`
	CreatedAt  time.Time `json:"createdAt"`
}
