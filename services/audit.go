package services

import (
	"context"
	"log"
	"time"

	"github.com/teamboard/teamboard/database"
)

// Auditor records mutating operations on a best-effort channel. Writers
// never block and never see append failures: a full buffer drops the entry
// with a log line, and the primary operation is unaffected either way.
type Auditor struct {
	repo    *database.AuditRepository
	entries chan database.AuditEntry
	done    chan struct{}
}

// NewAuditor creates an auditor. Call Run in a goroutine to start the pump.
func NewAuditor(repo *database.AuditRepository) *Auditor {
	return &Auditor{
		repo:    repo,
		entries: make(chan database.AuditEntry, 256),
		done:    make(chan struct{}),
	}
}

// Record queues one audit entry. Safe to call from any goroutine.
func (a *Auditor) Record(operation, entityKind string, entityID, actorID uint, details string) {
	entry := database.AuditEntry{
		Operation:  operation,
		EntityKind: entityKind,
		EntityID:   entityID,
		ActorID:    actorID,
		Details:    details,
	}
	select {
	case a.entries <- entry:
	default:
		log.Printf("audit buffer full, dropping %s %s/%d", operation, entityKind, entityID)
	}
}

// Run drains the entry channel until Close is called.
func (a *Auditor) Run() {
	for entry := range a.entries {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.repo.Append(ctx, &entry); err != nil {
			log.Printf("audit append failed: %v", err)
		}
		cancel()
	}
	close(a.done)
}

// Close stops the pump after the queued entries are flushed.
func (a *Auditor) Close() {
	close(a.entries)
	<-a.done
}
