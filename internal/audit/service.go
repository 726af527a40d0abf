// Package audit records who changed what, and when.
//
// Writes are asynchronous so a slow audit table never delays a response;
// Wait blocks until pending writes have finished, which shutdown and tests use.
package audit

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Paul-Starodub/fast-library/internal/database/audit"
	"github.com/Paul-Starodub/fast-library/internal/entities"
)

const writeTimeout = 5 * time.Second

// Actor describes the request that caused an event.
type Actor struct {
	ID        uint // 0 for anonymous requests
	RequestID string
	IPAddress string
	UserAgent string
}

// Service provides high-level audit logging functionality.
type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	return s.repo.LogEvent(ctx, event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := s.repo.LogEvent(ctx, event); err != nil {
			log.Printf("[AUDIT] Failed to log %s event: %v", event.Action, err)
		}
	}()
}

// Wait blocks until every event passed to LogAsync has been written.
func (s *Service) Wait() {
	s.pending.Wait()
}

// LogCreate records that an entity was created.
func (s *Service) LogCreate(actor Actor, entityType string, entityID uint, name string) {
	s.logChange(actor, entities.AuditEventCreate, "create", "Created", entityType, entityID, name)
}

// LogUpdate records that an entity was changed.
func (s *Service) LogUpdate(actor Actor, entityType string, entityID uint, name string) {
	s.logChange(actor, entities.AuditEventUpdate, "update", "Updated", entityType, entityID, name)
}

// LogDelete records a deletion event.
func (s *Service) LogDelete(actor Actor, entityType string, entityID uint, name string) {
	s.logChange(actor, entities.AuditEventDelete, "delete", "Deleted", entityType, entityID, name)
}

func (s *Service) logChange(actor Actor, eventType entities.AuditEventType, verb, past, entityType string, entityID uint, name string) {
	description := fmt.Sprintf("%s %s #%d", past, entityType, entityID)
	if name != "" {
		description = fmt.Sprintf("%s %s: %s", past, entityType, name)
	}

	event := newEvent(actor, eventType, entityType+"_"+verb)
	event.Description = truncate(description, 500)
	event.EntityType = entityType
	event.EntityID = &entityID

	s.LogAsync(event)
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(actor Actor, action string, success bool) {
	event := newEvent(actor, entities.AuditEventAuth, action)
	if !success {
		event.Status = entities.AuditStatusFailed
	}
	s.LogAsync(event)
}

// ListEvents retrieves paginated audit events.
func (s *Service) ListEvents(ctx context.Context, filter audit.Filter, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.ListEvents(ctx, filter, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(ctx, cutoff)
}

func newEvent(actor Actor, eventType entities.AuditEventType, action string) *entities.AuditEvent {
	return &entities.AuditEvent{
		ActorID:   actor.ID,
		EventType: eventType,
		Action:    action,
		RequestID: truncate(actor.RequestID, 36),
		IPAddress: truncate(actor.IPAddress, 45),
		UserAgent: truncate(actor.UserAgent, 500),
		Status:    entities.AuditStatusSuccess,
	}
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
