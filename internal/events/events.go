// Package events publishes family-domain integration events.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	eventSource  = "guardian-service"
	eventVersion = "1.0"
)

// Event types emitted by the guardian service
const (
	EventParentCreated = "family.parent_created"
	EventLinkCreated   = "family.link_created"
	EventLinkRemoved   = "family.link_removed"
	EventLinkRepaired  = "family.link_repaired"
	EventLinkFailed    = "family.link_failed"
	EventRosterImport  = "family.roster_imported"
)

// Event is the envelope every published message carries
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Source    string         `json:"source"`
	Version   string         `json:"version"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// NewEvent builds an envelope with a fresh id and the service identity
func NewEvent(eventType string, data map[string]any) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    eventSource,
		Version:   eventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// EventPublisher publishes events to the message broker
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
