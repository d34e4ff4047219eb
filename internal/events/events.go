// Package events provides domain event definitions for decoupled
// communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"catalog_portal_backend/platform/events"
	"catalog_portal_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Media Domain Events
// =============================================================================

// MediaUploaded is published after a background upload completes and the
// target record's file key has been set.
type MediaUploaded struct {
	BaseEvent
	TargetKind string    `json:"targetKind"`
	TargetID   uuid.UUID `json:"targetId"`
	Bucket     string    `json:"bucket"`
	FileKey    string    `json:"fileKey"`
	SizeBytes  int64     `json:"sizeBytes"`
}

// EventName returns the event identifier.
func (MediaUploaded) EventName() string { return "media.uploaded" }

// =============================================================================
// Assembly Domain Events
// =============================================================================

// MergedPDFGenerated is published after a successful assembly run.
type MergedPDFGenerated struct {
	BaseEvent
	CreatedBy  uuid.UUID  `json:"createdBy"`
	ClientID   *uuid.UUID `json:"clientId,omitempty"`
	Entries    int        `json:"entries"`
	Skipped    int        `json:"skipped"`
	PageCount  int        `json:"pageCount"`
	ObjectKey  string     `json:"objectKey"`
}

// EventName returns the event identifier.
func (MergedPDFGenerated) EventName() string { return "assembly.merged_pdf_generated" }

// =============================================================================
// Sharing Domain Events
// =============================================================================

// ShareLinkCreated is published when a shareable link is persisted.
type ShareLinkCreated struct {
	BaseEvent
	Slug      string    `json:"slug"`
	CreatedBy uuid.UUID `json:"createdBy"`
	Products  int       `json:"products"`
}

// EventName returns the event identifier.
func (ShareLinkCreated) EventName() string { return "sharing.link_created" }
