// Package events publishes video lifecycle notifications.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	TypeCreated  = "video.created"
	TypeUploaded = "video.uploaded"
	TypeApproved = "video.approved"
	TypeRevoked  = "video.revoked"
	TypeDeleted  = "video.deleted"
)

type Event struct {
	Type       string     `json:"type"`
	VideoID    uuid.UUID  `json:"video_id"`
	CreatorID  *uuid.UUID `json:"creator_id,omitempty"`
	Status     string     `json:"status,omitempty"`
	Approved   bool       `json:"approved"`
	OccurredAt time.Time  `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }
