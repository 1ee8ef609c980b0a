// Package notification builds and dispatches notification payloads produced
// by workflow runs. The engine only publishes payloads; the channel senders
// (email, whatsapp, in-app, push) are external consumers of the topic, and
// delivery success or failure never propagates back into a workflow result.
package notification

import (
	"context"
	"errors"

	"github.com/stayware/stayflow/pkg/models"
)

// Topic is the stream the channel senders consume.
const Topic = "stayflow.notifications"

// Message metadata keys.
const (
	TypeMetadataKey      = "notification_type"
	WorkspaceMetadataKey = "workspace_id"
	PriorityMetadataKey  = "priority"
)

// ErrInvalidPayload indicates a payload missing its type, recipient or
// channels.
var ErrInvalidPayload = errors.New("invalid notification payload")

// Dispatcher hands payloads to channel senders and returns the dispatch ids
// the engine records on the workflow result.
type Dispatcher interface {
	Send(ctx context.Context, payload *models.NotificationPayload) (string, error)
	SendBatch(ctx context.Context, payloads []*models.NotificationPayload) ([]string, error)
}

func validatePayload(payload *models.NotificationPayload) error {
	if payload.Type == "" || payload.RecipientID == "" || len(payload.Channels) == 0 {
		return ErrInvalidPayload
	}

	for _, channel := range payload.Channels {
		if !channel.IsValid() {
			return ErrInvalidPayload
		}
	}

	return nil
}
