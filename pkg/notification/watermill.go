package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/stayware/stayflow/pkg/models"
)

// WatermillDispatcher publishes payloads to the notification topic through
// any watermill publisher (gochannel in tests, kafka in production).
type WatermillDispatcher struct {
	publisher message.Publisher
}

func NewWatermillDispatcher(publisher message.Publisher) *WatermillDispatcher {
	return &WatermillDispatcher{publisher: publisher}
}

func (d *WatermillDispatcher) Send(ctx context.Context, payload *models.NotificationPayload) (string, error) {
	if err := validatePayload(payload); err != nil {
		return "", err
	}

	if payload.ID == "" {
		payload.ID = watermill.NewULID()
	}

	if payload.Priority == "" {
		payload.Priority = models.PriorityNormal
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal notification payload: %w", err)
	}

	msg := message.NewMessage(payload.ID, body)
	msg.Metadata.Set(TypeMetadataKey, string(payload.Type))
	msg.Metadata.Set(WorkspaceMetadataKey, payload.WorkspaceID)
	msg.Metadata.Set(PriorityMetadataKey, string(payload.Priority))

	if err := d.publisher.Publish(Topic, msg); err != nil {
		return "", fmt.Errorf("failed to publish notification %s: %w", payload.ID, err)
	}

	return payload.ID, nil
}

func (d *WatermillDispatcher) SendBatch(ctx context.Context, payloads []*models.NotificationPayload) ([]string, error) {
	ids := make([]string, 0, len(payloads))

	for _, payload := range payloads {
		id, err := d.Send(ctx, payload)
		if err != nil {
			return ids, err
		}

		ids = append(ids, id)
	}

	return ids, nil
}
