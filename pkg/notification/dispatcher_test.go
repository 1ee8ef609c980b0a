package notification_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayware/stayflow/pkg/channels/gochannel"
	"github.com/stayware/stayflow/pkg/models"
	"github.com/stayware/stayflow/pkg/notification"
)

func validPayload() *models.NotificationPayload {
	return &models.NotificationPayload{
		Type:          models.NotifyBillGenerated,
		WorkspaceID:   "ws-1",
		RecipientID:   "tenant-1",
		RecipientRole: models.RoleTenant,
		Channels:      []models.NotificationChannel{models.ChannelEmail, models.ChannelInApp},
		Priority:      models.PriorityHigh,
		Data:          map[string]any{"bill_id": "bill-1", "total": 8500.0},
	}
}

func TestMemoryDispatcher_RejectsInvalidPayloads(t *testing.T) {
	t.Parallel()

	dispatcher := notification.NewMemoryDispatcher()
	ctx := context.Background()

	missingType := validPayload()
	missingType.Type = ""
	_, err := dispatcher.Send(ctx, missingType)
	assert.ErrorIs(t, err, notification.ErrInvalidPayload)

	missingRecipient := validPayload()
	missingRecipient.RecipientID = ""
	_, err = dispatcher.Send(ctx, missingRecipient)
	assert.ErrorIs(t, err, notification.ErrInvalidPayload)

	noChannels := validPayload()
	noChannels.Channels = nil
	_, err = dispatcher.Send(ctx, noChannels)
	assert.ErrorIs(t, err, notification.ErrInvalidPayload)

	badChannel := validPayload()
	badChannel.Channels = []models.NotificationChannel{"fax"}
	_, err = dispatcher.Send(ctx, badChannel)
	assert.ErrorIs(t, err, notification.ErrInvalidPayload)

	assert.Empty(t, dispatcher.Sent())
}

func TestMemoryDispatcher_SendBatchAssignsIDs(t *testing.T) {
	t.Parallel()

	dispatcher := notification.NewMemoryDispatcher()

	ids, err := dispatcher.SendBatch(context.Background(), []*models.NotificationPayload{
		validPayload(), validPayload(),
	})
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])
	assert.Len(t, dispatcher.Sent(), 2)
}

func TestWatermillDispatcher_PublishesToTopic(t *testing.T) {
	t.Parallel()

	publisher, subscriber, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := subscriber.Subscribe(ctx, notification.Topic)
	require.NoError(t, err)

	received := make(chan *message.Message, 1)

	go func() {
		for msg := range messages {
			msg.Ack()
			received <- msg
		}
	}()

	dispatcher := notification.NewWatermillDispatcher(publisher)

	id, err := dispatcher.Send(ctx, validPayload())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	select {
	case msg := <-received:
		assert.Equal(t, id, msg.UUID)
		assert.Equal(t, string(models.NotifyBillGenerated), msg.Metadata.Get(notification.TypeMetadataKey))
		assert.Equal(t, "ws-1", msg.Metadata.Get(notification.WorkspaceMetadataKey))
		assert.Equal(t, string(models.PriorityHigh), msg.Metadata.Get(notification.PriorityMetadataKey))

		var payload models.NotificationPayload

		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.Equal(t, id, payload.ID)
		assert.Equal(t, "tenant-1", payload.RecipientID)
	case <-ctx.Done():
		t.Fatal("timed out waiting for the published notification")
	}
}

func TestWatermillDispatcher_DefaultsPriority(t *testing.T) {
	t.Parallel()

	publisher, subscriber, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := subscriber.Subscribe(ctx, notification.Topic)
	require.NoError(t, err)

	received := make(chan *message.Message, 1)

	go func() {
		for msg := range messages {
			msg.Ack()
			received <- msg
		}
	}()

	payload := validPayload()
	payload.Priority = ""

	_, err = notification.NewWatermillDispatcher(publisher).Send(ctx, payload)
	require.NoError(t, err)

	select {
	case msg := <-received:
		assert.Equal(t, string(models.PriorityNormal), msg.Metadata.Get(notification.PriorityMetadataKey))
	case <-ctx.Done():
		t.Fatal("timed out waiting for the published notification")
	}
}
