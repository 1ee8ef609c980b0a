package notification

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/stayware/stayflow/pkg/models"
)

// MemoryDispatcher collects payloads instead of publishing them. Test
// helper.
type MemoryDispatcher struct {
	mu   sync.Mutex
	sent []*models.NotificationPayload

	// FailWith, when set, is returned from every Send call.
	FailWith error
}

func NewMemoryDispatcher() *MemoryDispatcher {
	return &MemoryDispatcher{}
}

func (d *MemoryDispatcher) Send(_ context.Context, payload *models.NotificationPayload) (string, error) {
	if d.FailWith != nil {
		return "", d.FailWith
	}

	if err := validatePayload(payload); err != nil {
		return "", err
	}

	if payload.ID == "" {
		payload.ID = uuid.New().String()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.sent = append(d.sent, payload)

	return payload.ID, nil
}

func (d *MemoryDispatcher) SendBatch(ctx context.Context, payloads []*models.NotificationPayload) ([]string, error) {
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

// Sent returns the payloads dispatched so far, in order.
func (d *MemoryDispatcher) Sent() []*models.NotificationPayload {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]*models.NotificationPayload, len(d.sent))
	copy(out, d.sent)

	return out
}
