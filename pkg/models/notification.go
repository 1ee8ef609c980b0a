package models

import "time"

// NotificationType names the business event a notification is about.
type NotificationType string

const (
	NotifyTenantCreated         NotificationType = "tenant.created"
	NotifyBillGenerated         NotificationType = "bill.generated"
	NotifyPaymentReceived       NotificationType = "payment.received"
	NotifyComplaintResolved     NotificationType = "complaint.resolved"
	NotifyNoticePublished       NotificationType = "notice.published"
	NotifyApprovalRequested     NotificationType = "approval.requested"
	NotifyApprovalDecided       NotificationType = "approval.decided"
	NotifyExitClearanceStarted  NotificationType = "exit_clearance.started"
	NotifyExitClearanceComplete NotificationType = "exit_clearance.completed"
	NotifyDuesReminder          NotificationType = "dues.reminder"
)

// NotificationChannel is a delivery channel handled by an external sender.
type NotificationChannel string

const (
	ChannelEmail    NotificationChannel = "email"
	ChannelWhatsApp NotificationChannel = "whatsapp"
	ChannelInApp    NotificationChannel = "in_app"
	ChannelPush     NotificationChannel = "push"
)

func (c NotificationChannel) IsValid() bool {
	switch c {
	case ChannelEmail, ChannelWhatsApp, ChannelInApp, ChannelPush:
		return true
	}

	return false
}

type NotificationPriority string

const (
	PriorityLow      NotificationPriority = "low"
	PriorityNormal   NotificationPriority = "normal"
	PriorityHigh     NotificationPriority = "high"
	PriorityCritical NotificationPriority = "critical"
)

// NotificationPayload is what the engine hands to the dispatcher. Delivery
// success or failure belongs to the channel senders consuming the topic,
// never to the engine.
type NotificationPayload struct {
	ID            string                `json:"id"`
	Type          NotificationType      `json:"type"           validate:"required"`
	WorkspaceID   string                `json:"workspace_id"   validate:"required"`
	RecipientID   string                `json:"recipient_id"   validate:"required"`
	RecipientRole ActorRole             `json:"recipient_role" validate:"required"`
	Channels      []NotificationChannel `json:"channels"       validate:"required,min=1"`
	Data          map[string]any        `json:"data,omitempty"`
	Priority      NotificationPriority  `json:"priority,omitempty"`
	ScheduledAt   *time.Time            `json:"scheduled_at,omitempty"`
}
