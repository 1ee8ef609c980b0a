package workflow

// Options tune one workflow invocation.
type Options struct {
	// SkipAudit suppresses the audit batch write for this run.
	SkipAudit bool

	// SkipNotifications suppresses notification dispatch for this run.
	SkipNotifications bool

	// Metadata is attached to the workflow context and to the engine's own
	// audit events.
	Metadata map[string]any

	// IdempotencyKey deduplicates repeated invocations of the same logical
	// operation within the store's TTL window. Empty disables deduplication.
	IdempotencyKey string

	// Client provenance stamped onto audit events that don't set their own.
	IPAddress string
	UserAgent string
}
