package store

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Append-only audit trail.
			CREATE TABLE audit_events (
				id UUID PRIMARY KEY,
				workspace_id VARCHAR(255) NOT NULL,
				entity_type VARCHAR(50) NOT NULL,
				entity_id VARCHAR(255) NOT NULL,
				action VARCHAR(50) NOT NULL,
				actor_id VARCHAR(255) NOT NULL,
				actor_role VARCHAR(50) NOT NULL,
				before_snapshot JSONB,
				after_snapshot JSONB,
				fields_changed TEXT[],
				metadata JSONB,
				ip_address VARCHAR(64),
				user_agent TEXT,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_audit_events_workspace ON audit_events(workspace_id, created_at DESC);
			CREATE INDEX idx_audit_events_entity ON audit_events(workspace_id, entity_type, entity_id);
			CREATE INDEX idx_audit_events_actor ON audit_events(workspace_id, actor_id);
		`,
		2: `
			-- Idempotency records with a TTL window.
			CREATE TABLE idempotency_keys (
				key VARCHAR(255) PRIMARY KEY,
				workflow_name VARCHAR(255) NOT NULL,
				actor_id VARCHAR(255) NOT NULL,
				workspace_id VARCHAR(255) NOT NULL,
				result JSONB,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				expires_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_idempotency_keys_expires_at ON idempotency_keys(expires_at);
		`,
	}
}
