// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store persists console-local data in PostgreSQL. The audit log
// records every mutation the ordering backend accepted: what changed, which
// operation, and the request that caused it.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"zakazadmin/internal/requestid"
)

// AuditStore handles audit log operations.
type AuditStore struct {
	db *sql.DB
}

// NewAuditStore creates a new AuditStore.
func NewAuditStore(db *sql.DB) *AuditStore {
	return &AuditStore{db: db}
}

// AuditEntry represents a single recorded mutation.
type AuditEntry struct {
	ID         int64
	Entity     string
	EntityID   int64
	Action     string
	RequestID  string
	RecordedAt time.Time
}

// Mutated records a mutation. The request id is taken from ctx. Failures
// are logged and swallowed: the backend already applied the change.
func (s *AuditStore) Mutated(ctx context.Context, entity, action string, id int64) {
	rid := requestid.From(ctx)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (entity, entity_id, action, request_id)
		VALUES ($1, $2, $3, $4)
	`, entity, id, action, rid)
	if err != nil {
		slog.Warn("failed to record audit entry",
			"entity", entity,
			"entity_id", id,
			"action", action,
			"request_id", rid,
			"error", err,
		)
		return
	}
	slog.Debug("audit entry recorded", "entity", entity, "entity_id", id, "action", action)
}

// Recent returns the most recent audit entries, newest first.
func (s *AuditStore) Recent(ctx context.Context, limit int) ([]AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, entity, entity_id, action, request_id, recorded_at
		FROM audit_log
		ORDER BY recorded_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.Entity, &e.EntityID, &e.Action, &e.RequestID, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ForEntity returns the history of one entity, newest first.
func (s *AuditStore) ForEntity(ctx context.Context, entity string, id int64) ([]AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, entity, entity_id, action, request_id, recorded_at
		FROM audit_log
		WHERE entity = $1 AND entity_id = $2
		ORDER BY recorded_at DESC, id DESC
	`, entity, id)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.Entity, &e.EntityID, &e.Action, &e.RequestID, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
