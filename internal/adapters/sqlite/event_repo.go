package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/workhub/internal/ports/secondary"
)

// EventRepository implements secondary.EventRepository with SQLite.
type EventRepository struct {
	db Querier
}

// NewEventRepository creates a new SQLite execution event repository.
func NewEventRepository(db Querier) *EventRepository {
	return &EventRepository{db: db}
}

// Append stores an event and sets event.Sequence.
//
// The sequence is read and written by one statement; combined with the
// IMMEDIATE transaction the caller holds, the per-run sequence stays dense.
// UNIQUE(run_id, sequence) is the backstop if that contract is ever broken.
func (r *EventRepository) Append(ctx context.Context, event *secondary.EventRecord) error {
	payload, err := encodeMap(event.Payload)
	if err != nil {
		return err
	}

	var seq int64
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO execution_events
			(id, workspace_id, run_id, type, actor_type, actor_id, payload, sequence, created_at)
		SELECT ?, ?, ?, ?, ?, ?, ?, COALESCE(MAX(sequence), 0) + 1, ?
		FROM execution_events WHERE run_id = ?
		RETURNING sequence`,
		event.ID, event.WorkspaceID, event.RunID, event.Type, event.ActorType, event.ActorID, payload,
		event.CreatedAt.UTC(), event.RunID,
	).Scan(&seq)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	event.Sequence = seq
	return nil
}

// ListByRun returns the run's events after afterSequence, ordered by sequence ascending.
func (r *EventRepository) ListByRun(ctx context.Context, workspaceID, runID string, afterSequence int64) ([]*secondary.EventRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, workspace_id, run_id, type, actor_type, actor_id, payload, sequence, created_at
		FROM execution_events
		WHERE workspace_id = ? AND run_id = ? AND sequence > ?
		ORDER BY sequence ASC`,
		workspaceID, runID, afterSequence,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := []*secondary.EventRecord{}
	for rows.Next() {
		var (
			payload   string
			createdAt time.Time
		)
		record := &secondary.EventRecord{}
		if err := rows.Scan(&record.ID, &record.WorkspaceID, &record.RunID, &record.Type, &record.ActorType,
			&record.ActorID, &payload, &record.Sequence, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		m, err := decodeMap(payload)
		if err != nil {
			return nil, err
		}
		record.Payload = m
		record.CreatedAt = createdAt.UTC()
		events = append(events, record)
	}
	return events, rows.Err()
}

// Ensure EventRepository implements the interface
var _ secondary.EventRepository = (*EventRepository)(nil)
