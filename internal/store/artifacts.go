package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/loom/internal/artifact"
	"github.com/MikeSquared-Agency/loom/internal/history"
)

// FetchArtifact loads one artifact blob. No row for the path is a valid
// "no data" outcome and returns (nil, nil).
func (s *Store) FetchArtifact(ctx context.Context, sessionID, contextID, path string) (*artifact.Artifact, error) {
	var art artifact.Artifact
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(name, ''), COALESCE(content_type, ''), data
		FROM session_artifacts
		WHERE session_id = $1 AND context_id = $2 AND path = $3`,
		sessionID, contextID, path,
	).Scan(&art.Name, &art.ContentType, &art.Data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query artifact: %w", err)
	}
	if len(art.Data) == 0 {
		return nil, nil
	}
	art.Ref = fmt.Sprintf("pg://%s/%s/%s", sessionID, contextID, path)
	return &art, nil
}

// FetchDataSheet loads the tabular companion detail for one resolved image.
func (s *Store) FetchDataSheet(ctx context.Context, step history.HistoryStep, subIndex int) (*artifact.DataSheet, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `
		SELECT sheet
		FROM session_datasheets
		WHERE session_id = $1 AND message_id = $2 AND index_sub = $3`,
		step.SessionID, step.MessageID, subIndex,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query data sheet: %w", err)
	}

	sheet := artifact.DataSheet{MessageID: step.MessageID, SubIndex: subIndex}
	if err := json.Unmarshal(payload, &sheet); err != nil {
		return nil, fmt.Errorf("decode data sheet: %w", err)
	}
	return &sheet, nil
}
