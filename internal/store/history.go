package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MikeSquared-Agency/loom/internal/history"
)

// SessionHistory loads the full ordered history batch for a session. The
// response and source columns are JSONB in the wire shapes the normalizer
// expects.
func (s *Store) SessionHistory(ctx context.Context, sessionID string) ([]history.HistoryStep, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT message_id, session_id, row_id,
		       COALESCE(system, ''), COALESCE(question, ''), COALESCE(updated_at, ''),
		       response, source,
		       COALESCE(response_comment, ''), COALESCE(response_rank, 0),
		       COALESCE(source_comment, ''), COALESCE(source_rank, 0)
		FROM session_history
		WHERE session_id = $1
		ORDER BY seq ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query session history: %w", err)
	}
	defer rows.Close()

	var steps []history.HistoryStep
	for rows.Next() {
		var step history.HistoryStep
		var response, source []byte
		if err := rows.Scan(
			&step.MessageID, &step.SessionID, &step.RowID,
			&step.System, &step.Question, &step.UpdatedAt,
			&response, &source,
			&step.ResponseComment, &step.ResponseRank,
			&step.SourceComment, &step.SourceRank,
		); err != nil {
			return nil, fmt.Errorf("scan history step: %w", err)
		}
		if len(response) > 0 {
			if err := json.Unmarshal(response, &step.Response); err != nil {
				return nil, fmt.Errorf("decode response items for %s: %w", step.MessageID, err)
			}
		}
		if len(source) > 0 {
			if err := json.Unmarshal(source, &step.Source); err != nil {
				return nil, fmt.Errorf("decode source refs for %s: %w", step.MessageID, err)
			}
		}
		steps = append(steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session history: %w", err)
	}
	return steps, nil
}
