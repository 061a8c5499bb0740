package artifact

import (
	"context"
	"fmt"

	"github.com/MikeSquared-Agency/loom/internal/history"
)

// Artifact is an opaque binary payload (e.g. a chart image) referenced by
// path from an image response item.
type Artifact struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Ref         string `json:"ref"` // where the bytes can be addressed again
	Data        []byte `json:"data"`
}

// Fetcher retrieves binary artifacts for a session. A nil artifact with a nil
// error is a valid "no data" response, not a failure.
type Fetcher interface {
	FetchArtifact(ctx context.Context, sessionID, contextID, path string) (*Artifact, error)
}

// DataSheet is the tabular companion detail for one resolved image.
type DataSheet struct {
	MessageID string     `json:"message_id"`
	SubIndex  int        `json:"index_sub"`
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
}

// SheetLookup retrieves the data-sheet companion for a step's resolved image.
// Invoked fire-and-forget; results are advisory.
type SheetLookup interface {
	FetchDataSheet(ctx context.Context, step history.HistoryStep, subIndex int) (*DataSheet, error)
}

// FetchError reports a failed artifact retrieval with its step context. It is
// terminal for that one image only: sibling fetches and the rest of the batch
// continue.
type FetchError struct {
	SessionID string
	Path      string
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch artifact %s for session %s: %v", e.Path, e.SessionID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
