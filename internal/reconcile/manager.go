package reconcile

import (
	"context"
	"log/slog"
	"sync"

	"github.com/MikeSquared-Agency/loom/internal/artifact"
	"github.com/MikeSquared-Agency/loom/internal/history"
	"github.com/MikeSquared-Agency/loom/internal/timeline"
)

// Manager owns one driver per session, created on demand. Timelines live for
// the life of the process; a session's driver is never replaced.
type Manager struct {
	coord    *artifact.Coordinator
	notifier Notifier
	logger   *slog.Logger

	mu      sync.Mutex
	drivers map[string]*Driver
}

func NewManager(coord *artifact.Coordinator, notifier Notifier, logger *slog.Logger) *Manager {
	return &Manager{
		coord:    coord,
		notifier: notifier,
		logger:   logger,
		drivers:  make(map[string]*Driver),
	}
}

// Driver returns the session's driver, creating it on first use.
func (m *Manager) Driver(sessionID string) *Driver {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drivers[sessionID]
	if !ok {
		d = NewDriver(sessionID, m.coord, m.notifier, m.logger)
		m.drivers[sessionID] = d
	}
	return d
}

// Reconcile folds a history batch into the session's timeline.
func (m *Manager) Reconcile(ctx context.Context, sessionID string, steps []history.HistoryStep) (*BatchResult, error) {
	return m.Driver(sessionID).Reconcile(ctx, steps)
}

// Timeline returns the session's timeline snapshot. ok is false when no
// timeline exists for the session yet.
func (m *Manager) Timeline(sessionID string) ([]timeline.Message, bool) {
	m.mu.Lock()
	d, ok := m.drivers[sessionID]
	m.mu.Unlock()
	if !ok {
		return nil, false
	}
	return d.Timeline(), true
}

// Citation returns the session's current citation, if any.
func (m *Manager) Citation(sessionID string) (*history.SourceRef, bool) {
	m.mu.Lock()
	d, ok := m.drivers[sessionID]
	m.mu.Unlock()
	if !ok {
		return nil, false
	}
	c := d.Citation()
	return c, c != nil
}
