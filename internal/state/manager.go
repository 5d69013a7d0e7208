package state

import (
	"context"
	"sync"
	"time"

	"github.com/Seyyyeddd/executive-ai-assistant/internal/interrupt"
	"github.com/Seyyyeddd/executive-ai-assistant/pkg/cerr"
)

// Manager serializes every mutation of the tracking document and persists
// each one as a full rewrite. All accessors are safe for concurrent use by
// the poller and the conversation handlers.
type Manager struct {
	mu   sync.Mutex
	repo Repository
	st   *State
}

// NewManager loads the persisted document and keeps it cached.
func NewManager(ctx context.Context, repo Repository) (*Manager, error) {
	st, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Manager{repo: repo, st: st}, nil
}

// mutate applies fn under the lock and persists the result. A failed persist
// keeps the mutated document cached; the next successful save writes it out.
func (m *Manager) mutate(ctx context.Context, fn func(s *State) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := fn(m.st); err != nil {
		return err
	}
	return m.repo.Save(ctx, m.st)
}

// Track stores a freshly extracted record. Re-extraction replaces the
// record wholesale but keeps delivery bookkeeping of the earlier entry.
func (m *Manager) Track(ctx context.Context, rec *interrupt.Record) error {
	return m.mutate(ctx, func(s *State) error {
		existing, ok := s.Interrupts[rec.ThreadID]
		if !ok {
			s.Interrupts[rec.ThreadID] = &StoredInterrupt{
				Data:      rec,
				Status:    StatusPending,
				Timestamp: time.Now().UTC(),
			}
			return nil
		}
		existing.Data = rec
		return nil
	})
}

// MarkSent records where the interrupt was delivered.
func (m *Manager) MarkSent(ctx context.Context, threadID string, chatID int64, messageID int) error {
	return m.mutate(ctx, func(s *State) error {
		entry, ok := s.Interrupts[threadID]
		if !ok {
			return cerr.NewError(cerr.NotFound, "interrupt not tracked", nil)
		}
		entry.Status = StatusSent
		entry.ChatID = chatID
		entry.MessageID = messageID
		return nil
	})
}

// SetStatus moves a tracked interrupt through its lifecycle.
func (m *Manager) SetStatus(ctx context.Context, threadID string, status Status) error {
	return m.mutate(ctx, func(s *State) error {
		entry, ok := s.Interrupts[threadID]
		if !ok {
			return cerr.NewError(cerr.NotFound, "interrupt not tracked", nil)
		}
		entry.Status = status
		return nil
	})
}

// Get returns a copy of one tracked entry.
func (m *Manager) Get(threadID string) (StoredInterrupt, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.st.Interrupts[threadID]
	if !ok {
		return StoredInterrupt{}, false
	}
	return *entry, true
}

// Tracked reports whether the thread already has an entry.
func (m *Manager) Tracked(threadID string) bool {
	_, ok := m.Get(threadID)
	return ok
}

// Pending returns the thread IDs that have not been delivered yet.
func (m *Manager) Pending() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, entry := range m.st.Interrupts {
		if entry.Status == StatusPending {
			ids = append(ids, id)
		}
	}
	return ids
}

// Snapshot returns a shallow copy of every tracked entry.
func (m *Manager) Snapshot() map[string]StoredInterrupt {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]StoredInterrupt, len(m.st.Interrupts))
	for id, entry := range m.st.Interrupts {
		out[id] = *entry
	}
	return out
}

// Session returns the operator's current conversation position.
func (m *Manager) Session() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.UserState.Session()
}

// SetSession replaces the conversation position.
func (m *Manager) SetSession(ctx context.Context, s Session) error {
	return m.mutate(ctx, func(st *State) error {
		st.UserState = NewSessionState(s)
		return nil
	})
}

// TouchLastChecked stamps the end of a polling cycle.
func (m *Manager) TouchLastChecked(ctx context.Context) error {
	return m.mutate(ctx, func(s *State) error {
		s.LastChecked = time.Now().UTC()
		return nil
	})
}

// LastChecked returns the timestamp of the latest completed polling cycle.
func (m *Manager) LastChecked() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.LastChecked
}
