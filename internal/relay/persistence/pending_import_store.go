package persistence

import (
	"log/slog"
	"sync"
	"time"

	"cfguard-bot/internal/relay/usecases"
)

type pendingImport struct {
	project   string
	createdAt time.Time
}

// SimplePendingImportStore keeps pending imports in memory, one per session.
// With a ttl > 0 entries older than ttl are treated as absent.
type SimplePendingImportStore struct {
	pending map[string]pendingImport
	mutex   sync.Mutex
	ttl     time.Duration
	now     func() time.Time
}

func NewSimplePendingImportStore(ttl time.Duration) *SimplePendingImportStore {
	return &SimplePendingImportStore{
		pending: make(map[string]pendingImport),
		ttl:     ttl,
		now:     time.Now,
	}
}

var _ usecases.PendingImportStore = (*SimplePendingImportStore)(nil)

// WithClock replaces the clock used to age entries.
func (s *SimplePendingImportStore) WithClock(now func() time.Time) *SimplePendingImportStore {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.now = now
	return s
}

func (s *SimplePendingImportStore) Begin(session, project string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if previous, exists := s.pending[session]; exists && !s.expired(previous) {
		slog.Debug("pending import replaced",
			slog.String("session", session),
			slog.String("previous_project", previous.project),
			slog.String("project", project))
	}
	s.pending[session] = pendingImport{project: project, createdAt: s.now()}
}

func (s *SimplePendingImportStore) Take(session string) (string, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entry, exists := s.pending[session]
	if !exists {
		return "", false
	}
	delete(s.pending, session)

	if s.expired(entry) {
		slog.Info("pending import expired", slog.String("session", session), slog.String("project", entry.project))
		return "", false
	}
	return entry.project, true
}

func (s *SimplePendingImportStore) Cancel(session string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entry, exists := s.pending[session]
	if !exists {
		return false
	}
	delete(s.pending, session)
	return !s.expired(entry)
}

// Len counts the live pending imports.
func (s *SimplePendingImportStore) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	count := 0
	for _, entry := range s.pending {
		if !s.expired(entry) {
			count++
		}
	}
	return count
}

// Sweep drops expired entries and returns how many were dropped.
func (s *SimplePendingImportStore) Sweep() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	removed := 0
	for session, entry := range s.pending {
		if s.expired(entry) {
			delete(s.pending, session)
			removed++
		}
	}
	if removed > 0 {
		slog.Info("expired pending imports swept", slog.Int("removed", removed), slog.Int("remaining", len(s.pending)))
	}
	return removed
}

func (s *SimplePendingImportStore) expired(entry pendingImport) bool {
	return s.ttl > 0 && s.now().Sub(entry.createdAt) > s.ttl
}
