package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/janus-access/server/internal/janus/model"
	"github.com/janus-access/server/internal/janus/store"
)

// Audit-side queries over the shared log slice. Results are copies in
// newest-first order, matching the sqlite store.

func (s *Store) RecentLogs(_ context.Context, limit int) ([]model.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterLogs(limit, func(e *model.LogEntry) bool { return true }), nil
}

func (s *Store) RecentFailures(_ context.Context, since time.Time, limit int) ([]model.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterLogs(limit, func(e *model.LogEntry) bool {
		return e.Status != model.StatusGranted && !e.Timestamp.Before(since)
	}), nil
}

func (s *Store) SuspiciousSince(_ context.Context, since time.Time) ([]model.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterLogs(0, func(e *model.LogEntry) bool {
		return e.Suspicious && !e.Timestamp.Before(since)
	}), nil
}

func (s *Store) HistoryForUser(_ context.Context, userID int64, since time.Time) ([]model.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterLogs(0, func(e *model.LogEntry) bool {
		return e.UserID != nil && *e.UserID == userID && !e.Timestamp.Before(since)
	}), nil
}

func (s *Store) HistoryForZone(_ context.Context, zoneID int64, since time.Time) ([]model.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterLogs(0, func(e *model.LogEntry) bool {
		return e.ZoneID != nil && *e.ZoneID == zoneID && !e.Timestamp.Before(since)
	}), nil
}

func (s *Store) AttemptCountForCard(_ context.Context, cardID int64, since time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for i := range s.logs {
		e := &s.logs[i]
		if e.CardID != nil && *e.CardID == cardID && !e.Timestamp.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *Store) MarkSuspicious(_ context.Context, logID string, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.logIndex[logID]
	if !ok {
		return fmt.Errorf("MarkSuspicious %s: %w", logID, store.ErrNotFound)
	}
	e := s.logs[idx]
	e.MarkSuspicious(note)
	s.logs[idx] = e
	return nil
}

func (s *Store) PruneOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.logs[:0]
	var removed int64
	for _, e := range s.logs {
		if e.Timestamp.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.logs = kept
	s.logIndex = make(map[string]int, len(s.logs))
	for i := range s.logs {
		s.logIndex[s.logs[i].ID] = i
	}
	return removed, nil
}

// filterLogs walks the log newest-first collecting matches. limit <= 0
// means unlimited. Caller holds s.mu.
func (s *Store) filterLogs(limit int, match func(*model.LogEntry) bool) []model.LogEntry {
	var out []model.LogEntry
	for i := len(s.logs) - 1; i >= 0; i-- {
		if !match(&s.logs[i]) {
			continue
		}
		out = append(out, s.logs[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
