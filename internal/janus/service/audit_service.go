package service

import (
	"context"
	"time"

	"github.com/janus-access/server/internal/janus/model"
	"github.com/janus-access/server/internal/janus/store"
)

// AuditService is the read surface over the access log, plus the
// retroactive suspicion flag. All queries are pure: re-running them
// never alters counters or log state.
type AuditService struct {
	logs store.AuditStore
}

func NewAuditService(logs store.AuditStore) *AuditService {
	return &AuditService{logs: logs}
}

func (s *AuditService) Recent(ctx context.Context, limit int) ([]model.LogEntry, error) {
	return s.logs.RecentLogs(ctx, limit)
}

// RecentFailures returns denied decisions within the window, newest
// first.
func (s *AuditService) RecentFailures(ctx context.Context, window time.Duration, limit int) ([]model.LogEntry, error) {
	return s.logs.RecentFailures(ctx, time.Now().UTC().Add(-window), limit)
}

func (s *AuditService) Suspicious(ctx context.Context, window time.Duration) ([]model.LogEntry, error) {
	return s.logs.SuspiciousSince(ctx, time.Now().UTC().Add(-window))
}

func (s *AuditService) UserHistory(ctx context.Context, userID int64, window time.Duration) ([]model.LogEntry, error) {
	return s.logs.HistoryForUser(ctx, userID, time.Now().UTC().Add(-window))
}

func (s *AuditService) ZoneHistory(ctx context.Context, zoneID int64, window time.Duration) ([]model.LogEntry, error) {
	return s.logs.HistoryForZone(ctx, zoneID, time.Now().UTC().Add(-window))
}

func (s *AuditService) CardAttemptCount(ctx context.Context, cardID int64, window time.Duration) (int, error) {
	return s.logs.AttemptCountForCard(ctx, cardID, time.Now().UTC().Add(-window))
}

func (s *AuditService) FlagSuspicious(ctx context.Context, logID, note string) error {
	return s.logs.MarkSuspicious(ctx, logID, note)
}
