package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hkm-site/internal/content"
	"hkm-site/internal/domain/data"
	"hkm-site/internal/locks"

	"go.uber.org/zap"
)

const syncLockName = "sync-events"

var (
	ErrSyncInProgress = errors.New("event sync already running")
	ErrNotConfigured  = errors.New("google calendar integration is not configured")
)

// Syncer copies upcoming Google Calendar events into collection_events so page
// loads never have to call the calendar API.
type Syncer struct {
	Logger  *zap.SugaredLogger
	Client  CalendarClient
	Store   content.Store
	Locker  locks.Locker
	LockTTL time.Duration
}

func NewSyncer(logger *zap.SugaredLogger, client CalendarClient, store content.Store, locker locks.Locker, lockTTL time.Duration) *Syncer {
	return &Syncer{
		Logger:  logger,
		Client:  client,
		Store:   store,
		Locker:  locker,
		LockTTL: lockTTL,
	}
}

func (s *Syncer) Sync(ctx context.Context, apiKey, calendarID string) (int, error) {
	acquired, err := s.Locker.Acquire(ctx, syncLockName, s.LockTTL)
	if err != nil {
		return 0, err
	}
	if !acquired {
		return 0, ErrSyncInProgress
	}

	defer func() {
		if err := s.Locker.Release(context.WithoutCancel(ctx), syncLockName); err != nil {
			s.Logger.Warnw("Failed to release sync lock", "error", err)
		}
	}()

	fetched, err := s.Client.Upcoming(ctx, apiKey, calendarID)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch upcoming events: %w", err)
	}

	if fetched == nil {
		fetched = []data.Event{}
	}

	if err := s.Store.Write(ctx, data.KeyCollectionEvents, map[string]any{"items": fetched}); err != nil {
		return 0, err
	}

	s.Logger.Infow("Synced events", "calendarID", calendarID, "count", len(fetched))

	return len(fetched), nil
}

// SyncConfigured reads the calendar credentials from settings_integrations.
func (s *Syncer) SyncConfigured(ctx context.Context) (int, error) {
	integrations, ok := content.ReadAs[data.IntegrationSettings](ctx, s.Logger, s.Store, data.KeySettingsIntegrations)
	if !ok || !integrations.GoogleCalendar.Configured() {
		return 0, ErrNotConfigured
	}

	return s.Sync(ctx, integrations.GoogleCalendar.APIKey, integrations.GoogleCalendar.CalendarID)
}

// Every runs SyncConfigured immediately and then on each tick until ctx ends.
func (s *Syncer) Every(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.SyncConfigured(ctx); err != nil && !errors.Is(err, ErrSyncInProgress) {
			s.Logger.Errorw("Event sync failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
