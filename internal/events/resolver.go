package events

import (
	"context"

	"hkm-site/internal/content"
	"hkm-site/internal/domain/data"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type CalendarClient interface {
	Upcoming(ctx context.Context, apiKey, calendarID string) ([]data.Event, error)
}

type Resolver struct {
	Logger *zap.SugaredLogger
	Reader content.Reader
	Client CalendarClient
}

func NewResolver(logger *zap.SugaredLogger, reader content.Reader, client CalendarClient) *Resolver {
	return &Resolver{
		Logger: logger,
		Reader: reader,
		Client: client,
	}
}

// Resolve prefers the stored events collection and falls back to the Google
// Calendar integration. It never fails: every problem yields an empty list.
func (r *Resolver) Resolve(ctx context.Context) []data.Event {
	ctx, span := otel.Tracer("events").Start(ctx, "events.resolve")
	defer span.End()

	stored := content.ReadItems[data.Event](ctx, r.Logger, r.Reader, data.KeyCollectionEvents)
	if len(stored) > 0 {
		span.SetAttributes(attribute.String("events.source", "collection"), attribute.Int("events.count", len(stored)))
		return stored
	}

	integrations, ok := content.ReadAs[data.IntegrationSettings](ctx, r.Logger, r.Reader, data.KeySettingsIntegrations)
	if !ok || !integrations.GoogleCalendar.Configured() || r.Client == nil {
		return []data.Event{}
	}

	gcal := integrations.GoogleCalendar
	r.Logger.Infow("Fetching events from Google Calendar", "calendarID", gcal.CalendarID)

	fetched, err := r.Client.Upcoming(ctx, gcal.APIKey, gcal.CalendarID)
	if err != nil {
		r.Logger.Errorw("Failed to fetch Google Calendar events", "calendarID", gcal.CalendarID, "error", err)
		span.RecordError(err)
		return []data.Event{}
	}

	span.SetAttributes(attribute.String("events.source", "google-calendar"), attribute.Int("events.count", len(fetched)))

	if fetched == nil {
		return []data.Event{}
	}
	return fetched
}
