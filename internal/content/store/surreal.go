package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"hkm-site/internal/domain/config"

	surrealdb "github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/models"
	"go.uber.org/zap"
)

const (
	surrealTable   = "content"
	surrealField   = "data"
	surrealTimeout = 5 * time.Second
)

type SurrealBackend struct {
	db     *surrealdb.DB
	logger *zap.SugaredLogger
}

func DialSurreal(ctx context.Context, logger *zap.SugaredLogger, conn config.ContentConnection) (*SurrealBackend, error) {
	db, err := surrealdb.FromEndpointURLString(ctx, conn.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to surrealdb: %w", err)
	}

	if conn.User != "" {
		if _, err := db.SignIn(ctx, map[string]any{
			"user": conn.User,
			"pass": conn.Password,
		}); err != nil {
			_ = db.Close(ctx)
			return nil, fmt.Errorf("failed to sign in to surrealdb: %w", err)
		}
	}

	if err := db.Use(ctx, conn.Namespace, conn.Database); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("failed to use namespace/database: %w", err)
	}

	logger.Infow("Connected to SurrealDB content store", "endpoint", conn.Endpoint, "ns", conn.Namespace, "db", conn.Database)

	return &SurrealBackend{
		db:     db,
		logger: logger,
	}, nil
}

func (b *SurrealBackend) recordID(key string) models.RecordID {
	return models.NewRecordID(surrealTable, key)
}

func (b *SurrealBackend) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, surrealTimeout)
	defer cancel()

	record, err := surrealdb.Select[map[string]any](ctx, b.db, b.recordID(key))
	if err != nil {
		if isSurrealNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to select %s: %w", key, err)
	}

	if record == nil || len(*record) == 0 {
		return nil, ErrNotFound
	}
	if _, ok := (*record)[surrealField]; !ok {
		return nil, ErrNotFound
	}

	return encodeRecord(*record)
}

func (b *SurrealBackend) Merge(ctx context.Context, key string, partial map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, surrealTimeout)
	defer cancel()

	patch, err := normalize(partial)
	if err != nil {
		return err
	}

	_, err = surrealdb.Query[[]map[string]any](ctx, b.db, "UPSERT $rid MERGE { data: $patch }", map[string]any{
		"rid":   b.recordID(key),
		"patch": patch,
	})
	if err != nil {
		return fmt.Errorf("failed to merge %s: %w", key, err)
	}

	return nil
}

func (b *SurrealBackend) Watch(ctx context.Context, key string) (Watch, error) {
	live, err := surrealdb.Live(ctx, b.db, surrealTable, false)
	if err != nil {
		return nil, fmt.Errorf("failed to start live query: %w", err)
	}

	notifications, err := b.db.LiveNotifications(live.String())
	if err != nil {
		_ = surrealdb.Kill(ctx, b.db, live.String())
		return nil, fmt.Errorf("failed to get live notifications: %w", err)
	}

	w := &surrealWatch{
		backend: b,
		liveID:  live.String(),
		ch:      make(chan []byte, watchBuffer),
	}

	initial, err := b.Get(ctx, key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		b.logger.Warnw("Initial snapshot for live query failed", "key", key, "error", err)
	}

	go w.forward(key, initial, notifications)

	return w, nil
}

func (b *SurrealBackend) Close(ctx context.Context) error {
	return b.db.Close(ctx)
}

type surrealWatch struct {
	backend *SurrealBackend
	liveID  string
	ch      chan []byte
	once    sync.Once
}

func (w *surrealWatch) forward(key string, initial []byte, notifications chan connection.Notification) {
	defer close(w.ch)

	if initial != nil {
		w.ch <- initial
	}

	for n := range notifications {
		if n.Action == connection.DeleteAction {
			continue
		}

		record, ok := n.Result.(map[string]any)
		if !ok || !recordHasKey(record, key) {
			continue
		}

		raw, err := encodeRecord(record)
		if err != nil {
			w.backend.logger.Warnw("Dropping undecodable live notification", "key", key, "error", err)
			continue
		}

		w.ch <- raw
	}
}

func (w *surrealWatch) Updates() <-chan []byte {
	return w.ch
}

// Close kills the live query, which closes the notification channel.
func (w *surrealWatch) Close() error {
	var err error
	w.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), surrealTimeout)
		defer cancel()

		err = surrealdb.Kill(ctx, w.backend.db, w.liveID)
	})
	return err
}

func recordHasKey(record map[string]any, key string) bool {
	switch id := record["id"].(type) {
	case models.RecordID:
		return fmt.Sprint(id.ID) == key
	case *models.RecordID:
		return id != nil && fmt.Sprint(id.ID) == key
	case string:
		return strings.TrimPrefix(id, surrealTable+":") == key
	}
	return false
}

// encodeRecord returns the document held under the record's data field.
func encodeRecord(record map[string]any) ([]byte, error) {
	doc, ok := plain(record[surrealField]).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s field is %T", ErrNotObject, surrealField, record[surrealField])
	}

	return json.Marshal(doc)
}

// plain turns CBOR-decoded values into JSON-encodable ones.
func plain(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = plain(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = plain(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = plain(item)
		}
		return out
	case models.RecordID:
		return val.String()
	case *models.RecordID:
		if val == nil {
			return nil
		}
		return val.String()
	default:
		return val
	}
}

func isSurrealNotFound(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Expected a single or multiple results but got 0") ||
		strings.Contains(msg, "cannot unmarshal array into Go value")
}
