package store

import (
	"context"
	"testing"

	"hkm-site/internal/domain/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDialer(t *testing.T) {
	dial := NewDialer(zap.NewNop().Sugar(), DialOptions{})

	backend, err := dial(context.Background(), config.ContentConnection{Backend: config.BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryBackend{}, backend)

	_, err = dial(context.Background(), config.ContentConnection{Backend: "firestore"})
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
