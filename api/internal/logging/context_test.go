package logging

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestEnsureRequestID(t *testing.T) {
	ctx, id := EnsureRequestID(context.Background())
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, id, RequestID(ctx))

	ctx2, id2 := EnsureRequestID(ctx)
	assert.Equal(t, id, id2)
	assert.Equal(t, ctx, ctx2)
}

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	FromContext(context.Background(), base).Info("plain")
	FromContext(WithRequestID(context.Background(), "r-1"), base).Info("tagged")

	entries := logs.All()
	assert.Len(t, entries, 2)
	assert.Empty(t, entries[0].ContextMap())
	assert.Equal(t, "r-1", entries[1].ContextMap()["request_id"])
}
