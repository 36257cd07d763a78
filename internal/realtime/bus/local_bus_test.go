package bus

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goodhub-chat/internal/models"
)

func TestLocalBusForwardsToEveryForwarder(t *testing.T) {
	b := NewLocalBus()
	defer b.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var first, second []models.InsertEvent
	require.NoError(t, b.StartForwarder(ctx, func(ev models.InsertEvent) { first = append(first, ev) }))
	require.NoError(t, b.StartForwarder(ctx, func(ev models.InsertEvent) { second = append(second, ev) }))

	ev := models.InsertEvent{RoomID: uuid.New(), MessageID: uuid.New()}
	require.NoError(t, b.Publish(context.Background(), ev))

	assert.Equal(t, []models.InsertEvent{ev}, first)
	assert.Equal(t, []models.InsertEvent{ev}, second)
}

func TestLocalBusRejectsNilCallback(t *testing.T) {
	b := NewLocalBus()
	require.Error(t, b.StartForwarder(context.Background(), nil))
}

func TestLocalBusClosed(t *testing.T) {
	b := NewLocalBus()
	require.NoError(t, b.Close())

	assert.Error(t, b.Publish(context.Background(), models.InsertEvent{}))
	assert.Error(t, b.StartForwarder(context.Background(), func(models.InsertEvent) {}))
}

func TestLocalBusPublishHonoursContext(t *testing.T) {
	b := NewLocalBus()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, b.Publish(ctx, models.InsertEvent{}), context.Canceled)
}
