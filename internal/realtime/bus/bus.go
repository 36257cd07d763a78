// Package bus carries insert events between service instances.
package bus

import (
	"context"

	"goodhub-chat/internal/models"
)

type Bus interface {
	Publish(ctx context.Context, event models.InsertEvent) error
	StartForwarder(ctx context.Context, onMsg func(models.InsertEvent)) error
	Close() error
}
