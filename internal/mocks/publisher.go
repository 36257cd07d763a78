package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"goodhub-chat/internal/models"
)

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, event any, headers map[string]string) error {
	args := m.Called(ctx, routingKey, event, headers)
	return args.Error(0)
}

func (m *PublisherMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

// BusMock records live-update publications.
type BusMock struct {
	mock.Mock
}

func (m *BusMock) Publish(ctx context.Context, event models.InsertEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *BusMock) StartForwarder(ctx context.Context, onMsg func(models.InsertEvent)) error {
	args := m.Called(ctx, onMsg)
	return args.Error(0)
}

func (m *BusMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
