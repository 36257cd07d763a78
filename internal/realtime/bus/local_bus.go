package bus

import (
	"context"
	"errors"
	"sync"

	"goodhub-chat/internal/models"
)

// localBus delivers events to forwarders in the same process.
type localBus struct {
	mu         sync.RWMutex
	nextID     int
	forwarders map[int]func(models.InsertEvent)
	closed     bool
}

// NewLocalBus returns an in-process bus for single-instance deployments.
func NewLocalBus() Bus {
	return &localBus{forwarders: make(map[int]func(models.InsertEvent))}
}

func (b *localBus) Publish(ctx context.Context, event models.InsertEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return errors.New("local bus closed")
	}
	for _, onMsg := range b.forwarders {
		onMsg(event)
	}
	return nil
}

func (b *localBus) StartForwarder(ctx context.Context, onMsg func(models.InsertEvent)) error {
	if onMsg == nil {
		return errors.New("onMsg callback required")
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return errors.New("local bus closed")
	}
	id := b.nextID
	b.nextID++
	b.forwarders[id] = onMsg
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.forwarders, id)
		b.mu.Unlock()
	}()
	return nil
}

func (b *localBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.forwarders = make(map[int]func(models.InsertEvent))
	return nil
}
