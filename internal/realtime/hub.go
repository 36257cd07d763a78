// Package realtime fans committed message inserts out to per-room listeners.
package realtime

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"goodhub-chat/internal/logger"
	"goodhub-chat/internal/models"
	"goodhub-chat/internal/observability"
)

// pendingSignals bounds each listener's queue. Listeners refetch the whole
// room, so one queued signal already covers any number of inserts.
const pendingSignals = 1

// Hub keeps insert listeners keyed by room.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]map[*Subscription]struct{}
	log   *logger.Logger
}

// Subscription is an attached insert listener for one room.
type Subscription struct {
	hub     *Hub
	roomID  uuid.UUID
	fn      func(models.InsertEvent)
	signals chan models.InsertEvent
	done    chan struct{}
	active  atomic.Bool
	once    sync.Once
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		rooms: make(map[uuid.UUID]map[*Subscription]struct{}),
		log:   log.With("component", "RealtimeHub"),
	}
}

// Subscribe attaches fn to inserts in roomID. fn runs on the subscription's
// own goroutine, never concurrently with itself.
func (h *Hub) Subscribe(roomID uuid.UUID, fn func(models.InsertEvent)) *Subscription {
	sub := &Subscription{
		hub:     h,
		roomID:  roomID,
		fn:      fn,
		signals: make(chan models.InsertEvent, pendingSignals),
		done:    make(chan struct{}),
	}
	sub.active.Store(true)

	h.mu.Lock()
	subs, ok := h.rooms[roomID]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.rooms[roomID] = subs
	}
	subs[sub] = struct{}{}
	h.mu.Unlock()

	observability.IncLiveSubscriptions()
	h.log.Debug("listener attached", "room_id", roomID)
	go sub.run()
	return sub
}

// Dispatch signals every listener of the event's room. It never blocks: a
// listener that already has a signal queued keeps that one.
func (h *Hub) Dispatch(event models.InsertEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.rooms[event.RoomID] {
		select {
		case sub.signals <- event:
		default:
		}
	}
}

// Listeners returns the number of listeners attached to roomID.
func (h *Hub) Listeners(roomID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.rooms[sub.roomID]
	if !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.rooms, sub.roomID)
	}
}

// RoomID returns the room the subscription listens to.
func (s *Subscription) RoomID() uuid.UUID {
	return s.roomID
}

// Unsubscribe detaches the listener. It is safe to call more than once and
// from inside the callback. A callback that is already running may finish,
// but no new one starts.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.active.Store(false)
		s.hub.remove(s)
		close(s.done)
		observability.DecLiveSubscriptions()
		s.hub.log.Debug("listener detached", "room_id", s.roomID)
	})
}

func (s *Subscription) run() {
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.signals:
			if !s.active.Load() {
				return
			}
			s.fn(ev)
		}
	}
}
