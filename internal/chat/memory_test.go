package chat

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"goodhub-chat/internal/models"
	"goodhub-chat/internal/repositories"
)

// memoryDB is an in-memory backend implementing every repository interface.
type memoryDB struct {
	mu           sync.Mutex
	clock        time.Time
	rooms        map[uuid.UUID]models.Room
	participants []models.Participant
	messages     []models.Message
	profiles     map[uuid.UUID]models.Profile
	friends      map[[2]uuid.UUID]models.FriendStatus

	listCalls     map[uuid.UUID]int
	insertCalls   int
	createCalls   int
	failList      error
	failInsert    error
	failCreate    error
	failProfiles  error
	failMembers   error
	blockListRoom map[uuid.UUID]chan struct{}
}

func newMemoryDB() *memoryDB {
	return &memoryDB{
		clock:         time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		rooms:         map[uuid.UUID]models.Room{},
		profiles:      map[uuid.UUID]models.Profile{},
		friends:       map[[2]uuid.UUID]models.FriendStatus{},
		listCalls:     map[uuid.UUID]int{},
		blockListRoom: map[uuid.UUID]chan struct{}{},
	}
}

func (m *memoryDB) tick() time.Time {
	m.clock = m.clock.Add(time.Millisecond)
	return m.clock
}

func (m *memoryDB) addUser(name string) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.profiles[id] = models.Profile{ID: id, FullName: name}
	return id
}

func (m *memoryDB) befriend(a, b uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.friends[[2]uuid.UUID{a, b}] = models.FriendAccepted
	m.friends[[2]uuid.UUID{b, a}] = models.FriendAccepted
}

func (m *memoryDB) fetches(roomID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls[roomID]
}

func (m *memoryDB) roomMessages(roomID uuid.UUID) []models.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Message
	for _, msg := range m.messages {
		if msg.RoomID == roomID {
			out = append(out, msg)
		}
	}
	return out
}

func (m *memoryDB) setFailList(err error) {
	m.mu.Lock()
	m.failList = err
	m.mu.Unlock()
}

func (m *memoryDB) ListMemberships(ctx context.Context, userID uuid.UUID) ([]models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failMembers != nil {
		return nil, m.failMembers
	}
	var out []models.Participant
	for _, p := range m.participants {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (m *memoryDB) ListParticipants(ctx context.Context, roomID uuid.UUID, excludingUserID uuid.UUID) ([]models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Participant
	for _, p := range m.participants {
		if p.RoomID == roomID && p.UserID != excludingUserID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryDB) CreateDirectRoom(ctx context.Context, creatorID uuid.UUID, friendID uuid.UUID) (models.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.failCreate != nil {
		return models.Room{}, m.failCreate
	}
	key := models.DirectPairKey(creatorID, friendID)
	for _, r := range m.rooms {
		if r.PairKey != nil && *r.PairKey == key {
			return r, nil
		}
	}
	room := models.Room{ID: uuid.New(), Type: models.RoomTypeDirect, CreatedBy: creatorID, PairKey: &key, CreatedAt: m.tick()}
	m.rooms[room.ID] = room
	m.participants = append(m.participants,
		models.Participant{RoomID: room.ID, UserID: creatorID, JoinedAt: m.tick()},
		models.Participant{RoomID: room.ID, UserID: friendID, JoinedAt: m.tick()},
	)
	return room, nil
}

// addGroupRoom stores a room without a pair key containing members.
func (m *memoryDB) addGroupRoom(members ...uuid.UUID) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	room := models.Room{ID: uuid.New(), Type: models.RoomTypeGroup, CreatedBy: members[0], CreatedAt: m.tick()}
	m.rooms[room.ID] = room
	for _, u := range members {
		m.participants = append(m.participants, models.Participant{RoomID: room.ID, UserID: u, JoinedAt: m.tick()})
	}
	return room.ID
}

func (m *memoryDB) GetRoom(ctx context.Context, roomID uuid.UUID) (models.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[roomID]
	if !ok {
		return models.Room{}, repositories.ErrRoomNotFound
	}
	return r, nil
}

func (m *memoryDB) IsParticipant(ctx context.Context, roomID uuid.UUID, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.participants {
		if p.RoomID == roomID && p.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryDB) ListDirectRooms(ctx context.Context, userID uuid.UUID) ([]models.RoomSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.RoomSummary
	for _, p := range m.participants {
		if p.UserID != userID || m.rooms[p.RoomID].Type != models.RoomTypeDirect {
			continue
		}
		for _, other := range m.participants {
			if other.RoomID == p.RoomID && other.UserID != userID {
				out = append(out, models.RoomSummary{RoomID: p.RoomID, FriendID: other.UserID, CreatedAt: m.rooms[p.RoomID].CreatedAt})
			}
		}
	}
	return out, nil
}

func (m *memoryDB) ListMessages(ctx context.Context, roomID uuid.UUID) ([]models.Message, error) {
	m.mu.Lock()
	m.listCalls[roomID]++
	gate := m.blockListRoom[roomID]
	fail := m.failList
	var out []models.Message
	for _, msg := range m.messages {
		if msg.RoomID == roomID {
			out = append(out, msg)
		}
	}
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail != nil {
		return nil, fail
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryDB) InsertMessage(ctx context.Context, roomID uuid.UUID, senderID uuid.UUID, content string) (models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertCalls++
	if m.failInsert != nil {
		return models.Message{}, m.failInsert
	}
	msg := models.Message{ID: uuid.New(), RoomID: roomID, SenderID: senderID, Content: content, CreatedAt: m.tick()}
	m.messages = append(m.messages, msg)
	return msg, nil
}

func (m *memoryDB) GetProfile(ctx context.Context, userID uuid.UUID) (models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return models.Profile{}, repositories.ErrProfileNotFound
	}
	return p, nil
}

func (m *memoryDB) BulkProfiles(ctx context.Context, ids []uuid.UUID) ([]models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failProfiles != nil {
		return nil, m.failProfiles
	}
	out := []models.Profile{}
	for _, id := range ids {
		if p, ok := m.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryDB) SearchProfiles(ctx context.Context, term string, excludingUserID uuid.UUID) ([]models.Profile, error) {
	return nil, errors.New("not implemented")
}

func (m *memoryDB) UpsertProfile(ctx context.Context, profile models.Profile) (models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.ID] = profile
	return profile, nil
}

func (m *memoryDB) ListFriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []uuid.UUID
	for k, st := range m.friends {
		if k[0] == userID && st == models.FriendAccepted {
			out = append(out, k[1])
		}
	}
	return out, nil
}

func (m *memoryDB) ListIncomingRequests(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

func (m *memoryDB) SendRequest(ctx context.Context, userID uuid.UUID, friendID uuid.UUID) error {
	return nil
}

func (m *memoryDB) AcceptRequest(ctx context.Context, requesterID uuid.UUID, userID uuid.UUID) error {
	return nil
}

func (m *memoryDB) RejectRequest(ctx context.Context, requesterID uuid.UUID, userID uuid.UUID) error {
	return nil
}

func (m *memoryDB) AreFriends(ctx context.Context, userID uuid.UUID, friendID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.friends[[2]uuid.UUID{userID, friendID}] == models.FriendAccepted ||
		m.friends[[2]uuid.UUID{friendID, userID}] == models.FriendAccepted, nil
}

var (
	_ repositories.RoomRepository    = (*memoryDB)(nil)
	_ repositories.MessageRepository = (*memoryDB)(nil)
	_ repositories.ProfileRepository = (*memoryDB)(nil)
	_ repositories.FriendRepository  = (*memoryDB)(nil)
)
