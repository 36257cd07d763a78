package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"goodhub-chat/internal/models"
	"goodhub-chat/internal/repositories"
)

type RoomRepositoryMock struct {
	mock.Mock
}

func (m *RoomRepositoryMock) ListMemberships(ctx context.Context, userID uuid.UUID) ([]models.Participant, error) {
	args := m.Called(ctx, userID)
	var rows []models.Participant
	if val := args.Get(0); val != nil {
		rows = val.([]models.Participant)
	}
	return rows, args.Error(1)
}

func (m *RoomRepositoryMock) ListParticipants(ctx context.Context, roomID uuid.UUID, excludingUserID uuid.UUID) ([]models.Participant, error) {
	args := m.Called(ctx, roomID, excludingUserID)
	var rows []models.Participant
	if val := args.Get(0); val != nil {
		rows = val.([]models.Participant)
	}
	return rows, args.Error(1)
}

func (m *RoomRepositoryMock) CreateDirectRoom(ctx context.Context, creatorID uuid.UUID, friendID uuid.UUID) (models.Room, error) {
	args := m.Called(ctx, creatorID, friendID)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) GetRoom(ctx context.Context, roomID uuid.UUID) (models.Room, error) {
	args := m.Called(ctx, roomID)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) IsParticipant(ctx context.Context, roomID uuid.UUID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *RoomRepositoryMock) ListDirectRooms(ctx context.Context, userID uuid.UUID) ([]models.RoomSummary, error) {
	args := m.Called(ctx, userID)
	var rows []models.RoomSummary
	if val := args.Get(0); val != nil {
		rows = val.([]models.RoomSummary)
	}
	return rows, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) ListMessages(ctx context.Context, roomID uuid.UUID) ([]models.Message, error) {
	args := m.Called(ctx, roomID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) InsertMessage(ctx context.Context, roomID uuid.UUID, senderID uuid.UUID, content string) (models.Message, error) {
	args := m.Called(ctx, roomID, senderID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

type ProfileRepositoryMock struct {
	mock.Mock
}

func (m *ProfileRepositoryMock) GetProfile(ctx context.Context, userID uuid.UUID) (models.Profile, error) {
	args := m.Called(ctx, userID)
	var p models.Profile
	if val := args.Get(0); val != nil {
		p = val.(models.Profile)
	}
	return p, args.Error(1)
}

func (m *ProfileRepositoryMock) BulkProfiles(ctx context.Context, ids []uuid.UUID) ([]models.Profile, error) {
	args := m.Called(ctx, ids)
	var profiles []models.Profile
	if val := args.Get(0); val != nil {
		profiles = val.([]models.Profile)
	}
	return profiles, args.Error(1)
}

func (m *ProfileRepositoryMock) SearchProfiles(ctx context.Context, term string, excludingUserID uuid.UUID) ([]models.Profile, error) {
	args := m.Called(ctx, term, excludingUserID)
	var profiles []models.Profile
	if val := args.Get(0); val != nil {
		profiles = val.([]models.Profile)
	}
	return profiles, args.Error(1)
}

func (m *ProfileRepositoryMock) UpsertProfile(ctx context.Context, profile models.Profile) (models.Profile, error) {
	args := m.Called(ctx, profile)
	var p models.Profile
	if val := args.Get(0); val != nil {
		p = val.(models.Profile)
	}
	return p, args.Error(1)
}

type FriendRepositoryMock struct {
	mock.Mock
}

func (m *FriendRepositoryMock) ListFriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	var ids []uuid.UUID
	if val := args.Get(0); val != nil {
		ids = val.([]uuid.UUID)
	}
	return ids, args.Error(1)
}

func (m *FriendRepositoryMock) ListIncomingRequests(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	var ids []uuid.UUID
	if val := args.Get(0); val != nil {
		ids = val.([]uuid.UUID)
	}
	return ids, args.Error(1)
}

func (m *FriendRepositoryMock) SendRequest(ctx context.Context, userID uuid.UUID, friendID uuid.UUID) error {
	args := m.Called(ctx, userID, friendID)
	return args.Error(0)
}

func (m *FriendRepositoryMock) AcceptRequest(ctx context.Context, requesterID uuid.UUID, userID uuid.UUID) error {
	args := m.Called(ctx, requesterID, userID)
	return args.Error(0)
}

func (m *FriendRepositoryMock) RejectRequest(ctx context.Context, requesterID uuid.UUID, userID uuid.UUID) error {
	args := m.Called(ctx, requesterID, userID)
	return args.Error(0)
}

func (m *FriendRepositoryMock) AreFriends(ctx context.Context, userID uuid.UUID, friendID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, friendID)
	return args.Bool(0), args.Error(1)
}

var _ repositories.RoomRepository = (*RoomRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.ProfileRepository = (*ProfileRepositoryMock)(nil)
var _ repositories.FriendRepository = (*FriendRepositoryMock)(nil)
