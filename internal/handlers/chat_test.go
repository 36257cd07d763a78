package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"goodhub-chat/internal/chat"
	"goodhub-chat/internal/logger"
	"goodhub-chat/internal/mocks"
	"goodhub-chat/internal/models"
	"goodhub-chat/internal/telemetry"
)

var (
	meID     = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	friendID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

type chatDeps struct {
	rooms     *mocks.RoomRepositoryMock
	messages  *mocks.MessageRepositoryMock
	friends   *mocks.FriendRepositoryMock
	profiles  *mocks.ProfileRepositoryMock
	bus       *mocks.BusMock
	publisher *mocks.PublisherMock
}

func newChatDeps() *chatDeps {
	return &chatDeps{
		rooms:     new(mocks.RoomRepositoryMock),
		messages:  new(mocks.MessageRepositoryMock),
		friends:   new(mocks.FriendRepositoryMock),
		profiles:  new(mocks.ProfileRepositoryMock),
		bus:       new(mocks.BusMock),
		publisher: new(mocks.PublisherMock),
	}
}

func (d *chatDeps) assertExpectations(t *testing.T) {
	d.rooms.AssertExpectations(t)
	d.messages.AssertExpectations(t)
	d.friends.AssertExpectations(t)
	d.profiles.AssertExpectations(t)
	d.bus.AssertExpectations(t)
	d.publisher.AssertExpectations(t)
}

func setupChatRouter(d *chatDeps) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := chat.NewService(d.rooms, d.messages, d.friends, d.profiles, d.bus, logger.Nop())
	audit := telemetry.NewAuditEmitter(d.publisher, "audit.chat", "goodhub-chat", "test", logger.Nop())
	handler := NewChatHandler(svc, audit)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", meID)
		c.Next()
	})
	r.GET("/chats", handler.ListChats)
	r.POST("/chats/start", handler.StartChat)
	r.GET("/chats/:room_id/messages", handler.GetChatMessages)
	r.POST("/chats/:room_id/messages", handler.PostChatMessage)
	return r
}

func TestListChatsSuccess(t *testing.T) {
	d := newChatDeps()
	router := setupChatRouter(d)
	roomID := uuid.New()

	d.rooms.On("ListDirectRooms", mock.Anything, meID).Return([]models.RoomSummary{{RoomID: roomID, FriendID: friendID}}, nil).Once()
	d.profiles.On("BulkProfiles", mock.Anything, []uuid.UUID{friendID}).Return([]models.Profile{{ID: friendID, FullName: "Bob"}}, nil).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Chats []models.RoomSummary `json:"chats"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Chats, 1)
	assert.Equal(t, "Bob", resp.Chats[0].FriendName)
	d.assertExpectations(t)
}

func TestListChatsRepoError(t *testing.T) {
	d := newChatDeps()
	router := setupChatRouter(d)

	d.rooms.On("ListDirectRooms", mock.Anything, meID).Return(nil, assert.AnError).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chats", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	d.assertExpectations(t)
}

func TestStartChatCreatesRoom(t *testing.T) {
	d := newChatDeps()
	router := setupChatRouter(d)
	roomID := uuid.New()

	d.friends.On("AreFriends", mock.Anything, meID, friendID).Return(true, nil).Once()
	d.rooms.On("ListMemberships", mock.Anything, meID).Return([]models.Participant{}, nil).Once()
	d.rooms.On("CreateDirectRoom", mock.Anything, meID, friendID).Return(models.Room{ID: roomID, Type: models.RoomTypeDirect}, nil).Once()
	d.publisher.On("Publish", mock.Anything, "audit.chat", mock.AnythingOfType("telemetry.AuditEnvelope"), mock.Anything).Return(nil).Once()

	body := bytes.NewBufferString(`{"friend_id":"` + friendID.String() + `"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chats/start", body))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"room_id":"`+roomID.String()+`"}`, rec.Body.String())
	d.assertExpectations(t)
}

func TestStartChatReusesExistingRoom(t *testing.T) {
	d := newChatDeps()
	router := setupChatRouter(d)
	roomID := uuid.New()

	d.friends.On("AreFriends", mock.Anything, meID, friendID).Return(true, nil).Once()
	d.rooms.On("ListMemberships", mock.Anything, meID).Return([]models.Participant{{RoomID: roomID, UserID: meID, JoinedAt: time.Now()}}, nil).Once()
	d.rooms.On("ListParticipants", mock.Anything, roomID, meID).Return([]models.Participant{{RoomID: roomID, UserID: friendID}}, nil).Once()
	d.rooms.On("GetRoom", mock.Anything, roomID).Return(models.Room{ID: roomID}, nil).Once()
	d.publisher.On("Publish", mock.Anything, "audit.chat", mock.Anything, mock.Anything).Return(nil).Once()

	body := bytes.NewBufferString(`{"friend_id":"` + friendID.String() + `"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chats/start", body))

	require.Equal(t, http.StatusOK, rec.Code)
	d.rooms.AssertNotCalled(t, "CreateDirectRoom", mock.Anything, mock.Anything, mock.Anything)
	d.assertExpectations(t)
}

func TestStartChatErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		setup  func(d *chatDeps)
		status int
	}{
		{
			name:   "missing friend",
			body:   `{}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "malformed friend id",
			body:   `{"friend_id":"5"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "self",
			body:   `{"friend_id":"` + meID.String() + `"}`,
			status: http.StatusBadRequest,
		},
		{
			name: "not friends",
			body: `{"friend_id":"` + friendID.String() + `"}`,
			setup: func(d *chatDeps) {
				d.friends.On("AreFriends", mock.Anything, meID, friendID).Return(false, nil).Once()
			},
			status: http.StatusForbidden,
		},
		{
			name: "friend check fails",
			body: `{"friend_id":"` + friendID.String() + `"}`,
			setup: func(d *chatDeps) {
				d.friends.On("AreFriends", mock.Anything, meID, friendID).Return(false, assert.AnError).Once()
			},
			status: http.StatusInternalServerError,
		},
		{
			name: "room insert fails",
			body: `{"friend_id":"` + friendID.String() + `"}`,
			setup: func(d *chatDeps) {
				d.friends.On("AreFriends", mock.Anything, meID, friendID).Return(true, nil).Once()
				d.rooms.On("ListMemberships", mock.Anything, meID).Return(nil, nil).Once()
				d.rooms.On("CreateDirectRoom", mock.Anything, meID, friendID).Return(nil, assert.AnError).Once()
			},
			status: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newChatDeps()
			if tt.setup != nil {
				tt.setup(d)
			}
			router := setupChatRouter(d)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chats/start", bytes.NewBufferString(tt.body)))

			assert.Equal(t, tt.status, rec.Code)
			d.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			d.assertExpectations(t)
		})
	}
}

func TestGetChatMessagesSuccess(t *testing.T) {
	d := newChatDeps()
	router := setupChatRouter(d)
	roomID := uuid.New()
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	d.rooms.On("IsParticipant", mock.Anything, roomID, meID).Return(true, nil).Once()
	d.messages.On("ListMessages", mock.Anything, roomID).Return([]models.Message{
		{ID: uuid.New(), RoomID: roomID, SenderID: meID, Content: "Hi", CreatedAt: t0},
		{ID: uuid.New(), RoomID: roomID, SenderID: friendID, Content: "Hey", CreatedAt: t0.Add(time.Second)},
	}, nil).Once()
	d.profiles.On("BulkProfiles", mock.Anything, []uuid.UUID{meID, friendID}).Return([]models.Profile{{ID: meID, FullName: "Alice"}}, nil).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chats/"+roomID.String()+"/messages", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Messages []models.MessageView `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "Alice", resp.Messages[0].SenderName)
	assert.Equal(t, "Anonymous", resp.Messages[1].SenderName)
	d.assertExpectations(t)
}

func TestGetChatMessagesForbidden(t *testing.T) {
	d := newChatDeps()
	router := setupChatRouter(d)
	roomID := uuid.New()

	d.rooms.On("IsParticipant", mock.Anything, roomID, meID).Return(false, nil).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chats/"+roomID.String()+"/messages", nil))

	require.Equal(t, http.StatusForbidden, rec.Code)
	d.assertExpectations(t)
}

func TestGetChatMessagesBadID(t *testing.T) {
	d := newChatDeps()
	router := setupChatRouter(d)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chats/abc/messages", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostChatMessageCreated(t *testing.T) {
	d := newChatDeps()
	router := setupChatRouter(d)
	roomID := uuid.New()
	msg := models.Message{ID: uuid.New(), RoomID: roomID, SenderID: meID, Content: "Hello"}

	d.rooms.On("IsParticipant", mock.Anything, roomID, meID).Return(true, nil).Once()
	d.messages.On("InsertMessage", mock.Anything, roomID, meID, "Hello").Return(msg, nil).Once()
	d.bus.On("Publish", mock.Anything, models.InsertEvent{RoomID: roomID, MessageID: msg.ID}).Return(nil).Once()
	d.publisher.On("Publish", mock.Anything, "audit.chat", mock.Anything, mock.Anything).Return(nil).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chats/"+roomID.String()+"/messages",
		bytes.NewBufferString(`{"content":"  Hello  "}`)))

	require.Equal(t, http.StatusCreated, rec.Code)
	var got models.Message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "Hello", got.Content)
	d.assertExpectations(t)
}

func TestPostChatMessageBlankIsNoContent(t *testing.T) {
	d := newChatDeps()
	router := setupChatRouter(d)
	roomID := uuid.New()

	d.rooms.On("IsParticipant", mock.Anything, roomID, meID).Return(true, nil).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chats/"+roomID.String()+"/messages",
		bytes.NewBufferString(`{"content":"   "}`)))

	require.Equal(t, http.StatusNoContent, rec.Code)
	d.messages.AssertNotCalled(t, "InsertMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	d.assertExpectations(t)
}

func TestPostChatMessageInsertFails(t *testing.T) {
	d := newChatDeps()
	router := setupChatRouter(d)
	roomID := uuid.New()

	d.rooms.On("IsParticipant", mock.Anything, roomID, meID).Return(true, nil).Once()
	d.messages.On("InsertMessage", mock.Anything, roomID, meID, "Hello").Return(nil, assert.AnError).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chats/"+roomID.String()+"/messages",
		bytes.NewBufferString(`{"content":"Hello"}`)))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"failed to save"}`, rec.Body.String())
	d.bus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	d.assertExpectations(t)
}
