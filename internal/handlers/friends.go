package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"goodhub-chat/internal/middleware"
	"goodhub-chat/internal/models"
	"goodhub-chat/internal/repositories"
	"goodhub-chat/internal/telemetry"
)

// FriendHandler serves the friend list and friend requests.
type FriendHandler struct {
	friends  repositories.FriendRepository
	profiles repositories.ProfileRepository
	audit    *telemetry.AuditEmitter
}

func NewFriendHandler(friends repositories.FriendRepository, profiles repositories.ProfileRepository, audit *telemetry.AuditEmitter) *FriendHandler {
	return &FriendHandler{friends: friends, profiles: profiles, audit: audit}
}

type friendResponse struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url"`
}

// ListFriends returns accepted friends in either direction.
func (h *FriendHandler) ListFriends(c *gin.Context) {
	ids, err := h.friends.ListFriendIDs(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load friends"})
		return
	}
	friends, err := h.describe(c, ids)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profiles"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

// ListRequests returns users with a pending request to the caller.
func (h *FriendHandler) ListRequests(c *gin.Context) {
	ids, err := h.friends.ListIncomingRequests(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load requests"})
		return
	}
	requests, err := h.describe(c, ids)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profiles"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// SendRequest stores a pending request from the caller.
func (h *FriendHandler) SendRequest(c *gin.Context) {
	var req struct {
		FriendID uuid.UUID `json:"friend_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.UserID(c)
	if userID == req.FriendID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot befriend yourself"})
		return
	}

	if err := h.friends.SendRequest(c.Request.Context(), userID, req.FriendID); err != nil {
		if errors.Is(err, repositories.ErrRequestExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "request already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send request"})
		return
	}

	emitAudit(c.Request.Context(), c, h.audit, "friend request sent")
	c.JSON(http.StatusCreated, gin.H{"status": models.FriendPending})
}

// AcceptRequest accepts the pending request from :user_id.
func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	requesterID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.friends.AcceptRequest(c.Request.Context(), requesterID, middleware.UserID(c)); err != nil {
		writeRequestError(c, err)
		return
	}

	emitAudit(c.Request.Context(), c, h.audit, "friend request accepted")
	c.JSON(http.StatusOK, gin.H{"status": models.FriendAccepted})
}

// RejectRequest deletes the pending request from :user_id.
func (h *FriendHandler) RejectRequest(c *gin.Context) {
	requesterID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.friends.RejectRequest(c.Request.Context(), requesterID, middleware.UserID(c)); err != nil {
		writeRequestError(c, err)
		return
	}

	emitAudit(c.Request.Context(), c, h.audit, "friend request rejected")
	c.Status(http.StatusNoContent)
}

func (h *FriendHandler) describe(c *gin.Context, ids []uuid.UUID) ([]friendResponse, error) {
	out := make([]friendResponse, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	profiles, err := h.profiles.BulkProfiles(c.Request.Context(), ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}
	for _, id := range ids {
		p := byID[id]
		out = append(out, friendResponse{ID: id, FullName: p.DisplayName(), AvatarURL: p.AvatarURL})
	}
	return out, nil
}

func writeRequestError(c *gin.Context, err error) {
	if errors.Is(err, repositories.ErrRequestNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update request"})
}
