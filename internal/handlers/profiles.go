package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"goodhub-chat/internal/middleware"
	"goodhub-chat/internal/models"
	"goodhub-chat/internal/repositories"
)

// ProfileHandler serves the caller's profile and user search.
type ProfileHandler struct {
	profiles repositories.ProfileRepository
}

func NewProfileHandler(profiles repositories.ProfileRepository) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func (h *ProfileHandler) GetMe(c *gin.Context) {
	p, err := h.profiles.GetProfile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdateMe creates or updates the caller's name and avatar.
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	var req struct {
		FullName  string `json:"full_name"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.UserID(c)
	current, err := h.profiles.GetProfile(c.Request.Context(), userID)
	if err != nil && !errors.Is(err, repositories.ErrProfileNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	updated, err := h.profiles.UpsertProfile(c.Request.Context(), models.Profile{
		ID:        userID,
		FullName:  strings.TrimSpace(req.FullName),
		AvatarURL: strings.TrimSpace(req.AvatarURL),
		Email:     current.Email,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save profile"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// SearchUsers matches names case-insensitively, excluding the caller.
func (h *ProfileHandler) SearchUsers(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusOK, gin.H{"users": []models.Profile{}})
		return
	}

	users, err := h.profiles.SearchProfiles(c.Request.Context(), q, middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search users"})
		return
	}
	for i := range users {
		users[i].Email = ""
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
