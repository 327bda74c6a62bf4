package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/UFAZ-L2-CS1/ufaz-slay-meter-sub000/internal/models"
)

type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

func extractUserID(c *gin.Context) (int, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		return v, true
	case uint:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// slayScore is the display metric shown on profiles and the leaderboard:
// visible vibes received plus reactions on them.
func (h *UserHandler) slayScore(userID int) int {
	var vibes, reactions int64
	h.db.Model(&models.Vibe{}).Where("recipient_id = ? AND hidden = ?", userID, false).Count(&vibes)
	h.db.Model(&models.Reaction{}).
		Joins("JOIN vibes ON vibes.id = reactions.vibe_id").
		Where("vibes.recipient_id = ? AND vibes.hidden = ?", userID, false).
		Count(&reactions)
	return int(vibes + reactions)
}

// GetUserProfile returns a user's profile with their received vibes
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	userID := c.Param("id")
	var user models.User

	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	// Visible vibes addressed to this user, newest first
	var vibes []models.Vibe
	h.db.Where("recipient_id = ? AND hidden = ?", userID, false).
		Preload("Sender").Order("created_at desc").Limit(50).Find(&vibes)

	// War wins for profile bragging rights
	var warWins int64
	h.db.Model(&models.War{}).
		Where("status = ?", models.WarStatusEnded).
		Where("(winner = 1 AND contestant1_user_id = ?) OR (winner = 2 AND contestant2_user_id = ?)", user.ID, user.ID).
		Count(&warWins)

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"name":     user.Name,
			"bio":      user.Bio,
			"avatar":   user.Avatar,
		},
		"vibes":      vibeResponses(h.db, vibes),
		"slay_score": h.slayScore(user.ID),
		"war_wins":   warWins,
	})
}

// UpdateUserProfile lets a user edit their own profile
func (h *UserHandler) UpdateUserProfile(c *gin.Context) {
	userID := c.Param("id")

	authUserID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	// Check if user is updating their own profile
	if fmt.Sprintf("%v", authUserID) != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only update your own profile"})
		return
	}

	var input struct {
		Name   string `json:"name"`
		Bio    string `json:"bio"`
		Avatar string `json:"avatar"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	// Update fields
	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Bio != "" {
		user.Bio = input.Bio
	}
	if input.Avatar != "" {
		user.Avatar = input.Avatar
	}

	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"name":     user.Name,
		"bio":      user.Bio,
		"avatar":   user.Avatar,
	})
}

// SearchUsers finds users by username or display name substring
func (h *UserHandler) SearchUsers(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search query is required"})
		return
	}

	var users []models.User
	pattern := "%" + query + "%"
	if err := h.db.Where("username LIKE ? OR name LIKE ?", pattern, pattern).
		Order("username asc").Limit(20).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search users"})
		return
	}

	var results []gin.H
	for _, user := range users {
		results = append(results, gin.H{
			"id":       user.ID,
			"username": user.Username,
			"name":     user.Name,
			"avatar":   user.Avatar,
		})
	}
	if results == nil {
		results = []gin.H{}
	}

	c.JSON(http.StatusOK, results)
}

// GetLeaderboard returns the top users by slay score
func (h *UserHandler) GetLeaderboard(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	// Rank by visible vibes received; reactions and war wins are fetched
	// per user for display. Fine at this scale.
	type row struct {
		RecipientID int
		Count       int
	}
	var rows []row
	if err := h.db.Model(&models.Vibe{}).
		Select("recipient_id, COUNT(*) as count").
		Where("hidden = ?", false).
		Group("recipient_id").
		Order("count desc").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build leaderboard"})
		return
	}

	var board []gin.H
	for rank, r := range rows {
		var user models.User
		if err := h.db.First(&user, r.RecipientID).Error; err != nil {
			continue
		}

		var warWins int64
		h.db.Model(&models.War{}).
			Where("status = ?", models.WarStatusEnded).
			Where("(winner = 1 AND contestant1_user_id = ?) OR (winner = 2 AND contestant2_user_id = ?)", user.ID, user.ID).
			Count(&warWins)

		board = append(board, gin.H{
			"rank":       rank + 1,
			"user_id":    user.ID,
			"username":   user.Username,
			"name":       user.Name,
			"avatar":     user.Avatar,
			"slay_score": h.slayScore(user.ID),
			"war_wins":   warWins,
		})
	}
	if board == nil {
		board = []gin.H{}
	}

	c.JSON(http.StatusOK, board)
}
