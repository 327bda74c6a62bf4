package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/UFAZ-L2-CS1/ufaz-slay-meter-sub000/internal/models"
)

type VibeHandler struct {
	db *gorm.DB
}

func NewVibeHandler(db *gorm.DB) *VibeHandler {
	return &VibeHandler{db: db}
}

// vibeResponses builds display payloads. Anonymous senders are masked here
// and nowhere downstream can leak them.
func vibeResponses(db *gorm.DB, vibes []models.Vibe) []gin.H {
	responses := []gin.H{}
	for _, vibe := range vibes {
		var reactionCount int64
		db.Model(&models.Reaction{}).Where("vibe_id = ?", vibe.ID).Count(&reactionCount)

		sender := gin.H{"anonymous": true}
		if !vibe.Anonymous {
			sender = gin.H{
				"anonymous": false,
				"id":        vibe.Sender.ID,
				"username":  vibe.Sender.Username,
				"name":      vibe.Sender.Name,
				"avatar":    vibe.Sender.Avatar,
			}
		}

		responses = append(responses, gin.H{
			"id":         vibe.ID,
			"public_id":  vibe.PublicID,
			"text":       vibe.Text,
			"tags":       vibe.Tags,
			"emojis":     vibe.Emojis,
			"sender":     sender,
			"recipient":  vibe.RecipientID,
			"reactions":  reactionCount,
			"created_at": vibe.CreatedAt,
		})
	}
	return responses
}

// CreateVibe sends a vibe to another user (PROTECTED)
func (h *VibeHandler) CreateVibe(c *gin.Context) {
	senderID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Recipient string   `json:"recipient" binding:"required"`
		Text      string   `json:"text" binding:"required,max=280"`
		Anonymous bool     `json:"anonymous"`
		Tags      []string `json:"tags"`
		Emojis    []string `json:"emojis"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var recipient models.User
	if err := h.db.Where("username = ?", input.Recipient).First(&recipient).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipient not found"})
		return
	}

	if recipient.ID == senderID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot send a vibe to yourself"})
		return
	}

	vibe := models.Vibe{
		PublicID:    uuid.NewString(),
		SenderID:    senderID,
		RecipientID: recipient.ID,
		Text:        input.Text,
		Anonymous:   input.Anonymous,
		Tags:        input.Tags,
		Emojis:      input.Emojis,
	}

	if err := h.db.Create(&vibe).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send vibe"})
		return
	}

	h.db.Preload("Sender").First(&vibe, vibe.ID)

	c.JSON(http.StatusCreated, vibeResponses(h.db, []models.Vibe{vibe})[0])
}

// GetInbox returns the authenticated user's received visible vibes (PROTECTED)
func (h *VibeHandler) GetInbox(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var vibes []models.Vibe
	if err := h.db.Where("recipient_id = ? AND hidden = ?", userID, false).
		Preload("Sender").Order("created_at desc").Limit(100).Find(&vibes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch vibes"})
		return
	}

	c.JSON(http.StatusOK, vibeResponses(h.db, vibes))
}

// GetUserVibes returns a user's visible received vibes (public)
func (h *VibeHandler) GetUserVibes(c *gin.Context) {
	userID := c.Param("id")

	var vibes []models.Vibe
	if err := h.db.Where("recipient_id = ? AND hidden = ?", userID, false).
		Preload("Sender").Order("created_at desc").Limit(100).Find(&vibes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch vibes"})
		return
	}

	c.JSON(http.StatusOK, vibeResponses(h.db, vibes))
}

// HideVibe lets the recipient hide a vibe they received (PROTECTED).
// Hidden vibes disappear from profiles, trending tags and war selection.
func (h *VibeHandler) HideVibe(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	vibeID := c.Param("id")
	var vibe models.Vibe
	if err := h.db.First(&vibe, vibeID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vibe not found"})
		return
	}

	if vibe.RecipientID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only hide vibes sent to you"})
		return
	}

	vibe.Hidden = true
	if err := h.db.Save(&vibe).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hide vibe"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Vibe hidden"})
}

// ReactToVibe toggles an emoji reaction on a vibe (PROTECTED)
func (h *VibeHandler) ReactToVibe(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	vibeID := c.Param("id")
	var vibe models.Vibe
	if err := h.db.Where("hidden = ?", false).First(&vibe, vibeID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vibe not found"})
		return
	}

	var input struct {
		Emoji string `json:"emoji" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Emoji is required"})
		return
	}

	// Same emoji again removes the reaction (toggle)
	var existing models.Reaction
	err := h.db.Where("vibe_id = ? AND user_id = ? AND emoji = ?", vibe.ID, userID, input.Emoji).First(&existing).Error
	if err == nil {
		h.db.Delete(&existing)
		c.JSON(http.StatusOK, gin.H{"message": "Reaction removed"})
		return
	}

	reaction := models.Reaction{
		VibeID: vibe.ID,
		UserID: userID,
		Emoji:  input.Emoji,
	}
	if err := h.db.Create(&reaction).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to react"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reaction recorded"})
}

// GetTrendingTags returns the most used tags across recent visible vibes.
// Tags live in a JSON column, so counting happens in Go over a bounded
// window of recent vibes rather than in SQL.
func (h *VibeHandler) GetTrendingTags(c *gin.Context) {
	since := time.Now().AddDate(0, 0, -7)

	var vibes []models.Vibe
	if err := h.db.Where("hidden = ? AND created_at >= ?", false, since).
		Order("created_at desc").Limit(500).Find(&vibes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tags"})
		return
	}

	counts := map[string]int{}
	for _, vibe := range vibes {
		for _, tag := range vibe.Tags {
			counts[tag]++
		}
	}

	type tagCount struct {
		Tag   string `json:"tag"`
		Count int    `json:"count"`
	}
	trending := []tagCount{}
	for tag, count := range counts {
		trending = append(trending, tagCount{Tag: tag, Count: count})
	}
	// Highest count first, alphabetical within ties
	sort.Slice(trending, func(i, j int) bool {
		if trending[i].Count != trending[j].Count {
			return trending[i].Count > trending[j].Count
		}
		return trending[i].Tag < trending[j].Tag
	})
	if len(trending) > 20 {
		trending = trending[:20]
	}

	c.JSON(http.StatusOK, trending)
}
