package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/UFAZ-L2-CS1/ufaz-slay-meter-sub000/internal/models"
	"github.com/UFAZ-L2-CS1/ufaz-slay-meter-sub000/internal/war"
)

type WarHandler struct {
	db      *gorm.DB
	service *war.Service
}

func NewWarHandler(db *gorm.DB, service *war.Service) *WarHandler {
	return &WarHandler{db: db, service: service}
}

// contestantResponse resolves one side's display info: who they are and
// which vibe they're fighting with.
func (h *WarHandler) contestantResponse(contestant models.WarContestant) gin.H {
	resp := gin.H{
		"user_id":    contestant.UserID,
		"vibe_id":    contestant.VibeID,
		"vote_count": contestant.VoteCount,
	}

	var user models.User
	if err := h.db.First(&user, contestant.UserID).Error; err == nil {
		resp["username"] = user.Username
		resp["name"] = user.Name
		resp["avatar"] = user.Avatar
	}

	var vibe models.Vibe
	if err := h.db.First(&vibe, contestant.VibeID).Error; err == nil {
		resp["vibe"] = gin.H{
			"text":   vibe.Text,
			"tags":   vibe.Tags,
			"emojis": vibe.Emojis,
		}
	}

	return resp
}

func (h *WarHandler) warResponse(w *models.War) gin.H {
	return gin.H{
		"id":          w.ID,
		"day":         w.Day,
		"status":      w.Status,
		"start_time":  w.StartTime,
		"end_time":    w.EndTime,
		"winner":      w.Winner,
		"contestant1": h.contestantResponse(w.Contestant1),
		"contestant2": h.contestantResponse(w.Contestant2),
	}
}

// GetCurrentWar returns today's war, creating it on demand (public)
func (h *WarHandler) GetCurrentWar(c *gin.Context) {
	current, err := h.service.EnsureTodayWar()
	if err != nil {
		if errors.Is(err, war.ErrInsufficientCandidates) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No active war right now, check back later"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load current war"})
		return
	}

	c.JSON(http.StatusOK, h.warResponse(current))
}

// VoteWar records the caller's vote in a war (PROTECTED)
func (h *WarHandler) VoteWar(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	warID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid war id"})
		return
	}

	var input models.WarVoteRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Contestant must be 1 or 2"})
		return
	}

	updated, err := h.service.Vote(warID, userID, input.Contestant)
	if err != nil {
		switch {
		case errors.Is(err, war.ErrWarNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "War not found"})
		case errors.Is(err, war.ErrWarNotStarted):
			c.JSON(http.StatusBadRequest, gin.H{"error": "This war hasn't started yet"})
		case errors.Is(err, war.ErrWarEnded):
			c.JSON(http.StatusBadRequest, gin.H{"error": "This war has already ended"})
		case errors.Is(err, war.ErrAlreadyVoted):
			c.JSON(http.StatusConflict, gin.H{"error": "You have already voted in this war"})
		case errors.Is(err, war.ErrSelfVote):
			c.JSON(http.StatusForbidden, gin.H{"error": "You can't vote in your own war"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record vote"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Vote recorded",
		"contestant": input.Contestant,
		"war":        h.warResponse(updated),
	})
}

// GetWarHistory returns the most recent ended wars (public)
func (h *WarHandler) GetWarHistory(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	var wars []models.War
	if err := h.db.Where("status = ?", models.WarStatusEnded).
		Order("end_time desc").Limit(limit).Find(&wars).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch war history"})
		return
	}

	history := []gin.H{}
	for i := range wars {
		entry := h.warResponse(&wars[i])
		if wars[i].Winner != nil {
			entry["result"] = "decided"
		} else {
			entry["result"] = "tie"
		}
		history = append(history, entry)
	}

	c.JSON(http.StatusOK, history)
}
