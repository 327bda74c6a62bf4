package handlers

import (
	"gorm.io/gorm"

	"github.com/UFAZ-L2-CS1/ufaz-slay-meter-sub000/internal/war"
)

// Handler combines all handler types
type Handler struct {
	Auth *AuthHandler
	User *UserHandler
	Vibe *VibeHandler
	War  *WarHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db *gorm.DB, warService *war.Service) *Handler {
	return &Handler{
		Auth: NewAuthHandler(db),
		User: NewUserHandler(db),
		Vibe: NewVibeHandler(db),
		War:  NewWarHandler(db, warService),
	}
}
