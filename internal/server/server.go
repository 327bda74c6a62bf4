package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/UFAZ-L2-CS1/ufaz-slay-meter-sub000/internal/config"
	"github.com/UFAZ-L2-CS1/ufaz-slay-meter-sub000/internal/database"
	"github.com/UFAZ-L2-CS1/ufaz-slay-meter-sub000/internal/handlers"
	"github.com/UFAZ-L2-CS1/ufaz-slay-meter-sub000/internal/middleware"
	"github.com/UFAZ-L2-CS1/ufaz-slay-meter-sub000/internal/war"
)

type Server struct {
	cfg     *config.Config
	db      database.Service
	handler *handlers.Handler
}

// NewServer wires handlers and routes and returns a configured http.Server
func NewServer(cfg *config.Config, db database.Service, warService *war.Service) *http.Server {
	handler := handlers.NewHandler(db.GetDB(), warService)

	newServer := &Server{
		cfg:     cfg,
		db:      db,
		handler: handler,
	}

	router := newServer.RegisterRoutes()

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("🚀 Server starting on port %s\n", cfg.Server.Port)

	return server
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	gin.SetMode(s.cfg.Server.Mode)
	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.db.Health())
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/register", s.handler.Auth.Register)
		api.POST("/login", s.handler.Auth.Login)

		// User routes (public reads)
		api.GET("/users", s.handler.User.SearchUsers)
		api.GET("/users/:id", s.handler.User.GetUserProfile)
		api.GET("/users/:id/vibes", s.handler.Vibe.GetUserVibes)
		api.GET("/leaderboard", s.handler.User.GetLeaderboard)

		// Tag routes (public)
		api.GET("/tags/trending", s.handler.Vibe.GetTrendingTags)

		// War routes (public reads; anyone can watch a war)
		api.GET("/wars/current", s.handler.War.GetCurrentWar)
		api.GET("/wars/history", s.handler.War.GetWarHistory)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Auth protected routes
			protected.GET("/me", s.handler.Auth.GetMe)

			// User protected routes
			protected.PUT("/users/:id", s.handler.User.UpdateUserProfile)

			// Vibe protected routes
			protected.POST("/vibes", s.handler.Vibe.CreateVibe)
			protected.GET("/vibes/inbox", s.handler.Vibe.GetInbox)
			protected.POST("/vibes/:id/hide", s.handler.Vibe.HideVibe)
			protected.POST("/vibes/:id/reactions", s.handler.Vibe.ReactToVibe)

			// War protected routes
			protected.POST("/wars/:id/vote", s.handler.War.VoteWar)
		}
	}

	return r
}
