package handlers

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/UFAZ-L2-CS1/ufaz-slay-meter-sub000/internal/database"
	"github.com/UFAZ-L2-CS1/ufaz-slay-meter-sub000/internal/middleware"
	"github.com/UFAZ-L2-CS1/ufaz-slay-meter-sub000/internal/models"
	"github.com/UFAZ-L2-CS1/ufaz-slay-meter-sub000/internal/war"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = t
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func newTestWarService(t *testing.T, db *gorm.DB, clock war.Clock) *war.Service {
	t.Helper()

	selector := war.NewSelectorWithRand(db, 5, rand.New(rand.NewSource(42)))
	service, err := war.NewService(db, selector, clock, war.Options{
		StartTime: "11:10",
		Timezone:  "UTC",
	})
	if err != nil {
		t.Fatalf("Failed to build war service: %v", err)
	}
	return service
}

// newTestRouter wires the same routes the server registers, minus CORS.
func newTestRouter(db *gorm.DB, warService *war.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(db, warService)

	api := r.Group("/api")
	api.POST("/register", h.Auth.Register)
	api.POST("/login", h.Auth.Login)
	api.GET("/users", h.User.SearchUsers)
	api.GET("/users/:id", h.User.GetUserProfile)
	api.GET("/users/:id/vibes", h.Vibe.GetUserVibes)
	api.GET("/leaderboard", h.User.GetLeaderboard)
	api.GET("/tags/trending", h.Vibe.GetTrendingTags)
	api.GET("/wars/current", h.War.GetCurrentWar)
	api.GET("/wars/history", h.War.GetWarHistory)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	protected.GET("/me", h.Auth.GetMe)
	protected.PUT("/users/:id", h.User.UpdateUserProfile)
	protected.POST("/vibes", h.Vibe.CreateVibe)
	protected.GET("/vibes/inbox", h.Vibe.GetInbox)
	protected.POST("/vibes/:id/hide", h.Vibe.HideVibe)
	protected.POST("/vibes/:id/reactions", h.Vibe.ReactToVibe)
	protected.POST("/wars/:id/vote", h.War.VoteWar)

	return r
}

// registerTestUser goes through the real register endpoint and returns the
// created user and a usable token.
func registerTestUser(t *testing.T, r *gin.Engine, db *gorm.DB, username string) (models.User, string) {
	t.Helper()

	body, _ := json.Marshal(gin.H{
		"username": username,
		"email":    username + "@ufaz.az",
		"password": "secret123",
	})
	req := httptest.NewRequest("POST", "/api/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Register %s failed with %d: %s", username, w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode register response: %v", err)
	}

	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		t.Fatalf("Registered user %s not in database: %v", username, err)
	}
	return user, resp.Token
}

func doJSON(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		payload, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedVibe(t *testing.T, db *gorm.DB, senderID, recipientID int, text string, tags []string) models.Vibe {
	t.Helper()

	vibe := models.Vibe{
		PublicID:    text + time.Now().Format("150405.000000000"),
		SenderID:    senderID,
		RecipientID: recipientID,
		Text:        text,
		Tags:        tags,
	}
	if err := db.Create(&vibe).Error; err != nil {
		t.Fatalf("Failed to seed vibe: %v", err)
	}
	return vibe
}
