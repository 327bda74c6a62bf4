package war

import (
	"math/rand"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/UFAZ-L2-CS1/ufaz-slay-meter-sub000/internal/database"
	"github.com/UFAZ-L2-CS1/ufaz-slay-meter-sub000/internal/models"
)

// fakeClock is a settable clock for deterministic lifecycle tests.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{t: t}
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

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

// newTestDB opens a file-backed sqlite database with the full schema.
// A single connection serializes access, which sqlite needs anyway.
func newTestDB(t *testing.T) *gorm.DB {
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

func createTestUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	user := models.User{
		Username: username,
		Name:     username,
		Email:    username + "@ufaz.az",
		Password: "x",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user %s: %v", username, err)
	}
	return user
}

func createTestVibe(t *testing.T, db *gorm.DB, senderID, recipientID int, text string, createdAt time.Time) models.Vibe {
	t.Helper()

	vibe := models.Vibe{
		PublicID:    text + "-" + time.Now().Format("150405.000000000"),
		SenderID:    senderID,
		RecipientID: recipientID,
		Text:        text,
		CreatedAt:   createdAt,
	}
	if err := db.Create(&vibe).Error; err != nil {
		t.Fatalf("Failed to create test vibe: %v", err)
	}
	return vibe
}

// newTestService builds a war service on UTC with the default 11:10 start.
func newTestService(t *testing.T, db *gorm.DB, clock Clock) *Service {
	t.Helper()

	selector := NewSelectorWithRand(db, DefaultRecentVibeSample, rand.New(rand.NewSource(42)))
	service, err := NewService(db, selector, clock, Options{
		StartTime: "11:10",
		Timezone:  "UTC",
	})
	if err != nil {
		t.Fatalf("Failed to build war service: %v", err)
	}
	return service
}

// seedTwoContestants creates two users who each have one visible vibe, plus
// the senders behind those vibes.
func seedTwoContestants(t *testing.T, db *gorm.DB) (models.User, models.User) {
	t.Helper()

	sender := createTestUser(t, db, "sender")
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	createTestVibe(t, db, sender.ID, alice.ID, "alice slays", time.Now().Add(-time.Hour))
	createTestVibe(t, db, sender.ID, bob.ID, "bob slays", time.Now().Add(-time.Hour))
	return alice, bob
}
