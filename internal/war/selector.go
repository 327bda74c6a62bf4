package war

import (
	"math/rand"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/UFAZ-L2-CS1/ufaz-slay-meter-sub000/internal/models"
)

// DefaultRecentVibeSample is how many of a user's newest visible vibes the
// selector draws from. Sampling inside that window instead of always taking
// the single newest vibe keeps contests varied.
const DefaultRecentVibeSample = 5

// Pick is one chosen side of a new war.
type Pick struct {
	UserID int
	VibeID int
}

// Selector picks two eligible users and one recent vibe each to seed a war.
// It is read-only against the database. The random source is injected so
// tests can seed it; a mutex guards it because the scheduler and request
// handlers share one selector and rand.Rand is not goroutine safe.
type Selector struct {
	db     *gorm.DB
	sample int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector builds a selector with a time-seeded random source.
func NewSelector(db *gorm.DB, sample int) *Selector {
	return NewSelectorWithRand(db, sample, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewSelectorWithRand builds a selector with the given random source.
func NewSelectorWithRand(db *gorm.DB, sample int, rng *rand.Rand) *Selector {
	if sample <= 0 {
		sample = DefaultRecentVibeSample
	}
	return &Selector{db: db, sample: sample, rng: rng}
}

// SelectContestants returns two picks with distinct users, or
// ErrInsufficientCandidates when fewer than two users currently have a
// visible vibe (or a chosen user's recent sample comes up empty).
func (s *Selector) SelectContestants() (Pick, Pick, error) {
	var none Pick

	// Every recipient with at least one visible vibe is eligible.
	var recipients []int
	err := s.db.Model(&models.Vibe{}).
		Where("hidden = ?", false).
		Distinct("recipient_id").
		Pluck("recipient_id", &recipients).Error
	if err != nil {
		return none, none, err
	}
	if len(recipients) < 2 {
		return none, none, ErrInsufficientCandidates
	}

	// Draw two distinct recipients without replacement.
	s.mu.Lock()
	i := s.rng.Intn(len(recipients))
	j := s.rng.Intn(len(recipients) - 1)
	s.mu.Unlock()
	if j >= i {
		j++
	}

	pick1, err := s.pickVibe(recipients[i])
	if err != nil {
		return none, none, err
	}
	pick2, err := s.pickVibe(recipients[j])
	if err != nil {
		return none, none, err
	}

	return pick1, pick2, nil
}

// pickVibe samples one vibe uniformly from the user's most recent visible ones.
func (s *Selector) pickVibe(userID int) (Pick, error) {
	var ids []int
	err := s.db.Model(&models.Vibe{}).
		Where("recipient_id = ? AND hidden = ?", userID, false).
		Order("created_at desc").
		Limit(s.sample).
		Pluck("id", &ids).Error
	if err != nil {
		return Pick{}, err
	}
	if len(ids) == 0 {
		// Eligibility changed between the group query and now.
		return Pick{}, ErrInsufficientCandidates
	}

	s.mu.Lock()
	n := s.rng.Intn(len(ids))
	s.mu.Unlock()

	return Pick{UserID: userID, VibeID: ids[n]}, nil
}
