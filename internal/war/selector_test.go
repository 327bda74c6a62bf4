package war

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"
)

func TestSelectContestantsNeedsTwoEligibleUsers(t *testing.T) {
	db := newTestDB(t)
	selector := NewSelectorWithRand(db, 5, rand.New(rand.NewSource(1)))

	// Empty pool
	_, _, err := selector.SelectContestants()
	if !errors.Is(err, ErrInsufficientCandidates) {
		t.Errorf("Expected ErrInsufficientCandidates on empty pool, got %v", err)
	}

	// One eligible user is still not enough
	sender := createTestUser(t, db, "sender")
	alice := createTestUser(t, db, "alice")
	createTestVibe(t, db, sender.ID, alice.ID, "only vibe", time.Now())

	_, _, err = selector.SelectContestants()
	if !errors.Is(err, ErrInsufficientCandidates) {
		t.Errorf("Expected ErrInsufficientCandidates with one eligible user, got %v", err)
	}
}

func TestSelectContestantsReturnsDistinctUsers(t *testing.T) {
	db := newTestDB(t)
	sender := createTestUser(t, db, "sender")
	users := make(map[int]bool)
	for i := 0; i < 4; i++ {
		u := createTestUser(t, db, fmt.Sprintf("user%d", i))
		users[u.ID] = true
		createTestVibe(t, db, sender.ID, u.ID, fmt.Sprintf("vibe for user%d", i), time.Now())
	}

	selector := NewSelectorWithRand(db, 5, rand.New(rand.NewSource(7)))

	for i := 0; i < 20; i++ {
		pick1, pick2, err := selector.SelectContestants()
		if err != nil {
			t.Fatalf("SelectContestants failed: %v", err)
		}
		if pick1.UserID == pick2.UserID {
			t.Fatalf("Picked the same user twice: %d", pick1.UserID)
		}
		if !users[pick1.UserID] || !users[pick2.UserID] {
			t.Fatalf("Picked a user outside the eligible pool: %d, %d", pick1.UserID, pick2.UserID)
		}
	}
}

func TestSelectContestantsIgnoresHiddenVibes(t *testing.T) {
	db := newTestDB(t)
	sender := createTestUser(t, db, "sender")
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	createTestVibe(t, db, sender.ID, alice.ID, "visible", time.Now())

	hidden := createTestVibe(t, db, sender.ID, bob.ID, "hidden", time.Now())
	db.Model(&hidden).Update("hidden", true)

	selector := NewSelectorWithRand(db, 5, rand.New(rand.NewSource(3)))
	_, _, err := selector.SelectContestants()
	if !errors.Is(err, ErrInsufficientCandidates) {
		t.Errorf("Hidden vibes should not make a user eligible, got %v", err)
	}
}

func TestSelectContestantsSamplesRecentVibes(t *testing.T) {
	db := newTestDB(t)
	sender := createTestUser(t, db, "sender")
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	createTestVibe(t, db, sender.ID, bob.ID, "bob vibe", time.Now())

	// Alice has 6 vibes; with a sample of 5 the oldest must never be picked,
	// and more than one of the recent ones should show up over many draws.
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	oldest := createTestVibe(t, db, sender.ID, alice.ID, "oldest", base)
	recent := make(map[int]bool)
	for i := 1; i <= 5; i++ {
		v := createTestVibe(t, db, sender.ID, alice.ID, fmt.Sprintf("recent%d", i), base.Add(time.Duration(i)*time.Hour))
		recent[v.ID] = true
	}

	selector := NewSelectorWithRand(db, 5, rand.New(rand.NewSource(99)))

	picked := make(map[int]bool)
	for i := 0; i < 100; i++ {
		pick1, pick2, err := selector.SelectContestants()
		if err != nil {
			t.Fatalf("SelectContestants failed: %v", err)
		}
		for _, pick := range []Pick{pick1, pick2} {
			if pick.UserID != alice.ID {
				continue
			}
			if pick.VibeID == oldest.ID {
				t.Fatalf("Picked a vibe outside the recent sample window")
			}
			if !recent[pick.VibeID] {
				t.Fatalf("Picked unknown vibe %d", pick.VibeID)
			}
			picked[pick.VibeID] = true
		}
	}

	if len(picked) < 2 {
		t.Errorf("Expected sampling across the recent window, always got the same vibe")
	}
}
