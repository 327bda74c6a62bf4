package war

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/UFAZ-L2-CS1/ufaz-slay-meter-sub000/internal/models"
)

// Options configures the war window.
type Options struct {
	// StartTime is "HH:MM", the daily wall-clock time voting opens.
	StartTime string
	// Timezone is the IANA name of the contest timezone.
	Timezone string
}

// Service owns the Vibe War lifecycle: exactly-once creation of the daily
// war, lazy status transitions, winner computation and vote recording.
// Status is recomputed from the clock on every access, so a vote arriving
// between scheduler ticks still sees the correct state; the scheduler's
// sweep is only a liveness backstop.
type Service struct {
	db       *gorm.DB
	selector *Selector
	clock    Clock

	loc       *time.Location
	startHour int
	startMin  int
}

// NewService validates the options and builds a war service.
func NewService(db *gorm.DB, selector *Selector, clock Clock, opts Options) (*Service, error) {
	loc, err := time.LoadLocation(opts.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid war timezone %q: %w", opts.Timezone, err)
	}

	hour, min, err := parseClockTime(opts.StartTime)
	if err != nil {
		return nil, err
	}

	return &Service{
		db:        db,
		selector:  selector,
		clock:     clock,
		loc:       loc,
		startHour: hour,
		startMin:  min,
	}, nil
}

func parseClockTime(s string) (int, int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid war start time %q, want HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid war start time %q, want HH:MM", s)
	}
	min, err := strconv.Atoi(parts[1])
	if err != nil || min < 0 || min > 59 {
		return 0, 0, fmt.Errorf("invalid war start time %q, want HH:MM", s)
	}
	return hour, min, nil
}

// window returns the day key and the voting window for the given instant.
// The window runs from the configured start time until the next midnight,
// both in the contest timezone.
func (s *Service) window(now time.Time) (day string, start, end time.Time) {
	local := now.In(s.loc)
	y, m, d := local.Date()
	start = time.Date(y, m, d, s.startHour, s.startMin, 0, 0, s.loc)
	end = time.Date(y, m, d+1, 0, 0, 0, 0, s.loc)
	return local.Format("2006-01-02"), start, end
}

// EnsureTodayWar returns the war for the current day, creating it through
// the contestant selector if none exists yet. The unique index on day plus
// ON CONFLICT DO NOTHING makes creation exactly-once even when several
// processes race here. Returns ErrInsufficientCandidates (and creates
// nothing) when no war can be seeded; callers retry on their next trigger.
func (s *Service) EnsureTodayWar() (*models.War, error) {
	day, start, end := s.window(s.clock.Now())

	var war models.War
	err := s.db.Where("day = ?", day).First(&war).Error
	if err == nil {
		return s.RefreshStatus(&war)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pick1, pick2, err := s.selector.SelectContestants()
	if err != nil {
		return nil, err
	}

	war = models.War{
		Day:         day,
		Contestant1: models.WarContestant{UserID: pick1.UserID, VibeID: pick1.VibeID},
		Contestant2: models.WarContestant{UserID: pick2.UserID, VibeID: pick2.VibeID},
		StartTime:   start,
		EndTime:     end,
		Status:      models.WarStatusScheduled,
	}

	res := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "day"}},
		DoNothing: true,
	}).Create(&war)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// A concurrent caller won the insert; use their record.
		if err := s.db.Where("day = ?", day).First(&war).Error; err != nil {
			return nil, err
		}
	}

	return s.RefreshStatus(&war)
}

func statusRank(status string) int {
	switch status {
	case models.WarStatusActive:
		return 1
	case models.WarStatusEnded:
		return 2
	default:
		return 0
	}
}

// statusForTime derives the status a war should have at the given instant.
func statusForTime(war *models.War, now time.Time) string {
	switch {
	case now.Before(war.StartTime):
		return models.WarStatusScheduled
	case now.Before(war.EndTime):
		return models.WarStatusActive
	default:
		return models.WarStatusEnded
	}
}

// RefreshStatus applies the state machine to the war and persists any
// transition, then returns the up-to-date record. Transitions never
// regress, and the winner is decided exactly once: the record is frozen
// (status set to ended) before the counts are read, so a vote that lands
// concurrently is either counted or rejected, never half-applied.
func (s *Service) RefreshStatus(war *models.War) (*models.War, error) {
	desired := statusForTime(war, s.clock.Now())

	if statusRank(desired) > statusRank(war.Status) {
		switch desired {
		case models.WarStatusActive:
			err := s.db.Model(&models.War{}).
				Where("id = ? AND status = ?", war.ID, models.WarStatusScheduled).
				Update("status", models.WarStatusActive).Error
			if err != nil {
				return nil, err
			}
		case models.WarStatusEnded:
			err := s.db.Model(&models.War{}).
				Where("id = ? AND status <> ?", war.ID, models.WarStatusEnded).
				Update("status", models.WarStatusEnded).Error
			if err != nil {
				return nil, err
			}
		}
	}

	var fresh models.War
	if err := s.db.First(&fresh, war.ID).Error; err != nil {
		return nil, err
	}

	if fresh.Status == models.WarStatusEnded && !fresh.WinnerDecided {
		winner := computeWinner(&fresh)
		err := s.db.Model(&models.War{}).
			Where("id = ? AND winner_decided = ?", fresh.ID, false).
			Updates(map[string]interface{}{
				"winner":         winner,
				"winner_decided": true,
			}).Error
		if err != nil {
			return nil, err
		}
		if err := s.db.First(&fresh, war.ID).Error; err != nil {
			return nil, err
		}
	}

	return &fresh, nil
}

// computeWinner compares the frozen vote counts. Equal counts mean a tie,
// which stays a tie forever.
func computeWinner(war *models.War) *int {
	switch {
	case war.Contestant1.VoteCount > war.Contestant2.VoteCount:
		one := 1
		return &one
	case war.Contestant2.VoteCount > war.Contestant1.VoteCount:
		two := 2
		return &two
	default:
		return nil
	}
}

// Vote records one idempotent vote for the given contestant. The vote row
// insert (unique on war_id+user_id) and the guarded counter increment run
// in one transaction, so a concurrent double-submission records at most one
// vote and one increment, and a war that ends mid-flight rejects the vote
// instead of silently dropping it.
func (s *Service) Vote(warID, userID, contestant int) (*models.War, error) {
	var war models.War
	if err := s.db.First(&war, warID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWarNotFound
		}
		return nil, err
	}

	fresh, err := s.RefreshStatus(&war)
	if err != nil {
		return nil, err
	}

	if userID == fresh.Contestant1.UserID || userID == fresh.Contestant2.UserID {
		return nil, ErrSelfVote
	}

	switch fresh.Status {
	case models.WarStatusScheduled:
		return nil, ErrWarNotStarted
	case models.WarStatusEnded:
		return nil, ErrWarEnded
	}

	column := "contestant1_vote_count"
	if contestant == 2 {
		column = "contestant2_vote_count"
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		vote := models.WarVote{
			WarID:      fresh.ID,
			UserID:     userID,
			Contestant: contestant,
			VotedAt:    s.clock.Now(),
		}
		if err := tx.Create(&vote).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyVoted
			}
			return err
		}

		res := tx.Model(&models.War{}).
			Where("id = ? AND status = ?", fresh.ID, models.WarStatusActive).
			UpdateColumn(column, gorm.Expr(column+" + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// The war ended between the status check and the increment;
			// rolling back also discards the vote row.
			return ErrWarEnded
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var updated models.War
	if err := s.db.First(&updated, fresh.ID).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

// CloseExpiredWars refreshes every unfinished war whose end time has passed.
// Called by the scheduler's minute sweep so wars still close and winners
// still get decided when no read or vote traffic arrives.
func (s *Service) CloseExpiredWars() (int, error) {
	var wars []models.War
	err := s.db.
		Where("status <> ? AND end_time <= ?", models.WarStatusEnded, s.clock.Now()).
		Find(&wars).Error
	if err != nil {
		return 0, err
	}

	closed := 0
	for i := range wars {
		fresh, err := s.RefreshStatus(&wars[i])
		if err != nil {
			return closed, err
		}
		if fresh.Status == models.WarStatusEnded {
			closed++
		}
	}
	return closed, nil
}
