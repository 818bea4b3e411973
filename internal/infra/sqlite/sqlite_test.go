package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/habitforge/habitforge/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func mustUpdate(t *testing.T, db *DB, fn func(*Tx) error) {
	t.Helper()
	if err := db.Update(context.Background(), fn); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
}

func seedUserAndHabit(t *testing.T, db *DB) (domain.User, domain.Habit) {
	t.Helper()
	now := time.Unix(1_760_000_000, 0).UTC()
	u := domain.NewUser("u1", "Ada", now)
	h := domain.Habit{
		ID: "h1", UserID: u.ID, Name: "Read", Category: domain.CategoryMorningRoutine,
		Type: domain.HabitGood, Frequency: domain.FrequencyDaily, Difficulty: domain.DifficultyEasy,
		BaseXP: 10, IsActive: true, StartDate: day("2025-01-01"), CreatedAt: now,
	}
	mustUpdate(t, db, func(tx *Tx) error {
		if err := tx.CreateUser(u); err != nil {
			return err
		}
		return tx.CreateHabit(h)
	})
	return u, h
}

// ─── Database Lifecycle ─────────────────────────────────────────────────────

func TestOpen_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Join(dir, FileName)); os.IsNotExist(err) {
		t.Errorf("%s should exist", FileName)
	}
	v, err := db.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion() error: %v", err)
	}
	if v < 1 {
		t.Errorf("expected schema version >= 1, got %d", v)
	}
}

func TestOpen_Reopen(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	db.Close()

	db, err = Open(dir)
	if err != nil {
		t.Fatalf("second Open() error: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		t.Fatalf("Ping() error: %v", err)
	}
}

func TestUpdate_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	boom := errors.New("boom")
	err := db.Update(context.Background(), func(tx *Tx) error {
		if err := tx.CreateUser(domain.NewUser("u1", "Ada", time.Now())); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	err = db.View(context.Background(), func(tx *Tx) error {
		_, err := tx.GetUser("u1")
		return err
	})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound after rollback, got %v", err)
	}
}

// ─── Users ──────────────────────────────────────────────────────────────────

func TestUser_SaveProgress(t *testing.T) {
	db := newTestDB(t)
	u, _ := seedUserAndHabit(t, db)

	u.Level, u.CurrentXP, u.TotalXP, u.Coins = 3, 40, 340, 99
	mustUpdate(t, db, func(tx *Tx) error { return tx.SaveUserProgress(u) })

	db.View(context.Background(), func(tx *Tx) error {
		got, err := tx.GetUser(u.ID)
		if err != nil {
			t.Fatalf("GetUser() error: %v", err)
		}
		if got.Level != 3 || got.CurrentXP != 40 || got.TotalXP != 340 || got.Coins != 99 {
			t.Errorf("unexpected user after save: %+v", got)
		}
		return nil
	})
}

func TestLeaderboard_Ordering(t *testing.T) {
	db := newTestDB(t)
	now := time.Unix(1_760_000_000, 0).UTC()
	users := []domain.User{
		{ID: "a", Name: "Ada", Level: 2, CurrentXP: 50, CreatedAt: now},
		{ID: "b", Name: "Bob", Level: 3, CurrentXP: 10, CreatedAt: now},
		{ID: "c", Name: "Cyd", Level: 2, CurrentXP: 50, CreatedAt: now},
		{ID: "d", Name: "Dee", Level: 1, CreatedAt: now},
	}
	badge := domain.Badge{
		ID: "early-bird", Name: "Early Bird", Category: domain.CatConsistency,
		Requirement: domain.MorningCompletions{Count: 10}, RewardXP: 50,
	}
	mustUpdate(t, db, func(tx *Tx) error {
		for _, u := range users {
			if err := tx.CreateUser(u); err != nil {
				return err
			}
		}
		if err := tx.UpsertBadge(badge); err != nil {
			return err
		}
		_, err := tx.UnlockBadge("c", badge.ID, now)
		return err
	})

	db.View(context.Background(), func(tx *Tx) error {
		top, err := tx.Leaderboard(3)
		if err != nil {
			t.Fatalf("Leaderboard() error: %v", err)
		}
		var ids []string
		for _, st := range top {
			ids = append(ids, st.User.ID)
		}
		if got := strings.Join(ids, ","); got != "b,c,a" {
			t.Errorf("expected b,c,a, got %s", got)
		}
		if top[1].Badges != 1 || top[0].Badges != 0 {
			t.Errorf("unexpected badge counts: %+v", top)
		}
		return nil
	})
}

// ─── Habits ─────────────────────────────────────────────────────────────────

func TestHabit_OwnershipIsEnforced(t *testing.T) {
	db := newTestDB(t)
	_, h := seedUserAndHabit(t, db)

	db.View(context.Background(), func(tx *Tx) error {
		if _, err := tx.GetHabit("someone-else", h.ID); !errors.Is(err, domain.ErrHabitNotFound) {
			t.Errorf("expected ErrHabitNotFound, got %v", err)
		}
		got, err := tx.GetHabit(h.UserID, h.ID)
		if err != nil {
			t.Fatalf("GetHabit() error: %v", err)
		}
		if got.Name != "Read" || !got.StartDate.Equal(day("2025-01-01")) || got.EndDate != nil {
			t.Errorf("unexpected habit: %+v", got)
		}
		return nil
	})
}

func TestHabit_UpdateAndDeleteCascade(t *testing.T) {
	db := newTestDB(t)
	u, h := seedUserAndHabit(t, db)

	end := day("2025-12-31")
	h.EndDate = &end
	h.CurrentStreak, h.LongestStreak, h.TotalCompletions = 2, 5, 9
	mustUpdate(t, db, func(tx *Tx) error {
		if err := tx.UpdateHabit(h); err != nil {
			return err
		}
		return tx.CreateLog(domain.CompletionLog{
			ID: "l1", HabitID: h.ID, UserID: u.ID, Date: day("2025-03-01"),
			Status: domain.StatusCompleted, CompletionValue: 1,
		})
	})

	mustUpdate(t, db, func(tx *Tx) error { return tx.DeleteHabit(u.ID, h.ID) })

	db.View(context.Background(), func(tx *Tx) error {
		logs, err := tx.ListLogs(u.ID, LogFilter{})
		if err != nil {
			t.Fatalf("ListLogs() error: %v", err)
		}
		if len(logs) != 0 {
			t.Errorf("expected logs to be deleted with habit, got %d", len(logs))
		}
		return nil
	})

	err := db.Update(context.Background(), func(tx *Tx) error { return tx.DeleteHabit(u.ID, h.ID) })
	if !errors.Is(err, domain.ErrHabitNotFound) {
		t.Errorf("expected ErrHabitNotFound on second delete, got %v", err)
	}
}

// ─── Logs ───────────────────────────────────────────────────────────────────

func TestLog_RoundTripOptionalFields(t *testing.T) {
	db := newTestDB(t)
	u, h := seedUserAndHabit(t, db)

	clock := domain.ClockTime{Hour: 7, Minute: 30}
	mood := domain.MoodGood
	rating := 4
	l := domain.CompletionLog{
		ID: "l1", HabitID: h.ID, UserID: u.ID, Date: day("2025-03-01"),
		Status: domain.StatusCompleted, CompletionValue: 1, XPEarned: 15, StreakBonus: 5,
		TimeCompleted: &clock, Mood: &mood, DifficultyRating: &rating, Notes: "early",
	}
	mustUpdate(t, db, func(tx *Tx) error { return tx.CreateLog(l) })

	db.View(context.Background(), func(tx *Tx) error {
		got, err := tx.GetLog(u.ID, "l1")
		if err != nil {
			t.Fatalf("GetLog() error: %v", err)
		}
		if got.TimeCompleted == nil || *got.TimeCompleted != clock {
			t.Errorf("expected time_completed 07:30, got %v", got.TimeCompleted)
		}
		if got.Mood == nil || *got.Mood != domain.MoodGood {
			t.Errorf("expected mood good, got %v", got.Mood)
		}
		if got.DifficultyRating == nil || *got.DifficultyRating != 4 {
			t.Errorf("expected rating 4, got %v", got.DifficultyRating)
		}
		if got.XPEarned != 15 || got.StreakBonus != 5 {
			t.Errorf("expected xp 15 bonus 5, got %d/%d", got.XPEarned, got.StreakBonus)
		}
		return nil
	})
}

func TestLog_DuplicateDateRejected(t *testing.T) {
	db := newTestDB(t)
	u, h := seedUserAndHabit(t, db)

	first := domain.CompletionLog{ID: "l1", HabitID: h.ID, UserID: u.ID, Date: day("2025-03-01"), Status: domain.StatusCompleted, CompletionValue: 1}
	mustUpdate(t, db, func(tx *Tx) error { return tx.CreateLog(first) })

	second := first
	second.ID = "l2"
	err := db.Update(context.Background(), func(tx *Tx) error { return tx.CreateLog(second) })
	if !errors.Is(err, domain.ErrDuplicateLog) {
		t.Fatalf("expected ErrDuplicateLog, got %v", err)
	}
	if !errors.Is(err, domain.ErrConflict) {
		t.Error("ErrDuplicateLog should match ErrConflict")
	}
}

func TestListLogs_Filters(t *testing.T) {
	db := newTestDB(t)
	u, h := seedUserAndHabit(t, db)

	mustUpdate(t, db, func(tx *Tx) error {
		for i, s := range []domain.LogStatus{domain.StatusCompleted, domain.StatusMissed, domain.StatusCompleted} {
			err := tx.CreateLog(domain.CompletionLog{
				ID: string(rune('a' + i)), HabitID: h.ID, UserID: u.ID,
				Date: day("2025-03-01").AddDate(0, 0, i), Status: s,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	db.View(context.Background(), func(tx *Tx) error {
		all, _ := tx.ListLogs(u.ID, LogFilter{})
		if len(all) != 3 {
			t.Fatalf("expected 3 logs, got %d", len(all))
		}
		if !all[0].Date.Equal(day("2025-03-03")) {
			t.Errorf("expected newest first, got %s", all[0].Date)
		}

		ranged, _ := tx.ListLogs(u.ID, LogFilter{From: day("2025-03-02"), To: day("2025-03-02")})
		if len(ranged) != 1 || ranged[0].Status != domain.StatusMissed {
			t.Errorf("expected the single missed log, got %+v", ranged)
		}

		done, _ := tx.ListLogs(u.ID, LogFilter{Status: domain.StatusCompleted, Limit: 1})
		if len(done) != 1 {
			t.Errorf("expected limit 1, got %d", len(done))
		}

		other, _ := tx.ListLogs("nobody", LogFilter{})
		if len(other) != 0 {
			t.Errorf("expected no logs for another user, got %d", len(other))
		}
		return nil
	})
}

func TestListLogs_HabitAndLogAttributes(t *testing.T) {
	db := newTestDB(t)
	u, read := seedUserAndHabit(t, db)
	smoke := domain.Habit{
		ID: "h2", UserID: u.ID, Name: "Smoking", Category: "health",
		Type: domain.HabitBad, Frequency: domain.FrequencyDaily, Difficulty: domain.DifficultyHard,
		BaseXP: 10, IsActive: true, StartDate: day("2025-01-01"), CreatedAt: read.CreatedAt,
	}
	good, bad := domain.MoodGood, domain.MoodBad

	mustUpdate(t, db, func(tx *Tx) error {
		if err := tx.CreateHabit(smoke); err != nil {
			return err
		}
		logs := []domain.CompletionLog{
			{ID: "a", HabitID: read.ID, UserID: u.ID, Date: day("2025-03-01"), Status: domain.StatusCompleted, CompletionValue: 1, Mood: &good},
			{ID: "b", HabitID: read.ID, UserID: u.ID, Date: day("2025-03-02"), Status: domain.StatusPartial, CompletionValue: 0.4, Mood: &bad},
			{ID: "c", HabitID: smoke.ID, UserID: u.ID, Date: day("2025-03-01"), Status: domain.StatusCompleted, CompletionValue: 1},
		}
		for _, l := range logs {
			if err := tx.CreateLog(l); err != nil {
				return err
			}
		}
		return nil
	})

	half := 0.5
	tests := []struct {
		name   string
		filter LogFilter
		want   string
	}{
		{"habit type", LogFilter{HabitType: domain.HabitBad}, "c"},
		{"category", LogFilter{Category: domain.CategoryMorningRoutine}, "b,a"},
		{"mood", LogFilter{Mood: domain.MoodBad}, "b"},
		{"min completion", LogFilter{MinCompletion: &half, HabitID: read.ID}, "a"},
		{"combined", LogFilter{HabitType: domain.HabitGood, Mood: domain.MoodGood}, "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db.View(context.Background(), func(tx *Tx) error {
				logs, err := tx.ListLogs(u.ID, tt.filter)
				if err != nil {
					t.Fatalf("ListLogs: %v", err)
				}
				ids := make([]string, len(logs))
				for i, l := range logs {
					ids[i] = l.ID
				}
				if got := strings.Join(ids, ","); got != tt.want {
					t.Errorf("expected %s, got %s", tt.want, got)
				}
				return nil
			})
		})
	}
}

// ─── Badges ─────────────────────────────────────────────────────────────────

func TestBadge_UpsertAndUnlock(t *testing.T) {
	db := newTestDB(t)
	u, _ := seedUserAndHabit(t, db)

	b := domain.Badge{
		ID: "early-bird", Name: "Early Bird", Category: domain.CatConsistency,
		Requirement: domain.MorningCompletions{Count: 10}, RewardXP: 50, RewardCoins: 20,
	}
	mustUpdate(t, db, func(tx *Tx) error { return tx.UpsertBadge(b) })
	b.RewardXP = 60
	mustUpdate(t, db, func(tx *Tx) error { return tx.UpsertBadge(b) })

	at := time.Unix(1_760_000_000, 0).UTC()
	mustUpdate(t, db, func(tx *Tx) error {
		got, err := tx.GetBadge("early-bird")
		if err != nil {
			t.Fatalf("GetBadge() error: %v", err)
		}
		if got.RewardXP != 60 {
			t.Errorf("expected upsert to replace reward, got %d", got.RewardXP)
		}
		if r, ok := got.Requirement.(domain.MorningCompletions); !ok || r.Count != 10 {
			t.Errorf("expected MorningCompletions{10}, got %#v", got.Requirement)
		}

		isNew, err := tx.UnlockBadge(u.ID, b.ID, at)
		if err != nil || !isNew {
			t.Fatalf("first UnlockBadge() = %v, %v", isNew, err)
		}
		isNew, err = tx.UnlockBadge(u.ID, b.ID, at.Add(time.Hour))
		if err != nil || isNew {
			t.Fatalf("second UnlockBadge() = %v, %v", isNew, err)
		}
		return nil
	})

	db.View(context.Background(), func(tx *Tx) error {
		unlocked, err := tx.ListUnlocked(u.ID)
		if err != nil {
			t.Fatalf("ListUnlocked() error: %v", err)
		}
		if len(unlocked) != 1 || !unlocked[0].UnlockedAt.Equal(at) {
			t.Errorf("expected one unlock at %s, got %+v", at, unlocked)
		}
		if _, err := tx.GetBadge("missing"); !errors.Is(err, domain.ErrBadgeNotFound) {
			t.Errorf("expected ErrBadgeNotFound, got %v", err)
		}
		return nil
	})
}
