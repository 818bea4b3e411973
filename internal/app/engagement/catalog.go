package engagement

import (
	"github.com/gosimple/slug"

	"github.com/habitforge/habitforge/internal/domain"
)

// ─── Badge Catalogue ────────────────────────────────────────────────────────
// Seeded into the store at startup; ids are slugs of the names so they stay
// stable across releases.

type badgeDef struct {
	name, description, icon string
	category                domain.BadgeCategory
	requirement             domain.Requirement
	xp, coins               int64
}

// DefaultBadges returns the built-in catalogue.
func DefaultBadges() []domain.Badge {
	defs := []badgeDef{
		// ── Special ────────────────────────────────────────────────
		{"First Steps", "Complete a habit for the first time.", "👣", domain.CatSpecial,
			domain.FirstCompletion{}, 10, 5},
		{"Strong Start", "Complete five habits within a week of your first.", "🚀", domain.CatSpecial,
			domain.FirstWeek{}, 50, 20},
		{"Comeback Kid", "Return after three or more days away.", "🔄", domain.CatSpecial,
			domain.Comeback{}, 25, 10},
		{"Phoenix", "Bounce back after a broken streak.", "🐦‍🔥", domain.CatSpecial,
			domain.ResilientComeback{}, 100, 50},

		// ── Streak ─────────────────────────────────────────────────
		{"Clean Week", "Seven days without giving in to a bad habit.", "🛡️", domain.CatStreak,
			domain.BadHabitStreak{Days: 7}, 75, 30},
		{"Clean Month", "Thirty days without giving in to a bad habit.", "🏰", domain.CatStreak,
			domain.BadHabitStreak{Days: 30}, 300, 120},
		{"Perfect Week", "Finish every habit every day this week.", "🌟", domain.CatStreak,
			domain.PerfectWeek{}, 150, 60},
		{"Perfect Month", "Finish every habit every day this month.", "🏆", domain.CatStreak,
			domain.PerfectMonth{}, 600, 250},

		// ── Consistency ────────────────────────────────────────────
		{"Early Bird", "Complete 10 habits before 8 AM.", "🌅", domain.CatConsistency,
			domain.MorningCompletions{Count: 10}, 50, 20},
		{"Night Owl", "Complete 10 habits after 10 PM.", "🦉", domain.CatConsistency,
			domain.NightCompletions{Count: 10}, 50, 20},
		{"Weekend Warrior", "Four perfect weekends in three months.", "🏖️", domain.CatConsistency,
			domain.PerfectWeekends{Count: 4}, 120, 50},
		{"Reliable", "Keep an 80% success rate over 30 days.", "📈", domain.CatConsistency,
			domain.SuccessRate{Percent: 80}, 100, 40},
		{"Regular", "Log habits on 30 different days.", "📅", domain.CatConsistency,
			domain.AppUsageDays{Days: 30}, 100, 40},
		{"Devoted", "Log habits on 100 different days.", "🗓️", domain.CatConsistency,
			domain.AppUsageDays{Days: 100}, 400, 150},

		// ── Variety ────────────────────────────────────────────────
		{"Explorer", "Create five different habits.", "🧭", domain.CatVariety,
			domain.UniqueHabits{Count: 5}, 40, 15},
		{"Balanced Life", "Track 5 good and 3 bad habits, 10 in total.", "⚖️", domain.CatVariety,
			domain.BalancedHabits{Total: 10}, 120, 50},
		{"Morning Ritual", "Complete 20 morning routine habits.", "☕", domain.CatVariety,
			domain.MorningRoutineCompletions{Count: 20}, 80, 30},

		// ── Mastery ────────────────────────────────────────────────
		{"Habit Builder", "Complete 50 good habits.", "🧱", domain.CatMastery,
			domain.GoodHabitCompletions{Count: 50}, 150, 60},
		{"Habit Master", "Complete 250 good habits.", "🎓", domain.CatMastery,
			domain.GoodHabitCompletions{Count: 250}, 500, 200},
		{"Self Control", "Resist a bad habit on 14 days.", "🧘", domain.CatMastery,
			domain.BadHabitAvoided{Days: 14}, 100, 40},
		{"Rising Star", "Reach level 5.", "⭐", domain.CatMastery,
			domain.Level{Level: 5}, 50, 25},
		{"Veteran", "Reach level 10.", "🎖️", domain.CatMastery,
			domain.Level{Level: 10}, 200, 100},
	}

	badges := make([]domain.Badge, 0, len(defs))
	for _, d := range defs {
		badges = append(badges, domain.Badge{
			ID:          slug.Make(d.name),
			Name:        d.name,
			Description: d.description,
			Icon:        d.icon,
			Category:    d.category,
			Requirement: d.requirement,
			RewardXP:    d.xp,
			RewardCoins: d.coins,
		})
	}
	return badges
}
