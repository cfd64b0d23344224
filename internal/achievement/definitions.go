package achievement

import (
	"fmt"
	"strings"
)

// DefaultCatalog returns the production achievement catalog. Keep ids and
// names stable because earned records key on the name and clients store ids.
func DefaultCatalog() *Catalog {
	defs := baseDefinitions()
	defs = append(defs, categoryTierDefinitions()...)
	defs = append(defs, comboDefinitions()...)

	for i := range defs {
		if defs[i].Color == "" {
			defs[i].Color = RarityColor(defs[i].Rarity)
		}
	}

	return MustCatalog(defs)
}

func baseDefinitions() []Definition {
	return []Definition{
		// Consistency: streaks read from the precomputed aggregate.
		{
			ID: "streak_3", Name: "Three-Day Streak", Category: CategoryConsistency,
			Rarity: RarityCommon, Points: 25, Icon: "🔥",
			Requirement:   StreakRequirement{MinDays: 3},
			UnlockMessage: "Three days in a row. A habit is forming!",
			ShareMessage:  "I just hit a 3-day workout streak!",
		},
		{
			ID: "streak_7", Name: "Week Warrior", Category: CategoryConsistency,
			Rarity: RarityUncommon, Points: 50, Icon: "🗓️",
			Requirement:   StreakRequirement{MinDays: 7},
			UnlockMessage: "A full week without missing a day.",
			ShareMessage:  "7-day streak and counting!",
		},
		{
			ID: "streak_14", Name: "Fortnight Fighter", Category: CategoryConsistency,
			Rarity: RarityRare, Points: 100, Icon: "⚔️",
			Requirement:   StreakRequirement{MinDays: 14},
			UnlockMessage: "Two weeks straight. Discipline looks good on you.",
			ShareMessage:  "14 days of training in a row!",
		},
		{
			ID: "streak_30", Name: "Monthly Master", Category: CategoryConsistency,
			Rarity: RarityEpic, Points: 250, Icon: "🏅",
			Requirement:   StreakRequirement{MinDays: 30},
			UnlockMessage: "Thirty consecutive days. This is who you are now.",
			ShareMessage:  "A 30-day workout streak, done!",
		},
		{
			ID: "streak_100", Name: "Unbreakable", Category: CategoryConsistency,
			Rarity: RarityLegendary, Points: 1000, Icon: "💎",
			Requirement:   StreakRequirement{MinDays: 100},
			UnlockMessage: "One hundred days without a break. Legendary.",
			ShareMessage:  "100-day streak. Unbreakable.",
		},

		// Consistency: local-time schedule windows.
		{
			ID: "schedule_morning_10", Name: "Early Bird", Category: CategoryConsistency,
			Rarity: RarityUncommon, Points: 50, Icon: "🌅",
			Requirement:   ScheduleRequirement{Window: WindowMorning, MinSessions: 10},
			UnlockMessage: "Ten sessions before 9am. The morning is yours.",
			ShareMessage:  "10 early-morning workouts done!",
		},
		{
			ID: "schedule_evening_10", Name: "Night Owl", Category: CategoryConsistency,
			Rarity: RarityUncommon, Points: 50, Icon: "🦉",
			Requirement:   ScheduleRequirement{Window: WindowEvening, MinSessions: 10},
			UnlockMessage: "Ten evening sessions. Winding down the strong way.",
			ShareMessage:  "10 late workouts in the books!",
		},
		{
			ID: "schedule_weekend_10", Name: "Weekend Warrior", Category: CategoryConsistency,
			Rarity: RarityUncommon, Points: 50, Icon: "🛡️",
			Requirement:   ScheduleRequirement{Window: WindowWeekend, MinSessions: 10},
			UnlockMessage: "Ten weekend sessions. Rest days are optional.",
			ShareMessage:  "Weekends are for training!",
		},

		// Milestone: lifetime session counts.
		{
			ID: "count_1", Name: "First Steps", Category: CategoryMilestone,
			Rarity: RarityCommon, Points: 10, Icon: "👣",
			Requirement:   CountRequirement{MinSessions: 1},
			UnlockMessage: "Your first session is behind you. Welcome!",
			ShareMessage:  "I just finished my first workout!",
		},
		{
			ID: "count_10", Name: "Getting Started", Category: CategoryMilestone,
			Rarity: RarityCommon, Points: 25, Icon: "🚀",
			Requirement:   CountRequirement{MinSessions: 10},
			UnlockMessage: "Ten sessions down. You're officially started.",
			ShareMessage:  "10 workouts complete!",
		},
		{
			ID: "count_25", Name: "Quarter Century", Category: CategoryMilestone,
			Rarity: RarityUncommon, Points: 50, Icon: "🎯",
			Requirement:   CountRequirement{MinSessions: 25},
			UnlockMessage: "Twenty-five sessions. Momentum is real.",
			ShareMessage:  "25 workouts and counting!",
		},
		{
			ID: "count_50", Name: "Half Century", Category: CategoryMilestone,
			Rarity: RarityRare, Points: 100, Icon: "🏆",
			Requirement:   CountRequirement{MinSessions: 50},
			UnlockMessage: "Fifty sessions. Half way to the hundred.",
			ShareMessage:  "50 workouts complete!",
		},
		{
			ID: "count_100", Name: "Century Club", Category: CategoryMilestone,
			Rarity: RarityEpic, Points: 250, Icon: "💯",
			Requirement:   CountRequirement{MinSessions: 100},
			UnlockMessage: "One hundred sessions. Welcome to the club.",
			ShareMessage:  "I joined the Century Club: 100 workouts!",
		},
		{
			ID: "count_500", Name: "Relentless", Category: CategoryMilestone,
			Rarity: RarityLegendary, Points: 1000, Icon: "⚡",
			Requirement:   CountRequirement{MinSessions: 500},
			UnlockMessage: "Five hundred sessions. Relentless.",
			ShareMessage:  "500 workouts. Relentless.",
		},

		// Milestone: lifetime accumulated time.
		{
			ID: "total_time_1h", Name: "Dedicated Hour", Category: CategoryMilestone,
			Rarity: RarityUncommon, Points: 50, Icon: "⏳",
			Requirement:   TotalTimeRequirement{MinSeconds: 3600},
			UnlockMessage: "A full hour of training, all told.",
			ShareMessage:  "One hour of total workout time!",
		},
		{
			ID: "total_time_10h", Name: "Ten-Hour Tenure", Category: CategoryMilestone,
			Rarity: RarityRare, Points: 150, Icon: "⏰",
			Requirement:   TotalTimeRequirement{MinSeconds: 36000},
			UnlockMessage: "Ten hours of work behind you.",
			ShareMessage:  "10 hours of total training time!",
		},
		{
			ID: "total_time_24h", Name: "Full Day Devotion", Category: CategoryMilestone,
			Rarity: RarityLegendary, Points: 500, Icon: "🌍",
			Requirement:   TotalTimeRequirement{MinSeconds: 86400},
			UnlockMessage: "Twenty-four hours of lifetime training. A full day.",
			ShareMessage:  "A full day of accumulated workouts!",
		},

		// Performance: single-session duration.
		{
			ID: "duration_60", Name: "Minute Master", Category: CategoryPerformance,
			Rarity: RarityCommon, Points: 25, Icon: "⏱️",
			Requirement:   DurationRequirement{MinSeconds: 60},
			UnlockMessage: "A full minute in one session. Solid.",
			ShareMessage:  "I held a full minute!",
		},
		{
			ID: "duration_120", Name: "Two-Minute Club", Category: CategoryPerformance,
			Rarity: RarityUncommon, Points: 50, Icon: "🕑",
			Requirement:   DurationRequirement{MinSeconds: 120},
			UnlockMessage: "Two minutes straight. The club welcomes you.",
			ShareMessage:  "Two minutes in a single session!",
		},
		{
			ID: "duration_300", Name: "Iron Core", Category: CategoryPerformance,
			Rarity: RarityRare, Points: 150, Icon: "🛠️",
			Requirement:   DurationRequirement{MinSeconds: 300},
			UnlockMessage: "Five unbroken minutes. Iron core indeed.",
			ShareMessage:  "Five minutes in one go!",
		},
		{
			ID: "duration_600", Name: "Endurance Elite", Category: CategoryPerformance,
			Rarity: RarityEpic, Points: 300, Icon: "🏔️",
			Requirement:   DurationRequirement{MinSeconds: 600},
			UnlockMessage: "Ten minutes in a single session. Elite territory.",
			ShareMessage:  "A 10-minute single session!",
		},

		// Performance: improvement over the first-ever session.
		{
			ID: "improvement_30", Name: "Personal Best", Category: CategoryPerformance,
			Rarity: RarityUncommon, Points: 50, Icon: "📈",
			Requirement:   ImprovementRequirement{MinGainSeconds: 30},
			UnlockMessage: "Thirty seconds past where you started.",
			ShareMessage:  "New personal best, +30s over day one!",
		},
		{
			ID: "improvement_double", Name: "Doubled Down", Category: CategoryPerformance,
			Rarity: RarityEpic, Points: 200, Icon: "✖️",
			Requirement:   ImprovementRequirement{Double: true},
			UnlockMessage: "Twice your first session. Doubled down.",
			ShareMessage:  "I doubled my first-ever session!",
		},

		// Exploration: distinct exercises attempted.
		{
			ID: "variety_3", Name: "Curious Mover", Category: CategoryExploration,
			Rarity: RarityCommon, Points: 25, Icon: "🧭",
			Requirement:   VarietyRequirement{MinExercises: 3},
			UnlockMessage: "Three different exercises tried.",
			ShareMessage:  "Exploring the exercise library!",
		},
		{
			ID: "variety_5", Name: "Exercise Explorer", Category: CategoryExploration,
			Rarity: RarityUncommon, Points: 50, Icon: "🗺️",
			Requirement:   VarietyRequirement{MinExercises: 5},
			UnlockMessage: "Five distinct exercises under your belt.",
			ShareMessage:  "Five different exercises mastered!",
		},
		{
			ID: "variety_5_week", Name: "Variety Virtuoso", Category: CategoryExploration,
			Rarity: RarityRare, Points: 100, Icon: "🎨",
			Requirement:   VarietyRequirement{MinExercises: 5, WithinDays: 7},
			UnlockMessage: "Five different exercises inside one week.",
			ShareMessage:  "Five exercises in seven days!",
		},

		// Social: milestones worth telling people about.
		{
			ID: "social_braggable", Name: "Bragging Rights", Category: CategorySocial,
			Rarity: RarityUncommon, Points: 50, Icon: "📣",
			Requirement:   CountRequirement{MinSessions: 20},
			UnlockMessage: "Twenty sessions. That's worth mentioning.",
			ShareMessage:  "20 workouts in. Ask me about it.",
		},
		{
			ID: "social_inspiration", Name: "Inspiration", Category: CategorySocial,
			Rarity: RarityRare, Points: 100, Icon: "✨",
			Requirement:   StreakRequirement{MinDays: 21},
			UnlockMessage: "A 21-day streak. People notice this kind of thing.",
			ShareMessage:  "Three weeks straight. Join me?",
		},

		// Cross-category: breadth of training.
		{
			ID: "cross_2", Name: "Category Explorer", Category: CategoryCrossCategory,
			Rarity: RarityCommon, Points: 25, Icon: "🔀",
			Requirement:   CrossCategoryRequirement{MinCategories: 2},
			UnlockMessage: "Two training categories explored.",
			ShareMessage:  "Branching out across categories!",
		},
		{
			ID: "cross_3", Name: "Multi-Category Adventurer", Category: CategoryCrossCategory,
			Rarity: RarityUncommon, Points: 75, Icon: "🧗",
			Requirement:   CrossCategoryRequirement{MinCategories: 3},
			UnlockMessage: "Three categories and counting.",
			ShareMessage:  "Training across three categories!",
		},
		{
			ID: "cross_3_week", Name: "Balanced Week", Category: CategoryCrossCategory,
			Rarity: RarityRare, Points: 100, Icon: "⚖️",
			Requirement:   CrossCategoryRequirement{MinCategories: 3, WithinDays: 7},
			UnlockMessage: "Three categories inside a single week.",
			ShareMessage:  "A truly balanced training week!",
		},
		{
			ID: "cross_2_day", Name: "Daily Mixer", Category: CategoryCrossCategory,
			Rarity: RarityRare, Points: 100, Icon: "🌀",
			Requirement:   CrossCategoryRequirement{MinCategories: 2, SameDay: true},
			UnlockMessage: "Two categories in one day. Mixing it up.",
			ShareMessage:  "Two kinds of training in a single day!",
		},
		{
			ID: "cross_6", Name: "Complete Athlete", Category: CategoryCrossCategory,
			Rarity: RarityLegendary, Points: 500, Icon: "🌟",
			Requirement:   CrossCategoryRequirement{MinCategories: 6},
			UnlockMessage: "Every single category trained. Complete athlete.",
			ShareMessage:  "All six training categories conquered!",
		},
	}
}

// categoryTier is one rung of the per-category ladder. Session tiers count
// sessions; time tiers sum lifetime seconds in the category.
type categoryTier struct {
	suffix     string
	rarity     Rarity
	points     int
	icon       string
	sessions   int // > 0 for session-count tiers
	seconds    int // > 0 for lifetime-time tiers
	unlockTmpl string
	shareTmpl  string
}

// Eight tiers per exercise category: six session-count rungs plus two
// lifetime-time rungs. "%s" expands to the category display name.
var categoryTiers = []categoryTier{
	{suffix: "Starter", rarity: RarityCommon, points: 10, icon: "🌱", sessions: 1,
		unlockTmpl: "Your first %s session is done.", shareTmpl: "Started %s training!"},
	{suffix: "Regular", rarity: RarityCommon, points: 25, icon: "📆", sessions: 10,
		unlockTmpl: "Ten %s sessions complete.", shareTmpl: "10 %s sessions done!"},
	{suffix: "Enthusiast", rarity: RarityUncommon, points: 50, icon: "🙌", sessions: 25,
		unlockTmpl: "Twenty-five %s sessions. Enthusiast status.", shareTmpl: "25 %s sessions!"},
	{suffix: "Devotee", rarity: RarityRare, points: 100, icon: "🎖️", sessions: 50,
		unlockTmpl: "Fifty %s sessions. True devotion.", shareTmpl: "50 %s sessions!"},
	{suffix: "Expert", rarity: RarityEpic, points: 200, icon: "🥇", sessions: 100,
		unlockTmpl: "One hundred %s sessions. Expert level.", shareTmpl: "100 %s sessions!"},
	{suffix: "Legend", rarity: RarityLegendary, points: 500, icon: "👑", sessions: 250,
		unlockTmpl: "Two hundred and fifty %s sessions. Legend.", shareTmpl: "250 %s sessions. Legend!"},
	{suffix: "Hour", rarity: RarityUncommon, points: 75, icon: "🕐", seconds: 3600,
		unlockTmpl: "A full hour of lifetime %s training.", shareTmpl: "An hour of %s training banked!"},
	{suffix: "Marathon", rarity: RarityEpic, points: 250, icon: "🏃", seconds: 36000,
		unlockTmpl: "Ten hours of lifetime %s training.", shareTmpl: "10 hours of %s training!"},
}

// categoryTierDefinitions expands the tier templates across every exercise
// category. One generation path only; hand-duplicating these entries is how
// catalogs drift.
func categoryTierDefinitions() []Definition {
	defs := make([]Definition, 0, len(ExerciseCategories)*len(categoryTiers))
	for _, cat := range ExerciseCategories {
		display := exerciseCategoryDisplay(cat)
		for _, tier := range categoryTiers {
			var req Requirement
			if tier.seconds > 0 {
				req = CategoryTimeRequirement{Category: cat, MinSeconds: tier.seconds}
			} else {
				req = CategoryCountRequirement{Category: cat, MinSessions: tier.sessions}
			}
			defs = append(defs, Definition{
				ID:            fmt.Sprintf("%s_%s", cat, strings.ToLower(tier.suffix)),
				Name:          fmt.Sprintf("%s %s", display, tier.suffix),
				Category:      CategoryCategorySpecific,
				Rarity:        tier.rarity,
				Points:        tier.points,
				Icon:          tier.icon,
				Requirement:   req,
				UnlockMessage: fmt.Sprintf(tier.unlockTmpl, strings.ToLower(display)),
				ShareMessage:  fmt.Sprintf(tier.shareTmpl, strings.ToLower(display)),
			})
		}
	}
	return defs
}

// combo templates: fixed category sets that must all appear in the user's
// history.
var comboTemplates = []struct {
	id         string
	name       string
	rarity     Rarity
	points     int
	icon       string
	categories []ExerciseCategory
}{
	{id: "combo_power_pair", name: "Power Pair", rarity: RarityUncommon, points: 75, icon: "🤜",
		categories: []ExerciseCategory{ExerciseCardio, ExerciseStrength}},
	{id: "combo_stability_trio", name: "Stability Trio", rarity: RarityRare, points: 150, icon: "🧘",
		categories: []ExerciseCategory{ExerciseCore, ExerciseBalance, ExerciseFlexibility}},
	{id: "combo_engine_builder", name: "Engine Builder", rarity: RarityUncommon, points: 75, icon: "🚂",
		categories: []ExerciseCategory{ExerciseCardio, ExerciseEndurance}},
}

func comboDefinitions() []Definition {
	defs := make([]Definition, 0, len(comboTemplates))
	for _, t := range comboTemplates {
		names := make([]string, len(t.categories))
		for i, c := range t.categories {
			names[i] = strings.ToLower(exerciseCategoryDisplay(c))
		}
		joined := strings.Join(names, " and ")
		defs = append(defs, Definition{
			ID:       t.id,
			Name:     t.name,
			Category: CategoryCrossCategory,
			Rarity:   t.rarity,
			Points:   t.points,
			Icon:     t.icon,
			Requirement: CrossCategoryRequirement{
				MinCategories: len(t.categories),
				Combination:   t.categories,
			},
			UnlockMessage: fmt.Sprintf("You've trained %s. Quite the combination.", joined),
			ShareMessage:  fmt.Sprintf("Training %s together!", joined),
		})
	}
	return defs
}

func exerciseCategoryDisplay(c ExerciseCategory) string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}
