package main

import "helpengine/internal/domain"

// starterEntries is the catalog written by `helpdesk init`. Keys match the
// default recommendation topic lists.
func starterEntries() []domain.HelpEntry {
	return []domain.HelpEntry{
		{
			Key:         "gameBasics",
			Category:    domain.CategoryBasic,
			Priority:    domain.PriorityHigh,
			Difficulty:  domain.DifficultyBeginner,
			Title:       "Basic play",
			Description: "Click groups of matching bubbles to pop them and score points.",
			Steps: []domain.Step{
				{Title: "Aim", Body: "Point at a group of two or more bubbles of the same color."},
				{Title: "Pop", Body: "Click to pop the group. Bigger groups score more."},
			},
			RelatedTopics: []string{"controls", "scoring"},
			Metadata:      &domain.EntryMetadata{Tags: []string{"intro", "bubbles"}, ReadingMinutes: 2},
		},
		{
			Key:           "controls",
			Category:      domain.CategoryBasic,
			Priority:      domain.PriorityHigh,
			Difficulty:    domain.DifficultyBeginner,
			Title:         "Controls",
			Description:   "Mouse, keyboard and touch controls.",
			Items:         []domain.SubItem{{Tag: "shortcut", Title: "Pause", Body: "Press Esc or P to pause."}},
			RelatedTopics: []string{"gameBasics"},
			Metadata:      &domain.EntryMetadata{Tags: []string{"input", "keyboard"}},
		},
		{
			Key:         "scoring",
			Category:    domain.CategoryBasic,
			Priority:    domain.PriorityMedium,
			Difficulty:  domain.DifficultyBeginner,
			Title:       "Scoring",
			Description: "How points, multipliers and level bonuses add up.",
			Sections: []domain.Section{
				{Title: "Group size", Body: "Each extra bubble in a group raises the score per bubble."},
			},
			RelatedTopics: []string{"powerUps"},
		},
		{
			Key:         "firstLevel",
			Category:    domain.CategoryBasic,
			Priority:    domain.PriorityMedium,
			Difficulty:  domain.DifficultyBeginner,
			Title:       "Your first level",
			Description: "A walkthrough of the opening level and its goals.",
		},
		{
			Key:           "powerUps",
			Category:      domain.CategoryGameplay,
			Priority:      domain.PriorityMedium,
			Difficulty:    domain.DifficultyIntermediate,
			Title:         "Power-ups",
			Description:   "Special bubbles that clear rows, colors or whole areas.",
			RelatedTopics: []string{"combos"},
			Metadata:      &domain.EntryMetadata{Tags: []string{"bonus"}},
		},
		{
			Key:         "settingsOverview",
			Category:    domain.CategorySettings,
			Priority:    domain.PriorityLow,
			Difficulty:  domain.DifficultyBeginner,
			Title:       "Settings overview",
			Description: "Audio, graphics and accessibility options.",
			Metadata:    &domain.EntryMetadata{Tags: []string{"options", "accessibility"}},
		},
		{
			Key:         "commonIssues",
			Category:    domain.CategoryTroubleshooting,
			Priority:    domain.PriorityHigh,
			Difficulty:  domain.DifficultyBeginner,
			Title:       "Common issues",
			Description: "Fixes for the problems players report most often.",
			Items: []domain.SubItem{
				{Tag: "fix", Title: "Game does not start", Body: "Update your graphics driver and restart."},
			},
			RelatedTopics: []string{"performanceFixes", "audioProblems"},
		},
		{
			Key:         "performanceFixes",
			Category:    domain.CategoryTroubleshooting,
			Priority:    domain.PriorityCritical,
			Difficulty:  domain.DifficultyIntermediate,
			Title:       "Performance fixes",
			Description: "Reduce lag and stutter by lowering particle effects.",
			Metadata:    &domain.EntryMetadata{Tags: []string{"lag", "performance"}},
		},
		{
			Key:         "audioProblems",
			Category:    domain.CategoryTroubleshooting,
			Priority:    domain.PriorityMedium,
			Difficulty:  domain.DifficultyBeginner,
			Title:       "Audio problems",
			Description: "No sound, crackling or missing music.",
		},
	}
}
