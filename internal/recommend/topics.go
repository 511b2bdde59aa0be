package recommend

import "helpengine/internal/domain"

// DefaultSkillTopics is the fixed topic list surfaced per skill level.
func DefaultSkillTopics() map[domain.SkillLevel][]string {
	return map[domain.SkillLevel][]string{
		domain.SkillBeginner:     {"gameBasics", "controls", "scoring", "firstLevel"},
		domain.SkillIntermediate: {"powerUps", "combos", "levelProgression", "achievements"},
		domain.SkillAdvanced:     {"advancedStrategies", "chainReactions", "timeAttack", "leaderboards"},
		domain.SkillExpert:       {"speedrunTechniques", "perfectClears", "customChallenges", "expertScoring"},
	}
}

// DefaultTroubleshootingTopics are surfaced after a burst of errors.
func DefaultTroubleshootingTopics() []string {
	return []string{"commonIssues", "performanceFixes", "audioProblems", "saveDataRecovery"}
}

// DefaultOnboardingTopics are surfaced to users who have seen little yet.
func DefaultOnboardingTopics() []string {
	return []string{"gameBasics", "controls", "settingsOverview"}
}

// DefaultAdvancedTopics are surfaced once many concepts are mastered.
func DefaultAdvancedTopics() []string {
	return []string{"advancedStrategies", "chainReactions", "customChallenges"}
}

// DefaultFoundationalTopics are surfaced while few concepts are mastered.
func DefaultFoundationalTopics() []string {
	return []string{"scoring", "powerUps", "levelProgression"}
}

// DefaultStyleAffinity is the styleRelevance table: how well a topic suits a
// learning style, in [0, 1]. Pairs not listed score DefaultAffinity.
func DefaultStyleAffinity() map[string]map[domain.LearningStyle]float64 {
	return map[string]map[domain.LearningStyle]float64{
		"gameBasics":         {domain.StyleVisual: 0.9, domain.StyleKinesthetic: 0.8, domain.StyleReading: 0.6},
		"controls":           {domain.StyleKinesthetic: 1.0, domain.StyleVisual: 0.7},
		"scoring":            {domain.StyleReading: 0.8, domain.StyleVisual: 0.6},
		"firstLevel":         {domain.StyleKinesthetic: 0.9, domain.StyleVisual: 0.8},
		"powerUps":           {domain.StyleVisual: 0.9, domain.StyleAuditory: 0.6},
		"combos":             {domain.StyleKinesthetic: 0.9, domain.StyleVisual: 0.7},
		"levelProgression":   {domain.StyleReading: 0.7},
		"achievements":       {domain.StyleVisual: 0.7, domain.StyleReading: 0.6},
		"advancedStrategies": {domain.StyleReading: 1.0, domain.StyleVisual: 0.6},
		"chainReactions":     {domain.StyleVisual: 1.0, domain.StyleKinesthetic: 0.8},
		"timeAttack":         {domain.StyleKinesthetic: 0.9, domain.StyleAuditory: 0.7},
		"leaderboards":       {domain.StyleReading: 0.6},
		"speedrunTechniques": {domain.StyleKinesthetic: 1.0, domain.StyleReading: 0.7},
		"perfectClears":      {domain.StyleVisual: 0.8, domain.StyleReading: 0.7},
		"customChallenges":   {domain.StyleKinesthetic: 0.8},
		"expertScoring":      {domain.StyleReading: 0.9},
		"commonIssues":       {domain.StyleReading: 0.8, domain.StyleVisual: 0.6},
		"performanceFixes":   {domain.StyleReading: 0.9},
		"audioProblems":      {domain.StyleAuditory: 1.0},
		"saveDataRecovery":   {domain.StyleReading: 0.8},
		"settingsOverview":   {domain.StyleVisual: 0.8, domain.StyleReading: 0.7},
	}
}

// DefaultAffinity is the styleRelevance of an unlisted topic/style pair.
const DefaultAffinity = 0.5
