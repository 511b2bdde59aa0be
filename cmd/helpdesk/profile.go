package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"helpengine/internal/domain"
	"helpengine/internal/profile"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func recordCmd() *cobra.Command {
	var (
		typ         string
		topic       string
		success     bool
		duration    time.Duration
		concept     string
		resolved    bool
		visual      bool
		audio       bool
		interactive bool
		trigger     string
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record one user interaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			t := domain.InteractionType(typ)
			switch t {
			case domain.InteractionHelpRequest, domain.InteractionError, domain.InteractionSuccess,
				domain.InteractionDismissal, domain.InteractionProactive, domain.InteractionExploration:
			default:
				return fmt.Errorf("unknown interaction type %q", typ)
			}

			return withSession(func(ctx context.Context, s *session) error {
				before := s.engine.Profile().SkillLevel
				rec := s.engine.RecordInteraction(domain.InteractionRecord{
					Type:            t,
					TopicKey:        topic,
					Success:         success,
					Duration:        duration,
					ConceptMastered: concept,
					ErrorResolved:   resolved,
					Context: domain.InteractionContext{
						UsedVisuals:     visual,
						UsedAudio:       audio,
						UsedInteraction: interactive,
						Trigger:         trigger,
					},
				})
				after := s.engine.Profile().SkillLevel
				if jsonOutput {
					return printJSON(rec)
				}
				fmt.Printf("recorded %s %s\n", rec.Type, rec.ID)
				if after != before {
					fmt.Printf("skill level advanced: %s -> %s\n", before, after)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&typ, "type", "t", string(domain.InteractionHelpRequest), "help_request|error|success|dismissal|proactive|exploration")
	cmd.Flags().StringVar(&topic, "topic", "", "topic key the interaction concerned")
	cmd.Flags().BoolVar(&success, "success", false, "the interaction succeeded")
	cmd.Flags().DurationVar(&duration, "duration", 0, "time spent (e.g. 45s)")
	cmd.Flags().StringVar(&concept, "mastered", "", "concept the user mastered")
	cmd.Flags().BoolVar(&resolved, "resolved", false, "an error was recovered from")
	cmd.Flags().BoolVar(&visual, "visual", false, "visual aids were used")
	cmd.Flags().BoolVar(&audio, "audio", false, "audio was used")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "interactive content was used")
	cmd.Flags().StringVar(&trigger, "trigger", "", "what triggered the interaction")
	return cmd
}

func recommendCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend help topics for the current profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(ctx context.Context, s *session) error {
				recs := s.engine.GetRecommendations()
				if jsonOutput {
					return printJSON(recs)
				}
				for i, r := range recs {
					title := r.TopicKey
					if e, ok := s.engine.Get(r.TopicKey); ok {
						title = e.Title
					}
					fmt.Printf("%d. %-24s %5.1f  %-8s %s\n", i+1, r.TopicKey, r.Score, r.Priority, title)
					if verbose {
						for _, reason := range r.Reasons {
							fmt.Printf("     %-14s %.2f  %s\n", reason.Kind, reason.Weight, reason.Justification)
						}
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show the reasons behind each recommendation")
	return cmd
}

func skillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "skill",
		Short: "Show skill level, progress toward the next level and history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(ctx context.Context, s *session) error {
				a := s.engine.GetSkillAnalysis()
				if jsonOutput {
					return printJSON(a)
				}
				fmt.Printf("Level:        %s (confidence %.0f%%)\n", a.Level, a.Confidence*100)
				fmt.Printf("Success rate: %.0f%% over %s requests\n", a.SuccessRate*100, humanize.Comma(int64(a.HelpRequests)))
				fmt.Printf("Mastered:     %d concepts\n", a.ConceptsMastered)
				if a.HasNext {
					fmt.Printf("Next level:   %s", a.NextLevel)
					var needs []string
					if a.SuccessRateGap > 0 {
						needs = append(needs, fmt.Sprintf("+%.0f%% success rate", a.SuccessRateGap*100))
					}
					if a.ConceptsGap > 0 {
						needs = append(needs, fmt.Sprintf("%d more concepts", a.ConceptsGap))
					}
					if len(needs) > 0 {
						fmt.Printf(" (needs %s)", strings.Join(needs, ", "))
					}
					fmt.Println()
				} else {
					fmt.Println("Next level:   none, already at the top")
				}
				for _, p := range a.Progression {
					fmt.Printf("  %s reached %s %s (confidence %.2f)\n",
						humanize.Ordinal(int(p.Level)+1), p.Level, humanize.Time(p.Timestamp), p.Confidence)
				}
				return nil
			})
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show personalization statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(ctx context.Context, s *session) error {
				st := s.engine.GetPersonalizationStats()
				if jsonOutput {
					return printJSON(st)
				}
				p := st.Profile
				fmt.Printf("Profile created %s, updated %s\n", humanize.Time(p.CreatedAt), humanize.Time(p.UpdatedAt))
				fmt.Printf("Skill:          %s\n", p.SkillLevel)
				fmt.Printf("Learning style: %s\n", p.LearningStyle)
				fmt.Printf("Usage pattern:  %s\n", p.UsagePattern)
				fmt.Printf("Frequency:      %s (%s requests/day)\n", p.PlayFrequency, humanize.FtoaWithDigits(st.RequestsPerDay, 2))
				if len(p.AccessibilityNeeds) > 0 {
					needs := make([]string, len(p.AccessibilityNeeds))
					for i, n := range p.AccessibilityNeeds {
						needs[i] = string(n)
					}
					fmt.Printf("Accessibility:  %s\n", strings.Join(needs, ", "))
				}
				fmt.Printf("Help requests:  %s (%s successful, %s recoveries)\n",
					humanize.Comma(int64(st.HelpRequests)),
					humanize.Comma(int64(st.SuccessfulInteractions)),
					humanize.Comma(int64(st.ErrorRecoveries)))
				fmt.Printf("Topics viewed:  %d, concepts mastered: %d, history: %d records\n",
					st.TopicsViewed, st.ConceptsMastered, st.HistoryLength)
				if len(st.TopTopics) > 0 {
					fmt.Println("Top topics:")
					for _, tc := range st.TopTopics {
						fmt.Printf("  %-24s %s\n", tc.Topic, humanize.Comma(int64(tc.Count)))
					}
				}
				return nil
			})
		},
	}
}

func prefsCmd() *cobra.Command {
	var (
		style  string
		needs  []string
		topics []string
	)

	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Set explicit learning style, accessibility needs or preferred topics",
		RunE: func(cmd *cobra.Command, args []string) error {
			var p profile.Preferences
			if style != "" {
				p.LearningStyle = domain.LearningStyle(style)
				valid := false
				for _, ls := range domain.LearningStyles {
					if ls == p.LearningStyle {
						valid = true
					}
				}
				if !valid {
					return fmt.Errorf("unknown learning style %q", style)
				}
			}
			if cmd.Flags().Changed("need") {
				p.AccessibilityNeeds = make([]domain.AccessibilityNeed, 0, len(needs))
				for _, n := range needs {
					p.AccessibilityNeeds = append(p.AccessibilityNeeds, domain.AccessibilityNeed(n))
				}
			}
			if cmd.Flags().Changed("topic") {
				p.PreferredTopics = append([]string{}, topics...)
			}

			return withSession(func(ctx context.Context, s *session) error {
				s.engine.UpdatePreferences(p)
				s.engine.Analyze()
				if jsonOutput {
					return printJSON(s.engine.Profile())
				}
				fmt.Println("preferences updated")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&style, "style", "", "visual|auditory|kinesthetic|reading")
	cmd.Flags().StringSliceVar(&needs, "need", nil, "accessibility needs (replaces the current list)")
	cmd.Flags().StringSliceVar(&topics, "topic", nil, "preferred topics (replaces the current list)")
	return cmd
}

func resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset the profile to defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(ctx context.Context, s *session) error {
				s.engine.Reset()
				logger.Info("profile reset")
				return nil
			})
		},
	}
}
